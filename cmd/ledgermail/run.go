package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledgermail/internal/classify"
	"ledgermail/internal/cli"
	"ledgermail/internal/engine"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process vendor emails and reconcile the budget",
		Long: `Fetch unprocessed vendor emails from Gmail, match Amazon orders
against existing budget transactions (rewriting their memos), and create
transactions for Venmo payments. Emails are labeled only after the
corresponding mutation is confirmed, so interrupted runs retry cleanly.`,
		RunE: runRun,
	}

	cmd.Flags().Bool("dry-run", false, "log would-be mutations without applying them")
	cmd.Flags().Bool("reprocess", false, "ignore success labels and re-examine already-processed mail")
	cmd.Flags().Int("limit", 0, "maximum emails to examine this run (0 = no limit)")
	cmd.Flags().Int("lookback", 0, "days of mail history to search (default 7)")

	_ = viper.BindPFlag("run.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("run.reprocess", cmd.Flags().Lookup("reprocess"))
	_ = viper.BindPFlag("run.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("run.lookback_days", cmd.Flags().Lookup("lookback"))

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	ledger, err := newLedgerClient()
	if err != nil {
		return err
	}

	mail, err := newMailClient(ctx)
	if err != nil {
		return err
	}

	detector, err := loadUsers()
	if err != nil {
		return err
	}

	// A nil *SQLiteStorage must not end up inside the interface.
	var side classify.SideChannel
	if store := openUncertainStore(logger); store != nil {
		defer func() { _ = store.Close() }()
		side = store
	}
	factory := newClassifierFactory(side, logger)

	cfg := engine.Config{
		LookbackDays:   viper.GetInt("run.lookback_days"),
		DateBufferDays: viper.GetInt("run.date_buffer_days"),
		Limit:          viper.GetInt("run.limit"),
		DryRun:         viper.GetBool("run.dry_run"),
		Reprocess:      viper.GetBool("run.reprocess"),
		VenmoAccountID: viper.GetString("run.venmo_account"),
		VendorCategory: viper.GetString("run.vendor_category"),
	}

	eng := engine.New(mail, ledger, factory, detector, cfg, logger)
	stats, err := eng.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatTitle("Run complete"))
	fmt.Printf("  %s\n", cli.FormatInfo(fmt.Sprintf("%d emails examined", stats.EmailsFetched)))
	if stats.MemosUpdated > 0 {
		fmt.Printf("  %s\n", cli.FormatSuccess(fmt.Sprintf("%d memos updated", stats.MemosUpdated)))
	}
	if stats.PaymentsCreated > 0 {
		fmt.Printf("  %s\n", cli.FormatSuccess(fmt.Sprintf("%d payments created", stats.PaymentsCreated)))
	}
	if stats.Unmatched > 0 {
		fmt.Printf("  %s\n", cli.FormatWarning(fmt.Sprintf("%d orders had no ledger match yet", stats.Unmatched)))
	}
	if stats.Duplicates > 0 {
		fmt.Printf("  %s\n", cli.SubtleStyle.Render(fmt.Sprintf("  %d duplicate payments skipped", stats.Duplicates)))
	}
	if stats.Errors > 0 {
		fmt.Printf("  %s\n", cli.FormatError(fmt.Sprintf("%d errors (will retry next run)", stats.Errors)))
	}
	return nil
}
