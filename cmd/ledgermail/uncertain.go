package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledgermail/internal/cli"
	"ledgermail/internal/storage"
)

func uncertainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uncertain",
		Short: "Show classifications that fell below the confidence gate",
		Long: `List transaction text the classifier saw but was not confident
enough to act on. Use these to write new keyword rules.`,
		RunE: runUncertain,
	}
	cmd.Flags().Int("limit", 50, "maximum rows to show (0 = all)")
	return cmd
}

func runUncertain(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := storage.NewSQLiteStorage(uncertainDBPath())
	if err != nil {
		return fmt.Errorf("opening uncertain store: %w", err)
	}
	defer func() { _ = store.Close() }()

	uncertain, err := store.ListUncertain(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(uncertain) == 0 {
		fmt.Println(cli.InfoStyle.Render("No uncertain classifications recorded."))
		return nil
	}

	fmt.Println(cli.FormatTitle("Uncertain classifications"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.BoldStyle.Render("When"),
		cli.BoldStyle.Render("Text"),
		cli.BoldStyle.Render("Best guess"),
		cli.BoldStyle.Render("Conf"),
		cli.BoldStyle.Render("Origin"))

	for _, u := range uncertain {
		text := u.Text
		if len(text) > 60 {
			text = strings.TrimSpace(text[:57]) + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
			u.RecordedAt.Format("2006-01-02 15:04"),
			text,
			u.Category,
			u.Confidence,
			u.Origin)
	}
	return nil
}
