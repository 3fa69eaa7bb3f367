package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgermail/internal/cli"
	"ledgermail/internal/common"
	"ledgermail/internal/model"
	"ledgermail/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the category rule file",
	}
	cmd.AddCommand(rulesCheckCmd())
	return cmd
}

func rulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the rule file against the live budget",
		Long: `Load the rule file and verify that every rule's category exists in
the YNAB budget, exactly or after normalization. Rules naming unknown
categories will never produce an applied classification.`,
		RunE: runRulesCheck,
	}
}

func runRulesCheck(cmd *cobra.Command, _ []string) error {
	path := rulesFilePath()
	cfg, err := rules.Load(path)
	if err != nil {
		return fmt.Errorf("rules file %s is unusable: %w", path, err)
	}

	ledger, err := newLedgerClient()
	if err != nil {
		return err
	}
	categories, err := ledger.Categories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	set := model.NewCategorySet(categories)

	unknown := 0
	for i, rule := range cfg.Rules {
		canonical, ok := set.Resolve(rule.Category)
		switch {
		case !ok:
			unknown++
			fmt.Println(cli.FormatError(fmt.Sprintf(
				"rule %d: category %q matches nothing in the budget", i, rule.Category)))
		case canonical != rule.Category:
			fmt.Println(cli.FormatWarning(fmt.Sprintf(
				"rule %d: category %q resolves to %q; consider using the exact name",
				i, rule.Category, canonical)))
		}
	}

	if unknown > 0 {
		return fmt.Errorf("%w: %d of %d rules", common.ErrUnknownCategory, unknown, len(cfg.Rules))
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"%d rules validated against %d budget categories", len(cfg.Rules), set.Len())))
	return nil
}
