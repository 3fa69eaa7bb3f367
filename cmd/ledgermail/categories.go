package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledgermail/internal/cli"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the budget's categories",
		Long:  `Display the live category list from YNAB, the set the classifier is allowed to choose from.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := newLedgerClient()
			if err != nil {
				return err
			}

			categories, err := ledger.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found in this budget."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\n",
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("ID"))
			fmt.Fprintf(w, "%s\t%s\n",
				strings.Repeat("-", 30),
				strings.Repeat("-", 36))

			for _, cat := range categories {
				name := cat.Name
				if cat.Hidden {
					name = cli.SubtleStyle.Render(name + " (hidden)")
				}
				fmt.Fprintf(w, "%s\t%s\n", name, cat.ID)
			}
			return nil
		},
	}
}
