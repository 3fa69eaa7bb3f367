package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgermail/internal/cli"
	"ledgermail/internal/gmail"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Gmail",
		Long: `Run the Google OAuth2 flow in your browser and save the resulting
token. Required once before the first run; the token is refreshed
automatically afterwards.`,
		RunE: runAuth,
	}
	return cmd
}

func runAuth(cmd *cobra.Command, _ []string) error {
	cfg := gmailOAuthConfig()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("gmail.client_id and gmail.client_secret must be set in the config file")
	}

	if _, err := gmail.AuthenticateInteractive(cmd.Context(), cfg); err != nil {
		return fmt.Errorf("gmail authentication failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Gmail authentication complete"))
	fmt.Println(cli.SubtleStyle.Render("Token saved to " + cfg.TokenFile))
	return nil
}
