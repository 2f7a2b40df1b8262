package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sommelier/internal/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin token for the webhook management endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.HTTP.AdminSecret == "" {
			return fmt.Errorf("no admin secret configured: set SOMMELIER_ADMIN_SECRET")
		}
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := api.IssueToken(cfg.HTTP.AdminSecret, subject, ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("subject", "cli", "Who the token is issued to; shows up in the server log")
	tokenCmd.Flags().Duration("ttl", api.AdminTokenTTL, "Token lifetime")
}
