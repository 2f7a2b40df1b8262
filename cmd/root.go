package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/sommelier/internal/config"
	"github.com/abhisek/sommelier/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "sommelier",
	Short: "Telegram bot that trains waiters on the drinks list",
	Long: `Sommelier runs a Telegram bot and web API for training restaurant staff on
the beverage catalogue: quick tests, AI-generated questions, a sommelier to
ask, daily challenges, achievements and an XP rewards shop.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file (overrides SOMMELIER_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SOMMELIER_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file, .env and environment, then applies
// command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DB.Path = db
	}
	return cfg, nil
}

// cliLogger keeps one-shot commands quiet unless something goes wrong.
func cliLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	logCfg := cfg.Log
	if logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	return logging.New(logCfg)
}
