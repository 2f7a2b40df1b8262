package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/sommelier/internal/app"
	"github.com/abhisek/sommelier/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset <chat-id>",
	Short: "Delete a learner's progress (purchases and feedback are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q: %w", args[0], err)
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to reset chat %d without --yes", chatID)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, closer, err := cliLogger(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.Learning.Reset(cmd.Context(), chatID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no learner with chat id %d", chatID)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Progress of chat %d has been reset.\n", chatID)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm the reset")
}
