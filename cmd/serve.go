package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/sommelier/internal/api"
	"github.com/abhisek/sommelier/internal/app"
	"github.com/abhisek/sommelier/internal/logging"
	"github.com/abhisek/sommelier/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot and the HTTP API",
	Long: `Run the HTTP API and handle Telegram updates.

By default updates arrive through the webhook endpoint. With --poll the bot
removes any webhook and long-polls Telegram instead, which suits local
development. With --set-webhook the configured webhook is registered on
startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("poll", false, "Receive updates by long polling instead of the webhook")
	serveCmd.Flags().Bool("set-webhook", false, "Register the configured webhook URL on startup")
	serveCmd.Flags().Bool("no-banner", false, "Skip the startup banner")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	poll, _ := cmd.Flags().GetBool("poll")
	setHook, _ := cmd.Flags().GetBool("set-webhook")
	if noBanner, _ := cmd.Flags().GetBool("no-banner"); !noBanner {
		figure.NewFigure("SOMMELIER", "", true).Print()
		fmt.Println()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	botAPI, err := a.BotAPI()
	if err != nil {
		return err
	}
	bot := a.Bot(botAPI)
	srv := a.Server(bot, botAPI)
	logger.Info("connected to telegram", "bot", botAPI.Self.UserName, "mode", updateMode(poll))

	if !poll && setHook {
		if cfg.Bot.WebhookURL == "" || cfg.Bot.WebhookSecret == "" {
			return fmt.Errorf("--set-webhook needs bot.webhook_url and bot.webhook_secret")
		}
		if err := telegram.SetWebhook(botAPI, api.WebhookEndpoint(cfg.Bot.WebhookURL, cfg.Bot.WebhookSecret)); err != nil {
			return err
		}
		logger.Info("webhook registered", "url", cfg.Bot.WebhookURL)
	}

	// Warm the catalogue so the first user does not wait on the sheet.
	items, source := a.Catalog.Get(ctx)
	logger.Info("catalogue ready", "items", len(items), "source", source)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Sessions.Run(ctx, 5*time.Minute)
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.HTTP.Addr)
	})
	if poll {
		g.Go(func() error {
			return bot.Poll(ctx, botAPI)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shut down")
	return nil
}

func updateMode(poll bool) string {
	if poll {
		return "polling"
	}
	return "webhook"
}
