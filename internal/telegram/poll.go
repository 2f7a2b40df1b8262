package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

// maxInFlight bounds concurrently handled updates. Updates of one chat are
// serialized by the session store, not here.
const maxInFlight = 16

// Poll receives updates by long polling and handles them until ctx is done.
func (b *Bot) Poll(ctx context.Context, api *tgbotapi.BotAPI) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook before polling: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := api.GetUpdatesChan(cfg)
	b.logger.Info("polling for updates", "bot", api.Self.UserName)

	var g errgroup.Group
	g.SetLimit(maxInFlight)
	defer g.Wait()

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			g.Go(func() error {
				b.HandleUpdate(ctx, u)
				return nil
			})
		}
	}
}

// WebhookAPI is the part of *tgbotapi.BotAPI used to manage the webhook.
type WebhookAPI interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
	GetMe() (tgbotapi.User, error)
}

// SetWebhook points Telegram at url.
func SetWebhook(api WebhookAPI, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	wh.AllowedUpdates = []string{"message", "callback_query"}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the webhook, optionally dropping queued updates.
func DeleteWebhook(api WebhookAPI, dropPending bool) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("deleteWebhook: %w", err)
	}
	return nil
}
