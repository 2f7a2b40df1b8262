package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Sender is the part of *tgbotapi.BotAPI the dispatcher uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dispatcher sends formatted messages through the bot API under a global
// rate limit. Failures are logged and returned; callers decide whether a
// failed send matters.
type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher allowing perSecond sends with a burst of
// the same size. perSecond <= 0 disables limiting.
func NewDispatcher(sender Sender, perSecond float64, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	limit, burst := rate.Limit(perSecond), int(perSecond)
	if perSecond <= 0 {
		limit, burst = rate.Inf, 1
	}
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(limit, max(burst, 1)),
		logger:  logger,
	}
}

// Send sends an HTML message and returns its id.
func (d *Dispatcher) Send(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	return d.send(ctx, chatID, "sendMessage", msg)
}

// SendPhoto sends a photo by URL with an HTML caption.
func (d *Dispatcher) SendPhoto(ctx context.Context, chatID int64, url, caption string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		photo.ReplyMarkup = *kb
	}
	return d.send(ctx, chatID, "sendPhoto", photo)
}

// Edit replaces the text and keyboard of a sent message. When the message
// cannot be edited a new one is sent instead.
func (d *Dispatcher) Edit(ctx context.Context, chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	if messageID == 0 {
		_, err := d.Send(ctx, chatID, text, kb)
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = kb
	if err := d.wait(ctx); err != nil {
		return err
	}
	if _, err := d.sender.Request(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		d.logger.Warn("edit failed, sending a new message", "chat_id", chatID, "message_id", messageID, "error", err)
		_, err = d.Send(ctx, chatID, text, kb)
		return err
	}
	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast.
func (d *Dispatcher) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	if err := d.wait(ctx); err != nil {
		return err
	}
	if _, err := d.sender.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		d.logger.Warn("answerCallbackQuery failed", "callback_id", callbackID, "error", err)
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, method string, c tgbotapi.Chattable) (int, error) {
	if err := d.wait(ctx); err != nil {
		return 0, err
	}
	m, err := d.sender.Send(c)
	if err != nil {
		d.logger.Warn(method+" failed", "chat_id", chatID, "error", err)
		return 0, fmt.Errorf("%s: %w", method, err)
	}
	return m.MessageID, nil
}

func (d *Dispatcher) wait(ctx context.Context) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("send rate limit: %w", err)
	}
	return nil
}
