// Package rewards is the XP-priced reward shop.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/sommelier/internal/store"
)

var (
	// ErrNotFound is returned for a missing or inactive item.
	ErrNotFound = errors.New("reward not found")

	// ErrSoldOut is returned when the item has no stock left.
	ErrSoldOut = errors.New("reward sold out")

	// ErrInsufficientFunds is returned when the user's experience is below
	// the price.
	ErrInsufficientFunds = errors.New("not enough experience")

	// ErrUnknownUser is returned when the buyer has never used the bot.
	ErrUnknownUser = errors.New("unknown user")
)

// DefaultItems seeds an empty shop.
var DefaultItems = []store.RewardItem{
	{Name: "Staff meal upgrade", Description: "Pick any main from the menu for your staff meal", Price: 150, QuantityLeft: 20, Active: true},
	{Name: "Wine tasting seat", Description: "A seat at the next supplier tasting", Price: 400, QuantityLeft: 5, Active: true},
	{Name: "Early finish", Description: "Leave one hour early on a quiet shift", Price: 600, QuantityLeft: 10, Active: true},
	{Name: "Bottle of house wine", Description: "Take a bottle of the house red or white home", Price: 300, QuantityLeft: 15, Active: true},
	{Name: "Sommelier masterclass", Description: "One-on-one session with the head sommelier", Price: 1000, QuantityLeft: 3, Active: true},
}

// Repo is the persistence the shop needs.
type Repo interface {
	SeedRewards(ctx context.Context, items []store.RewardItem) error
	ListRewards(ctx context.Context, activeOnly bool) ([]store.RewardItem, error)
	Purchase(ctx context.Context, chatID, itemID int64) (*store.Purchase, error)
	Purchases(ctx context.Context, chatID int64) ([]store.Purchase, error)
}

// Shop sells reward items for experience.
type Shop struct {
	repo   Repo
	logger *slog.Logger
}

// NewShop creates a Shop.
func NewShop(repo Repo, logger *slog.Logger) *Shop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shop{repo: repo, logger: logger}
}

// Seed adds DefaultItems that are not in the shop yet.
func (s *Shop) Seed(ctx context.Context) error {
	return s.repo.SeedRewards(ctx, DefaultItems)
}

// Items lists active items, cheapest first.
func (s *Shop) Items(ctx context.Context) ([]store.RewardItem, error) {
	return s.repo.ListRewards(ctx, true)
}

// Buy debits the item's price from the user's experience, decrements the
// stock and records the purchase, all or nothing.
func (s *Shop) Buy(ctx context.Context, chatID, itemID int64) (*store.Purchase, error) {
	p, err := s.repo.Purchase(ctx, chatID, itemID)
	switch {
	case err == nil:
		s.logger.Info("reward purchased", "chat_id", chatID, "item_id", itemID, "price", p.Price)
		return p, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, store.ErrSoldOut):
		return nil, ErrSoldOut
	case errors.Is(err, store.ErrInsufficientFunds):
		return nil, ErrInsufficientFunds
	case errors.Is(err, store.ErrUnknownUser):
		return nil, ErrUnknownUser
	default:
		return nil, fmt.Errorf("purchase item %d: %w", itemID, err)
	}
}

// History returns the user's purchases, newest first.
func (s *Shop) History(ctx context.Context, chatID int64) ([]store.Purchase, error) {
	return s.repo.Purchases(ctx, chatID)
}

// Message returns the user-facing text for a purchase error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "That reward is no longer available."
	case errors.Is(err, ErrSoldOut):
		return "Sorry, that reward is sold out."
	case errors.Is(err, ErrInsufficientFunds):
		return "You don't have enough experience for that reward yet."
	case errors.Is(err, ErrUnknownUser):
		return "Please send /start first so we can open your account."
	}
	return "The purchase could not be completed. Please try again later."
}
