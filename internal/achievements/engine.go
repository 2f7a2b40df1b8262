package achievements

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/sommelier/internal/store"
)

// Repo persists unlocked achievements.
type Repo interface {
	Achievements(ctx context.Context, chatID int64) ([]store.UnlockedAchievement, error)
	UnlockAchievement(ctx context.Context, chatID int64, key string, points int) (bool, error)
}

// Engine evaluates Table against stats and awards what is newly met.
type Engine struct {
	repo   Repo
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(repo Repo, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, logger: logger}
}

// CheckAndAward unlocks every achievement the stats satisfy that the user
// does not have yet, crediting its points as experience. Calling it again
// with the same stats awards nothing.
func (e *Engine) CheckAndAward(ctx context.Context, chatID int64, stats Stats) ([]Achievement, error) {
	have, err := e.repo.Achievements(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	owned := make(map[string]bool, len(have))
	for _, a := range have {
		owned[a.Key] = true
	}

	var awarded []Achievement
	for _, a := range Table {
		if owned[a.Key] || !a.Unlocked(stats) {
			continue
		}
		inserted, err := e.repo.UnlockAchievement(ctx, chatID, a.Key, a.Points)
		if err != nil {
			return awarded, fmt.Errorf("unlock %s: %w", a.Key, err)
		}
		if inserted {
			e.logger.Info("achievement unlocked", "chat_id", chatID, "key", a.Key, "points", a.Points)
			awarded = append(awarded, a)
		}
	}
	return awarded, nil
}

// Status is an achievement with the user's unlock state.
type Status struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// List returns every achievement with the user's progress on it.
func (e *Engine) List(ctx context.Context, chatID int64) ([]Status, error) {
	have, err := e.repo.Achievements(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	at := make(map[string]time.Time, len(have))
	for _, a := range have {
		at[a.Key] = a.UnlockedAt
	}

	out := make([]Status, 0, len(Table))
	for _, a := range Table {
		st := Status{Achievement: a}
		if t, ok := at[a.Key]; ok {
			st.Unlocked = true
			st.UnlockedAt = &t
		}
		out = append(out, st)
	}
	return out, nil
}
