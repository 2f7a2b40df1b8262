package learning

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/sommelier/internal/achievements"
	"github.com/abhisek/sommelier/internal/analytics"
	"github.com/abhisek/sommelier/internal/store"
)

// CategoryStat is per-category accuracy for display.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// UserStats is the full progress view of one user.
type UserStats struct {
	User             store.User                 `json:"-"`
	Level            int                        `json:"level"`
	Accuracy         float64                    `json:"accuracy"`
	Categories       []CategoryStat             `json:"categories"`
	QuestionTypes    []CategoryStat             `json:"questionTypes"`
	WeakCategories   []string                   `json:"weakCategories"`
	StrongCategories []string                   `json:"strongCategories"`
	Recommendations  []analytics.Recommendation `json:"recommendations"`
	Achievements     int                        `json:"achievementsUnlocked"`
}

// Stats returns a user's progress. Unknown users get store.ErrNotFound.
func (s *Service) Stats(ctx context.Context, chatID int64) (*UserStats, error) {
	u, err := s.repo.GetUser(ctx, chatID)
	if err != nil {
		return nil, err
	}
	cats, err := s.repo.CategoryStats(ctx, chatID)
	if err != nil {
		return nil, err
	}
	types, err := s.repo.QuestionTypeStats(ctx, chatID)
	if err != nil {
		return nil, err
	}
	tracker, err := s.analytics.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	list, err := s.achievements.List(ctx, chatID)
	if err != nil {
		return nil, err
	}
	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}

	return &UserStats{
		User:             *u,
		Level:            u.Level(),
		Accuracy:         u.Accuracy(),
		Categories:       toCategoryStats(cats),
		QuestionTypes:    toCategoryStats(types),
		WeakCategories:   tracker.WeakCategories(),
		StrongCategories: tracker.StrongCategories(),
		Recommendations:  tracker.Recommendations(s.clock.Now()),
		Achievements:     unlocked,
	}, nil
}

func toCategoryStats(in []store.Stat) []CategoryStat {
	out := make([]CategoryStat, 0, len(in))
	for _, st := range in {
		cs := CategoryStat{Category: st.Key, Total: st.Total, Correct: st.Correct}
		if st.Total > 0 {
			cs.Accuracy = float64(st.Correct) / float64(st.Total)
		}
		out = append(out, cs)
	}
	return out
}

// Achievements lists every achievement with the user's unlock state.
func (s *Service) Achievements(ctx context.Context, chatID int64) ([]achievements.Status, error) {
	if _, err := s.repo.GetUser(ctx, chatID); err != nil {
		return nil, err
	}
	return s.achievements.List(ctx, chatID)
}

// DailyChallenges returns today's challenges, creating them if needed.
func (s *Service) DailyChallenges(ctx context.Context, chatID int64) ([]store.DailyChallenge, error) {
	u, err := s.repo.GetUser(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.challenges.EnsureToday(ctx, chatID, u.Level())
}

// Leaderboard returns the top users by experience.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]store.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.TopUsers(ctx, limit)
}

// Reset wipes a user's learning progress, including any open session.
func (s *Service) Reset(ctx context.Context, chatID int64) error {
	if err := s.repo.ResetUser(ctx, chatID); err != nil {
		return err
	}
	s.sessions.Delete(chatID)
	s.analytics.Forget(chatID)
	s.logger.Info("user progress reset", "chat_id", chatID)
	return nil
}

// MaxFeedbackLength bounds stored feedback.
const MaxFeedbackLength = 2000

// Feedback stores a user's free-form feedback.
func (s *Service) Feedback(ctx context.Context, chatID int64, displayName, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("feedback is empty")
	}
	text = truncate(text, MaxFeedbackLength)
	if _, err := s.repo.EnsureUser(ctx, chatID, displayName); err != nil {
		return err
	}
	return s.repo.AddFeedback(ctx, chatID, text)
}

// Register creates the user on first contact and refreshes the name.
func (s *Service) Register(ctx context.Context, chatID int64, displayName string) (*store.User, error) {
	return s.repo.EnsureUser(ctx, chatID, displayName)
}

// User returns one user or store.ErrNotFound.
func (s *Service) User(ctx context.Context, chatID int64) (*store.User, error) {
	return s.repo.GetUser(ctx, chatID)
}

// UserCount returns the number of registered users.
func (s *Service) UserCount(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx)
}
