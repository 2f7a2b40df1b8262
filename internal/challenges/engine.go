package challenges

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/abhisek/sommelier/internal/store"
)

// Repo is the persistence the engine needs.
type Repo interface {
	ChallengesForDay(ctx context.Context, chatID int64, day string) ([]store.DailyChallenge, error)
	InsertChallenges(ctx context.Context, challenges []store.DailyChallenge) error
	SetChallengeProgress(ctx context.Context, id, progress int) error
	CompleteChallenge(ctx context.Context, c store.DailyChallenge, at time.Time) (bool, error)
	ListSessions(ctx context.Context, chatID int64, opts store.QueryOpts) ([]store.Session, error)
	ListFinishedSessions(ctx context.Context, chatID int64, opts store.QueryOpts) ([]store.Session, error)
	ListAnswers(ctx context.Context, chatID int64, opts store.QueryOpts) ([]store.Answer, error)
}

// Engine creates and advances daily challenges.
type Engine struct {
	repo   Repo
	clock  Clock
	logger *slog.Logger
}

// NewEngine creates an Engine. Days are counted in the clock's location.
func NewEngine(repo Repo, clock Clock, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, clock: clock, logger: logger}
}

// EnsureToday creates today's challenges if the user has none and returns
// them. The selection is derived from the chat and the day, so concurrent
// or repeated calls agree on the same set.
func (e *Engine) EnsureToday(ctx context.Context, chatID int64, level int) ([]store.DailyChallenge, error) {
	day := e.clock.Today()
	existing, err := e.repo.ChallengesForDay(ctx, chatID, day)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	picked := Select(chatID, day, level)
	rows := make([]store.DailyChallenge, 0, len(picked))
	for _, t := range picked {
		rows = append(rows, store.DailyChallenge{
			ChatID: chatID,
			Day:    day,
			Key:    t.Key,
			Title:  t.Title,
			Target: t.Target,
			Reward: t.Reward,
		})
	}
	if err := e.repo.InsertChallenges(ctx, rows); err != nil {
		return nil, err
	}
	return e.repo.ChallengesForDay(ctx, chatID, day)
}

// Select picks the day's templates for a user.
func Select(chatID int64, day string, level int) []Template {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d/%s", chatID, day)
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	pool := Eligible(level)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	n := min(CountFor(level), len(pool))
	return pool[:n]
}

// UpdateProgress recomputes today's challenges from today's activity and
// completes those that reached their target. It returns the challenges
// completed by this call. Completed challenges are never touched again.
func (e *Engine) UpdateProgress(ctx context.Context, chatID int64, level int) ([]store.DailyChallenge, error) {
	list, err := e.EnsureToday(ctx, chatID, level)
	if err != nil {
		return nil, err
	}
	stats, err := e.Stats(ctx, chatID, e.clock.Today())
	if err != nil {
		return nil, err
	}

	var done []store.DailyChallenge
	for _, c := range list {
		if c.Completed {
			continue
		}
		t, ok := Lookup(c.Key)
		if !ok {
			continue
		}
		p := t.Progress(stats)
		if p >= c.Target {
			ok, err := e.repo.CompleteChallenge(ctx, c, e.clock.Now())
			if err != nil {
				return done, err
			}
			if ok {
				c.Completed = true
				c.Progress = c.Target
				e.logger.Info("daily challenge completed", "chat_id", chatID, "key", c.Key, "reward", c.Reward)
				done = append(done, c)
			}
			continue
		}
		if p != c.Progress {
			if err := e.repo.SetChallengeProgress(ctx, c.ID, p); err != nil {
				return done, err
			}
		}
	}
	return done, nil
}

// Stats aggregates a user's activity on day.
func (e *Engine) Stats(ctx context.Context, chatID int64, day string) (DayStats, error) {
	from, to, err := e.clock.Bounds(day)
	if err != nil {
		return DayStats{}, err
	}
	opts := store.QueryOpts{From: from, To: to}

	var st DayStats
	started, err := e.repo.ListSessions(ctx, chatID, opts)
	if err != nil {
		return st, fmt.Errorf("day sessions: %w", err)
	}
	for _, s := range started {
		st.BestStreak = max(st.BestStreak, s.MaxStreak)
	}

	// A session counts for the day it was finished on.
	finished, err := e.repo.ListFinishedSessions(ctx, chatID, opts)
	if err != nil {
		return st, fmt.Errorf("day finished sessions: %w", err)
	}
	for _, s := range finished {
		st.BestStreak = max(st.BestStreak, s.MaxStreak)
		st.SessionsCompleted++
		if s.QuestionsAnswered >= accuracyMinAnswers && s.CorrectAnswers == s.QuestionsAnswered {
			st.PerfectSessions++
		}
	}

	answers, err := e.repo.ListAnswers(ctx, chatID, opts)
	if err != nil {
		return st, fmt.Errorf("day answers: %w", err)
	}
	for _, a := range answers {
		st.Answers++
		if a.Correct {
			st.Correct++
			if a.ResponseTimeMs > 0 && time.Duration(a.ResponseTimeMs)*time.Millisecond < FastAnswer {
				st.FastAnswers++
			}
		}
	}
	return st, nil
}
