// Package learning runs quiz sessions end to end: question generation,
// grading, persistence, analytics, achievements and daily challenges.
package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/sommelier/internal/achievements"
	"github.com/abhisek/sommelier/internal/analytics"
	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/challenges"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
)

// ErrNoSession is returned when a chat has no session to act on.
var ErrNoSession = errors.New("no active session")

// Repo is the persistence the orchestrator uses.
type Repo interface {
	EnsureUser(ctx context.Context, chatID int64, displayName string) (*store.User, error)
	GetUser(ctx context.Context, chatID int64) (*store.User, error)
	TopUsers(ctx context.Context, limit int) ([]store.User, error)
	CountUsers(ctx context.Context) (int, error)
	ResetUser(ctx context.Context, chatID int64) error
	CreateSession(ctx context.Context, sess *store.Session) error
	ApplyAnswer(ctx context.Context, a store.AnswerData) (int64, error)
	FinishSession(ctx context.Context, data store.FinishData) (*store.Session, error)
	ListSessions(ctx context.Context, chatID int64, opts store.QueryOpts) ([]store.Session, error)
	CategoryStats(ctx context.Context, chatID int64) ([]store.Stat, error)
	QuestionTypeStats(ctx context.Context, chatID int64) ([]store.Stat, error)
	AddFeedback(ctx context.Context, chatID int64, message string) error
}

// Catalogue is the beverage list questions are drawn from.
type Catalogue interface {
	Get(ctx context.Context) ([]catalog.Item, catalog.Source)
	Find(ctx context.Context, id string) (catalog.Item, bool)
	Filter(ctx context.Context, f catalog.Filter) []catalog.Item
}

// Deps wires a Service.
type Deps struct {
	Repo         Repo
	Catalogue    Catalogue
	Templates    *questiongen.TemplateGenerator
	LLM          questiongen.Generator // nil when no provider is configured
	Sessions     *session.Store
	Planner      *session.Planner
	Analytics    *analytics.Service
	Achievements *achievements.Engine
	Challenges   *challenges.Engine
	Consultant   *Consultant
	Clock        challenges.Clock
	Logger       *slog.Logger
}

// Service is the learning orchestrator.
type Service struct {
	repo         Repo
	catalogue    Catalogue
	templates    *questiongen.TemplateGenerator
	smart        questiongen.Generator
	sessions     *session.Store
	planner      *session.Planner
	analytics    *analytics.Service
	achievements *achievements.Engine
	challenges   *challenges.Engine
	consultant   *Consultant
	clock        challenges.Clock
	logger       *slog.Logger
	newID        func() string
}

// New creates a Service.
func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var smart questiongen.Generator
	if d.LLM != nil {
		smart = questiongen.WithFallback(d.LLM, d.Templates, logger)
	}
	s := &Service{
		repo:         d.Repo,
		catalogue:    d.Catalogue,
		templates:    d.Templates,
		smart:        smart,
		sessions:     d.Sessions,
		planner:      d.Planner,
		analytics:    d.Analytics,
		achievements: d.Achievements,
		challenges:   d.Challenges,
		consultant:   d.Consultant,
		clock:        d.Clock,
		logger:       logger,
		newID:        uuid.NewString,
	}
	s.sessions.OnExpire(s.closeExpired)
	return s
}

// expiredCloseTimeout bounds closing one idle session in storage.
const expiredCloseTimeout = 10 * time.Second

// closeExpired closes a session dropped for idleness so it does not stay
// open in storage.
func (s *Service) closeExpired(st *session.State) {
	ctx, cancel := context.WithTimeout(context.Background(), expiredCloseTimeout)
	defer cancel()
	if _, err := s.complete(ctx, st); err != nil {
		s.logger.Warn("closing idle session failed", "chat_id", st.ChatID, "session_id", st.ID, "error", err)
		return
	}
	s.logger.Info("idle session closed", "chat_id", st.ChatID, "session_id", st.ID)
}

// Catalogue returns the catalogue the service draws from.
func (s *Service) Catalogue() Catalogue {
	return s.catalogue
}

// Sessions returns the session store.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Start begins a new session for the chat, closing any unfinished one, and
// presents its first question.
func (s *Service) Start(ctx context.Context, chatID int64, displayName string, mode session.Mode) (*session.State, error) {
	user, err := s.repo.EnsureUser(ctx, chatID, displayName)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	var out *session.State
	err = s.sessions.With(chatID, func(cur *session.State) (*session.State, error) {
		difficulty := questiongen.ParseDifficulty(user.Difficulty)
		if cur != nil && !cur.Done() {
			fin, err := s.complete(ctx, cur.Clone())
			if err != nil {
				s.logger.Warn("closing abandoned session failed", "chat_id", chatID, "session_id", cur.ID, "error", err)
			} else if fin.Summary.DifficultyAfter != "" {
				difficulty = fin.Summary.DifficultyAfter
			}
		}

		now := s.clock.Now()
		st := session.New(s.newID(), chatID, mode, difficulty, now)
		err := s.repo.CreateSession(ctx, &store.Session{
			ID:              st.ID,
			ChatID:          chatID,
			Mode:            string(mode),
			Difficulty:      string(st.Difficulty),
			TargetQuestions: st.Target,
			StartTime:       now,
		})
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}

		q, err := s.generate(ctx, st)
		if err != nil {
			return nil, err
		}
		if err := st.Present(q, s.clock.Now()); err != nil {
			return nil, err
		}
		out = st.Clone()
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("session started", "chat_id", chatID, "session_id", out.ID, "mode", mode, "difficulty", out.Difficulty)
	return out, nil
}

// Current returns a copy of the chat's session, or nil.
func (s *Service) Current(chatID int64) *session.State {
	return s.sessions.Peek(chatID)
}

// NextQuestion returns the open question, generating and presenting a new
// one when the previous was answered.
func (s *Service) NextQuestion(ctx context.Context, chatID int64) (*questiongen.Question, error) {
	var out *questiongen.Question
	err := s.sessions.With(chatID, func(cur *session.State) (*session.State, error) {
		if cur == nil {
			return nil, ErrNoSession
		}
		if cur.Done() {
			return cur, session.ErrFinished
		}
		if cur.Current != nil {
			q := *cur.Current
			out = &q
			return cur, nil
		}
		q, err := s.generate(ctx, cur)
		if err != nil {
			return cur, err
		}
		if err := cur.Present(q, s.clock.Now()); err != nil {
			return cur, err
		}
		c := *q
		out = &c
		return cur, nil
	})
	return out, err
}

// AnswerOutcome is everything that happened because of one answer.
type AnswerOutcome struct {
	Result       *session.Result
	State        *session.State
	Next         *questiongen.Question
	Summary      *session.Summary
	Achievements []achievements.Achievement
	Challenges   []store.DailyChallenge
}

// Answer grades label for the chat's open question and applies every
// consequence. questionID may be empty. On a persistence failure the
// session is left as it was, so the user can answer again.
func (s *Service) Answer(ctx context.Context, chatID int64, questionID, label string) (*AnswerOutcome, error) {
	var out *AnswerOutcome
	err := s.sessions.With(chatID, func(cur *session.State) (*session.State, error) {
		if cur == nil {
			return nil, ErrNoSession
		}
		st := cur.Clone()
		now := s.clock.Now()
		res, err := st.Answer(questionID, label, now)
		if err != nil {
			return cur, err
		}

		q := res.Question
		answerID, err := s.repo.ApplyAnswer(ctx, store.AnswerData{
			SessionID:      st.ID,
			ChatID:         chatID,
			QuestionText:   q.Text,
			ChosenOption:   label,
			CorrectOption:  q.Correct,
			Correct:        res.Correct,
			Category:       string(q.Category),
			QuestionType:   string(q.Type),
			ResponseTimeMs: res.Elapsed.Milliseconds(),
			Points:         res.Points,
			Streak:         res.Streak,
			At:             now,
		})
		if err != nil {
			return cur, fmt.Errorf("record answer: %w", err)
		}
		s.analytics.Record(chatID, analytics.Event{
			AnswerID:     answerID,
			Category:     string(q.Category),
			QuestionType: string(q.Type),
			Correct:      res.Correct,
			Elapsed:      res.Elapsed,
			At:           now,
		})

		out = &AnswerOutcome{Result: res}
		if res.Done {
			fin, err := s.complete(ctx, st)
			if err != nil {
				s.logger.Warn("finishing session failed", "chat_id", chatID, "session_id", st.ID, "error", err)
			} else {
				out.Summary = fin.Summary
				out.Achievements = fin.Achievements
				out.Challenges = fin.Challenges
			}
		} else {
			out.Achievements, out.Challenges = s.award(ctx, chatID, false)
			next, err := s.generate(ctx, st)
			if err != nil {
				s.logger.Warn("next question failed", "chat_id", chatID, "error", err)
			} else if err := st.Present(next, s.clock.Now()); err == nil {
				c := *next
				out.Next = &c
			}
		}
		out.State = st.Clone()
		return st, nil
	})
	return out, err
}

// Finished is the result of closing a session.
type Finished struct {
	Summary      *session.Summary
	Session      *store.Session
	Achievements []achievements.Achievement
	Challenges   []store.DailyChallenge
}

// Finish closes the chat's session early. Finishing a finished session
// returns its summary again without side effects.
func (s *Service) Finish(ctx context.Context, chatID int64) (*Finished, error) {
	var out *Finished
	err := s.sessions.With(chatID, func(cur *session.State) (*session.State, error) {
		if cur == nil {
			return nil, ErrNoSession
		}
		if cur.Done() {
			out = &Finished{Summary: session.BuildSummary(cur)}
			return cur, nil
		}
		st := cur.Clone()
		fin, err := s.complete(ctx, st)
		if err != nil {
			return cur, err
		}
		out = fin
		return st, nil
	})
	return out, err
}

// complete finishes st in memory and in storage, then runs achievements
// and challenges.
func (s *Service) complete(ctx context.Context, st *session.State) (*Finished, error) {
	now := s.clock.Now()
	sum := st.Finish(now)
	day := s.clock.Day(now)

	sess, err := s.repo.FinishSession(ctx, store.FinishData{
		SessionID:  st.ID,
		ChatID:     st.ChatID,
		Bonus:      sum.Bonus,
		Difficulty: string(sum.DifficultyAfter),
		Day:        day,
		PrevDay:    s.clock.PrevDay(day),
		At:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	s.logger.Info("session finished", "chat_id", st.ChatID, "session_id", st.ID,
		"answered", sum.Answered, "correct", sum.Correct, "grade", sum.Grade, "promoted", sum.Promoted())

	fin := &Finished{Summary: sum, Session: sess}
	fin.Achievements, fin.Challenges = s.award(ctx, st.ChatID, sum.Perfect && sum.Answered >= achievements.PerfectMinAnswers)
	return fin, nil
}

// award runs the achievement and challenge engines. Failures are logged;
// the answer has already been recorded and stands.
func (s *Service) award(ctx context.Context, chatID int64, perfect bool) ([]achievements.Achievement, []store.DailyChallenge) {
	user, err := s.repo.GetUser(ctx, chatID)
	if err != nil {
		s.logger.Warn("load user for awards failed", "chat_id", chatID, "error", err)
		return nil, nil
	}

	stats, err := s.achievementStats(ctx, user, perfect)
	if err != nil {
		s.logger.Warn("achievement stats failed", "chat_id", chatID, "error", err)
	}
	unlocked, err := s.achievements.CheckAndAward(ctx, chatID, stats)
	if err != nil {
		s.logger.Warn("achievement check failed", "chat_id", chatID, "error", err)
	}

	done, err := s.challenges.UpdateProgress(ctx, chatID, user.Level())
	if err != nil {
		s.logger.Warn("challenge update failed", "chat_id", chatID, "error", err)
	}
	return unlocked, done
}

func (s *Service) achievementStats(ctx context.Context, u *store.User, perfect bool) (achievements.Stats, error) {
	st := achievements.Stats{
		TotalQuestions:  u.TotalQuestions,
		TotalCorrect:    u.TotalCorrect,
		TotalScore:      u.TotalScore,
		MaxStreak:       u.MaxStreak,
		ConsecutiveDays: u.ConsecutiveDays,
		PerfectSession:  perfect,
	}

	sessions, err := s.repo.ListSessions(ctx, u.ChatID, store.QueryOpts{})
	if err != nil {
		return st, err
	}
	for _, sess := range sessions {
		if sess.Closed() {
			st.SessionsCompleted++
		}
	}

	cats, err := s.repo.CategoryStats(ctx, u.ChatID)
	if err != nil {
		return st, err
	}
	st.CategoriesTried = len(cats)

	tracker, err := s.analytics.Get(ctx, u.ChatID)
	if err != nil {
		return st, err
	}
	st.StrongCategories = len(tracker.StrongCategories())
	return st, nil
}
