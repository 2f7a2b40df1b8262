package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/sommelier/internal/store"
)

// DefaultCacheSize bounds the number of trackers held in memory.
const DefaultCacheSize = 1024

// AnswerSource reads persisted answers for the cold-start rebuild.
type AnswerSource interface {
	ListAnswers(ctx context.Context, chatID int64, opts store.QueryOpts) ([]store.Answer, error)
}

// Event is one persisted answer.
type Event struct {
	AnswerID     int64
	Category     string
	QuestionType string
	Correct      bool
	Elapsed      time.Duration
	At           time.Time
}

// Service holds a Tracker per chat. A chat's tracker is rebuilt from its
// persisted answers the first time it is needed, so restarts and
// evictions lose nothing.
type Service struct {
	src    AnswerSource
	logger *slog.Logger

	mu       sync.Mutex // guards tracker contents and pending
	trackers *lru.Cache
	pending  map[int64][]Event // events seen while a rebuild is in flight
	group    singleflight.Group
}

// NewService creates a Service holding at most size trackers.
func NewService(src AnswerSource, size int, logger *slog.Logger) (*Service, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create tracker cache: %w", err)
	}
	return &Service{src: src, logger: logger, trackers: cache, pending: make(map[int64][]Event)}, nil
}

// Get returns a copy of the chat's tracker, loading it if needed.
func (s *Service) Get(ctx context.Context, chatID int64) (*Tracker, error) {
	t, err := s.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Clone(), nil
}

func (s *Service) load(ctx context.Context, chatID int64) (*Tracker, error) {
	if v, ok := s.trackers.Get(chatID); ok {
		return v.(*Tracker), nil
	}

	v, err, _ := s.group.Do(strconv.FormatInt(chatID, 10), func() (any, error) {
		s.mu.Lock()
		if v, ok := s.trackers.Get(chatID); ok {
			s.mu.Unlock()
			return v, nil
		}
		if _, ok := s.pending[chatID]; !ok {
			s.pending[chatID] = nil
		}
		s.mu.Unlock()

		t, err := s.rebuild(ctx, chatID)

		s.mu.Lock()
		defer s.mu.Unlock()
		events := s.pending[chatID]
		delete(s.pending, chatID)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			apply(t, e)
		}
		s.trackers.Add(chatID, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tracker), nil
}

func (s *Service) rebuild(ctx context.Context, chatID int64) (*Tracker, error) {
	t := NewTracker()
	if s.src == nil {
		return t, nil
	}
	answers, err := s.src.ListAnswers(ctx, chatID, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("rebuild analytics for %d: %w", chatID, err)
	}
	for _, a := range answers {
		apply(t, Event{
			AnswerID:     a.ID,
			Category:     a.Category,
			QuestionType: a.QuestionType,
			Correct:      a.Correct,
			Elapsed:      time.Duration(a.ResponseTimeMs) * time.Millisecond,
			At:           a.CreatedAt,
		})
	}
	s.logger.Debug("analytics rebuilt", "chat_id", chatID, "answers", len(answers))
	return t, nil
}

// apply folds e into t unless t already holds it.
func apply(t *Tracker, e Event) {
	if e.AnswerID != 0 && e.AnswerID <= t.LastAnswerID {
		return
	}
	t.RecordAnswer(e.Category, e.QuestionType, e.Correct, e.Elapsed, e.At)
	if e.AnswerID > t.LastAnswerID {
		t.LastAnswerID = e.AnswerID
	}
}

// Record folds a persisted answer into the chat's tracker. While the
// tracker is being rebuilt the event is held and applied once the rebuild
// lands; answers the rebuild already read are skipped by id. Trackers
// neither loaded nor loading are left alone: the next Get reads the answer
// from storage.
func (s *Service) Record(chatID int64, e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.trackers.Get(chatID); ok {
		apply(v.(*Tracker), e)
		return
	}
	if events, ok := s.pending[chatID]; ok {
		s.pending[chatID] = append(events, e)
	}
}

// Forget drops the chat's tracker, e.g. after a progress reset.
func (s *Service) Forget(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers.Remove(chatID)
}
