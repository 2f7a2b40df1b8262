package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 2 * time.Hour

// Store keeps one session per chat. Updates for the same chat are
// serialized; different chats never contend.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	byID    map[string]int64

	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	onExpire func(*State)
}

type entry struct {
	mu      sync.Mutex
	state   *State
	touched time.Time
	dead    bool
}

// NewStore creates a Store evicting sessions idle for longer than ttl.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries: make(map[int64]*entry),
		byID:    make(map[string]int64),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// OnExpire registers fn to receive every unfinished session dropped for
// idleness. fn gets a copy and must not call back into the Store.
func (s *Store) OnExpire(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = fn
}

func (s *Store) expire(states []*State) {
	s.mu.Lock()
	fn := s.onExpire
	s.mu.Unlock()
	if fn == nil {
		return
	}
	for _, st := range states {
		fn(st)
	}
}

// lock returns the chat's entry with its lock held.
func (s *Store) lock(chatID int64) *entry {
	for {
		s.mu.Lock()
		e, ok := s.entries[chatID]
		if !ok {
			e = &entry{}
			s.entries[chatID] = e
		}
		s.mu.Unlock()

		e.mu.Lock()
		if !e.dead {
			return e
		}
		e.mu.Unlock()
	}
}

// With runs fn with the chat's current state (nil if none) under the
// chat's lock. The state fn returns replaces the stored one; returning nil
// removes it. When fn fails the stored state is left as it was.
func (s *Store) With(chatID int64, fn func(cur *State) (*State, error)) error {
	e := s.lock(chatID)
	defer e.mu.Unlock()

	cur := e.state
	if cur != nil && s.expired(e) {
		s.mu.Lock()
		delete(s.byID, cur.ID)
		s.mu.Unlock()
		e.state = nil
		if !cur.Done() {
			s.expire([]*State{cur.Clone()})
		}
		cur = nil
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if e.state != nil {
		delete(s.byID, e.state.ID)
	}
	if next != nil {
		s.byID[next.ID] = chatID
	}
	s.mu.Unlock()

	e.state = next
	e.touched = s.now()
	return nil
}

// Peek returns a copy of the chat's session, or nil.
func (s *Store) Peek(chatID int64) *State {
	s.mu.Lock()
	e, ok := s.entries[chatID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead || e.state == nil || s.expired(e) {
		return nil
	}
	return e.state.Clone()
}

// ChatFor returns the chat owning a session id.
func (s *Store) ChatFor(sessionID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chatID, ok := s.byID[sessionID]
	return chatID, ok
}

// Delete drops the chat's session.
func (s *Store) Delete(chatID int64) {
	_ = s.With(chatID, func(*State) (*State, error) { return nil, nil })
}

// Len returns the number of chats with a live session.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Store) expired(e *entry) bool {
	return s.now().Sub(e.touched) > s.ttl
}

// Sweep removes expired and empty entries and hands unfinished expired
// sessions to the OnExpire hook. Entries busy in With are skipped and
// picked up by a later sweep.
func (s *Store) Sweep() int {
	s.mu.Lock()
	removed := 0
	var dropped []*State
	for chatID, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.state == nil || s.expired(e) {
			if e.state != nil {
				delete(s.byID, e.state.ID)
				removed++
				if !e.state.Done() {
					dropped = append(dropped, e.state.Clone())
				}
			}
			e.dead = true
			delete(s.entries, chatID)
		}
		e.mu.Unlock()
	}
	s.mu.Unlock()

	s.expire(dropped)
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("evicted idle sessions", "count", n)
			}
		}
	}
}
