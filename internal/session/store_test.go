package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/sommelier/internal/questiongen"
)

func TestStore_WithCreatesAndUpdates(t *testing.T) {
	st := NewStore(time.Hour, nil)

	err := st.With(7, func(cur *State) (*State, error) {
		if cur != nil {
			t.Error("expected no session")
		}
		return New("sess-7", 7, ModeQuick, questiongen.Beginner, t0), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got := st.Peek(7)
	if got == nil || got.ID != "sess-7" {
		t.Fatalf("Peek = %+v", got)
	}
	got.Answered = 99
	if st.Peek(7).Answered != 0 {
		t.Error("Peek must return a copy")
	}

	if chat, ok := st.ChatFor("sess-7"); !ok || chat != 7 {
		t.Errorf("ChatFor = %d %v", chat, ok)
	}
}

func TestStore_ErrorKeepsState(t *testing.T) {
	st := NewStore(time.Hour, nil)
	_ = st.With(1, func(*State) (*State, error) {
		return New("a", 1, ModeQuick, questiongen.Beginner, t0), nil
	})

	boom := errors.New("boom")
	err := st.With(1, func(cur *State) (*State, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if st.Peek(1) == nil {
		t.Error("failed update must not remove the session")
	}
}

func TestStore_SerializesSameChat(t *testing.T) {
	st := NewStore(time.Hour, nil)
	_ = st.With(1, func(*State) (*State, error) {
		return New("a", 1, ModeAI, questiongen.Beginner, t0), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.With(1, func(cur *State) (*State, error) {
				cur.Score++
				return cur, nil
			})
		}()
	}
	wg.Wait()

	if got := st.Peek(1).Score; got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestStore_TTLAndSweep(t *testing.T) {
	st := NewStore(time.Minute, nil)
	now := t0
	st.now = func() time.Time { return now }

	_ = st.With(1, func(*State) (*State, error) {
		return New("a", 1, ModeQuick, questiongen.Beginner, now), nil
	})
	_ = st.With(2, func(*State) (*State, error) {
		return New("b", 2, ModeQuick, questiongen.Beginner, now), nil
	})

	now = now.Add(30 * time.Second)
	_ = st.With(2, func(cur *State) (*State, error) { return cur, nil })

	now = now.Add(45 * time.Second)
	if st.Peek(1) != nil {
		t.Error("chat 1 should have expired")
	}
	if st.Peek(2) == nil {
		t.Error("chat 2 was touched and should be live")
	}

	if n := st.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if _, ok := st.ChatFor("a"); ok {
		t.Error("expired session id still indexed")
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}

	// A fresh session can be created after eviction.
	_ = st.With(1, func(cur *State) (*State, error) {
		if cur != nil {
			t.Error("expected a clean slate")
		}
		return New("c", 1, ModeQuick, questiongen.Beginner, now), nil
	})
	if st.Peek(1) == nil {
		t.Error("new session missing")
	}
}

func TestStore_OnExpire(t *testing.T) {
	st := NewStore(time.Minute, nil)
	now := t0
	st.now = func() time.Time { return now }

	var expired []string
	st.OnExpire(func(s *State) { expired = append(expired, s.ID) })

	for chatID, id := range map[int64]string{1: "swept", 2: "replaced"} {
		_ = st.With(chatID, func(*State) (*State, error) {
			return New(id, chatID, ModeQuick, questiongen.Beginner, now), nil
		})
	}
	now = now.Add(2 * time.Minute)

	// The expired session is handed over before fn sees a clean slate.
	err := st.With(2, func(cur *State) (*State, error) {
		if cur != nil {
			t.Error("expired session passed to fn")
		}
		return nil, errors.New("no session")
	})
	if err == nil {
		t.Fatal("expected fn error")
	}
	if len(expired) != 1 || expired[0] != "replaced" {
		t.Fatalf("expired = %v, want [replaced]", expired)
	}

	st.Sweep()
	if len(expired) != 2 || expired[1] != "swept" {
		t.Fatalf("expired = %v, want [replaced swept]", expired)
	}

	// Nothing is handed over twice.
	st.Sweep()
	_ = st.With(2, func(cur *State) (*State, error) { return cur, nil })
	if len(expired) != 2 {
		t.Errorf("expired = %v, want 2 entries", expired)
	}
}

func TestStore_Delete(t *testing.T) {
	st := NewStore(time.Hour, nil)
	_ = st.With(1, func(*State) (*State, error) {
		return New("a", 1, ModeQuick, questiongen.Beginner, t0), nil
	})
	st.Delete(1)
	if st.Peek(1) != nil {
		t.Error("session still present after Delete")
	}
	if _, ok := st.ChatFor("a"); ok {
		t.Error("id still indexed after Delete")
	}
}

func TestStore_RunStopsOnCancel(t *testing.T) {
	st := NewStore(time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
