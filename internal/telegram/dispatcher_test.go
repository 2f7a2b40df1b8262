package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/sommelier/internal/logging"
)

// editFailSender fails every Request with err and accepts every Send.
type editFailSender struct {
	fakeSender
	err error
}

func (s *editFailSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
	return nil, s.err
}

func TestEditFallsBackToSend(t *testing.T) {
	s := &editFailSender{err: errors.New("Bad Request: message can't be edited")}
	d := NewDispatcher(s, 0, logging.Discard())

	if err := d.Edit(context.Background(), 3, 10, "hello", MenuOnly()); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if len(s.calls) != 2 {
		t.Fatalf("calls = %d, want edit then send", len(s.calls))
	}
	if _, ok := s.calls[0].(tgbotapi.EditMessageTextConfig); !ok {
		t.Errorf("first call = %T, want edit", s.calls[0])
	}
	msg, ok := s.calls[1].(tgbotapi.MessageConfig)
	if !ok || msg.Text != "hello" || msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("fallback = %#v", s.calls[1])
	}
}

func TestEditNotModifiedIsSilent(t *testing.T) {
	s := &editFailSender{err: errors.New("Bad Request: message is not modified")}
	d := NewDispatcher(s, 0, logging.Discard())

	if err := d.Edit(context.Background(), 3, 10, "same", nil); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if len(s.calls) != 1 {
		t.Errorf("calls = %d, want only the edit", len(s.calls))
	}
}

func TestEditWithoutMessageSends(t *testing.T) {
	s := &fakeSender{}
	d := NewDispatcher(s, 0, logging.Discard())

	if err := d.Edit(context.Background(), 3, 0, "fresh", nil); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if _, ok := s.calls[0].(tgbotapi.MessageConfig); !ok {
		t.Errorf("call = %T, want a new message", s.calls[0])
	}
}

func TestSendReturnsMessageID(t *testing.T) {
	s := &fakeSender{}
	d := NewDispatcher(s, 30, logging.Discard())

	id, err := d.Send(context.Background(), 3, "hi", nil)
	if err != nil || id != 101 {
		t.Errorf("Send = %d, %v; want 101", id, err)
	}
}

func TestSendHonoursCancelledContext(t *testing.T) {
	s := &fakeSender{}
	d := NewDispatcher(s, 1, logging.Discard())
	// Drain the single token so the next call has to wait.
	if _, err := d.Send(context.Background(), 3, "one", nil); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := d.Send(ctx, 3, "two", nil); err == nil {
		t.Error("expected rate limit wait to fail on a short deadline")
	}
	if len(s.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(s.calls))
	}
}

func TestPendingExpires(t *testing.T) {
	p := newPendingStore(8, time.Minute)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.set(1, awaitQuestion, "fb-wine-1")
	in, ok := p.take(1)
	if !ok || in.kind != awaitQuestion || in.itemID != "fb-wine-1" {
		t.Fatalf("take = %+v, %v", in, ok)
	}
	if _, ok := p.take(1); ok {
		t.Error("take should consume the entry")
	}

	p.set(2, awaitFeedback, "")
	now = now.Add(2 * time.Minute)
	if _, ok := p.take(2); ok {
		t.Error("expired entry returned")
	}

	p.set(3, awaitFeedback, "")
	p.clear(3)
	if _, ok := p.take(3); ok {
		t.Error("cleared entry returned")
	}
}
