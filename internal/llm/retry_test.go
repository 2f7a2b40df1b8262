package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestRetry(t *testing.T) {
	outage := func() MockResponse { return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}} }

	tests := []struct {
		name      string
		req       Request
		script    []MockResponse
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "question first try",
			req:       questionRequest(),
			script:    []MockResponse{{Reply: baroloQuestion}},
			wantCalls: 1,
		},
		{
			name:      "outage then question",
			req:       questionRequest(),
			script:    []MockResponse{outage(), {Reply: baroloQuestion}},
			wantCalls: 2,
		},
		{
			name:      "outage on every attempt",
			req:       consultRequest(),
			script:    []MockResponse{outage(), outage(), outage(), MockText(consultReply)},
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "bad correct option retried once",
			req:       questionRequest(),
			script:    []MockResponse{{Reply: badOptionQuestion}, {Reply: baroloQuestion}},
			wantCalls: 2,
		},
		{
			name:      "bad correct option twice gives up",
			req:       questionRequest(),
			script:    []MockResponse{{Reply: badOptionQuestion}, {Reply: badOptionQuestion}, {Reply: baroloQuestion}},
			wantCalls: 2,
			wantErr:   true,
		},
		{
			name:      "cut-off question not retried",
			req:       questionRequest(),
			script:    []MockResponse{{Reply: `{"question_text":"At`, Stop: StopMaxTokens}, {Reply: baroloQuestion}},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:      "rate limit with hint",
			req:       consultRequest(),
			script:    []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond}}, MockText(consultReply)},
			wantCalls: 2,
		},
		{
			name:      "refused request not retried",
			req:       consultRequest(),
			script:    []MockResponse{{Err: classifyStatus(401, 0, errors.New("bad key"))}, MockText(consultReply)},
			wantCalls: 1,
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			resp, err := WithRetry(mock, fastRetry(3)).Generate(context.Background(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(resp.Content) == 0 {
				t.Fatal("empty content")
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockText(consultReply),
	)
	cfg := fastRetry(3)
	cfg.InitialWait, cfg.MaxWait = time.Hour, time.Hour
	p := WithRetry(mock, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, consultRequest())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d", mock.CallCount())
	}
}

func TestRetry_BackoffCapsRetryAfter(t *testing.T) {
	r := &RetryProvider{config: fastRetry(3)}
	got := r.backoff(0, &ErrRateLimit{RetryAfter: time.Minute})
	if got != 5*time.Millisecond {
		t.Fatalf("backoff = %s, want MaxWait", got)
	}
	for attempt := range 5 {
		if w := r.backoff(attempt, &ErrProviderUnavailable{}); w <= 0 || w > 6*time.Millisecond {
			t.Fatalf("attempt %d backoff %s out of range", attempt, w)
		}
	}
}

func TestRetry_ModelID(t *testing.T) {
	if id := WithRetry(NewMockProvider(), fastRetry(1)).ModelID(); id != "mock" {
		t.Fatalf("model = %q", id)
	}
}
