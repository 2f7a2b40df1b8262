package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted model turn. Reply is the raw text the model
// "sends"; it goes through the same schema and truncation checks as a
// vendor reply. Stop set to StopMaxTokens simulates a cut-off reply.
type MockResponse struct {
	Reply string
	Stop  string
	Usage Usage
	Err   error
}

// MockText scripts a free-text reply such as a consultation answer.
func MockText(text string) MockResponse {
	return MockResponse{Reply: text}
}

// MockJSON scripts a structured reply encoded from v.
func MockJSON(v any) MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		return MockResponse{Err: err}
	}
	return MockResponse{Reply: string(b)}
}

// MockProvider plays scripted turns in order and records every request.
// It backs the "mock" provider setting and tests. With nothing scripted
// it behaves like an unreachable vendor.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

// NewMockProvider creates a MockProvider with the given script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	turn := m.script[0]
	m.script = m.script[1:]
	m.mu.Unlock()

	if turn.Err != nil {
		return nil, turn.Err
	}
	return finishReply(req, reply{text: turn.Reply, stop: turn.Stop, usage: turn.Usage, model: "mock"})
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends a turn to the script.
func (m *MockProvider) AddResponse(turn MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, turn)
}

// CallCount returns how many requests were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
