package learning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/llm"
)

func TestConsultant_CachesAnswers(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Serve it at 16-18°C with braised beef."))
	c, err := NewConsultant(mock, ConsultOptions{TTL: time.Minute}, nil)
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	item := catalog.Item{ID: "fb-wine-2", Name: "Barolo DOCG", Category: catalog.CategoryWine, ServingTemp: "16-18°C"}
	a := c.Ask(context.Background(), "How do I serve it?", &item)
	assert.Equal(t, "Serve it at 16-18°C with braised beef.", a.Text)
	assert.False(t, a.Cached)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Barolo DOCG")

	b := c.Ask(context.Background(), "  how do I serve it? ", &item)
	assert.True(t, b.Cached)
	assert.Equal(t, 1, mock.CallCount())

	// Different item, different key.
	other := c.Ask(context.Background(), "How do I serve it?", nil)
	assert.True(t, other.Fallback, "mock queue is empty")

	now = now.Add(2 * time.Minute)
	expired := c.Ask(context.Background(), "How do I serve it?", &item)
	assert.False(t, expired.Cached)
}

func TestConsultant_Apology(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("timeout")}})
	c, err := NewConsultant(mock, ConsultOptions{}, nil)
	require.NoError(t, err)

	a := c.Ask(context.Background(), "What pairs with oysters?", nil)
	assert.Equal(t, Apology, a.Text)
	assert.True(t, a.Fallback)

	none, err := NewConsultant(nil, ConsultOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Apology, none.Ask(context.Background(), "anything", nil).Text)
}

func TestServiceConsultResolvesItem(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Chill it to 6-8°C."))
	h := newHarness(t, mock)

	a := h.svc.Consult(context.Background(), "How cold?", "fb-spk-1")
	assert.Equal(t, "Chill it to 6-8°C.", a.Text)
	require.Equal(t, 1, mock.CallCount())
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Champagne Brut")
}

func TestConsultant_LongQuestionKeepsRunesWhole(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Yes."))
	c, err := NewConsultant(mock, ConsultOptions{}, nil)
	require.NoError(t, err)

	q := strings.Repeat("в", MaxQuestionLength)
	c.Ask(context.Background(), q, nil)
	require.Equal(t, 1, mock.CallCount())
	prompt := mock.Calls[0].Messages[0].Content
	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("в", MaxQuestionLength/2))
	assert.NotContains(t, prompt, strings.Repeat("в", MaxQuestionLength/2+1))
}
