package learning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/llm"
)

// Apology is returned when no answer can be produced.
const Apology = "Sorry, the sommelier is unavailable right now. Please try again in a few minutes."

// MaxQuestionLength bounds consultation questions.
const MaxQuestionLength = 1000

const consultSystemPrompt = `You are an experienced restaurant sommelier helping waiters answer guests.
Answer in at most five short sentences. Be practical: serving, pairing, how to describe the drink to a guest.
If a drink from the list is given, base your answer on its facts. Do not invent prices or availability.`

// ConsultOptions configures a Consultant.
type ConsultOptions struct {
	CacheSize int
	TTL       time.Duration
	MaxTokens int
}

// DefaultConsultOptions returns defaults for the consultation cache.
func DefaultConsultOptions() ConsultOptions {
	return ConsultOptions{CacheSize: 256, TTL: 6 * time.Hour, MaxTokens: 500}
}

type cachedAnswer struct {
	text    string
	expires time.Time
}

// Consultant answers free-form questions through the LLM with a cache.
type Consultant struct {
	provider llm.Provider
	opts     ConsultOptions
	cache    *lru.Cache
	now      func() time.Time
	logger   *slog.Logger
}

// NewConsultant creates a Consultant. A nil provider answers every
// question with Apology.
func NewConsultant(provider llm.Provider, opts ConsultOptions, logger *slog.Logger) (*Consultant, error) {
	def := DefaultConsultOptions()
	if opts.CacheSize <= 0 {
		opts.CacheSize = def.CacheSize
	}
	if opts.TTL <= 0 {
		opts.TTL = def.TTL
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create consultation cache: %w", err)
	}
	return &Consultant{provider: provider, opts: opts, cache: cache, now: time.Now, logger: logger}, nil
}

// Answer is a consultation reply.
type Answer struct {
	Text     string `json:"answer"`
	Cached   bool   `json:"cached"`
	Fallback bool   `json:"fallback"`
}

// Ask answers question, optionally about item. It never fails: provider
// errors produce Apology.
func (c *Consultant) Ask(ctx context.Context, question string, item *catalog.Item) Answer {
	question = strings.TrimSpace(question)
	question = truncate(question, MaxQuestionLength)
	key := strings.ToLower(question)
	if item != nil {
		key += "|" + item.ID
	}

	if v, ok := c.cache.Get(key); ok {
		e := v.(cachedAnswer)
		if c.now().Before(e.expires) {
			return Answer{Text: e.text, Cached: true}
		}
		c.cache.Remove(key)
	}

	if c.provider == nil {
		return Answer{Text: Apology, Fallback: true}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeConsultation)
	resp, err := c.provider.Generate(ctx, llm.UserPrompt(consultSystemPrompt, consultPrompt(question, item), c.opts.MaxTokens))
	if err != nil {
		c.logger.Warn("consultation failed, sending apology", "error", err)
		return Answer{Text: Apology, Fallback: true}
	}
	text := resp.Text()
	if text == "" {
		c.logger.Warn("consultation returned empty text, sending apology")
		return Answer{Text: Apology, Fallback: true}
	}

	c.cache.Add(key, cachedAnswer{text: text, expires: c.now().Add(c.opts.TTL)})
	return Answer{Text: text}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func consultPrompt(question string, item *catalog.Item) string {
	if item == nil {
		return "Question: " + question
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Drink: %s (%s)\n", item.Name, item.Category.Title())
	for _, attr := range []string{"country", "region", "grape", "sugar", "alcohol", "serving_temp", "glassware", "ingredients", "method"} {
		if v := item.Attribute(attr); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", attr, v)
		}
	}
	if item.Description != "" {
		fmt.Fprintf(&b, "notes: %s\n", item.Description)
	}
	if item.Pairing != "" {
		fmt.Fprintf(&b, "pairing: %s\n", item.Pairing)
	}
	b.WriteString("\nQuestion: " + question)
	return b.String()
}

// Consult answers a question, resolving itemID against the catalogue.
// Unknown ids are ignored.
func (s *Service) Consult(ctx context.Context, question, itemID string) Answer {
	var item *catalog.Item
	if itemID != "" {
		if it, ok := s.catalogue.Find(ctx, itemID); ok {
			item = &it
		}
	}
	if s.consultant == nil {
		return Answer{Text: Apology, Fallback: true}
	}
	return s.consultant.Ask(ctx, question, item)
}
