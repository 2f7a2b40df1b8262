package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterAppTitle       = "Sommelier Trainer"
)

// OpenRouterProvider is the OpenAI adapter pointed at OpenRouter. Model
// names are passed through untouched, e.g. "google/gemini-2.0-flash-exp".
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider for OpenRouter.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenRouterBaseURL
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = base
	conf.HTTPClient = &http.Client{Transport: titleTransport{next: http.DefaultTransport}}
	return &OpenRouterProvider{OpenAIProvider: newOpenAIProvider(conf, cfg.Model)}, nil
}

// titleTransport names the app in OpenRouter's usage dashboard.
type titleTransport struct {
	next http.RoundTripper
}

func (t titleTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", openRouterAppTitle)
	return t.next.RoundTrip(r)
}
