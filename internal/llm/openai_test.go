package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openAIServer(t *testing.T, status int, body any) (*OpenAIProvider, *map[string]any) {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-mini", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	return p, &got
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 180, "completion_tokens": 70, "total_tokens": 250},
	}
}

func TestOpenAI_Consultation(t *testing.T) {
	p, got := openAIServer(t, http.StatusOK, chatCompletion(consultReply, "stop"))

	resp, err := p.Generate(context.Background(), consultRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != consultReply || resp.Usage.TotalTokens != 250 || resp.Model != "gpt-4o-mini" {
		t.Fatalf("resp = %+v", resp)
	}

	msgs, _ := (*got)["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", (*got)["messages"])
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "system" {
		t.Errorf("system prompt not first: %v", first)
	}
	if _, ok := (*got)["response_format"]; ok {
		t.Error("free text request should not set response_format")
	}
}

func TestOpenAI_Question(t *testing.T) {
	p, got := openAIServer(t, http.StatusOK, chatCompletion(baroloQuestion, "stop"))

	resp, err := p.Generate(context.Background(), questionRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != baroloQuestion {
		t.Fatalf("content = %s", resp.Content)
	}
	rf, _ := (*got)["response_format"].(map[string]any)
	js, _ := rf["json_schema"].(map[string]any)
	if rf["type"] != "json_schema" || js["name"] != "beverage-question" || js["strict"] != true {
		t.Fatalf("response_format = %v", rf)
	}
}

func TestOpenAI_BadCorrectOption(t *testing.T) {
	p, _ := openAIServer(t, http.StatusOK, chatCompletion(badOptionQuestion, "stop"))
	_, err := p.Generate(context.Background(), questionRequest())
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestOpenAI_LengthFinish(t *testing.T) {
	p, _ := openAIServer(t, http.StatusOK, chatCompletion(baroloQuestion[:30], "length"))
	_, err := p.Generate(context.Background(), questionRequest())
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}

	p, _ = openAIServer(t, http.StatusOK, chatCompletion("Chill Chablis to 10", "length"))
	resp, err := p.Generate(context.Background(), consultRequest())
	if err != nil || resp.StopReason != StopMaxTokens {
		t.Fatalf("cut-off consultation: %v %+v", err, resp)
	}
}

func TestOpenAI_Errors(t *testing.T) {
	apiErr := func(msg string) map[string]any {
		return map[string]any{"error": map[string]any{"message": msg, "type": "server_error"}}
	}
	t.Run("rate limit", func(t *testing.T) {
		p, _ := openAIServer(t, http.StatusTooManyRequests, apiErr("quota"))
		_, err := p.Generate(context.Background(), consultRequest())
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %T %v", err, err)
		}
	})
	t.Run("outage", func(t *testing.T) {
		p, _ := openAIServer(t, http.StatusServiceUnavailable, apiErr("down"))
		_, err := p.Generate(context.Background(), consultRequest())
		var down *ErrProviderUnavailable
		if !errors.As(err, &down) {
			t.Fatalf("expected ErrProviderUnavailable, got %T %v", err, err)
		}
	})
	t.Run("no choices", func(t *testing.T) {
		body := chatCompletion("", "stop")
		body["choices"] = []any{}
		p, _ := openAIServer(t, http.StatusOK, body)
		_, err := p.Generate(context.Background(), consultRequest())
		var invalid *ErrInvalidResponse
		if !errors.As(err, &invalid) {
			t.Fatalf("expected ErrInvalidResponse, got %v", err)
		}
	})
}
