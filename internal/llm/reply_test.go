package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestFinishReply_Question(t *testing.T) {
	resp, err := finishReply(questionRequest(), reply{text: baroloQuestion, model: "m", usage: Usage{InputTokens: 40, OutputTokens: 60}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != baroloQuestion {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.StopReason != StopEnd || resp.Model != "m" || resp.Usage.OutputTokens != 60 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestFinishReply_FencedQuestion(t *testing.T) {
	resp, err := finishReply(questionRequest(), reply{text: "```json\n" + baroloQuestion + "\n```"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != baroloQuestion {
		t.Fatalf("fence not stripped: %s", resp.Content)
	}
}

func TestFinishReply_BadCorrectOption(t *testing.T) {
	_, err := finishReply(questionRequest(), reply{text: badOptionQuestion})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if string(invalid.Content) != badOptionQuestion {
		t.Errorf("content not kept: %s", invalid.Content)
	}
}

func TestFinishReply_TruncatedQuestion(t *testing.T) {
	cut := baroloQuestion[:50]
	_, err := finishReply(questionRequest(), reply{text: cut, stop: StopMaxTokens})
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}
	if string(truncated.Content) != cut {
		t.Errorf("content = %s", truncated.Content)
	}
	if retryable(err, false) {
		t.Error("a cut-off reply must not be retried")
	}
}

func TestFinishReply_Consultation(t *testing.T) {
	resp, err := finishReply(consultRequest(), reply{text: "  " + consultReply + "\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != consultReply {
		t.Fatalf("text = %q", resp.Text())
	}
}

func TestFinishReply_TruncatedConsultationKept(t *testing.T) {
	resp, err := finishReply(consultRequest(), reply{text: "Serve Chablis at 10-12°C and", stop: StopMaxTokens})
	if err != nil {
		t.Fatalf("free text should survive truncation: %v", err)
	}
	if resp.StopReason != StopMaxTokens || !strings.HasPrefix(resp.Text(), "Serve Chablis") {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{"  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFence(tt.in); got != tt.want {
			t.Errorf("stripFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
