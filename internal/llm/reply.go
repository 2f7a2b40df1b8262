package llm

import (
	"encoding/json"
	"strings"
)

// reply is what a vendor adapter extracted from its SDK response.
type reply struct {
	text  string
	stop  string
	usage Usage
	model string
}

// finishReply turns a vendor reply into a Response. Structured replies are
// checked for truncation first, then against the schema. Free-text replies
// are kept even when cut off; a consultation answer that stops early is
// still worth showing.
func finishReply(req Request, r reply) (*Response, error) {
	if r.stop == "" {
		r.stop = StopEnd
	}
	resp := &Response{Usage: r.usage, Model: r.model, StopReason: r.stop}

	if req.Schema == nil {
		resp.Content = textContent(strings.TrimSpace(r.text))
		return resp, nil
	}

	content := json.RawMessage(stripFence(r.text))
	if r.stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := req.Schema.Validate(content); err != nil {
		return nil, err
	}
	resp.Content = content
	return resp, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// textContent encodes a free-text reply so Content is always valid JSON.
func textContent(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
