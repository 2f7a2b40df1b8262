package questiongen

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/llm"
)

// LLMGenerator asks the LLM to phrase the question and distractors for a
// randomly chosen item. The item and attribute are chosen locally.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	picker   *TemplateGenerator
}

// NewLLM creates an LLMGenerator. picker chooses the items.
func NewLLM(provider llm.Provider, cfg Config, picker *TemplateGenerator) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, picker: picker}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation"`
}

// Generate produces a validated question.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) (*Question, error) {
	item, err := g.picker.PickItem(in)
	if err != nil {
		return nil, err
	}
	return g.GenerateFor(ctx, item, in)
}

// GenerateFor produces a question about a specific item.
func (g *LLMGenerator) GenerateFor(ctx context.Context, item catalog.Item, in Input) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)

	req := llm.UserPrompt(systemPrompt, buildUserMessage(item, in, g.config), g.config.MaxTokens)
	req.Schema = QuestionSchema
	req.Temperature = g.config.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := QuestionSchema.Decode(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q := &Question{
		ID:          uuid.NewString(),
		Text:        raw.QuestionText,
		Correct:     raw.CorrectOption,
		Explanation: raw.Explanation,
		ItemID:      item.ID,
		ItemName:    item.Name,
		Category:    item.Category,
		Type:        in.Type,
		Difficulty:  in.Difficulty,
		Source:      "llm",
	}
	for i, text := range raw.Options {
		label := fmt.Sprintf("#%d", i+1)
		if i < len(Labels) {
			label = Labels[i]
		}
		q.Options = append(q.Options, Option{Label: label, Text: text})
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(q, item, in); verr != nil {
			return nil, verr
		}
	}
	return q, nil
}
