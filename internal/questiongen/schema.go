package questiongen

import "github.com/abhisek/sommelier/internal/llm"

// QuestionSchema defines the JSON schema for LLM question generation responses.
var QuestionSchema = &llm.Schema{
	Name:        "beverage-question",
	Description: "A multiple-choice training question about one beverage",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"description": "The question shown to the waiter, one or two sentences",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly 4 answer texts in order A, B, C, D",
			},
			"correct_option": map[string]any{
				"type":        "string",
				"enum":        []any{"A", "B", "C", "D"},
				"description": "Label of the single correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Short explanation a waiter can repeat to a guest",
			},
		},
		"required":             []any{"question_text", "options", "correct_option", "explanation"},
		"additionalProperties": false,
	},
}
