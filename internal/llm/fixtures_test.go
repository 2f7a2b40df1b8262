package llm

// questionSchema is the shape of a generated training question.
var questionSchema = &Schema{
	Name:        "beverage-question",
	Description: "A multiple-choice training question about one beverage",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 4,
				"maxItems": 4,
			},
			"correct_option": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
			"explanation":    map[string]any{"type": "string"},
		},
		"required":             []any{"question_text", "options", "correct_option", "explanation"},
		"additionalProperties": false,
	},
}

const baroloQuestion = `{"question_text":"At what temperature do you serve Barolo?",` +
	`"options":["6-8°C","16-18°C","10-12°C","20-22°C"],` +
	`"correct_option":"B","explanation":"A full-bodied red opens up at 16-18°C."}`

const badOptionQuestion = `{"question_text":"Which grape is Barolo made from?",` +
	`"options":["Nebbiolo","Sangiovese","Barbera","Dolcetto"],` +
	`"correct_option":"E","explanation":"Barolo is 100% Nebbiolo."}`

const consultReply = "Serve Chablis at 10-12°C in a white wine glass; it suits oysters."

func questionRequest() Request {
	req := UserPrompt("You write questions for waiters.", "Item: Barolo DOCG. Attribute: serving_temp.", 400)
	req.Schema = questionSchema
	return req
}

func consultRequest() Request {
	return UserPrompt("You are a head sommelier.", "How should Chablis be served?", 300)
}
