package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every LLM question; the first failure
	// rejects it.
	Validators []Validator

	MaxTokens         int
	Temperature       float64
	MaxPriorQuestions int
	MaxRecentMistakes int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&FactValidator{},
		},
		MaxTokens:         400,
		Temperature:       0.7,
		MaxPriorQuestions: 8,
		MaxRecentMistakes: 5,
	}
}
