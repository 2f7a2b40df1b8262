package session

import "fmt"

// Mode selects how a session generates its questions and how long it runs.
type Mode string

const (
	ModeQuick        Mode = "quick"
	ModeAI           Mode = "ai"
	ModePersonalized Mode = "personalized"
)

// Question targets per mode.
const (
	QuickQuestions        = 5
	AIQuestions           = 10
	PersonalizedQuestions = 8
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeQuick, ModeAI, ModePersonalized:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Target returns the number of questions in a session of this mode.
func (m Mode) Target() int {
	switch m {
	case ModeAI:
		return AIQuestions
	case ModePersonalized:
		return PersonalizedQuestions
	default:
		return QuickQuestions
	}
}

// Title is the label shown to users.
func (m Mode) Title() string {
	switch m {
	case ModeAI:
		return "AI training"
	case ModePersonalized:
		return "Personal training"
	default:
		return "Quick test"
	}
}

// UsesLLM reports whether questions should come from the LLM when one is
// configured.
func (m Mode) UsesLLM() bool {
	return m == ModeAI || m == ModePersonalized
}
