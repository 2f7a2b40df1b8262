// Package questiongen builds four-option multiple-choice questions from
// catalogue items, through an LLM or deterministic templates.
package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/sommelier/internal/catalog"
)

// QuestionType names the item attribute a question asks about.
type QuestionType string

const (
	TypeCategory    QuestionType = "category"
	TypeCountry     QuestionType = "country"
	TypeSugar       QuestionType = "sugar"
	TypeAlcohol     QuestionType = "alcohol"
	TypeServingTemp QuestionType = "serving_temp"
	TypeGlassware   QuestionType = "glassware"
	TypeIngredients QuestionType = "ingredients"
	TypeMethod      QuestionType = "method"
	TypeGrape       QuestionType = "grape"
	TypeRegion      QuestionType = "region"
)

// AllTypes lists every question type.
var AllTypes = []QuestionType{
	TypeCategory, TypeCountry, TypeSugar, TypeAlcohol, TypeServingTemp,
	TypeGlassware, TypeIngredients, TypeMethod, TypeGrape, TypeRegion,
}

// ParseQuestionType validates a question type name.
func ParseQuestionType(s string) (QuestionType, error) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Title returns a human label for the type.
func (t QuestionType) Title() string {
	switch t {
	case TypeServingTemp:
		return "Serving temperature"
	case TypeSugar:
		return "Sweetness"
	case TypeAlcohol:
		return "Alcohol"
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Difficulty is the learner's tier.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ParseDifficulty maps stored text to a Difficulty, defaulting to Beginner.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case Intermediate, Advanced:
		return Difficulty(s)
	}
	return Beginner
}

// TypesFor returns the question types offered at a difficulty.
func TypesFor(d Difficulty) []QuestionType {
	switch d {
	case Intermediate:
		return []QuestionType{TypeCategory, TypeCountry, TypeSugar, TypeServingTemp, TypeGlassware, TypeAlcohol, TypeMethod, TypeIngredients}
	case Advanced:
		return AllTypes
	default:
		return []QuestionType{TypeCategory, TypeCountry, TypeSugar, TypeServingTemp, TypeGlassware}
	}
}

// Labels are the option labels in display order.
var Labels = []string{"A", "B", "C", "D"}

// ValidLabel reports whether s is one of A-D.
func ValidLabel(s string) bool {
	for _, l := range Labels {
		if l == s {
			return true
		}
	}
	return false
}

// Option is one labeled answer.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is a generated question. It lives only in session state.
type Question struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Options     []Option         `json:"options"`
	Correct     string           `json:"-"`
	Explanation string           `json:"-"`
	ItemID      string           `json:"itemId"`
	ItemName    string           `json:"itemName"`
	Category    catalog.Category `json:"category"`
	Type        QuestionType     `json:"type"`
	Difficulty  Difficulty       `json:"difficulty"`
	Source      string           `json:"source"` // "template" or "llm"
}

// OptionText returns the text behind a label, or "".
func (q *Question) OptionText(label string) string {
	for _, o := range q.Options {
		if o.Label == label {
			return o.Text
		}
	}
	return ""
}

// CorrectText returns the text of the correct option.
func (q *Question) CorrectText() string {
	return q.OptionText(q.Correct)
}

// UserContext personalizes generation. It never changes the question shape.
type UserContext struct {
	DisplayName      string
	Difficulty       Difficulty
	Accuracy         float64
	TotalQuestions   int
	WeakCategories   []string
	StrongCategories []string
	RecentMistakes   []string
}

// Input holds everything needed to generate one question.
type Input struct {
	Items      []catalog.Item
	Type       QuestionType
	Difficulty Difficulty
	// Category restricts the asked-about item. Empty means any.
	Category catalog.Category
	// AskedItems are item ids already used in this session.
	AskedItems []string
	// PriorQuestions are question texts already asked in this session.
	PriorQuestions []string
	User           *UserContext
}
