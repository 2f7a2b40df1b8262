package questiongen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/sommelier/internal/catalog"
)

// Validator checks a generated question against the item it is about.
// Implementations are stateless and safe for concurrent use.
type Validator interface {
	Name() string
	Validate(q *Question, item catalog.Item, in Input) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator enforces the question shape: non-empty text, four
// distinct labeled options and a correct label in A-D.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ catalog.Item, _ Input) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}

	if strings.TrimSpace(q.Text) == "" {
		return fail("question_text is empty")
	}
	if len(q.Text) > 500 {
		return fail("question_text exceeds 500 characters")
	}
	if len(q.Options) != len(Labels) {
		return fail(fmt.Sprintf("expected %d options, got %d", len(Labels), len(q.Options)))
	}
	seen := make(map[string]bool)
	for i, o := range q.Options {
		if o.Label != Labels[i] {
			return fail(fmt.Sprintf("option %d has label %q", i, o.Label))
		}
		k := normalize(o.Text)
		if k == "" {
			return fail(fmt.Sprintf("option %s is empty", o.Label))
		}
		if seen[k] {
			return fail(fmt.Sprintf("option %s duplicates another option", o.Label))
		}
		seen[k] = true
	}
	if !ValidLabel(q.Correct) {
		return fail(fmt.Sprintf("correct option %q is not one of A-D", q.Correct))
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fail("explanation is empty")
	}
	if len(q.Explanation) > 1000 {
		return fail("explanation exceeds 1000 characters")
	}
	return nil
}

// FactValidator checks that the marked answer agrees with the catalogue
// value and that no distractor repeats it.
type FactValidator struct{}

func (v *FactValidator) Name() string { return "fact" }

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

func (v *FactValidator) Validate(q *Question, item catalog.Item, in Input) *ValidationError {
	expected := item.Attribute(string(in.Type))
	if expected == "" {
		return nil
	}

	if !factMatches(in.Type, q.CorrectText(), expected, item) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct option %q does not match %s %q", q.CorrectText(), in.Type, expected),
		}
	}
	for _, o := range q.Options {
		if o.Label != q.Correct && normalize(o.Text) == normalize(expected) {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("distractor %s repeats the correct value", o.Label),
			}
		}
	}
	return nil
}

func factMatches(t QuestionType, got, expected string, item catalog.Item) bool {
	g, e := normalize(got), normalize(expected)
	switch t {
	case TypeAlcohol:
		n := numberRe.FindString(g)
		if n == "" {
			return false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", "."), 64)
		if err != nil {
			return false
		}
		diff := f - item.Alcohol
		return diff < 0.11 && diff > -0.11
	case TypeIngredients:
		if len(item.Ingredients) == 0 {
			return false
		}
		return strings.Contains(g, normalize(item.Ingredients[0]))
	default:
		return strings.Contains(g, e) || strings.Contains(e, g)
	}
}
