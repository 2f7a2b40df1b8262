package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/llm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testItems() []catalog.Item {
	return catalog.Fallback()
}

func barolo(t *testing.T) catalog.Item {
	t.Helper()
	for _, it := range testItems() {
		if it.ID == "fb-wine-2" {
			return it
		}
	}
	t.Fatal("fallback item fb-wine-2 missing")
	return catalog.Item{}
}

func validQuestionJSON() string {
	return `{
		"question_text": "A guest orders Barolo DOCG. At what temperature do you serve it?",
		"options": ["6-8°C", "16-18°C", "10-12°C", "Chilled over ice"],
		"correct_option": "B",
		"explanation": "Barolo is a full-bodied red; serve it at 16-18°C so the tannins soften."
	}`
}

func assertWellFormed(t *testing.T, q *Question) {
	t.Helper()
	if strings.TrimSpace(q.Text) == "" {
		t.Error("question text is empty")
	}
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.Options))
	}
	seen := map[string]bool{}
	for i, o := range q.Options {
		if o.Label != Labels[i] {
			t.Errorf("option %d: expected label %s, got %s", i, Labels[i], o.Label)
		}
		if o.Text == "" {
			t.Errorf("option %s is empty", o.Label)
		}
		k := strings.ToLower(o.Text)
		if seen[k] {
			t.Errorf("duplicate option %q", o.Text)
		}
		seen[k] = true
	}
	if !ValidLabel(q.Correct) {
		t.Errorf("correct label %q not in A-D", q.Correct)
	}
}

func TestTemplate_ServingTempWineQuestions(t *testing.T) {
	gen := NewTemplateGenerator(42)
	in := Input{
		Items:      testItems(),
		Type:       TypeServingTemp,
		Difficulty: Beginner,
		Category:   catalog.CategoryWine,
	}

	var asked []string
	for i := 0; i < 2; i++ {
		in.AskedItems = asked
		q, err := gen.Generate(context.Background(), in)
		if err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
		assertWellFormed(t, q)
		if q.Category != catalog.CategoryWine {
			t.Errorf("question %d: expected wine, got %s", i, q.Category)
		}

		correct := 0
		item := barolo(t)
		for _, it := range testItems() {
			if it.ID == q.ItemID {
				item = it
			}
		}
		for _, o := range q.Options {
			if o.Text == item.ServingTemp {
				correct++
				if o.Label != q.Correct {
					t.Errorf("question %d: correct text under %s, label says %s", i, o.Label, q.Correct)
				}
			}
		}
		if correct != 1 {
			t.Errorf("question %d: expected exactly one correct option, got %d", i, correct)
		}
		asked = append(asked, q.ItemID)
	}
	if asked[0] == asked[1] {
		t.Errorf("expected a different item for the second question, got %s twice", asked[0])
	}
}

func TestTemplate_AllTypesWellFormed(t *testing.T) {
	gen := NewTemplateGenerator(7)
	for _, typ := range AllTypes {
		t.Run(string(typ), func(t *testing.T) {
			q, err := gen.Generate(context.Background(), Input{
				Items:      testItems(),
				Type:       typ,
				Difficulty: Advanced,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertWellFormed(t, q)
			if q.Source != "template" {
				t.Errorf("expected template source, got %q", q.Source)
			}
			if q.Explanation == "" {
				t.Error("explanation is empty")
			}
		})
	}
}

func TestTemplate_Deterministic(t *testing.T) {
	in := Input{Items: testItems(), Type: TypeCountry, Difficulty: Beginner}
	a, err := NewTemplateGenerator(99).Generate(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTemplateGenerator(99).Generate(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if a.ItemID != b.ItemID || a.Text != b.Text || a.Correct != b.Correct {
		t.Errorf("same seed produced different questions: %+v vs %+v", a, b)
	}
}

func TestTemplate_NoCandidates(t *testing.T) {
	gen := NewTemplateGenerator(1)
	_, err := gen.Generate(context.Background(), Input{
		Items:    testItems(),
		Type:     TypeIngredients,
		Category: catalog.CategoryWhisky,
	})
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestLLM_Generate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Reply: validQuestionJSON()})
	gen := NewLLM(mock, DefaultConfig(), NewTemplateGenerator(1))

	q, err := gen.GenerateFor(context.Background(), barolo(t), Input{
		Items:      testItems(),
		Type:       TypeServingTemp,
		Difficulty: Intermediate,
		User: &UserContext{
			Difficulty:     Intermediate,
			Accuracy:       0.7,
			TotalQuestions: 12,
			WeakCategories: []string{"wine"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWellFormed(t, q)
	if q.Correct != "B" || q.CorrectText() != "16-18°C" {
		t.Errorf("unexpected correct option %s %q", q.Correct, q.CorrectText())
	}
	if q.Source != "llm" || q.ItemID != "fb-wine-2" {
		t.Errorf("unexpected source/item: %s %s", q.Source, q.ItemID)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != QuestionSchema {
		t.Error("expected the question schema on the request")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Barolo DOCG", "serving_temp", "16-18°C", "Weak areas: wine"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestLLM_WrongFactRejected(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Reply: `{
		"question_text": "At what temperature do you serve Barolo?",
		"options": ["6-8°C", "16-18°C", "10-12°C", "20-22°C"],
		"correct_option": "A",
		"explanation": "Serve it cold."
	}`})
	gen := NewLLM(mock, DefaultConfig(), NewTemplateGenerator(1))

	_, err := gen.GenerateFor(context.Background(), barolo(t), Input{Type: TypeServingTemp})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Validator != "fact" {
		t.Errorf("expected fact validator, got %s", verr.Validator)
	}
}

func TestQuestionSchema(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		valid bool
	}{
		{"valid", validQuestionJSON(), true},
		{"correct option out of range", `{
			"question_text": "Which grape is Barolo made from?",
			"options": ["Nebbiolo", "Sangiovese", "Barbera", "Dolcetto"],
			"correct_option": "E",
			"explanation": "Barolo is 100% Nebbiolo."
		}`, false},
		{"three options", `{
			"question_text": "Which glass suits Champagne?",
			"options": ["Flute", "Coupe", "Snifter"],
			"correct_option": "A",
			"explanation": "A flute keeps the bubbles."
		}`, false},
		{"extra field", `{
			"question_text": "Which country is Rioja from?",
			"options": ["Spain", "Italy", "France", "Chile"],
			"correct_option": "A",
			"explanation": "Rioja is in northern Spain.",
			"difficulty": "beginner"
		}`, false},
		{"not json", `Barolo is served at 16-18°C.`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := QuestionSchema.Validate(json.RawMessage(tt.reply))
			if tt.valid {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var invalid *llm.ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestLLM_BadCorrectOptionRejected(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Reply: `{
		"question_text": "At what temperature do you serve Barolo?",
		"options": ["6-8°C", "16-18°C", "10-12°C", "20-22°C"],
		"correct_option": "b",
		"explanation": "Serve it at cellar-plus temperature."
	}`})
	gen := NewLLM(mock, DefaultConfig(), NewTemplateGenerator(1))

	_, err := gen.GenerateFor(context.Background(), barolo(t), Input{Type: TypeServingTemp})
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if !strings.Contains(string(invalid.Content), `"b"`) {
		t.Errorf("rejected reply not kept: %s", invalid.Content)
	}
}

func TestLLM_TruncatedReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Reply: `{"question_text": "A guest orders Barolo DOCG. At what temp`,
		Stop:  llm.StopMaxTokens,
	})
	templates := NewTemplateGenerator(2)

	_, err := NewLLM(mock, DefaultConfig(), templates).GenerateFor(context.Background(), barolo(t), Input{Type: TypeServingTemp})
	var truncated *llm.ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}

	mock.AddResponse(llm.MockResponse{Reply: `{"question_text": "A guest`, Stop: llm.StopMaxTokens})
	gen := WithFallback(NewLLM(mock, DefaultConfig(), templates), templates, quietLogger())
	q, err := gen.Generate(context.Background(), Input{Items: testItems(), Type: TypeCountry, Difficulty: Beginner})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source != "template" {
		t.Errorf("expected template fallback, got %q", q.Source)
	}
}

func TestLLM_FencedReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Reply: "```json\n" + validQuestionJSON() + "\n```"})
	gen := NewLLM(mock, DefaultConfig(), NewTemplateGenerator(1))

	q, err := gen.GenerateFor(context.Background(), barolo(t), Input{Type: TypeServingTemp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.CorrectText() != "16-18°C" {
		t.Errorf("unexpected correct answer %q", q.CorrectText())
	}
}

func TestFallback_MalformedLLMOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Reply: `{"question_text": "", "options": ["a"]}`})
	templates := NewTemplateGenerator(3)
	gen := WithFallback(NewLLM(mock, DefaultConfig(), templates), templates, quietLogger())

	q, err := gen.Generate(context.Background(), Input{Items: testItems(), Type: TypeGlassware, Difficulty: Beginner})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWellFormed(t, q)
	if q.Source != "template" {
		t.Errorf("expected template fallback, got %q", q.Source)
	}
}

func TestFallback_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	templates := NewTemplateGenerator(3)
	gen := WithFallback(NewLLM(mock, DefaultConfig(), templates), templates, quietLogger())

	q, err := gen.Generate(context.Background(), Input{Items: testItems(), Type: TypeCountry, Difficulty: Beginner})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source != "template" {
		t.Errorf("expected template fallback, got %q", q.Source)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected a single attempt, got %d", mock.CallCount())
	}
}

func TestFallback_NilPrimary(t *testing.T) {
	gen := WithFallback(nil, NewTemplateGenerator(5), nil)
	q, err := gen.Generate(context.Background(), Input{Items: testItems(), Type: TypeSugar})
	if err != nil {
		t.Fatal(err)
	}
	assertWellFormed(t, q)
}

func TestStructuralValidator(t *testing.T) {
	good := func() *Question {
		return &Question{
			Text: "Which glass?",
			Options: []Option{
				{Label: "A", Text: "flute"}, {Label: "B", Text: "coupe"},
				{Label: "C", Text: "snifter"}, {Label: "D", Text: "rocks glass"},
			},
			Correct:     "A",
			Explanation: "Flutes keep the bubbles.",
		}
	}

	tests := []struct {
		name   string
		mutate func(q *Question)
		ok     bool
	}{
		{"valid", func(q *Question) {}, true},
		{"empty text", func(q *Question) { q.Text = " " }, false},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }, false},
		{"duplicate option", func(q *Question) { q.Options[1].Text = "Flute" }, false},
		{"bad label", func(q *Question) { q.Correct = "E" }, false},
		{"empty explanation", func(q *Question) { q.Explanation = "" }, false},
		{"long text", func(q *Question) { q.Text = strings.Repeat("x", 501) }, false},
	}

	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := good()
			tt.mutate(q)
			err := v.Validate(q, catalog.Item{}, Input{})
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFactValidator_Alcohol(t *testing.T) {
	item := catalog.Item{Name: "Hendrick's", Alcohol: 41.4}
	q := &Question{
		Options: []Option{
			{Label: "A", Text: "40%"}, {Label: "B", Text: "41,4% ABV"},
			{Label: "C", Text: "37.5%"}, {Label: "D", Text: "47%"},
		},
		Correct: "B",
	}
	if err := (&FactValidator{}).Validate(q, item, Input{Type: TypeAlcohol}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	q.Correct = "A"
	if err := (&FactValidator{}).Validate(q, item, Input{Type: TypeAlcohol}); err == nil {
		t.Error("expected mismatch for 40%")
	}
}
