package questiongen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/sommelier/internal/catalog"
)

// ErrNoCandidates is returned when no item can support the question type.
var ErrNoCandidates = errors.New("no catalogue item supports this question type")

// staticDistractors pad the option list when the catalogue has too few
// distinct values for an attribute.
var staticDistractors = map[QuestionType][]string{
	TypeCategory:    {"Wine", "Sparkling", "Whisky", "Cognac & Brandy", "Rum", "Gin", "Vodka", "Beer", "Cocktails"},
	TypeCountry:     {"France", "Italy", "Spain", "Germany", "USA", "Argentina", "Chile", "Portugal", "Scotland", "Mexico"},
	TypeSugar:       {"dry", "semi-dry", "semi-sweet", "sweet", "brut", "extra dry"},
	TypeAlcohol:     {"5%", "12%", "13.5%", "40%", "43%", "24%"},
	TypeServingTemp: {"6-8°C", "8-10°C", "10-12°C", "16-18°C", "room temperature", "chilled"},
	TypeGlassware:   {"flute", "coupe", "white wine glass", "Bordeaux glass", "rocks glass", "highball glass", "snifter"},
	TypeIngredients: {"gin, Campari, sweet vermouth", "tequila, triple sec, lime juice", "white rum, lime, mint, sugar, soda water", "vodka, coffee liqueur, espresso"},
	TypeMethod:      {"shaken", "stirred", "built", "blended", "traditional method", "Charmat method"},
	TypeGrape:       {"Chardonnay", "Pinot Noir", "Cabernet Sauvignon", "Merlot", "Riesling", "Sauvignon Blanc", "Nebbiolo"},
	TypeRegion:      {"Bordeaux", "Burgundy", "Champagne", "Tuscany", "Rioja", "Napa Valley", "Mosel", "Speyside"},
}

var questionTemplates = map[QuestionType][]string{
	TypeCategory:    {"Which category does %s belong to?", "On the menu, where would you find %s?"},
	TypeCountry:     {"Which country does %s come from?", "A guest asks where %s is produced. What do you answer?"},
	TypeSugar:       {"What is the sweetness level of %s?", "How would you describe the sugar content of %s?"},
	TypeAlcohol:     {"What is the alcohol content of %s?", "How strong is %s (ABV)?"},
	TypeServingTemp: {"At what temperature should %s be served?", "What is the correct serving temperature for %s?"},
	TypeGlassware:   {"Which glass is %s served in?", "What glassware should you use for %s?"},
	TypeIngredients: {"Which ingredients make up %s?", "What goes into %s?"},
	TypeMethod:      {"How is %s made?", "Which method is used to prepare %s?"},
	TypeGrape:       {"Which grape variety is %s made from?", "What is the main grape in %s?"},
	TypeRegion:      {"Which region is %s from?", "Name the region %s comes from."},
}

// TemplateGenerator builds questions from fixed templates. It needs no
// network access and never returns malformed questions.
type TemplateGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplateGenerator creates a generator seeded from seed. The same seed
// and inputs produce the same questions.
func NewTemplateGenerator(seed uint64) *TemplateGenerator {
	return &TemplateGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *TemplateGenerator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

func (g *TemplateGenerator) shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rng.Shuffle(n, swap)
}

// Generate builds a templated question.
func (g *TemplateGenerator) Generate(_ context.Context, in Input) (*Question, error) {
	item, err := g.PickItem(in)
	if err != nil {
		return nil, err
	}
	return g.Build(item, in)
}

// PickItem chooses a random item that has a value for the question type,
// preferring items not yet asked in the session.
func (g *TemplateGenerator) PickItem(in Input) (catalog.Item, error) {
	candidates := Candidates(in.Items, in.Type, in.Category)
	if len(candidates) == 0 {
		return catalog.Item{}, ErrNoCandidates
	}

	asked := make(map[string]bool, len(in.AskedItems))
	for _, id := range in.AskedItems {
		asked[id] = true
	}
	var fresh []catalog.Item
	for _, it := range candidates {
		if !asked[it.ID] {
			fresh = append(fresh, it)
		}
	}
	if len(fresh) > 0 {
		candidates = fresh
	}
	return candidates[g.intn(len(candidates))], nil
}

// Candidates returns the items that can be asked about for a type.
func Candidates(items []catalog.Item, t QuestionType, category catalog.Category) []catalog.Item {
	var out []catalog.Item
	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		if it.Attribute(string(t)) == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Build creates the question for a chosen item.
func (g *TemplateGenerator) Build(item catalog.Item, in Input) (*Question, error) {
	correct := item.Attribute(string(in.Type))
	if correct == "" {
		return nil, ErrNoCandidates
	}

	distractors := g.distractors(item, in, correct)
	if len(distractors) < len(Labels)-1 {
		return nil, fmt.Errorf("not enough distinct options for %s", in.Type)
	}

	texts := append([]string{correct}, distractors[:len(Labels)-1]...)
	g.shuffle(len(texts), func(i, j int) { texts[i], texts[j] = texts[j], texts[i] })

	q := &Question{
		ID:         uuid.NewString(),
		ItemID:     item.ID,
		ItemName:   item.Name,
		Category:   item.Category,
		Type:       in.Type,
		Difficulty: in.Difficulty,
		Source:     "template",
	}
	for i, text := range texts {
		q.Options = append(q.Options, Option{Label: Labels[i], Text: text})
		if text == correct {
			q.Correct = Labels[i]
		}
	}

	tmpls := questionTemplates[in.Type]
	q.Text = fmt.Sprintf(tmpls[g.intn(len(tmpls))], item.Name)
	q.Explanation = explain(item, in.Type, correct)
	return q, nil
}

// distractors collects wrong answers. Advanced learners get look-alikes
// from the same category first; beginners get the whole catalogue.
func (g *TemplateGenerator) distractors(item catalog.Item, in Input, correct string) []string {
	var sameCat, others []string
	for _, it := range in.Items {
		v := it.Attribute(string(in.Type))
		if v == "" {
			continue
		}
		if it.Category == item.Category {
			sameCat = append(sameCat, v)
		} else {
			others = append(others, v)
		}
	}
	g.shuffle(len(sameCat), func(i, j int) { sameCat[i], sameCat[j] = sameCat[j], sameCat[i] })
	g.shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	pools := [][]string{others, sameCat}
	if in.Difficulty == Advanced || in.Type == TypeServingTemp || in.Type == TypeSugar {
		pools = [][]string{sameCat, others}
	}
	static := append([]string(nil), staticDistractors[in.Type]...)
	g.shuffle(len(static), func(i, j int) { static[i], static[j] = static[j], static[i] })
	pools = append(pools, static)

	seen := map[string]bool{normalize(correct): true}
	var out []string
	for _, pool := range pools {
		for _, v := range pool {
			k := normalize(v)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, v)
			if len(out) == len(Labels)-1 {
				return out
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func explain(item catalog.Item, t QuestionType, correct string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s is %s.", t.Title(), item.Name, correct)
	if item.Country != "" && t != TypeCountry {
		fmt.Fprintf(&b, " Origin: %s.", item.Country)
	}
	if item.Description != "" {
		fmt.Fprintf(&b, " %s", item.Description)
	}
	if item.Pairing != "" {
		fmt.Fprintf(&b, " Pairs well with %s.", item.Pairing)
	}
	return b.String()
}
