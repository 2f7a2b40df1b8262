package session

import (
	"math/rand/v2"
	"sync"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/questiongen"
)

// weakCategoryShare is the chance a personalized question targets one of
// the learner's weak categories.
const weakCategoryShare = 0.6

// Pick is the question type and optional category for the next question.
type Pick struct {
	Type     questiongen.QuestionType
	Category catalog.Category
}

// Planner chooses what the next question asks about.
type Planner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlanner creates a Planner seeded from seed.
func NewPlanner(seed uint64) *Planner {
	return &Planner{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

// Next picks a question type allowed at the session difficulty, avoiding
// the previous type when possible. Personalized sessions lean towards the
// weak categories given.
func (p *Planner) Next(s *State, weak []string) Pick {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := questiongen.TypesFor(s.Difficulty)
	var last questiongen.QuestionType
	if n := len(s.Answers); n > 0 {
		last = s.Answers[n-1].Type
	}
	if s.Current != nil {
		last = s.Current.Type
	}
	choices := types
	if len(types) > 1 && last != "" {
		choices = nil
		for _, t := range types {
			if t != last {
				choices = append(choices, t)
			}
		}
	}
	pick := Pick{Type: choices[p.rng.IntN(len(choices))]}

	if s.Mode == ModePersonalized && len(weak) > 0 && p.rng.Float64() < weakCategoryShare {
		if c, err := catalog.ParseCategory(weak[p.rng.IntN(len(weak))]); err == nil {
			pick.Category = c
		}
	}
	return pick
}
