package learning

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
)

// generate builds the next question for st. Quick tests use templates;
// AI and personalized sessions use the LLM with template fallback.
func (s *Service) generate(ctx context.Context, st *session.State) (*questiongen.Question, error) {
	items, source := s.catalogue.Get(ctx)
	if len(items) == 0 {
		return nil, fmt.Errorf("catalogue is empty (source %s)", source)
	}

	var weak []string
	var user *questiongen.UserContext
	if st.Mode == session.ModePersonalized {
		if tr, err := s.analytics.Get(ctx, st.ChatID); err != nil {
			s.logger.Warn("analytics unavailable for personalization", "chat_id", st.ChatID, "error", err)
		} else {
			weak = tr.WeakCategories()
			user = &questiongen.UserContext{
				Difficulty:       st.Difficulty,
				Accuracy:         tr.Accuracy(),
				TotalQuestions:   tr.Overall.Total,
				WeakCategories:   weak,
				StrongCategories: tr.StrongCategories(),
				RecentMistakes:   st.MistakeTexts(),
			}
		}
	}

	var gen questiongen.Generator = s.templates
	if st.Mode.UsesLLM() && s.smart != nil {
		gen = s.smart
	}

	pick := s.planner.Next(st, weak)
	in := questiongen.Input{
		Items:          items,
		Type:           pick.Type,
		Difficulty:     st.Difficulty,
		Category:       pick.Category,
		AskedItems:     st.AskedItems,
		PriorQuestions: st.PriorQuestions,
		User:           user,
	}

	q, err := gen.Generate(ctx, in)
	if !errors.Is(err, questiongen.ErrNoCandidates) {
		return q, err
	}

	// The catalogue may lack the attribute or category picked; widen the
	// search before giving up.
	in.Category = ""
	for _, t := range append([]questiongen.QuestionType{pick.Type}, questiongen.TypesFor(st.Difficulty)...) {
		in.Type = t
		q, err = gen.Generate(ctx, in)
		if !errors.Is(err, questiongen.ErrNoCandidates) {
			return q, err
		}
	}
	return nil, err
}
