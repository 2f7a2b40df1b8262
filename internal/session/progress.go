package session

import "github.com/abhisek/sommelier/internal/questiongen"

// Promotion thresholds. A session needs MinAnswersForPromotion answers
// before its accuracy counts.
const (
	IntermediateThreshold  = 0.80
	AdvancedThreshold      = 0.90
	MinAnswersForPromotion = 5
)

// NextDifficulty returns the tier after a session with the given results.
// Promotion moves one step at a time and there is no demotion.
func NextDifficulty(current questiongen.Difficulty, answered, correct int) questiongen.Difficulty {
	if answered < MinAnswersForPromotion {
		return current
	}
	acc := float64(correct) / float64(answered)
	switch current {
	case questiongen.Beginner:
		if acc >= IntermediateThreshold {
			return questiongen.Intermediate
		}
	case questiongen.Intermediate:
		if acc >= AdvancedThreshold {
			return questiongen.Advanced
		}
	}
	return current
}
