package session

import (
	"time"

	"github.com/abhisek/sommelier/internal/questiongen"
)

// Summary holds the figures shown when a session ends.
type Summary struct {
	SessionID        string
	Mode             Mode
	Answered         int
	Correct          int
	Accuracy         float64
	Score            int // answers plus Bonus
	Bonus            int
	MaxStreak        int
	Perfect          bool
	Grade            string
	Duration         time.Duration
	DifficultyBefore questiongen.Difficulty
	DifficultyAfter  questiongen.Difficulty
}

// Promoted reports whether the session raised the difficulty tier.
func (s *Summary) Promoted() bool {
	return s.DifficultyAfter != s.DifficultyBefore
}

// BuildSummary creates a Summary from the current session state.
func BuildSummary(s *State) *Summary {
	perfect := s.Answered > 0 && s.Answered >= s.Target && s.Correct == s.Answered
	bonus := 0
	if perfect {
		bonus = PerfectBonus
	}
	end := s.FinishedAt
	if end.IsZero() {
		end = s.UpdatedAt
	}
	acc := s.Accuracy()
	return &Summary{
		SessionID:        s.ID,
		Mode:             s.Mode,
		Answered:         s.Answered,
		Correct:          s.Correct,
		Accuracy:         acc,
		Score:            s.Score + bonus,
		Bonus:            bonus,
		MaxStreak:        s.MaxStreak,
		Perfect:          perfect,
		Grade:            Grade(acc),
		Duration:         end.Sub(s.StartedAt),
		DifficultyBefore: s.Difficulty,
		DifficultyAfter:  NextDifficulty(s.Difficulty, s.Answered, s.Correct),
	}
}

// Grade maps accuracy to a letter.
func Grade(accuracy float64) string {
	pct := accuracy * 100
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}
