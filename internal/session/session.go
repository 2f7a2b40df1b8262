package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/abhisek/sommelier/internal/questiongen"
)

var (
	// ErrFinished is returned for any operation on a finished session.
	ErrFinished = errors.New("session is finished")

	// ErrNoQuestion is returned when an answer arrives with no open question.
	ErrNoQuestion = errors.New("no question awaiting an answer")

	// ErrInvalidOption is returned for a label outside A-D.
	ErrInvalidOption = errors.New("invalid option")

	// ErrQuestionMismatch is returned when an answer names a question other
	// than the open one, e.g. a stale button.
	ErrQuestionMismatch = errors.New("answer is for a different question")
)

const (
	basePoints     = 10
	maxStreakBonus = 10

	// PerfectBonus is added to a session finished with every answer correct.
	PerfectBonus = 20
)

// Multiplier scales the base points by difficulty.
func Multiplier(d questiongen.Difficulty) float64 {
	switch d {
	case questiongen.Intermediate:
		return 1.5
	case questiongen.Advanced:
		return 2
	}
	return 1
}

// Points returns the award for a correct answer at the given streak (the
// streak including this answer). Incorrect answers score 0.
func Points(d questiongen.Difficulty, streak int) int {
	bonus := 0
	if streak > 1 {
		bonus = min(2*(streak-1), maxStreakBonus)
	}
	return int(math.Round(basePoints*Multiplier(d))) + bonus
}

// Result is the outcome of one answer.
type Result struct {
	Question     *questiongen.Question
	Chosen       string
	Correct      bool
	CorrectLabel string
	CorrectText  string
	Explanation  string
	Points       int
	Streak       int
	Elapsed      time.Duration

	// Done is true when this answer reached the target.
	Done bool
}

// Present records that q was shown to the user. An idle session becomes in
// progress.
func (s *State) Present(q *questiongen.Question, now time.Time) error {
	if s.Phase == PhaseFinished {
		return ErrFinished
	}
	s.Phase = PhaseInProgress
	s.Current = q
	s.CurrentShown = now
	s.QuestionsSent++
	s.AskedItems = append(s.AskedItems, q.ItemID)
	s.PriorQuestions = append(s.PriorQuestions, q.Text)
	s.UpdatedAt = now
	return nil
}

// Answer grades label against the open question. questionID may be empty;
// when set it must match the open question.
func (s *State) Answer(questionID, label string, now time.Time) (*Result, error) {
	if s.Phase == PhaseFinished {
		return nil, ErrFinished
	}
	q := s.Current
	if q == nil {
		return nil, ErrNoQuestion
	}
	if questionID != "" && questionID != q.ID {
		return nil, ErrQuestionMismatch
	}
	if !questiongen.ValidLabel(label) {
		return nil, fmt.Errorf("%w %q", ErrInvalidOption, label)
	}

	correct := label == q.Correct
	s.Answered++
	points := 0
	if correct {
		s.Correct++
		s.Streak++
		s.MaxStreak = max(s.MaxStreak, s.Streak)
		points = Points(s.Difficulty, s.Streak)
		s.Score += points
	} else {
		s.Streak = 0
	}

	elapsed := now.Sub(s.CurrentShown)
	if elapsed < 0 {
		elapsed = 0
	}

	s.Answers = append(s.Answers, AnswerRecord{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		ItemName:     q.ItemName,
		Category:     string(q.Category),
		Type:         q.Type,
		Chosen:       label,
		Expected:     q.Correct,
		ExpectedText: q.CorrectText(),
		Correct:      correct,
		Points:       points,
		Elapsed:      elapsed,
	})
	s.Current = nil
	s.UpdatedAt = now

	res := &Result{
		Question:     q,
		Chosen:       label,
		Correct:      correct,
		CorrectLabel: q.Correct,
		CorrectText:  q.CorrectText(),
		Explanation:  q.Explanation,
		Points:       points,
		Streak:       s.Streak,
		Elapsed:      elapsed,
	}
	if s.Answered >= s.Target {
		s.Phase = PhaseFinished
		s.FinishedAt = now
		res.Done = true
	}
	return res, nil
}

// Finish closes the session at any point and returns its summary. It is
// safe to call more than once; the first finish time is kept.
func (s *State) Finish(now time.Time) *Summary {
	if s.Phase != PhaseFinished {
		s.Phase = PhaseFinished
		s.FinishedAt = now
		s.Current = nil
		s.UpdatedAt = now
	}
	return BuildSummary(s)
}
