package session

import (
	"time"

	"github.com/abhisek/sommelier/internal/questiongen"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseIdle       Phase = iota // created, no question shown yet
	PhaseInProgress              // at least one question shown
	PhaseFinished                // target reached or finished early
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseFinished:
		return "finished"
	}
	return "idle"
}

// AnswerRecord is one graded answer kept in session memory.
type AnswerRecord struct {
	QuestionID   string
	QuestionText string
	ItemName     string
	Category     string
	Type         questiongen.QuestionType
	Chosen       string
	Expected     string
	ExpectedText string
	Correct      bool
	Points       int
	Elapsed      time.Duration
}

// State tracks the runtime state of one quiz run for one chat.
type State struct {
	ID         string
	ChatID     int64
	Mode       Mode
	Difficulty questiongen.Difficulty
	Phase      Phase
	Target     int

	// Current is the question awaiting an answer, nil between questions.
	Current       *questiongen.Question
	CurrentShown  time.Time
	QuestionsSent int

	Answered  int
	Correct   int
	Score     int
	Streak    int
	MaxStreak int

	// AskedItems and PriorQuestions keep generation from repeating itself.
	AskedItems     []string
	PriorQuestions []string
	Answers        []AnswerRecord

	StartedAt  time.Time
	FinishedAt time.Time
	UpdatedAt  time.Time
}

// New creates an idle session.
func New(id string, chatID int64, mode Mode, difficulty questiongen.Difficulty, now time.Time) *State {
	return &State{
		ID:         id,
		ChatID:     chatID,
		Mode:       mode,
		Difficulty: difficulty,
		Phase:      PhaseIdle,
		Target:     mode.Target(),
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Accuracy returns correct / answered, 0 with no answers.
func (s *State) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}

// Remaining returns how many answers are left until the target.
func (s *State) Remaining() int {
	if n := s.Target - s.Answered; n > 0 {
		return n
	}
	return 0
}

// Done reports whether the session is finished.
func (s *State) Done() bool {
	return s.Phase == PhaseFinished
}

// Clone returns a copy that shares no slices with s.
func (s *State) Clone() *State {
	c := *s
	c.AskedItems = append([]string(nil), s.AskedItems...)
	c.PriorQuestions = append([]string(nil), s.PriorQuestions...)
	c.Answers = append([]AnswerRecord(nil), s.Answers...)
	if s.Current != nil {
		q := *s.Current
		c.Current = &q
	}
	return &c
}

// MistakeTexts returns short descriptions of wrong answers for prompts.
func (s *State) MistakeTexts() []string {
	var out []string
	for _, a := range s.Answers {
		if !a.Correct {
			out = append(out, a.ItemName+": "+string(a.Type)+" is "+a.ExpectedText)
		}
	}
	return out
}
