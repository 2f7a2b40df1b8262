package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSoldOut is returned when a reward item has no stock left.
	ErrSoldOut = errors.New("sold out")

	// ErrInsufficientFunds is returned when a user cannot afford a reward.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownUser is returned when a purchase names a user that does not exist.
	ErrUnknownUser = errors.New("unknown user")
)

// QueryOpts configures list queries.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // created_at >= From
	To    time.Time // created_at < To
}

// User is a learner identified by their Telegram chat.
type User struct {
	ChatID          int64
	DisplayName     string
	TotalScore      int
	TotalQuestions  int
	TotalCorrect    int
	Experience      int
	Streak          int
	MaxStreak       int
	ConsecutiveDays int
	Difficulty      string
	LastActiveDay   string // YYYY-MM-DD, empty if never finished a session
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Level is derived from experience: every 100 XP is one level.
func (u User) Level() int {
	return 1 + u.Experience/100
}

// Accuracy returns total_correct / total_questions, or 0 with no answers.
func (u User) Accuracy() float64 {
	if u.TotalQuestions == 0 {
		return 0
	}
	return float64(u.TotalCorrect) / float64(u.TotalQuestions)
}

// Session is one persisted quiz run.
type Session struct {
	ID                string
	ChatID            int64
	Mode              string
	Difficulty        string
	TargetQuestions   int
	QuestionsAnswered int
	CorrectAnswers    int
	Score             int
	ExperienceGained  int
	MaxStreak         int
	StartTime         time.Time
	EndTime           *time.Time
}

// Closed reports whether the session has an end time.
func (s Session) Closed() bool {
	return s.EndTime != nil
}

// AnswerData captures a single graded answer and the user counters it moves.
type AnswerData struct {
	SessionID      string
	ChatID         int64
	QuestionText   string
	ChosenOption   string
	CorrectOption  string
	Correct        bool
	Category       string
	QuestionType   string
	ResponseTimeMs int64
	Points         int
	Streak         int // user streak after this answer
	At             time.Time
}

// Answer is a persisted answer row.
type Answer struct {
	ID             int64
	SessionID      string
	ChatID         int64
	QuestionText   string
	ChosenOption   string
	CorrectOption  string
	Correct        bool
	Category       string
	QuestionType   string
	ResponseTimeMs int64
	Points         int
	CreatedAt      time.Time
}

// FinishData closes a session and applies its end-of-session effects.
type FinishData struct {
	SessionID  string
	ChatID     int64
	Bonus      int    // extra score and experience (perfect session)
	Difficulty string // user difficulty after the session
	Day        string // YYYY-MM-DD of the finish, in the configured zone
	PrevDay    string // day before Day
	At         time.Time
}

// Stat is a rolling total/correct aggregate keyed by category or question type.
type Stat struct {
	Key     string
	Total   int
	Correct int
}

// UnlockedAchievement is a persisted achievement row.
type UnlockedAchievement struct {
	Key        string
	Points     int
	UnlockedAt time.Time
}

// DailyChallenge is a per-user, per-day challenge instance.
type DailyChallenge struct {
	ID          int
	ChatID      int64
	Day         string
	Key         string
	Title       string
	Target      int
	Progress    int
	Reward      int
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// RewardItem is an XP-priced inventory entry.
type RewardItem struct {
	ID           int64
	Name         string
	Description  string
	Price        int
	QuantityLeft int
	Active       bool
}

// Purchase records a completed reward purchase.
type Purchase struct {
	ID          string
	ChatID      int64
	ItemID      int64
	Price       int
	PurchasedAt time.Time
}

// Feedback is free-form text a user sent to the bot.
type Feedback struct {
	ID        int
	ChatID    int64
	Message   string
	CreatedAt time.Time
}

// Activity is an activity_log row.
type Activity struct {
	ChatID    int64
	Action    string
	Details   string
	CreatedAt time.Time
}

// LLMRequestEventData captures the data for a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a persisted LLM request.
type LLMRequestEventRecord struct {
	ID int
	LLMRequestEventData
	Timestamp time.Time
}

// LLMUsageStats aggregates token usage per purpose.
type LLMUsageStats struct {
	Purpose      string
	Model        string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// EventRepo records LLM calls. The LLM logging decorator depends only on this.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
