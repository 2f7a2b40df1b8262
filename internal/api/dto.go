package api

import (
	"time"

	"github.com/abhisek/sommelier/internal/achievements"
	"github.com/abhisek/sommelier/internal/learning"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
)

type userDTO struct {
	ChatID          int64   `json:"chatId"`
	DisplayName     string  `json:"displayName"`
	Level           int     `json:"level"`
	Experience      int     `json:"experience"`
	TotalScore      int     `json:"totalScore"`
	TotalQuestions  int     `json:"totalQuestions"`
	TotalCorrect    int     `json:"totalCorrect"`
	Accuracy        float64 `json:"accuracy"`
	Streak          int     `json:"streak"`
	MaxStreak       int     `json:"maxStreak"`
	ConsecutiveDays int     `json:"consecutiveDays"`
	Difficulty      string  `json:"difficulty"`
	LastActiveDay   string  `json:"lastActiveDay,omitempty"`
}

func toUser(u store.User) userDTO {
	return userDTO{
		ChatID:          u.ChatID,
		DisplayName:     u.DisplayName,
		Level:           u.Level(),
		Experience:      u.Experience,
		TotalScore:      u.TotalScore,
		TotalQuestions:  u.TotalQuestions,
		TotalCorrect:    u.TotalCorrect,
		Accuracy:        u.Accuracy(),
		Streak:          u.Streak,
		MaxStreak:       u.MaxStreak,
		ConsecutiveDays: u.ConsecutiveDays,
		Difficulty:      u.Difficulty,
		LastActiveDay:   u.LastActiveDay,
	}
}

type statsResponse struct {
	User userDTO `json:"user"`
	*learning.UserStats
}

type challengeDTO struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Day         string     `json:"day"`
	Target      int        `json:"target"`
	Progress    int        `json:"progress"`
	Reward      int        `json:"reward"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func toChallenges(in []store.DailyChallenge) []challengeDTO {
	out := make([]challengeDTO, len(in))
	for i, c := range in {
		out[i] = challengeDTO{
			Key:         c.Key,
			Title:       c.Title,
			Day:         c.Day,
			Target:      c.Target,
			Progress:    min(c.Progress, c.Target),
			Reward:      c.Reward,
			Completed:   c.Completed,
			CompletedAt: c.CompletedAt,
		}
	}
	return out
}

type achievementDTO struct {
	achievements.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

func toAchievements(in []achievements.Status) []achievementDTO {
	out := make([]achievementDTO, len(in))
	for i, s := range in {
		out[i] = achievementDTO{Achievement: s.Achievement, Unlocked: s.Unlocked, UnlockedAt: s.UnlockedAt}
	}
	return out
}

type progressDTO struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	Target   int `json:"target"`
	Score    int `json:"score"`
	Streak   int `json:"streak"`
}

func toProgress(st *session.State) progressDTO {
	if st == nil {
		return progressDTO{}
	}
	return progressDTO{Answered: st.Answered, Correct: st.Correct, Target: st.Target, Score: st.Score, Streak: st.Streak}
}

type summaryDTO struct {
	SessionID        string  `json:"sessionId"`
	Mode             string  `json:"mode"`
	Answered         int     `json:"answered"`
	Correct          int     `json:"correct"`
	Accuracy         float64 `json:"accuracy"`
	Score            int     `json:"score"`
	Bonus            int     `json:"bonus"`
	MaxStreak        int     `json:"maxStreak"`
	Perfect          bool    `json:"perfect"`
	Grade            string  `json:"grade"`
	DurationSeconds  int     `json:"durationSeconds"`
	DifficultyBefore string  `json:"difficultyBefore"`
	DifficultyAfter  string  `json:"difficultyAfter"`
	Promoted         bool    `json:"promoted"`
}

func toSummary(s *session.Summary) *summaryDTO {
	if s == nil {
		return nil
	}
	return &summaryDTO{
		SessionID:        s.SessionID,
		Mode:             string(s.Mode),
		Answered:         s.Answered,
		Correct:          s.Correct,
		Accuracy:         s.Accuracy,
		Score:            s.Score,
		Bonus:            s.Bonus,
		MaxStreak:        s.MaxStreak,
		Perfect:          s.Perfect,
		Grade:            s.Grade,
		DurationSeconds:  int(s.Duration.Seconds()),
		DifficultyBefore: string(s.DifficultyBefore),
		DifficultyAfter:  string(s.DifficultyAfter),
		Promoted:         s.Promoted(),
	}
}

type answerResponse struct {
	Correct       bool                       `json:"correct"`
	CorrectAnswer string                     `json:"correctAnswer"`
	CorrectText   string                     `json:"correctText"`
	Explanation   string                     `json:"explanation,omitempty"`
	Points        int                        `json:"points"`
	Progress      progressDTO                `json:"progress"`
	Done          bool                       `json:"done"`
	Next          *questiongen.Question      `json:"nextQuestion,omitempty"`
	Summary       *summaryDTO                `json:"summary,omitempty"`
	Achievements  []achievements.Achievement `json:"newAchievements,omitempty"`
	Challenges    []challengeDTO             `json:"completedChallenges,omitempty"`
}

func toAnswer(out *learning.AnswerOutcome) answerResponse {
	r := out.Result
	resp := answerResponse{
		Correct:       r.Correct,
		CorrectAnswer: r.CorrectLabel,
		CorrectText:   r.CorrectText,
		Explanation:   r.Explanation,
		Points:        r.Points,
		Progress:      toProgress(out.State),
		Done:          r.Done,
		Next:          out.Next,
		Summary:       toSummary(out.Summary),
		Achievements:  out.Achievements,
	}
	if len(out.Challenges) > 0 {
		resp.Challenges = toChallenges(out.Challenges)
	}
	return resp
}
