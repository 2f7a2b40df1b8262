// Package challenges generates and tracks per-user daily goals.
package challenges

import "time"

// FastAnswer is the response time under which a correct answer counts as
// fast.
const FastAnswer = 10 * time.Second

// accuracyMinAnswers is how many answers the accuracy goal needs that day.
const accuracyMinAnswers = 5

// DayStats summarizes one user's activity for a day.
type DayStats struct {
	SessionsCompleted int
	PerfectSessions   int
	Answers           int
	Correct           int
	FastAnswers       int
	BestStreak        int
}

// Template is a challenge kind. Progress maps the day's stats to the
// challenge's progress counter.
type Template struct {
	Key      string
	Title    string
	Target   int
	Reward   int
	MinLevel int

	progress func(DayStats) int
}

// Progress returns the template's progress for the stats.
func (t Template) Progress(s DayStats) int {
	return t.progress(s)
}

// Pool is every challenge template.
var Pool = []Template{
	{Key: "complete_1", Title: "Finish a training session", Target: 1, Reward: 15, MinLevel: 1,
		progress: func(s DayStats) int { return s.SessionsCompleted }},
	{Key: "complete_3", Title: "Finish 3 training sessions", Target: 3, Reward: 40, MinLevel: 2,
		progress: func(s DayStats) int { return s.SessionsCompleted }},
	{Key: "answers_20", Title: "Answer 20 questions", Target: 20, Reward: 25, MinLevel: 1,
		progress: func(s DayStats) int { return s.Answers }},
	{Key: "accuracy_80", Title: "Keep 80% accuracy over 5+ answers", Target: 80, Reward: 30, MinLevel: 1,
		progress: func(s DayStats) int {
			if s.Answers < accuracyMinAnswers {
				return 0
			}
			return s.Correct * 100 / s.Answers
		}},
	{Key: "fast_5", Title: "Give 5 correct answers in under 10 seconds", Target: 5, Reward: 25, MinLevel: 1,
		progress: func(s DayStats) int { return s.FastAnswers }},
	{Key: "perfect_1", Title: "Finish a session without a mistake", Target: 1, Reward: 50, MinLevel: 2,
		progress: func(s DayStats) int { return s.PerfectSessions }},
	{Key: "streak_5", Title: "Get 5 right in a row", Target: 5, Reward: 30, MinLevel: 1,
		progress: func(s DayStats) int { return s.BestStreak }},
	{Key: "streak_10", Title: "Get 10 right in a row", Target: 10, Reward: 60, MinLevel: 3,
		progress: func(s DayStats) int { return s.BestStreak }},
}

// Lookup returns the template for key.
func Lookup(key string) (Template, bool) {
	for _, t := range Pool {
		if t.Key == key {
			return t, true
		}
	}
	return Template{}, false
}

// Eligible returns the templates a user at level can realistically finish.
func Eligible(level int) []Template {
	var out []Template
	for _, t := range Pool {
		if t.MinLevel <= level {
			out = append(out, t)
		}
	}
	return out
}

// CountFor returns how many challenges a user at level gets per day.
func CountFor(level int) int {
	if level >= 3 {
		return 4
	}
	return 3
}
