// Package achievements awards one-time milestones from aggregate stats.
package achievements

// Stats is the aggregate view achievements are checked against.
type Stats struct {
	TotalQuestions    int
	TotalCorrect      int
	TotalScore        int
	MaxStreak         int
	ConsecutiveDays   int
	SessionsCompleted int
	CategoriesTried   int
	StrongCategories  int

	// PerfectSession is true when the session just finished had every
	// answer correct and at least PerfectMinAnswers answers.
	PerfectSession bool
}

// PerfectMinAnswers is the session size a perfect run needs to count.
const PerfectMinAnswers = 5

// Achievement is a named milestone and its experience reward.
type Achievement struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`

	check func(Stats) bool
}

// Unlocked reports whether the stats satisfy the achievement.
func (a Achievement) Unlocked(s Stats) bool {
	return a.check(s)
}

// Table is every achievement, in display order. Reward amounts live only
// here.
var Table = []Achievement{
	{Key: "first_answer", Title: "First pour", Description: "Answer your first question", Icon: "🥂", Points: 10,
		check: func(s Stats) bool { return s.TotalQuestions >= 1 }},
	{Key: "questions_10", Title: "Getting started", Description: "Answer 10 questions", Icon: "📘", Points: 25,
		check: func(s Stats) bool { return s.TotalQuestions >= 10 }},
	{Key: "questions_50", Title: "Regular", Description: "Answer 50 questions", Icon: "📚", Points: 50,
		check: func(s Stats) bool { return s.TotalQuestions >= 50 }},
	{Key: "questions_100", Title: "Cellar hand", Description: "Answer 100 questions", Icon: "🍷", Points: 100,
		check: func(s Stats) bool { return s.TotalQuestions >= 100 }},
	{Key: "streak_5", Title: "Hot hand", Description: "5 correct answers in a row", Icon: "🔥", Points: 30,
		check: func(s Stats) bool { return s.MaxStreak >= 5 }},
	{Key: "streak_10", Title: "Unstoppable", Description: "10 correct answers in a row", Icon: "⚡", Points: 60,
		check: func(s Stats) bool { return s.MaxStreak >= 10 }},
	{Key: "score_100", Title: "Century", Description: "Reach 100 points", Icon: "💯", Points: 20,
		check: func(s Stats) bool { return s.TotalScore >= 100 }},
	{Key: "score_1000", Title: "High roller", Description: "Reach 1000 points", Icon: "🏆", Points: 100,
		check: func(s Stats) bool { return s.TotalScore >= 1000 }},
	{Key: "perfect_session", Title: "Flawless service", Description: "Finish a session of 5+ questions without a mistake", Icon: "🎯", Points: 50,
		check: func(s Stats) bool { return s.PerfectSession }},
	{Key: "sessions_10", Title: "Dedicated", Description: "Complete 10 sessions", Icon: "🗓", Points: 40,
		check: func(s Stats) bool { return s.SessionsCompleted >= 10 }},
	{Key: "days_7", Title: "Week on the floor", Description: "Train 7 days in a row", Icon: "📅", Points: 70,
		check: func(s Stats) bool { return s.ConsecutiveDays >= 7 }},
	{Key: "days_30", Title: "Month of service", Description: "Train 30 days in a row", Icon: "🏅", Points: 300,
		check: func(s Stats) bool { return s.ConsecutiveDays >= 30 }},
	{Key: "explorer", Title: "Explorer", Description: "Answer questions in 5 categories", Icon: "🧭", Points: 40,
		check: func(s Stats) bool { return s.CategoriesTried >= 5 }},
	{Key: "connoisseur", Title: "Connoisseur", Description: "Be strong in 3 categories", Icon: "👑", Points: 80,
		check: func(s Stats) bool { return s.StrongCategories >= 3 }},
}

// Lookup returns the achievement for key.
func Lookup(key string) (Achievement, bool) {
	for _, a := range Table {
		if a.Key == key {
			return a, true
		}
	}
	return Achievement{}, false
}
