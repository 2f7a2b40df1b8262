package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/abhisek/sommelier/internal/achievements"
	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/learning"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
)

var esc = html.EscapeString

const welcomeText = `🍷 <b>Welcome to the Sommelier trainer!</b>

I help waiters learn the drinks list: short tests, an AI sommelier to ask, daily challenges and rewards for the experience you earn.

Pick where to start:`

const helpText = `<b>Commands</b>
/start - main menu
/test - start a test
/stats - your progress
/achievements - unlocked milestones
/challenges - today's challenges
/leaderboard - top learners
/shop - rewards
/search &lt;name&gt; - find a drink
/ask &lt;question&gt; - ask the sommelier
/feedback &lt;text&gt; - send feedback
/reset - wipe your progress`

// FormatQuestion renders the open question with session progress.
func FormatQuestion(q *questiongen.Question, st *session.State) string {
	var b strings.Builder
	if st != nil {
		fmt.Fprintf(&b, "<b>Question %d/%d</b> · %s · %s\n", st.QuestionsSent, st.Target, esc(q.Category.Title()), st.Difficulty)
		if st.Streak > 1 {
			fmt.Fprintf(&b, "🔥 Streak: %d\n", st.Streak)
		}
		b.WriteString("\n")
	}
	b.WriteString(esc(q.Text))
	b.WriteString("\n")
	for _, o := range q.Options {
		fmt.Fprintf(&b, "\n<b>%s)</b> %s", o.Label, esc(o.Text))
	}
	return b.String()
}

// FormatResult renders the graded answer under the question.
func FormatResult(r *session.Result) string {
	var b strings.Builder
	b.WriteString(esc(r.Question.Text))
	b.WriteString("\n\n")
	if r.Correct {
		fmt.Fprintf(&b, "✅ <b>Correct!</b> +%d points", r.Points)
		if r.Streak > 1 {
			fmt.Fprintf(&b, " · 🔥 %d in a row", r.Streak)
		}
	} else {
		fmt.Fprintf(&b, "❌ <b>Not quite.</b> You chose %s. The answer is <b>%s) %s</b>",
			r.Chosen, r.CorrectLabel, esc(r.CorrectText))
	}
	if r.Explanation != "" {
		fmt.Fprintf(&b, "\n\n💡 %s", esc(r.Explanation))
	}
	return b.String()
}

// FormatSummary renders the end-of-session report.
func FormatSummary(s *session.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 <b>%s finished</b>\n\n", esc(s.Mode.Title()))
	fmt.Fprintf(&b, "Correct: %d/%d (%.0f%%)\n", s.Correct, s.Answered, s.Accuracy*100)
	fmt.Fprintf(&b, "Grade: <b>%s</b>\n", s.Grade)
	fmt.Fprintf(&b, "Score: %d", s.Score)
	if s.Bonus > 0 {
		fmt.Fprintf(&b, " (incl. +%d perfect bonus)", s.Bonus)
	}
	fmt.Fprintf(&b, "\nBest streak: %d\n", s.MaxStreak)
	if s.Promoted() {
		fmt.Fprintf(&b, "\n⬆️ Level up! Your tests are now <b>%s</b>.\n", s.DifficultyAfter)
	}
	return b.String()
}

// FormatUnlocked announces newly unlocked achievements and completed
// challenges. It returns "" when there is nothing to announce.
func FormatUnlocked(unlocked []achievements.Achievement, done []store.DailyChallenge) string {
	var b strings.Builder
	for _, a := range unlocked {
		fmt.Fprintf(&b, "%s <b>Achievement unlocked: %s</b> (+%d XP)\n%s\n", a.Icon, esc(a.Title), a.Points, esc(a.Description))
	}
	for _, c := range done {
		fmt.Fprintf(&b, "🎯 <b>Challenge complete: %s</b> (+%d XP)\n", esc(c.Title), c.Reward)
	}
	return strings.TrimSpace(b.String())
}

// FormatStats renders a user's progress.
func FormatStats(s *learning.UserStats) string {
	u := s.User
	var b strings.Builder
	b.WriteString("📊 <b>Your progress</b>\n\n")
	fmt.Fprintf(&b, "Level %d · %d XP\n", s.Level, u.Experience)
	fmt.Fprintf(&b, "Answers: %d correct of %d (%.0f%%)\n", u.TotalCorrect, u.TotalQuestions, s.Accuracy*100)
	fmt.Fprintf(&b, "Total score: %d\n", u.TotalScore)
	fmt.Fprintf(&b, "Best streak: %d · Days in a row: %d\n", u.MaxStreak, u.ConsecutiveDays)
	fmt.Fprintf(&b, "Difficulty: %s · Achievements: %d/%d\n", u.Difficulty, s.Achievements, len(achievements.Table))

	if len(s.Categories) > 0 {
		b.WriteString("\n<b>By category</b>\n")
		for _, c := range s.Categories {
			fmt.Fprintf(&b, "%s: %d/%d (%.0f%%)\n", esc(categoryTitle(c.Category)), c.Correct, c.Total, c.Accuracy*100)
		}
	}
	if len(s.Recommendations) > 0 {
		b.WriteString("\n<b>Next steps</b>\n")
		for _, r := range s.Recommendations {
			fmt.Fprintf(&b, "• %s\n", esc(r.Message))
		}
	}
	return strings.TrimSpace(b.String())
}

func categoryTitle(s string) string {
	if c, err := catalog.ParseCategory(s); err == nil {
		return c.Title()
	}
	return s
}

// FormatAchievements lists every achievement with its state.
func FormatAchievements(list []achievements.Status) string {
	var b strings.Builder
	b.WriteString("🏅 <b>Achievements</b>\n")
	for _, a := range list {
		mark := "🔒"
		if a.Unlocked {
			mark = a.Icon
		}
		fmt.Fprintf(&b, "\n%s <b>%s</b> (%d XP)\n%s", mark, esc(a.Title), a.Points, esc(a.Description))
	}
	return b.String()
}

// FormatChallenges lists today's challenges.
func FormatChallenges(list []store.DailyChallenge) string {
	if len(list) == 0 {
		return "No challenges today."
	}
	var b strings.Builder
	b.WriteString("🎯 <b>Today's challenges</b>\n")
	for _, c := range list {
		mark := "⬜"
		if c.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "\n%s %s: %d/%d (+%d XP)", mark, esc(c.Title), c.Progress, c.Target, c.Reward)
	}
	return b.String()
}

// FormatLeaderboard renders the top users.
func FormatLeaderboard(users []store.User, me int64) string {
	if len(users) == 0 {
		return "Nobody is on the leaderboard yet. Take a test to be first!"
	}
	var b strings.Builder
	b.WriteString("🏆 <b>Leaderboard</b>\n")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i]
		}
		name := u.DisplayName
		if name == "" {
			name = "Anonymous"
		}
		line := fmt.Sprintf("%s %s · level %d · %d XP", place, esc(name), u.Level(), u.Experience)
		if u.ChatID == me {
			line = "<b>" + line + "</b>"
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

// FormatDrink renders a catalogue card.
func FormatDrink(it catalog.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n<i>%s</i>\n", esc(it.Name), esc(it.Category.Title()))
	fields := []struct{ label, attr string }{
		{"Style", ""}, {"Country", "country"}, {"Region", "region"}, {"Grape", "grape"},
		{"Sugar", "sugar"}, {"Alcohol", "alcohol"}, {"Method", "method"},
		{"Ingredients", "ingredients"}, {"Serve at", "serving_temp"}, {"Glass", "glassware"},
	}
	for _, f := range fields {
		v := it.Attribute(f.attr)
		if f.label == "Style" {
			v = it.Style
		}
		if v != "" {
			fmt.Fprintf(&b, "\n%s: %s", f.label, esc(v))
		}
	}
	if it.Aging != "" {
		fmt.Fprintf(&b, "\nAging: %s", esc(it.Aging))
	}
	if it.Garnish != "" {
		fmt.Fprintf(&b, "\nGarnish: %s", esc(it.Garnish))
	}
	if it.Pairing != "" {
		fmt.Fprintf(&b, "\nPairs with: %s", esc(it.Pairing))
	}
	if it.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", esc(it.Description))
	}
	if it.Price != "" {
		fmt.Fprintf(&b, "\n\nPrice: %s", esc(it.Price))
	}
	return b.String()
}

// FormatShop lists reward items and the user's balance.
func FormatShop(items []store.RewardItem, xp int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎁 <b>Rewards</b>\nYour balance: %d XP\n", xp)
	if len(items) == 0 {
		b.WriteString("\nThe shop is empty right now.")
	}
	for _, it := range items {
		stock := fmt.Sprintf("%d left", it.QuantityLeft)
		if it.QuantityLeft == 0 {
			stock = "sold out"
		}
		fmt.Fprintf(&b, "\n<b>%s</b> · %d XP · %s\n%s\n", esc(it.Name), it.Price, stock, esc(it.Description))
	}
	return b.String()
}

// FormatUserInfo is the admin view of one user.
func FormatUserInfo(u *store.User) string {
	return fmt.Sprintf("👤 <b>%s</b> (%d)\nLevel %d · %d XP · score %d\nAnswers: %d/%d · difficulty %s\nLast active: %s",
		esc(u.DisplayName), u.ChatID, u.Level(), u.Experience, u.TotalScore,
		u.TotalCorrect, u.TotalQuestions, u.Difficulty, orDash(u.LastActiveDay))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
