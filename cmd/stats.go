package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sommelier/internal/app"
	"github.com/abhisek/sommelier/internal/store"
	"github.com/abhisek/sommelier/internal/ui/components"
	"github.com/abhisek/sommelier/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats [chat-id]",
	Short: "Show a learner's progress, or the leaderboard without a chat id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, closer, err := cliLogger(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			return printLeaderboard(cmd, a)
		}
		chatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q: %w", args[0], err)
		}
		stats, err := a.Learning.Stats(cmd.Context(), chatID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no learner with chat id %d", chatID)
		}
		if err != nil {
			return err
		}

		u := stats.User
		name := u.DisplayName
		if name == "" {
			name = strconv.FormatInt(u.ChatID, 10)
		}
		var b strings.Builder
		b.WriteString(theme.Title.Render(name) + "\n\n")
		field := func(label, value string) {
			b.WriteString(theme.Label.Width(18).Render(label) + theme.Value.Render(value) + "\n")
		}
		field("Level", strconv.Itoa(stats.Level))
		field("Experience", strconv.Itoa(u.Experience)+" XP")
		field("Score", strconv.Itoa(u.TotalScore))
		field("Answers", fmt.Sprintf("%d/%d (%.0f%%)", u.TotalCorrect, u.TotalQuestions, stats.Accuracy*100))
		field("Best streak", strconv.Itoa(u.MaxStreak))
		field("Days in a row", strconv.Itoa(u.ConsecutiveDays))
		field("Difficulty", u.Difficulty)
		field("Achievements", strconv.Itoa(stats.Achievements))
		fmt.Println(theme.Card.Render(strings.TrimRight(b.String(), "\n")))

		if len(stats.Categories) > 0 {
			fmt.Println()
			fmt.Println(theme.Title.Render("By category"))
			for _, c := range stats.Categories {
				bar := components.NewProgressBar(c.Category, c.Accuracy, 60)
				bar.LabelWidth = 14
				fmt.Println(bar.View())
			}
		}
		if len(stats.Recommendations) > 0 {
			fmt.Println()
			fmt.Println(theme.Title.Render("Recommendations"))
			for _, r := range stats.Recommendations {
				fmt.Println("  • " + r.Message)
			}
		}
		return nil
	},
}

func printLeaderboard(cmd *cobra.Command, a *app.App) error {
	users, err := a.Learning.Leaderboard(cmd.Context(), 20)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No learners yet.")
		return nil
	}
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(u.ChatID, 10),
			u.DisplayName,
			strconv.Itoa(u.Level()),
			strconv.Itoa(u.Experience),
			fmt.Sprintf("%.0f%%", u.Accuracy()*100),
		}
	}
	fmt.Println(theme.Title.Render("Leaderboard"))
	fmt.Print(components.Table{
		Headers:  []string{"#", "Chat", "Name", "Level", "XP", "Accuracy"},
		Rows:     rows,
		MaxWidth: 24,
	}.View())
	return nil
}
