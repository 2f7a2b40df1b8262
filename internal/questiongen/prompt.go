package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/sommelier/internal/catalog"
)

const systemPrompt = `You are a head sommelier training restaurant waiters on the bar and wine list.

Rules:
- Write one multiple-choice question about the given drink, testing the given attribute.
- Use only the facts provided. The correct answer must match the provided value.
- Give exactly 4 options, exactly one correct. Distractors must be plausible for the same kind of drink and clearly wrong for this one.
- Keep the question short and practical, as a guest might ask it at the table.
- Beginner questions test basics; advanced questions may use precise terminology.
- The explanation is one or two sentences a waiter could say to a guest.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message for one item.
func buildUserMessage(item catalog.Item, in Input, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Drink: %s\n", item.Name)
	fmt.Fprintf(&b, "Category: %s\n", item.Category.Title())
	for _, attr := range []string{"country", "region", "grape", "sugar", "alcohol", "serving_temp", "glassware", "ingredients", "method"} {
		if v := item.Attribute(attr); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", attr, v)
		}
	}
	if item.Style != "" {
		fmt.Fprintf(&b, "style: %s\n", item.Style)
	}
	if item.Description != "" {
		fmt.Fprintf(&b, "notes: %s\n", item.Description)
	}

	fmt.Fprintf(&b, "\nAttribute to test: %s\n", in.Type)
	fmt.Fprintf(&b, "Correct value: %s\n", item.Attribute(string(in.Type)))
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(numbered(in.PriorQuestions, cfg.MaxPriorQuestions))

	if u := in.User; u != nil {
		b.WriteString("\n\nLearner:\n")
		fmt.Fprintf(&b, "Level: %s, accuracy %.0f%% over %d questions\n", u.Difficulty, u.Accuracy*100, u.TotalQuestions)
		if len(u.WeakCategories) > 0 {
			fmt.Fprintf(&b, "Weak areas: %s\n", strings.Join(u.WeakCategories, ", "))
		}
		if len(u.StrongCategories) > 0 {
			fmt.Fprintf(&b, "Strong areas: %s\n", strings.Join(u.StrongCategories, ", "))
		}
		if len(u.RecentMistakes) > 0 {
			b.WriteString("Recent mistakes:\n")
			b.WriteString(numbered(u.RecentMistakes, cfg.MaxRecentMistakes))
		}
	}

	return b.String()
}

// numbered formats a list for the prompt keeping the last max entries.
// Returns "None" for an empty list.
func numbered(lines []string, max int) string {
	if len(lines) == 0 {
		return "None"
	}
	if max > 0 && len(lines) > max {
		lines = lines[len(lines)-max:]
	}

	var b strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l)
	}
	return strings.TrimRight(b.String(), "\n")
}
