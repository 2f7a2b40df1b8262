package analytics

import (
	"fmt"
	"time"
)

// Priority orders recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation kinds.
const (
	KindReviewCategory = "review_category"
	KindPracticeBasics = "practice_basics"
	KindComeBack       = "come_back"
	KindTryAdvanced    = "try_advanced"
)

// Thresholds for the medium and low recommendations.
const (
	LowAccuracy        = 0.70
	LowAccuracyMin     = 10
	StaleAfter         = 7 * 24 * time.Hour
	AdvancedAccuracy   = 0.85
	AdvancedMinAnswers = 20
)

// Recommendation is one study suggestion.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Kind     string   `json:"kind"`
	Category string   `json:"category,omitempty"`
	Message  string   `json:"message"`
}

// Recommendations returns suggestions ordered high, medium, low.
func (t *Tracker) Recommendations(now time.Time) []Recommendation {
	var out []Recommendation

	for _, c := range t.WeakCategories() {
		b := t.Categories[c]
		out = append(out, Recommendation{
			Priority: PriorityHigh,
			Kind:     KindReviewCategory,
			Category: c,
			Message:  fmt.Sprintf("Review %s: %.0f%% correct over %d answers", c, b.Accuracy()*100, b.Total),
		})
	}

	if t.Overall.Total >= LowAccuracyMin && t.Accuracy() < LowAccuracy {
		out = append(out, Recommendation{
			Priority: PriorityMedium,
			Kind:     KindPracticeBasics,
			Message:  fmt.Sprintf("Overall accuracy is %.0f%%. Take a few quick tests to firm up the basics", t.Accuracy()*100),
		})
	}
	if !t.LastActive.IsZero() && now.Sub(t.LastActive) > StaleAfter {
		days := int(now.Sub(t.LastActive).Hours() / 24)
		out = append(out, Recommendation{
			Priority: PriorityMedium,
			Kind:     KindComeBack,
			Message:  fmt.Sprintf("No training for %d days. A short session keeps the list fresh", days),
		})
	}

	if t.Overall.Total > AdvancedMinAnswers && t.Accuracy() > AdvancedAccuracy {
		out = append(out, Recommendation{
			Priority: PriorityLow,
			Kind:     KindTryAdvanced,
			Message:  "You know the list well. Try AI training for harder questions",
		})
	}
	return out
}
