package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{0, 0.42, 1, 1.7, -0.2} {
		bar := NewProgressBar("wine", pct, 40).View()
		if w := lipgloss.Width(bar); w != 40 {
			t.Errorf("percent %v: width = %d, want 40", pct, w)
		}
	}
}

func TestTableAlignsColumns(t *testing.T) {
	out := Table{
		Headers: []string{"ID", "Name"},
		Rows: [][]string{
			{"fb-wine-1", "Chablis Premier Cru"},
			{"x", "A very long drink name that gets cut"},
		},
		MaxWidth: 12,
	}.View()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "A very long…") {
		t.Errorf("long cell not truncated:\n%s", out)
	}
	w := lipgloss.Width(lines[0])
	for _, l := range lines[1:] {
		if lipgloss.Width(l) != w {
			t.Errorf("ragged table:\n%s", out)
		}
	}
}
