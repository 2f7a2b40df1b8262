package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sommelier/internal/ui/theme"
)

// Table renders rows under a header with columns sized to their content.
type Table struct {
	Headers []string
	Rows    [][]string
	// MaxWidth truncates any cell longer than this many cells, 0 disables.
	MaxWidth int
}

// View renders the table.
func (t Table) View() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], lipgloss.Width(t.cell(row[i])))
		}
	}

	var b strings.Builder
	for i, h := range t.Headers {
		b.WriteString(theme.HeaderCell.Width(widths[i] + 2).Render(h))
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		for i := range widths {
			v := ""
			if i < len(row) {
				v = t.cell(row[i])
			}
			b.WriteString(theme.Cell.Width(widths[i] + 2).Render(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (t Table) cell(s string) string {
	if t.MaxWidth <= 0 || lipgloss.Width(s) <= t.MaxWidth {
		return s
	}
	r := []rune(s)
	if len(r) > t.MaxWidth-1 {
		r = r[:t.MaxWidth-1]
	}
	return string(r) + "…"
}
