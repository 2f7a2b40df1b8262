// Package theme holds the terminal palette of the CLI.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette, wine-cellar tones.
var (
	Primary   = lipgloss.Color("#9F1239") // Bordeaux
	Secondary = lipgloss.Color("#D97706") // Amber
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Value = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	HeaderCell = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			PaddingRight(2)

	Cell = lipgloss.NewStyle().
		Foreground(Text).
		PaddingRight(2)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)
