package tui

import "github.com/charmbracelet/lipgloss"

// Theme collects the styles the views share.
type Theme struct {
	Title        lipgloss.Style
	ActiveTab    lipgloss.Style
	InactiveTab  lipgloss.Style
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	FieldError   lipgloss.Style
	Notice       lipgloss.Style
	TableHeader  lipgloss.Style
	Subtle       lipgloss.Style
	Credit       lipgloss.Style
	Debit        lipgloss.Style
}

// DefaultTheme returns the standard color scheme.
func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7FB069")),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7FB069")).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true),
		InactiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 2).
			Border(lipgloss.HiddenBorder(), true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")),
		FocusedLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7FB069")),
		FieldError: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1D3")),
		TableHeader: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true),
		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		Credit: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")),
		Debit: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
	}
}
