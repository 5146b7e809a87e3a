package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	mutedColor     = lipgloss.Color("#6B7280")
	accentColor    = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	successColor   = lipgloss.Color("#10B981")

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 1)

	chatStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	composerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(lipgloss.Color("#D1D5DB")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(lipgloss.Color("#FFFFFF"))

	userStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	toolStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	toolOKStyle = lipgloss.NewStyle().
			Foreground(successColor)

	toolErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// focusBorder highlights the border of the focused pane.
func focusBorder(s lipgloss.Style, focused bool) lipgloss.Style {
	if focused {
		return s.BorderForeground(primaryColor)
	}
	return s
}
