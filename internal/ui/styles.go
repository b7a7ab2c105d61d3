package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorSuccess = lipgloss.Color("34")  // Green
	colorWarning = lipgloss.Color("214") // Orange
	colorError   = lipgloss.Color("196") // Red
)

var (
	dangerBoxStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorError).
			Padding(0, 2)

	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

// dangerBanner renders the destructive-operation warning for dbName.
func dangerBanner(dbName string) string {
	return dangerBoxStyle.Render(
		"DANGER: every staging and analytics table in database '" + dbName + "'\n" +
			"is about to be DROPPED and RECREATED. Loaded data will be lost.")
}
