package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// StyleManager encapsulates the form and status styles
type StyleManager struct {
	// Form styles
	Title   lipgloss.Style
	Label   lipgloss.Style
	Focused lipgloss.Style
	Cursor  lipgloss.Style
	Hint    lipgloss.Style
	Dim     lipgloss.Style

	// Status lines
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style

	// Colors for direct access
	Accent lipgloss.Color
}

const (
	navy = lipgloss.Color("#1A237E")
	gold = lipgloss.Color("#D4AF37")
)

// DefaultStyles returns a StyleManager with the navy and gold palette
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(gold),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Focused: lipgloss.NewStyle().Bold(true).Foreground(gold),
		Cursor:  lipgloss.NewStyle().Foreground(gold),
		Hint:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(navy).Padding(0, 1),
		Divider: lipgloss.NewStyle().Foreground(navy),
		Accent:  gold,
	}
}

// Global style manager instance
var styles = DefaultStyles()

// Success formats a completed step, e.g. "✓ saved Itinerary_Paris.pdf"
func Success(msg string) string {
	return styles.Success.Render("✓ " + msg)
}

// Error formats a failure line
func Error(msg string) string {
	return styles.Error.Render("✗ " + msg)
}

// Info formats a progress line
func Info(msg string) string {
	return styles.Info.Render("• " + msg)
}
