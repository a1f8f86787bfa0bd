// Package ui holds the lipgloss styles and small render helpers for the
// interactive session.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorText      = lipgloss.Color("252") // White/Gray
	ColorCyan      = lipgloss.Color("87")  // Cyan for agent names

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleAgent   = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// Banner shown when the session starts
	StyleBanner = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	// Suggestions box rendered after each command
	StyleSuggestionsBox = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorCyan).
				Padding(0, 1)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	StylePrompt = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
)

// Success renders a green checkmark line.
func Success(msg string) string {
	return StyleSuccess.Render("✓ ") + msg
}

// Failure renders a red cross line.
func Failure(msg string) string {
	return StyleError.Render("✗ ") + msg
}

// Warn renders an orange warning line.
func Warn(msg string) string {
	return StyleWarning.Render("! ") + msg
}
