package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette shared by the configure forms. It follows the caption colors of
// the terminal view so the settings screen and live subtitles look alike.
var (
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#06B6D4"}

	ColorSuccess = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#22C55E"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}

	ColorText   = lipgloss.AdaptiveColor{Light: "#334155", Dark: "#F8FAFC"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	ColorSubtle = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#64748B"}
)

// formTheme styles huh forms with the palette above.
func formTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorAccent)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ColorError)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
