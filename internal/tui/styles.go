package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the configure summary and the doctor report.
var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			MarginBottom(1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// bordered container for the settings summary
	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(1, 2)
)

const logoASCII = `
 _                                _         
| |__  _   _ _ __  _ __ ___ _   _| |__  ___ 
| '_ \| | | | '_ \| '__/ __| | | | '_ \/ __|
| | | | |_| | |_) | |  \__ \ |_| | |_) \__ \
|_| |_|\__, | .__/|_|  |___/\__,_|_.__/|___/
       |___/|_|                             `

// Logo returns the hyprsubs ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
