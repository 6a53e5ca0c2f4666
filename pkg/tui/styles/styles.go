// Package styles holds the reader's colors and lipgloss styles.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color hex values
const (
	ColorAccentBlue  = "#7AA2F7"
	ColorMutedBlue   = "#8B95C1"
	ColorTextPrimary = "#C0CAF5"
	ColorErrorRed    = "#F7768E"
	ColorSelected    = "#364A82"
	ColorBackground  = "#1A1B26"
	ColorBarDark     = "#24283B"

	ColorLightAccent     = "#2E5CB8"
	ColorLightMuted      = "#6B7089"
	ColorLightText       = "#343B58"
	ColorLightSelected   = "#B6C8F2"
	ColorLightBackground = "#F5F6FA"
	ColorLightBar        = "#E1E2E7"
)

var (
	Background color.Color

	SelectionStyle      lipgloss.Style
	StatusBarStyle      lipgloss.Style
	MutedStyle          lipgloss.Style
	SecondaryStyle      lipgloss.Style
	HighlightWhiteStyle lipgloss.Style
	ErrorStyle          lipgloss.Style
)

func init() {
	Apply(true)
}

// Apply switches every style to the dark or light palette. It must be
// called from the program's update loop.
func Apply(dark bool) {
	accent, muted, text, selected, bg, bar := ColorAccentBlue, ColorMutedBlue, ColorTextPrimary, ColorSelected, ColorBackground, ColorBarDark
	if !dark {
		accent, muted, text, selected, bg, bar = ColorLightAccent, ColorLightMuted, ColorLightText, ColorLightSelected, ColorLightBackground, ColorLightBar
	}

	Background = lipgloss.Color(bg)
	SelectionStyle = lipgloss.NewStyle().Background(lipgloss.Color(selected)).Foreground(lipgloss.Color(text))
	StatusBarStyle = lipgloss.NewStyle().Background(lipgloss.Color(bar))
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(muted)).Background(lipgloss.Color(bar))
	SecondaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(text)).Background(lipgloss.Color(bar))
	HighlightWhiteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Background(lipgloss.Color(bar)).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorErrorRed)).Bold(true)
}
