package overlay

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// ThemePref is the persisted theme preference.
type ThemePref string

const (
	ThemeAuto  ThemePref = "auto"
	ThemeLight ThemePref = "light"
	ThemeDark  ThemePref = "dark"
)

// ParseThemePref parses a stored preference. Unknown values fall back to auto.
func ParseThemePref(s string) ThemePref {
	switch ThemePref(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight
	case ThemeDark:
		return ThemeDark
	default:
		return ThemeAuto
	}
}

// Resolve returns the concrete light or dark theme for the preference.
func (p ThemePref) Resolve(systemDark bool) ThemePref {
	switch p {
	case ThemeLight, ThemeDark:
		return p
	}
	if systemDark {
		return ThemeDark
	}
	return ThemeLight
}

// Next is the value the theme toggle moves to: auto jumps to the opposite of
// what the system currently shows, then light and dark alternate.
func (p ThemePref) Next(systemDark bool) ThemePref {
	switch p {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeLight
	}
	if systemDark {
		return ThemeLight
	}
	return ThemeDark
}

// Label is the text shown on the theme toggle.
func (p ThemePref) Label() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

type palette struct {
	fg, bg, muted, accent color.Color
	border, warn          color.Color
	buttonFg, buttonBg    color.Color
}

var (
	lightPalette = palette{
		fg:       lipgloss.Color("#1F2328"),
		bg:       lipgloss.Color("#FFFFFF"),
		muted:    lipgloss.Color("#656D76"),
		accent:   lipgloss.Color("#0969DA"),
		border:   lipgloss.Color("#D0D7DE"),
		warn:     lipgloss.Color("#9A6700"),
		buttonFg: lipgloss.Color("#FFFFFF"),
		buttonBg: lipgloss.Color("#0969DA"),
	}
	darkPalette = palette{
		fg:       lipgloss.Color("#E6EDF3"),
		bg:       lipgloss.Color("#161B22"),
		muted:    lipgloss.Color("#8B949E"),
		accent:   lipgloss.Color("#7AA2F7"),
		border:   lipgloss.Color("#30363D"),
		warn:     lipgloss.Color("#D29922"),
		buttonFg: lipgloss.Color("#0D1117"),
		buttonBg: lipgloss.Color("#7AA2F7"),
	}
)

func paletteFor(resolved ThemePref) palette {
	if resolved == ThemeDark {
		return darkPalette
	}
	return lightPalette
}
