package document

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// wrapPlain lays out a plain-text document at the given width.
func wrapPlain(source string, width int) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\t", strings.Repeat(" ", tabWidth))
	source = strings.TrimRight(source, "\n")
	if width <= 0 {
		return strings.Split(source, "\n")
	}
	return strings.Split(ansi.Wrap(source, width, ""), "\n")
}

// isWordChar returns true if the rune is a word character (letter, digit, or underscore)
func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '\'' || r == '-' ||
		r >= 0x80
}

// displayWidthToRuneIndex converts a display column to a rune index.
func displayWidthToRuneIndex(s string, targetWidth int) int {
	if targetWidth <= 0 {
		return 0
	}

	currentWidth := 0
	i := 0
	for _, r := range s {
		if currentWidth >= targetWidth {
			return i
		}
		currentWidth += runewidth.RuneWidth(r)
		i++
	}
	return i
}

// runeIndexToDisplayWidth converts a rune index to a display column.
func runeIndexToDisplayWidth(s string, runeIdx int) int {
	width := 0
	i := 0
	for _, r := range s {
		if i >= runeIdx {
			break
		}
		width += runewidth.RuneWidth(r)
		i++
	}
	return width
}

// visibleWidth is the width of a line without trailing blanks.
func visibleWidth(line string) int {
	return runewidth.StringWidth(strings.TrimRight(ansi.Strip(line), " \t"))
}
