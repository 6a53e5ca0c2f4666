package overlay

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// minSelectionLength is the shortest trimmed selection that gets a Trigger.
const minSelectionLength = 2

// Selection is the text the user highlighted and where it sits on screen.
type Selection struct {
	Text   string
	Anchor Rect
}

// SelectionSource reads the document's current selection at evaluation time.
type SelectionSource interface {
	CurrentSelection() Selection
}

// SelectionFunc adapts a function to SelectionSource.
type SelectionFunc func() Selection

func (f SelectionFunc) CurrentSelection() Selection { return f() }

func (s Selection) normalized() Selection {
	s.Text = strings.TrimSpace(s.Text)
	return s
}

func (s Selection) valid() bool {
	return utf8.RuneCountInString(s.Text) >= minSelectionLength && !s.Anchor.Degenerate()
}

// sanitize removes terminal escape sequences and control characters so that
// document text can be echoed inside an overlay verbatim.
func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
