package statusbar

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/docker/explainer/pkg/tui/styles"
	"github.com/docker/explainer/pkg/version"
)

// StatusBar displays key-binding help on the left and the document name,
// scroll position and version on the right.
type StatusBar struct {
	width    int
	bindings []key.Binding
	name     string
	percent  int
	notice   string

	cached     string
	cacheDirty bool
}

func New() StatusBar {
	return StatusBar{cacheDirty: true}
}

func (s *StatusBar) SetWidth(width int) {
	if s.width != width {
		s.width = width
		s.cacheDirty = true
	}
}

// SetBindings replaces the help bindings shown on the left.
func (s *StatusBar) SetBindings(bindings []key.Binding) {
	s.bindings = bindings
	s.cacheDirty = true
}

// SetDocument sets the document name and scroll position (0 to 1).
func (s *StatusBar) SetDocument(name string, scrolled float64) {
	percent := int(scrolled*100 + 0.5)
	if s.name != name || s.percent != percent {
		s.name, s.percent = name, percent
		s.cacheDirty = true
	}
}

// SetNotice shows a short message in place of the help text. An empty
// notice restores the help.
func (s *StatusBar) SetNotice(notice string) {
	if s.notice != notice {
		s.notice = notice
		s.cacheDirty = true
	}
}

func (s *StatusBar) Height() int { return 1 }

// InvalidateCache forces a re-render, for example after a palette change.
func (s *StatusBar) InvalidateCache() {
	s.cacheDirty = true
}

func (s *StatusBar) rebuild() {
	s.cacheDirty = false

	var rightParts []string
	if s.name != "" {
		rightParts = append(rightParts, styles.SecondaryStyle.Render(s.name))
		rightParts = append(rightParts, styles.MutedStyle.Render(fmt.Sprintf("%d%%", s.percent)))
	}
	rightParts = append(rightParts, styles.MutedStyle.Render("explainer "+version.Version))
	right := strings.Join(rightParts, styles.MutedStyle.Render("  "))
	rightW := lipgloss.Width(right)

	const pad = 1
	maxLeftW := s.width - rightW - 2*pad - 1

	var left string
	if s.notice != "" {
		left = styles.HighlightWhiteStyle.Render(s.notice)
	} else {
		var parts []string
		for _, b := range s.bindings {
			if !b.Enabled() || b.Help().Key == "" || b.Help().Desc == "" {
				continue
			}
			parts = append(parts,
				styles.HighlightWhiteStyle.Render(b.Help().Key)+
					styles.SecondaryStyle.Render(" "+b.Help().Desc))
		}
		left = strings.Join(parts, styles.SecondaryStyle.Render("  "))
	}
	if maxLeftW <= 0 {
		left = ""
	} else if lipgloss.Width(left) > maxLeftW {
		left = ansi.Truncate(left, maxLeftW, "…")
	}
	leftW := lipgloss.Width(left)

	gap := max(1, s.width-pad-leftW-rightW-pad)
	line := styles.StatusBarStyle.Render(" ") + left +
		styles.StatusBarStyle.Render(strings.Repeat(" ", gap)) + right +
		styles.StatusBarStyle.Render(" ")
	s.cached = ansi.Truncate(line, max(s.width, 0), "")
}

// View renders the status bar.
//
// Layout: [ help text ...            name  NN%  explainer VERSION ]
func (s *StatusBar) View() string {
	if s.cacheDirty {
		s.rebuild()
	}
	return s.cached
}
