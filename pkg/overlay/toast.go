package overlay

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	toastVisible  = 1200 * time.Millisecond
	toastLifespan = 1500 * time.Millisecond
)

// toast is a short confirmation shown next to a control.
type toast struct {
	id     uint64
	text   string
	pos    Point
	fading bool
}

func (t *toast) schedule() tea.Cmd {
	id := t.id
	return tea.Batch(
		tea.Tick(toastVisible, func(time.Time) tea.Msg { return toastFadeMsg{id: id} }),
		tea.Tick(toastLifespan, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} }),
	)
}

func (t *toast) view(pal palette) string {
	style := lipgloss.NewStyle().
		Foreground(pal.buttonFg).
		Background(pal.buttonBg).
		Padding(0, 1)
	if t.fading {
		style = style.Faint(true)
	}
	return style.Render(t.text)
}
