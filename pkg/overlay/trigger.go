package overlay

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// TriggerTimeout is how long an unused Trigger stays on screen.
const TriggerTimeout = 5 * time.Second

const (
	triggerLabel        = " ? Explain "
	triggerFocusedLabel = "[? Explain]"
)

// Trigger is the floating affordance shown next to a fresh selection.
type Trigger struct {
	id        uint64
	selection Selection
	pos       Point
	visible   bool
	theme     ThemePref

	generation uint64
	hovered    bool
	focused    bool
}

func (t *Trigger) ID() uint64           { return t.id }
func (t *Trigger) Visible() bool        { return t.visible }
func (t *Trigger) Position() Point      { return t.pos }
func (t *Trigger) Focused() bool        { return t.focused }
func (t *Trigger) Theme() ThemePref     { return t.theme }
func (t *Trigger) Selection() Selection { return t.selection }

func (t *Trigger) size() Size {
	return Size{Width: lipgloss.Width(triggerLabel), Height: 1}
}

func (t *Trigger) rect() Rect {
	s := t.size()
	return Rect{X: t.pos.X, Y: t.pos.Y, Width: s.Width, Height: s.Height}
}

// armExpiry starts a new expiry period, invalidating any earlier one.
func (t *Trigger) armExpiry() tea.Cmd {
	t.generation++
	id, gen := t.id, t.generation
	return tea.Tick(TriggerTimeout, func(time.Time) tea.Msg {
		return triggerExpiredMsg{triggerID: id, generation: gen}
	})
}

func (t *Trigger) view() string {
	pal := paletteFor(t.theme)
	style := lipgloss.NewStyle().
		Foreground(pal.buttonFg).
		Background(pal.buttonBg).
		Bold(true)
	if t.focused {
		return style.Underline(true).Render(triggerFocusedLabel)
	}
	return style.Render(triggerLabel)
}
