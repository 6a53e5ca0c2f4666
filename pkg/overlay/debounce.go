package overlay

import (
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
)

// scheduleDebounce supersedes any pending evaluation and starts a new quiet
// period.
func (c *Controller) scheduleDebounce() tea.Cmd {
	c.debounceID++
	id := c.debounceID
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// SelectionChanged tells the controller the document selection may have
// changed outside of a pointer release, for example by keyboard.
func (c *Controller) SelectionChanged() tea.Cmd {
	return c.scheduleDebounce()
}

// evaluateSelection reads the settled selection and shows a Trigger for it.
func (c *Controller) evaluateSelection() tea.Cmd {
	if c.source == nil {
		return nil
	}
	sel := c.source.CurrentSelection().normalized()
	if !sel.valid() {
		c.destroyTrigger()
		return nil
	}
	if c.fetching {
		slog.Debug("Explanation in flight, not offering a new trigger")
		c.destroyTrigger()
		return nil
	}
	if p := c.panel; p == nil || !p.pinned {
		c.destroyPanel()
	}
	return c.showTrigger(sel)
}
