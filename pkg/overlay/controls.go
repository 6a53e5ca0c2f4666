package overlay

import (
	"errors"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/docker/explainer/pkg/speech"
)

const copiedMessage = "Copied!"

// Close dismisses the Panel, pinned or not.
func (c *Controller) Close() tea.Cmd {
	return c.dismiss(true)
}

func (c *Controller) TogglePin() {
	if p := c.panel; p != nil && !p.closing {
		p.pinned = !p.pinned
	}
}

// ToggleTheme advances the preference, persists it and re-themes the overlays.
func (c *Controller) ToggleTheme() {
	c.pref = c.pref.Next(c.systemDark)
	c.applyTheme()
	if c.themes == nil {
		return
	}
	if err := c.themes.SaveTheme(string(c.pref)); err != nil {
		slog.Warn("Failed to save theme preference", "theme", c.pref, "error", err)
	}
}

func (c *Controller) AdjustFont(delta int) {
	if p := c.panel; p != nil && !p.closing {
		p.fontSize = clampFontSize(p.fontSize + delta)
	}
}

// Copy writes the explanation, without its read-more link, to the clipboard.
func (c *Controller) Copy() tea.Cmd {
	p := c.panel
	if p == nil || p.closing || !p.actionsVisible() {
		return nil
	}
	at := c.controlPosition(actionCopy)
	if at.Y > 0 {
		at.Y--
	} else {
		at.Y++
	}
	c.toast = &toast{id: c.newID(), text: copiedMessage, pos: at}
	return tea.Batch(c.clipboard(p.body()), c.toast.schedule())
}

// Refresh requests a new explanation for the same selection, keeping the
// Panel's position, pin and font size.
func (c *Controller) Refresh() tea.Cmd {
	p := c.panel
	if p == nil || p.closing || p.state == StateLoading {
		return nil
	}
	c.cancelSpeech(p)
	c.toast = nil
	p.refreshing = true
	return tea.Batch(p.spinner.Tick, c.fetch(p))
}

// ToggleSpeech cycles Idle → Speaking → Paused → Speaking.
func (c *Controller) ToggleSpeech() tea.Cmd {
	p := c.panel
	if p == nil || p.closing || !p.speakable() {
		return nil
	}
	switch p.speech {
	case SpeechIdle:
		if p.utterance == nil {
			p.utterance = speech.NewUtterance(p.body())
		}
		done, err := c.speech.Speak(p.utterance)
		if err != nil {
			slog.Warn("Speech failed", "error", err)
			c.cancelSpeech(p)
			return nil
		}
		p.speech = SpeechSpeaking
		return waitForSpeech(p.id, p.utterance.ID(), done)
	case SpeechSpeaking:
		if err := c.speech.Pause(p.utterance); err != nil {
			slog.Warn("Speech pause failed", "error", err)
			c.cancelSpeech(p)
			return nil
		}
		p.speech = SpeechPaused
	case SpeechPaused:
		if err := c.speech.Resume(p.utterance); err != nil {
			slog.Warn("Speech resume failed", "error", err)
			c.cancelSpeech(p)
			return nil
		}
		p.speech = SpeechSpeaking
	}
	return nil
}

// StopSpeech cancels playback and discards the utterance.
func (c *Controller) StopSpeech() {
	if p := c.panel; p != nil {
		c.cancelSpeech(p)
	}
}

func (c *Controller) cancelSpeech(p *Panel) {
	if p.utterance != nil {
		c.speech.Cancel(p.utterance)
	}
	p.utterance = nil
	p.speech = SpeechIdle
}

func waitForSpeech(panelID, utteranceID uint64, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return speechEndedMsg{panelID: panelID, utteranceID: utteranceID, err: <-done}
	}
}

func (c *Controller) speechEnded(msg speechEndedMsg) {
	p := c.panel
	if p == nil || p.id != msg.panelID || p.utterance == nil || p.utterance.ID() != msg.utteranceID {
		return
	}
	if msg.err != nil && !errors.Is(msg.err, speech.ErrCanceled) {
		slog.Warn("Speech ended with error", "error", msg.err)
		p.utterance = nil
	}
	p.speech = SpeechIdle
}

// controlPosition is the screen position of a Panel control.
func (c *Controller) controlPosition(a action) Point {
	p := c.panel
	_, boxes := p.render(c.viewport, c.pref)
	b, ok := findBox(boxes, a)
	if !ok {
		return p.pos
	}
	return Point{X: p.pos.X + b.x0, Y: p.pos.Y + b.row}
}

func (c *Controller) perform(a action) tea.Cmd {
	switch a {
	case actionPin:
		c.TogglePin()
	case actionTheme:
		c.ToggleTheme()
	case actionClose:
		return c.Close()
	case actionCopy:
		return c.Copy()
	case actionSpeak:
		return c.ToggleSpeech()
	case actionStop:
		c.StopSpeech()
	case actionRefresh:
		return c.Refresh()
	case actionFontDown:
		c.AdjustFont(-fontStep)
	case actionFontUp:
		c.AdjustFont(fontStep)
	}
	return nil
}

func (c *Controller) pointerDown(x, y int, button tea.MouseButton) (bool, tea.Cmd) {
	if r, ok := c.panelRect(); ok && r.Contains(x, y) {
		p := c.panel
		if p.closing || button != tea.MouseLeft {
			return true, nil
		}
		lx, ly := x-p.pos.X, y-p.pos.Y
		_, boxes := p.render(c.viewport, c.pref)
		if b, ok := hit(boxes, lx, ly); ok {
			return true, c.perform(b.action)
		}
		if _, top := p.frameOrigin(); ly <= top {
			c.drag = &dragState{offsetX: lx, offsetY: ly}
		}
		return true, nil
	}

	if t := c.trigger; t != nil && t.visible && t.rect().Contains(x, y) {
		if button == tea.MouseLeft {
			return true, c.Activate()
		}
		return true, nil
	}

	c.destroyTrigger()
	return false, c.dismiss(false)
}

func (c *Controller) pointerMove(x, y int) (bool, tea.Cmd) {
	if c.drag != nil {
		if p := c.panel; p != nil {
			target := Point{X: x - c.drag.offsetX, Y: y - c.drag.offsetY}
			p.pos = clampToViewport(target, p.size(c.viewport, c.pref), c.viewport)
			return true, nil
		}
		c.drag = nil
	}

	if t := c.trigger; t != nil && t.visible {
		over := t.rect().Contains(x, y)
		entered := over && !t.hovered
		t.hovered = over
		if entered {
			return true, t.armExpiry()
		}
		if over {
			return true, nil
		}
	}
	r, ok := c.panelRect()
	return ok && r.Contains(x, y), nil
}

func (c *Controller) pointerUp(x, y int) (bool, tea.Cmd) {
	if c.drag != nil {
		c.drag = nil
		return true, nil
	}
	if c.Contains(x, y) {
		return true, nil
	}
	return false, c.scheduleDebounce()
}

func (c *Controller) wheel(x, y int, button tea.MouseButton) (bool, tea.Cmd) {
	r, ok := c.panelRect()
	if !ok || !r.Contains(x, y) {
		return false, nil
	}
	switch button {
	case tea.MouseWheelUp:
		c.panel.bodyOffset--
	case tea.MouseWheelDown:
		c.panel.bodyOffset++
	}
	return true, nil
}
