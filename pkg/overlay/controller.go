// Package overlay implements the selection explainer overlay: a Trigger that
// appears next to fresh selections and a Panel that shows an explanation of
// the selected text.
//
// A Controller owns all overlay state. It is driven from a bubbletea program:
// the host forwards mouse and key events to HandleMouse and HandleKey, every
// other message to Update, and composites Layers over its own view.
package overlay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/docker/explainer/pkg/speech"
)

const (
	debounceDelay       = 300 * time.Millisecond
	exitDuration        = 250 * time.Millisecond
	defaultFetchTimeout = 30 * time.Second
)

var errNoExplainer = errors.New("no explainer configured")

// Explainer turns a piece of selected text into a plain-language explanation.
type Explainer interface {
	Explain(ctx context.Context, text string) (string, error)
}

// ThemeStore persists the theme preference.
type ThemeStore interface {
	SaveTheme(theme string) error
}

// Options configures a Controller.
type Options struct {
	Explainer Explainer
	Selection SelectionSource
	Speech    speech.Engine
	Themes    ThemeStore
	Theme     ThemePref
	Keys      *KeyMap
	// Clipboard writes text to the clipboard. Defaults to OSC 52 plus the
	// system clipboard.
	Clipboard func(text string) tea.Cmd
	// SearchURL is a format string receiving the query-escaped selection.
	SearchURL    string
	FetchTimeout time.Duration
}

type dragState struct {
	offsetX, offsetY int
}

// Controller owns the Trigger, the Panel and the shared overlay state.
type Controller struct {
	explainer    Explainer
	source       SelectionSource
	speech       speech.Engine
	themes       ThemeStore
	clipboard    func(string) tea.Cmd
	searchURL    string
	fetchTimeout time.Duration
	keys         KeyMap

	viewport   Size
	pref       ThemePref
	systemDark bool

	nextID     uint64
	debounceID uint64
	fetching   bool

	trigger *Trigger
	panel   *Panel
	drag    *dragState
	toast   *toast
}

// New creates a Controller.
func New(opts Options) *Controller {
	c := &Controller{
		explainer:    opts.Explainer,
		source:       opts.Selection,
		speech:       opts.Speech,
		themes:       opts.Themes,
		clipboard:    opts.Clipboard,
		searchURL:    opts.SearchURL,
		fetchTimeout: opts.FetchTimeout,
		keys:         DefaultKeyMap(),
		pref:         ParseThemePref(string(opts.Theme)),
	}
	if opts.Keys != nil {
		c.keys = *opts.Keys
	}
	if c.speech == nil {
		c.speech = speech.Unsupported{}
	}
	if c.clipboard == nil {
		c.clipboard = copyTextToClipboard
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = defaultFetchTimeout
	}
	return c
}

func (c *Controller) Trigger() *Trigger        { return c.trigger }
func (c *Controller) Panel() *Panel            { return c.panel }
func (c *Controller) ThemePref() ThemePref     { return c.pref }
func (c *Controller) SystemDark() bool         { return c.systemDark }
func (c *Controller) Fetching() bool           { return c.fetching }
func (c *Controller) Keys() KeyMap             { return c.keys }
func (c *Controller) Dragging() bool           { return c.drag != nil }
func (c *Controller) resolvedTheme() ThemePref { return c.pref.Resolve(c.systemDark) }

// SetViewport records the terminal size used for placement.
func (c *Controller) SetViewport(width, height int) {
	c.viewport = Size{Width: width, Height: height}
	if p := c.panel; p != nil && p.settled {
		p.pos = clampToViewport(p.pos, p.size(c.viewport, c.pref), c.viewport)
	}
	if t := c.trigger; t != nil && t.visible {
		t.pos = clampToViewport(t.pos, t.size(), c.viewport)
	}
}

// SetSystemDark records the terminal's colour scheme. Visible overlays follow
// it only while the preference is auto.
func (c *Controller) SetSystemDark(dark bool) {
	if c.systemDark == dark {
		return
	}
	c.systemDark = dark
	if c.pref == ThemeAuto {
		c.applyTheme()
	}
}

// Update handles the controller's own messages. Messages it does not know
// are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.SetViewport(msg.Width, msg.Height)
	case tea.BackgroundColorMsg:
		c.SetSystemDark(msg.IsDark())
	case ThemePrefChangedMsg:
		if msg.Pref != c.pref {
			slog.Debug("Theme preference changed externally", "theme", msg.Pref)
			c.pref = msg.Pref
			c.applyTheme()
		}
	case debounceMsg:
		if msg.id == c.debounceID {
			return c.evaluateSelection()
		}
	case layoutSettledMsg:
		c.settle(msg.overlayID)
	case triggerExpiredMsg:
		if t := c.trigger; t != nil && t.id == msg.triggerID && t.generation == msg.generation {
			slog.Debug("Trigger expired", "trigger", t.id)
			c.destroyTrigger()
		}
	case ExplanationMsg:
		c.applyExplanation(msg)
	case panelRemovedMsg:
		if p := c.panel; p != nil && p.id == msg.panelID {
			c.destroyPanel()
		}
	case speechEndedMsg:
		c.speechEnded(msg)
	case toastFadeMsg:
		if c.toast != nil && c.toast.id == msg.id {
			c.toast.fading = true
		}
	case toastExpiredMsg:
		if c.toast != nil && c.toast.id == msg.id {
			c.toast = nil
		}
	case spinner.TickMsg:
		if p := c.panel; p != nil && p.state == StateLoading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return cmd
		}
	}
	return nil
}

// HandleMouse processes a mouse event. It reports whether the overlay
// consumed the event; unconsumed events belong to the document.
func (c *Controller) HandleMouse(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		return c.pointerDown(msg.X, msg.Y, msg.Button)
	case tea.MouseMotionMsg:
		return c.pointerMove(msg.X, msg.Y)
	case tea.MouseReleaseMsg:
		return c.pointerUp(msg.X, msg.Y)
	case tea.MouseWheelMsg:
		return c.wheel(msg.X, msg.Y, msg.Button)
	}
	return false, nil
}

// HandleKey processes a key press. It reports whether the overlay consumed it.
func (c *Controller) HandleKey(msg tea.KeyPressMsg) (bool, tea.Cmd) {
	if p := c.panel; p != nil {
		if p.closing {
			return key.Matches(msg, c.keys.Dismiss), nil
		}
		switch {
		case key.Matches(msg, c.keys.Dismiss):
			return true, c.dismiss(false)
		case key.Matches(msg, c.keys.Close):
			return true, c.Close()
		case key.Matches(msg, c.keys.Pin):
			c.TogglePin()
			return true, nil
		case key.Matches(msg, c.keys.Theme):
			c.ToggleTheme()
			return true, nil
		case key.Matches(msg, c.keys.Refresh):
			return true, c.Refresh()
		}
		if p.actionsVisible() {
			switch {
			case key.Matches(msg, c.keys.Copy):
				return true, c.Copy()
			case key.Matches(msg, c.keys.Speak):
				return true, c.ToggleSpeech()
			case key.Matches(msg, c.keys.Stop):
				c.StopSpeech()
				return true, nil
			case key.Matches(msg, c.keys.FontDown):
				c.AdjustFont(-fontStep)
				return true, nil
			case key.Matches(msg, c.keys.FontUp):
				c.AdjustFont(fontStep)
				return true, nil
			}
		}
	}

	if t := c.trigger; t != nil && t.visible {
		switch {
		case key.Matches(msg, c.keys.Focus):
			t.focused = !t.focused
			return true, nil
		case t.focused && key.Matches(msg, c.keys.Activate):
			return true, c.Activate()
		case key.Matches(msg, c.keys.Dismiss):
			c.destroyTrigger()
			return true, nil
		}
	}
	return false, nil
}

// Contains reports whether (x, y) is covered by a visible overlay.
func (c *Controller) Contains(x, y int) bool {
	if r, ok := c.panelRect(); ok && r.Contains(x, y) {
		return true
	}
	if t := c.trigger; t != nil && t.visible && t.rect().Contains(x, y) {
		return true
	}
	return false
}

// Layers returns the visible overlays, bottom first.
func (c *Controller) Layers() []*lipgloss.Layer {
	var layers []*lipgloss.Layer
	if t := c.trigger; t != nil && t.visible {
		layers = append(layers, lipgloss.NewLayer(t.view()).X(t.pos.X).Y(t.pos.Y))
	}
	if p := c.panel; p != nil && p.settled {
		view, _ := p.render(c.viewport, c.pref)
		layers = append(layers, lipgloss.NewLayer(view).X(p.pos.X).Y(p.pos.Y))
		if t := c.toast; t != nil {
			layers = append(layers, lipgloss.NewLayer(t.view(paletteFor(p.theme))).X(t.pos.X).Y(t.pos.Y))
		}
	}
	return layers
}

func (c *Controller) newID() uint64 {
	c.nextID++
	return c.nextID
}

func settleCmd(id uint64) tea.Cmd {
	return func() tea.Msg {
		return layoutSettledMsg{overlayID: id}
	}
}

// settle positions an overlay once its size is known and reveals it.
func (c *Controller) settle(id uint64) {
	if t := c.trigger; t != nil && t.id == id && !t.visible {
		t.pos = placeNear(t.selection.Anchor, t.size(), c.viewport)
		t.visible = true
	}
	if p := c.panel; p != nil && p.id == id && !p.settled {
		p.pos = placeNear(p.selection.Anchor, p.size(c.viewport, c.pref), c.viewport)
		p.settled = true
	}
}

func (c *Controller) showTrigger(sel Selection) tea.Cmd {
	c.destroyTrigger()
	t := &Trigger{id: c.newID(), selection: sel, theme: c.resolvedTheme()}
	c.trigger = t
	slog.Debug("Showing trigger", "trigger", t.id, "length", len(sel.Text))
	return tea.Batch(settleCmd(t.id), t.armExpiry())
}

func (c *Controller) destroyTrigger() {
	c.trigger = nil
}

// Activate turns the visible Trigger into a Panel for its selection.
func (c *Controller) Activate() tea.Cmd {
	t := c.trigger
	if t == nil || !t.visible {
		return nil
	}
	sel := t.selection
	c.destroyTrigger()
	return c.openPanel(sel)
}

func (c *Controller) openPanel(sel Selection) tea.Cmd {
	c.destroyTrigger()
	c.destroyPanel()
	p := newPanel(c.newID(), sel, c.searchURL, c.resolvedTheme())
	c.panel = p
	slog.Debug("Opening panel", "panel", p.id)
	return tea.Batch(settleCmd(p.id), p.spinner.Tick, c.fetch(p))
}

// Shutdown removes every overlay at once, stopping any speech. The host
// calls it before quitting.
func (c *Controller) Shutdown() {
	c.destroyTrigger()
	c.destroyPanel()
}

// destroyPanel removes the Panel immediately, releasing everything bound to it.
func (c *Controller) destroyPanel() {
	p := c.panel
	if p == nil {
		return
	}
	c.cancelSpeech(p)
	c.panel = nil
	c.drag = nil
	c.toast = nil
	c.fetching = false
}

func (c *Controller) fetch(p *Panel) tea.Cmd {
	p.seq++
	p.state = StateLoading
	c.fetching = true

	explainer, timeout := c.explainer, c.fetchTimeout
	id, seq, text := p.id, p.seq, p.selection.Text
	return func() tea.Msg {
		if explainer == nil {
			return ExplanationMsg{PanelID: id, Seq: seq, Err: errNoExplainer}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		explanation, err := explainer.Explain(ctx, text)
		return ExplanationMsg{PanelID: id, Seq: seq, Text: explanation, Err: err}
	}
}

func (c *Controller) applyExplanation(msg ExplanationMsg) {
	p := c.panel
	if p == nil || p.id != msg.PanelID || p.seq != msg.Seq {
		slog.Debug("Dropping stale explanation", "panel", msg.PanelID, "seq", msg.Seq)
		return
	}
	c.fetching = false
	p.refreshing = false
	if msg.Err == nil && msg.Text == "" {
		msg.Err = errors.New("empty explanation")
	}
	if msg.Err != nil {
		slog.Warn("Explanation request failed", "panel", p.id, "error", msg.Err)
		p.state = StateError
		p.explanation = ""
		return
	}
	p.state = StateSuccess
	p.explanation = msg.Text
	p.bodyOffset = 0
}

// dismiss starts the exit animation. Implicit dismissal (Escape, outside
// click) is refused while the Panel is pinned; force always dismisses.
func (c *Controller) dismiss(force bool) tea.Cmd {
	p := c.panel
	if p == nil || p.closing {
		return nil
	}
	if p.pinned && !force {
		return nil
	}
	c.cancelSpeech(p)
	p.closing = true
	c.drag = nil
	c.toast = nil
	id := p.id
	return tea.Tick(exitDuration, func(time.Time) tea.Msg {
		return panelRemovedMsg{panelID: id}
	})
}

func (c *Controller) applyTheme() {
	resolved := c.resolvedTheme()
	if t := c.trigger; t != nil {
		t.theme = resolved
	}
	if p := c.panel; p != nil {
		p.theme = resolved
	}
}

func (c *Controller) panelRect() (Rect, bool) {
	p := c.panel
	if p == nil || !p.settled {
		return Rect{}, false
	}
	s := p.size(c.viewport, c.pref)
	return Rect{X: p.pos.X, Y: p.pos.Y, Width: s.Width, Height: s.Height}, true
}

// copyTextToClipboard writes text through the terminal and, where available,
// the system clipboard.
func copyTextToClipboard(text string) tea.Cmd {
	return tea.Batch(
		tea.SetClipboard(text),
		func() tea.Msg {
			if err := clipboard.WriteAll(text); err != nil {
				slog.Debug("System clipboard unavailable", "error", err)
			}
			return nil
		},
	)
}
