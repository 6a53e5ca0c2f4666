// Package document renders a text or markdown file and lets the user scroll
// it and select text with the mouse.
package document

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/docker/explainer/pkg/overlay"
)

const wheelStep = 3

// KeyMap defines the scrolling and selection bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	SelectAll key.Binding
	Clear     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "f"), key.WithHelp("pgdn", "page down")),
		Top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		SelectAll: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select screen")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
	}
}

// Document is a scrollable, selectable view of a file. It occupies the
// top-left corner of the screen, so screen rows map to lines from offset.
type Document struct {
	name     string
	source   string
	markdown bool
	dark     bool

	width, height int
	lines         []string
	plain         []string
	offset        int

	selection selectionState
	keys      KeyMap
	now       func() time.Time
}

// New creates a document. Files ending in .md or .markdown are rendered
// with glamour.
func New(name, source string) *Document {
	ext := strings.ToLower(filepath.Ext(name))
	return &Document{
		name:     name,
		source:   source,
		markdown: ext == ".md" || ext == ".markdown",
		dark:     true,
		keys:     DefaultKeyMap(),
		now:      time.Now,
	}
}

func (d *Document) Name() string       { return d.name }
func (d *Document) Keys() KeyMap       { return d.keys }
func (d *Document) LineCount() int     { return len(d.plain) }
func (d *Document) Offset() int        { return d.offset }
func (d *Document) Height() int        { return d.height }
func (d *Document) HasSelection() bool { return !d.selection.empty() }
func (d *Document) Dragging() bool     { return d.selection.mouseButtonDown }

// SetSize lays the document out again for a new screen area.
func (d *Document) SetSize(width, height int) {
	if d.width == width && d.height == height && d.lines != nil {
		return
	}
	d.width, d.height = width, height
	d.layout()
}

// SetDark picks the markdown style for the terminal background.
func (d *Document) SetDark(dark bool) {
	if d.dark == dark && d.lines != nil {
		return
	}
	d.dark = dark
	if d.markdown {
		d.layout()
	}
}

func (d *Document) layout() {
	d.lines = nil
	if d.markdown {
		if rendered, err := d.renderMarkdown(); err == nil {
			d.lines = strings.Split(strings.TrimRight(rendered, "\n"), "\n")
		} else {
			slog.Warn("Failed to render markdown, showing plain text", "file", d.name, "error", err)
		}
	}
	if d.lines == nil {
		d.lines = wrapPlain(d.source, d.width)
	}

	d.plain = make([]string, len(d.lines))
	for i, line := range d.lines {
		d.plain[i] = ansi.Strip(line)
	}

	d.selection.clear()
	d.offset = min(d.offset, d.maxOffset())
}

func (d *Document) renderMarkdown() (string, error) {
	style := "light"
	if d.dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(d.width-2, 20)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(d.source)
}

func (d *Document) maxOffset() int {
	return max(0, len(d.lines)-d.height)
}

func (d *Document) scroll(delta int) {
	d.offset = min(max(d.offset+delta, 0), d.maxOffset())
}

// ScrollPercent reports how far the view is scrolled, from 0 to 1.
func (d *Document) ScrollPercent() float64 {
	if d.maxOffset() == 0 {
		return 1
	}
	return float64(d.offset) / float64(d.maxOffset())
}

func (d *Document) position(x, y int) (line, col int) {
	line = min(max(d.offset+y, 0), max(len(d.plain)-1, 0))
	return line, max(x, 0)
}

// Update handles mouse and key input aimed at the document. It reports
// whether the selection may have changed without a pointer release, which
// the host forwards to the overlay.
func (d *Document) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft {
			return nil, false
		}
		line, col := d.position(msg.X, msg.Y)
		now := d.now()
		if d.selection.isDoubleClick(line, col, now) {
			d.selection.resetDoubleClick()
			if d.selectWordAt(line, col) {
				return nil, false
			}
		}
		d.selection.recordClick(line, col, now)
		d.selection.start(line, col)
		d.selection.mouseY = msg.Y

	case tea.MouseMotionMsg:
		if !d.selection.mouseButtonDown {
			return nil, false
		}
		line, col := d.position(msg.X, msg.Y)
		d.selection.update(line, col)
		d.selection.mouseY = msg.Y
		return d.autoScroll(), false

	case tea.MouseReleaseMsg:
		if !d.selection.mouseButtonDown {
			return nil, false
		}
		line, col := d.position(msg.X, msg.Y)
		d.selection.update(line, col)
		d.selection.end()
		if d.selection.empty() {
			d.selection.clear()
		}

	case AutoScrollTickMsg:
		return d.autoScroll(), false

	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			d.scroll(-wheelStep)
		case tea.MouseWheelDown:
			d.scroll(wheelStep)
		}

	case tea.KeyPressMsg:
		return nil, d.handleKey(msg)
	}
	return nil, false
}

func (d *Document) handleKey(msg tea.KeyPressMsg) bool {
	switch {
	case key.Matches(msg, d.keys.Up):
		d.scroll(-1)
	case key.Matches(msg, d.keys.Down):
		d.scroll(1)
	case key.Matches(msg, d.keys.PageUp):
		d.scroll(-max(d.height-1, 1))
	case key.Matches(msg, d.keys.PageDown):
		d.scroll(max(d.height-1, 1))
	case key.Matches(msg, d.keys.Top):
		d.offset = 0
	case key.Matches(msg, d.keys.Bottom):
		d.offset = d.maxOffset()
	case key.Matches(msg, d.keys.SelectAll):
		d.selectVisible()
		return true
	case key.Matches(msg, d.keys.Clear):
		if d.selection.empty() {
			return false
		}
		d.selection.clear()
		return true
	}
	return false
}

// selectVisible selects every line currently on screen.
func (d *Document) selectVisible() {
	if len(d.plain) == 0 {
		return
	}
	last := min(d.offset+d.height, len(d.plain)) - 1
	d.selection.active = true
	d.selection.mouseButtonDown = false
	d.selection.startLine, d.selection.startCol = d.offset, 0
	d.selection.endLine, d.selection.endCol = last, visibleWidth(d.lines[last])
}

// CurrentSelection returns the selected text and the screen rectangle
// bounding its visible part. The rectangle is zero when the selection is
// scrolled out of view.
func (d *Document) CurrentSelection() overlay.Selection {
	text := d.selectedText()
	if text == "" {
		return overlay.Selection{}
	}

	startLine, startCol, endLine, endCol := d.selection.normalized()
	top := max(startLine, d.offset)
	bottom := min(endLine, d.offset+d.height-1)
	if top > bottom {
		return overlay.Selection{Text: text}
	}

	anchor := overlay.Rect{Y: top - d.offset, Height: bottom - top + 1}
	if startLine == endLine {
		anchor.X = startCol
		anchor.Width = endCol - startCol
	} else {
		for i := top; i <= bottom; i++ {
			anchor.Width = max(anchor.Width, visibleWidth(d.lines[i]))
		}
		if top == startLine && top == bottom {
			anchor.X = startCol
			anchor.Width -= startCol
		}
		anchor.Width = max(anchor.Width, 1)
	}
	return overlay.Selection{Text: text, Anchor: anchor}
}

// View renders the visible part of the document, padded to its height.
func (d *Document) View() string {
	end := min(d.offset+d.height, len(d.lines))
	visible := d.applySelectionHighlight(d.lines[d.offset:end], d.offset)

	out := make([]string, d.height)
	copy(out, visible)
	return strings.Join(out, "\n")
}
