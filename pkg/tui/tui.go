// Package tui provides the reader: a document view with the explainer
// overlay composited on top.
package tui

import (
	"path/filepath"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/docker/explainer/pkg/overlay"
	"github.com/docker/explainer/pkg/tui/components/document"
	"github.com/docker/explainer/pkg/tui/components/statusbar"
	"github.com/docker/explainer/pkg/tui/styles"
)

const explainingNotice = "Explaining…"

var quitKey = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))

type appModel struct {
	doc       *document.Document
	overlay   *overlay.Controller
	statusBar statusbar.StatusBar

	wWidth, wHeight int
}

// New creates the reader for doc. The overlay reads its selections from
// the document.
func New(doc *document.Document, opts overlay.Options) tea.Model {
	opts.Selection = doc
	return &appModel{
		doc:       doc,
		overlay:   overlay.New(opts),
		statusBar: statusbar.New(),
	}
}

func (m *appModel) Init() tea.Cmd {
	return tea.RequestBackgroundColor
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.refreshStatus()
	return m, cmd
}

func (m *appModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg.Width, msg.Height)
		return nil

	case tea.BackgroundColorMsg:
		dark := msg.IsDark()
		styles.Apply(dark)
		m.doc.SetDark(dark)
		m.statusBar.InvalidateCache()
		return m.overlay.Update(msg)

	case tea.FocusMsg:
		// The terminal theme may have changed while we were in the background.
		return tea.RequestBackgroundColor

	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg, tea.MouseWheelMsg:
		return m.handleMouse(msg)

	case document.AutoScrollTickMsg:
		cmd, _ := m.doc.Update(msg)
		return cmd
	}

	return m.overlay.Update(msg)
}

func (m *appModel) handleWindowResize(width, height int) {
	m.wWidth, m.wHeight = width, height
	docHeight := max(height-m.statusBar.Height(), 0)
	m.doc.SetSize(width, docHeight)
	m.overlay.SetViewport(width, docHeight)
	m.statusBar.SetWidth(width)
}

func (m *appModel) handleKeyPress(msg tea.KeyPressMsg) tea.Cmd {
	if key.Matches(msg, quitKey) {
		m.overlay.Shutdown()
		return tea.Quit
	}
	if handled, cmd := m.overlay.HandleKey(msg); handled {
		return cmd
	}
	if _, changed := m.doc.Update(msg); changed {
		return m.overlay.SelectionChanged()
	}
	return nil
}

// handleMouse offers the event to the overlay first; whatever it does not
// consume goes to the document. A release outside the overlay both ends the
// document selection and starts the overlay's debounce.
func (m *appModel) handleMouse(msg tea.Msg) tea.Cmd {
	handled, overlayCmd := m.overlay.HandleMouse(msg)
	if handled {
		return overlayCmd
	}
	if m.onStatusBar(msg) {
		return overlayCmd
	}
	docCmd, _ := m.doc.Update(msg)
	return tea.Batch(overlayCmd, docCmd)
}

func (m *appModel) onStatusBar(msg tea.Msg) bool {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok {
		return false
	}
	return mouse.Mouse().Y >= m.doc.Height() && !m.doc.Dragging()
}

func (m *appModel) refreshStatus() {
	m.statusBar.SetDocument(filepath.Base(m.doc.Name()), m.doc.ScrollPercent())
	if m.overlay.Fetching() {
		m.statusBar.SetNotice(explainingNotice)
	} else {
		m.statusBar.SetNotice("")
	}
	m.statusBar.SetBindings(m.Bindings())
}

// Bindings returns the help shown in the status bar: the Panel's controls
// while one is open, the document's otherwise.
func (m *appModel) Bindings() []key.Binding {
	if m.overlay.Panel() != nil {
		return append(m.overlay.Keys().PanelHelp(), quitKey)
	}
	keys := m.doc.Keys()
	bindings := []key.Binding{keys.Down, keys.Up, keys.PageDown, keys.SelectAll}
	if m.overlay.Trigger() != nil {
		overlayKeys := m.overlay.Keys()
		bindings = append([]key.Binding{overlayKeys.Focus, overlayKeys.Activate}, bindings...)
	}
	return append(bindings, quitKey)
}

func (m *appModel) View() tea.View {
	base := lipgloss.JoinVertical(lipgloss.Left, m.doc.View(), m.statusBar.View())

	if layers := m.overlay.Layers(); len(layers) > 0 {
		all := append([]*lipgloss.Layer{lipgloss.NewLayer(base)}, layers...)
		base = lipgloss.NewCompositor(all...).Render()
	}

	return toFullscreenView(base, m.windowTitle())
}

func (m *appModel) windowTitle() string {
	return filepath.Base(m.doc.Name()) + " - explainer"
}

func toFullscreenView(content, windowTitle string) tea.View {
	view := tea.NewView(content)
	view.AltScreen = true
	// All-motion reporting is needed for hover over the Trigger.
	view.MouseMode = tea.MouseModeAllMotion
	view.ReportFocus = true
	view.BackgroundColor = styles.Background
	view.WindowTitle = windowTitle
	return view
}
