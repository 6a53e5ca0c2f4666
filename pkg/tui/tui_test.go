package tui

import (
	"context"
	"image/color"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docker/explainer/pkg/overlay"
	"github.com/docker/explainer/pkg/tui/components/document"
)

const fox = "The quick brown fox\njumps over the lazy dog"

type fakeExplainer struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeExplainer) Explain(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return "A small mammal.", nil
}

// collectMsgs runs cmd, expanding batches, and returns every message that
// arrives within wait. Long timers are left behind.
func collectMsgs(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}

	out := make(chan tea.Msg, 64)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, inner := range batch {
					if inner != nil {
						run(inner)
					}
				}
				return
			}
			if msg != nil {
				out <- msg
			}
		}()
	}
	run(cmd)

	var msgs []tea.Msg
	deadline := time.After(wait)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
}

func hasMsg[T any](msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(T); ok {
			return true
		}
	}
	return false
}

func newTestModel(t *testing.T, explainer overlay.Explainer) *appModel {
	t.Helper()

	m := New(document.New("/tmp/notes.txt", fox), overlay.Options{
		Explainer: explainer,
		Clipboard: func(string) tea.Cmd { return nil },
	}).(*appModel)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

// feed delivers the messages produced by cmd back into the model, one
// round deep.
func feed(m *appModel, cmd tea.Cmd, wait time.Duration) {
	for _, msg := range collectMsgs(cmd, wait) {
		m.Update(msg)
	}
}

func selectQuick(t *testing.T, m *appModel) {
	t.Helper()

	m.Update(tea.MouseClickMsg{X: 4, Y: 0, Button: tea.MouseLeft})
	m.Update(tea.MouseMotionMsg{X: 9, Y: 0, Button: tea.MouseLeft})
	_, cmd := m.Update(tea.MouseReleaseMsg{X: 9, Y: 0, Button: tea.MouseLeft})
	require.NotNil(t, cmd)
	require.Equal(t, "quick", m.doc.CurrentSelection().Text)

	// debounce, then the Trigger's layout pass
	for range 2 {
		_, next := m.Update(collectMsgs(cmd, time.Second)[0])
		cmd = next
	}
	require.NotNil(t, m.overlay.Trigger())
	require.True(t, m.overlay.Trigger().Visible())
}

func TestSelection_ShowsTriggerOverDocument(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &fakeExplainer{})
	selectQuick(t, m)

	view := ansi.Strip(m.View().Content)
	assert.Contains(t, view, "? Explain")
	assert.Contains(t, view, "The quick brown fox")
}

func TestActivation_FetchesAndShowsExplanation(t *testing.T) {
	t.Parallel()

	explainer := &fakeExplainer{}
	m := newTestModel(t, explainer)
	selectQuick(t, m)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Nil(t, cmd)
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.NotNil(t, m.overlay.Panel())
	assert.Contains(t, ansi.Strip(m.statusBar.View()), explainingNotice)

	feed(m, cmd, 500*time.Millisecond)

	assert.Equal(t, []string{"quick"}, explainer.texts)
	assert.Equal(t, overlay.StateSuccess, m.overlay.Panel().State())
	assert.Contains(t, ansi.Strip(m.View().Content), "A small mammal.")
	assert.NotContains(t, ansi.Strip(m.statusBar.View()), explainingNotice)
}

func TestBindings_FollowOverlayState(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &fakeExplainer{})
	helpKeys := func() []string {
		var keys []string
		for _, b := range m.Bindings() {
			keys = append(keys, b.Help().Key)
		}
		return keys
	}

	assert.Contains(t, helpKeys(), "ctrl+a")
	assert.NotContains(t, helpKeys(), "Tab")

	selectQuick(t, m)
	assert.Contains(t, helpKeys(), "Tab")

	m.overlay.Activate()
	assert.Contains(t, helpKeys(), "p")
	assert.NotContains(t, helpKeys(), "ctrl+a")
}

func TestQuit_ShutsDownOverlay(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &fakeExplainer{})
	selectQuick(t, m)
	m.overlay.Activate()

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.True(t, hasMsg[tea.QuitMsg](collectMsgs(cmd, 100*time.Millisecond)))
	assert.Nil(t, m.overlay.Panel())
	assert.Empty(t, m.overlay.Layers())
}

func TestSelectAll_StartsDebounce(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &fakeExplainer{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'a', Mod: tea.ModCtrl})

	require.NotNil(t, cmd)
	assert.Equal(t, fox, m.doc.CurrentSelection().Text)
}

func TestStatusBarClicksDoNotSelect(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &fakeExplainer{})
	m.Update(tea.MouseClickMsg{X: 2, Y: 23, Button: tea.MouseLeft})
	m.Update(tea.MouseMotionMsg{X: 10, Y: 0, Button: tea.MouseLeft})

	assert.False(t, m.doc.HasSelection())
	assert.False(t, m.doc.Dragging())
}

func TestFocus_RequestsBackgroundColor(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &fakeExplainer{})
	_, cmd := m.Update(tea.FocusMsg{})
	assert.NotNil(t, cmd)
}

func TestView_FullscreenWithMotion(t *testing.T) {
	t.Parallel()

	view := newTestModel(t, &fakeExplainer{}).View()
	assert.True(t, view.AltScreen)
	assert.True(t, view.ReportFocus)
	assert.Equal(t, tea.MouseModeAllMotion, view.MouseMode)
	assert.Equal(t, "notes.txt - explainer", view.WindowTitle)
}

// Changes the shared palette, so it does not run in parallel.
func TestBackgroundColor_UpdatesSystemTheme(t *testing.T) {
	m := newTestModel(t, &fakeExplainer{})

	m.Update(tea.BackgroundColorMsg{Color: color.White})
	assert.False(t, m.overlay.SystemDark())

	m.Update(tea.BackgroundColorMsg{Color: color.Black})
	assert.True(t, m.overlay.SystemDark())
}
