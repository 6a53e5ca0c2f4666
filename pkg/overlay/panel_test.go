package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemePref_NextCycle(t *testing.T) {
	t.Parallel()

	pref := ThemeAuto
	var seen []ThemePref
	for range 3 {
		pref = pref.Next(false)
		seen = append(seen, pref)
	}
	assert.Equal(t, []ThemePref{ThemeDark, ThemeLight, ThemeDark}, seen)

	assert.Equal(t, ThemeLight, ThemeAuto.Next(true))
}

func TestThemePref_Parse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ThemeLight, ParseThemePref("light"))
	assert.Equal(t, ThemeDark, ParseThemePref(" Dark "))
	assert.Equal(t, ThemeAuto, ParseThemePref("auto"))
	assert.Equal(t, ThemeAuto, ParseThemePref("solarized"))
	assert.Equal(t, ThemeAuto, ParseThemePref(""))
}

func TestThemePref_Resolve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ThemeDark, ThemeAuto.Resolve(true))
	assert.Equal(t, ThemeLight, ThemeAuto.Resolve(false))
	assert.Equal(t, ThemeLight, ThemeLight.Resolve(true))
	assert.Equal(t, ThemeDark, ThemeDark.Resolve(false))
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "red text", sanitize("\x1b[31mred\x1b[0m text"))
	assert.Equal(t, "a b\nc", sanitize("a\tb\nc\x07"))
	assert.Equal(t, "<b>bold</b>", sanitize("<b>bold</b>"))
}

func TestSearchLink(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://www.google.com/search?q=light+%26+dark+explained", searchLink("", "light & dark"))
	assert.Equal(t, "https://duckduckgo.com/?q=x", searchLink("https://duckduckgo.com/?q=%s", "x"))
}

func TestClampFontSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MinFontSize, clampFontSize(1))
	assert.Equal(t, MaxFontSize, clampFontSize(100))
	assert.Equal(t, DefaultFontSize, clampFontSize(DefaultFontSize))
}

func TestPanel_FontSizeScalesWidth(t *testing.T) {
	t.Parallel()

	viewport := Size{Width: 200, Height: 50}
	p := newPanel(1, Selection{Text: "photosynthesis"}, "", ThemeLight)
	narrow := p.size(viewport, ThemeAuto).Width

	p.fontSize = MaxFontSize
	wide := p.size(viewport, ThemeAuto).Width

	assert.Greater(t, wide, narrow)
	assert.Equal(t, MaxFontSize*cellsPerPoint+4, wide)
}

func TestPanel_FitsNarrowViewport(t *testing.T) {
	t.Parallel()

	viewport := Size{Width: 50, Height: 12}
	p := newPanel(1, Selection{Text: "photosynthesis"}, "", ThemeDark)
	p.state = StateSuccess
	p.explanation = strings.Repeat("word ", 200)
	p.fontSize = MaxFontSize

	view, _ := p.render(viewport, ThemeAuto)
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), viewport.Width)
	}
	assert.LessOrEqual(t, strings.Count(view, "\n")+1, viewport.Height)
}

func TestPanel_HitBoxesMatchLabels(t *testing.T) {
	t.Parallel()

	viewport := Size{Width: 100, Height: 40}
	p := newPanel(1, Selection{Text: "photosynthesis"}, "", ThemeLight)
	p.state = StateSuccess
	p.explanation = "Plants make sugar from light."

	view, boxes := p.render(viewport, ThemeAuto)
	lines := strings.Split(ansi.Strip(view), "\n")

	labels := map[action]string{
		actionPin:      "[pin]",
		actionTheme:    "[auto]",
		actionClose:    "[x]",
		actionCopy:     "[copy]",
		actionSpeak:    "[speak]",
		actionStop:     "[stop]",
		actionRefresh:  "[refresh]",
		actionFontDown: "[A-]",
		actionFontUp:   "[A+]",
	}
	for a, label := range labels {
		b, ok := findBox(boxes, a)
		require.True(t, ok, label)
		assert.Equal(t, label, ansi.Cut(lines[b.row], b.x0, b.x1))
	}
}

func TestPanel_ActionsWrapWhenNarrow(t *testing.T) {
	t.Parallel()

	buttons := flowButtons(10, panelStyles{},
		segment{text: "[copy]"},
		segment{text: "[speak]"},
		segment{text: "[A-]"},
	)
	require.Len(t, buttons, 3)
	for _, r := range buttons {
		assert.LessOrEqual(t, r.width(), 10)
	}
}
