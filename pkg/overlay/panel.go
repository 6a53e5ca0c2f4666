package overlay

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/spinner"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/docker/explainer/pkg/speech"
)

// PanelState is the content state of a Panel.
type PanelState int

const (
	StateLoading PanelState = iota
	StateSuccess
	StateError
)

func (s PanelState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// SpeechState is the playback state of a Panel's speech session.
type SpeechState int

const (
	SpeechIdle SpeechState = iota
	SpeechSpeaking
	SpeechPaused
)

func (s SpeechState) String() string {
	switch s {
	case SpeechSpeaking:
		return "speaking"
	case SpeechPaused:
		return "paused"
	default:
		return "idle"
	}
}

const (
	DefaultFontSize = 15
	MinFontSize     = 11
	MaxFontSize     = 28
	fontStep        = 2

	// cellsPerPoint converts the font size into the text column width.
	cellsPerPoint = 3
	minTextWidth  = 30
)

const (
	panelTitle       = "Explain"
	readMoreLabel    = "Read more about it here →"
	errorMessage     = "⚠️ Couldn't fetch explanation. Please check your connection or API key."
	loadingMessage   = "Explaining…"
	defaultSearchURL = "https://www.google.com/search?q=%s+explained"
)

// Panel is the explanation surface.
type Panel struct {
	id        uint64
	selection Selection
	searchURL string

	state       PanelState
	explanation string
	seq         uint64
	refreshing  bool

	theme    ThemePref
	fontSize int
	pinned   bool
	pos      Point
	settled  bool
	closing  bool

	speech    SpeechState
	utterance *speech.Utterance

	bodyOffset int
	spinner    spinner.Model
}

func newPanel(id uint64, sel Selection, searchURL string, theme ThemePref) *Panel {
	return &Panel{
		id:        id,
		selection: sel,
		searchURL: searchURL,
		theme:     theme,
		state:     StateLoading,
		fontSize:  DefaultFontSize,
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

func (p *Panel) ID() uint64              { return p.id }
func (p *Panel) State() PanelState       { return p.state }
func (p *Panel) Explanation() string     { return p.explanation }
func (p *Panel) FontSize() int           { return p.fontSize }
func (p *Panel) Pinned() bool            { return p.pinned }
func (p *Panel) Position() Point         { return p.pos }
func (p *Panel) Theme() ThemePref        { return p.theme }
func (p *Panel) Speech() SpeechState     { return p.speech }
func (p *Panel) Closing() bool           { return p.closing }
func (p *Panel) Refreshing() bool        { return p.refreshing }
func (p *Panel) SelectionText() string   { return p.selection.Text }
func (p *Panel) actionsVisible() bool    { return p.state == StateSuccess && !p.refreshing }
func (p *Panel) readMoreURL() string     { return searchLink(p.searchURL, p.selection.Text) }
func (p *Panel) speakable() bool         { return p.state == StateSuccess && p.body() != "" }
func (p *Panel) frameOrigin() (int, int) { return 2, 1 }
func (p *Panel) body() string            { return trimReadMore(sanitize(p.explanation)) }
func (p *Panel) size(viewport Size, pref ThemePref) Size {
	view, _ := p.render(viewport, pref)
	return Size{Width: lipgloss.Width(view), Height: lipgloss.Height(view)}
}

func clampFontSize(size int) int {
	return min(max(size, MinFontSize), MaxFontSize)
}

func searchLink(format, text string) string {
	if format == "" {
		format = defaultSearchURL
	}
	return fmt.Sprintf(format, url.QueryEscape(text))
}

// readMorePrefix starts the closing sentence the model is asked to write.
// The Panel renders its own link, so that sentence is dropped.
const readMorePrefix = "read more about it here"

// trimReadMore removes one trailing "Read more about it here" sentence,
// either on its own last line or closing the last line.
func trimReadMore(text string) string {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	start := strings.LastIndexByte(text, '\n') + 1
	last := lowerASCII(text[start:])

	cut := -1
	if strings.HasPrefix(strings.TrimLeftFunc(last, unicode.IsSpace), readMorePrefix) {
		cut = start
	} else if i := strings.LastIndex(last, readMorePrefix); i > 0 && sentenceEnd(last[:i]) {
		cut = start + i
	}
	if cut < 0 {
		return text
	}
	return strings.TrimRightFunc(text[:cut], unicode.IsSpace)
}

// lowerASCII lowercases ASCII letters only, keeping byte offsets intact.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// sentenceEnd reports whether s ends with sentence punctuation and a space.
func sentenceEnd(s string) bool {
	trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
	if len(trimmed) == len(s) || trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func (p *Panel) textWidth(viewport Size) int {
	limit := viewport.Width - 4 - 2*edgeMargin
	return max(minTextWidth, min(p.fontSize*cellsPerPoint, limit))
}

// action identifies a clickable control.
type action int

const (
	actionNone action = iota
	actionPin
	actionTheme
	actionClose
	actionCopy
	actionSpeak
	actionStop
	actionRefresh
	actionFontDown
	actionFontUp
)

// hitBox is a clickable span in panel-local coordinates; x1 is exclusive.
type hitBox struct {
	action action
	row    int
	x0, x1 int
}

type segment struct {
	text   string
	style  lipgloss.Style
	action action
	link   string
}

type row []segment

func (r row) width() int {
	w := 0
	for _, s := range r {
		w += lipgloss.Width(s.text)
	}
	return w
}

type panelStyles struct {
	frame, text, muted, accent, button, warn lipgloss.Style
}

func newPanelStyles(pal palette, closing bool) panelStyles {
	if closing {
		pal.fg, pal.accent, pal.warn = pal.muted, pal.muted, pal.muted
	}
	base := lipgloss.NewStyle().Background(pal.bg)
	return panelStyles{
		frame: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.border).
			BorderBackground(pal.bg).
			Padding(0, 1),
		text:   base.Foreground(pal.fg),
		muted:  base.Foreground(pal.muted).Italic(true),
		accent: base.Foreground(pal.accent).Bold(true),
		button: base.Foreground(pal.accent),
		warn:   base.Foreground(pal.warn).Bold(true),
	}
}

func (p *Panel) speakLabel() string {
	switch p.speech {
	case SpeechSpeaking:
		return "[pause]"
	case SpeechPaused:
		return "[resume]"
	default:
		return "[speak]"
	}
}

func (p *Panel) rows(width int, pref ThemePref, st panelStyles) []row {
	pinLabel := "[pin]"
	if p.pinned {
		pinLabel = "[pinned]"
	}
	controls := row{
		{text: pinLabel, style: st.button, action: actionPin},
		{text: " ", style: st.text},
		{text: "[" + pref.Label() + "]", style: st.button, action: actionTheme},
		{text: " ", style: st.text},
		{text: "[x]", style: st.button, action: actionClose},
	}
	title := segment{text: panelTitle, style: st.accent}
	gap := max(1, width-lipgloss.Width(title.text)-controls.width())
	header := append(row{title, {text: strings.Repeat(" ", gap), style: st.text}}, controls...)

	rows := []row{header, {{text: strings.Repeat("─", width), style: st.muted}}}

	switch p.state {
	case StateLoading:
		rows = append(rows,
			row{{text: p.spinner.View(), style: st.accent}, {text: " " + loadingMessage, style: st.text}},
			row{},
		)
		quoted := "“" + sanitize(p.selection.Text) + "”"
		for _, line := range wrapLines(quoted, width) {
			rows = append(rows, row{{text: line, style: st.muted}})
		}
	case StateError:
		for _, line := range wrapLines(errorMessage, width) {
			rows = append(rows, row{{text: line, style: st.warn}})
		}
		rows = append(rows, row{}, row{{text: "[refresh]", style: st.button, action: actionRefresh}})
	case StateSuccess:
		for _, line := range wrapLines(p.body(), width) {
			rows = append(rows, row{{text: line, style: st.text}})
		}
		rows = append(rows, row{}, row{{text: readMoreLabel, style: st.button, link: p.readMoreURL()}})
	}

	if p.actionsVisible() {
		rows = append(rows, row{{text: strings.Repeat("─", width), style: st.muted}})
		rows = append(rows, flowButtons(width, st,
			segment{text: "[copy]", style: st.button, action: actionCopy},
			segment{text: p.speakLabel(), style: st.button, action: actionSpeak},
			segment{text: "[stop]", style: st.button, action: actionStop},
			segment{text: "[refresh]", style: st.button, action: actionRefresh},
			segment{text: "[A-]", style: st.button, action: actionFontDown},
			segment{text: strconv.Itoa(p.fontSize), style: st.muted},
			segment{text: "[A+]", style: st.button, action: actionFontUp},
		)...)
	}

	return rows
}

// flowButtons lays buttons out left to right, wrapping onto new rows.
func flowButtons(width int, st panelStyles, items ...segment) []row {
	var rows []row
	var cur row
	for _, item := range items {
		w := lipgloss.Width(item.text)
		if len(cur) > 0 && cur.width()+1+w > width {
			rows = append(rows, cur)
			cur = nil
		}
		if len(cur) > 0 {
			cur = append(cur, segment{text: " ", style: st.text})
		}
		cur = append(cur, item)
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}
	return rows
}

func wrapLines(s string, width int) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(ansi.Wrap(s, width, ""), "\n")
}

// render draws the panel and returns the clickable regions.
func (p *Panel) render(viewport Size, pref ThemePref) (string, []hitBox) {
	width := p.textWidth(viewport)
	st := newPanelStyles(paletteFor(p.theme), p.closing)
	rows := p.rows(width, pref, st)

	// Keep the header, scroll the rest when the viewport is too short.
	maxRows := max(3, viewport.Height-2)
	if len(rows) > maxRows {
		body := rows[2:]
		visible := maxRows - 2
		p.bodyOffset = min(max(p.bodyOffset, 0), len(body)-visible)
		rows = append(rows[:2:2], body[p.bodyOffset:p.bodyOffset+visible]...)
	} else {
		p.bodyOffset = 0
	}

	x0, y0 := p.frameOrigin()
	var boxes []hitBox
	lines := make([]string, len(rows))
	for i, r := range rows {
		var b strings.Builder
		offset := 0
		for _, seg := range r {
			w := lipgloss.Width(seg.text)
			rendered := seg.style.Render(seg.text)
			if seg.link != "" {
				rendered = ansi.SetHyperlink(seg.link) + rendered + ansi.ResetHyperlink()
			}
			b.WriteString(rendered)
			if seg.action != actionNone {
				boxes = append(boxes, hitBox{action: seg.action, row: y0 + i, x0: x0 + offset, x1: x0 + offset + w})
			}
			offset += w
		}
		if pad := width - offset; pad > 0 {
			b.WriteString(st.text.Render(strings.Repeat(" ", pad)))
		}
		lines[i] = b.String()
	}

	return st.frame.Render(strings.Join(lines, "\n")), boxes
}

// hit returns the control at panel-local (x, y).
func hit(boxes []hitBox, x, y int) (hitBox, bool) {
	for _, b := range boxes {
		if b.row == y && x >= b.x0 && x < b.x1 {
			return b, true
		}
	}
	return hitBox{}, false
}

func findBox(boxes []hitBox, a action) (hitBox, bool) {
	for _, b := range boxes {
		if b.action == a {
			return b, true
		}
	}
	return hitBox{}, false
}
