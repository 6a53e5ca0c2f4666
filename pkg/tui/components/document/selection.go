package document

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/docker/explainer/pkg/tui/styles"
)

const (
	doubleClickWindow = 500 * time.Millisecond
	autoScrollEvery   = 40 * time.Millisecond
	autoScrollMargin  = 1
)

// selectionState tracks a mouse selection in document coordinates
// (line index into the rendered document, display column).
type selectionState struct {
	active          bool
	startLine       int
	startCol        int
	endLine         int
	endCol          int
	mouseButtonDown bool
	mouseY          int

	lastClickTime time.Time
	lastClickLine int
	lastClickCol  int
}

func (s *selectionState) start(line, col int) {
	s.active = true
	s.mouseButtonDown = true
	s.startLine, s.startCol = line, col
	s.endLine, s.endCol = line, col
}

func (s *selectionState) update(line, col int) {
	s.endLine, s.endCol = line, col
}

func (s *selectionState) end() {
	s.mouseButtonDown = false
}

// empty reports whether the selection covers no cells.
func (s *selectionState) empty() bool {
	return !s.active || (s.startLine == s.endLine && s.startCol == s.endCol)
}

// clear drops the selection but keeps double-click tracking.
func (s *selectionState) clear() {
	s.active = false
	s.mouseButtonDown = false
}

// normalized returns the selection bounds with start <= end.
func (s *selectionState) normalized() (startLine, startCol, endLine, endCol int) {
	startLine, startCol = s.startLine, s.startCol
	endLine, endCol = s.endLine, s.endCol

	if startLine > endLine || (startLine == endLine && startCol > endCol) {
		startLine, endLine = endLine, startLine
		startCol, endCol = endCol, startCol
	}
	return startLine, startCol, endLine, endCol
}

func (s *selectionState) isDoubleClick(line, col int, now time.Time) bool {
	if s.lastClickTime.IsZero() {
		return false
	}
	colDiff := col - s.lastClickCol
	return now.Sub(s.lastClickTime) < doubleClickWindow &&
		line == s.lastClickLine &&
		colDiff >= -1 && colDiff <= 1
}

func (s *selectionState) recordClick(line, col int, now time.Time) {
	s.lastClickTime = now
	s.lastClickLine = line
	s.lastClickCol = col
}

func (s *selectionState) resetDoubleClick() {
	s.lastClickTime = time.Time{}
}

// AutoScrollTickMsg keeps scrolling while a drag-selection is held at the
// top or bottom edge.
type AutoScrollTickMsg struct {
	Direction int
}

func (d *Document) autoScroll() tea.Cmd {
	if !d.selection.mouseButtonDown {
		return nil
	}

	direction := 0
	switch {
	case d.selection.mouseY < autoScrollMargin && d.offset > 0:
		direction = -1
		d.offset--
		d.selection.endLine = max(0, d.selection.endLine-1)
	case d.selection.mouseY >= d.height-autoScrollMargin && d.offset < d.maxOffset():
		direction = 1
		d.offset++
		d.selection.endLine = min(len(d.plain)-1, d.selection.endLine+1)
	}
	if direction == 0 {
		return nil
	}

	return tea.Tick(autoScrollEvery, func(time.Time) tea.Msg {
		return AutoScrollTickMsg{Direction: direction}
	})
}

// selectWordAt selects the run of word (or non-word) characters under the
// given position.
func (d *Document) selectWordAt(line, col int) bool {
	if line < 0 || line >= len(d.plain) {
		return false
	}
	plainLine := d.plain[line]
	runes := []rune(plainLine)
	if len(runes) == 0 {
		return false
	}

	runeIdx := min(displayWidthToRuneIndex(plainLine, col), len(runes)-1)
	onWordChar := isWordChar(runes[runeIdx])
	startIdx, endIdx := runeIdx, runeIdx
	for startIdx > 0 && isWordChar(runes[startIdx-1]) == onWordChar {
		startIdx--
	}
	for endIdx < len(runes)-1 && isWordChar(runes[endIdx+1]) == onWordChar {
		endIdx++
	}

	d.selection.active = true
	d.selection.mouseButtonDown = false
	d.selection.startLine, d.selection.endLine = line, line
	d.selection.startCol = runeIndexToDisplayWidth(plainLine, startIdx)
	d.selection.endCol = runeIndexToDisplayWidth(plainLine, endIdx+1)
	return true
}

// selectedText extracts the selected text from the plain rendering.
func (d *Document) selectedText() string {
	if d.selection.empty() || len(d.plain) == 0 {
		return ""
	}

	startLine, startCol, endLine, endCol := d.selection.normalized()
	startLine = max(startLine, 0)
	endLine = min(endLine, len(d.plain)-1)

	var parts []string
	for i := startLine; i <= endLine; i++ {
		line := d.plain[i]
		runes := []rune(line)

		from, to := 0, len(runes)
		if i == startLine {
			from = displayWidthToRuneIndex(line, startCol)
		}
		if i == endLine {
			to = min(displayWidthToRuneIndex(line, endCol), len(runes))
		}
		if from < to {
			parts = append(parts, strings.TrimSpace(string(runes[from:to])))
		} else {
			parts = append(parts, "")
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// applySelectionHighlight highlights the selected part of the visible lines.
func (d *Document) applySelectionHighlight(lines []string, firstLine int) []string {
	if d.selection.empty() {
		return lines
	}
	startLine, startCol, endLine, endCol := d.selection.normalized()

	highlighted := make([]string, len(lines))
	for i, line := range lines {
		abs := firstLine + i
		if abs < startLine || abs > endLine {
			highlighted[i] = line
			continue
		}

		from, to := 0, visibleWidth(line)
		if abs == startLine {
			from = startCol
		}
		if abs == endLine {
			to = min(to, endCol)
		}
		highlighted[i] = highlightLine(line, from, to)
	}
	return highlighted
}

// highlightLine restyles the cells [startCol, endCol) of line.
func highlightLine(line string, startCol, endCol int) string {
	plainWidth := runewidth.StringWidth(ansi.Strip(line))
	if startCol >= plainWidth || startCol >= endCol {
		return line
	}
	endCol = min(endCol, plainWidth)

	before := ansi.Cut(line, 0, startCol)
	selected := styles.SelectionStyle.Render(ansi.Strip(ansi.Cut(line, startCol, endCol)))
	after := ansi.Cut(line, endCol, plainWidth)
	return before + selected + after
}
