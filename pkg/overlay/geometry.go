package overlay

// Point is a cell position in screen coordinates.
type Point struct {
	X, Y int
}

// Size is a width/height pair in terminal cells.
type Size struct {
	Width, Height int
}

// Rect is a screen-space rectangle. The zero Rect is degenerate.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Degenerate reports whether the rectangle has neither width nor height,
// i.e. it does not describe a visible range.
func (r Rect) Degenerate() bool {
	return r.Width <= 0 && r.Height <= 0
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

func (r Rect) bottom() int {
	return r.Y + max(r.Height, 1)
}

// edgeMargin is the horizontal gap kept between an overlay and the viewport edge.
const edgeMargin = 2

// placeNear positions a box of the given size next to anchor: below it when
// there is room, above it otherwise, horizontally clamped to the viewport.
func placeNear(anchor Rect, box, viewport Size) Point {
	x := anchor.X
	maxX := viewport.Width - box.Width - edgeMargin
	if maxX < edgeMargin {
		// Too narrow to honor the margin on both sides.
		x = max(0, (viewport.Width-box.Width)/2)
	} else {
		x = min(max(x, edgeMargin), maxX)
	}

	y := anchor.bottom()
	if y+box.Height > viewport.Height {
		y = anchor.Y - box.Height
		if y < 0 {
			y = max(0, viewport.Height-box.Height)
		}
	}

	return Point{X: x, Y: y}
}

// clampToViewport keeps a dragged box's origin on screen.
func clampToViewport(p Point, box, viewport Size) Point {
	p.X = min(p.X, viewport.Width-box.Width)
	p.Y = min(p.Y, viewport.Height-box.Height)
	p.X = max(p.X, 0)
	p.Y = max(p.Y, 0)
	return p
}
