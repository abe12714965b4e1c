package overlay

import (
	"fmt"

	"github.com/1broseidon/pxruler/internal/x11"
)

const (
	// crosshairGap pixels on each side of the pointer stay uncovered, so
	// the pointer never rests on an overlay window.
	crosshairGap = 4

	labelOffset     = 16
	labelPaddingX   = 6
	labelPaddingY   = 4
	labelLineHeight = 14
	labelCharWidth  = 7
)

// rect is a rectangle in root coordinates with room for intermediate
// arithmetic beyond int16.
type rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func rectFromGeometry(g x11.Geometry) rect {
	return rect{X: int(g.X), Y: int(g.Y), Width: int(g.Width), Height: int(g.Height)}
}

func (r rect) empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// crosshairSegments returns the left, right, top and bottom arms of a
// crosshair centred on (x, y) spanning bounds. Arms that would be empty
// come back with zero size.
func crosshairSegments(x, y int, bounds rect, thickness int) [4]rect {
	if thickness < 1 {
		thickness = 1
	}
	half := thickness / 2
	hy := y - half
	vx := x - half

	left := rect{X: bounds.X, Y: hy, Width: x - crosshairGap - bounds.X, Height: thickness}
	rightX := x + crosshairGap + 1
	right := rect{X: rightX, Y: hy, Width: bounds.X + bounds.Width - rightX, Height: thickness}
	top := rect{X: vx, Y: bounds.Y, Width: thickness, Height: y - crosshairGap - bounds.Y}
	bottomY := y + crosshairGap + 1
	bottom := rect{X: vx, Y: bottomY, Width: thickness, Height: bounds.Y + bounds.Height - bottomY}

	segments := [4]rect{left, right, top, bottom}
	for i := range segments {
		if segments[i].empty() {
			segments[i] = rect{}
		}
	}
	return segments
}

// borderRects returns the top, bottom, left and right bars framing r.
func borderRects(r rect, thickness int) [4]rect {
	t := thickness
	if t < 1 {
		t = 1
	}
	if 2*t > r.Height {
		t = max(1, r.Height/2)
	}
	return [4]rect{
		{X: r.X, Y: r.Y, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + r.Height - t, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
		{X: r.X + r.Width - t, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
	}
}

// labelLines describes the pointer position and, when known, the window
// under it.
func labelLines(p x11.Point, under x11.Geometry) []string {
	lines := []string{fmt.Sprintf("%d, %d", p.X, p.Y)}
	if !under.IsEmpty() {
		lines = append(lines, under.String())
		lines = append(lines, fmt.Sprintf("offset %d, %d", int(p.X)-int(under.X), int(p.Y)-int(under.Y)))
	}
	return lines
}

func labelDimensions(lines []string) (width, height int) {
	maxChars := 0
	for _, line := range lines {
		maxChars = max(maxChars, len(line))
	}
	width = maxChars*labelCharWidth + 2*labelPaddingX
	height = len(lines)*labelLineHeight + 2*labelPaddingY
	return width, height
}

// labelOrigin places the label below and to the right of the pointer,
// flipping to the other side when it would leave bounds.
func labelOrigin(x, y int, bounds rect, width, height int) (int, int) {
	lx := x + labelOffset
	if lx+width > bounds.X+bounds.Width {
		lx = x - labelOffset - width
	}
	ly := y + labelOffset
	if ly+height > bounds.Y+bounds.Height {
		ly = y - labelOffset - height
	}

	lx = min(max(lx, bounds.X), max(bounds.X, bounds.X+bounds.Width-width))
	ly = min(max(ly, bounds.Y), max(bounds.Y, bounds.Y+bounds.Height-height))
	return lx, ly
}
