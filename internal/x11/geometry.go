package x11

import "fmt"

// Point is a position in root window coordinates.
type Point struct {
	X int16
	Y int16
}

// Geometry is a window rectangle with the protocol's field widths.
type Geometry struct {
	X      int16
	Y      int16
	Width  uint16
	Height uint16
}

// IsEmpty reports a zero-area rectangle, which is also what lookups return
// when nothing matched.
func (g Geometry) IsEmpty() bool {
	return g.Width == 0 || g.Height == 0
}

// Contains reports whether p lies inside g. The right and bottom edges are
// exclusive.
func (g Geometry) Contains(p Point) bool {
	x, y := int(p.X), int(p.Y)
	return x >= int(g.X) && x < int(g.X)+int(g.Width) &&
		y >= int(g.Y) && y < int(g.Y)+int(g.Height)
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", g.Width, g.Height, g.X, g.Y)
}
