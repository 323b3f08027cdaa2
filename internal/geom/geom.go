// Package geom holds the small geometry types shared by the layout tree,
// the virtual output manager and the physical layout router: pixel rects
// in logical compositor space, and millimetre-space points used by the
// router's cross-display math (spec §4.5).
package geom

// Rect is an axis-aligned rectangle in logical compositor pixels.
type Rect struct {
	X, Y, W, H int32
}

// Contains reports whether the point (x, y) lies within r.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersects reports whether r and o overlap on a positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Intersection returns the overlapping rectangle of r and o, and whether
// one exists.
func (r Rect) Intersection(o Rect) (Rect, bool) {
	x1 := max32(r.X, o.X)
	y1 := max32(r.Y, o.Y)
	x2 := min32(r.X+r.W, o.X+o.W)
	y2 := min32(r.Y+r.H, o.Y+o.H)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}, true
}

// Inset shrinks r by amt on every edge.
func (r Rect) Inset(amt int32) Rect {
	return Rect{X: r.X + amt, Y: r.Y + amt, W: r.W - 2*amt, H: r.H - 2*amt}
}

// Empty reports whether the rect has non-positive area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Clamp returns the point (x, y) moved into r if it lies outside it.
func (r Rect) Clamp(x, y int32) (int32, int32) {
	if x < r.X {
		x = r.X
	}
	if x >= r.X+r.W {
		x = r.X + r.W - 1
	}
	if y < r.Y {
		y = r.Y
	}
	if y >= r.Y+r.H {
		y = r.Y + r.H - 1
	}
	return x, y
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Point is a logical-pixel cursor position, the coordinate space the
// router's public functions accept and return.
type Point struct {
	X, Y int32
}

// Direction is a spatial direction used for focus movement, tiling
// splits and cursor routing.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection parses the four lowercase direction names used by config
// bindsyms and IPC commands.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "left":
		return Left, true
	case "right":
		return Right, true
	case "up":
		return Up, true
	case "down":
		return Down, true
	default:
		return 0, false
	}
}

// SplitDirection is the split axis of a Split container.
type SplitDirection int

const (
	Horizontal SplitDirection = iota
	Vertical
)

func (s SplitDirection) String() string {
	if s == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Toggle flips Horizontal<->Vertical.
func (s SplitDirection) Toggle() SplitDirection {
	if s == Horizontal {
		return Vertical
	}
	return Horizontal
}

// PointMM is a point in millimetre space, the common frame the physical
// layout router converts logical pixel coordinates into so that motion
// feels physically continuous across displays of differing DPI.
type PointMM struct {
	X, Y float64
}

// RectMM is a millimetre-space rectangle.
type RectMM struct {
	X, Y, W, H float64
}

// Contains reports whether p lies within the mm rect.
func (r RectMM) Contains(p PointMM) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Clamp moves p into r, inset by amt on every edge.
func (r RectMM) Clamp(p PointMM, inset float64) PointMM {
	rr := RectMM{X: r.X + inset, Y: r.Y + inset, W: r.W - 2*inset, H: r.H - 2*inset}
	x, y := p.X, p.Y
	if x < rr.X {
		x = rr.X
	}
	if x > rr.X+rr.W {
		x = rr.X + rr.W
	}
	if y < rr.Y {
		y = rr.Y
	}
	if y > rr.Y+rr.H {
		y = rr.Y + rr.H
	}
	return PointMM{X: x, Y: y}
}
