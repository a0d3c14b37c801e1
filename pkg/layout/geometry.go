package layout

// Rect is an axis-aligned rectangle with its origin at the bottom-left
// corner. All coordinates are integer inches.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() int { return r.Y + r.Height }

// CenterDoubled returns the rectangle center in doubled coordinates
// (2x+w, 2y+h), which stays integral for odd extents.
func (r Rect) CenterDoubled() (cx, cy int) {
	return 2*r.X + r.Width, 2*r.Y + r.Height
}

// Overlaps reports whether the interiors of r and o intersect. Rectangles
// that merely share a boundary do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Top() && o.Y < r.Top()
}

// GapComponents returns the four non-negative axis gaps between r and o:
// the positive parts of (o.left − r.right), (r.left − o.right),
// (o.bottom − r.top), and (r.bottom − o.top). At most one component per
// axis is positive; all four are zero when the rectangles touch or overlap.
func (r Rect) GapComponents(o Rect) (gxRight, gxLeft, gyAbove, gyBelow int) {
	return posPart(o.X - r.Right()),
		posPart(r.X - o.Right()),
		posPart(o.Y - r.Top()),
		posPart(r.Y - o.Top())
}

// Gap returns the Manhattan gap between r and o: the sum of the four
// GapComponents. Zero means the rectangles touch or overlap.
func (r Rect) Gap(o Rect) int {
	a, b, c, d := r.GapComponents(o)
	return a + b + c + d
}

// SharedWall returns the length of the boundary segment r and o share: the
// interval overlap along the perpendicular axis when the rectangles touch
// edge-to-edge, and 0 when they are apart, overlap, or meet only at a
// corner.
func (r Rect) SharedWall(o Rect) int {
	touchX := r.Right() == o.X || o.Right() == r.X
	touchY := r.Top() == o.Y || o.Top() == r.Y
	switch {
	case touchX && !touchY:
		return intervalOverlap(r.Y, r.Top(), o.Y, o.Top())
	case touchY && !touchX:
		return intervalOverlap(r.X, r.Right(), o.X, o.Right())
	default:
		return 0
	}
}

// OnPerimeter reports whether the point (px, py) lies on the boundary of r.
func (r Rect) OnPerimeter(px, py int) bool {
	onVertical := (px == r.X || px == r.Right()) && py >= r.Y && py <= r.Top()
	onHorizontal := (py == r.Y || py == r.Top()) && px >= r.X && px <= r.Right()
	return onVertical || onHorizontal
}

// ContainedIn reports whether r lies entirely within the plate rectangle
// spanning (0,0) to (plateW, plateH).
func (r Rect) ContainedIn(plateW, plateH int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= plateW && r.Top() <= plateH
}

func posPart(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func intervalOverlap(aLo, aHi, bLo, bHi int) int {
	lo := max(aLo, bLo)
	hi := min(aHi, bHi)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
