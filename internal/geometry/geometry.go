// Package geometry provides bounding-box math shared between the decision
// pipeline and the alerting snapshot cropper.
package geometry

// Rect is an axis-aligned rectangle in pixel coordinates, [x1, y1, x2, y2]
// with x2 > x1 and y2 > y1.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// Width returns the rectangle width in pixels.
func (r Rect) Width() int {
	return r.X2 - r.X1
}

// Height returns the rectangle height in pixels.
func (r Rect) Height() int {
	return r.Y2 - r.Y1
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// Contains reports whether inner lies fully inside r (edges touching count
// as inside).
func (r Rect) Contains(inner Rect) bool {
	return inner.X1 >= r.X1 && inner.Y1 >= r.Y1 &&
		inner.X2 <= r.X2 && inner.Y2 <= r.Y2
}

// CenteredSquare returns a square of the given side length centered inside a
// frame of the given dimensions. If the side exceeds a frame dimension the
// square is clamped to the frame.
func CenteredSquare(frameWidth, frameHeight, side int) Rect {
	r := Rect{
		X1: (frameWidth - side) / 2,
		Y1: (frameHeight - side) / 2,
	}
	r.X2 = r.X1 + side
	r.Y2 = r.Y1 + side
	return r.Clamp(frameWidth, frameHeight)
}

// ExpandByFraction grows the rectangle by the given fraction of its width and
// height on every side, clamped to the frame bounds. A fraction of 0.4 adds a
// 40% margin, matching the crop used for violation snapshots.
func (r Rect) ExpandByFraction(frac float64, frameWidth, frameHeight int) Rect {
	xMargin := int(frac * float64(r.Width()))
	yMargin := int(frac * float64(r.Height()))
	out := Rect{
		X1: r.X1 - xMargin,
		Y1: r.Y1 - yMargin,
		X2: r.X2 + xMargin,
		Y2: r.Y2 + yMargin,
	}
	return out.Clamp(frameWidth, frameHeight)
}

// Clamp restricts the rectangle to [0, frameWidth] x [0, frameHeight].
func (r Rect) Clamp(frameWidth, frameHeight int) Rect {
	if r.X1 < 0 {
		r.X1 = 0
	}
	if r.Y1 < 0 {
		r.Y1 = 0
	}
	if r.X2 > frameWidth {
		r.X2 = frameWidth
	}
	if r.Y2 > frameHeight {
		r.Y2 = frameHeight
	}
	return r
}

// IoU calculates Intersection over Union between two rectangles.
func IoU(a, b Rect) float64 {
	if a.Empty() || b.Empty() {
		return 0
	}

	x1 := max(a.X1, b.X1)
	y1 := max(a.Y1, b.Y1)
	x2 := min(a.X2, b.X2)
	y2 := min(a.Y2, b.Y2)

	if x2 <= x1 || y2 <= y1 {
		return 0 // No intersection
	}

	intersection := float64((x2 - x1) * (y2 - y1))
	union := float64(a.Width()*a.Height()+b.Width()*b.Height()) - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}
