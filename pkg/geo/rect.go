package geo

import "math"

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectAround returns the rectangle of the given size centered on c.
func RectAround(c Point, width, height float64) Rect {
	return Rect{
		Min: Pt(c.X-width/2, c.Y-height/2),
		Max: Pt(c.X+width/2, c.Y+height/2),
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Pt(math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)),
		Max: Pt(math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)),
	}
}

// BoundingBox returns the union of all rects. The second result is false
// when rects is empty.
func BoundingBox(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	box := rects[0]
	for _, r := range rects[1:] {
		box = box.Union(r)
	}
	return box, true
}

// FacingEdge returns the index of the edge of a rectangle centered at from
// that faces the point to: 0=top, 1=right, 2=bottom, 3=left. The choice is
// made on the dominant axis of the direction vector, scaled by the
// rectangle's aspect so wide rooms prefer their long sides.
func FacingEdge(from, to Point, width, height float64) int {
	d := to.Sub(from)
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}
	nx, ny := d.X/width, d.Y/height
	if math.Abs(nx) >= math.Abs(ny) {
		if nx >= 0 {
			return 1
		}
		return 3
	}
	if ny >= 0 {
		return 2
	}
	return 0
}
