package vision

import (
	"image"
	"math"
)

// Rect is an axis-aligned rectangle in pixel coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image returns the integer rectangle covering r.
func (r Rect) Image() image.Rectangle {
	x0 := int(math.Floor(r.X))
	y0 := int(math.Floor(r.Y))
	x1 := int(math.Ceil(r.X + r.Width))
	y1 := int(math.Ceil(r.Y + r.Height))
	return image.Rect(x0, y0, x1, y1)
}

// Scale returns r with every component divided by s.
func (r Rect) Scale(s float64) Rect {
	if s == 0 {
		return r
	}
	return Rect{X: r.X / s, Y: r.Y / s, Width: r.Width / s, Height: r.Height / s}
}

// RectFromImage converts an image.Rectangle to a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Point is a 2-D point in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Quadrilateral is a frame outline with corners in clockwise order starting
// at the top-left corner.
type Quadrilateral struct {
	TopLeft     Point `json:"topLeft"`
	TopRight    Point `json:"topRight"`
	BottomRight Point `json:"bottomRight"`
	BottomLeft  Point `json:"bottomLeft"`
}

// Points returns the corners as [TopLeft, TopRight, BottomRight, BottomLeft].
func (q Quadrilateral) Points() [4]Point {
	return [4]Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Bounds returns the axis-aligned bounding box of the corners.
func (q Quadrilateral) Bounds() Rect {
	pts := q.Points()
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Area returns the shoelace area of the quadrilateral.
func (q Quadrilateral) Area() float64 {
	pts := q.Points()
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(s) / 2
}

// Scale returns q with every coordinate divided by s.
func (q Quadrilateral) Scale(s float64) Quadrilateral {
	if s == 0 {
		return q
	}
	f := func(p Point) Point { return Point{X: p.X / s, Y: p.Y / s} }
	return Quadrilateral{
		TopLeft:     f(q.TopLeft),
		TopRight:    f(q.TopRight),
		BottomRight: f(q.BottomRight),
		BottomLeft:  f(q.BottomLeft),
	}
}
