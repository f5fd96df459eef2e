package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// component is one connected region of equal-valued pixels in a binary image.
type component struct {
	pixels        []image.Point
	bounds        image.Rectangle
	touchesBorder bool
}

// findComponents labels the 8-connected regions of a binary image.
//
// Pixels are grouped by polarity (zero versus non-zero), so a dark frame on a
// light background and a light frame on a dark background both surface as
// components. Regions touching the image border are returned with
// touchesBorder set; callers normally treat them as background.
//
// Regions whose bounding box covers fewer than minBoxArea pixels are skipped
// without being materialised.
func findComponents(binary *image.Gray, minBoxArea int) []component {
	width, height := binary.Rect.Dx(), binary.Rect.Dy()
	if width == 0 || height == 0 {
		return nil
	}
	visited := make([]bool, width*height)
	components := make([]component, 0)

	on := func(x, y int) bool {
		return binary.Pix[y*binary.Stride+x] != 0
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] {
				continue
			}
			c := floodFill(binary, visited, x, y, on(x, y), on)
			if c.bounds.Dx()*c.bounds.Dy() < minBoxArea {
				continue
			}
			components = append(components, c)
		}
	}
	return components
}

// floodFill collects the region containing (startX, startY).
//
// Uses an explicit stack rather than recursion so large regions cannot
// overflow the goroutine stack. Connectivity is 8-way.
func floodFill(binary *image.Gray, visited []bool, startX, startY int, polarity bool, on func(x, y int) bool) component {
	width, height := binary.Rect.Dx(), binary.Rect.Dy()
	c := component{bounds: image.Rect(startX, startY, startX+1, startY+1)}

	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.pixels = append(c.pixels, p)

		if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 {
			c.touchesBorder = true
		}
		c.bounds = c.bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				if visited[ny*width+nx] || on(nx, ny) != polarity {
					continue
				}
				visited[ny*width+nx] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}
	return c
}

// outline returns the pixel-edge extremes of each row of the component: for
// every row the outer corners of its leftmost and rightmost pixels. The hull
// of these points equals the hull of the whole region.
func (c component) outline() []vision.Point {
	rows := c.bounds.Dy()
	minX := make([]int, rows)
	maxX := make([]int, rows)
	for i := range minX {
		minX[i] = math.MaxInt
		maxX[i] = math.MinInt
	}
	for _, p := range c.pixels {
		r := p.Y - c.bounds.Min.Y
		minX[r] = min(minX[r], p.X)
		maxX[r] = max(maxX[r], p.X)
	}

	pts := make([]vision.Point, 0, rows*4)
	for r := 0; r < rows; r++ {
		if minX[r] > maxX[r] {
			continue
		}
		y := float64(c.bounds.Min.Y + r)
		left, right := float64(minX[r]), float64(maxX[r]+1)
		pts = append(pts,
			vision.Point{X: left, Y: y},
			vision.Point{X: left, Y: y + 1},
			vision.Point{X: right, Y: y},
			vision.Point{X: right, Y: y + 1},
		)
	}
	return pts
}

// convexHull returns the convex hull of points using Andrew's monotone chain.
// Collinear points are dropped, so an axis-aligned rectangle yields exactly
// four vertices.
func convexHull(points []vision.Point) []vision.Point {
	if len(points) < 3 {
		return points
	}

	sorted := make([]vision.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b vision.Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]vision.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// polygonArea returns the absolute shoelace area of a closed polygon.
func polygonArea(pts []vision.Point) float64 {
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(s) / 2
}

// polygonPerimeter returns the length of a closed polygon.
func polygonPerimeter(pts []vision.Point) float64 {
	var l float64
	for i := range pts {
		l += pts[i].Dist(pts[(i+1)%len(pts)])
	}
	return l
}

// approxPolygon simplifies a closed polygon with Ramer-Douglas-Peucker.
//
// The polygon is split at the vertex with the smallest x+y and the vertex
// farthest from it, and each half is simplified independently, so the
// result does not depend on where the input sequence starts.
func approxPolygon(pts []vision.Point, epsilon float64) []vision.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}

	start := 0
	for i, p := range pts {
		if p.X+p.Y < pts[start].X+pts[start].Y {
			start = i
		}
	}
	far := start
	var farDist float64
	for i, p := range pts {
		if d := p.Dist(pts[start]); d > farDist {
			far, farDist = i, d
		}
	}
	if far == start {
		return []vision.Point{pts[start]}
	}

	// Walk start..far and far..start around the ring.
	var first, second []vision.Point
	for i := start; ; i = (i + 1) % n {
		first = append(first, pts[i])
		if i == far {
			break
		}
	}
	for i := far; ; i = (i + 1) % n {
		second = append(second, pts[i])
		if i == start {
			break
		}
	}

	a := simplify(first, epsilon)
	b := simplify(second, epsilon)
	// Both halves include the split points; drop the duplicates.
	out := make([]vision.Point, 0, len(a)+len(b)-2)
	out = append(out, a[:len(a)-1]...)
	out = append(out, b[:len(b)-1]...)
	return out
}

// simplify is the open-polyline Ramer-Douglas-Peucker step.
func simplify(pts []vision.Point, epsilon float64) []vision.Point {
	if len(pts) <= 2 {
		return pts
	}
	first, last := pts[0], pts[len(pts)-1]
	idx := 0
	var maxDist float64
	for i := 1; i < len(pts)-1; i++ {
		if d := segmentDistance(pts[i], first, last); d > maxDist {
			idx, maxDist = i, d
		}
	}
	if maxDist <= epsilon {
		return []vision.Point{first, last}
	}
	left := simplify(pts[:idx+1], epsilon)
	right := simplify(pts[idx:], epsilon)
	out := make([]vision.Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b vision.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(vision.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// isConvex reports whether a closed polygon turns consistently in one
// direction.
func isConvex(pts []vision.Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	var sign float64
	for i := 0; i < n; i++ {
		a, b, c := pts[i], pts[(i+1)%n], pts[(i+2)%n]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return sign != 0
}
