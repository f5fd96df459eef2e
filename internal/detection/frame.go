package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// epsilonSteps are the multipliers tried on the approximation epsilon until
// a candidate outline reduces to exactly four vertices.
var epsilonSteps = []float64{1, 1.5, 2}

// frameCandidate is a component that passed every frame filter.
type frameCandidate struct {
	quad      [4]vision.Point
	hullArea  float64
	areaRatio float64
	rectFill  float64
}

func (c frameCandidate) score() float64 {
	return c.hullArea * c.rectFill
}

// DetectFrame locates the soroban frame in a preprocessed image.
//
// Parameters:
//   - normalized: The working-resolution colour image; only its bounds are
//     used, so it may be nil when binary is given.
//   - binary: The adaptive-threshold image. Required.
//   - edges: The Canny edge map. Optional; when present the confidence is
//     weighted by how much of the outline is backed by edges.
//
// Returns a zero-value result when no candidate survives the filters. Not
// finding a frame is a normal outcome and is not reported as an error.
//
// # Algorithm
//
//  1. Components: 8-connected regions of both polarities; regions touching
//     the image border are background.
//  2. Hull: convex hull of each region's row extremes, filtered by
//     hull area / image area within [MinAreaRatio, MaxAreaRatio].
//  3. Approximation: Ramer-Douglas-Peucker with epsilon
//     ContourApproxEpsilon × hull perimeter, relaxed up to 2× until exactly
//     four convex vertices remain.
//  4. Aspect: bounding-box width / height within [MinAspectRatio,
//     MaxAspectRatio].
//  5. Selection: the candidate with the largest hull area × rectangularity
//     wins, where rectangularity is quad area / hull area.
//
// Confidence is min(1, 5 × areaRatio) × rectangularity, scaled into
// [0.5, 1] by edge support when an edge map is supplied.
func (d *Detector) DetectFrame(normalized image.Image, binary, edges *image.Gray) vision.FrameDetectionResult {
	if binary == nil || binary.Rect.Empty() {
		return vision.FrameDetectionResult{}
	}
	if normalized != nil && normalized.Bounds().Size() != binary.Rect.Size() {
		return vision.FrameDetectionResult{}
	}
	bin := anchorGray(binary)
	width, height := bin.Rect.Dx(), bin.Rect.Dy()
	imageArea := float64(width * height)

	minBox := int(d.params.MinAreaRatio * imageArea)
	var best *frameCandidate
	for _, outline := range d.outlines(bin, minBox) {
		cand, ok := d.evaluate(outline, imageArea)
		if !ok {
			continue
		}
		if best == nil || cand.score() > best.score() {
			best = &cand
		}
	}
	if best == nil {
		return vision.FrameDetectionResult{}
	}

	quad := OrderCorners(best.quad)
	confidence := math.Min(1, best.areaRatio*5) * best.rectFill
	if edges != nil {
		confidence *= 0.5 + 0.5*edgeSupport(anchorGray(edges), quad)
	}

	return vision.FrameDetectionResult{
		Detected:    true,
		Corners:     quad,
		BoundingBox: quad.Bounds(),
		Confidence:  float32(math.Max(0, math.Min(1, confidence))),
	}
}

// componentOutlines is the default OutlineFinder: 8-connected regions of
// both polarities.
func componentOutlines(bin *image.Gray, minBoxArea int) [][]vision.Point {
	var out [][]vision.Point
	for _, c := range findComponents(bin, minBoxArea) {
		if !c.touchesBorder {
			out = append(out, c.outline())
		}
	}
	return out
}

// evaluate applies the area, shape and aspect filters to one outline.
func (d *Detector) evaluate(outline []vision.Point, imageArea float64) (frameCandidate, bool) {
	hull := convexHull(outline)
	if len(hull) < 4 {
		return frameCandidate{}, false
	}
	hullArea := polygonArea(hull)
	ratio := hullArea / imageArea
	if ratio < d.params.MinAreaRatio || ratio > d.params.MaxAreaRatio {
		return frameCandidate{}, false
	}

	perimeter := polygonPerimeter(hull)
	var approx []vision.Point
	for _, step := range epsilonSteps {
		approx = approxPolygon(hull, d.params.ContourApproxEpsilon*step*perimeter)
		if len(approx) <= 4 {
			break
		}
	}
	if len(approx) != 4 || !isConvex(approx) {
		return frameCandidate{}, false
	}

	box := boundingBox(approx)
	if box.Height <= 0 {
		return frameCandidate{}, false
	}
	aspect := box.Width / box.Height
	if aspect < d.params.MinAspectRatio || aspect > d.params.MaxAspectRatio {
		return frameCandidate{}, false
	}

	quadArea := polygonArea(approx)
	return frameCandidate{
		quad:      [4]vision.Point{approx[0], approx[1], approx[2], approx[3]},
		hullArea:  hullArea,
		areaRatio: ratio,
		rectFill:  math.Min(1, quadArea/hullArea),
	}, true
}

func boundingBox(pts []vision.Point) vision.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return vision.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// edgeSupport returns the fraction of outline samples with an edge pixel
// within two pixels.
func edgeSupport(edges *image.Gray, q vision.Quadrilateral) float64 {
	const (
		step   = 4.0
		radius = 2
	)
	width, height := edges.Rect.Dx(), edges.Rect.Dy()
	pts := q.Points()

	var samples, hits int
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		n := max(1, int(a.Dist(b)/step))
		for s := 0; s < n; s++ {
			t := float64(s) / float64(n)
			x := int(math.Round(a.X + t*(b.X-a.X)))
			y := int(math.Round(a.Y + t*(b.Y-a.Y)))
			samples++
			if hasEdgeNear(edges, x, y, radius, width, height) {
				hits++
			}
		}
	}
	if samples == 0 {
		return 0
	}
	return float64(hits) / float64(samples)
}

func hasEdgeNear(edges *image.Gray, x, y, radius, width, height int) bool {
	for dy := -radius; dy <= radius; dy++ {
		py := y + dy
		if py < 0 || py >= height {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			px := x + dx
			if px < 0 || px >= width {
				continue
			}
			if edges.Pix[py*edges.Stride+px] != 0 {
				return true
			}
		}
	}
	return false
}

// OrderCorners arranges four points as TopLeft, TopRight, BottomRight,
// BottomLeft.
//
// Points are sorted clockwise (as seen on screen) by their angle around the
// centroid, then rotated so the point with the smallest x+y comes first.
// The result does not depend on the input order or winding.
func OrderCorners(pts [4]vision.Point) vision.Quadrilateral {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= 4
	cy /= 4

	sorted := pts
	angle := func(p vision.Point) float64 { return math.Atan2(p.Y-cy, p.X-cx) }
	sort.SliceStable(sorted[:], func(i, j int) bool {
		ai, aj := angle(sorted[i]), angle(sorted[j])
		if ai != aj {
			return ai < aj
		}
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	first := 0
	for i := 1; i < 4; i++ {
		p, f := sorted[i], sorted[first]
		switch {
		case p.X+p.Y < f.X+f.Y:
			first = i
		case p.X+p.Y == f.X+f.Y && (p.Y < f.Y || (p.Y == f.Y && p.X < f.X)):
			first = i
		}
	}

	return vision.Quadrilateral{
		TopLeft:     sorted[first],
		TopRight:    sorted[(first+1)%4],
		BottomRight: sorted[(first+2)%4],
		BottomLeft:  sorted[(first+3)%4],
	}
}

// anchorGray returns g with its bounds starting at (0,0), sharing pixels.
func anchorGray(g *image.Gray) *image.Gray {
	if g.Rect.Min == (image.Point{}) {
		return g
	}
	return &image.Gray{
		Pix:    g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y):],
		Stride: g.Stride,
		Rect:   image.Rect(0, 0, g.Rect.Dx(), g.Rect.Dy()),
	}
}
