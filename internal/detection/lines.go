package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/soroban-vision/internal/imaging"
)

const (
	// verticalTolerance is how far from vertical, in radians, a line may
	// lean and still count as a lane boundary.
	verticalTolerance = 10 * math.Pi / 180

	// lineMergeDistance merges boundary lines closer than this many pixels.
	lineMergeDistance = 10

	// maxLinePeaks bounds how many accumulator peaks are traced.
	maxLinePeaks = 64

	laneCannyLow  = 50
	laneCannyHigh = 150
)

// Segment is a detected line segment in image coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Length returns the euclidean length of the segment.
func (s Segment) Length() float64 {
	return math.Hypot(float64(s.X2-s.X1), float64(s.Y2-s.Y1))
}

// lineLaneCount counts lanes from vertical boundary lines. ok is false when
// fewer than two boundaries are found.
func (d *Detector) lineLaneCount(gray *image.Gray) (int, bool) {
	edges := imaging.DetectEdges(gray, laneCannyLow, laneCannyHigh)
	positions := d.DetectVerticalLines(edges)
	if len(positions) < 2 {
		return 0, false
	}
	return len(positions) - 1, true
}

// DetectVerticalLines returns the x positions of near-vertical lines in an
// edge map, sorted left to right with lines closer than ten pixels merged.
//
// Lines are found with a Hough transform restricted to angles within ten
// degrees of vertical, using the HoughRho, HoughTheta and HoughThreshold
// parameters. A line is kept only when it contains a segment, allowing gaps
// up to HoughMaxGap, at least as long as both HoughMinLength and
// LaneHeightRatio × the image height.
func (d *Detector) DetectVerticalLines(edges *image.Gray) []int {
	if edges == nil || edges.Rect.Empty() {
		return nil
	}
	e := anchorGray(edges)
	width, height := e.Rect.Dx(), e.Rect.Dy()
	minLength := math.Max(d.params.HoughMinLength, d.params.LaneHeightRatio*float64(height))

	segments := d.houghVertical(e, minLength)
	positions := make([]int, 0, len(segments))
	for _, s := range segments {
		dx := math.Abs(float64(s.X2 - s.X1))
		dy := math.Abs(float64(s.Y2 - s.Y1))
		if math.Atan2(dy, dx) <= math.Pi/2-verticalTolerance {
			continue
		}
		x := (s.X1 + s.X2) / 2
		if x >= 0 && x < width {
			positions = append(positions, x)
		}
	}

	sort.Ints(positions)
	merged := make([]int, 0, len(positions))
	for _, x := range positions {
		if len(merged) > 0 && x-merged[len(merged)-1] < lineMergeDistance {
			continue
		}
		merged = append(merged, x)
	}
	return merged
}

// houghVertical votes edge pixels into a (rho, theta) accumulator over the
// near-vertical angle band and traces the strongest peaks back into
// segments.
func (d *Detector) houghVertical(edges *image.Gray, minLength float64) []Segment {
	width, height := edges.Rect.Dx(), edges.Rect.Dy()
	rhoStep := d.params.HoughRho
	thetaStep := d.params.HoughTheta

	numAngles := int(2*verticalTolerance/thetaStep) + 1
	thetas := make([]float64, numAngles)
	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for t := range thetas {
		thetas[t] = -verticalTolerance + float64(t)*thetaStep
		cosT[t] = math.Cos(thetas[t])
		sinT[t] = math.Sin(thetas[t])
	}

	maxDist := math.Hypot(float64(width), float64(height))
	numRho := int(2*maxDist/rhoStep) + 1
	accumulator := make([][]int, numRho)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	// Vote in Hough space
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.Pix[y*edges.Stride+x] == 0 {
				continue
			}
			for t := range thetas {
				rho := float64(x)*cosT[t] + float64(y)*sinT[t]
				idx := int(math.Round((rho + maxDist) / rhoStep))
				if idx >= 0 && idx < numRho {
					accumulator[idx][t]++
				}
			}
		}
	}

	type peak struct {
		rho   int
		theta int
		votes int
	}
	peaks := make([]peak, 0)
	for r := 0; r < numRho; r++ {
		for t := 0; t < numAngles; t++ {
			votes := accumulator[r][t]
			if votes < d.params.HoughThreshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr, nt := r+dr, t+dt
					if nr < 0 || nr >= numRho || nt < 0 || nt >= numAngles {
						continue
					}
					n := accumulator[nr][nt]
					// Ties go to the lower index so plateaus yield one peak.
					if n > votes || (n == votes && (nr < r || (nr == r && nt < t))) {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: r, theta: t, votes: votes})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})
	if len(peaks) > maxLinePeaks {
		peaks = peaks[:maxLinePeaks]
	}

	segments := make([]Segment, 0, len(peaks))
	for _, p := range peaks {
		rho := float64(p.rho)*rhoStep - maxDist
		seg, ok := traceVertical(edges, rho, cosT[p.theta], sinT[p.theta], d.params.HoughMaxGap)
		if ok && seg.Length() >= minLength {
			segments = append(segments, seg)
		}
	}
	return segments
}

// traceVertical walks down the line x·cos + y·sin = rho and returns its
// longest run of edge pixels, bridging gaps of up to maxGap rows.
func traceVertical(edges *image.Gray, rho, cosA, sinA, maxGap float64) (Segment, bool) {
	width, height := edges.Rect.Dx(), edges.Rect.Dy()
	if cosA == 0 {
		return Segment{}, false
	}

	var best, cur Segment
	var bestLen float64
	inRun := false
	gap := 0
	lastX, lastY := 0, 0

	for y := 0; y < height; y++ {
		x := int(math.Round((rho - float64(y)*sinA) / cosA))
		hit := -1
		for dx := -1; dx <= 1; dx++ {
			px := x + dx
			if px >= 0 && px < width && edges.Pix[y*edges.Stride+px] != 0 {
				hit = px
				break
			}
		}

		if hit >= 0 {
			if !inRun {
				cur = Segment{X1: hit, Y1: y}
				inRun = true
			}
			lastX, lastY = hit, y
			gap = 0
			continue
		}
		if !inRun {
			continue
		}
		gap++
		if float64(gap) > maxGap {
			cur.X2, cur.Y2 = lastX, lastY
			if l := cur.Length(); l > bestLen {
				best, bestLen = cur, l
			}
			inRun = false
		}
	}
	if inRun {
		cur.X2, cur.Y2 = lastX, lastY
		if l := cur.Length(); l > bestLen {
			best, bestLen = cur, l
		}
	}
	return best, bestLen > 0
}
