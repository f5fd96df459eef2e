package detection

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// DetectLaneCount estimates how many digit lanes the rectified frame holds.
//
// The primary estimate comes from a column projection of horizontal
// gradient strength: every rod or lane divider shows up as a peak, and the
// lane count is the number of peaks minus one. When the projection has no
// usable peaks the count falls back to vertical line detection.
//
// A positive ExpectedLaneCount skips detection entirely. The result is always
// clamped to [MinLaneCount, MaxLaneCount].
func (d *Detector) DetectLaneCount(warped image.Image) int {
	if d.params.ExpectedLaneCount > 0 {
		return d.params.ClampLaneCount(d.params.ExpectedLaneCount)
	}
	if warped == nil || warped.Bounds().Empty() {
		return d.params.ClampLaneCount(0)
	}

	gray := imaging.ToGrayscale(warped)
	if n, ok := projectionLaneCount(gray); ok {
		return d.params.ClampLaneCount(n)
	}
	if n, ok := d.lineLaneCount(gray); ok {
		return d.params.ClampLaneCount(n)
	}
	return d.params.ClampLaneCount(0)
}

// columnProjection sums the saturated absolute Sobel-X response down each
// column.
func columnProjection(gray *image.Gray) []float64 {
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	gx, _ := imaging.Gradients(gray)
	proj := make([]float64, width)
	for y := 0; y < height; y++ {
		row := gx[y*width : (y+1)*width]
		for x, v := range row {
			proj[x] += math.Min(math.Abs(v), 255)
		}
	}
	return proj
}

// projectionLaneCount counts peaks in the column projection. ok is false
// when fewer than two peaks are found.
func projectionLaneCount(gray *image.Gray) (int, bool) {
	proj := columnProjection(gray)
	if len(proj) == 0 {
		return 0, false
	}
	peakMax := floats.Max(proj)
	if peakMax <= 0 {
		return 0, false
	}
	peaks := findPeaks(proj, max(1, len(proj)/50), peakMax/3)
	if len(peaks) < 2 {
		return 0, false
	}
	return len(peaks) - 1, true
}

// findPeaks returns the indices that exceed threshold and dominate their
// ±window neighbourhood. On a flat top only the leftmost index counts.
func findPeaks(values []float64, window int, threshold float64) []int {
	peaks := make([]int, 0)
	for i, v := range values {
		if v <= threshold {
			continue
		}
		isMax := true
		for j := max(0, i-window); j <= min(len(values)-1, i+window) && isMax; j++ {
			switch {
			case j < i && values[j] >= v:
				isMax = false
			case j > i && values[j] > v:
				isMax = false
			}
		}
		if isMax {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// ExtractLanes splits the rectified frame into laneCount vertical strips.
//
// Strips have equal width except the last, which also takes the remainder.
// Lanes are returned left to right; DigitIndex counts from the rightmost
// lane, so the leftmost lane holds the most significant digit.
func (d *Detector) ExtractLanes(warped image.Image, laneCount int) ([]vision.LaneInfo, error) {
	const op = "extract lanes"
	if warped == nil || warped.Bounds().Empty() {
		return nil, vision.Errorf(vision.LaneExtractionFailed, op, "empty image")
	}
	width, height := warped.Bounds().Dx(), warped.Bounds().Dy()
	if laneCount < 1 || laneCount > width {
		return nil, vision.Errorf(vision.LaneExtractionFailed, op, "lane count %d invalid for width %d", laneCount, width)
	}

	laneWidth := width / laneCount
	lanes := make([]vision.LaneInfo, laneCount)
	for i := range lanes {
		x := i * laneWidth
		w := laneWidth
		if i == laneCount-1 {
			w = width - x
		}
		lanes[i] = vision.LaneInfo{
			BoundingBox: vision.Rect{X: float64(x), Y: 0, Width: float64(w), Height: float64(height)},
			DigitIndex:  laneCount - 1 - i,
		}
	}
	return lanes, nil
}

// CropLane cuts the lane described by info out of the rectified frame.
func (d *Detector) CropLane(warped image.Image, info vision.LaneInfo) (*image.NRGBA, error) {
	if warped == nil {
		return nil, vision.Errorf(vision.LaneExtractionFailed, "crop lane", "empty image")
	}
	r := info.BoundingBox.Image().Add(warped.Bounds().Min)
	lane, err := imaging.Crop(warped, r)
	if err != nil {
		return nil, vision.NewError(vision.LaneExtractionFailed, "crop lane", err)
	}
	return lane, nil
}

// ExtractCells cuts one lane image into its five bead cells: the upper bead
// cell followed by the four lower bead cells, top to bottom.
//
// The lane height is divided by the UpperBeadRatio : DividerRatio :
// LowerBeadsRatio weights. The divider (beam) band is discarded and the
// lower band is split into four equal cells.
func (d *Detector) ExtractCells(lane image.Image, info vision.LaneInfo) ([vision.CellsPerLane]*image.NRGBA, error) {
	const op = "extract cells"
	var cells [vision.CellsPerLane]*image.NRGBA
	if lane == nil || lane.Bounds().Empty() {
		return cells, vision.Errorf(vision.LaneExtractionFailed, op, "lane %d is empty", info.DigitIndex)
	}

	b := lane.Bounds()
	width, height := b.Dx(), b.Dy()
	total := d.params.UpperBeadRatio + d.params.DividerRatio + d.params.LowerBeadsRatio
	upperHeight := int(float64(height) * d.params.UpperBeadRatio / total)
	dividerHeight := int(float64(height) * d.params.DividerRatio / total)
	lowerHeight := int(float64(height) * d.params.LowerBeadsRatio / total)
	cellHeight := lowerHeight / vision.LowerBeadCount
	if upperHeight < 1 || cellHeight < 1 {
		return cells, vision.Errorf(vision.LaneExtractionFailed, op, "lane %d is too short (%d px) to split", info.DigitIndex, height)
	}

	regions := [vision.CellsPerLane]image.Rectangle{image.Rect(0, 0, width, upperHeight)}
	lowerStart := upperHeight + dividerHeight
	for i := 0; i < vision.LowerBeadCount; i++ {
		y := lowerStart + i*cellHeight
		regions[1+i] = image.Rect(0, y, width, y+cellHeight)
	}

	for i, r := range regions {
		cell, err := imaging.Crop(lane, r.Add(b.Min))
		if err != nil {
			return [vision.CellsPerLane]*image.NRGBA{}, vision.NewError(vision.LaneExtractionFailed, op, err)
		}
		cells[i] = cell
	}
	return cells, nil
}
