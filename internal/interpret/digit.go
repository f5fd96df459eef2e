package interpret

import (
	"sort"
	"strings"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// emptyPenalty scales the lane confidence once per empty cell.
const emptyPenalty = 0.5

// DigitValue returns the value 0-9 shown by one lane.
func DigitValue(upper vision.CellPrediction, lower [vision.LowerBeadCount]vision.CellPrediction) int {
	v := 0
	if upper.State == vision.CellLower {
		v += 5
	}
	for _, b := range lower {
		if b.State == vision.CellUpper {
			v++
		}
	}
	return v
}

// laneConfidence is the mean cell confidence, halved for every empty cell.
func laneConfidence(upper vision.CellPrediction, lower [vision.LowerBeadCount]vision.CellPrediction) float32 {
	sum := upper.Confidence
	scale := float32(1)
	if upper.State == vision.CellEmpty {
		scale *= emptyPenalty
	}
	for _, b := range lower {
		sum += b.Confidence
		if b.State == vision.CellEmpty {
			scale *= emptyPenalty
		}
	}
	return sum / vision.CellsPerLane * scale
}

// ApplyPredictions returns copies of lanes with beads, value and confidence
// filled in. preds must hold CellsPerLane entries per lane, lane by lane,
// upper bead first.
func ApplyPredictions(lanes []vision.LaneInfo, preds []vision.CellPrediction) ([]vision.LaneInfo, error) {
	if len(preds) != len(lanes)*vision.CellsPerLane {
		return nil, vision.Errorf(vision.InvalidInput, "apply predictions", "got %d predictions for %d lanes", len(preds), len(lanes))
	}

	out := make([]vision.LaneInfo, len(lanes))
	for i, lane := range lanes {
		cells := preds[i*vision.CellsPerLane : (i+1)*vision.CellsPerLane]
		lane.UpperBead = cells[0]
		copy(lane.LowerBeads[:], cells[1:])
		lane.Value = DigitValue(lane.UpperBead, lane.LowerBeads)
		lane.Confidence = laneConfidence(lane.UpperBead, lane.LowerBeads)
		out[i] = lane
	}
	return out, nil
}

// Compose returns the number shown across lanes as a decimal string, most
// significant digit first, without leading zeros. DigitIndex values must
// cover 0..len(lanes)-1 exactly once.
func Compose(lanes []vision.LaneInfo) (string, error) {
	const op = "compose"
	if len(lanes) == 0 {
		return "", vision.Errorf(vision.InvalidInput, op, "no lanes")
	}

	ordered := make([]vision.LaneInfo, len(lanes))
	copy(ordered, lanes)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].DigitIndex > ordered[j].DigitIndex
	})

	var sb strings.Builder
	for i, lane := range ordered {
		if lane.DigitIndex != len(ordered)-1-i {
			return "", vision.Errorf(vision.InvalidInput, op, "digit indexes are not 0..%d", len(ordered)-1)
		}
		if lane.Value < 0 || lane.Value > 9 {
			return "", vision.Errorf(vision.InvalidInput, op, "lane %d has value %d", lane.DigitIndex, lane.Value)
		}
		sb.WriteByte(byte('0' + lane.Value))
	}

	s := strings.TrimLeft(sb.String(), "0")
	if s == "" {
		s = "0"
	}
	return s, nil
}

// MinConfidence returns the lowest lane confidence, or 0 for no lanes.
func MinConfidence(lanes []vision.LaneInfo) float32 {
	if len(lanes) == 0 {
		return 0
	}
	m := lanes[0].Confidence
	for _, l := range lanes[1:] {
		m = min(m, l.Confidence)
	}
	return m
}
