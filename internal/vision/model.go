package vision

import (
	"fmt"
	"math"
)

// CellState is the classification of one bead cell.
type CellState int

const (
	// CellUpper means the bead sits away from the beam.
	CellUpper CellState = iota
	// CellLower means the bead is pushed toward the beam.
	CellLower
	// CellEmpty means no bead was recognised in the cell.
	CellEmpty
)

// NumCellStates is the number of CellState classes.
const NumCellStates = 3

// String returns the lower-case name of the state.
func (s CellState) String() string {
	switch s {
	case CellUpper:
		return "upper"
	case CellLower:
		return "lower"
	case CellEmpty:
		return "empty"
	default:
		return fmt.Sprintf("CellState(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s CellState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// probabilityTolerance bounds how far a probability vector may sum away from 1.
const probabilityTolerance = 1e-3

// CellPrediction is a classified cell with its class probabilities.
type CellPrediction struct {
	State         CellState              `json:"state"`
	Probabilities [NumCellStates]float32 `json:"probabilities"`
	Confidence    float32                `json:"confidence"`
}

// NewCellPrediction builds a prediction from class probabilities ordered as
// [upper, lower, empty]. The state is the argmax and the confidence is the
// maximum probability. Ties resolve to the lower index.
func NewCellPrediction(probs []float32) (CellPrediction, error) {
	if len(probs) != NumCellStates {
		return CellPrediction{}, Errorf(InvalidInput, "cell prediction", "expected %d probabilities, got %d", NumCellStates, len(probs))
	}
	var sum float64
	best := 0
	for i, p := range probs {
		if p < 0 || math.IsNaN(float64(p)) {
			return CellPrediction{}, Errorf(InvalidInput, "cell prediction", "invalid probability %v at %d", p, i)
		}
		sum += float64(p)
		if p > probs[best] {
			best = i
		}
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return CellPrediction{}, Errorf(InvalidInput, "cell prediction", "probabilities sum to %.4f", sum)
	}
	var pred CellPrediction
	copy(pred.Probabilities[:], probs)
	pred.State = CellState(best)
	pred.Confidence = probs[best]
	return pred, nil
}

// LowerBeadCount is the number of lower (one-unit) beads per lane.
const LowerBeadCount = 4

// CellsPerLane is the number of cells cut from each lane: one upper bead cell
// followed by the lower bead cells.
const CellsPerLane = 1 + LowerBeadCount

// LaneInfo describes one digit column of the soroban.
//
// DigitIndex counts from the rightmost lane, starting at 0. UpperBead and
// LowerBeads are filled in only once predictions are applied; until then
// Value is 0 and Confidence is 0.
type LaneInfo struct {
	BoundingBox Rect                           `json:"boundingBox"`
	DigitIndex  int                            `json:"digitIndex"`
	UpperBead   CellPrediction                 `json:"upperBead"`
	LowerBeads  [LowerBeadCount]CellPrediction `json:"lowerBeads"`
	Value       int                            `json:"value"`
	Confidence  float32                        `json:"confidence"`
}

// FrameDetectionResult is the outcome of frame detection. When Detected is
// false every other field holds its zero value.
type FrameDetectionResult struct {
	Detected    bool          `json:"detected"`
	Corners     Quadrilateral `json:"corners"`
	BoundingBox Rect          `json:"boundingBox"`
	Confidence  float32       `json:"confidence"`
	LaneCount   int           `json:"laneCount"`
}
