package bridge

import (
	"github.com/ironsheep/soroban-vision/internal/pipeline"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Lane is the flat per-lane record.
type Lane struct {
	BoundingBox vision.Rect
	DigitIndex  int32
	Value       int32
	Confidence  float32
}

// Result is the flat extraction record.
type Result struct {
	Success bool
	Frame   vision.FrameDetectionResult

	Lanes     []Lane
	LaneCount int32

	// Value is the composed number when the pipeline has a predictor.
	Value string

	// TensorData is N x C x H x W, CHW per cell. It is a private copy: it
	// stays valid after FreeResult and is never reused by later frames.
	TensorData      []float32
	TensorBatchSize int32
	TensorChannels  int32
	TensorHeight    int32
	TensorWidth     int32

	TotalCells          int32
	PreprocessingTimeMs float64

	ErrorCode    vision.ErrorCode
	ErrorMessage string
}

// fill copies res into r and releases res.
func (r *Result) fill(res *pipeline.ExtractionResult) {
	defer res.Release()
	r.Success = res.Success
	r.Frame = res.Frame
	r.TotalCells = int32(res.TotalCells)
	r.PreprocessingTimeMs = res.PreprocessingTimeMs
	r.ErrorCode = res.Code()
	r.ErrorMessage = res.ErrorMessage()
	r.Value = res.Value

	if len(res.Lanes) > 0 {
		r.Lanes = make([]Lane, len(res.Lanes))
		for i, l := range res.Lanes {
			r.Lanes[i] = Lane{
				BoundingBox: l.BoundingBox,
				DigitIndex:  int32(l.DigitIndex),
				Value:       int32(l.Value),
				Confidence:  l.Confidence,
			}
		}
		r.LaneCount = int32(len(res.Lanes))
	}

	if t := res.Tensor; t != nil {
		r.TensorData = append([]float32(nil), t.Data()...)
		r.TensorBatchSize = int32(t.BatchSize)
		r.TensorChannels = int32(t.Channels)
		r.TensorHeight = int32(t.Height)
		r.TensorWidth = int32(t.Width)
	}
}

// FreeResult clears r. It is safe on a nil, zero or already freed Result.
func FreeResult(r *Result) {
	if r == nil {
		return
	}
	*r = Result{}
}
