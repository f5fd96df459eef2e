package pipeline

import (
	"image"

	"github.com/ironsheep/soroban-vision/internal/tensor"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// ExtractionResult is the outcome of processing one frame.
//
// When Success is true, TotalCells == len(Lanes)*5 == Tensor.BatchSize and
// the cells in Tensor are ordered lane by lane (left to right), upper bead
// first. When Success is false, Lanes, Tensor and Warped are nil and Err
// says why; Frame is still filled in if the frame was found.
//
// The result owns Tensor; call Release when done with it.
type ExtractionResult struct {
	// FrameID is unique per call, for correlating logs.
	FrameID string `json:"frameId"`

	Success bool  `json:"success"`
	Err     error `json:"-"`

	// Frame corners and bounding box are in source-image coordinates.
	Frame vision.FrameDetectionResult `json:"frame"`

	// Lane bounding boxes are in rectified-image coordinates.
	Lanes []vision.LaneInfo `json:"lanes"`

	// Value is the number shown, most significant digit first. It is set
	// only when the pipeline has a predictor.
	Value string `json:"value,omitempty"`

	Tensor     *tensor.BatchTensor `json:"-"`
	TotalCells int                 `json:"totalCells"`

	// PreprocessingTimeMs is the wall time of the whole call.
	PreprocessingTimeMs float64 `json:"preprocessingTimeMs"`

	// WorkingScale is the resize ratio between the working and source
	// images.
	WorkingScale float64 `json:"workingScale"`

	// Warped is the rectified frame the lanes were cut from.
	Warped *image.NRGBA `json:"-"`
}

// Code returns the error category of the result, None on success.
func (r *ExtractionResult) Code() vision.ErrorCode {
	if r == nil {
		return vision.InvalidInput
	}
	return vision.CodeOf(r.Err)
}

// ErrorMessage returns Err as text, or "" on success.
func (r *ExtractionResult) ErrorMessage() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Release frees the tensor buffer. It is safe to call more than once.
func (r *ExtractionResult) Release() {
	if r == nil {
		return
	}
	r.Tensor.Release()
	r.Tensor = nil
}
