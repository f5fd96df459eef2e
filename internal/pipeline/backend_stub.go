//go:build novision

package pipeline

import (
	"image"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/detection"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/tensor"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// stubBackend is used in builds without image processing.
type stubBackend struct{}

// DefaultBackend returns the backend compiled into this build.
func DefaultBackend() Backend {
	return stubBackend{}
}

func (stubBackend) Name() string { return "none" }

func (stubBackend) Preprocess(config.PreprocessingConfig, image.Image) (*imaging.Preprocessed, error) {
	return nil, vision.Errorf(vision.BackendError, "preprocess", "built without vision support")
}

func (stubBackend) Detector(config.DetectionParams) (*detection.Detector, error) {
	return nil, vision.Errorf(vision.BackendError, "detect", "built without vision support")
}

func (stubBackend) Converter(config.PreprocessingConfig) (*tensor.Converter, error) {
	return nil, vision.Errorf(vision.BackendError, "convert", "built without vision support")
}
