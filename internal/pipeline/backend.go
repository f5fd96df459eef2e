package pipeline

import (
	"image"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/detection"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/tensor"
)

// Backend builds the stage processors for one configuration snapshot.
type Backend interface {
	// Name identifies the implementation in logs.
	Name() string

	// Preprocess normalises img and derives its binary and edge maps.
	Preprocess(cfg config.PreprocessingConfig, img image.Image) (*imaging.Preprocessed, error)

	// Detector returns a frame and lane detector for params.
	Detector(params config.DetectionParams) (*detection.Detector, error)

	// Converter returns a tensor converter for cfg.
	Converter(cfg config.PreprocessingConfig) (*tensor.Converter, error)
}
