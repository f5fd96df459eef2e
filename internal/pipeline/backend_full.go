//go:build !novision

package pipeline

import (
	"image"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/detection"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/tensor"
)

// nativeBackend runs every stage in pure Go.
type nativeBackend struct{}

func (nativeBackend) Name() string { return "native" }

func (nativeBackend) Preprocess(cfg config.PreprocessingConfig, img image.Image) (*imaging.Preprocessed, error) {
	p, err := imaging.NewPreprocessor(cfg)
	if err != nil {
		return nil, err
	}
	return p.Preprocess(img)
}

func (nativeBackend) Detector(params config.DetectionParams) (*detection.Detector, error) {
	return detection.NewDetector(params)
}

func (nativeBackend) Converter(cfg config.PreprocessingConfig) (*tensor.Converter, error) {
	return tensor.NewConverter(cfg)
}
