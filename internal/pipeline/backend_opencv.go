//go:build gocv && !novision

package pipeline

import (
	"image"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/detection"
	"github.com/ironsheep/soroban-vision/internal/imaging"
)

// opencvBackend runs preprocessing, contour search and rectification
// through OpenCV. Lane, cell and tensor stages are shared with the native
// backend.
type opencvBackend struct{ nativeBackend }

// DefaultBackend returns the backend compiled into this build.
func DefaultBackend() Backend {
	return opencvBackend{}
}

func (opencvBackend) Name() string { return "opencv" }

func (opencvBackend) Preprocess(cfg config.PreprocessingConfig, img image.Image) (*imaging.Preprocessed, error) {
	p, err := imaging.NewPreprocessor(cfg)
	if err != nil {
		return nil, err
	}
	return p.PreprocessOpenCV(img)
}

func (opencvBackend) Detector(params config.DetectionParams) (*detection.Detector, error) {
	return detection.NewDetector(params, detection.OpenCVOptions()...)
}
