package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Preprocessed holds the derived images of one frame.
type Preprocessed struct {
	// Normalized is the resized, white-balanced and denoised colour image.
	Normalized *image.NRGBA

	// Enhanced is the contrast-enhanced luminance image the binary and edge
	// maps were computed from.
	Enhanced *image.Gray

	// Binary is the cleaned adaptive-threshold map (0 or 255).
	Binary *image.Gray

	// Edges is the Canny edge map (255 on edges).
	Edges *image.Gray

	// Scale is the working-to-source ratio applied by the resize step.
	Scale float64
}

// Preprocessor runs the normalisation chain with a fixed configuration.
type Preprocessor struct {
	cfg config.PreprocessingConfig
}

// NewPreprocessor validates cfg and returns a Preprocessor bound to it.
func NewPreprocessor(cfg config.PreprocessingConfig) (*Preprocessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, vision.NewError(vision.InvalidInput, "new preprocessor", err)
	}
	return &Preprocessor{cfg: cfg}, nil
}

// Config returns the configuration snapshot the Preprocessor uses.
func (p *Preprocessor) Config() config.PreprocessingConfig {
	return p.cfg
}

// Preprocess normalises a frame.
//
// The steps run in a fixed order:
//
//  1. Resize so the longer edge is at most TargetLongEdge
//  2. Gray-world white balance (if enabled)
//  3. Gaussian blur (if enabled)
//  4. Bilateral filter (if enabled)
//  5. Grayscale conversion
//  6. CLAHE (if enabled)
//  7. Adaptive threshold and morphological clean-up, giving Binary
//  8. Canny on the step 6 image, giving Edges
//
// Normalized is the colour image after step 4. The function is pure: the
// same input and configuration always produce identical outputs. On error no
// partial result is returned.
func (p *Preprocessor) Preprocess(img image.Image) (out *Preprocessed, err error) {
	const op = "preprocess"

	if img == nil || img.Bounds().Empty() {
		return nil, vision.Errorf(vision.InvalidInput, op, "empty image")
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = vision.NewError(vision.BackendError, op, fmt.Errorf("panic: %v", r))
		}
	}()

	cfg := p.cfg
	working, scale := Resize(img, cfg.TargetLongEdge)

	if cfg.EnableWhiteBalance {
		working = ApplyWhiteBalance(working)
	}
	if cfg.EnableGaussianBlur {
		working = ApplyGaussianBlur(working, cfg.GaussianKernelSize)
	}
	if cfg.EnableBilateralFilter {
		working = ApplyBilateralFilter(working, cfg.BilateralD, cfg.BilateralSigmaColor, cfg.BilateralSigmaSpace)
	}

	enhanced := ToGrayscale(working)
	if cfg.EnableCLAHE {
		enhanced = ApplyCLAHE(enhanced, cfg.CLAHEClipLimit, cfg.CLAHETileSize)
	}

	binary := AdaptiveThreshold(enhanced, cfg.AdaptiveBlockSize, cfg.AdaptiveC)
	binary = MorphologyClean(binary, cfg.MorphKernelSize)

	edges := DetectEdges(enhanced, cfg.CannyThreshold1, cfg.CannyThreshold2)

	return &Preprocessed{
		Normalized: working,
		Enhanced:   enhanced,
		Binary:     binary,
		Edges:      edges,
		Scale:      scale,
	}, nil
}
