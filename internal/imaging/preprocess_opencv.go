//go:build gocv

package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// PreprocessOpenCV runs the Preprocess chain with blur, bilateral filter,
// CLAHE, adaptive threshold, morphology and Canny done by OpenCV. Resize
// and white balance stay in Go. Outputs match Preprocess in shape and
// meaning, not bit for bit.
func (p *Preprocessor) PreprocessOpenCV(img image.Image) (out *Preprocessed, err error) {
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

	colour, err := gocv.ImageToMatRGB(working)
	if err != nil {
		return nil, vision.NewError(vision.BackendError, op, err)
	}
	defer func() { colour.Close() }()

	if cfg.EnableGaussianBlur {
		k := cfg.GaussianKernelSize
		gocv.GaussianBlur(colour, &colour, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	}
	if cfg.EnableBilateralFilter {
		filtered := gocv.NewMat()
		gocv.BilateralFilter(colour, &filtered, cfg.BilateralD, cfg.BilateralSigmaColor, cfg.BilateralSigmaSpace)
		colour.Close()
		colour = filtered
	}

	gray := gocv.NewMat()
	defer func() { gray.Close() }()
	gocv.CvtColor(colour, &gray, gocv.ColorBGRToGray)
	if cfg.EnableCLAHE {
		clahe := gocv.NewCLAHEWithParams(cfg.CLAHEClipLimit, image.Pt(cfg.CLAHETileSize, cfg.CLAHETileSize))
		equalized := gocv.NewMat()
		clahe.Apply(gray, &equalized)
		clahe.Close()
		gray.Close()
		gray = equalized
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(gray, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
		cfg.AdaptiveBlockSize, float32(cfg.AdaptiveC))
	if k := cfg.MorphKernelSize; k/2 >= 1 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
		gocv.MorphologyEx(binary, &binary, gocv.MorphClose, kernel)
		gocv.MorphologyEx(binary, &binary, gocv.MorphOpen, kernel)
		kernel.Close()
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(cfg.CannyThreshold1), float32(cfg.CannyThreshold2))

	normalized, err := matToNRGBA(colour)
	if err != nil {
		return nil, vision.NewError(vision.BackendError, op, err)
	}
	enhanced, err := matToGray(gray)
	if err != nil {
		return nil, vision.NewError(vision.BackendError, op, err)
	}
	bin, err := matToGray(binary)
	if err != nil {
		return nil, vision.NewError(vision.BackendError, op, err)
	}
	edgeMap, err := matToGray(edges)
	if err != nil {
		return nil, vision.NewError(vision.BackendError, op, err)
	}

	return &Preprocessed{
		Normalized: normalized,
		Enhanced:   enhanced,
		Binary:     bin,
		Edges:      edgeMap,
		Scale:      scale,
	}, nil
}

func matToNRGBA(m gocv.Mat) (*image.NRGBA, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, err
	}
	return asNRGBA(img), nil
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, err
	}
	if g, ok := img.(*image.Gray); ok {
		return anchored(g), nil
	}
	return ToGrayscale(img), nil
}
