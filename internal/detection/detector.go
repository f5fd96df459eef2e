package detection

import (
	"image"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// OutlineFinder returns the pixel-edge outline points of every candidate
// region in a binary image. Regions touching the image border, and regions
// whose bounding box covers fewer than minBoxArea pixels, are left out. The
// points need not be ordered; only their convex hull is used.
type OutlineFinder func(binary *image.Gray, minBoxArea int) [][]vision.Point

// Warper rectifies quad, given in src coordinates, into a width × height
// image.
type Warper func(src image.Image, quad vision.Quadrilateral, width, height int) (*image.NRGBA, error)

// Detector finds the soroban frame and splits it into lanes and cells.
//
// A Detector holds only its parameter snapshot and stage functions and is
// safe for concurrent use.
type Detector struct {
	params   config.DetectionParams
	outlines OutlineFinder
	warp     Warper
}

// Option replaces one of the detector's stages.
type Option func(*Detector)

// WithOutlineFinder replaces the connected-component search used by
// DetectFrame.
func WithOutlineFinder(f OutlineFinder) Option {
	return func(d *Detector) {
		if f != nil {
			d.outlines = f
		}
	}
}

// WithWarper replaces the homography sampler used by WarpFrame.
func WithWarper(w Warper) Option {
	return func(d *Detector) {
		if w != nil {
			d.warp = w
		}
	}
}

// NewDetector returns a Detector using params. Invalid parameters are
// reported as InvalidInput.
func NewDetector(params config.DetectionParams, opts ...Option) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, vision.NewError(vision.InvalidInput, "new detector", err)
	}
	d := &Detector{
		params:   params,
		outlines: componentOutlines,
		warp:     warpHomography,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Params returns the detector's parameter snapshot.
func (d *Detector) Params() config.DetectionParams {
	return d.params
}
