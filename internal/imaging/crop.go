package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Crop extracts a rectangular region from an image.
//
// The region uses image coordinates: (r.Min.X, r.Min.Y) is inclusive and
// (r.Max.X, r.Max.Y) is exclusive. The result is anchored at (0,0).
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, vision.Errorf(vision.InvalidInput, "crop", "region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, vision.Errorf(vision.InvalidInput, "crop", "invalid region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, r), nil
}

// Resize scales img so that its longer edge equals targetLongEdge,
// preserving the aspect ratio. Images whose longer edge is already at or
// below the target are copied unchanged.
//
// The returned scale is the working-to-source ratio: multiply a source
// coordinate by scale to get the coordinate in the returned image.
func Resize(img image.Image, targetLongEdge int) (*image.NRGBA, float64) {
	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	long := max(w, h)
	if targetLongEdge <= 0 || long <= targetLongEdge {
		return imaging.Clone(src), 1
	}

	scale := float64(targetLongEdge) / float64(long)
	if w >= h {
		return imaging.Resize(src, targetLongEdge, 0, imaging.Linear), scale
	}
	return imaging.Resize(src, 0, targetLongEdge, imaging.Linear), scale
}
