package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// AdaptiveThreshold binarises a luminance image against a Gaussian-weighted
// local mean.
//
// A pixel becomes 255 when its value exceeds the mean of its blockSize x
// blockSize neighbourhood minus c, and 0 otherwise. Dark strokes that stand
// out from their surroundings therefore come out black, while flat regions
// of any brightness come out white.
func AdaptiveThreshold(gray *image.Gray, blockSize int, c float64) *image.Gray {
	src := anchored(gray)
	mean := gaussianGray(src, blockSize)

	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride:]
		m := mean.Pix[y*mean.Stride:]
		d := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			if float64(s[x]) > float64(m[x])-c {
				d[x] = 255
			}
		}
	}
	return out
}

// MorphologyClean removes speckle from a binary image with a morphological
// close (dilate then erode) followed by an open (erode then dilate), using a
// ksize x ksize square structuring element.
func MorphologyClean(binary *image.Gray, ksize int) *image.Gray {
	radius := float64(ksize / 2)
	if radius < 1 {
		return ToGrayscale(binary)
	}
	closed := effect.Erode(effect.Dilate(binary, radius), radius)
	opened := effect.Dilate(effect.Erode(closed, radius), radius)
	return rgbaRedToGray(opened)
}
