package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// kernelRadius converts an odd kernel size to the radius used by bild.
func kernelRadius(ksize int) float64 {
	return float64((ksize - 1) / 2)
}

// ApplyGaussianBlur smooths a colour image with a ksize x ksize Gaussian.
// A kernel size of 1 or less returns an unmodified copy.
func ApplyGaussianBlur(img image.Image, ksize int) *image.NRGBA {
	if ksize <= 1 {
		return cloneNRGBA(img)
	}
	return rgbaToOpaqueNRGBA(blur.Gaussian(img, kernelRadius(ksize)))
}

// gaussianGray smooths a luminance image with a ksize x ksize Gaussian.
func gaussianGray(g *image.Gray, ksize int) *image.Gray {
	if ksize <= 1 {
		return ToGrayscale(g)
	}
	return rgbaRedToGray(blur.Gaussian(g, kernelRadius(ksize)))
}

// ApplyBilateralFilter smooths a colour image while keeping strong edges.
//
// Parameters:
//   - d: Diameter of the pixel neighbourhood.
//   - sigmaColor: Spread of the range kernel over the summed absolute
//     channel difference. Larger values mix more dissimilar colours.
//   - sigmaSpace: Spread of the spatial kernel in pixels.
//
// Border pixels use replicated edge values.
func ApplyBilateralFilter(img image.Image, d int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	radius := d / 2
	if radius < 1 || sigmaColor <= 0 || sigmaSpace <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}

	type tap struct {
		dx, dy int
		weight float64
	}
	var taps []tap
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if r2 > float64(radius*radius) {
				continue
			}
			taps = append(taps, tap{dx, dy, math.Exp(r2 * spaceCoeff)})
		}
	}

	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	var colorWeight [3*255 + 1]float64
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.Pix[y*src.Stride+x*4:]
			var sr, sg, sb, sw float64
			for _, t := range taps {
				px := clamp(x+t.dx, 0, w-1)
				py := clamp(y+t.dy, 0, h-1)
				n := src.Pix[py*src.Stride+px*4:]
				diff := absDiff(n[0], c[0]) + absDiff(n[1], c[1]) + absDiff(n[2], c[2])
				wt := t.weight * colorWeight[diff]
				sr += float64(n[0]) * wt
				sg += float64(n[1]) * wt
				sb += float64(n[2]) * wt
				sw += wt
			}
			o := out.Pix[y*out.Stride+x*4:]
			o[0] = uint8(math.Round(sr / sw))
			o[1] = uint8(math.Round(sg / sw))
			o[2] = uint8(math.Round(sb / sw))
			o[3] = 0xff
		}
	}
	return out
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// clamp constrains an integer value to the range [lo, hi].
// Used for boundary handling in convolution operations.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func cloneNRGBA(img image.Image) *image.NRGBA {
	src := asNRGBA(img)
	out := image.NewNRGBA(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
	for y := 0; y < out.Rect.Dy(); y++ {
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], src.Pix[y*src.Stride:])
	}
	return out
}

// rgbaToOpaqueNRGBA copies the colour channels of a bild result and forces
// alpha to fully opaque. bild convolves the alpha channel too, which can
// leave it a step below 255.
func rgbaToOpaqueNRGBA(src *image.RGBA) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride:]
		d := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			d[x*4], d[x*4+1], d[x*4+2], d[x*4+3] = s[x*4], s[x*4+1], s[x*4+2], 0xff
		}
	}
	return out
}

// rgbaRedToGray reads the red channel of a bild result produced from a
// luminance image, where all three colour channels are equal.
func rgbaRedToGray(src *image.RGBA) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride:]
		d := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			d[x] = s[x*4]
		}
	}
	return out
}
