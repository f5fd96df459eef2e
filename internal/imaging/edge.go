package imaging

import (
	"image"
	"math"
)

// Gradients computes Sobel derivatives of a luminance image.
//
// The returned slices are row-major with len w*h. Border pixels use
// clamped (replicated) edge values.
func Gradients(gray *image.Gray) (gx, gy []float64) {
	src := anchored(gray)
	width, height := src.Rect.Dx(), src.Rect.Dy()
	gx = make([]float64, width*height)
	gy = make([]float64, width*height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sx, sy float64
			for ky := -1; ky <= 1; ky++ {
				py := clamp(y+ky, 0, height-1)
				for kx := -1; kx <= 1; kx++ {
					px := clamp(x+kx, 0, width-1)
					v := float64(src.Pix[py*src.Stride+px])
					sx += v * sobelX[ky+1][kx+1]
					sy += v * sobelY[ky+1][kx+1]
				}
			}
			gx[y*width+x] = sx
			gy[y*width+x] = sy
		}
	}
	return gx, gy
}

// DetectEdges performs Canny edge detection on a luminance image.
//
// Parameters:
//   - gray: Source luminance image. It should already be denoised.
//   - thresholdLow: Gradient magnitude below which pixels are never edges.
//     Typical value: 50.
//   - thresholdHigh: Gradient magnitude above which pixels are always edges.
//     Typical value: 150.
//
// Returns a grayscale image where edges are 255 and everything else is 0.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y, with magnitude
//     |Gx| + |Gy| and direction atan2(Gy, Gx).
//
//  2. Non-maximum suppression: Thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction.
//
//  3. Hysteresis thresholding:
//     - Pixels above thresholdHigh are strong edges (always kept)
//     - Pixels between the thresholds are weak edges, kept only if they are
//     8-connected to a strong edge through other weak edges
//     - Pixels below thresholdLow are discarded
func DetectEdges(gray *image.Gray, thresholdLow, thresholdHigh float64) *image.Gray {
	src := anchored(gray)
	width, height := src.Rect.Dx(), src.Rect.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	gx, gy := Gradients(src)
	magnitude := make([]float64, width*height)
	for i := range magnitude {
		magnitude[i] = math.Abs(gx[i]) + math.Abs(gy[i])
	}

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag < thresholdLow {
				continue
			}
			angle := math.Atan2(gy[i], gx[i])

			// Determine neighbors to compare based on gradient direction
			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			} else {
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			// Ties go to the first pixel along the direction so plateaus
			// stay one pixel wide.
			if mag > n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Edge tracking by hysteresis
	stack := make([]int, 0, 1024)
	for i, v := range suppressed {
		if v >= thresholdHigh && result.Pix[i/width*result.Stride+i%width] == 0 {
			result.Pix[i/width*result.Stride+i%width] = 255
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := j%width, j/width
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px, py := cx+kx, cy+ky
					if px < 0 || py < 0 || px >= width || py >= height {
						continue
					}
					k := py*width + px
					if suppressed[k] >= thresholdLow && result.Pix[py*result.Stride+px] == 0 {
						result.Pix[py*result.Stride+px] = 255
						stack = append(stack, k)
					}
				}
			}
		}
	}
	return result
}
