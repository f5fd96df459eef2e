package imaging

import (
	"image"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// asNRGBA returns img as an *image.NRGBA anchored at (0,0). The result may
// share pixels with img, so callers must treat it as read-only.
//
// Conversion runs on the calling goroutine so that a failing image
// implementation panics where Preprocess can recover it.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// ToNRGBA returns img as a read-only *image.NRGBA anchored at (0,0).
func ToNRGBA(img image.Image) *image.NRGBA {
	return asNRGBA(img)
}

// anchored returns g with its bounds starting at (0,0), copying if needed.
func anchored(g *image.Gray) *image.Gray {
	if g.Rect.Min == (image.Point{}) {
		return g
	}
	return ToGrayscale(g)
}

// grayValue computes luminance using ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B), rounded to the nearest integer.
func grayValue(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

// ToGrayscale converts an image to 8-bit luminance.
//
// The output is anchored at (0,0) and has the same size as img.
func ToGrayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		out := image.NewGray(g.Rect)
		copy(out.Pix, g.Pix)
		return out
	}

	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4:]
			dst[x] = grayValue(p[0], p[1], p[2])
		}
	}
	return out
}

// ApplyWhiteBalance corrects a colour cast using the gray-world assumption.
//
// Each channel is scaled so that its mean matches the mean of all three
// channel means. A channel whose mean is zero is left unscaled. Scaled values
// are clamped to the displayable range.
func ApplyWhiteBalance(img image.Image) *image.NRGBA {
	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	var sum [3]float64
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4:]
			sum[0] += float64(p[0])
			sum[1] += float64(p[1])
			sum[2] += float64(p[2])
		}
	}
	n := float64(w * h)
	avg := [3]float64{sum[0] / n, sum[1] / n, sum[2] / n}
	gray := (avg[0] + avg[1] + avg[2]) / 3

	var scale [3]float64
	for c := range scale {
		scale[c] = 1
		if avg[c] > 0 {
			scale[c] = gray / avg[c]
		}
	}

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4:]
			c := colorful.Color{
				R: float64(p[0]) / 255 * scale[0],
				G: float64(p[1]) / 255 * scale[1],
				B: float64(p[2]) / 255 * scale[2],
			}.Clamped()
			d := dst[x*4:]
			d[0], d[1], d[2] = c.RGB255()
			d[3] = 0xff
		}
	}
	return out
}

// ApplyCLAHE performs contrast-limited adaptive histogram equalisation.
//
// Parameters:
//   - gray: Source luminance image.
//   - clipLimit: Histogram clip limit relative to a uniform distribution.
//     Bins are clipped at clipLimit*tileArea/256 and the excess is spread over
//     all bins. Typical value: 2.0.
//   - tileGrid: Number of tiles along each axis. Typical value: 8.
//
// # Algorithm
//
//  1. The image is divided into a tileGrid x tileGrid grid of tiles.
//  2. Each tile gets a clipped, redistributed histogram and the resulting
//     cumulative distribution becomes that tile's lookup table.
//  3. Every pixel is mapped through the four nearest tile tables and the
//     results are bilinearly interpolated, which hides tile seams.
func ApplyCLAHE(gray *image.Gray, clipLimit float64, tileGrid int) *image.Gray {
	gray = anchored(gray)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if tileGrid < 1 {
		tileGrid = 1
	}

	tileW := (w + tileGrid - 1) / tileGrid
	tileH := (h + tileGrid - 1) / tileGrid
	nx := (w + tileW - 1) / tileW
	ny := (h + tileH - 1) / tileH

	at := func(x, y int) uint8 {
		return gray.Pix[y*gray.Stride+x]
	}

	luts := make([][256]uint8, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)
			area := (x1 - x0) * (y1 - y0)

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[at(x, y)]++
				}
			}
			clipHistogram(&hist, clipLimit, area)

			lut := &luts[ty*nx+tx]
			scale := 255.0 / float64(area)
			cdf := 0
			for v := 0; v < 256; v++ {
				cdf += hist[v]
				lut[v] = uint8(math.Min(255, math.Round(float64(cdf)*scale)))
			}
		}
	}

	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty1 := int(math.Floor(fy))
		wy := fy - float64(ty1)
		ty2 := min(ty1+1, ny-1)
		ty1 = max(ty1, 0)

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx1 := int(math.Floor(fx))
			wx := fx - float64(tx1)
			tx2 := min(tx1+1, nx-1)
			tx1 = max(tx1, 0)

			v := at(x, y)
			top := (1-wx)*float64(luts[ty1*nx+tx1][v]) + wx*float64(luts[ty1*nx+tx2][v])
			bot := (1-wx)*float64(luts[ty2*nx+tx1][v]) + wx*float64(luts[ty2*nx+tx2][v])
			out.Pix[y*out.Stride+x] = uint8(math.Min(255, math.Round((1-wy)*top+wy*bot)))
		}
	}
	return out
}

// clipHistogram clips every bin at clipLimit*area/256 and spreads the
// clipped mass evenly over all bins.
func clipHistogram(hist *[256]int, clipLimit float64, area int) {
	if clipLimit <= 0 {
		return
	}
	limit := max(1, int(clipLimit*float64(area)/256))

	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}
	if excess == 0 {
		return
	}

	batch := excess / 256
	residual := excess - batch*256
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(1, 256/residual)
		for i := 0; i < 256 && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}
}
