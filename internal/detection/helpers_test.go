package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createBinaryImage creates a uniform binary image
func createBinaryImage(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// fillQuad sets every pixel whose centre lies inside the convex quad to v
func fillQuad(img *image.Gray, q [4]vision.Point, v uint8) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if insideConvex(q, float64(x)+0.5, float64(y)+0.5) {
				img.SetGray(x, y, color.Gray{Y: v})
			}
		}
	}
}

func insideConvex(q [4]vision.Point, x, y float64) bool {
	var pos, neg bool
	for i := range q {
		a, b := q[i], q[(i+1)%4]
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
	}
	return !(pos && neg)
}

// createBarsImage draws dark vertical bars of the given width on white
func createBarsImage(width, height, barWidth int, starts ...int) *image.NRGBA {
	img := createTestImage(width, height, color.White)
	for _, x0 := range starts {
		for x := x0; x < x0+barWidth && x < width; x++ {
			for y := 0; y < height; y++ {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func newTestDetector(t *testing.T, mutate func(*config.DetectionParams)) *Detector {
	t.Helper()
	params := config.DefaultDetectionParams()
	if mutate != nil {
		mutate(&params)
	}
	d, err := NewDetector(params)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	return d
}

func near(a, b vision.Point, tol float64) bool {
	return a.Dist(b) <= tol
}
