package detection

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

func detectedFrame(pts ...vision.Point) vision.FrameDetectionResult {
	q := OrderCorners([4]vision.Point{pts[0], pts[1], pts[2], pts[3]})
	return vision.FrameDetectionResult{Detected: true, Corners: q, BoundingBox: q.Bounds(), Confidence: 1}
}

func TestWarpFrame_OutputSize(t *testing.T) {
	img := createTestImage(1500, 400, color.White)

	tests := []struct {
		name  string
		frame vision.FrameDetectionResult
	}{
		{"axis aligned", detectedFrame(vision.Point{X: 150, Y: 100}, vision.Point{X: 1350, Y: 100}, vision.Point{X: 1350, Y: 300}, vision.Point{X: 150, Y: 300})},
		{"skewed", detectedFrame(vision.Point{X: 200, Y: 80}, vision.Point{X: 1300, Y: 120}, vision.Point{X: 1280, Y: 330}, vision.Point{X: 220, Y: 300})},
		{"trapezoid", detectedFrame(vision.Point{X: 400, Y: 50}, vision.Point{X: 1100, Y: 50}, vision.Point{X: 1450, Y: 390}, vision.Point{X: 50, Y: 390})},
		{"partly outside", detectedFrame(vision.Point{X: -100, Y: -50}, vision.Point{X: 1600, Y: -50}, vision.Point{X: 1600, Y: 450}, vision.Point{X: -100, Y: 450})},
	}

	d := newTestDetector(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warped, err := d.WarpFrame(img, tt.frame, 800, 200)
			if err != nil {
				t.Fatalf("WarpFrame failed: %v", err)
			}
			if warped.Bounds() != image.Rect(0, 0, 800, 200) {
				t.Errorf("Expected 800x200, got %v", warped.Bounds())
			}
		})
	}
}

func TestWarpFrame_Content(t *testing.T) {
	// Left half red, right half blue.
	img := createTestImage(400, 200, color.NRGBA{0, 0, 255, 255})
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}

	d := newTestDetector(t, nil)
	frame := detectedFrame(vision.Point{X: 0, Y: 0}, vision.Point{X: 200, Y: 0}, vision.Point{X: 200, Y: 200}, vision.Point{X: 0, Y: 200})
	warped, err := d.WarpFrame(img, frame, 100, 100)
	if err != nil {
		t.Fatalf("WarpFrame failed: %v", err)
	}

	for _, p := range []image.Point{{0, 0}, {50, 50}, {99, 99}, {99, 0}} {
		c := warped.NRGBAAt(p.X, p.Y)
		if c.R != 255 || c.B != 0 {
			t.Errorf("Pixel %v: expected red, got %+v", p, c)
		}
	}
}

func TestWarpFrame_OutsideIsBlack(t *testing.T) {
	img := createTestImage(100, 100, color.White)

	d := newTestDetector(t, nil)
	frame := detectedFrame(vision.Point{X: 100, Y: 0}, vision.Point{X: 300, Y: 0}, vision.Point{X: 300, Y: 100}, vision.Point{X: 100, Y: 100})
	warped, err := d.WarpFrame(img, frame, 40, 20)
	if err != nil {
		t.Fatalf("WarpFrame failed: %v", err)
	}
	c := warped.NRGBAAt(30, 10)
	if c != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("Expected opaque black outside the source, got %+v", c)
	}
}

func TestWarpFrame_Errors(t *testing.T) {
	img := createTestImage(100, 100, color.White)
	good := detectedFrame(vision.Point{X: 10, Y: 10}, vision.Point{X: 90, Y: 10}, vision.Point{X: 90, Y: 40}, vision.Point{X: 10, Y: 40})
	degenerate := detectedFrame(vision.Point{X: 10, Y: 10}, vision.Point{X: 50, Y: 10}, vision.Point{X: 90, Y: 10}, vision.Point{X: 30, Y: 10})

	tests := []struct {
		name   string
		img    image.Image
		frame  vision.FrameDetectionResult
		width  int
		height int
	}{
		{"nil image", nil, good, 800, 200},
		{"not detected", img, vision.FrameDetectionResult{}, 800, 200},
		{"zero width", img, good, 0, 200},
		{"negative height", img, good, 800, -1},
		{"degenerate quad", img, degenerate, 800, 200},
	}

	d := newTestDetector(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warped, err := d.WarpFrame(tt.img, tt.frame, tt.width, tt.height)
			if !errors.Is(err, vision.ErrInvalidInput) {
				t.Errorf("Expected InvalidInput, got %v", err)
			}
			if warped != nil {
				t.Error("Expected no image on error")
			}
		})
	}
}

func TestSolveHomography_Corners(t *testing.T) {
	q := OrderCorners([4]vision.Point{{X: 200, Y: 80}, {X: 1300, Y: 120}, {X: 1280, Y: 330}, {X: 220, Y: 300}})
	h, err := solveHomography(q)
	if err != nil {
		t.Fatalf("solveHomography failed: %v", err)
	}

	unit := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for i, want := range q.Points() {
		x, y := h.apply(unit[i][0], unit[i][1])
		if !near(vision.Point{X: x, Y: y}, want, 1e-6) {
			t.Errorf("Corner %d: got (%.4f, %.4f), want (%.1f, %.1f)", i, x, y, want.X, want.Y)
		}
	}
}
