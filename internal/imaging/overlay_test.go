package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

func TestDrawDebugOverlay(t *testing.T) {
	img := createInMemoryImage(200, 100, color.Black)
	frame := &vision.Quadrilateral{
		TopLeft:     vision.Point{X: 20, Y: 20},
		TopRight:    vision.Point{X: 180, Y: 20},
		BottomRight: vision.Point{X: 180, Y: 80},
		BottomLeft:  vision.Point{X: 20, Y: 80},
	}

	out := DrawDebugOverlay(img, OverlayOptions{
		Frame:          frame,
		LaneBoundaries: []vision.Rect{{X: 100, Y: 20, Width: 40, Height: 60}},
		Labels:         []string{"Lanes: 2"},
	})

	if out.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Fatalf("bounds: got %v", out.Bounds())
	}
	if c := out.RGBAAt(100, 50); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("lane left edge: got %v, want red", c)
	}
	if c := out.RGBAAt(120, 20); c != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("frame edge: got %v, want green", c)
	}
	if c := out.RGBAAt(140, 50); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("lane right edge: got %v, want red", c)
	}
	if c := out.RGBAAt(60, 50); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("interior should be untouched, got %v", c)
	}

	labelPixels := 0
	for y := 6; y < 24; y++ {
		for x := 6; x < 70; x++ {
			if out.RGBAAt(x, y).R == 255 && out.RGBAAt(x, y).G == 255 {
				labelPixels++
			}
		}
	}
	if labelPixels == 0 {
		t.Error("expected label text to be drawn")
	}

	if img.NRGBAAt(120, 20) != (color.NRGBA{0, 0, 0, 255}) {
		t.Error("source image was modified")
	}
}

func TestDrawDebugOverlay_CustomColors(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	frame := &vision.Quadrilateral{
		TopLeft:     vision.Point{X: 5, Y: 5},
		TopRight:    vision.Point{X: 45, Y: 5},
		BottomRight: vision.Point{X: 45, Y: 45},
		BottomLeft:  vision.Point{X: 5, Y: 45},
	}
	out := DrawDebugOverlay(img, OverlayOptions{Frame: frame, FrameColor: "#0000FF"})
	if c := out.RGBAAt(25, 5); c != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("got %v, want blue", c)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00FF00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.RGBA{0, 0, 255, 128}, false},
		{"", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	// Must not panic when the label runs off the image.
	drawLabel(img, 5, 5, "Time: 123ms", color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255})
}
