//go:build gocv

package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

func TestPreprocessOpenCV_Outputs(t *testing.T) {
	p := newTestPreprocessor(t, nil)
	img := createRectangleImage(2000, 500, image.Rect(200, 100, 1800, 400), color.NRGBA{60, 40, 30, 255}, color.NRGBA{230, 220, 200, 255})

	out, err := p.PreprocessOpenCV(img)
	if err != nil {
		t.Fatalf("PreprocessOpenCV failed: %v", err)
	}

	want := image.Rect(0, 0, 1280, 320)
	for name, b := range map[string]image.Rectangle{
		"normalized": out.Normalized.Bounds(),
		"enhanced":   out.Enhanced.Bounds(),
		"binary":     out.Binary.Bounds(),
		"edges":      out.Edges.Bounds(),
	} {
		if b != want {
			t.Errorf("%s bounds: got %v, want %v", name, b, want)
		}
	}
	if out.Scale != 0.64 {
		t.Errorf("scale: got %v, want 0.64", out.Scale)
	}
	for _, v := range out.Binary.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("binary map has value %d", v)
		}
	}
	if countNonZero(out.Edges) == 0 {
		t.Error("expected edges around the rectangle")
	}
}

func TestPreprocessOpenCV_Errors(t *testing.T) {
	p := newTestPreprocessor(t, nil)

	if _, err := p.PreprocessOpenCV(nil); !errors.Is(err, vision.ErrInvalidInput) {
		t.Errorf("nil image: expected InvalidInput, got %v", err)
	}
	out, err := p.PreprocessOpenCV(panicImage{image.Rect(0, 0, 10, 10)})
	if !errors.Is(err, vision.ErrBackend) {
		t.Errorf("expected BackendError, got %v", err)
	}
	if out != nil {
		t.Error("expected no partial output")
	}
}
