package imaging

import (
	"errors"
	"testing"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

func TestConvertFromBuffer_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format PixelFormat
		pixel  []byte
		want   [3]uint8
	}{
		{"BGRA32", FormatBGRA32, []byte{10, 20, 30, 40}, [3]uint8{30, 20, 10}},
		{"RGBA32", FormatRGBA32, []byte{10, 20, 30, 40}, [3]uint8{10, 20, 30}},
		{"RGB24", FormatRGB24, []byte{10, 20, 30}, [3]uint8{10, 20, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data []byte
			for i := 0; i < 4*3; i++ {
				data = append(data, tt.pixel...)
			}
			img, err := ConvertFromBuffer(PixelBuffer{Width: 4, Height: 3, Format: tt.format, Data: data})
			if err != nil {
				t.Fatalf("ConvertFromBuffer failed: %v", err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
				t.Fatalf("dimensions: got %v", img.Bounds())
			}
			c := img.NRGBAAt(2, 1)
			if c.R != tt.want[0] || c.G != tt.want[1] || c.B != tt.want[2] {
				t.Errorf("pixel: got (%d,%d,%d), want %v", c.R, c.G, c.B, tt.want)
			}
			if c.A != 255 {
				t.Errorf("alpha: got %d, want 255", c.A)
			}
		})
	}
}

func TestConvertFromBuffer_RowPadding(t *testing.T) {
	// 2x2 RGB24 with 8 bytes per row (2 bytes of padding)
	data := []byte{
		1, 2, 3, 4, 5, 6, 0xEE, 0xEE,
		7, 8, 9, 10, 11, 12, 0xEE, 0xEE,
	}
	img, err := ConvertFromBuffer(PixelBuffer{Width: 2, Height: 2, Format: FormatRGB24, BytesPerRow: 8, Data: data})
	if err != nil {
		t.Fatalf("ConvertFromBuffer failed: %v", err)
	}
	if c := img.NRGBAAt(1, 1); c.R != 10 || c.G != 11 || c.B != 12 {
		t.Errorf("pixel (1,1): got %v", c)
	}
	if c := img.NRGBAAt(0, 1); c.R != 7 {
		t.Errorf("pixel (0,1): got %v", c)
	}
}

func TestConvertFromBuffer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		buf  PixelBuffer
	}{
		{"zero width", PixelBuffer{Width: 0, Height: 2, Format: FormatRGBA32, Data: make([]byte, 16)}},
		{"zero height", PixelBuffer{Width: 2, Height: 0, Format: FormatRGBA32, Data: make([]byte, 16)}},
		{"planar", PixelBuffer{Width: 2, Height: 2, Format: FormatRGBA32, PlaneCount: 2, Data: make([]byte, 16)}},
		{"unknown format", PixelBuffer{Width: 2, Height: 2, Format: PixelFormat(42), Data: make([]byte, 16)}},
		{"short data", PixelBuffer{Width: 2, Height: 2, Format: FormatRGBA32, Data: make([]byte, 15)}},
		{"short stride", PixelBuffer{Width: 2, Height: 2, Format: FormatRGBA32, BytesPerRow: 4, Data: make([]byte, 16)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ConvertFromBuffer(tt.buf)
			if err == nil {
				t.Fatal("expected error")
			}
			if img != nil {
				t.Error("expected no image on error")
			}
			if !errors.Is(err, vision.ErrInvalidInput) {
				t.Errorf("expected InvalidInput, got %v", err)
			}
		})
	}
}

func TestPixelFormatString(t *testing.T) {
	if FormatBGRA32.String() != "BGRA32" || FormatRGB24.String() != "RGB24" {
		t.Error("unexpected format names")
	}
	if PixelFormat(9).BytesPerPixel() != 0 {
		t.Error("unknown format should have no pixel size")
	}
}
