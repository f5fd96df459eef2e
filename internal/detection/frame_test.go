package detection

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

func TestNewDetector_InvalidParams(t *testing.T) {
	params := config.DefaultDetectionParams()
	params.MinLaneCount = 0

	_, err := NewDetector(params)
	if !errors.Is(err, vision.ErrInvalidInput) {
		t.Fatalf("Expected InvalidInput, got %v", err)
	}
}

func TestDetectFrame_AxisAligned(t *testing.T) {
	// 1200x200 covers 40% of 1500x400 at a 6:1 aspect ratio.
	binary := createBinaryImage(1500, 400, 255)
	want := [4]vision.Point{{X: 150, Y: 100}, {X: 1350, Y: 100}, {X: 1350, Y: 300}, {X: 150, Y: 300}}
	fillQuad(binary, want, 0)

	d := newTestDetector(t, nil)
	result := d.DetectFrame(nil, binary, nil)

	if !result.Detected {
		t.Fatal("Expected frame to be detected")
	}
	got := result.Corners.Points()
	for i := range want {
		if !near(got[i], want[i], 5) {
			t.Errorf("Corner %d: got (%.1f, %.1f), want (%.1f, %.1f)", i, got[i].X, got[i].Y, want[i].X, want[i].Y)
		}
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Errorf("Confidence %v outside (0, 1]", result.Confidence)
	}
	if result.LaneCount != 0 {
		t.Errorf("LaneCount should be left for lane detection, got %d", result.LaneCount)
	}
	if math.Abs(result.BoundingBox.Width-1200) > 5 || math.Abs(result.BoundingBox.Height-200) > 5 {
		t.Errorf("Unexpected bounding box %+v", result.BoundingBox)
	}
}

func TestDetectFrame_Skewed(t *testing.T) {
	binary := createBinaryImage(1500, 400, 255)
	want := [4]vision.Point{{X: 200, Y: 80}, {X: 1300, Y: 120}, {X: 1280, Y: 330}, {X: 220, Y: 300}}
	fillQuad(binary, want, 0)

	d := newTestDetector(t, nil)
	result := d.DetectFrame(nil, binary, nil)

	if !result.Detected {
		t.Fatal("Expected skewed frame to be detected")
	}
	got := result.Corners.Points()
	for i := range want {
		if !near(got[i], want[i], 5) {
			t.Errorf("Corner %d: got (%.1f, %.1f), want (%.1f, %.1f)", i, got[i].X, got[i].Y, want[i].X, want[i].Y)
		}
	}
}

func TestDetectFrame_LightFrameOnDark(t *testing.T) {
	binary := createBinaryImage(1500, 400, 0)
	fillQuad(binary, [4]vision.Point{{X: 150, Y: 100}, {X: 1350, Y: 100}, {X: 1350, Y: 300}, {X: 150, Y: 300}}, 255)

	d := newTestDetector(t, nil)
	if result := d.DetectFrame(nil, binary, nil); !result.Detected {
		t.Error("Expected light frame to be detected")
	}
}

func TestDetectFrame_NoCandidate(t *testing.T) {
	tests := []struct {
		name   string
		binary *image.Gray
	}{
		{"nil", nil},
		{"solid white", createBinaryImage(640, 480, 255)},
		{"solid black", createBinaryImage(640, 480, 0)},
		{"empty", image.NewGray(image.Rect(0, 0, 0, 0))},
	}

	d := newTestDetector(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.DetectFrame(nil, tt.binary, nil)
			if diff := cmp.Diff(vision.FrameDetectionResult{}, result); diff != "" {
				t.Errorf("Expected zero result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectFrame_Filters(t *testing.T) {
	tests := []struct {
		name string
		quad [4]vision.Point
	}{
		// 1% of the image: below MinAreaRatio.
		{"too small", [4]vision.Point{{X: 700, Y: 180}, {X: 800, Y: 180}, {X: 800, Y: 240}, {X: 700, Y: 240}}},
		// 1:1 aspect: below MinAspectRatio.
		{"square", [4]vision.Point{{X: 550, Y: 50}, {X: 850, Y: 50}, {X: 850, Y: 350}, {X: 550, Y: 350}}},
	}

	d := newTestDetector(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binary := createBinaryImage(1500, 400, 255)
			fillQuad(binary, tt.quad, 0)
			if result := d.DetectFrame(nil, binary, nil); result.Detected {
				t.Errorf("Expected no detection, got %+v", result.Corners)
			}
		})
	}
}

func TestDetectFrame_BorderTouchingIgnored(t *testing.T) {
	binary := createBinaryImage(1500, 400, 255)
	fillQuad(binary, [4]vision.Point{{X: 0, Y: 100}, {X: 1200, Y: 100}, {X: 1200, Y: 300}, {X: 0, Y: 300}}, 0)

	d := newTestDetector(t, nil)
	if result := d.DetectFrame(nil, binary, nil); result.Detected {
		t.Error("Expected frame touching the border to be ignored")
	}
}

func TestDetectFrame_PicksLargest(t *testing.T) {
	binary := createBinaryImage(1500, 400, 255)
	fillQuad(binary, [4]vision.Point{{X: 50, Y: 50}, {X: 550, Y: 50}, {X: 550, Y: 150}, {X: 50, Y: 150}}, 0)
	fillQuad(binary, [4]vision.Point{{X: 300, Y: 200}, {X: 1400, Y: 200}, {X: 1400, Y: 350}, {X: 300, Y: 350}}, 0)

	d := newTestDetector(t, nil)
	result := d.DetectFrame(nil, binary, nil)
	if !result.Detected {
		t.Fatal("Expected a frame")
	}
	if !near(result.Corners.TopLeft, vision.Point{X: 300, Y: 200}, 5) {
		t.Errorf("Expected the larger frame, got top-left %+v", result.Corners.TopLeft)
	}
}

func TestDetectFrame_EdgeSupport(t *testing.T) {
	binary := createBinaryImage(1500, 400, 255)
	quad := [4]vision.Point{{X: 150, Y: 100}, {X: 1350, Y: 100}, {X: 1350, Y: 300}, {X: 150, Y: 300}}
	fillQuad(binary, quad, 0)

	d := newTestDetector(t, nil)
	without := d.DetectFrame(nil, binary, createBinaryImage(1500, 400, 0))
	with := d.DetectFrame(nil, binary, createBinaryImage(1500, 400, 255))

	if !without.Detected || !with.Detected {
		t.Fatal("Expected both detections to succeed")
	}
	if without.Confidence >= with.Confidence {
		t.Errorf("Edge support should raise confidence: without=%v with=%v", without.Confidence, with.Confidence)
	}
}

func TestOrderCorners(t *testing.T) {
	want := vision.Quadrilateral{
		TopLeft:     vision.Point{X: 10, Y: 20},
		TopRight:    vision.Point{X: 110, Y: 15},
		BottomRight: vision.Point{X: 120, Y: 60},
		BottomLeft:  vision.Point{X: 5, Y: 55},
	}

	tests := []struct {
		name string
		in   [4]vision.Point
	}{
		{"clockwise", [4]vision.Point{want.TopLeft, want.TopRight, want.BottomRight, want.BottomLeft}},
		{"counter-clockwise", [4]vision.Point{want.TopLeft, want.BottomLeft, want.BottomRight, want.TopRight}},
		{"rotated start", [4]vision.Point{want.BottomRight, want.BottomLeft, want.TopLeft, want.TopRight}},
		{"scrambled", [4]vision.Point{want.BottomLeft, want.TopRight, want.TopLeft, want.BottomRight}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(want, OrderCorners(tt.in)); diff != "" {
				t.Errorf("OrderCorners mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
