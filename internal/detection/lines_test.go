package detection

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/soroban-vision/internal/imaging"
)

// createVerticalLineEdges creates an edge map with full-height vertical lines
func createVerticalLineEdges(width, height int, xs ...int) *image.Gray {
	edges := createBinaryImage(width, height, 0)
	for _, x := range xs {
		for y := 0; y < height; y++ {
			edges.Pix[y*edges.Stride+x] = 255
		}
	}
	return edges
}

func TestDetectVerticalLines(t *testing.T) {
	edges := createVerticalLineEdges(800, 200, 100, 300, 500, 700)

	d := newTestDetector(t, nil)
	got := d.DetectVerticalLines(edges)
	if diff := cmp.Diff([]int{100, 300, 500, 700}, got); diff != "" {
		t.Errorf("DetectVerticalLines mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectVerticalLines_MergesClose(t *testing.T) {
	edges := createVerticalLineEdges(800, 200, 100, 104, 400)

	d := newTestDetector(t, nil)
	got := d.DetectVerticalLines(edges)
	if diff := cmp.Diff([]int{100, 400}, got); diff != "" {
		t.Errorf("DetectVerticalLines mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectVerticalLines_IgnoresShortAndHorizontal(t *testing.T) {
	edges := createBinaryImage(800, 200, 0)
	// Horizontal line.
	for x := 0; x < 800; x++ {
		edges.Pix[100*edges.Stride+x] = 255
	}
	// Vertical line shorter than LaneHeightRatio of the height.
	for y := 0; y < 90; y++ {
		edges.Pix[y*edges.Stride+400] = 255
	}

	d := newTestDetector(t, nil)
	if got := d.DetectVerticalLines(edges); len(got) != 0 {
		t.Errorf("Expected no lines, got %v", got)
	}
}

func TestDetectVerticalLines_BridgesGaps(t *testing.T) {
	edges := createVerticalLineEdges(800, 200, 250)
	// A gap shorter than HoughMaxGap.
	for y := 95; y < 100; y++ {
		edges.Pix[y*edges.Stride+250] = 0
	}

	d := newTestDetector(t, nil)
	if diff := cmp.Diff([]int{250}, d.DetectVerticalLines(edges)); diff != "" {
		t.Errorf("DetectVerticalLines mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectVerticalLines_Empty(t *testing.T) {
	d := newTestDetector(t, nil)
	if got := d.DetectVerticalLines(nil); got != nil {
		t.Errorf("Expected nil for nil edges, got %v", got)
	}
	if got := d.DetectVerticalLines(createBinaryImage(50, 50, 0)); len(got) != 0 {
		t.Errorf("Expected no lines, got %v", got)
	}
}

func TestLineLaneCount(t *testing.T) {
	img := createBarsImage(800, 200, 2, 100, 300, 500, 700)

	d := newTestDetector(t, nil)
	n, ok := d.lineLaneCount(imaging.ToGrayscale(img))
	if !ok {
		t.Fatal("Expected lines to be found")
	}
	if n != 3 {
		t.Errorf("Expected 3 lanes between 4 lines, got %d", n)
	}
}

func TestSegment_Length(t *testing.T) {
	s := Segment{X1: 0, Y1: 0, X2: 3, Y2: 4}
	if s.Length() != 5 {
		t.Errorf("Expected length 5, got %v", s.Length())
	}
}
