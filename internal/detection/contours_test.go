package detection

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

func TestFindComponents(t *testing.T) {
	binary := createBinaryImage(50, 50, 255)
	// Interior dark block and a dark block touching the right edge.
	fillQuad(binary, [4]vision.Point{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}, {X: 10, Y: 20}}, 0)
	fillQuad(binary, [4]vision.Point{{X: 40, Y: 30}, {X: 50, Y: 30}, {X: 50, Y: 40}, {X: 40, Y: 40}}, 0)

	components := findComponents(binary, 0)
	if len(components) != 3 {
		t.Fatalf("Expected 3 components (background and two blocks), got %d", len(components))
	}

	var interior int
	for _, c := range components {
		if c.touchesBorder {
			continue
		}
		interior++
		if c.bounds != image.Rect(10, 10, 20, 20) {
			t.Errorf("Unexpected interior bounds %v", c.bounds)
		}
		if len(c.pixels) != 100 {
			t.Errorf("Expected 100 pixels, got %d", len(c.pixels))
		}
	}
	if interior != 1 {
		t.Errorf("Expected 1 interior component, got %d", interior)
	}
}

func TestFindComponents_MinBoxArea(t *testing.T) {
	binary := createBinaryImage(50, 50, 255)
	fillQuad(binary, [4]vision.Point{{X: 10, Y: 10}, {X: 14, Y: 10}, {X: 14, Y: 14}, {X: 10, Y: 14}}, 0)

	// Only the background's 50x50 box survives.
	components := findComponents(binary, 100)
	if len(components) != 1 || !components[0].touchesBorder {
		t.Errorf("Expected only the background, got %d components", len(components))
	}
}

func TestComponentOutline_Hull(t *testing.T) {
	binary := createBinaryImage(30, 30, 255)
	fillQuad(binary, [4]vision.Point{{X: 5, Y: 8}, {X: 25, Y: 8}, {X: 25, Y: 18}, {X: 5, Y: 18}}, 0)

	var hull []vision.Point
	for _, c := range findComponents(binary, 0) {
		if !c.touchesBorder {
			hull = convexHull(c.outline())
		}
	}
	if len(hull) != 4 {
		t.Fatalf("Expected a 4-vertex hull, got %d: %v", len(hull), hull)
	}
	if area := polygonArea(hull); area != 200 {
		t.Errorf("Expected hull area 200, got %v", area)
	}
}

func TestConvexHull(t *testing.T) {
	pts := []vision.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		{X: 5, Y: 5}, {X: 2, Y: 7}, {X: 5, Y: 0},
	}
	hull := convexHull(pts)
	if len(hull) != 4 {
		t.Errorf("Expected 4 hull vertices, got %d: %v", len(hull), hull)
	}
	if polygonArea(hull) != 100 {
		t.Errorf("Expected area 100, got %v", polygonArea(hull))
	}
}

func TestApproxPolygon(t *testing.T) {
	// A rectangle with slightly bumped edges.
	pts := []vision.Point{
		{X: 0, Y: 0}, {X: 50, Y: 0.5}, {X: 100, Y: 0},
		{X: 100.4, Y: 25}, {X: 100, Y: 50},
		{X: 50, Y: 49.6}, {X: 0, Y: 50},
		{X: -0.3, Y: 25},
	}

	got := approxPolygon(pts, 0.02*polygonPerimeter(pts))
	if len(got) != 4 {
		t.Fatalf("Expected 4 vertices, got %d: %v", len(got), got)
	}
	if !isConvex(got) {
		t.Error("Expected convex approximation")
	}
	if math.Abs(polygonArea(got)-5000) > 1 {
		t.Errorf("Expected area ~5000, got %v", polygonArea(got))
	}
}

func TestIsConvex(t *testing.T) {
	tests := []struct {
		name string
		pts  []vision.Point
		want bool
	}{
		{"square", []vision.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, true},
		{"dart", []vision.Point{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 4, Y: 0}, {X: 2, Y: 4}}, false},
		{"collinear", []vision.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, false},
		{"too few", []vision.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConvex(tt.pts); got != tt.want {
				t.Errorf("isConvex = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := vision.Point{X: 0, Y: 0}, vision.Point{X: 10, Y: 0}
	tests := []struct {
		p    vision.Point
		want float64
	}{
		{vision.Point{X: 5, Y: 3}, 3},
		{vision.Point{X: -4, Y: 3}, 5},
		{vision.Point{X: 13, Y: 4}, 5},
	}
	for _, tt := range tests {
		if got := segmentDistance(tt.p, a, b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("segmentDistance(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
