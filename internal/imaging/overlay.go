package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// OverlayOptions selects what DrawDebugOverlay draws.
type OverlayOptions struct {
	// Frame is the detected frame outline, or nil to skip it.
	Frame *vision.Quadrilateral

	// LaneBoundaries are the lane boxes in the coordinates of the overlay
	// image. Their left and right edges are drawn as vertical lines.
	LaneBoundaries []vision.Rect

	// Lines of text drawn in the top-left corner, e.g. "Lanes: 13".
	Labels []string

	// FrameColor is a hex color like "#00FF00" or "#00FF0080".
	// Invalid or empty values fall back to opaque green.
	FrameColor string

	// LaneColor is a hex color for lane boundaries.
	// Invalid or empty values fall back to opaque red.
	LaneColor string
}

// DrawDebugOverlay returns a copy of img with the detection results drawn on
// top. The source image is never modified.
func DrawDebugOverlay(img image.Image, opts OverlayOptions) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	frameColor, err := parseHexColor(opts.FrameColor)
	if err != nil {
		frameColor = color.RGBA{0, 255, 0, 255}
	}
	laneColor, err := parseHexColor(opts.LaneColor)
	if err != nil {
		laneColor = color.RGBA{255, 0, 0, 255}
	}

	thickness := max(1, min(bounds.Dx(), bounds.Dy())/200)

	for _, lane := range opts.LaneBoundaries {
		x0, x1 := lane.X, lane.X+lane.Width
		y0, y1 := lane.Y, lane.Y+lane.Height
		drawLine(result, vision.Point{X: x0, Y: y0}, vision.Point{X: x0, Y: y1}, 1, laneColor)
		drawLine(result, vision.Point{X: x1, Y: y0}, vision.Point{X: x1, Y: y1}, 1, laneColor)
	}

	if opts.Frame != nil {
		pts := opts.Frame.Points()
		for i := range pts {
			drawLine(result, pts[i], pts[(i+1)%len(pts)], thickness, frameColor)
		}
	}

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}
	for i, text := range opts.Labels {
		drawLabel(result, 8, 8+i*16, text, labelColor, bgColor)
	}

	return result
}

// drawLine draws a straight segment of the given thickness, clipped to img.
func drawLine(img *image.RGBA, a, b vision.Point, thickness int, c color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	half := thickness / 2
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x := int(math.Round(a.X + t*(b.X-a.X)))
		y := int(math.Round(a.Y + t*(b.Y-a.Y)))
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				if image.Pt(x+dx, y+dy).In(img.Rect) {
					img.SetRGBA(x+dx, y+dy, c)
				}
			}
		}
	}
}

// parseHexColor accepts "#RRGGBB" or "#RRGGBBAA", with or without the '#'.
func parseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	alpha := uint8(255)
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// drawLabel draws text on a filled background box whose top-left corner is
// at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}
	labelWidth := d.MeasureString(text).Ceil()
	labelHeight := face.Height

	box := image.Rect(x-2, y-2, x+labelWidth+2, y+labelHeight+1).Intersect(img.Rect)
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}
