package detection

import (
	"errors"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// minQuadArea is the smallest frame area, in square pixels, that can be
// rectified.
const minQuadArea = 1.0

// homography maps normalised output coordinates (u, v) in [0,1]² to source
// pixel coordinates.
type homography [8]float64

func (h homography) apply(u, v float64) (x, y float64) {
	w := h[6]*u + h[7]*v + 1
	return (h[0]*u + h[1]*v + h[2]) / w, (h[3]*u + h[4]*v + h[5]) / w
}

// solveHomography finds the projective transform taking the unit square's
// corners (0,0), (1,0), (1,1), (0,1) to the quadrilateral's TopLeft,
// TopRight, BottomRight and BottomLeft.
func solveHomography(q vision.Quadrilateral) (homography, error) {
	unit := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	corners := q.Points()

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i, c := range corners {
		u, v := unit[i][0], unit[i][1]
		a.SetRow(2*i, []float64{u, v, 1, 0, 0, 0, -u * c.X, -v * c.X})
		a.SetRow(2*i+1, []float64{0, 0, 0, u, v, 1, -u * c.Y, -v * c.Y})
		b.SetVec(2*i, c.X)
		b.SetVec(2*i+1, c.Y)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return homography{}, err
	}
	var h homography
	for i := range h {
		h[i] = x.AtVec(i)
	}
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return homography{}, errors.New("homography is not finite")
		}
	}
	return h, nil
}

// WarpFrame rectifies the detected frame to an exactly width × height image.
//
// The frame corners are in img's coordinate space, measured on pixel edges:
// a corner at (0,0) is the outer corner of the top-left pixel. Output pixels
// are sampled bilinearly; samples that fall outside img are black.
//
// Errors:
//   - InvalidInput: nil image, undetected frame, non-positive size, or a
//     degenerate quadrilateral.
//   - BackendError: the perspective system could not be solved.
func (d *Detector) WarpFrame(img image.Image, frame vision.FrameDetectionResult, width, height int) (*image.NRGBA, error) {
	const op = "warp frame"
	if img == nil || img.Bounds().Empty() {
		return nil, vision.Errorf(vision.InvalidInput, op, "empty image")
	}
	if !frame.Detected {
		return nil, vision.Errorf(vision.InvalidInput, op, "frame not detected")
	}
	if width <= 0 || height <= 0 {
		return nil, vision.Errorf(vision.InvalidInput, op, "invalid output size %dx%d", width, height)
	}
	if frame.Corners.Area() < minQuadArea {
		return nil, vision.Errorf(vision.InvalidInput, op, "degenerate frame")
	}

	out, err := d.warp(img, frame.Corners, width, height)
	if err != nil {
		var ve *vision.Error
		if errors.As(err, &ve) {
			return nil, err
		}
		return nil, vision.NewError(vision.BackendError, op, err)
	}
	if out == nil || out.Rect.Dx() != width || out.Rect.Dy() != height {
		return nil, vision.Errorf(vision.BackendError, op, "warper returned the wrong size")
	}
	return out, nil
}

// warpHomography is the default Warper: a gonum-solved homography sampled
// bilinearly.
func warpHomography(img image.Image, quad vision.Quadrilateral, width, height int) (*image.NRGBA, error) {
	h, err := solveHomography(quad)
	if err != nil {
		return nil, err
	}

	src := imaging.ToNRGBA(img)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for py := 0; py < height; py++ {
		v := (float64(py) + 0.5) / float64(height)
		row := dst.Pix[py*dst.Stride:]
		for px := 0; px < width; px++ {
			u := (float64(px) + 0.5) / float64(width)
			x, y := h.apply(u, v)
			c := sampleBilinear(src, x-0.5, y-0.5)
			i := px * 4
			row[i+0] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = 255
		}
	}
	return dst, nil
}

// sampleBilinear interpolates src at the pixel-centre coordinate (x, y).
// Points more than half a pixel outside the image are black; points within
// that margin take the nearest edge value.
func sampleBilinear(src *image.NRGBA, x, y float64) color.NRGBA {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	if math.IsNaN(x) || math.IsNaN(y) ||
		x < -0.5 || y < -0.5 || x > float64(width)-0.5 || y > float64(height)-0.5 {
		return color.NRGBA{A: 255}
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)
	x1 := min(x0+1, width-1)
	y1 := min(y0+1, height-1)
	x0 = max(x0, 0)
	y0 = max(y0, 0)

	p00 := src.Pix[y0*src.Stride+x0*4:]
	p10 := src.Pix[y0*src.Stride+x1*4:]
	p01 := src.Pix[y1*src.Stride+x0*4:]
	p11 := src.Pix[y1*src.Stride+x1*4:]

	var out [3]uint8
	for c := 0; c < 3; c++ {
		top := float64(p00[c])*(1-fx) + float64(p10[c])*fx
		bottom := float64(p01[c])*(1-fx) + float64(p11[c])*fx
		out[c] = uint8(math.Round(math.Max(0, math.Min(255, top*(1-fy)+bottom*fy))))
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: 255}
}
