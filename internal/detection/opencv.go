//go:build gocv

package detection

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// OpenCVOptions returns the options that move contour search and
// rectification onto OpenCV.
func OpenCVOptions() []Option {
	return []Option{
		WithOutlineFinder(contourOutlines),
		WithWarper(warpPerspective),
	}
}

// contourOutlines is the OpenCV OutlineFinder. It runs FindContours on the
// binary map and on its inverse so both polarities are searched, like the
// component search.
func contourOutlines(binary *image.Gray, minBoxArea int) [][]vision.Point {
	src, err := gocv.ImageGrayToMatGray(binary)
	if err != nil {
		return nil
	}
	defer src.Close()

	inv := gocv.NewMat()
	defer inv.Close()
	gocv.BitwiseNot(src, &inv)

	w, h := binary.Rect.Dx(), binary.Rect.Dy()
	var out [][]vision.Point
	for _, m := range []gocv.Mat{src, inv} {
		contours := gocv.FindContours(m, gocv.RetrievalList, gocv.ChainApproxSimple)
		for i := 0; i < contours.Size(); i++ {
			c := contours.At(i)
			box := gocv.BoundingRect(c)
			if box.Dx()*box.Dy() < minBoxArea {
				continue
			}
			if box.Min.X <= 0 || box.Min.Y <= 0 || box.Max.X >= w || box.Max.Y >= h {
				continue
			}
			out = append(out, pixelCorners(c.ToPoints()))
		}
		contours.Close()
	}
	return out
}

// pixelCorners expands contour pixel positions to the four corners of each
// pixel, matching the pixel-edge outlines of the component search.
func pixelCorners(pts []image.Point) []vision.Point {
	out := make([]vision.Point, 0, 4*len(pts))
	for _, p := range pts {
		x, y := float64(p.X), float64(p.Y)
		out = append(out,
			vision.Point{X: x, Y: y},
			vision.Point{X: x + 1, Y: y},
			vision.Point{X: x + 1, Y: y + 1},
			vision.Point{X: x, Y: y + 1},
		)
	}
	return out
}

// warpPerspective is the OpenCV Warper. Corners are pixel edges; OpenCV
// works on pixel centres, hence the half-pixel shift on both sides.
func warpPerspective(img image.Image, quad vision.Quadrilateral, width, height int) (*image.NRGBA, error) {
	src, err := gocv.ImageToMatRGB(imaging.ToNRGBA(img))
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var from [4]gocv.Point2f
	for i, c := range quad.Points() {
		from[i] = gocv.Point2f{X: float32(c.X - 0.5), Y: float32(c.Y - 0.5)}
	}
	fw, fh := float32(width)-0.5, float32(height)-0.5
	to := []gocv.Point2f{{X: -0.5, Y: -0.5}, {X: fw, Y: -0.5}, {X: fw, Y: fh}, {X: -0.5, Y: fh}}

	fromVec := gocv.NewPoint2fVectorFromPoints(from[:])
	defer fromVec.Close()
	toVec := gocv.NewPoint2fVectorFromPoints(to)
	defer toVec.Close()

	m := gocv.GetPerspectiveTransform2f(fromVec, toVec)
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspective(src, &dst, m, image.Pt(width, height))

	out, err := dst.ToImage()
	if err != nil {
		return nil, err
	}
	return imaging.ToNRGBA(out), nil
}
