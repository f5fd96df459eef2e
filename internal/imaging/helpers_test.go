package imaging

import (
	"image"
	"image/color"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createGrayImage creates a uniform luminance image
func createGrayImage(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// createRectangleImage draws a filled rectangle of fg on a bg background
func createRectangleImage(width, height int, r image.Rectangle, fg, bg color.Color) *image.NRGBA {
	img := createInMemoryImage(width, height, bg)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, fg)
		}
	}
	return img
}

// createStepImage creates a luminance image that is 0 left of splitX and
// 255 from splitX onward.
func createStepImage(width, height, splitX int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := splitX; x < width; x++ {
			img.Pix[y*img.Stride+x] = 255
		}
	}
	return img
}
