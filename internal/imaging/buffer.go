package imaging

import (
	"image"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// PixelFormat identifies the byte layout of an interleaved pixel buffer.
type PixelFormat int

const (
	// FormatBGRA32 is 4 bytes per pixel in B, G, R, A order.
	FormatBGRA32 PixelFormat = iota
	// FormatRGBA32 is 4 bytes per pixel in R, G, B, A order.
	FormatRGBA32
	// FormatRGB24 is 3 bytes per pixel in R, G, B order.
	FormatRGB24
)

func (f PixelFormat) String() string {
	switch f {
	case FormatBGRA32:
		return "BGRA32"
	case FormatRGBA32:
		return "RGBA32"
	case FormatRGB24:
		return "RGB24"
	default:
		return "unknown"
	}
}

// BytesPerPixel returns the pixel stride of f, or 0 for an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatBGRA32, FormatRGBA32:
		return 4
	case FormatRGB24:
		return 3
	default:
		return 0
	}
}

// PixelBuffer is a raw camera frame.
//
// BytesPerRow may exceed Width*BytesPerPixel when rows are padded. A zero
// BytesPerRow means rows are tightly packed. PlaneCount greater than one marks
// a planar buffer, which is not supported.
type PixelBuffer struct {
	Width       int
	Height      int
	Format      PixelFormat
	BytesPerRow int
	PlaneCount  int
	Data        []byte
}

// ConvertFromBuffer copies a pixel buffer into an opaque *image.NRGBA.
//
// The alpha channel of 32-bit formats is discarded: every output pixel has
// alpha 255. The input buffer is not retained.
func ConvertFromBuffer(buf PixelBuffer) (*image.NRGBA, error) {
	const op = "convert buffer"

	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, vision.Errorf(vision.InvalidInput, op, "invalid dimensions %dx%d", buf.Width, buf.Height)
	}
	if buf.PlaneCount > 1 {
		return nil, vision.Errorf(vision.InvalidInput, op, "planar buffers are not supported (%d planes)", buf.PlaneCount)
	}
	bpp := buf.Format.BytesPerPixel()
	if bpp == 0 {
		return nil, vision.Errorf(vision.InvalidInput, op, "unsupported pixel format %d", int(buf.Format))
	}

	stride := buf.BytesPerRow
	if stride == 0 {
		stride = buf.Width * bpp
	}
	if stride < buf.Width*bpp {
		return nil, vision.Errorf(vision.InvalidInput, op, "row stride %d shorter than %d pixels of %s", stride, buf.Width, buf.Format)
	}
	need := stride*(buf.Height-1) + buf.Width*bpp
	if len(buf.Data) < need {
		return nil, vision.Errorf(vision.InvalidInput, op, "buffer holds %d bytes, need %d", len(buf.Data), need)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		src := buf.Data[y*stride : y*stride+buf.Width*bpp]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+buf.Width*4]
		for x := 0; x < buf.Width; x++ {
			s := src[x*bpp : x*bpp+bpp]
			d := row[x*4 : x*4+4]
			switch buf.Format {
			case FormatBGRA32:
				d[0], d[1], d[2] = s[2], s[1], s[0]
			default:
				d[0], d[1], d[2] = s[0], s[1], s[2]
			}
			d[3] = 0xff
		}
	}
	return dst, nil
}
