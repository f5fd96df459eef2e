package tensor

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Channels is the channel count of every tensor produced by a Converter.
const Channels = 3

// Converter turns cell images into normalized tensors.
//
// A Converter holds only its configuration snapshot and is safe for
// concurrent use.
type Converter struct {
	size     int
	mean     [Channels]float32
	std      [Channels]float32
	maxElems int
	workers  int
}

// NewConverter returns a Converter for cfg. Invalid configurations are
// reported as InvalidInput.
func NewConverter(cfg config.PreprocessingConfig) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, vision.NewError(vision.InvalidInput, "new converter", err)
	}
	return &Converter{
		size:     cfg.CellOutputSize,
		mean:     cfg.NormMean,
		std:      cfg.NormStd,
		maxElems: cfg.MaxTensorElements,
		workers:  runtime.GOMAXPROCS(0),
	}, nil
}

// CellSize returns the side length of converted cells.
func (c *Converter) CellSize() int {
	return c.size
}

// cellElements is the float count of one converted cell.
func (c *Converter) cellElements() int {
	return Channels * c.size * c.size
}

// ConvertCell resizes img to CellOutputSize × CellOutputSize and normalizes
// it into a C×H×W tensor. Grayscale inputs are broadcast to all channels.
//
// Errors:
//   - InvalidInput: nil or empty image.
//   - MemoryAllocationFailed: the tensor would exceed MaxTensorElements.
//   - TensorConversionFailed: reading the image panicked.
func (c *Converter) ConvertCell(img image.Image) (*CellTensor, error) {
	const op = "convert cell"
	if img == nil || img.Bounds().Empty() {
		return nil, vision.Errorf(vision.InvalidInput, op, "empty cell image")
	}
	n := c.cellElements()
	if n > c.maxElems {
		return nil, vision.Errorf(vision.MemoryAllocationFailed, op, "cell needs %d elements, limit is %d", n, c.maxElems)
	}

	src, err := flatten(img)
	if err != nil {
		return nil, vision.NewError(vision.TensorConversionFailed, op, err)
	}
	buf := acquireBuffer(n)
	if err := c.safeNormalize(*buf, src); err != nil {
		releaseBuffer(buf)
		return nil, vision.NewError(vision.TensorConversionFailed, op, err)
	}
	return &CellTensor{Channels: Channels, Height: c.size, Width: c.size, buf: buf}, nil
}

// ConvertBatch converts cells into one N×C×H×W tensor, cell i occupying
// the i-th block in input order.
//
// Cell pixels are read on the calling goroutine, then the cells are
// resized and normalized concurrently. On any failure, or if ctx is
// cancelled, the partially written buffer is released and no tensor is
// returned.
//
// Errors:
//   - InvalidInput: empty list, or a nil or empty cell.
//   - MemoryAllocationFailed: the batch would exceed MaxTensorElements.
func (c *Converter) ConvertBatch(ctx context.Context, cells []image.Image) (*BatchTensor, error) {
	const op = "convert batch"
	if len(cells) == 0 {
		return nil, vision.Errorf(vision.InvalidInput, op, "no cells")
	}
	for i, cell := range cells {
		if cell == nil || cell.Bounds().Empty() {
			return nil, vision.Errorf(vision.InvalidInput, op, "cell %d is empty", i)
		}
	}

	per := c.cellElements()
	total := int64(len(cells)) * int64(per)
	if total > int64(c.maxElems) {
		return nil, vision.Errorf(vision.MemoryAllocationFailed, op, "batch of %d cells needs %d elements, limit is %d", len(cells), total, c.maxElems)
	}

	srcs := make([]*image.NRGBA, len(cells))
	for i, cell := range cells {
		src, err := flatten(cell)
		if err != nil {
			return nil, vision.NewError(vision.TensorConversionFailed, op, fmt.Errorf("cell %d: %w", i, err))
		}
		srcs[i] = src
	}

	buf := acquireBuffer(int(total))
	data := *buf

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := c.safeNormalize(data[i*per:(i+1)*per], src); err != nil {
				return fmt.Errorf("cell %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		releaseBuffer(buf)
		return nil, vision.NewError(vision.TensorConversionFailed, op, fmt.Errorf("converting cells: %w", err))
	}

	return &BatchTensor{
		BatchSize: len(cells),
		Channels:  Channels,
		Height:    c.size,
		Width:     c.size,
		buf:       buf,
	}, nil
}

// flatten copies img into an *image.NRGBA anchored at (0,0). Pixel access
// happens on the calling goroutine; a panicking image becomes an error.
func flatten(img image.Image) (out *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("reading pixels: panic: %v", r)
		}
	}()
	b := img.Bounds()
	out = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out, nil
}

func (c *Converter) safeNormalize(dst []float32, src *image.NRGBA) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("normalizing: panic: %v", r)
		}
	}()
	c.normalizeInto(dst, src)
	return nil
}

// normalizeInto writes the C×H×W normalization of img into dst, which must
// hold exactly cellElements values.
func (c *Converter) normalizeInto(dst []float32, img *image.NRGBA) {
	resized := imaging.Resize(img, c.size, c.size, imaging.Linear)
	plane := c.size * c.size

	var scale, offset [Channels]float32
	for ch := 0; ch < Channels; ch++ {
		scale[ch] = 1 / (255 * c.std[ch])
		offset[ch] = c.mean[ch] / c.std[ch]
	}

	for y := 0; y < c.size; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < c.size; x++ {
			i := y*c.size + x
			p := row[x*4 : x*4+3 : x*4+3]
			for ch := 0; ch < Channels; ch++ {
				dst[ch*plane+i] = float32(p[ch])*scale[ch] - offset[ch]
			}
		}
	}
}
