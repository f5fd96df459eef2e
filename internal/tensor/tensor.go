package tensor

import "sync"

// bytesPerElement is the size of one float32.
const bytesPerElement = 4

var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]float32, 0)
		return &buf
	},
}

// acquireBuffer returns a zeroed buffer of exactly n elements.
func acquireBuffer(n int) *[]float32 {
	buf := bufferPool.Get().(*[]float32)
	if cap(*buf) < n {
		*buf = make([]float32, n)
		return buf
	}
	*buf = (*buf)[:n]
	clear(*buf)
	return buf
}

// releaseBuffer returns buf to the pool.
func releaseBuffer(buf *[]float32) {
	if buf == nil {
		return
	}
	*buf = (*buf)[:0]
	bufferPool.Put(buf)
}

// CellTensor is one normalized cell image in C×H×W layout.
type CellTensor struct {
	Channels int
	Height   int
	Width    int

	buf *[]float32
}

// Size returns the element count.
func (t *CellTensor) Size() int {
	return t.Channels * t.Height * t.Width
}

// SizeBytes returns the buffer size in bytes.
func (t *CellTensor) SizeBytes() int {
	return t.Size() * bytesPerElement
}

// Data returns the tensor values, or nil once released.
func (t *CellTensor) Data() []float32 {
	if t == nil || t.buf == nil {
		return nil
	}
	return *t.buf
}

// At returns the value at channel c, row y, column x.
func (t *CellTensor) At(c, y, x int) float32 {
	return t.Data()[(c*t.Height+y)*t.Width+x]
}

// Release returns the buffer to the pool. Calling Release more than once,
// or on an empty tensor, does nothing.
func (t *CellTensor) Release() {
	if t == nil || t.buf == nil {
		return
	}
	releaseBuffer(t.buf)
	t.buf = nil
}

// BatchTensor is a batch of cells in N×C×H×W layout.
type BatchTensor struct {
	BatchSize int
	Channels  int
	Height    int
	Width     int

	buf *[]float32
}

// Size returns the element count.
func (t *BatchTensor) Size() int {
	return t.BatchSize * t.Channels * t.Height * t.Width
}

// SizeBytes returns the buffer size in bytes.
func (t *BatchTensor) SizeBytes() int {
	return t.Size() * bytesPerElement
}

// Shape returns the dimensions as [N, C, H, W].
func (t *BatchTensor) Shape() [4]int {
	return [4]int{t.BatchSize, t.Channels, t.Height, t.Width}
}

// Data returns the tensor values, or nil once released.
func (t *BatchTensor) Data() []float32 {
	if t == nil || t.buf == nil {
		return nil
	}
	return *t.buf
}

// Cell returns the slice of the buffer holding cell i.
func (t *BatchTensor) Cell(i int) []float32 {
	data := t.Data()
	if data == nil || i < 0 || i >= t.BatchSize {
		return nil
	}
	n := t.Channels * t.Height * t.Width
	return data[i*n : (i+1)*n]
}

// Release returns the buffer to the pool. Calling Release more than once,
// or on an empty tensor, does nothing.
func (t *BatchTensor) Release() {
	if t == nil || t.buf == nil {
		return
	}
	releaseBuffer(t.buf)
	t.buf = nil
}
