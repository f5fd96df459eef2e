//go:build !novision

package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/interpret"
	"github.com/ironsheep/soroban-vision/internal/pipeline"
	"github.com/ironsheep/soroban-vision/internal/tensor"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// frameBuffer draws a black rectangular outline on white as tightly packed
// RGB24 rows.
func frameBuffer(width, height, x0, y0, x1, y1, stroke int) imaging.PixelBuffer {
	data := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			inFrame := x >= x0 && x < x1 && y >= y0 && y < y1
			inInner := x >= x0+stroke && x < x1-stroke && y >= y0+stroke && y < y1-stroke
			v := byte(255)
			if inFrame && !inInner {
				v = 0
			}
			i := (y*width + x) * 3
			data[i], data[i+1], data[i+2] = v, v, v
		}
	}
	return imaging.PixelBuffer{Width: width, Height: height, Format: imaging.FormatRGB24, Data: data}
}

func TestRegistry_ProcessSuccess(t *testing.T) {
	r := NewRegistry()
	h := r.Create()

	dp := config.DefaultDetectionParams()
	dp.ExpectedLaneCount = 1
	require.Equal(t, vision.None, r.SetDetectionParams(h, dp))
	pc := config.DefaultPreprocessingConfig()
	pc.CellOutputSize = 32
	require.Equal(t, vision.None, r.SetConfig(h, pc))

	var res Result
	code := r.Process(h, frameBuffer(1500, 400, 150, 100, 1350, 300, 10), &res)
	require.Equal(t, vision.None, code, res.ErrorMessage)

	assert.True(t, res.Success)
	assert.True(t, res.Frame.Detected)
	assert.Equal(t, int32(1), res.LaneCount)
	require.Len(t, res.Lanes, 1)
	assert.Equal(t, int32(0), res.Lanes[0].DigitIndex)
	assert.Equal(t, int32(5), res.TotalCells)
	assert.Equal(t, int32(5), res.TensorBatchSize)
	assert.Equal(t, int32(3), res.TensorChannels)
	assert.Equal(t, int32(32), res.TensorHeight)
	assert.Equal(t, int32(32), res.TensorWidth)
	assert.Len(t, res.TensorData, 5*3*32*32)
	assert.Greater(t, res.PreprocessingTimeMs, 0.0)

	FreeResult(&res)
	assert.Nil(t, res.TensorData)
	assert.False(t, res.Success)
	FreeResult(&res)
}

func TestRegistry_ProcessNotDetected(t *testing.T) {
	r := NewRegistry()
	h := r.Create()

	var res Result
	code := r.Process(h, frameBuffer(320, 240, 0, 0, 0, 0, 0), &res)
	defer FreeResult(&res)

	assert.Equal(t, vision.FrameNotDetected, code)
	assert.False(t, res.Frame.Detected)
	assert.Nil(t, res.Lanes)
}

func TestRegistry_TensorDataOutlivesFree(t *testing.T) {
	r := NewRegistry()
	h := r.Create()
	dp := config.DefaultDetectionParams()
	dp.ExpectedLaneCount = 1
	require.Equal(t, vision.None, r.SetDetectionParams(h, dp))
	pc := config.DefaultPreprocessingConfig()
	pc.CellOutputSize = 16
	require.Equal(t, vision.None, r.SetConfig(h, pc))
	buf := frameBuffer(1500, 400, 150, 100, 1350, 300, 10)

	var first Result
	require.Equal(t, vision.None, r.Process(h, buf, &first), first.ErrorMessage)
	kept := first.TensorData
	snapshot := append([]float32(nil), kept...)
	FreeResult(&first)

	var second Result
	require.Equal(t, vision.None, r.Process(h, buf, &second), second.ErrorMessage)
	for i := range second.TensorData {
		second.TensorData[i] = 42
	}
	FreeResult(&second)

	assert.Equal(t, snapshot, kept)
}

func TestRegistry_ProcessWithPredictor(t *testing.T) {
	lowered, err := vision.NewCellPrediction([]float32{0.2, 0.8, 0})
	require.NoError(t, err)
	raised, err := vision.NewCellPrediction([]float32{0.8, 0.2, 0})
	require.NoError(t, err)
	pred := interpret.PredictorFunc(func(context.Context, *tensor.BatchTensor) ([]vision.CellPrediction, error) {
		// Upper bead raised, three lower beads raised: 3.
		return []vision.CellPrediction{raised, raised, raised, raised, lowered}, nil
	})

	r := NewRegistry(pipeline.WithPredictor(pred))
	h := r.Create()
	dp := config.DefaultDetectionParams()
	dp.ExpectedLaneCount = 1
	require.Equal(t, vision.None, r.SetDetectionParams(h, dp))
	pc := config.DefaultPreprocessingConfig()
	pc.CellOutputSize = 16
	require.Equal(t, vision.None, r.SetConfig(h, pc))

	var res Result
	require.Equal(t, vision.None, r.Process(h, frameBuffer(1500, 400, 150, 100, 1350, 300, 10), &res), res.ErrorMessage)
	defer FreeResult(&res)

	assert.Equal(t, "3", res.Value)
	require.Len(t, res.Lanes, 1)
	assert.Equal(t, int32(3), res.Lanes[0].Value)
	assert.InDelta(t, 0.8, res.Lanes[0].Confidence, 1e-4)
}
