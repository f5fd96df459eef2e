package interpret

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/soroban-vision/internal/tensor"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Predictor classifies every cell of a batch tensor. It must return exactly
// one prediction per cell, in batch order.
type Predictor interface {
	Predict(ctx context.Context, batch *tensor.BatchTensor) ([]vision.CellPrediction, error)
}

// PredictorFunc adapts an ordinary function to the Predictor interface.
type PredictorFunc func(ctx context.Context, batch *tensor.BatchTensor) ([]vision.CellPrediction, error)

// Predict calls f(ctx, batch).
func (f PredictorFunc) Predict(ctx context.Context, batch *tensor.BatchTensor) ([]vision.CellPrediction, error) {
	return f(ctx, batch)
}

// Read runs p over batch and applies the predictions to lanes.
func Read(ctx context.Context, p Predictor, lanes []vision.LaneInfo, batch *tensor.BatchTensor) ([]vision.LaneInfo, error) {
	if p == nil || batch == nil {
		return nil, vision.Errorf(vision.InvalidInput, "read", "missing predictor or tensor")
	}
	if batch.BatchSize != len(lanes)*vision.CellsPerLane {
		return nil, vision.Errorf(vision.InvalidInput, "read", "tensor holds %d cells, lanes need %d", batch.BatchSize, len(lanes)*vision.CellsPerLane)
	}
	preds, err := p.Predict(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("predicting cells: %w", err)
	}
	return ApplyPredictions(lanes, preds)
}

// PredictionsFromLogits converts raw model output, laid out as N rows of
// [upper, lower, empty] scores, into predictions using a softmax per row.
func PredictionsFromLogits(logits []float32) ([]vision.CellPrediction, error) {
	const op = "predictions from logits"
	if len(logits) == 0 || len(logits)%vision.NumCellStates != 0 {
		return nil, vision.Errorf(vision.InvalidInput, op, "%d values is not a multiple of %d", len(logits), vision.NumCellStates)
	}

	preds := make([]vision.CellPrediction, 0, len(logits)/vision.NumCellStates)
	row := make([]float64, vision.NumCellStates)
	probs := make([]float32, vision.NumCellStates)
	for i := 0; i < len(logits); i += vision.NumCellStates {
		for j := range row {
			row[j] = float64(logits[i+j])
			if math.IsNaN(row[j]) || math.IsInf(row[j], 0) {
				return nil, vision.Errorf(vision.InvalidInput, op, "non-finite score at %d", i+j)
			}
		}
		lse := floats.LogSumExp(row)
		for j, v := range row {
			probs[j] = float32(math.Exp(v - lse))
		}
		pred, err := vision.NewCellPrediction(probs)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}
