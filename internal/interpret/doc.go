// Package interpret turns per-cell classifications into digit values.
//
// The pipeline stops at a batch tensor; a Predictor (usually an inference
// engine outside this module) classifies every cell as upper, lower or
// empty. This package maps those states onto soroban arithmetic:
//
//   - the upper bead is worth 5 when it sits in the lower part of its cell,
//     resting against the beam
//   - each lower bead is worth 1 when it sits in the upper part of its cell,
//     pushed up against the beam
//   - an empty cell counts nothing and lowers the lane confidence
//
// pipeline.WithPredictor runs Read and Compose as the last pipeline stage.
//
// Lanes are never modified in place. ApplyPredictions returns new LaneInfo
// values.
package interpret
