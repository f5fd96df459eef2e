// Package pipeline runs one camera frame through preprocessing, frame
// detection, rectification, lane and cell extraction and tensor conversion.
//
// A Pipeline keeps no per-frame state: every call takes one snapshot of the
// configuration and returns a self-contained ExtractionResult. Configuration
// can be replaced at any time with SetConfig and SetDetectionParams without
// affecting calls already in flight.
//
// # Build Tags
//
// The image-processing stages sit behind the Backend interface. Normal
// builds use the native pure-Go implementation. Building with the gocv tag
// (cgo and OpenCV 4 required) moves preprocessing, contour search and
// rectification onto OpenCV. Building with the novision tag swaps in a stub
// whose every call fails with BackendError, for hosts that only need the
// surrounding API.
//
// # Interpretation
//
// A Pipeline built WithPredictor also runs the cell tensor through the
// predictor and fills ExtractionResult.Value with the composed reading.
package pipeline
