// Package vision defines the data model shared by every stage of the soroban
// extraction pipeline.
//
// The types here carry no behaviour beyond construction checks. They describe
// what the pipeline found in a single camera frame:
//
//   - Rect, Point and Quadrilateral describe geometry in pixel coordinates
//     where (0,0) is the top-left corner and Y grows downward.
//   - FrameDetectionResult describes the detected soroban frame.
//   - LaneInfo describes one vertical digit column (a "lane").
//   - CellState and CellPrediction describe a classified bead cell.
//
// # Errors
//
// Every failure that crosses a package boundary is an *Error carrying one of
// the closed set of ErrorCode values. Callers test for a category with
// errors.Is against the sentinel values (ErrInvalidInput, ErrFrameNotDetected,
// and so on) or read the code with CodeOf.
//
// # Ownership
//
// Values produced for a frame belong to that frame. Nothing in this package is
// shared between invocations, so all types are safe to hand to other
// goroutines once the producing call has returned.
package vision
