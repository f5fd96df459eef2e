// Package detection locates a soroban frame in a preprocessed image and cuts
// the rectified frame into lanes and bead cells.
//
// A Detector runs one frame through a fixed sequence of steps:
//
//  1. DetectFrame: finds the best frame-shaped quadrilateral in the binary
//     image. Not finding one is a normal outcome and yields a zero-value
//     result rather than an error.
//  2. WarpFrame: rectifies the quadrilateral to a canonical rectangle
//     (800×200 by default) with a perspective transform.
//  3. DetectLaneCount: counts the digit lanes in the rectified image.
//  4. ExtractLanes: splits the rectified image into equal vertical strips,
//     indexed right to left.
//  5. ExtractCells: cuts each lane into one upper bead cell and four lower
//     bead cells.
//
// The region search behind DetectFrame and the sampler behind WarpFrame can
// be replaced with WithOutlineFinder and WithWarper. Builds with the gocv
// tag provide OpenCVOptions, which uses FindContours and WarpPerspective.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Frame corners are measured on pixel edges, so a frame that exactly covers
// pixels 10..19 horizontally spans X 10 to 20.
//
// # Confidence Scores
//
// Frame confidence is in [0, 1]. It grows with the frame's share of the image
// (saturating at 20%), drops as the outline departs from a quadrilateral, and
// is further weighted by how much of the outline lies on detected edges.
//
// # Limitations
//
// Detection expects the whole frame to be inside the image. Frames touching
// the image border are treated as background.
package detection
