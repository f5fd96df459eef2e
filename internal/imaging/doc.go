// Package imaging provides the image-normalisation stage of the soroban
// extraction pipeline.
//
// The package turns a raw camera frame into three derived images that the
// detection stage consumes:
//
//   - Normalized: the resized, white-balanced and denoised colour image
//     (*image.NRGBA). Lanes and cells are cut from this image.
//   - Binary: an adaptive-threshold map (*image.Gray, values 0 or 255)
//     cleaned by morphological close then open. Frame candidates are found
//     here.
//   - Edges: a Canny edge map (*image.Gray, 255 on edges) computed from the
//     contrast-enhanced grayscale image.
//
// All operations work with standard Go image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward. Images produced by this package always have their
// bounds anchored at (0,0).
//
// # Input Buffers
//
// ConvertFromBuffer accepts interleaved 8-bit BGRA, RGBA and RGB buffers as
// delivered by camera APIs. Planar (multi-plane YUV) buffers are rejected
// with an InvalidInput error; callers must convert them first.
//
// # Thread Safety
//
// Every function is pure: inputs are never modified and outputs are freshly
// allocated. Operations can be called concurrently on the same source image.
// A Preprocessor holds only an immutable configuration snapshot and is safe
// for concurrent use.
//
// # Error Handling
//
// Functions return *vision.Error values for invalid inputs such as:
//   - Zero-sized images or buffers
//   - Unsupported pixel formats or planar buffers
//   - Regions outside the image bounds
//
// Failures inside an algorithm (including panics recovered by
// Preprocessor.Preprocess) are reported as BackendError.
//
// # Libraries
//
// Resizing and cropping use github.com/disintegration/imaging. Gaussian
// smoothing and morphology use github.com/anthonynsimon/bild. White balance
// scaling uses github.com/lucasb-eyer/go-colorful. CLAHE, the bilateral
// filter and Canny edge detection are implemented here.
package imaging
