// Package tensor converts bead-cell images into normalized float32 tensors
// ready for an image classifier.
//
// Tensors use channel-major (C×H×W) layout; a batch stacks cells along a
// leading N dimension (N×C×H×W) in one contiguous buffer. Values are
// (pixel/255 - mean[c]) / std[c] with the per-channel statistics taken from
// the preprocessing configuration.
//
// Buffers come from a shared pool. A tensor exclusively owns its buffer
// until Release is called; after that Data returns nil and the buffer may
// back another tensor.
package tensor
