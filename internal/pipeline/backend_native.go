//go:build !novision && !gocv

package pipeline

// DefaultBackend returns the backend compiled into this build.
func DefaultBackend() Backend {
	return nativeBackend{}
}
