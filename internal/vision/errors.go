package vision

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed set of pipeline failure categories.
type ErrorCode int

const (
	None ErrorCode = iota
	InvalidInput
	FrameNotDetected
	LaneExtractionFailed
	TensorConversionFailed
	MemoryAllocationFailed
	// BackendError reports a failure inside the image-processing backend,
	// including recovered panics and builds without a backend.
	BackendError
)

func (c ErrorCode) String() string {
	switch c {
	case None:
		return "none"
	case InvalidInput:
		return "invalid input"
	case FrameNotDetected:
		return "frame not detected"
	case LaneExtractionFailed:
		return "lane extraction failed"
	case TensorConversionFailed:
		return "tensor conversion failed"
	case MemoryAllocationFailed:
		return "memory allocation failed"
	case BackendError:
		return "backend error"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

var (
	ErrInvalidInput           = &Error{Code: InvalidInput}
	ErrFrameNotDetected       = &Error{Code: FrameNotDetected}
	ErrLaneExtractionFailed   = &Error{Code: LaneExtractionFailed}
	ErrTensorConversionFailed = &Error{Code: TensorConversionFailed}
	ErrMemoryAllocationFailed = &Error{Code: MemoryAllocationFailed}
	ErrBackend                = &Error{Code: BackendError}
)

// Error is a categorised pipeline failure.
//
// The underlying cause (if any) can be accessed via errors.Unwrap.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Code.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError wraps err under code. A nil err is allowed.
func NewError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// Errorf builds an *Error whose cause is a formatted message.
func Errorf(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// CodeOf returns the code carried by err. A nil error is None and an error
// outside the taxonomy is reported as BackendError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return None
	}
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code
	}
	return BackendError
}
