package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "SOROBAN_LOG_LEVEL"
	EnvFormat = "SOROBAN_LOG_FORMAT"
)

// Logger wraps slog.Logger with soroban-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSON creates a Logger that writes JSON records to w.
func NewJSON(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewText creates a Logger that writes human-readable records to w.
func NewText(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Noop creates a Logger that discards everything.
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to a
// slog level. An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// FromEnv builds a stderr Logger from SOROBAN_LOG_LEVEL and
// SOROBAN_LOG_FORMAT (text or json). Unknown levels fall back to info.
func FromEnv() *Logger {
	level, err := ParseLevel(os.Getenv(EnvLevel))
	var l *Logger
	if strings.EqualFold(os.Getenv(EnvFormat), "json") {
		l = NewJSON(os.Stderr, level)
	} else {
		l = NewText(os.Stderr, level)
	}
	if err != nil {
		l.Warn("ignoring log level", "error", err)
	}
	return l
}

// WithFrame adds a frame_id field to the logger.
func (l *Logger) WithFrame(id string) *Logger {
	return &Logger{Logger: l.Logger.With("frame_id", id)}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// LogStage logs the duration of one pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage string, elapsed time.Duration) {
	l.DebugContext(ctx, "stage completed",
		"stage", stage,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// LogExtraction logs the outcome of one frame. Frames without a detected
// soroban are expected during normal operation and log at debug level;
// other failures log at warn.
func (l *Logger) LogExtraction(ctx context.Context, lanes int, elapsed time.Duration, err error) {
	switch code := vision.CodeOf(err); code {
	case vision.None:
		l.InfoContext(ctx, "extraction completed",
			"lanes", lanes,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	case vision.FrameNotDetected:
		l.DebugContext(ctx, "frame not detected",
			"elapsed_ms", elapsed.Milliseconds(),
		)
	default:
		l.WarnContext(ctx, "extraction failed",
			"code", code.String(),
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
	}
}
