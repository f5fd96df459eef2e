package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogExtraction_Levels(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantMsg   string
	}{
		{"success", nil, "INFO", "extraction completed"},
		{"not detected", vision.ErrFrameNotDetected, "DEBUG", "frame not detected"},
		{"failure", vision.Errorf(vision.InvalidInput, "convert", "bad buffer"), "WARN", "extraction failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewJSON(&buf, slog.LevelDebug).WithFrame("abc")
			l.LogExtraction(context.Background(), 3, 12*time.Millisecond, tt.err)

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, tt.wantLevel, rec["level"])
			assert.Equal(t, tt.wantMsg, rec["msg"])
			assert.Equal(t, "abc", rec["frame_id"])
		})
	}
}

func TestLogExtraction_NotDetectedHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelInfo)
	l.LogExtraction(context.Background(), 0, time.Millisecond, vision.ErrFrameNotDetected)
	assert.Empty(t, buf.String())
}

func TestLogStage(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelDebug).WithComponent("pipeline")
	l.LogStage(context.Background(), "preprocess", 5*time.Millisecond)

	out := buf.String()
	assert.True(t, strings.Contains(out, "stage=preprocess"), out)
	assert.True(t, strings.Contains(out, "component=pipeline"), out)
}

func TestNoop(t *testing.T) {
	l := Noop()
	l.Error("should be discarded")
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	l := FromEnv()
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))

	t.Setenv(EnvLevel, "bogus")
	l = FromEnv()
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
}
