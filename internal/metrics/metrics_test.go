package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

var _ Recorder = Noop{}
var _ Recorder = (*Prometheus)(nil)

func counterValue(t *testing.T, p *Prometheus, name, label, value string) float64 {
	t.Helper()
	families, err := p.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestPrometheus_RecordFrame(t *testing.T) {
	p := NewPrometheus()
	p.RecordFrame(vision.None, 5, 20*time.Millisecond)
	p.RecordFrame(vision.None, 7, 30*time.Millisecond)
	p.RecordFrame(vision.FrameNotDetected, 0, 10*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, p, "soroban_frames_total", "outcome", "success"))
	assert.Equal(t, 1.0, counterValue(t, p, "soroban_frames_total", "outcome", "frame not detected"))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.RecordFrame(vision.None, 3, 15*time.Millisecond)
	p.RecordStage("preprocess", 4*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	for _, name := range []string{
		"soroban_frames_total",
		"soroban_lanes_detected",
		"soroban_frame_duration_seconds",
		`soroban_stage_duration_seconds_count{stage="preprocess"} 1`,
	} {
		assert.True(t, strings.Contains(string(body), name), "missing %s", name)
	}
}

func TestPrometheus_NewServer(t *testing.T) {
	p := NewPrometheus()
	srv := p.NewServer("127.0.0.1:0")
	assert.Equal(t, "127.0.0.1:0", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.RecordFrame(vision.BackendError, 0, time.Second)
	r.RecordStage("warp", time.Millisecond)
}
