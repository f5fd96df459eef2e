// Package metrics records pipeline outcomes and stage timings.
//
// The pipeline talks to a Recorder. Noop discards everything; Prometheus
// keeps counters and histograms in a private registry and serves them over
// HTTP.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	// RecordFrame is called once per processed frame with its outcome.
	RecordFrame(code vision.ErrorCode, lanes int, elapsed time.Duration)

	// RecordStage is called after each pipeline stage.
	RecordStage(stage string, elapsed time.Duration)
}

// Noop is a Recorder that does nothing.
type Noop struct{}

func (Noop) RecordFrame(vision.ErrorCode, int, time.Duration) {}
func (Noop) RecordStage(string, time.Duration)                 {}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	registry *prometheus.Registry

	frames   *prometheus.CounterVec
	lanes    prometheus.Histogram
	duration prometheus.Histogram
	stages   *prometheus.HistogramVec
}

// NewPrometheus creates a Recorder with its own registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soroban_frames_total",
			Help: "Frames processed, by outcome",
		}, []string{"outcome"}),
		lanes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "soroban_lanes_detected",
			Help:    "Lanes found in successfully processed frames",
			Buckets: prometheus.LinearBuckets(1, 2, 14),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "soroban_frame_duration_seconds",
			Help:    "End-to-end frame processing time",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soroban_stage_duration_seconds",
			Help:    "Per-stage processing time",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"stage"}),
	}
	p.registry.MustRegister(p.frames, p.lanes, p.duration, p.stages)
	return p
}

// RecordFrame implements Recorder.
func (p *Prometheus) RecordFrame(code vision.ErrorCode, lanes int, elapsed time.Duration) {
	outcome := "success"
	if code != vision.None {
		outcome = code.String()
	}
	p.frames.WithLabelValues(outcome).Inc()
	p.duration.Observe(elapsed.Seconds())
	if code == vision.None {
		p.lanes.Observe(float64(lanes))
	}
}

// RecordStage implements Recorder.
func (p *Prometheus) RecordStage(stage string, elapsed time.Duration) {
	p.stages.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the Prometheus HTTP handler.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing /metrics on addr.
func (p *Prometheus) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Serve runs the metrics endpoint until the server is closed.
func (p *Prometheus) Serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
