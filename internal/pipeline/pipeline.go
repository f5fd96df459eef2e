package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/interpret"
	"github.com/ironsheep/soroban-vision/internal/logging"
	"github.com/ironsheep/soroban-vision/internal/metrics"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Stage names used in logs and metrics.
const (
	StageConvert    = "convert"
	StagePreprocess = "preprocess"
	StageDetect     = "detect"
	StageWarp       = "warp"
	StageLanes      = "lanes"
	StageCells      = "cells"
	StageTensor     = "tensor"
	StageInterpret  = "interpret"
)

// Pipeline turns camera frames into per-cell tensors.
// It is safe for concurrent use.
type Pipeline struct {
	cfg       atomic.Pointer[config.Config]
	backend   Backend
	predictor interpret.Predictor
	logger    *logging.Logger
	metrics   metrics.Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.metrics = r
		}
	}
}

// WithBackend replaces the backend compiled into the build.
func WithBackend(b Backend) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.backend = b
		}
	}
}

// WithPredictor classifies the extracted cells after the tensor stage, so
// that every lane carries its bead states, value and confidence and the
// result carries the composed number. A prediction failure fails the frame.
func WithPredictor(pr interpret.Predictor) Option {
	return func(p *Pipeline) {
		p.predictor = pr
	}
}

// New validates cfg and creates a Pipeline.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, vision.NewError(vision.InvalidInput, "new pipeline", err)
	}
	p := &Pipeline{
		backend: DefaultBackend(),
		logger:  logging.Noop(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("pipeline")
	p.cfg.Store(&cfg)
	return p, nil
}

// Config returns the current configuration snapshot.
func (p *Pipeline) Config() config.Config {
	return *p.cfg.Load()
}

// Backend returns the name of the active backend.
func (p *Pipeline) Backend() string {
	return p.backend.Name()
}

// SetConfig replaces the preprocessing configuration. Calls already running
// keep the snapshot they started with.
func (p *Pipeline) SetConfig(pc config.PreprocessingConfig) error {
	if err := pc.Validate(); err != nil {
		return vision.NewError(vision.InvalidInput, "set config", err)
	}
	p.update(func(c *config.Config) { c.Preprocessing = pc })
	return nil
}

// SetDetectionParams replaces the detection parameters.
func (p *Pipeline) SetDetectionParams(dp config.DetectionParams) error {
	if err := dp.Validate(); err != nil {
		return vision.NewError(vision.InvalidInput, "set detection params", err)
	}
	p.update(func(c *config.Config) { c.Detection = dp })
	return nil
}

// Derive returns a new Pipeline sharing p's backend, predictor, logger and
// metrics, with a copy of the current configuration changed by mutate.
func (p *Pipeline) Derive(mutate func(*config.Config)) (*Pipeline, error) {
	cfg := p.Config()
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, vision.NewError(vision.InvalidInput, "derive pipeline", err)
	}
	d := &Pipeline{backend: p.backend, predictor: p.predictor, logger: p.logger, metrics: p.metrics}
	d.cfg.Store(&cfg)
	return d, nil
}

func (p *Pipeline) update(fn func(*config.Config)) {
	for {
		old := p.cfg.Load()
		next := *old
		fn(&next)
		if p.cfg.CompareAndSwap(old, &next) {
			return
		}
	}
}

// ProcessBuffer converts a raw camera buffer and runs the full pipeline.
// It never returns nil.
//
// ctx is checked before every stage. A cancelled or expired context fails
// the frame with code BackendError, and errors.Is(res.Err, ctx.Err())
// reports the cause.
func (p *Pipeline) ProcessBuffer(ctx context.Context, buf imaging.PixelBuffer) *ExtractionResult {
	return p.run(ctx, func() (image.Image, error) {
		return imaging.ConvertFromBuffer(buf)
	})
}

// ProcessImage runs the full pipeline on a decoded image. It never returns
// nil. Cancellation behaves as in ProcessBuffer.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image) *ExtractionResult {
	return p.run(ctx, func() (image.Image, error) {
		if img == nil || img.Bounds().Empty() {
			return nil, vision.Errorf(vision.InvalidInput, "process image", "empty image")
		}
		return img, nil
	})
}

// Preprocess runs only the preprocessing stage with the current
// configuration.
func (p *Pipeline) Preprocess(img image.Image) (pre *imaging.Preprocessed, err error) {
	defer recoverBackend("preprocess", &err)
	return p.backend.Preprocess(p.Config().Preprocessing, img)
}

// DetectFrame preprocesses img and looks for the soroban frame. The result is
// in source-image coordinates.
func (p *Pipeline) DetectFrame(img image.Image) (frame vision.FrameDetectionResult, err error) {
	defer recoverBackend("detect frame", &err)

	cfg := p.Config()
	pre, err := p.backend.Preprocess(cfg.Preprocessing, img)
	if err != nil {
		return vision.FrameDetectionResult{}, err
	}
	det, err := p.backend.Detector(cfg.Detection)
	if err != nil {
		return vision.FrameDetectionResult{}, err
	}
	frame = det.DetectFrame(pre.Normalized, pre.Binary, pre.Edges)
	return toSource(frame, pre.Scale), nil
}

func recoverBackend(op string, err *error) {
	if r := recover(); r != nil {
		*err = vision.NewError(vision.BackendError, op, fmt.Errorf("panic: %v", r))
	}
}

// toSource maps a working-resolution frame back to source coordinates.
func toSource(f vision.FrameDetectionResult, scale float64) vision.FrameDetectionResult {
	if !f.Detected {
		return f
	}
	f.Corners = f.Corners.Scale(scale)
	f.BoundingBox = f.BoundingBox.Scale(scale)
	return f
}

func (p *Pipeline) run(ctx context.Context, load func() (image.Image, error)) (res *ExtractionResult) {
	start := time.Now()
	res = &ExtractionResult{FrameID: uuid.NewString()}
	log := p.logger.WithFrame(res.FrameID)

	defer func() {
		if r := recover(); r != nil {
			res.Release()
			res.Lanes = nil
			res.Value = ""
			res.Warped = nil
			res.TotalCells = 0
			res.Success = false
			res.Err = vision.NewError(vision.BackendError, "process", fmt.Errorf("panic: %v", r))
		}
		elapsed := time.Since(start)
		res.PreprocessingTimeMs = float64(elapsed.Microseconds()) / 1000
		log.LogExtraction(ctx, len(res.Lanes), elapsed, res.Err)
		p.metrics.RecordFrame(res.Code(), len(res.Lanes), elapsed)
	}()

	if err := p.extract(ctx, log, res, load); err != nil {
		res.Release()
		res.Lanes = nil
		res.Value = ""
		res.Warped = nil
		res.TotalCells = 0
		res.Err = err
		return res
	}
	res.Success = true
	return res
}

// stage times fn and reports it.
func (p *Pipeline) stage(ctx context.Context, log *logging.Logger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return vision.NewError(vision.BackendError, name, err)
	}
	t := time.Now()
	err := fn()
	elapsed := time.Since(t)
	log.LogStage(ctx, name, elapsed)
	p.metrics.RecordStage(name, elapsed)
	return err
}

func (p *Pipeline) extract(ctx context.Context, log *logging.Logger, res *ExtractionResult, load func() (image.Image, error)) error {
	cfg := p.Config()

	var img image.Image
	if err := p.stage(ctx, log, StageConvert, func() (err error) {
		img, err = load()
		return err
	}); err != nil {
		return err
	}

	var pre *imaging.Preprocessed
	if err := p.stage(ctx, log, StagePreprocess, func() (err error) {
		pre, err = p.backend.Preprocess(cfg.Preprocessing, img)
		return err
	}); err != nil {
		return err
	}
	res.WorkingScale = pre.Scale

	det, err := p.backend.Detector(cfg.Detection)
	if err != nil {
		return err
	}

	var frame vision.FrameDetectionResult
	if err := p.stage(ctx, log, StageDetect, func() error {
		frame = det.DetectFrame(pre.Normalized, pre.Binary, pre.Edges)
		if !frame.Detected {
			return vision.ErrFrameNotDetected
		}
		return nil
	}); err != nil {
		return err
	}

	var warped *image.NRGBA
	if err := p.stage(ctx, log, StageWarp, func() (err error) {
		warped, err = det.WarpFrame(pre.Normalized, frame, cfg.Detection.WarpWidth, cfg.Detection.WarpHeight)
		return err
	}); err != nil {
		res.Frame = toSource(frame, pre.Scale)
		return err
	}

	var lanes []vision.LaneInfo
	if err := p.stage(ctx, log, StageLanes, func() (err error) {
		frame.LaneCount = det.DetectLaneCount(warped)
		lanes, err = det.ExtractLanes(warped, frame.LaneCount)
		return err
	}); err != nil {
		res.Frame = toSource(frame, pre.Scale)
		return err
	}
	frame.LaneCount = len(lanes)
	res.Frame = toSource(frame, pre.Scale)

	cells := make([]image.Image, 0, len(lanes)*vision.CellsPerLane)
	if err := p.stage(ctx, log, StageCells, func() error {
		for _, lane := range lanes {
			laneImg, err := det.CropLane(warped, lane)
			if err != nil {
				return err
			}
			laneCells, err := det.ExtractCells(laneImg, lane)
			if err != nil {
				return err
			}
			for _, c := range laneCells {
				cells = append(cells, c)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	conv, err := p.backend.Converter(cfg.Preprocessing)
	if err != nil {
		return err
	}
	if err := p.stage(ctx, log, StageTensor, func() (err error) {
		res.Tensor, err = conv.ConvertBatch(ctx, cells)
		return err
	}); err != nil {
		return err
	}

	if p.predictor != nil {
		if err := p.stage(ctx, log, StageInterpret, func() (err error) {
			lanes, err = interpret.Read(ctx, p.predictor, lanes, res.Tensor)
			if err != nil {
				return err
			}
			res.Value, err = interpret.Compose(lanes)
			return err
		}); err != nil {
			return err
		}
	}

	res.Lanes = lanes
	res.TotalCells = res.Tensor.BatchSize
	res.Warped = warped
	return nil
}
