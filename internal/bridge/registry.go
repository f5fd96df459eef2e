package bridge

import (
	"context"
	"sync"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/pipeline"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// Handle identifies a pipeline instance. The zero Handle is never valid.
type Handle uint64

// Registry maps handles to pipelines.
type Registry struct {
	mu        sync.RWMutex
	next      Handle
	instances map[Handle]*pipeline.Pipeline
	opts      []pipeline.Option
}

// NewRegistry creates an empty registry. opts are applied to every pipeline
// it creates.
func NewRegistry(opts ...pipeline.Option) *Registry {
	return &Registry{
		instances: make(map[Handle]*pipeline.Pipeline),
		opts:      opts,
	}
}

// Create makes a pipeline with the default configuration.
func (r *Registry) Create() Handle {
	h, _ := r.CreateWithConfig(config.Default())
	return h
}

// CreateWithConfig makes a pipeline with cfg. It returns the zero Handle and
// an InvalidInput error if cfg does not validate.
func (r *Registry) CreateWithConfig(cfg config.Config) (Handle, error) {
	p, err := pipeline.New(cfg, r.opts...)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	r.next++
	h := r.next
	r.instances[h] = p
	r.mu.Unlock()
	return h, nil
}

// Destroy removes a pipeline. Unknown handles are ignored.
func (r *Registry) Destroy(h Handle) {
	r.mu.Lock()
	delete(r.instances, h)
	r.mu.Unlock()
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

func (r *Registry) lookup(h Handle) (*pipeline.Pipeline, bool) {
	r.mu.RLock()
	p, ok := r.instances[h]
	r.mu.RUnlock()
	return p, ok
}

// Process runs one frame and fills out. out is overwritten without being
// freed; call FreeResult on it first if it holds a previous result.
func (r *Registry) Process(h Handle, buf imaging.PixelBuffer, out *Result) vision.ErrorCode {
	if out == nil {
		return vision.InvalidInput
	}
	*out = Result{}
	p, ok := r.lookup(h)
	if !ok {
		out.ErrorCode = vision.InvalidInput
		out.ErrorMessage = "unknown handle"
		return vision.InvalidInput
	}
	res := p.ProcessBuffer(context.Background(), buf)
	out.fill(res)
	return out.ErrorCode
}

// SetConfig replaces the preprocessing configuration of h.
func (r *Registry) SetConfig(h Handle, cfg config.PreprocessingConfig) vision.ErrorCode {
	p, ok := r.lookup(h)
	if !ok {
		return vision.InvalidInput
	}
	return vision.CodeOf(p.SetConfig(cfg))
}

// SetDetectionParams replaces the detection parameters of h.
func (r *Registry) SetDetectionParams(h Handle, params config.DetectionParams) vision.ErrorCode {
	p, ok := r.lookup(h)
	if !ok {
		return vision.InvalidInput
	}
	return vision.CodeOf(p.SetDetectionParams(params))
}

var defaultRegistry = NewRegistry()

// Create makes a pipeline in the default registry.
func Create() Handle { return defaultRegistry.Create() }

// CreateWithConfig makes a pipeline with cfg in the default registry.
func CreateWithConfig(cfg config.Config) (Handle, error) {
	return defaultRegistry.CreateWithConfig(cfg)
}

// Destroy removes a pipeline from the default registry.
func Destroy(h Handle) { defaultRegistry.Destroy(h) }

// Process runs one frame on a pipeline in the default registry.
func Process(h Handle, buf imaging.PixelBuffer, out *Result) vision.ErrorCode {
	return defaultRegistry.Process(h, buf, out)
}

// SetConfig updates a pipeline in the default registry.
func SetConfig(h Handle, cfg config.PreprocessingConfig) vision.ErrorCode {
	return defaultRegistry.SetConfig(h, cfg)
}

// SetDetectionParams updates a pipeline in the default registry.
func SetDetectionParams(h Handle, params config.DetectionParams) vision.ErrorCode {
	return defaultRegistry.SetDetectionParams(h, params)
}
