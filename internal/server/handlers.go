package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/pipeline"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "soroban_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall runs one tool. Tool failures become a JSON-RPC error with
// code -32000. A frame without a detected soroban is not a failure: the
// result reports success false with the error code.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	return resultResponse(req.ID, textContent(result))
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "soroban_extract":
		return s.handleExtract(ctx, args)
	case "soroban_detect_frame":
		return s.handleDetectFrame(args)
	case "soroban_preprocess":
		return s.handlePreprocess(args)
	case "soroban_debug_overlay":
		return s.handleDebugOverlay(ctx, args)
	case "soroban_config":
		return s.pipeline.Config(), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// loadImage reads path fresh on every call.
func loadImage(path string) (image.Image, *imaging.ImageInfo, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}
	return imaging.LoadFile(path)
}

// pipelineFor returns the server pipeline, or a derived one when the call
// fixes the lane count.
func (s *Server) pipelineFor(expectedLanes int) (*pipeline.Pipeline, error) {
	if expectedLanes == 0 {
		return s.pipeline, nil
	}
	return s.pipeline.Derive(func(c *config.Config) {
		c.Detection.ExpectedLaneCount = expectedLanes
	})
}

// === Extraction ===

type extractArgs struct {
	Path              string `json:"path"`
	ExpectedLaneCount int    `json:"expected_lane_count"`
}

// ExtractResult is the soroban_extract response.
type ExtractResult struct {
	FrameID             string                      `json:"frame_id"`
	Success             bool                        `json:"success"`
	Value               string                      `json:"value,omitempty"`
	ErrorCode           string                      `json:"error_code,omitempty"`
	Error               string                      `json:"error,omitempty"`
	Image               *imaging.ImageInfo          `json:"image"`
	Frame               vision.FrameDetectionResult `json:"frame"`
	Lanes               []vision.LaneInfo           `json:"lanes,omitempty"`
	TotalCells          int                         `json:"total_cells"`
	TensorShape         []int                       `json:"tensor_shape,omitempty"`
	TensorBytes         int                         `json:"tensor_bytes,omitempty"`
	WorkingScale        float64                     `json:"working_scale"`
	PreprocessingTimeMs float64                     `json:"preprocessing_time_ms"`
}

// NewExtractResult summarises res for JSON output. info may be nil.
func NewExtractResult(res *pipeline.ExtractionResult, info *imaging.ImageInfo) *ExtractResult {
	out := &ExtractResult{
		FrameID:             res.FrameID,
		Success:             res.Success,
		Value:               res.Value,
		Image:               info,
		Frame:               res.Frame,
		Lanes:               res.Lanes,
		TotalCells:          res.TotalCells,
		WorkingScale:        res.WorkingScale,
		PreprocessingTimeMs: res.PreprocessingTimeMs,
	}
	if !res.Success {
		out.ErrorCode = res.Code().String()
		out.Error = res.ErrorMessage()
	}
	if res.Tensor != nil {
		shape := res.Tensor.Shape()
		out.TensorShape = shape[:]
		out.TensorBytes = res.Tensor.SizeBytes()
	}
	return out
}

func (s *Server) handleExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.ExpectedLaneCount)
	if err != nil {
		return nil, err
	}
	img, info, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	res := p.ProcessImage(ctx, img)
	defer res.Release()
	return NewExtractResult(res, info), nil
}

// === Frame detection ===

type pathArgs struct {
	Path string `json:"path"`
}

// DetectFrameResult is the soroban_detect_frame response.
type DetectFrameResult struct {
	Image *imaging.ImageInfo          `json:"image"`
	Frame vision.FrameDetectionResult `json:"frame"`
}

func (s *Server) handleDetectFrame(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, info, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	frame, err := s.pipeline.DetectFrame(img)
	if err != nil {
		return nil, err
	}
	return &DetectFrameResult{Image: info, Frame: frame}, nil
}

// === Preprocessing ===

type preprocessArgs struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
}

// ImageResult carries an encoded image.
type ImageResult struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Scale       float64  `json:"scale,omitempty"`
	ImageBase64 string   `json:"image_base64"`
	MimeType    string   `json:"mime_type"`
	Labels      []string `json:"labels,omitempty"`
}

func newImageResult(img image.Image) (*ImageResult, error) {
	encoded, err := imaging.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &ImageResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func (s *Server) handlePreprocess(args json.RawMessage) (interface{}, error) {
	var a preprocessArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Stage == "" {
		a.Stage = "normalized"
	}
	img, _, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	pre, err := s.pipeline.Preprocess(img)
	if err != nil {
		return nil, err
	}

	var stage image.Image
	switch a.Stage {
	case "normalized":
		stage = pre.Normalized
	case "enhanced":
		stage = pre.Enhanced
	case "binary":
		stage = pre.Binary
	case "edges":
		stage = pre.Edges
	default:
		return nil, fmt.Errorf("unknown stage: %s", a.Stage)
	}

	out, err := newImageResult(stage)
	if err != nil {
		return nil, err
	}
	out.Scale = pre.Scale
	return out, nil
}

// === Debug overlay ===

type overlayArgs struct {
	Path              string `json:"path"`
	ExpectedLaneCount int    `json:"expected_lane_count"`
	View              string `json:"view"`
	FrameColor        string `json:"frame_color"`
	LaneColor         string `json:"lane_color"`
}

func (s *Server) handleDebugOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.View == "" {
		a.View = "source"
	}
	if a.View != "source" && a.View != "rectified" {
		return nil, fmt.Errorf("unknown view: %s", a.View)
	}
	p, err := s.pipelineFor(a.ExpectedLaneCount)
	if err != nil {
		return nil, err
	}
	img, _, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	res := p.ProcessImage(ctx, img)
	defer res.Release()

	labels := []string{
		fmt.Sprintf("Lanes: %d", res.Frame.LaneCount),
		fmt.Sprintf("Time: %dms", int(res.PreprocessingTimeMs)),
	}
	if !res.Success {
		labels = append(labels, res.Code().String())
	}
	opts := imaging.OverlayOptions{
		Labels:     labels,
		FrameColor: a.FrameColor,
		LaneColor:  a.LaneColor,
	}

	base := img
	if a.View == "rectified" {
		if res.Warped == nil {
			return nil, fmt.Errorf("no rectified frame: %v", res.Err)
		}
		base = res.Warped
		for _, lane := range res.Lanes {
			opts.LaneBoundaries = append(opts.LaneBoundaries, lane.BoundingBox)
		}
	} else if res.Frame.Detected {
		corners := res.Frame.Corners
		opts.Frame = &corners
	}

	out, err := newImageResult(imaging.DrawDebugOverlay(base, opts))
	if err != nil {
		return nil, err
	}
	out.Labels = labels
	return out, nil
}
