package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// MaxLanes is the largest lane count a soroban may have.
const MaxLanes = 27

// PreprocessingConfig controls image normalisation and tensor conversion.
type PreprocessingConfig struct {
	TargetLongEdge int `json:"target_long_edge"`

	EnableWhiteBalance bool `json:"enable_white_balance"`

	EnableCLAHE    bool    `json:"enable_clahe"`
	CLAHEClipLimit float64 `json:"clahe_clip_limit"`
	CLAHETileSize  int     `json:"clahe_tile_size"`

	EnableGaussianBlur bool `json:"enable_gaussian_blur"`
	GaussianKernelSize int  `json:"gaussian_kernel_size"`

	EnableBilateralFilter bool    `json:"enable_bilateral_filter"`
	BilateralD            int     `json:"bilateral_d"`
	BilateralSigmaColor   float64 `json:"bilateral_sigma_color"`
	BilateralSigmaSpace   float64 `json:"bilateral_sigma_space"`

	CannyThreshold1 float64 `json:"canny_threshold1"`
	CannyThreshold2 float64 `json:"canny_threshold2"`

	AdaptiveBlockSize int     `json:"adaptive_block_size"`
	AdaptiveC         float64 `json:"adaptive_c"`

	MorphKernelSize int `json:"morph_kernel_size"`

	NormMean [3]float32 `json:"norm_mean"`
	NormStd  [3]float32 `json:"norm_std"`

	CellOutputSize int `json:"cell_output_size"`

	// MaxTensorElements caps the float32 count of a single batch tensor.
	MaxTensorElements int `json:"max_tensor_elements"`
}

// DefaultPreprocessingConfig returns the stock preprocessing values.
func DefaultPreprocessingConfig() PreprocessingConfig {
	return PreprocessingConfig{
		TargetLongEdge:        1280,
		EnableWhiteBalance:    true,
		EnableCLAHE:           true,
		CLAHEClipLimit:        2.0,
		CLAHETileSize:         8,
		EnableGaussianBlur:    true,
		GaussianKernelSize:    3,
		EnableBilateralFilter: false,
		BilateralD:            9,
		BilateralSigmaColor:   75,
		BilateralSigmaSpace:   75,
		CannyThreshold1:       50,
		CannyThreshold2:       150,
		AdaptiveBlockSize:     11,
		AdaptiveC:             2,
		MorphKernelSize:       3,
		NormMean:              [3]float32{0.485, 0.456, 0.406},
		NormStd:               [3]float32{0.229, 0.224, 0.225},
		CellOutputSize:        224,
		// 27 lanes * 5 cells * 3 * 224 * 224 is ~20M; leave headroom.
		MaxTensorElements: 64 << 20,
	}
}

// Validate checks that every value is usable.
func (c PreprocessingConfig) Validate() error {
	var errs []error
	if c.TargetLongEdge <= 0 {
		errs = append(errs, fmt.Errorf("target_long_edge must be positive, got %d", c.TargetLongEdge))
	}
	if c.EnableCLAHE {
		if c.CLAHEClipLimit <= 0 {
			errs = append(errs, fmt.Errorf("clahe_clip_limit must be positive, got %g", c.CLAHEClipLimit))
		}
		if c.CLAHETileSize <= 0 {
			errs = append(errs, fmt.Errorf("clahe_tile_size must be positive, got %d", c.CLAHETileSize))
		}
	}
	if c.EnableGaussianBlur && (c.GaussianKernelSize < 1 || c.GaussianKernelSize%2 == 0) {
		errs = append(errs, fmt.Errorf("gaussian_kernel_size must be a positive odd number, got %d", c.GaussianKernelSize))
	}
	if c.EnableBilateralFilter {
		if c.BilateralD <= 0 {
			errs = append(errs, fmt.Errorf("bilateral_d must be positive, got %d", c.BilateralD))
		}
		if c.BilateralSigmaColor <= 0 || c.BilateralSigmaSpace <= 0 {
			errs = append(errs, errors.New("bilateral sigmas must be positive"))
		}
	}
	if c.CannyThreshold1 < 0 || c.CannyThreshold2 < c.CannyThreshold1 {
		errs = append(errs, fmt.Errorf("canny thresholds must satisfy 0 <= low <= high, got %g/%g", c.CannyThreshold1, c.CannyThreshold2))
	}
	if c.AdaptiveBlockSize < 3 || c.AdaptiveBlockSize%2 == 0 {
		errs = append(errs, fmt.Errorf("adaptive_block_size must be an odd number >= 3, got %d", c.AdaptiveBlockSize))
	}
	if c.MorphKernelSize < 1 {
		errs = append(errs, fmt.Errorf("morph_kernel_size must be positive, got %d", c.MorphKernelSize))
	}
	for i, s := range c.NormStd {
		if s <= 0 || math.IsNaN(float64(s)) {
			errs = append(errs, fmt.Errorf("norm_std[%d] must be positive, got %g", i, s))
		}
	}
	if c.CellOutputSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_output_size must be positive, got %d", c.CellOutputSize))
	}
	if c.MaxTensorElements <= 0 {
		errs = append(errs, fmt.Errorf("max_tensor_elements must be positive, got %d", c.MaxTensorElements))
	}
	return errors.Join(errs...)
}

// DetectionParams controls frame, lane and cell extraction.
type DetectionParams struct {
	MinAreaRatio   float64 `json:"min_area_ratio"`
	MaxAreaRatio   float64 `json:"max_area_ratio"`
	MinAspectRatio float64 `json:"min_aspect_ratio"`
	MaxAspectRatio float64 `json:"max_aspect_ratio"`

	MinLaneCount int `json:"min_lane_count"`
	MaxLaneCount int `json:"max_lane_count"`
	// ExpectedLaneCount overrides lane detection when positive.
	ExpectedLaneCount int `json:"expected_lane_count"`

	LaneHeightRatio float64 `json:"lane_height_ratio"`

	HoughRho       float64 `json:"hough_rho"`
	HoughTheta     float64 `json:"hough_theta"`
	HoughThreshold int     `json:"hough_threshold"`
	HoughMinLength float64 `json:"hough_min_length"`
	HoughMaxGap    float64 `json:"hough_max_gap"`

	ContourApproxEpsilon float64 `json:"contour_approx_epsilon"`

	UpperBeadRatio  float64 `json:"upper_bead_ratio"`
	DividerRatio    float64 `json:"divider_ratio"`
	LowerBeadsRatio float64 `json:"lower_beads_ratio"`

	WarpWidth  int `json:"warp_width"`
	WarpHeight int `json:"warp_height"`
}

// DefaultDetectionParams returns the stock detection values.
func DefaultDetectionParams() DetectionParams {
	return DetectionParams{
		MinAreaRatio:         0.05,
		MaxAreaRatio:         0.95,
		MinAspectRatio:       1.5,
		MaxAspectRatio:       10,
		MinLaneCount:         1,
		MaxLaneCount:         MaxLanes,
		LaneHeightRatio:      0.8,
		HoughRho:             1,
		HoughTheta:           math.Pi / 180,
		HoughThreshold:       80,
		HoughMinLength:       50,
		HoughMaxGap:          10,
		ContourApproxEpsilon: 0.02,
		UpperBeadRatio:       1,
		DividerRatio:         1,
		LowerBeadsRatio:      4,
		WarpWidth:            800,
		WarpHeight:           200,
	}
}

// Validate checks that every value is usable.
func (p DetectionParams) Validate() error {
	var errs []error
	if p.MinAreaRatio < 0 || p.MaxAreaRatio > 1 || p.MinAreaRatio >= p.MaxAreaRatio {
		errs = append(errs, fmt.Errorf("area ratios must satisfy 0 <= min < max <= 1, got %g/%g", p.MinAreaRatio, p.MaxAreaRatio))
	}
	if p.MinAspectRatio <= 0 || p.MinAspectRatio >= p.MaxAspectRatio {
		errs = append(errs, fmt.Errorf("aspect ratios must satisfy 0 < min < max, got %g/%g", p.MinAspectRatio, p.MaxAspectRatio))
	}
	if p.MinLaneCount < 1 || p.MaxLaneCount > MaxLanes || p.MinLaneCount > p.MaxLaneCount {
		errs = append(errs, fmt.Errorf("lane counts must satisfy 1 <= min <= max <= %d, got %d/%d", MaxLanes, p.MinLaneCount, p.MaxLaneCount))
	}
	if p.ExpectedLaneCount < 0 || p.ExpectedLaneCount > MaxLanes {
		errs = append(errs, fmt.Errorf("expected_lane_count must be within [0, %d], got %d", MaxLanes, p.ExpectedLaneCount))
	}
	if p.LaneHeightRatio <= 0 || p.LaneHeightRatio > 1 {
		errs = append(errs, fmt.Errorf("lane_height_ratio must be within (0, 1], got %g", p.LaneHeightRatio))
	}
	if p.HoughRho <= 0 || p.HoughTheta <= 0 || p.HoughThreshold <= 0 {
		errs = append(errs, errors.New("hough rho, theta and threshold must be positive"))
	}
	if p.HoughMinLength < 0 || p.HoughMaxGap < 0 {
		errs = append(errs, errors.New("hough min length and max gap must be non-negative"))
	}
	if p.ContourApproxEpsilon <= 0 || p.ContourApproxEpsilon >= 1 {
		errs = append(errs, fmt.Errorf("contour_approx_epsilon must be within (0, 1), got %g", p.ContourApproxEpsilon))
	}
	if p.UpperBeadRatio <= 0 || p.DividerRatio < 0 || p.LowerBeadsRatio <= 0 {
		errs = append(errs, errors.New("bead ratios must be positive (divider may be zero)"))
	}
	if p.WarpWidth <= 0 || p.WarpHeight <= 0 {
		errs = append(errs, fmt.Errorf("warp size must be positive, got %dx%d", p.WarpWidth, p.WarpHeight))
	}
	return errors.Join(errs...)
}

// ClampLaneCount limits n to [MinLaneCount, MaxLaneCount].
func (p DetectionParams) ClampLaneCount(n int) int {
	return max(p.MinLaneCount, min(n, p.MaxLaneCount))
}

// Config bundles both parameter sets.
type Config struct {
	Preprocessing PreprocessingConfig `json:"preprocessing"`
	Detection     DetectionParams     `json:"detection"`
}

// Default returns a Config with stock values.
func Default() Config {
	return Config{
		Preprocessing: DefaultPreprocessingConfig(),
		Detection:     DefaultDetectionParams(),
	}
}

// Validate checks both parameter sets.
func (c Config) Validate() error {
	if err := c.Preprocessing.Validate(); err != nil {
		return fmt.Errorf("preprocessing: %w", err)
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	return nil
}

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// Load reads a Config from a JSON file. The file must have a .json extension
// and be under 1MB. Fields omitted from the file keep their default values.
func Load(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
