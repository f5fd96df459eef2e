package main

import (
	"encoding/json"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

// configFromJSON parses a full configuration over the defaults. Empty
// input selects the defaults.
func configFromJSON(data []byte) (config.Config, error) {
	cfg := config.Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return config.Config{}, vision.NewError(vision.InvalidInput, "parse config", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, vision.NewError(vision.InvalidInput, "parse config", err)
	}
	return cfg, nil
}

// preprocessingFromJSON parses preprocessing settings over the defaults.
// Validation is left to the pipeline setter.
func preprocessingFromJSON(data []byte) (config.PreprocessingConfig, error) {
	pc := config.DefaultPreprocessingConfig()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &pc); err != nil {
			return pc, vision.NewError(vision.InvalidInput, "parse preprocessing config", err)
		}
	}
	return pc, nil
}

// detectionFromJSON parses detection parameters over the defaults.
func detectionFromJSON(data []byte) (config.DetectionParams, error) {
	dp := config.DefaultDetectionParams()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &dp); err != nil {
			return dp, vision.NewError(vision.InvalidInput, "parse detection params", err)
		}
	}
	return dp, nil
}

// bufferLen is the byte count soroban_process copies from the caller. It
// returns 0 when the dimensions cannot describe a buffer.
func bufferLen(width, height, bytesPerRow int, format imaging.PixelFormat) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	if bytesPerRow <= 0 {
		bytesPerRow = width * format.BytesPerPixel()
	}
	return bytesPerRow * height
}

func pixelBuffer(data []byte, width, height, bytesPerRow int, format imaging.PixelFormat) imaging.PixelBuffer {
	return imaging.PixelBuffer{
		Width:       width,
		Height:      height,
		Format:      format,
		BytesPerRow: bytesPerRow,
		PlaneCount:  1,
		Data:        data,
	}
}

// cornerArray flattens q as x,y pairs clockwise from the top-left corner.
func cornerArray(q vision.Quadrilateral) [8]float32 {
	var out [8]float32
	for i, p := range q.Points() {
		out[2*i] = float32(p.X)
		out[2*i+1] = float32(p.Y)
	}
	return out
}
