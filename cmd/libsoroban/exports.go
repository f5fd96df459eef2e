//go:build cgo

package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	float   x;
	float   y;
	float   width;
	float   height;
	int32_t digit_index;
	int32_t value;
	float   confidence;
} soroban_lane;

typedef struct {
	int32_t       success;
	int32_t       error_code;
	char         *error_message;

	int32_t       frame_detected;
	float         corners[8];
	float         frame_confidence;

	int32_t       lane_count;
	soroban_lane *lanes;
	char         *value;

	float        *tensor_data;
	int32_t       tensor_batch_size;
	int32_t       tensor_channels;
	int32_t       tensor_height;
	int32_t       tensor_width;

	int32_t       total_cells;
	double        preprocessing_time_ms;
} soroban_result;
*/
import "C"

import (
	"unsafe"

	"github.com/ironsheep/soroban-vision/internal/bridge"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/vision"
)

//export soroban_create
func soroban_create() C.uint64_t {
	return C.uint64_t(bridge.Create())
}

//export soroban_create_with_config
func soroban_create_with_config(configJSON *C.char) C.uint64_t {
	cfg, err := configFromJSON(goBytes(configJSON))
	if err != nil {
		return 0
	}
	h, err := bridge.CreateWithConfig(cfg)
	if err != nil {
		return 0
	}
	return C.uint64_t(h)
}

//export soroban_destroy
func soroban_destroy(h C.uint64_t) {
	bridge.Destroy(bridge.Handle(h))
}

//export soroban_process
func soroban_process(h C.uint64_t, data *C.uint8_t, width, height, bytesPerRow, format C.int32_t, out *C.soroban_result) C.int32_t {
	if out == nil {
		return C.int32_t(vision.InvalidInput)
	}
	pf := imaging.PixelFormat(format)
	var pixels []byte
	if n := bufferLen(int(width), int(height), int(bytesPerRow), pf); n > 0 && data != nil {
		pixels = C.GoBytes(unsafe.Pointer(data), C.int(n))
	}

	var res bridge.Result
	code := bridge.Process(bridge.Handle(h), pixelBuffer(pixels, int(width), int(height), int(bytesPerRow), pf), &res)
	writeResult(out, &res)
	bridge.FreeResult(&res)
	return C.int32_t(code)
}

//export soroban_free_result
func soroban_free_result(r *C.soroban_result) {
	if r == nil {
		return
	}
	C.free(unsafe.Pointer(r.error_message))
	C.free(unsafe.Pointer(r.lanes))
	C.free(unsafe.Pointer(r.value))
	C.free(unsafe.Pointer(r.tensor_data))
	*r = C.soroban_result{}
}

//export soroban_set_config
func soroban_set_config(h C.uint64_t, preprocessingJSON *C.char) C.int32_t {
	pc, err := preprocessingFromJSON(goBytes(preprocessingJSON))
	if err != nil {
		return C.int32_t(vision.CodeOf(err))
	}
	return C.int32_t(bridge.SetConfig(bridge.Handle(h), pc))
}

//export soroban_set_detection_params
func soroban_set_detection_params(h C.uint64_t, detectionJSON *C.char) C.int32_t {
	dp, err := detectionFromJSON(goBytes(detectionJSON))
	if err != nil {
		return C.int32_t(vision.CodeOf(err))
	}
	return C.int32_t(bridge.SetDetectionParams(bridge.Handle(h), dp))
}

func goBytes(s *C.char) []byte {
	if s == nil {
		return nil
	}
	return []byte(C.GoString(s))
}

func cBool(b bool) C.int32_t {
	if b {
		return 1
	}
	return 0
}

// writeResult copies r into C memory owned by out.
func writeResult(out *C.soroban_result, r *bridge.Result) {
	*out = C.soroban_result{}
	out.success = cBool(r.Success)
	out.error_code = C.int32_t(r.ErrorCode)
	if r.ErrorMessage != "" {
		out.error_message = C.CString(r.ErrorMessage)
	}

	out.frame_detected = cBool(r.Frame.Detected)
	for i, v := range cornerArray(r.Frame.Corners) {
		out.corners[i] = C.float(v)
	}
	out.frame_confidence = C.float(r.Frame.Confidence)

	if n := len(r.Lanes); n > 0 {
		out.lanes = (*C.soroban_lane)(C.calloc(C.size_t(n), C.size_t(C.sizeof_soroban_lane)))
		lanes := unsafe.Slice(out.lanes, n)
		for i, l := range r.Lanes {
			lanes[i] = C.soroban_lane{
				x:           C.float(l.BoundingBox.X),
				y:           C.float(l.BoundingBox.Y),
				width:       C.float(l.BoundingBox.Width),
				height:      C.float(l.BoundingBox.Height),
				digit_index: C.int32_t(l.DigitIndex),
				value:       C.int32_t(l.Value),
				confidence:  C.float(l.Confidence),
			}
		}
	}
	out.lane_count = C.int32_t(r.LaneCount)
	if r.Value != "" {
		out.value = C.CString(r.Value)
	}

	if n := len(r.TensorData); n > 0 {
		out.tensor_data = (*C.float)(C.malloc(C.size_t(n) * C.size_t(C.sizeof_float)))
		copy(unsafe.Slice((*float32)(unsafe.Pointer(out.tensor_data)), n), r.TensorData)
	}
	out.tensor_batch_size = C.int32_t(r.TensorBatchSize)
	out.tensor_channels = C.int32_t(r.TensorChannels)
	out.tensor_height = C.int32_t(r.TensorHeight)
	out.tensor_width = C.int32_t(r.TensorWidth)

	out.total_cells = C.int32_t(r.TotalCells)
	out.preprocessing_time_ms = C.double(r.PreprocessingTimeMs)
}
