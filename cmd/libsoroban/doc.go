// Command libsoroban builds the pipeline as a C shared library for hosts
// that embed it from another language:
//
//	CGO_ENABLED=1 go build -buildmode=c-shared -o libsoroban.so ./cmd/libsoroban
//
// The generated header declares:
//
//	uint64_t soroban_create(void);
//	uint64_t soroban_create_with_config(const char *config_json);
//	void     soroban_destroy(uint64_t handle);
//	int32_t  soroban_process(uint64_t handle, const uint8_t *data,
//	                         int32_t width, int32_t height, int32_t bytes_per_row,
//	                         int32_t format, soroban_result *out);
//	void     soroban_free_result(soroban_result *result);
//	int32_t  soroban_set_config(uint64_t handle, const char *preprocessing_json);
//	int32_t  soroban_set_detection_params(uint64_t handle, const char *detection_json);
//
// Handles are opaque and 0 is never valid. Return codes are the error codes
// 0 (none) through 6 (backend error). format is 0 for BGRA32, 1 for RGBA32
// and 2 for RGB24; bytes_per_row may be 0 for tightly packed rows.
//
// Configuration is passed as JSON using the same keys as the config file.
// Missing keys take their default values, so "{}" selects the defaults.
//
// Every pointer in a soroban_result is allocated with malloc and owned by
// the caller until soroban_free_result. The pixel data is copied before
// soroban_process returns.
//
// Without cgo the command builds to an empty program.
package main
