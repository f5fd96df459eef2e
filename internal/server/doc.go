// Package server exposes the soroban pipeline to MCP clients over stdio.
//
// Each line on stdin is one JSON-RPC 2.0 message and each response is
// written as one line on stdout. The methods handled are initialize,
// tools/list, tools/call and ping. Messages under notifications/ are
// accepted silently, and a line that is not valid JSON is answered with a
// -32700 parse error.
//
// Tools:
//
//	soroban_extract        full pipeline on an image file
//	soroban_detect_frame   frame corners and bounding box only
//	soroban_preprocess     one preprocessing stage as base64 PNG
//	soroban_debug_overlay  detection drawn over the source or rectified frame
//	soroban_config         the active configuration
//
// Images are read from disk on every call. A failing tool answers with code
// -32000 and the Go error string in data. A frame without a visible soroban
// is not a failure: soroban_extract reports success false and the error code.
package server
