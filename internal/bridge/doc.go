// Package bridge exposes pipelines through opaque integer handles and flat
// result records, for hosts that cannot hold Go pointers (cgo exports,
// mobile bindings).
//
// The lifecycle mirrors a C API:
//
//	h := bridge.Create()
//	defer bridge.Destroy(h)
//
//	var res bridge.Result
//	if code := bridge.Process(h, buf, &res); code == vision.None {
//	    // read res.TensorData, res.Lanes ...
//	}
//	bridge.FreeResult(&res)
//
// Process copies the tensor out of the pipeline's pooled buffer before it
// returns, so a Result never shares memory with another frame. FreeResult
// clears every field and is safe to call on a zero or already freed Result.
//
// All functions are safe for concurrent use. Processing on one handle does
// not block other handles, and Destroy does not wait for in-flight calls.
package bridge
