package renderer

// RecordingContextOption is a functional option applied to a RecordingContext during construction via NewRecordingContext.
type RecordingContextOption func(*RecordingContext)

// WithFailure makes a class of resource creation fail with err. Failures are used to exercise setup error paths
// without a GPU.
//
// op is one of "buffer", "texture", "sampler", "shader", "pipeline", "bindgroup" or "encoder". It may be
// narrowed to one resource with a label suffix, e.g. "pipeline:shadow".
//
// Parameters:
//   - op: the creation operation (optionally with a ":label" suffix) to fail
//   - err: the error to return
//
// Returns:
//   - RecordingContextOption: a function that applies the failure option to a RecordingContext
func WithFailure(op string, err error) RecordingContextOption {
	return func(rc *RecordingContext) {
		rc.failures[op] = err
	}
}

// WithSurfaceUnavailable makes the next n color passes fail with ErrSurfaceUnavailable, the way a surface
// does while a window is minimized or being resized.
//
// Parameters:
//   - n: the number of color passes to fail
//
// Returns:
//   - RecordingContextOption: a function that applies the option to a RecordingContext
func WithSurfaceUnavailable(n int) RecordingContextOption {
	return func(rc *RecordingContext) {
		rc.surfaceUnavailable = n
	}
}
