package renderer

import "errors"

var (
	// ErrResourceCreationFailure is returned when a buffer, texture, sampler, shader module, pipeline or
	// bind group cannot be created. It is fatal for scene construction.
	ErrResourceCreationFailure = errors.New("resource creation failure")

	// ErrOutOfBoundsWrite is returned when an upload targets bytes outside a buffer's allocation,
	// or a buffer that cannot be written at all.
	ErrOutOfBoundsWrite = errors.New("out of bounds write")

	// ErrBindingLayoutMismatch is returned when a bind group's resources do not match the slots its
	// pipeline declares.
	ErrBindingLayoutMismatch = errors.New("binding layout mismatch")

	// ErrSurfaceUnavailable is returned by CommandRecorder.BeginColorPass when the presentation surface
	// could not be acquired for this frame. It is transient; the frame is skipped.
	ErrSurfaceUnavailable = errors.New("surface unavailable")
)
