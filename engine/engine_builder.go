package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow attaches a window. Its key, scroll and resize events are bound to the scene.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithSurface sets the rendering surface that is resized together with the window.
//
// Parameters:
//   - s: the surface, typically the wgpu context
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSurface(s Surface) EngineBuilderOption {
	return func(e *engine) {
		e.surface = s
	}
}

// WithPresentMode records the present mode the surface was created with, so the V key toggles away from it.
//
// Parameters:
//   - mode: the initial present mode
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPresentMode(mode renderer.PresentMode) EngineBuilderOption {
	return func(e *engine) {
		e.presentMode = mode
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithRenderFrameLimit sets the render frame rate cap in frames per second. 0 leaves the loop uncapped.
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithMaxFrames stops the loop after n frames. 0 runs until the window closes or Quit is called.
//
// Parameters:
//   - n: the frame budget
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithFixedTimestep advances scene time by dt per frame instead of following the wall clock,
// which makes headless runs reproducible.
//
// Parameters:
//   - dt: the simulated time per frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFixedTimestep(dt time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.fixedTimestep = dt
	}
}

// WithSpeedStep sets how much one bracket key press changes the animation speed.
//
// Parameters:
//   - step: the speed delta per press
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSpeedStep(step float32) EngineBuilderOption {
	return func(e *engine) {
		e.speedStep = step
	}
}
