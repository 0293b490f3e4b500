package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadow/engine/window"
	log "github.com/sirupsen/logrus"
)

// DefaultSpeedStep is how much one bracket key press changes the animation speed.
const DefaultSpeedStep float32 = 0.25

// Surface is the part of a rendering context that follows the window size.
type Surface interface {
	Resize(width, height int) error
}

// presentModeSurface is a Surface whose present mode can change at run time.
type presentModeSurface interface {
	Surface
	SetPresentMode(mode renderer.PresentMode) error
}

// engine implements the Engine interface.
type engine struct {
	scene   scene.Scene
	window  window.Window
	surface Surface

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	fixedTimestep    time.Duration // 0 = wall clock
	maxFrames        uint64        // 0 = until the window closes
	speedStep        float32
	presentMode      renderer.PresentMode

	frames uint64

	quitChannel chan struct{}
	quitOnce    sync.Once

	// resizeErr is set by the resize callback and reported by the next loop iteration.
	resizeErr error
}

// Engine runs the frame loop of one scene. With a window it polls input and follows resizes; without one it runs
// headless until the frame budget is spent or it is told to quit.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene the engine drives.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns the number of frames the loop has driven, skipped frames included.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Run drives frames until the window closes, the frame budget is spent, Quit is called or ctx is done.
	// Must be called from the goroutine that created the window.
	//
	// Parameters:
	//   - ctx: cancels the loop between frames
	//
	// Returns:
	//   - error: the first frame error; a skipped frame is not an error
	Run(ctx context.Context) error

	// Quit stops the loop after the current frame. Safe to call multiple times and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine for s with the provided options. When a window is set, its input and resize
// callbacks are bound to the scene camera, the parameter store and the surface.
//
// Parameters:
//   - s: the scene to drive
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(s scene.Scene, options ...EngineBuilderOption) Engine {
	e := &engine{
		scene:       s,
		profiler:    profiler.NewProfiler(),
		speedStep:   DefaultSpeedStep,
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetKeyDownCallback(e.handleKey)
		e.window.SetScrollCallback(e.handleScroll)
		e.window.SetResizeCallback(e.handleResize)
		e.scene.Resize(e.window.Width(), e.window.Height())
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleKey maps arrow keys to camera orbit steps, bracket keys to animation speed changes and V to the
// vsync toggle.
func (e *engine) handleKey(keyCode uint32) {
	ctrl := e.scene.Camera().Controller()
	switch keyCode {
	case common.KeyLeft:
		ctrl.OrbitLeft()
	case common.KeyRight:
		ctrl.OrbitRight()
	case common.KeyUp:
		ctrl.OrbitUp()
	case common.KeyDown:
		ctrl.OrbitDown()
	case common.KeyLeftBracket:
		e.scene.Params().AdjustAnimateSpeed(-e.speedStep)
	case common.KeyRightBracket:
		e.scene.Params().AdjustAnimateSpeed(e.speedStep)
	case common.KeyV:
		e.togglePresentMode()
	}
}

func (e *engine) togglePresentMode() {
	s, ok := e.surface.(presentModeSurface)
	if !ok {
		return
	}
	next := renderer.PresentModeUncapped
	if e.presentMode == renderer.PresentModeUncapped {
		next = renderer.PresentModeVSync
	}
	if err := s.SetPresentMode(next); err != nil {
		log.WithError(err).Warn("present mode unchanged")
		return
	}
	e.presentMode = next
	log.WithField("vsync", next == renderer.PresentModeVSync).Info("present mode changed")
}

func (e *engine) handleScroll(delta float32) {
	e.scene.Camera().Controller().Zoom(delta)
}

func (e *engine) handleResize(width, height int) {
	if e.surface != nil {
		if err := e.surface.Resize(width, height); err != nil {
			e.resizeErr = err
			return
		}
	}
	e.scene.Resize(width, height)
	log.WithFields(log.Fields{"width": width, "height": height}).Debug("resized")
}

func (e *engine) elapsed(start time.Time) float32 {
	if e.fixedTimestep > 0 {
		return float32((time.Duration(e.frames) * e.fixedTimestep).Seconds())
	}
	return float32(time.Since(start).Seconds())
}

func (e *engine) Run(ctx context.Context) error {
	start := time.Now()
	log.WithFields(log.Fields{
		"scene":     e.scene.Name(),
		"headless":  e.window == nil,
		"maxFrames": e.maxFrames,
	}).Info("engine started")

	for {
		select {
		case <-ctx.Done():
			return e.stop("context done")
		case <-e.quitChannel:
			return e.stop("quit")
		default:
		}

		if e.window != nil && !e.window.PollEvents() {
			return e.stop("window closed")
		}
		if err := e.resizeErr; err != nil {
			log.WithError(err).Error("surface resize failed")
			return fmt.Errorf("engine: resize: %w", err)
		}

		frameStart := time.Now()
		skipped := e.scene.SkippedFrames()
		if err := e.scene.Frame(e.elapsed(start)); err != nil {
			log.WithError(err).WithField("frame", e.frames).Error("frame failed")
			return fmt.Errorf("engine: frame %d: %w", e.frames, err)
		}
		e.frames++

		if e.profilingEnabled {
			if e.scene.SkippedFrames() > skipped {
				e.profiler.Skip()
			} else {
				e.profiler.Tick()
			}
		}

		if e.maxFrames > 0 && e.frames >= e.maxFrames {
			return e.stop("frame budget spent")
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) stop(reason string) error {
	log.WithFields(log.Fields{
		"reason":  reason,
		"frames":  e.frames,
		"skipped": e.scene.SkippedFrames(),
	}).Info("engine stopped")
	return nil
}
