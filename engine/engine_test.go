package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadow/engine/params"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadow/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow stands in for a platform window: callbacks are stored so tests can fire input directly.
type fakeWindow struct {
	width, height int
	polls         int
	closeAfter    int

	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
}

func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32)) { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32)) { w.onKeyDown = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool { return w.closeAfter == 0 || w.polls < w.closeAfter }
func (w *fakeWindow) Close() error { return nil }
func (w *fakeWindow) Width() int { return w.width }
func (w *fakeWindow) Height() int { return w.height }

func (w *fakeWindow) PollEvents() bool {
	w.polls++
	return w.IsRunning()
}

var _ window.Window = &fakeWindow{}

type fakeSurface struct {
	sizes [][2]int
	err   error
}

func (s *fakeSurface) Resize(width, height int) error {
	s.sizes = append(s.sizes, [2]int{width, height})
	return s.err
}

type fakePresentSurface struct {
	fakeSurface
	modes []renderer.PresentMode
	err   error
}

func (s *fakePresentSurface) SetPresentMode(mode renderer.PresentMode) error {
	if s.err != nil {
		return s.err
	}
	s.modes = append(s.modes, mode)
	return nil
}

func newTestScene(t *testing.T, ctx *renderer.RecordingContext) scene.Scene {
	t.Helper()
	s, err := scene.NewScene(ctx, camera.NewCamera(), params.NewStore(params.Default()))
	require.NoError(t, err)
	return s
}

func TestRunHeadlessFrameBudget(t *testing.T) {
	ctx := renderer.NewRecordingContext()
	s := newTestScene(t, ctx)
	e := NewEngine(s, WithMaxFrames(3), WithFixedTimestep(100*time.Millisecond), WithProfiling(true))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(3), e.Frames())
	assert.Len(t, ctx.Submissions(), 3)
	assert.Equal(t, uint64(3), s.State().Frame)
	assert.InDelta(t, 0.2, s.State().Elapsed, 1e-6)
	assert.Nil(t, e.Window())
	assert.Same(t, s, e.Scene())
}

func TestRunCountsSkippedFrames(t *testing.T) {
	ctx := renderer.NewRecordingContext(renderer.WithSurfaceUnavailable(2))
	s := newTestScene(t, ctx)
	e := NewEngine(s, WithMaxFrames(4))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(4), e.Frames())
	assert.Equal(t, uint64(2), s.SkippedFrames())
	assert.Len(t, ctx.Submissions(), 2)
}

func TestRunStopsOnFrameError(t *testing.T) {
	boom := errors.New("encoder lost")
	ctx := renderer.NewRecordingContext(renderer.WithFailure("encoder", boom))
	e := NewEngine(newTestScene(t, ctx), WithMaxFrames(10))

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, e.Frames())
}

func TestRunStopsOnQuitAndContext(t *testing.T) {
	s := newTestScene(t, renderer.NewRecordingContext())

	e := NewEngine(s)
	e.Quit()
	e.Quit()
	require.NoError(t, e.Run(context.Background()))
	assert.Zero(t, e.Frames())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e = NewEngine(s)
	require.NoError(t, e.Run(ctx))
	assert.Zero(t, e.Frames())
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	w := &fakeWindow{width: 800, height: 400, closeAfter: 3}
	s := newTestScene(t, renderer.NewRecordingContext())
	e := NewEngine(s, WithWindow(w))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(2), e.Frames())
	assert.InDelta(t, 2.0, s.Camera().Aspect(), 1e-6, "initial window size sets the aspect")
}

func TestWindowInputBindings(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	s := newTestScene(t, renderer.NewRecordingContext())
	NewEngine(s, WithWindow(w), WithSpeedStep(0.5))
	require.NotNil(t, w.onKeyDown)
	require.NotNil(t, w.onScroll)
	require.NotNil(t, w.onResize)

	ctrl := s.Camera().Controller()
	azimuth := ctrl.Azimuth()
	w.onKeyDown(common.KeyLeft)
	assert.NotEqual(t, azimuth, ctrl.Azimuth())

	radius := ctrl.Radius()
	w.onScroll(1)
	assert.Less(t, ctrl.Radius(), radius)

	w.onKeyDown(common.KeyRightBracket)
	assert.Equal(t, float32(1.5), s.Params().Snapshot().AnimateSpeed)
	w.onKeyDown(common.KeyLeftBracket)
	w.onKeyDown(common.KeyLeftBracket)
	assert.Equal(t, float32(0.5), s.Params().Snapshot().AnimateSpeed)
}

func TestResizeFollowsWindow(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	surface := &fakeSurface{}
	s := newTestScene(t, renderer.NewRecordingContext())
	NewEngine(s, WithWindow(w), WithSurface(surface))

	w.onResize(1000, 500)
	assert.Equal(t, [][2]int{{1000, 500}}, surface.sizes)
	assert.InDelta(t, 2.0, s.Camera().Aspect(), 1e-6)
}

func TestResizeErrorStopsLoop(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	boom := errors.New("no device")
	s := newTestScene(t, renderer.NewRecordingContext())
	e := NewEngine(s, WithWindow(w), WithSurface(&fakeSurface{err: boom}), WithMaxFrames(5))

	w.onResize(10, 10)
	err := e.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, e.Frames())
}

func TestVSyncToggle(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	surface := &fakePresentSurface{}
	NewEngine(newTestScene(t, renderer.NewRecordingContext()), WithWindow(w), WithSurface(surface))

	w.onKeyDown(common.KeyV)
	w.onKeyDown(common.KeyV)
	assert.Equal(t, []renderer.PresentMode{renderer.PresentModeUncapped, renderer.PresentModeVSync}, surface.modes)

	failing := &fakePresentSurface{err: errors.New("unsupported")}
	e := NewEngine(newTestScene(t, renderer.NewRecordingContext()), WithWindow(w), WithSurface(failing),
		WithPresentMode(renderer.PresentModeUncapped)).(*engine)
	w.onKeyDown(common.KeyV)
	assert.Equal(t, renderer.PresentModeUncapped, e.presentMode, "a failed switch keeps the current mode")

	// a surface without present mode support ignores the key
	plain := &fakeSurface{}
	NewEngine(newTestScene(t, renderer.NewRecordingContext()), WithWindow(w), WithSurface(plain))
	w.onKeyDown(common.KeyV)
	assert.Empty(t, plain.sizes)
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine(newTestScene(t, renderer.NewRecordingContext()), WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
