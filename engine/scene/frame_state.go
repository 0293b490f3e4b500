package scene

import (
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/params"
	"github.com/go-gl/mathgl/mgl32"
)

// Stage is the step of the frame state machine a scene is in.
type Stage int

const (
	StageIdle Stage = iota
	StageLightUpdate
	StageInstanceUpdate
	StageShadowPass
	StageColorPass
	StageSubmitted
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageLightUpdate:
		return "light update"
	case StageInstanceUpdate:
		return "instance update"
	case StageShadowPass:
		return "shadow pass"
	case StageColorPass:
		return "color pass"
	case StageSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// View is one camera poll: whether the camera moved since the previous poll, and its state.
type View struct {
	Changed        bool
	ViewProjection mgl32.Mat4
	Eye            mgl32.Vec3
}

// FrameState is everything one frame uploads, derived from the previous frame by NextFrameState.
type FrameState struct {
	// Frame counts the frames the state has been advanced through, starting at 1.
	Frame uint64
	// Elapsed is the wall time in seconds since the scene started.
	Elapsed float32
	// Time is the animation time, Elapsed scaled by the animation speed.
	Time float32

	LightPosition       mgl32.Vec3
	LightViewProjection mgl32.Mat4

	// CameraChanged reports whether the camera uniforms must be uploaded this frame.
	CameraChanged        bool
	CameraViewProjection mgl32.Mat4
	Eye                  mgl32.Vec3

	Params params.Params
}

// NextFrameState derives the state of the next frame. It has no side effects: the camera is polled by the
// caller and passed in as view.
//
// Parameters:
//   - prev: the state of the previous frame, or the zero value before the first frame
//   - elapsed: seconds since the scene started
//   - p: the parameter snapshot for this frame
//   - l: the orbiting light
//   - view: the camera poll for this frame
//
// Returns:
//   - FrameState: the next state
func NextFrameState(prev FrameState, elapsed float32, p params.Params, l light.Light, view View) FrameState {
	t := p.AnimateSpeed * elapsed
	ls := l.StateAt(t)

	next := FrameState{
		Frame:                prev.Frame + 1,
		Elapsed:              elapsed,
		Time:                 t,
		LightPosition:        ls.Position,
		LightViewProjection:  ls.ViewProjection,
		CameraChanged:        view.Changed,
		CameraViewProjection: prev.CameraViewProjection,
		Eye:                  prev.Eye,
		Params:               p,
	}
	if view.Changed {
		next.CameraViewProjection = view.ViewProjection
		next.Eye = view.Eye
	}
	return next
}
