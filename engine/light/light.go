package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	orbitRadius float32
	height      float32
	target      mgl32.Vec3
	up          mgl32.Vec3

	halfExtent float32
	near       float32
	far        float32

	projection mgl32.Mat4
}

// State is the light's per-frame output: where it is and the matrix that projects world space into the
// shadow map. The view-projection is computed once per frame and read by both render passes.
type State struct {
	Position       mgl32.Vec3
	ViewProjection mgl32.Mat4
}

// Light is a shadow-casting light that circles the Y axis at a fixed height while looking at its target.
// Its shadow frustum is a fixed orthographic box.
type Light interface {
	// Position returns the light position at animation time t.
	//
	// Parameters:
	//   - t: animation time in seconds (already scaled by the animation speed)
	//
	// Returns:
	//   - mgl32.Vec3: (r sin t, h, r cos t) for orbit radius r and height h
	Position(t float32) mgl32.Vec3

	// ViewProjection returns projection * lookAt(position, target, up) for a light at position.
	//
	// Parameters:
	//   - position: the light position
	//
	// Returns:
	//   - mgl32.Mat4: the light view-projection matrix
	ViewProjection(position mgl32.Vec3) mgl32.Mat4

	// Projection returns the orthographic shadow projection.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	Projection() mgl32.Mat4

	// StateAt computes position and view-projection for animation time t.
	//
	// Parameters:
	//   - t: animation time in seconds
	//
	// Returns:
	//   - State: the light state
	StateAt(t float32) State
}

var _ Light = &lightImpl{}

// NewLight creates an orbiting light with all specified options applied.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the new light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		orbitRadius: DefaultOrbitRadius,
		height:      DefaultHeight,
		up:          mgl32.Vec3{0, 1, 0},
		halfExtent:  DefaultShadowHalfExtent,
		near:        DefaultShadowNear,
		far:         DefaultShadowFar,
	}
	for _, opt := range options {
		opt(l)
	}
	l.projection = mgl32.Ortho(-l.halfExtent, l.halfExtent, -l.halfExtent, l.halfExtent, l.near, l.far)
	return l
}

func (l *lightImpl) Position(t float32) mgl32.Vec3 {
	return mgl32.Vec3{l.orbitRadius * math32.Sin(t), l.height, l.orbitRadius * math32.Cos(t)}
}

func (l *lightImpl) ViewProjection(position mgl32.Vec3) mgl32.Mat4 {
	up := l.up
	dir := l.target.Sub(position)
	// LookAt degenerates when looking straight along up; fall back to +X.
	if dir.Len() > 0 && math32.Abs(dir.Normalize().Dot(up.Normalize())) > 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	return l.projection.Mul4(mgl32.LookAtV(position, l.target, up))
}

func (l *lightImpl) Projection() mgl32.Mat4 {
	return l.projection
}

func (l *lightImpl) StateAt(t float32) State {
	pos := l.Position(t)
	return State{Position: pos, ViewProjection: l.ViewProjection(pos)}
}
