package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultControllerStartsAtSceneEye(t *testing.T) {
	cc := NewOrbitController()
	assert.True(t, cc.Position().ApproxEqualThreshold(mgl32.Vec3{0, 10, 20}, 1e-4), "got %v", cc.Position())
}

func TestWithEyeDerivesSphericalCoordinates(t *testing.T) {
	eye := mgl32.Vec3{5, 3, -4}
	cc := NewOrbitController(WithTarget(mgl32.Vec3{1, 1, 1}), WithEye(eye))
	assert.True(t, cc.Position().ApproxEqualThreshold(eye, 1e-4), "got %v", cc.Position())
}

func TestTickReportsChangesOnce(t *testing.T) {
	c := NewCamera(WithAspect(16.0 / 9.0))

	require.True(t, c.Tick(), "first tick always reports a change")
	assert.False(t, c.Tick())

	c.Controller().OrbitLeft()
	assert.True(t, c.Tick())
	assert.False(t, c.Tick())

	c.SetAspect(1)
	assert.True(t, c.Tick())
	c.SetAspect(1)
	assert.False(t, c.Tick(), "unchanged aspect is not a change")
}

func TestViewProjectionMatchesMathgl(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.Tick()

	want := mgl32.Perspective(c.Fov(), 2, 0.1, 100).Mul4(mgl32.LookAtV(mgl32.Vec3{0, 10, 20}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	assert.True(t, c.ViewProjection().ApproxEqualThreshold(want, 1e-4))
	assert.True(t, c.Eye().ApproxEqualThreshold(mgl32.Vec3{0, 10, 20}, 1e-4))
}

func TestZoomAndElevationAreClamped(t *testing.T) {
	cc := NewOrbitController(WithRadiusBounds(5, 30), WithZoomSpeed(100))
	cc.Zoom(1)
	assert.Equal(t, float32(5), cc.Radius())
	cc.Zoom(-1)
	assert.Equal(t, float32(30), cc.Radius())

	for range 200 {
		cc.OrbitUp()
	}
	assert.Less(t, cc.Elevation(), float32(1.5708))
}

func TestViewProjectionLayout(t *testing.T) {
	assert.Equal(t, uint64(64), ViewProjectionLayout.Size())
}

func TestPerspectiveOptions(t *testing.T) {
	up := mgl32.Vec3{0, 0, 1}
	eye := mgl32.Vec3{10, 5, 10}
	ctrl := NewOrbitController(WithEye(eye), WithOrbitSpeed(0.5))
	c := NewCamera(WithAspect(1), WithFov(1), WithClipPlanes(1, 50), WithUp(up), WithController(ctrl))
	c.Tick()

	want := mgl32.Perspective(1, 1, 1, 50).Mul4(mgl32.LookAtV(eye, mgl32.Vec3{}, up))
	assert.True(t, c.ViewProjection().ApproxEqualThreshold(want, 1e-3))

	azimuth := ctrl.Azimuth()
	ctrl.OrbitRight()
	assert.InDelta(t, 0.5, ctrl.Azimuth()-azimuth, 1e-6)
}
