package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionOrbits(t *testing.T) {
	l := NewLight()

	assert.True(t, l.Position(0).ApproxEqualThreshold(mgl32.Vec3{0, 100, 50}, 1e-4))
	assert.True(t, l.Position(math32.Pi/2).ApproxEqualThreshold(mgl32.Vec3{50, 100, 0}, 1e-3))
}

func TestViewProjectionMatchesOrthoLookAt(t *testing.T) {
	l := NewLight()
	s := l.StateAt(1.25)

	want := mgl32.Ortho(-40, 40, -40, 40, -50, 200).Mul4(mgl32.LookAtV(s.Position, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	assert.True(t, s.ViewProjection.ApproxEqualThreshold(want, 1e-5))
}

func TestOriginProjectsInsideShadowMap(t *testing.T) {
	l := NewLight()
	for _, tm := range []float32{0, 0.7, 2, 5} {
		clip := l.StateAt(tm).ViewProjection.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
		assert.InDelta(t, 0, clip.X(), 1e-4)
		assert.InDelta(t, 0, clip.Y(), 1e-4)
		assert.Greater(t, clip.Z(), float32(0))
		assert.Less(t, clip.Z(), float32(1))
	}
}

func TestViewProjectionStraightDown(t *testing.T) {
	l := NewLight(WithOrbit(0, 100))
	vp := l.StateAt(0).ViewProjection
	for _, v := range vp {
		assert.False(t, math32.IsNaN(v))
	}
}

func TestGPULightMarshal(t *testing.T) {
	g := GPULight{
		LightPosition: mgl32.Vec3{1, 2, 3},
		EyePosition:   mgl32.Vec3{4, 5, 6},
		SpecularColor: mgl32.Vec3{1, 1, 0},
	}
	b := g.Marshal()
	require.Len(t, b, 48)
	assert.Equal(t, []float32{1, 2, 3, 0, 4, 5, 6, 0, 1, 1, 0, 0}, common.BytesToFloat32s(b))

	off, ok := LightLayout.Offset(FieldEyePosition)
	require.True(t, ok)
	assert.Equal(t, uint64(16), off)
	off, _ = LightLayout.Offset(FieldSpecularColor)
	assert.Equal(t, uint64(32), off)
}
