package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(s []float32, i uint32) mgl32.Vec3 {
	return mgl32.Vec3{s[3*i], s[3*i+1], s[3*i+2]}
}

// assertOutwardWinding checks every triangle's face normal agrees with its vertex normals.
func assertOutwardWinding(t *testing.T, m Mesh) {
	t.Helper()
	for k := 0; k < len(m.Indices); k += 3 {
		a, b, c := m.Indices[k], m.Indices[k+1], m.Indices[k+2]
		pa, pb, pc := vec(m.Positions, a), vec(m.Positions, b), vec(m.Positions, c)
		face := pb.Sub(pa).Cross(pc.Sub(pa))
		if face.Len() < 1e-6 {
			continue // degenerate triangle at a sphere pole
		}
		avg := vec(m.Normals, a).Add(vec(m.Normals, b)).Add(vec(m.Normals, c))
		require.Greater(t, face.Dot(avg), float32(0), "%s triangle %d faces inward", m.Name, k/3)
	}
}

func TestCube(t *testing.T) {
	m := Cube()
	require.NoError(t, m.Validate())
	assert.Equal(t, 24, m.VertexCount())
	assert.Equal(t, uint32(36), m.IndexCount())
	for i := range uint32(m.VertexCount()) {
		p := vec(m.Positions, i)
		for _, c := range p {
			assert.Equal(t, float32(1), c*c)
		}
	}
	assertOutwardWinding(t, m)
}

func TestSphere(t *testing.T) {
	m := Sphere(1, 10, 16)
	require.NoError(t, m.Validate())
	assert.Equal(t, 11*17, m.VertexCount())
	assert.Equal(t, uint32(6*10*16), m.IndexCount())
	for i := range uint32(m.VertexCount()) {
		assert.InDelta(t, 1, vec(m.Positions, i).Len(), 1e-5)
		assert.InDelta(t, 1, vec(m.Normals, i).Len(), 1e-5)
	}
	assertOutwardWinding(t, m)
}

func TestTorus(t *testing.T) {
	m := Torus(1.5, 0.45, 60, 20)
	require.NoError(t, m.Validate())
	assert.Equal(t, 61*21, m.VertexCount())
	assert.Equal(t, uint32(6*60*20), m.IndexCount())
	for i := range uint32(m.VertexCount()) {
		p := vec(m.Positions, i)
		ringDist := mgl32.Vec2{p.X(), p.Z()}.Len() - 1.5
		assert.InDelta(t, 0.45, mgl32.Vec2{ringDist, p.Y()}.Len(), 1e-4)
	}
	assertOutwardWinding(t, m)
}

func TestValidateRejectsBadMeshes(t *testing.T) {
	good := Cube()

	bad := good
	bad.Normals = bad.Normals[:3]
	assert.Error(t, bad.Validate())

	bad = good
	bad.Indices = append([]uint32{}, good.Indices...)
	bad.Indices[5] = 24
	assert.Error(t, bad.Validate())

	bad = good
	bad.Indices = bad.Indices[:4]
	assert.Error(t, bad.Validate())
}

func TestStreamBytes(t *testing.T) {
	m := Cube()
	assert.Equal(t, m.Positions, common.BytesToFloat32s(m.PositionBytes()))
	assert.Equal(t, m.Normals, common.BytesToFloat32s(m.NormalBytes()))
	assert.Len(t, m.IndexBytes(), 4*len(m.Indices))
}

func TestVertexLayout(t *testing.T) {
	l := VertexLayout()
	require.Len(t, l, 2)
	assert.Equal(t, uint32(0), l[PositionSlot].Attributes[0].ShaderLocation)
	assert.Equal(t, uint32(1), l[NormalSlot].Attributes[0].ShaderLocation)
	assert.Equal(t, uint64(12), l[NormalSlot].ArrayStride)
}
