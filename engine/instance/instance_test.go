package instance

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDefault(t *testing.T) {
	instances, err := Initialize(NewSpec())
	require.NoError(t, err)
	require.Len(t, instances, 20)

	floor := instances[0]
	assert.Equal(t, ShapeKindCube, floor.Kind)
	assert.Equal(t, mgl32.Vec3{0, -13, -20}, floor.Translation)
	assert.Equal(t, mgl32.Vec3{30, 0.1, 20}, floor.Scale)
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0.7, 1}, floor.Color)
	assert.Zero(t, floor.Velocity)

	torus := instances[1]
	assert.Equal(t, ShapeKindTorus, torus.Kind)
	assert.Equal(t, mgl32.Vec3{0, -5, -20}, torus.Translation)
	assert.Equal(t, mgl32.Vec3{math32.Pi / 2, 0, 0}, torus.Rotation)
	assert.Equal(t, mgl32.Vec3{4, 4, 4}, torus.Scale)
	assert.Equal(t, float32(1), torus.Color.W())

	for i, s := range instances[2:] {
		require.Equal(t, ShapeKindSphere, s.Kind, "instance %d", i+2)
		tx := s.Translation.X()
		assert.GreaterOrEqual(t, math32.Abs(tx), float32(4))
		assert.LessOrEqual(t, math32.Abs(tx), float32(16))
		assert.InDelta(t, -20+tx, s.Translation.Z(), 1e-5)
		assert.GreaterOrEqual(t, s.Translation.Y(), float32(-11))
		assert.LessOrEqual(t, s.Translation.Y(), float32(4))
		assert.GreaterOrEqual(t, s.Scale.X(), float32(0.5))
		assert.Equal(t, s.Scale.X(), s.Scale.Y())
		assert.GreaterOrEqual(t, math32.Abs(s.Velocity), float32(0.09))
		assert.Equal(t, math32.Signbit(tx), math32.Signbit(s.Velocity), "velocity sign follows the side the sphere is on")
	}
}

func TestInitializeIsSeeded(t *testing.T) {
	a, err := Initialize(NewSpec(WithSeed(7)))
	require.NoError(t, err)
	b, err := Initialize(NewSpec(WithSeed(7)))
	require.NoError(t, err)
	c, err := Initialize(NewSpec(WithSeed(8)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestInitializeCounts(t *testing.T) {
	instances, err := Initialize(NewSpec(WithCounts(3, 2, 5)))
	require.NoError(t, err)
	require.Len(t, instances, 10)

	ranges, err := Ranges(instances)
	require.NoError(t, err)
	assert.Equal(t, []Range{
		{Kind: ShapeKindCube, Base: 0, Count: 3},
		{Kind: ShapeKindTorus, Base: 3, Count: 2},
		{Kind: ShapeKindSphere, Base: 5, Count: 5},
	}, ranges)
	assert.NotEqual(t, instances[3].Translation, instances[4].Translation, "tori are spaced apart")

	_, err = Initialize(NewSpec(WithCounts(-1, 1, 1)))
	assert.Error(t, err)
	_, err = Initialize(NewSpec(WithCounts(0, 0, 0)))
	assert.Error(t, err)
}

func TestRanges(t *testing.T) {
	tests := []struct {
		name    string
		kinds   []ShapeKind
		want    []Range
		wantErr bool
	}{
		{
			name:  "default partition",
			kinds: []ShapeKind{ShapeKindCube, ShapeKindTorus, ShapeKindSphere, ShapeKindSphere},
			want:  []Range{{ShapeKindCube, 0, 1}, {ShapeKindTorus, 1, 1}, {ShapeKindSphere, 2, 2}},
		},
		{
			name:  "missing kind",
			kinds: []ShapeKind{ShapeKindCube, ShapeKindSphere},
			want:  []Range{{ShapeKindCube, 0, 1}, {ShapeKindSphere, 1, 1}},
		},
		{name: "empty", kinds: nil, want: nil},
		{name: "out of order", kinds: []ShapeKind{ShapeKindSphere, ShapeKindCube}, wantErr: true},
		{name: "interleaved", kinds: []ShapeKind{ShapeKindCube, ShapeKindTorus, ShapeKindCube}, wantErr: true},
		{name: "unknown kind", kinds: []ShapeKind{ShapeKind(9)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instances := make([]Instance, len(tt.kinds))
			for i, k := range tt.kinds {
				instances[i].Kind = k
			}
			got, err := Ranges(instances)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPack(t *testing.T) {
	instances, err := Initialize(NewSpec())
	require.NoError(t, err)

	models, normals := Pack(instances)
	require.Len(t, models, 16*len(instances))
	require.Len(t, normals, 16*len(instances))

	for i, inst := range instances {
		var m, n mgl32.Mat4
		copy(m[:], models[16*i:16*(i+1)])
		copy(n[:], normals[16*i:16*(i+1)])

		expected := mgl32.Translate3D(inst.Translation.Elem()).
			Mul4(mgl32.HomogRotate3DX(inst.Rotation.X())).
			Mul4(mgl32.HomogRotate3DY(inst.Rotation.Y())).
			Mul4(mgl32.HomogRotate3DZ(inst.Rotation.Z())).
			Mul4(mgl32.Scale3D(inst.Scale.Elem()))
		assert.True(t, expected.ApproxEqualThreshold(m, 1e-5), "model %d", i)
		assert.True(t, m.Mat3().Transpose().Mul3(n.Mat3()).ApproxEqualThreshold(mgl32.Ident3(), 1e-3), "normal %d is the inverse transpose", i)
		assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, n.Col(3), "normal %d carries no translation", i)
		assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, n.Row(3), "normal %d", i)
	}
}

func TestNormalMatrixMatchesUpper3x3(t *testing.T) {
	inst := Instance{
		Translation: mgl32.Vec3{3, -2, 7},
		Rotation:    mgl32.Vec3{0.3, 1.1, -0.4},
		Scale:       mgl32.Vec3{2, 0.5, 3},
	}
	n4 := inst.NormalMatrix()
	n3 := inst.ModelMatrix().Mat3().Inv().Transpose()
	assert.True(t, n4.Mat3().ApproxEqualThreshold(n3, 1e-5))
}

func TestPackRoundTrip(t *testing.T) {
	inst := Instance{
		Kind:        ShapeKindCube,
		Translation: mgl32.Vec3{1, 2, 3},
		Scale:       mgl32.Vec3{1, 1, 1},
	}
	models, normals := Pack([]Instance{inst})

	var m, n mgl32.Mat4
	copy(m[:], models)
	copy(n[:], normals)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, m.Col(3))
	assert.Equal(t, mgl32.Ident4(), n)
	assert.Equal(t, mgl32.Ident4(), inst.NormalMatrix())
}

func TestPackInto(t *testing.T) {
	instances, err := Initialize(NewSpec(WithCounts(1, 1, 2)))
	require.NoError(t, err)

	models := make([]float32, 16*4)
	normals := make([]float32, 16*4)
	require.NoError(t, PackInto(models, normals, instances))
	wantModels, wantNormals := Pack(instances)
	assert.Equal(t, wantModels, models)
	assert.Equal(t, wantNormals, normals)

	short := make([]float32, 16*3)
	assert.Error(t, PackInto(short, normals, instances))
	assert.Equal(t, make([]float32, 16*3), short, "nothing is written on a length mismatch")
}

func TestPackColors(t *testing.T) {
	instances, err := Initialize(NewSpec())
	require.NoError(t, err)

	colors := PackColors(instances)
	require.Len(t, colors, 4*len(instances))
	assert.Equal(t, []float32{0.5, 0.5, 0.7, 1}, colors[:4])
	for i, inst := range instances {
		assert.Equal(t, inst.Color[:], colors[4*i:4*i+4])
	}
}

func TestAdvance(t *testing.T) {
	instances := []Instance{
		{Kind: ShapeKindCube, Translation: mgl32.Vec3{0, -13, -20}},
		{Kind: ShapeKindTorus, Rotation: mgl32.Vec3{math32.Pi / 2, 0, 0}},
		{Kind: ShapeKindSphere, Translation: mgl32.Vec3{5, 0, -15}, Velocity: 0.5},
	}
	Advance(instances, 1.5)

	assert.Equal(t, mgl32.Vec3{0, -13, -20}, instances[0].Translation, "cubes are static")
	assert.Equal(t, mgl32.Vec3{math32.Pi / 2, 0, 3}, instances[1].Rotation)
	assert.Equal(t, float32(0.5), instances[2].Translation.Y())
	assert.Equal(t, float32(0.5), instances[2].Velocity)
}

func TestAdvanceReflectsAtWalls(t *testing.T) {
	tests := []struct {
		name         string
		y, velocity  float32
		wantY, wantV float32
	}{
		{name: "crosses top", y: 10.8, velocity: 0.4, wantY: 11.2, wantV: -0.4},
		{name: "crosses bottom", y: -10.9, velocity: -0.2, wantY: -11.1, wantV: 0.2},
		{name: "inside", y: 0, velocity: 0.1, wantY: 0.1, wantV: 0.1},
		{name: "lands on wall", y: 10.5, velocity: 0.5, wantY: 11, wantV: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instances := []Instance{{Kind: ShapeKindSphere, Translation: mgl32.Vec3{0, tt.y, 0}, Velocity: tt.velocity}}
			Advance(instances, 0)
			assert.InDelta(t, tt.wantY, instances[0].Translation.Y(), 1e-5, "position is not clamped")
			assert.Equal(t, tt.wantV, instances[0].Velocity)
		})
	}
}

func TestSpheresStayNearTheirTrack(t *testing.T) {
	instances, err := Initialize(NewSpec())
	require.NoError(t, err)

	for range 2000 {
		Advance(instances, 0)
	}
	for _, inst := range instances[2:] {
		limit := SphereMaxY + math32.Abs(inst.Velocity) + 1e-3
		assert.LessOrEqual(t, math32.Abs(inst.Translation.Y()), limit)
	}
}
