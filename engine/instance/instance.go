package instance

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind identifies the mesh an instance is drawn with.
type ShapeKind int

const (
	ShapeKindCube ShapeKind = iota
	ShapeKindTorus
	ShapeKindSphere
)

// ShapeKinds lists every kind in partition and draw order.
var ShapeKinds = []ShapeKind{ShapeKindCube, ShapeKindTorus, ShapeKindSphere}

func (k ShapeKind) String() string {
	switch k {
	case ShapeKindCube:
		return "cube"
	case ShapeKindTorus:
		return "torus"
	case ShapeKindSphere:
		return "sphere"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Instance is one drawn copy of a shape. Rotation holds Euler angles in radians applied X, then Y, then Z.
type Instance struct {
	Kind        ShapeKind
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Scale       mgl32.Vec3
	Color       mgl32.Vec4

	// Velocity is the vertical speed of a sphere in units per frame. Its sign is the direction of travel.
	Velocity float32
}

// ModelMatrix returns T·Rx·Ry·Rz·S.
func (i Instance) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(i.Translation.X(), i.Translation.Y(), i.Translation.Z()).
		Mul4(mgl32.HomogRotate3DX(i.Rotation.X())).
		Mul4(mgl32.HomogRotate3DY(i.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(i.Rotation.Z())).
		Mul4(mgl32.Scale3D(i.Scale.X(), i.Scale.Y(), i.Scale.Z()))
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of the model matrix, expanded to a 4x4 with no
// translation. It is the identity for any instance with zero rotation and unit scale.
func (i Instance) NormalMatrix() mgl32.Mat4 {
	return i.ModelMatrix().Mat3().Inv().Transpose().Mat4()
}
