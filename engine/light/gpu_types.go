package light

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches LightLayout exactly (48 bytes).
//
//go:embed assets/light.wgsl
var GPULightSource string

// Field names of LightLayout.
const (
	FieldLightPosition = "lightPosition"
	FieldEyePosition   = "eyePosition"
	FieldSpecularColor = "specularColor"
)

// LightLayout is the layout of the light uniform read by the fragment stage.
// Each vec3 is padded to 16 bytes.
var LightLayout = renderer.NewUniformLayout("light",
	renderer.UniformField{Name: FieldLightPosition, Size: common.Vec4Size},
	renderer.UniformField{Name: FieldEyePosition, Size: common.Vec4Size},
	renderer.UniformField{Name: FieldSpecularColor, Size: common.Vec4Size},
)

// ProjectionLayout is the layout of the light view-projection uniform shared by both passes.
var ProjectionLayout = renderer.NewUniformLayout("lightViewProjection",
	renderer.UniformField{Name: "lightViewProjection", Size: common.Mat4Size},
)

// GPULight is the full contents of the light uniform.
type GPULight struct {
	LightPosition mgl32.Vec3 // offset  0
	EyePosition   mgl32.Vec3 // offset 16
	SpecularColor mgl32.Vec3 // offset 32
}

// Size returns the size of the GPULight struct in bytes as laid out on the GPU.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULight) Size() int {
	return int(LightLayout.Size())
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 0, g.Size())
	buf = append(buf, common.Vec3Bytes(g.LightPosition)...)
	buf = append(buf, common.Vec3Bytes(g.EyePosition)...)
	buf = append(buf, common.Vec3Bytes(g.SpecularColor)...)
	return buf
}
