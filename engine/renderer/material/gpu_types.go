package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
)

// GPUMaterialSource is the canonical WGSL definition of the Material struct.
// Matches GPUMaterial layout exactly (16 bytes).
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// Layout is the uniform layout of GPUMaterial.
var Layout = renderer.NewUniformLayout("material",
	renderer.UniformField{Name: "ambient", Size: 4},
	renderer.UniformField{Name: "diffuse", Size: 4},
	renderer.UniformField{Name: "specular", Size: 4},
	renderer.UniformField{Name: "shininess", Size: 4},
)

// GPUMaterial is the GPU-aligned material uniform.
// Matches the WGSL Material struct layout exactly (see GPUMaterialSource).
// Size: 16 bytes.
type GPUMaterial struct {
	Ambient   float32 // offset  0
	Diffuse   float32 // offset  4
	Specular  float32 // offset  8
	Shininess float32 // offset 12
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Ambient))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Diffuse))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Specular))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Shininess))
	return buf
}
