package geometry

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
)

// GPUPositionSource is the canonical WGSL definition of the position stream (vertex buffer slot 0).
//
//go:embed assets/position.wgsl
var GPUPositionSource string

// GPUNormalSource is the canonical WGSL definition of the normal stream (vertex buffer slot 1).
//
//go:embed assets/normal.wgsl
var GPUNormalSource string

// Vertex buffer slots.
const (
	PositionSlot uint32 = 0
	NormalSlot   uint32 = 1
)

// vertexStride is the byte size of one vec3f element in either stream.
const vertexStride = 12

// VertexLayout returns the two-stream layout every Mesh is uploaded with:
// slot 0 holds positions (float32x3, location 0) and slot 1 holds normals (float32x3, location 1).
//
// Returns:
//   - []renderer.VertexBufferLayout: the layouts indexed by slot
func VertexLayout() []renderer.VertexBufferLayout {
	return []renderer.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			Attributes:  []renderer.VertexAttribute{{Format: renderer.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}},
		},
		{
			ArrayStride: vertexStride,
			Attributes:  []renderer.VertexAttribute{{Format: renderer.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1}},
		},
	}
}
