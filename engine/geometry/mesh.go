package geometry

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is indexed triangle geometry stored as two separate streams. It is built once and never mutated.
type Mesh struct {
	Name string
	// Positions holds 3 floats per vertex.
	Positions []float32
	// Normals holds 3 floats per vertex, unit length.
	Normals []float32
	// Indices holds 3 entries per triangle, counter-clockwise when seen from outside.
	Indices []uint32
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// IndexCount returns the number of indices.
func (m Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// PositionBytes returns the position stream ready for upload.
func (m Mesh) PositionBytes() []byte {
	return common.Float32sToBytes(m.Positions)
}

// NormalBytes returns the normal stream ready for upload.
func (m Mesh) NormalBytes() []byte {
	return common.Float32sToBytes(m.Normals)
}

// IndexBytes returns the index buffer ready for upload as uint32 indices.
func (m Mesh) IndexBytes() []byte {
	return slices.Clone(common.SliceToBytes(m.Indices))
}

// Validate checks that the streams agree in length and every index addresses a vertex.
//
// Returns:
//   - error: a description of the first inconsistency, or nil
func (m Mesh) Validate() error {
	if len(m.Positions) == 0 || len(m.Positions)%3 != 0 {
		return fmt.Errorf("mesh %s: %d position floats is not a positive multiple of 3", m.Name, len(m.Positions))
	}
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("mesh %s: %d normal floats for %d position floats", m.Name, len(m.Normals), len(m.Positions))
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %s: %d indices is not a positive multiple of 3", m.Name, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %s: index %d at %d exceeds %d vertices", m.Name, idx, i, n)
		}
	}
	return nil
}

// builder accumulates vertices for the generators below.
type builder struct {
	mesh Mesh
}

func (b *builder) vertex(p, n mgl32.Vec3) uint32 {
	idx := uint32(b.mesh.VertexCount())
	b.mesh.Positions = append(b.mesh.Positions, p[0], p[1], p[2])
	b.mesh.Normals = append(b.mesh.Normals, n[0], n[1], n[2])
	return idx
}

func (b *builder) triangle(a, c, d uint32) {
	b.mesh.Indices = append(b.mesh.Indices, a, c, d)
}

// grid emits two triangles per cell of a (rows+1) x (cols+1) vertex grid whose first vertex is base.
// Vertices are laid out row-major; the winding follows the row and column directions.
func (b *builder) grid(base uint32, rows, cols int) {
	stride := uint32(cols + 1)
	for i := range uint32(rows) {
		for j := range uint32(cols) {
			a := base + i*stride + j
			c := a + stride
			b.triangle(a, c, a+1)
			b.triangle(a+1, c, c+1)
		}
	}
}
