package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadow/engine/geometry"
	"github.com/Carmen-Shannon/oxy-shadow/engine/instance"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/registry"
)

// ShapeBatch is the draw of one contiguous run of instances sharing a mesh.
type ShapeBatch struct {
	Kind instance.ShapeKind

	Positions renderer.BufferHandle
	Normals   renderer.BufferHandle
	Indices   renderer.BufferHandle

	IndexCount uint32
	// Base is the index of the batch's first instance in the per-instance buffers.
	Base  uint32
	Count uint32
}

// Meshes maps each shape kind to the mesh its instances are drawn with.
type Meshes map[instance.ShapeKind]geometry.Mesh

// DefaultMeshes returns a unit cube, a unit sphere and a torus of radius 1.5.
func DefaultMeshes() Meshes {
	return Meshes{
		instance.ShapeKindCube:   geometry.Cube(),
		instance.ShapeKindTorus:  geometry.Torus(1.5, 0.45, 60, 20),
		instance.ShapeKindSphere: geometry.Sphere(1, 10, 16),
	}
}

// uploadBatches uploads the mesh of every range and returns one batch per range, in range order.
func uploadBatches(reg registry.Registry, meshes Meshes, ranges []instance.Range) ([]ShapeBatch, error) {
	batches := make([]ShapeBatch, 0, len(ranges))
	for _, r := range ranges {
		mesh, ok := meshes[r.Kind]
		if !ok {
			return nil, fmt.Errorf("no mesh for %s instances: %w", r.Kind, renderer.ErrResourceCreationFailure)
		}
		if err := mesh.Validate(); err != nil {
			return nil, fmt.Errorf("%s mesh: %w: %w", r.Kind, renderer.ErrResourceCreationFailure, err)
		}

		b := ShapeBatch{Kind: r.Kind, IndexCount: mesh.IndexCount(), Base: r.Base, Count: r.Count}
		var err error
		if b.Positions, err = reg.AllocateWithData(r.Kind.String()+"_positions", renderer.BufferUsageVertex, mesh.PositionBytes()); err != nil {
			return nil, err
		}
		if b.Normals, err = reg.AllocateWithData(r.Kind.String()+"_normals", renderer.BufferUsageVertex, mesh.NormalBytes()); err != nil {
			return nil, err
		}
		if b.Indices, err = reg.AllocateWithData(r.Kind.String()+"_indices", renderer.BufferUsageIndex, mesh.IndexBytes()); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// drawBatches binds the geometry of every batch and issues one instanced draw per batch.
// The pipeline and bind groups must already be set on pass.
func drawBatches(pass renderer.PassRecorder, batches []ShapeBatch) {
	for _, b := range batches {
		pass.SetVertexBuffer(geometry.PositionSlot, b.Positions)
		pass.SetVertexBuffer(geometry.NormalSlot, b.Normals)
		pass.SetIndexBuffer(b.Indices)
		pass.DrawIndexed(b.IndexCount, b.Count, 0, 0, b.Base)
	}
}
