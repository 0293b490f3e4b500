package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// cubeFaces lists each face as its outward normal and two in-plane axes with u x v = normal.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// Cube builds an axis-aligned cube spanning [-1, 1] on every axis with flat per-face normals:
// 24 vertices and 36 indices.
//
// Returns:
//   - Mesh: the cube
func Cube() Mesh {
	b := &builder{mesh: Mesh{Name: "cube"}}
	for _, f := range cubeFaces {
		n, u, v := f[0], f[1], f[2]
		base := b.vertex(n.Sub(u).Sub(v), n)
		b.vertex(n.Add(u).Sub(v), n)
		b.vertex(n.Add(u).Add(v), n)
		b.vertex(n.Sub(u).Add(v), n)
		b.triangle(base, base+1, base+2)
		b.triangle(base, base+2, base+3)
	}
	return b.mesh
}

// Sphere builds a UV sphere centered on the origin with its poles on the Y axis.
//
// Parameters:
//   - radius: the sphere radius
//   - rings: latitude subdivisions, at least 2
//   - segments: longitude subdivisions, at least 3
//
// Returns:
//   - Mesh: the sphere with (rings+1)*(segments+1) vertices
func Sphere(radius float32, rings, segments int) Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)
	b := &builder{mesh: Mesh{Name: "sphere"}}
	for i := range rings + 1 {
		theta := float32(i) * math32.Pi / float32(rings)
		sinT, cosT := math32.Sincos(theta)
		for j := range segments + 1 {
			phi := float32(j) * 2 * math32.Pi / float32(segments)
			sinP, cosP := math32.Sincos(phi)
			n := mgl32.Vec3{sinT * cosP, cosT, -sinT * sinP}
			b.vertex(n.Mul(radius), n)
		}
	}
	b.grid(0, rings, segments)
	return b.mesh
}

// Torus builds a ring torus lying in the XZ plane around the Y axis.
//
// Parameters:
//   - radius: distance from the center to the middle of the tube
//   - tube: the tube radius
//   - radialSegments: subdivisions around the Y axis, at least 3
//   - tubularSegments: subdivisions around the tube, at least 3
//
// Returns:
//   - Mesh: the torus with (radialSegments+1)*(tubularSegments+1) vertices
func Torus(radius, tube float32, radialSegments, tubularSegments int) Mesh {
	radialSegments = max(radialSegments, 3)
	tubularSegments = max(tubularSegments, 3)
	b := &builder{mesh: Mesh{Name: "torus"}}
	for i := range radialSegments + 1 {
		u := float32(i) * 2 * math32.Pi / float32(radialSegments)
		sinU, cosU := math32.Sincos(u)
		for j := range tubularSegments + 1 {
			v := float32(j) * 2 * math32.Pi / float32(tubularSegments)
			sinV, cosV := math32.Sincos(v)
			n := mgl32.Vec3{cosV * cosU, sinV, -cosV * sinU}
			ring := radius + tube*cosV
			p := mgl32.Vec3{ring * cosU, tube * sinV, -ring * sinU}
			b.vertex(p, n)
		}
	}
	b.grid(0, radialSegments, tubularSegments)
	return b.mesh
}
