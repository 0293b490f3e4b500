package instance

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// FloatsPerMatrix is the number of float32 values one packed 4x4 matrix occupies.
	FloatsPerMatrix = 16
	// FloatsPerColor is the number of float32 values one packed color occupies.
	FloatsPerColor = 4
)

// Sphere travel limits. A sphere that leaves [SphereMinY, SphereMaxY] reverses direction.
const (
	SphereMinY float32 = -11
	SphereMaxY float32 = 11
)

var (
	floorTranslation = mgl32.Vec3{0, -13, -20}
	floorScale       = mgl32.Vec3{30, 0.1, 20}
	floorColor       = mgl32.Vec4{0.5, 0.5, 0.7, 1}

	torusTranslation = mgl32.Vec3{0, -5, -20}
	torusRotation    = mgl32.Vec3{math32.Pi / 2, 0, 0}
	torusScale       = mgl32.Vec3{4, 4, 4}
	torusSpacing     = float32(10)
)

// Range is a contiguous run of instances of one kind. Base is the index of the first instance and is used as
// the base instance of the run's draw.
type Range struct {
	Kind  ShapeKind
	Base  uint32
	Count uint32
}

// Initialize builds the instances described by spec, partitioned cube, torus, sphere.
//
// The first cube is the floor and the first torus sits above it; further cubes are scattered over the floor
// and further tori are spaced along X. Spheres are placed on either side of the torus and given a vertical
// velocity whose sign matches their side.
//
// Parameters:
//   - spec: the counts and seed
//
// Returns:
//   - []Instance: the instances, Spec.Total long
//   - error: an error if spec is invalid
func Initialize(spec Spec) ([]Instance, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(spec.Seed, spec.Seed^0x9e3779b97f4a7c15))
	instances := make([]Instance, 0, spec.Total())

	for i := range spec.Cubes {
		if i == 0 {
			instances = append(instances, Instance{Kind: ShapeKindCube, Translation: floorTranslation, Scale: floorScale, Color: floorColor})
			continue
		}
		s := 0.5 + rng.Float32()*1.5
		instances = append(instances, Instance{
			Kind:        ShapeKindCube,
			Translation: mgl32.Vec3{-14 + rng.Float32()*28, floorTranslation.Y() + s, -38 + rng.Float32()*36},
			Rotation:    mgl32.Vec3{0, rng.Float32() * 2 * math32.Pi, 0},
			Scale:       mgl32.Vec3{s, s, s},
			Color:       randomColor(rng),
		})
	}

	for i := range spec.Tori {
		offset := float32((i+1)/2) * torusSpacing
		if i%2 == 0 {
			offset = -offset
		}
		instances = append(instances, Instance{
			Kind:        ShapeKindTorus,
			Translation: torusTranslation.Add(mgl32.Vec3{offset, 0, 0}),
			Rotation:    torusRotation,
			Scale:       torusScale,
			Color:       randomColor(rng),
		})
	}

	for range spec.Spheres {
		sign := float32(-1)
		if rng.Float32() > 0.5 {
			sign = 1
		}
		tx := sign * (4 + rng.Float32()*12)
		y := SphereMinY + rng.Float32()*15
		rotation := mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
		s := max(0.5, rng.Float32())
		color := randomColor(rng)
		instances = append(instances, Instance{
			Kind:        ShapeKindSphere,
			Translation: mgl32.Vec3{tx, y, -20 + tx},
			Rotation:    rotation,
			Scale:       mgl32.Vec3{s, s, s},
			Color:       color,
			Velocity:    max(0.09, rng.Float32()/10) * sign,
		})
	}
	return instances, nil
}

func randomColor(rng *rand.Rand) mgl32.Vec4 {
	return mgl32.Vec4{rng.Float32(), rng.Float32(), rng.Float32(), 1}
}

// Pack returns the model and normal matrices of every instance, 16 floats each, in instance order.
//
// Parameters:
//   - instances: the instances to pack
//
// Returns:
//   - models: 16·len(instances) floats
//   - normals: 16·len(instances) floats
func Pack(instances []Instance) (models, normals []float32) {
	models = make([]float32, FloatsPerMatrix*len(instances))
	normals = make([]float32, FloatsPerMatrix*len(instances))
	// lengths match by construction
	_ = PackInto(models, normals, instances)
	return models, normals
}

// PackInto writes the model and normal matrices of every instance into preallocated arrays.
//
// Parameters:
//   - models: destination of the model matrices, exactly 16·len(instances) floats
//   - normals: destination of the normal matrices, exactly 16·len(instances) floats
//   - instances: the instances to pack
//
// Returns:
//   - error: an error if a destination has the wrong length; nothing is written in that case
func PackInto(models, normals []float32, instances []Instance) error {
	want := FloatsPerMatrix * len(instances)
	if len(models) != want || len(normals) != want {
		return fmt.Errorf("pack %d instances: destinations hold %d and %d floats, need %d",
			len(instances), len(models), len(normals), want)
	}
	for i, inst := range instances {
		m := inst.ModelMatrix()
		n := inst.NormalMatrix()
		copy(models[FloatsPerMatrix*i:], m[:])
		copy(normals[FloatsPerMatrix*i:], n[:])
	}
	return nil
}

// PackColors returns the color of every instance, 4 floats each, in instance order.
//
// Parameters:
//   - instances: the instances to pack
//
// Returns:
//   - []float32: 4·len(instances) floats
func PackColors(instances []Instance) []float32 {
	colors := make([]float32, 0, FloatsPerColor*len(instances))
	for _, inst := range instances {
		colors = append(colors, inst.Color[:]...)
	}
	return colors
}

// Advance moves the animated instances one frame forward. Tori spin about Z at two radians per unit of t.
// Spheres move by their velocity and reverse once they have left the travel limits; positions are not clamped.
// Cubes never move.
//
// Parameters:
//   - instances: the instances to update in place
//   - t: the animation time
func Advance(instances []Instance, t float32) {
	for i := range instances {
		inst := &instances[i]
		switch inst.Kind {
		case ShapeKindTorus:
			inst.Rotation[2] = 2 * t
		case ShapeKindSphere:
			inst.Translation[1] += inst.Velocity
			if inst.Translation[1] < SphereMinY || inst.Translation[1] > SphereMaxY {
				inst.Velocity = -inst.Velocity
			}
		}
	}
}

// Ranges returns the non-empty runs of instances in kind order.
//
// Parameters:
//   - instances: the instances, partitioned cube, torus, sphere
//
// Returns:
//   - []Range: one range per kind present
//   - error: an error if the instances are not partitioned in kind order or hold an unknown kind
func Ranges(instances []Instance) ([]Range, error) {
	var ranges []Range
	for i, inst := range instances {
		if inst.Kind < ShapeKindCube || inst.Kind > ShapeKindSphere {
			return nil, fmt.Errorf("instance %d: unknown kind %s", i, inst.Kind)
		}
		if n := len(ranges); n > 0 && ranges[n-1].Kind == inst.Kind {
			ranges[n-1].Count++
			continue
		}
		if n := len(ranges); n > 0 && ranges[n-1].Kind > inst.Kind {
			return nil, fmt.Errorf("instance %d: %s after %s breaks the cube, torus, sphere partition", i, inst.Kind, ranges[n-1].Kind)
		}
		ranges = append(ranges, Range{Kind: inst.Kind, Base: uint32(i), Count: 1})
	}
	return ranges, nil
}
