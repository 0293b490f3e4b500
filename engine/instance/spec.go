package instance

import "fmt"

// Spec describes how many instances of each kind a scene holds and the seed their placement is drawn from.
type Spec struct {
	Cubes   int
	Tori    int
	Spheres int
	Seed    uint64
}

// Default instance counts: a floor, a torus and eighteen spheres.
const (
	DefaultCubes   = 1
	DefaultTori    = 1
	DefaultSpheres = 18
	DefaultSeed    = 1
)

// NewSpec creates a Spec with the default counts and seed and all specified options applied.
//
// Parameters:
//   - options: functional options to configure the spec
//
// Returns:
//   - Spec: the spec
func NewSpec(options ...SpecBuilderOption) Spec {
	s := Spec{
		Cubes:   DefaultCubes,
		Tori:    DefaultTori,
		Spheres: DefaultSpheres,
		Seed:    DefaultSeed,
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// Total returns the number of instances.
func (s Spec) Total() int {
	return s.Cubes + s.Tori + s.Spheres
}

// Count returns the number of instances of kind.
func (s Spec) Count(kind ShapeKind) int {
	switch kind {
	case ShapeKindCube:
		return s.Cubes
	case ShapeKindTorus:
		return s.Tori
	case ShapeKindSphere:
		return s.Spheres
	default:
		return 0
	}
}

// Validate rejects negative counts and empty scenes.
func (s Spec) Validate() error {
	if s.Cubes < 0 || s.Tori < 0 || s.Spheres < 0 {
		return fmt.Errorf("instance counts must not be negative: (%d, %d, %d)", s.Cubes, s.Tori, s.Spheres)
	}
	if s.Total() == 0 {
		return fmt.Errorf("scene has no instances")
	}
	return nil
}
