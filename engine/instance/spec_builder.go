package instance

// SpecBuilderOption is a functional option applied to a Spec during construction via NewSpec.
type SpecBuilderOption func(*Spec)

// WithCounts sets the number of cubes, tori and spheres.
//
// Parameters:
//   - cubes: the number of cubes; the first is the floor
//   - tori: the number of tori
//   - spheres: the number of bouncing spheres
//
// Returns:
//   - SpecBuilderOption: a function that applies the counts option to a Spec
func WithCounts(cubes, tori, spheres int) SpecBuilderOption {
	return func(s *Spec) {
		s.Cubes = cubes
		s.Tori = tori
		s.Spheres = spheres
	}
}

// WithSeed sets the seed of the placement RNG. Equal seeds produce equal scenes.
//
// Parameters:
//   - seed: the seed
//
// Returns:
//   - SpecBuilderOption: a function that applies the seed option to a Spec
func WithSeed(seed uint64) SpecBuilderOption {
	return func(s *Spec) {
		s.Seed = seed
	}
}
