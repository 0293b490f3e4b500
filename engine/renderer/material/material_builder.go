package material

// Default Blinn-Phong terms.
const (
	DefaultAmbient   float32 = 0.4
	DefaultDiffuse   float32 = 0.04
	DefaultSpecular  float32 = 0.4
	DefaultShininess float32 = 30
)

// MaterialBuilderOption is a function that configures a material during construction.
type MaterialBuilderOption func(*material)

// WithAmbient sets the ambient intensity.
//
// Parameters:
//   - ambient: the ambient factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the ambient option to a material
func WithAmbient(ambient float32) MaterialBuilderOption {
	return func(m *material) {
		m.ambient = ambient
	}
}

// WithDiffuse sets the diffuse intensity.
//
// Parameters:
//   - diffuse: the diffuse factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse option to a material
func WithDiffuse(diffuse float32) MaterialBuilderOption {
	return func(m *material) {
		m.diffuse = diffuse
	}
}

// WithSpecular sets the specular intensity.
//
// Parameters:
//   - specular: the specular factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular option to a material
func WithSpecular(specular float32) MaterialBuilderOption {
	return func(m *material) {
		m.specular = specular
	}
}

// WithShininess sets the specular exponent.
//
// Parameters:
//   - shininess: the exponent
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shininess option to a material
func WithShininess(shininess float32) MaterialBuilderOption {
	return func(m *material) {
		m.shininess = shininess
	}
}
