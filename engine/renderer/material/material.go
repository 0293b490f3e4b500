package material

// material is the implementation of the Material interface.
type material struct {
	name      string
	ambient   float32
	diffuse   float32
	specular  float32
	shininess float32
}

// Material is a Blinn-Phong surface description shared by every instance in a scene.
// Per-instance color comes from the instance color buffer; the material only scales the lighting terms.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Ambient retrieves the ambient intensity.
	//
	// Returns:
	//   - float32: the ambient factor
	Ambient() float32

	// Diffuse retrieves the diffuse intensity.
	//
	// Returns:
	//   - float32: the diffuse factor
	Diffuse() float32

	// Specular retrieves the specular intensity.
	//
	// Returns:
	//   - float32: the specular factor
	Specular() float32

	// Shininess retrieves the specular exponent.
	//
	// Returns:
	//   - float32: the shininess exponent
	Shininess() float32

	// GPU returns the uniform representation of the material.
	//
	// Returns:
	//   - GPUMaterial: the material uniform
	GPU() GPUMaterial
}

var _ Material = &material{}

// NewMaterial creates a new Material with all specified options applied.
//
// Parameters:
//   - name: the material identifier
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the new material
func NewMaterial(name string, options ...MaterialBuilderOption) Material {
	m := &material{
		name:      name,
		ambient:   DefaultAmbient,
		diffuse:   DefaultDiffuse,
		specular:  DefaultSpecular,
		shininess: DefaultShininess,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Ambient() float32 {
	return m.ambient
}

func (m *material) Diffuse() float32 {
	return m.diffuse
}

func (m *material) Specular() float32 {
	return m.specular
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) GPU() GPUMaterial {
	return GPUMaterial{
		Ambient:   m.ambient,
		Diffuse:   m.diffuse,
		Specular:  m.specular,
		Shininess: m.shininess,
	}
}
