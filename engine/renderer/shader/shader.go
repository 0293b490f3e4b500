package shader

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
)

// ShaderType identifies which pipeline stage a shader module provides.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if t == ShaderTypeFragment {
		return "fragment"
	}
	return "vertex"
}

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and bind group validation.
type shader struct {
	key              string
	source           string
	shaderType       ShaderType
	bindGroupLayouts map[int]renderer.BindGroupLayout
	bindingVarNames  map[int]map[int]string
	vertexLayouts    []renderer.VertexBufferLayout
	entryPoint       string
	declarations     []Annotation
}

// Shader defines the interface for a pre-processed and parsed WGSL shader. It exposes the shader's
// unique key, processed source, entry point, bind group layouts and vertex buffer layouts needed for
// pipeline creation and bind group validation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage the shader provides.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// BindGroupLayout retrieves the layout the shader declares for one group index.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - renderer.BindGroupLayout: the layout, sorted by binding
	//   - bool: false if the shader declares nothing in that group
	BindGroupLayout(group int) (renderer.BindGroupLayout, bool)

	// BindGroupLayouts retrieves all parsed bind group layouts keyed by group index.
	//
	// Returns:
	//   - map[int]renderer.BindGroupLayout: layouts keyed by group index
	BindGroupLayouts() map[int]renderer.BindGroupLayout

	// BindGroupVarName retrieves the variable name for a given group and binding index, if it exists.
	// This is used for error messages and debugging.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index associated with the variable name, or -1 if not found
	//   - bool: true if the variable name was found, false otherwise
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayouts retrieves the vertex buffer layouts of a vertex shader, indexed by slot.
	// Fragment shaders return nil.
	//
	// Returns:
	//   - []renderer.VertexBufferLayout: the layouts in slot order
	VertexLayouts() []renderer.VertexBufferLayout

	// Declarations returns the @oxy:group annotations that generated part of the source.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source into a Shader.
//
// Parameters:
//   - key: a unique identifier for the shader, used for labels and lookups
//   - shaderType: the stage the shader provides
//   - source: the raw WGSL source, which may contain @oxy: annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails, the entry point is missing or a binding cannot be classified
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: empty source", key)
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
	}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayout(group int) (renderer.BindGroupLayout, bool) {
	l, ok := s.bindGroupLayouts[group]
	return l, ok
}

func (s *shader) BindGroupLayouts() map[int]renderer.BindGroupLayout {
	return s.bindGroupLayouts
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayouts() []renderer.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

// parseSource pre-processes the WGSL source, parses the entry point name and extracts layout
// metadata appropriate for the shader type. Vertex shaders get vertex buffer layouts parsed.
// All shader types get bind group layouts parsed.
func (s *shader) parseSource(raw string) error {
	pp := NewPreProcessor()
	source, err := pp.Process(raw)
	if err != nil {
		return fmt.Errorf("pre-process: %w", err)
	}
	s.source = source
	s.declarations = slices.Clone(pp.Declarations())

	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.entryPoint == "" {
		return fmt.Errorf("no @%s entry point", s.shaderType)
	}

	visibility := renderer.ShaderStageVertex
	if s.shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(s.source)
	} else {
		visibility = renderer.ShaderStageFragment
	}

	s.bindGroupLayouts, s.bindingVarNames, err = parseBindGroupLayouts(s.source, visibility)
	return err
}
