package pipeline

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/shader"
	log "github.com/sirupsen/logrus"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the shader stages and fixed-function state of one render pipeline, and the handle once compiled.
type pipeline struct {
	// key is the unique identifier of the pipeline, used as its debug label
	key string
	// pass is the kind of render pass the pipeline renders into
	pass renderer.PassKind

	vertexShader, fragmentShader shader.Shader

	// vertexLayout is the vertex buffer layout the pipeline is compiled with, indexed by slot
	vertexLayout []renderer.VertexBufferLayout
	// bindGroupLayouts are the merged layouts of all stages, indexed by group
	bindGroupLayouts []renderer.BindGroupLayout

	cullMode            renderer.CullMode
	depthBias           int32
	depthBiasSlopeScale float32

	// handle is zero until the pipeline is compiled
	handle renderer.PipelineHandle
}

// Pipeline is a render pipeline of the scene: its shader stages, vertex layout, bind group layouts and
// fixed-function state. A Pipeline is immutable once compiled.
type Pipeline interface {
	// Key returns the unique key of the pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// Pass returns the kind of render pass the pipeline renders into.
	//
	// Returns:
	//   - renderer.PassKind: renderer.PassKindDepthOnly or renderer.PassKindColor
	Pass() renderer.PassKind

	// Shader retrieves the stage of the given type, or nil if the pipeline has no such stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Handle returns the compiled pipeline handle. It is zero until the owning PipelineSet has been built.
	//
	// Returns:
	//   - renderer.PipelineHandle: the compiled pipeline
	Handle() renderer.PipelineHandle

	// Compiled reports whether the pipeline has a handle.
	Compiled() bool

	// VertexLayout returns the vertex buffer layout, indexed by slot.
	//
	// Returns:
	//   - []renderer.VertexBufferLayout: the layouts
	VertexLayout() []renderer.VertexBufferLayout

	// BindGroupLayout returns the merged layout of one group.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - renderer.BindGroupLayout: the layout
	//   - bool: false if the pipeline declares no such group
	BindGroupLayout(group uint32) (renderer.BindGroupLayout, bool)

	// BindGroupLayouts returns the merged layouts of every group, indexed by group.
	BindGroupLayouts() []renderer.BindGroupLayout

	// BindingName returns the WGSL variable name declared at a group and binding by any stage, or "" if none.
	//
	// Parameters:
	//   - group: the group index
	//   - binding: the binding index
	//
	// Returns:
	//   - string: the variable name
	BindingName(group, binding uint32) string

	// CullMode returns the face culling mode.
	CullMode() renderer.CullMode

	// DepthBias returns the constant depth bias.
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias.
	DepthBiasSlopeScale() float32
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new, uncompiled Pipeline. A vertex shader and vertex layout
// must be provided through options; color pipelines additionally need a fragment shader.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - pass: the kind of render pass the pipeline renders into
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the configured pipeline
//   - error: an error wrapping renderer.ErrResourceCreationFailure if the stages or layout are inconsistent
func NewPipeline(key string, pass renderer.PassKind, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		key:      key,
		pass:     pass,
		cullMode: renderer.CullModeNone,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w: %w", key, renderer.ErrResourceCreationFailure, err)
	}
	return p, nil
}

func (p *pipeline) validate() error {
	if p.vertexShader == nil {
		return fmt.Errorf("no vertex shader")
	}
	if p.vertexShader.ShaderType() != shader.ShaderTypeVertex {
		return fmt.Errorf("vertex stage %s is a %s shader", p.vertexShader.Key(), p.vertexShader.ShaderType())
	}
	stages := []shader.Shader{p.vertexShader}
	switch p.pass {
	case renderer.PassKindDepthOnly:
		if p.fragmentShader != nil {
			return fmt.Errorf("depth-only pipelines take no fragment stage")
		}
	case renderer.PassKindColor:
		if p.fragmentShader == nil {
			return fmt.Errorf("no fragment shader")
		}
		if p.fragmentShader.ShaderType() != shader.ShaderTypeFragment {
			return fmt.Errorf("fragment stage %s is a %s shader", p.fragmentShader.Key(), p.fragmentShader.ShaderType())
		}
		stages = append(stages, p.fragmentShader)
	default:
		return fmt.Errorf("unknown pass kind %d", p.pass)
	}

	declared := p.vertexShader.VertexLayouts()
	if len(declared) != len(p.vertexLayout) {
		return fmt.Errorf("vertex layout has %d buffers, %s declares %d", len(p.vertexLayout), p.vertexShader.Key(), len(declared))
	}
	for slot, l := range p.vertexLayout {
		if !vertexLayoutEqual(l, declared[slot]) {
			return fmt.Errorf("vertex buffer %d does not match the inputs of %s", slot, p.vertexShader.Key())
		}
	}

	layouts, err := shader.MergeBindGroupLayouts(stages...)
	if err != nil {
		return err
	}
	p.bindGroupLayouts = layouts
	return nil
}

func vertexLayoutEqual(a, b renderer.VertexBufferLayout) bool {
	return a.ArrayStride == b.ArrayStride && slices.Equal(a.Attributes, b.Attributes)
}

// descriptor builds the Context description of the pipeline from its compiled stages.
func (p *pipeline) descriptor(vertexProgram renderer.ProgramHandle, fragmentProgram *renderer.ProgramHandle) renderer.RenderPipelineDescriptor {
	desc := renderer.RenderPipelineDescriptor{
		Label:               p.key,
		Pass:                p.pass,
		Vertex:              renderer.ProgramStage{Program: vertexProgram, EntryPoint: p.vertexShader.EntryPoint()},
		Buffers:             p.vertexLayout,
		BindGroupLayouts:    p.bindGroupLayouts,
		CullMode:            p.cullMode,
		DepthBias:           p.depthBias,
		DepthBiasSlopeScale: p.depthBiasSlopeScale,
	}
	if fragmentProgram != nil {
		desc.Fragment = &renderer.ProgramStage{Program: *fragmentProgram, EntryPoint: p.fragmentShader.EntryPoint()}
	}
	return desc
}

// compile creates the shader modules and the pipeline. It blocks until the context is done.
func (p *pipeline) compile(ctx renderer.Context) error {
	vertexProgram, err := ctx.CreateShaderModule(p.vertexShader.Key(), p.vertexShader.Source())
	if err != nil {
		return fmt.Errorf("pipeline %s: vertex module: %w: %w", p.key, renderer.ErrResourceCreationFailure, err)
	}
	var fragmentProgram *renderer.ProgramHandle
	if p.fragmentShader != nil {
		h, err := ctx.CreateShaderModule(p.fragmentShader.Key(), p.fragmentShader.Source())
		if err != nil {
			return fmt.Errorf("pipeline %s: fragment module: %w: %w", p.key, renderer.ErrResourceCreationFailure, err)
		}
		fragmentProgram = &h
	}

	h, err := ctx.CreateRenderPipeline(p.descriptor(vertexProgram, fragmentProgram))
	if err != nil {
		return fmt.Errorf("pipeline %s: %w: %w", p.key, renderer.ErrResourceCreationFailure, err)
	}
	p.handle = h
	log.WithFields(log.Fields{"pipeline": p.key, "groups": len(p.bindGroupLayouts)}).Debug("compiled pipeline")
	return nil
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Pass() renderer.PassKind {
	return p.pass
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) Handle() renderer.PipelineHandle {
	return p.handle
}

func (p *pipeline) Compiled() bool {
	return p.handle != 0
}

func (p *pipeline) VertexLayout() []renderer.VertexBufferLayout {
	return p.vertexLayout
}

func (p *pipeline) BindGroupLayout(group uint32) (renderer.BindGroupLayout, bool) {
	if int(group) >= len(p.bindGroupLayouts) {
		return renderer.BindGroupLayout{}, false
	}
	return p.bindGroupLayouts[group], true
}

func (p *pipeline) BindGroupLayouts() []renderer.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) BindingName(group, binding uint32) string {
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s == nil {
			continue
		}
		if name := s.BindGroupVarName(int(group), int(binding)); name != "" {
			return name
		}
	}
	return ""
}

func (p *pipeline) CullMode() renderer.CullMode {
	return p.cullMode
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}
