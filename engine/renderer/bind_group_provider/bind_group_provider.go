package bind_group_provider

import (
	"fmt"
	"maps"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/registry"
	log "github.com/sirupsen/logrus"
)

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	label string

	registry  registry.Registry
	pipelines pipeline.PipelineSet

	// groups maps a bind group label to its handle
	groups map[string]renderer.GroupHandle
}

// BindGroupProvider creates the bind groups of a scene. Every group is validated against the layout its
// pipeline declares before it reaches the Context: the number of resources, their binding indices and order,
// their kinds, and the size of every buffer against the shader's minimum binding size.
//
// Groups are created once at setup and reused by every frame.
type BindGroupProvider interface {
	// Label returns the debug label of the provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindShadowGroup creates group 0 of the shadow pipeline.
	//
	// Parameters:
	//   - model: the storage buffer of per-instance model matrices
	//   - lightProjection: the uniform buffer holding the light view-projection
	//
	// Returns:
	//   - renderer.GroupHandle: the new bind group
	//   - error: an error wrapping renderer.ErrBindingLayoutMismatch or renderer.ErrResourceCreationFailure
	BindShadowGroup(model, lightProjection renderer.BufferHandle) (renderer.GroupHandle, error)

	// BindColorVertexGroup creates group 0 of the color pipeline.
	//
	// Parameters:
	//   - viewProjection: the uniform buffer holding the camera view-projection
	//   - model: the storage buffer of per-instance model matrices
	//   - normal: the storage buffer of per-instance normal matrices
	//   - lightProjection: the uniform buffer holding the light view-projection
	//   - color: the storage buffer of per-instance colors
	//
	// Returns:
	//   - renderer.GroupHandle: the new bind group
	//   - error: an error wrapping renderer.ErrBindingLayoutMismatch or renderer.ErrResourceCreationFailure
	BindColorVertexGroup(viewProjection, model, normal, lightProjection, color renderer.BufferHandle) (renderer.GroupHandle, error)

	// BindColorFragmentGroup creates group 1 of the color pipeline.
	//
	// Parameters:
	//   - light: the light uniform buffer
	//   - material: the material uniform buffer
	//   - shadowMap: the shadow depth texture
	//   - shadowSampler: the comparison sampler the shadow map is read through
	//
	// Returns:
	//   - renderer.GroupHandle: the new bind group
	//   - error: an error wrapping renderer.ErrBindingLayoutMismatch or renderer.ErrResourceCreationFailure
	BindColorFragmentGroup(light, material renderer.BufferHandle, shadowMap renderer.TextureHandle, shadowSampler renderer.SamplerHandle) (renderer.GroupHandle, error)

	// Bind validates entries against one group of a compiled pipeline and creates the bind group.
	//
	// Parameters:
	//   - label: debug label of the bind group, unique within the provider
	//   - p: the compiled pipeline
	//   - group: the group index
	//   - entries: the resources in binding order
	//
	// Returns:
	//   - renderer.GroupHandle: the new bind group
	//   - error: an error wrapping renderer.ErrBindingLayoutMismatch or renderer.ErrResourceCreationFailure
	Bind(label string, p pipeline.Pipeline, group uint32, entries ...renderer.BindGroupEntry) (renderer.GroupHandle, error)

	// Group returns a bind group by label.
	//
	// Parameters:
	//   - label: the bind group label
	//
	// Returns:
	//   - renderer.GroupHandle: the bind group
	//   - bool: false if no group was created under label
	Group(label string) (renderer.GroupHandle, bool)

	// Groups returns a copy of every bind group created so far, keyed by label.
	Groups() map[string]renderer.GroupHandle
}

var _ BindGroupProvider = &bindGroupProvider{}

// Bind group labels.
const (
	ShadowGroupLabel        = "shadow"
	ColorVertexGroupLabel   = "color_vertex"
	ColorFragmentGroupLabel = "color_fragment"
)

// NewBindGroupProvider creates a BindGroupProvider for the pipelines of a built PipelineSet, binding resources
// owned by reg.
//
// Parameters:
//   - reg: the registry owning every bound resource
//   - pipelines: the built pipeline set
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(reg registry.Registry, pipelines pipeline.PipelineSet, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:     reg.Label(),
		registry:  reg,
		pipelines: pipelines,
		groups:    make(map[string]renderer.GroupHandle),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindShadowGroup(model, lightProjection renderer.BufferHandle) (renderer.GroupHandle, error) {
	return p.Bind(ShadowGroupLabel, p.pipelines.Shadow(), ShadowGroup,
		renderer.BindGroupEntry{Binding: ShadowModelBinding, Buffer: model},
		renderer.BindGroupEntry{Binding: ShadowLightProjectionBinding, Buffer: lightProjection},
	)
}

func (p *bindGroupProvider) BindColorVertexGroup(viewProjection, model, normal, lightProjection, color renderer.BufferHandle) (renderer.GroupHandle, error) {
	return p.Bind(ColorVertexGroupLabel, p.pipelines.Color(), ColorVertexGroup,
		renderer.BindGroupEntry{Binding: ColorViewProjectionBinding, Buffer: viewProjection},
		renderer.BindGroupEntry{Binding: ColorModelBinding, Buffer: model},
		renderer.BindGroupEntry{Binding: ColorNormalBinding, Buffer: normal},
		renderer.BindGroupEntry{Binding: ColorLightProjectionBinding, Buffer: lightProjection},
		renderer.BindGroupEntry{Binding: ColorColorBinding, Buffer: color},
	)
}

func (p *bindGroupProvider) BindColorFragmentGroup(light, material renderer.BufferHandle, shadowMap renderer.TextureHandle, shadowSampler renderer.SamplerHandle) (renderer.GroupHandle, error) {
	return p.Bind(ColorFragmentGroupLabel, p.pipelines.Color(), ColorFragmentGroup,
		renderer.BindGroupEntry{Binding: ColorLightBinding, Buffer: light},
		renderer.BindGroupEntry{Binding: ColorMaterialBinding, Buffer: material},
		renderer.BindGroupEntry{Binding: ColorShadowMapBinding, Texture: shadowMap},
		renderer.BindGroupEntry{Binding: ColorShadowSamplerBinding, Sampler: shadowSampler},
	)
}

func (p *bindGroupProvider) Bind(label string, pl pipeline.Pipeline, group uint32, entries ...renderer.BindGroupEntry) (renderer.GroupHandle, error) {
	if pl == nil || !pl.Compiled() {
		return 0, fmt.Errorf("bind group %s: pipeline is not built: %w", label, renderer.ErrBindingLayoutMismatch)
	}
	if _, dup := p.groups[label]; dup {
		return 0, fmt.Errorf("bind group %s: already created: %w", label, renderer.ErrResourceCreationFailure)
	}
	if err := p.validate(label, pl, group, entries); err != nil {
		return 0, err
	}

	h, err := p.registry.Context().CreateBindGroup(renderer.BindGroupDescriptor{
		Label:    label,
		Pipeline: pl.Handle(),
		Group:    group,
		Entries:  entries,
	})
	if err != nil {
		return 0, fmt.Errorf("bind group %s: %w: %w", label, renderer.ErrResourceCreationFailure, err)
	}
	p.groups[label] = h
	log.WithFields(log.Fields{"group": label, "pipeline": pl.Key(), "index": group, "entries": len(entries)}).Debug("created bind group")
	return h, nil
}

// validate checks entries against the layout pipeline pl declares for group.
func (p *bindGroupProvider) validate(label string, pl pipeline.Pipeline, group uint32, entries []renderer.BindGroupEntry) error {
	layout, ok := pl.BindGroupLayout(group)
	if !ok {
		return fmt.Errorf("bind group %s: pipeline %s declares no group %d: %w", label, pl.Key(), group, renderer.ErrBindingLayoutMismatch)
	}
	if len(entries) != len(layout.Entries) {
		return fmt.Errorf("bind group %s: %d resources for the %d bindings of %s group %d: %w",
			label, len(entries), len(layout.Entries), pl.Key(), group, renderer.ErrBindingLayoutMismatch)
	}

	for i, e := range entries {
		slot := layout.Entries[i]
		name := pl.BindingName(group, slot.Binding)
		if e.Binding != slot.Binding {
			return fmt.Errorf("bind group %s: resource %d targets binding %d, expected %d (%s): %w",
				label, i, e.Binding, slot.Binding, name, renderer.ErrBindingLayoutMismatch)
		}
		if err := p.checkResource(e, slot); err != nil {
			return fmt.Errorf("bind group %s: binding %d (%s): %w: %w", label, slot.Binding, name, renderer.ErrBindingLayoutMismatch, err)
		}
	}
	return nil
}

// checkResource checks that e is the kind of resource slot expects and, for buffers, that it is large enough.
func (p *bindGroupProvider) checkResource(e renderer.BindGroupEntry, slot renderer.BindingLayoutEntry) error {
	set := 0
	for _, nonZero := range []bool{e.Buffer != 0, e.Texture != 0, e.Sampler != 0} {
		if nonZero {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("expected exactly one resource, got %d", set)
	}

	switch slot.Kind {
	case renderer.BindingKindUniformBuffer, renderer.BindingKindStorageBuffer, renderer.BindingKindReadOnlyStorageBuffer:
		if e.Buffer == 0 {
			return fmt.Errorf("%s slot needs a buffer", slot.Kind)
		}
		want := renderer.BufferUsageStorage
		if slot.Kind == renderer.BindingKindUniformBuffer {
			want = renderer.BufferUsageUniform
		}
		if usage := p.registry.Usage(e.Buffer); usage != want {
			return fmt.Errorf("%s slot given a %s buffer", slot.Kind, usage)
		}
		if size := p.registry.Size(e.Buffer); size < slot.MinBindingSize {
			return fmt.Errorf("buffer of %d bytes is smaller than the %d bytes the shader reads", size, slot.MinBindingSize)
		}
	case renderer.BindingKindDepthTexture, renderer.BindingKindTexture:
		if e.Texture == 0 || p.registry.TextureResolution(e.Texture) == 0 {
			return fmt.Errorf("%s slot needs a registered texture", slot.Kind)
		}
	case renderer.BindingKindComparisonSampler:
		if e.Sampler == 0 || !p.registry.HasSampler(e.Sampler) {
			return fmt.Errorf("%s slot needs a registered comparison sampler", slot.Kind)
		}
	default:
		return fmt.Errorf("unsupported %s slot", slot.Kind)
	}
	return nil
}

func (p *bindGroupProvider) Group(label string) (renderer.GroupHandle, bool) {
	h, ok := p.groups[label]
	return h, ok
}

func (p *bindGroupProvider) Groups() map[string]renderer.GroupHandle {
	return maps.Clone(p.groups)
}
