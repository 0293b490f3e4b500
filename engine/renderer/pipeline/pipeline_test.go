package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/engine/geometry"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shadowVertexSource = `
//@oxy:include position
//@oxy:include normal
//@oxy:group 0 0 storage_read modelMatrices array<mat4>
//@oxy:group 0 1 storage_uniform lightViewProjection mat4

@vertex
fn vs_main(pos: PositionInput, nrm: NormalInput, @builtin(instance_index) idx: u32) -> @builtin(position) vec4f {
    return lightViewProjection * modelMatrices[idx] * vec4f(pos.position + nrm.normal * 0.0, 1.0);
}
`

const colorVertexSource = `
//@oxy:include position
//@oxy:include normal
//@oxy:group 0 0 storage_uniform viewProjection mat4
//@oxy:group 0 1 storage_read modelMatrices array<mat4>

struct Output {
    @builtin(position) position: vec4f,
    @location(0) vNormal: vec3f,
}

@vertex
fn vs_main(pos: PositionInput, nrm: NormalInput, @builtin(instance_index) idx: u32) -> Output {
    var out: Output;
    out.position = viewProjection * modelMatrices[idx] * vec4f(pos.position, 1.0);
    out.vNormal = nrm.normal;
    return out;
}
`

const colorFragmentSource = `
//@oxy:include light
//@oxy:group 1 0 storage_uniform light light
@group(1) @binding(1) var shadowMap: texture_depth_2d;
@group(1) @binding(2) var shadowSampler: sampler_comparison;

@fragment
fn fs_main(@location(0) vNormal: vec3f) -> @location(0) vec4f {
    return vec4f(vNormal, 1.0) * light.specularColor;
}
`

const unshadowedFragmentSource = `
@fragment
fn fs_main(@location(0) vNormal: vec3f) -> @location(0) vec4f {
    return vec4f(vNormal, 1.0);
}
`

func mustShader(t *testing.T, key string, shaderType shader.ShaderType, source string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(key, shaderType, source)
	require.NoError(t, err)
	return s
}

func stagedSet(t *testing.T, ctx renderer.Context, opts ...PipelineBuilderOption) PipelineSet {
	t.Helper()
	set := NewPipelineSet(ctx)
	require.NoError(t, set.BuildShadowPipeline(mustShader(t, "shadow_vert", shader.ShaderTypeVertex, shadowVertexSource), geometry.VertexLayout(), opts...))
	require.NoError(t, set.BuildColorPipeline(
		mustShader(t, "color_vert", shader.ShaderTypeVertex, colorVertexSource),
		mustShader(t, "color_frag", shader.ShaderTypeFragment, colorFragmentSource),
		geometry.VertexLayout(),
	))
	return set
}

func TestPipelineSetBuild(t *testing.T) {
	ctx := renderer.NewRecordingContext()
	set := stagedSet(t, ctx, WithDepthBias(2, 1.5))

	assert.False(t, set.Shadow().Compiled())
	require.NoError(t, set.Build())
	assert.True(t, set.Built())

	shadow, ok := ctx.Pipeline(set.Shadow().Handle())
	require.True(t, ok)
	assert.Equal(t, renderer.PassKindDepthOnly, shadow.Pass)
	assert.Nil(t, shadow.Fragment, "shadow pipeline has no fragment stage")
	assert.Equal(t, "vs_main", shadow.Vertex.EntryPoint)
	assert.Equal(t, geometry.VertexLayout(), shadow.Buffers)
	assert.Equal(t, renderer.CullModeNone, shadow.CullMode)
	assert.Equal(t, int32(2), shadow.DepthBias)
	assert.Equal(t, float32(1.5), shadow.DepthBiasSlopeScale)
	require.Len(t, shadow.BindGroupLayouts, 1)
	assert.Equal(t, renderer.BindingKindReadOnlyStorageBuffer, shadow.BindGroupLayouts[0].Entries[0].Kind)
	assert.Equal(t, renderer.BindingKindUniformBuffer, shadow.BindGroupLayouts[0].Entries[1].Kind)

	color, ok := ctx.Pipeline(set.Color().Handle())
	require.True(t, ok)
	assert.Equal(t, renderer.PassKindColor, color.Pass)
	require.NotNil(t, color.Fragment)
	assert.Equal(t, "fs_main", color.Fragment.EntryPoint)
	assert.Equal(t, shadow.Buffers, color.Buffers, "both pipelines share the vertex layout")
	require.Len(t, color.BindGroupLayouts, 2)
	frag := color.BindGroupLayouts[1].Entries
	require.Len(t, frag, 3)
	assert.Equal(t, renderer.BindingKindDepthTexture, frag[1].Kind)
	assert.Equal(t, renderer.BindingKindComparisonSampler, frag[2].Kind)
	assert.Equal(t, renderer.ShaderStageFragment, frag[0].Visibility)
	assert.Equal(t, uint64(48), frag[0].MinBindingSize)

	assert.Equal(t, "lightViewProjection", set.Shadow().BindingName(0, 1))
	assert.Equal(t, "shadowMap", set.Color().BindingName(1, 1))
	assert.Same(t, set.Color(), set.Pipeline(ColorKey))
	assert.Nil(t, set.Pipeline("missing"))
}

func TestPipelineSetBuildFailure(t *testing.T) {
	tests := []struct {
		name string
		fail string
	}{
		{name: "shadow pipeline", fail: "pipeline:" + ShadowKey},
		{name: "color pipeline", fail: "pipeline:" + ColorKey},
		{name: "fragment module", fail: "shader:color_frag"},
		{name: "every pipeline", fail: "pipeline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cause := errors.New("driver rejected")
			ctx := renderer.NewRecordingContext(renderer.WithFailure(tt.fail, cause))
			set := stagedSet(t, ctx)

			err := set.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
			assert.ErrorIs(t, err, cause)
			assert.False(t, set.Built())
		})
	}
}

func TestPipelineSetRejectsInconsistentStages(t *testing.T) {
	vert := mustShader(t, "color_vert", shader.ShaderTypeVertex, colorVertexSource)
	frag := mustShader(t, "color_frag", shader.ShaderTypeFragment, colorFragmentSource)
	bare := mustShader(t, "bare_frag", shader.ShaderTypeFragment, unshadowedFragmentSource)

	positionsOnly := geometry.VertexLayout()[:1]
	swapped := []renderer.VertexBufferLayout{geometry.VertexLayout()[1], geometry.VertexLayout()[0]}

	tests := []struct {
		name  string
		build func(PipelineSet) error
	}{
		{"missing vertex stream", func(s PipelineSet) error { return s.BuildShadowPipeline(vert, positionsOnly) }},
		{"swapped vertex streams", func(s PipelineSet) error { return s.BuildColorPipeline(vert, frag, swapped) }},
		{"fragment in vertex slot", func(s PipelineSet) error { return s.BuildShadowPipeline(frag, geometry.VertexLayout()) }},
		{"no shadow map binding", func(s PipelineSet) error { return s.BuildColorPipeline(vert, bare, geometry.VertexLayout()) }},
		{"nil fragment", func(s PipelineSet) error { return s.BuildColorPipeline(vert, nil, geometry.VertexLayout()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewPipelineSet(renderer.NewRecordingContext())
			err := tt.build(set)
			require.Error(t, err)
			assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
		})
	}
}

func TestPipelineSetBuildNeedsBothPipelines(t *testing.T) {
	set := NewPipelineSet(renderer.NewRecordingContext())
	require.NoError(t, set.BuildShadowPipeline(mustShader(t, "shadow_vert", shader.ShaderTypeVertex, shadowVertexSource), geometry.VertexLayout()))
	assert.Nil(t, set.Color())

	err := set.Build()
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
}

func TestPipelineSetImmutableAfterBuild(t *testing.T) {
	ctx := renderer.NewRecordingContext()
	set := stagedSet(t, ctx)
	require.NoError(t, set.Build())
	handle := set.Shadow().Handle()

	err := set.BuildShadowPipeline(mustShader(t, "shadow_vert", shader.ShaderTypeVertex, shadowVertexSource), geometry.VertexLayout())
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
	require.NoError(t, set.Build())
	assert.Equal(t, handle, set.Shadow().Handle())
}
