package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/engine/geometry"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/registry"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadow/engine/scene/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instances = 20

type fixture struct {
	ctx       *renderer.RecordingContext
	reg       registry.Registry
	pipelines pipeline.PipelineSet

	viewProjection, lightProjection, light, material renderer.BufferHandle
	models, normals, colors                          renderer.BufferHandle
	shadowMap                                        renderer.TextureHandle
	sampler                                          renderer.SamplerHandle
}

func newFixture(t *testing.T, options ...renderer.RecordingContextOption) *fixture {
	t.Helper()
	f := &fixture{ctx: renderer.NewRecordingContext(options...)}
	f.reg = registry.NewRegistry(f.ctx)

	shadowVS, err := shader.NewShader(shaders.ShadowVertexKey, shader.ShaderTypeVertex, shaders.ShadowVertex)
	require.NoError(t, err)
	colorVS, err := shader.NewShader(shaders.ColorVertexKey, shader.ShaderTypeVertex, shaders.ColorVertex)
	require.NoError(t, err)
	colorFS, err := shader.NewShader(shaders.ColorFragmentKey, shader.ShaderTypeFragment, shaders.ColorFragment)
	require.NoError(t, err)

	f.pipelines = pipeline.NewPipelineSet(f.ctx)
	require.NoError(t, f.pipelines.BuildShadowPipeline(shadowVS, geometry.VertexLayout()))
	require.NoError(t, f.pipelines.BuildColorPipeline(colorVS, colorFS, geometry.VertexLayout()))
	require.NoError(t, f.pipelines.Build())

	alloc := func(label string, usage renderer.BufferUsage, size uint64) renderer.BufferHandle {
		h, err := f.reg.Allocate(label, usage, size)
		require.NoError(t, err)
		return h
	}
	f.viewProjection = alloc("viewProjection", renderer.BufferUsageUniform, 64)
	f.lightProjection = alloc("lightViewProjection", renderer.BufferUsageUniform, 64)
	f.light = alloc("light", renderer.BufferUsageUniform, 48)
	f.material = alloc("material", renderer.BufferUsageUniform, 16)
	f.models = alloc("models", renderer.BufferUsageStorage, 64*instances)
	f.normals = alloc("normals", renderer.BufferUsageStorage, 64*instances)
	f.colors = alloc("colors", renderer.BufferUsageStorage, 16*instances)

	f.shadowMap, err = f.reg.AllocateDepthTexture("shadowMap", 2048)
	require.NoError(t, err)
	f.sampler, err = f.reg.AllocateComparisonSampler("shadowSampler")
	require.NoError(t, err)
	return f
}

func TestBindSceneGroups(t *testing.T) {
	f := newFixture(t)
	p := NewBindGroupProvider(f.reg, f.pipelines)

	shadow, err := p.BindShadowGroup(f.models, f.lightProjection)
	require.NoError(t, err)
	vertex, err := p.BindColorVertexGroup(f.viewProjection, f.models, f.normals, f.lightProjection, f.colors)
	require.NoError(t, err)
	fragment, err := p.BindColorFragmentGroup(f.light, f.material, f.shadowMap, f.sampler)
	require.NoError(t, err)

	desc, ok := f.ctx.BindGroup(shadow)
	require.True(t, ok)
	assert.Equal(t, f.pipelines.Shadow().Handle(), desc.Pipeline)
	assert.Equal(t, ShadowGroup, desc.Group)
	assert.Equal(t, f.lightProjection, desc.Entries[ShadowLightProjectionBinding].Buffer)

	desc, ok = f.ctx.BindGroup(vertex)
	require.True(t, ok)
	assert.Equal(t, f.pipelines.Color().Handle(), desc.Pipeline)
	assert.Len(t, desc.Entries, 5)

	desc, ok = f.ctx.BindGroup(fragment)
	require.True(t, ok)
	assert.Equal(t, ColorFragmentGroup, desc.Group)
	assert.Equal(t, f.shadowMap, desc.Entries[ColorShadowMapBinding].Texture)
	assert.Equal(t, f.sampler, desc.Entries[ColorShadowSamplerBinding].Sampler)

	got, ok := p.Group(ColorVertexGroupLabel)
	assert.True(t, ok)
	assert.Equal(t, vertex, got)
	assert.Len(t, p.Groups(), 3)
}

func TestBindLayoutMismatch(t *testing.T) {
	tests := []struct {
		name string
		bind func(f *fixture, p BindGroupProvider) error
	}{
		{
			name: "uniform in storage slot",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.BindShadowGroup(f.lightProjection, f.lightProjection)
				return err
			},
		},
		{
			name: "storage in uniform slot",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.BindShadowGroup(f.models, f.models)
				return err
			},
		},
		{
			name: "undersized light uniform",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.BindColorFragmentGroup(f.material, f.material, f.shadowMap, f.sampler)
				return err
			},
		},
		{
			name: "missing texture",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.BindColorFragmentGroup(f.light, f.material, 0, f.sampler)
				return err
			},
		},
		{
			name: "unregistered sampler",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.BindColorFragmentGroup(f.light, f.material, f.shadowMap, f.sampler+100)
				return err
			},
		},
		{
			name: "too few resources",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.Bind("partial", f.pipelines.Shadow(), ShadowGroup,
					renderer.BindGroupEntry{Binding: ShadowModelBinding, Buffer: f.models})
				return err
			},
		},
		{
			name: "out of order",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.Bind("swapped", f.pipelines.Shadow(), ShadowGroup,
					renderer.BindGroupEntry{Binding: ShadowLightProjectionBinding, Buffer: f.lightProjection},
					renderer.BindGroupEntry{Binding: ShadowModelBinding, Buffer: f.models})
				return err
			},
		},
		{
			name: "two resources in one entry",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.Bind("double", f.pipelines.Shadow(), ShadowGroup,
					renderer.BindGroupEntry{Binding: ShadowModelBinding, Buffer: f.models, Sampler: f.sampler},
					renderer.BindGroupEntry{Binding: ShadowLightProjectionBinding, Buffer: f.lightProjection})
				return err
			},
		},
		{
			name: "undeclared group",
			bind: func(f *fixture, p BindGroupProvider) error {
				_, err := p.Bind("extra", f.pipelines.Shadow(), 1)
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := NewBindGroupProvider(f.reg, f.pipelines)

			err := tt.bind(f, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, renderer.ErrBindingLayoutMismatch)
			assert.Empty(t, p.Groups(), "nothing is created on mismatch")
		})
	}
}

func TestBindMismatchNamesTheShaderVariable(t *testing.T) {
	f := newFixture(t)
	p := NewBindGroupProvider(f.reg, f.pipelines)

	small, err := f.reg.Allocate("small", renderer.BufferUsageStorage, 16)
	require.NoError(t, err)
	_, err = p.BindColorVertexGroup(f.viewProjection, f.models, small, f.lightProjection, f.colors)
	require.ErrorIs(t, err, renderer.ErrBindingLayoutMismatch)
	assert.Contains(t, err.Error(), "normalMatrices")
}

func TestBindUnbuiltPipeline(t *testing.T) {
	ctx := renderer.NewRecordingContext()
	reg := registry.NewRegistry(ctx)
	p := NewBindGroupProvider(reg, pipeline.NewPipelineSet(ctx))

	_, err := p.BindShadowGroup(1, 2)
	assert.ErrorIs(t, err, renderer.ErrBindingLayoutMismatch)
}

func TestBindCreationFailure(t *testing.T) {
	f := newFixture(t, renderer.WithFailure("bindgroup:"+ShadowGroupLabel, assert.AnError))
	p := NewBindGroupProvider(f.reg, f.pipelines)

	_, err := p.BindShadowGroup(f.models, f.lightProjection)
	require.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = p.BindColorVertexGroup(f.viewProjection, f.models, f.normals, f.lightProjection, f.colors)
	assert.NoError(t, err)
}

func TestBindTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	p := NewBindGroupProvider(f.reg, f.pipelines)

	_, err := p.BindShadowGroup(f.models, f.lightProjection)
	require.NoError(t, err)
	_, err = p.BindShadowGroup(f.models, f.lightProjection)
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
}
