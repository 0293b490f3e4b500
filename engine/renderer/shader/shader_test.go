package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertexSource = `
//@oxy:include position
//@oxy:include normal
//@oxy:group 0 0 storage_uniform viewProjection mat4
//@oxy:group 0 1 storage_read modelMatrices array<mat4>
//@oxy:group 0 4 storage_read colors array<vec4>

struct Output {
    @builtin(position) position: vec4f,
    @location(0) vColor: vec4f,
}

@vertex
fn vs_main(pos: PositionInput, nrm: NormalInput, @builtin(instance_index) idx: u32) -> Output {
    var out: Output;
    out.position = viewProjection * modelMatrices[idx] * vec4f(pos.position, 1.0);
    out.vColor = colors[idx] + vec4f(nrm.normal, 0.0) * 0.0;
    return out;
}
`

const testFragmentSource = `
//@oxy:include light
//@oxy:include material
//@oxy:group 1 0 storage_uniform light light
//@oxy:group 1 1 storage_uniform material material
@group(1) @binding(2) var shadowTexture: texture_depth_2d;
@group(1) @binding(3) var shadowSampler: sampler_comparison;
@group(0) @binding(0) var<uniform> viewProjection: mat4x4f;

/* block comment with @group(5) @binding(0) var<uniform> ignored: f32; */
@fragment
fn fs_main(@location(0) vColor: vec4f) -> @location(0) vec4f {
    return vColor * material.ambient + light.specularColor * 0.0;
}
`

func TestNewShaderVertex(t *testing.T) {
	s, err := NewShader("color_vert", ShaderTypeVertex, testVertexSource)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Contains(t, s.Source(), "struct PositionInput")
	assert.Contains(t, s.Source(), "@group(0) @binding(1) var<storage, read> modelMatrices: array<mat4x4f>;")
	assert.NotContains(t, s.Source(), "@oxy:")

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 2, "one slot per vertex input struct")
	assert.Equal(t, uint32(0), layouts[0].Attributes[0].ShaderLocation)
	assert.Equal(t, uint32(1), layouts[1].Attributes[0].ShaderLocation)
	assert.Equal(t, renderer.VertexFormatFloat32x3, layouts[1].Attributes[0].Format)
	assert.Equal(t, uint64(12), layouts[0].ArrayStride)

	g0, ok := s.BindGroupLayout(0)
	require.True(t, ok)
	require.Len(t, g0.Entries, 3)
	assert.Equal(t, renderer.BindingLayoutEntry{Binding: 0, Kind: renderer.BindingKindUniformBuffer, Visibility: renderer.ShaderStageVertex, MinBindingSize: 64}, g0.Entries[0])
	assert.Equal(t, renderer.BindingKindReadOnlyStorageBuffer, g0.Entries[1].Kind)
	assert.Equal(t, uint64(64), g0.Entries[1].MinBindingSize)
	assert.Equal(t, uint32(4), g0.Entries[2].Binding)
	assert.Equal(t, uint64(16), g0.Entries[2].MinBindingSize)

	assert.Equal(t, "modelMatrices", s.BindGroupVarName(0, 1))
	b, ok := s.BindGroupFromVarName(0, "colors")
	assert.True(t, ok)
	assert.Equal(t, 4, b)
	require.Len(t, s.Declarations(), 3)
	assert.Equal(t, 4, *s.Declarations()[2].Binding)
}

func TestNewShaderFragment(t *testing.T) {
	s, err := NewShader("color_frag", ShaderTypeFragment, testFragmentSource)
	require.NoError(t, err)

	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Nil(t, s.VertexLayouts())

	_, ok := s.BindGroupLayout(5)
	assert.False(t, ok, "declarations inside block comments are ignored")

	g1, ok := s.BindGroupLayout(1)
	require.True(t, ok)
	kinds := []renderer.BindingKind{}
	for _, e := range g1.Entries {
		kinds = append(kinds, e.Kind)
		assert.Equal(t, renderer.ShaderStageFragment, e.Visibility)
	}
	assert.Equal(t, []renderer.BindingKind{
		renderer.BindingKindUniformBuffer,
		renderer.BindingKindUniformBuffer,
		renderer.BindingKindDepthTexture,
		renderer.BindingKindComparisonSampler,
	}, kinds)
	assert.Equal(t, uint64(48), g1.Entries[0].MinBindingSize)
	assert.Equal(t, uint64(16), g1.Entries[1].MinBindingSize)
	assert.Zero(t, g1.Entries[2].MinBindingSize)
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		typ    ShaderType
		source string
		want   string
	}{
		{"empty", ShaderTypeVertex, "", "empty source"},
		{"no entry point", ShaderTypeFragment, "@vertex fn vs_main() -> @builtin(position) vec4f { return vec4f(); }", "no @fragment entry point"},
		{"unknown include", ShaderTypeVertex, "//@oxy:include camera\n@vertex fn main() {}", "unknown struct type"},
		{"bad group arity", ShaderTypeVertex, "//@oxy:group 0 0 storage_uniform vp\n@vertex fn main() {}", "five arguments"},
		{"bad address space", ShaderTypeVertex, "//@oxy:group 0 0 private vp mat4\n@vertex fn main() {}", "unknown address space"},
		{"unknown type", ShaderTypeVertex, "//@oxy:group 0 0 storage_uniform vp mat3\n@vertex fn main() {}", "unknown type"},
		{"duplicate binding", ShaderTypeVertex, "@group(0) @binding(0) var<uniform> a: f32;\n@group(0) @binding(0) var<uniform> b: f32;\n@vertex fn main() {}", "declared twice"},
		{"storage texture", ShaderTypeVertex, "@group(0) @binding(0) var t: texture_storage_2d<rgba8unorm, write>;\n@vertex fn main() {}", "unsupported resource type"},
		{"cube texture", ShaderTypeFragment, "@group(0) @binding(0) var t: texture_cube<f32>;\n@fragment fn main() {}", "unsupported resource type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShader(tt.name, tt.typ, tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIncludeIsInjectedOnce(t *testing.T) {
	src := "//@oxy:include light\n//@oxy:include light\n@fragment fn fs_main() -> @location(0) vec4f { return vec4f(); }"
	s, err := NewShader("twice", ShaderTypeFragment, src)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(s.Source(), "struct Light"))
}

func TestAnnotationInCodeIsIgnored(t *testing.T) {
	a, err := parseAnnotation(`let s = "@oxy:include light";`, 1)
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vs, err := NewShader("v", ShaderTypeVertex, testVertexSource)
	require.NoError(t, err)
	fs, err := NewShader("f", ShaderTypeFragment, testFragmentSource)
	require.NoError(t, err)

	merged, err := MergeBindGroupLayouts(vs, fs)
	require.NoError(t, err)
	require.Len(t, merged, 2)

	assert.Len(t, merged[0].Entries, 3)
	assert.Equal(t, renderer.ShaderStageVertex|renderer.ShaderStageFragment, merged[0].Entries[0].Visibility,
		"viewProjection is read by both stages")
	assert.Equal(t, renderer.ShaderStageVertex, merged[0].Entries[1].Visibility)
	assert.Len(t, merged[1].Entries, 4)
}

func TestMergeBindGroupLayoutsKindConflict(t *testing.T) {
	a, err := NewShader("a", ShaderTypeVertex, "@group(0) @binding(0) var<uniform> x: vec4f;\n@vertex fn main() {}")
	require.NoError(t, err)
	b, err := NewShader("b", ShaderTypeFragment, "@group(0) @binding(0) var<storage, read> x: array<vec4f>;\n@fragment fn main() {}")
	require.NoError(t, err)

	_, err = MergeBindGroupLayouts(a, b)
	assert.Error(t, err)
}

func TestMergeLeavesGapsEmpty(t *testing.T) {
	s, err := NewShader("gap", ShaderTypeFragment, "@group(2) @binding(0) var s: sampler;\n@fragment fn main() {}")
	require.NoError(t, err)

	merged, err := MergeBindGroupLayouts(s)
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Empty(t, merged[0].Entries)
	assert.Empty(t, merged[1].Entries)
	assert.Equal(t, renderer.BindingKindSampler, merged[2].Entries[0].Kind)
}

func TestClassifyResource(t *testing.T) {
	tests := []struct {
		addressSpace string
		typeName     string
		want         renderer.BindingKind
	}{
		{"uniform", "Light", renderer.BindingKindUniformBuffer},
		{"storage, read", "array<mat4x4f>", renderer.BindingKindReadOnlyStorageBuffer},
		{"storage, read_write", "array<vec4f>", renderer.BindingKindStorageBuffer},
		{"", "sampler", renderer.BindingKindSampler},
		{"", "sampler_comparison", renderer.BindingKindComparisonSampler},
		{"", "texture_depth_2d", renderer.BindingKindDepthTexture},
		{"", "texture_2d<f32>", renderer.BindingKindTexture},
		{"", "texture_storage_2d<rgba8unorm, write>", renderer.BindingKindUndefined},
		{"", "texture_depth_cube", renderer.BindingKindUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			e := classifyResource(3, renderer.ShaderStageFragment, tt.addressSpace, tt.typeName)
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, uint32(3), e.Binding)
		})
	}
}

func TestResolveTypeLayout(t *testing.T) {
	known := map[string]wgslTypeLayout{"Light": {48, 16}}
	tests := []struct {
		typeName string
		want     wgslTypeLayout
		ok       bool
	}{
		{"vec3f", wgslTypeLayout{12, 16}, true},
		{"mat4x4<f32>", wgslTypeLayout{64, 16}, true},
		{"Light", wgslTypeLayout{48, 16}, true},
		{"array<vec3f, 4>", wgslTypeLayout{64, 16}, true},
		{"array<mat4x4f>", wgslTypeLayout{64, 16}, true},
		{"f16", wgslTypeLayout{}, false},
		{"atomic<u32>", wgslTypeLayout{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			got, ok := resolveTypeLayout(tt.typeName, known)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
