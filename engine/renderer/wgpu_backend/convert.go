package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

var vertexFormats = map[renderer.VertexFormat]wgpu.VertexFormat{
	renderer.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	renderer.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	renderer.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	renderer.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
	renderer.VertexFormatSint32:    wgpu.VertexFormatSint32,
	renderer.VertexFormatSint32x2:  wgpu.VertexFormatSint32x2,
	renderer.VertexFormatSint32x3:  wgpu.VertexFormatSint32x3,
	renderer.VertexFormatSint32x4:  wgpu.VertexFormatSint32x4,
	renderer.VertexFormatUint32:    wgpu.VertexFormatUint32,
	renderer.VertexFormatUint32x2:  wgpu.VertexFormatUint32x2,
	renderer.VertexFormatUint32x3:  wgpu.VertexFormatUint32x3,
	renderer.VertexFormatUint32x4:  wgpu.VertexFormatUint32x4,
}

func bufferUsage(u renderer.BufferUsage) wgpu.BufferUsage {
	switch u {
	case renderer.BufferUsageVertex:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case renderer.BufferUsageIndex:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	case renderer.BufferUsageUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	case renderer.BufferUsageStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferUsageCopyDst
	}
}

func shaderStage(s renderer.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&renderer.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&renderer.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	if s&renderer.ShaderStageCompute != 0 {
		out |= wgpu.ShaderStageCompute
	}
	return out
}

func cullMode(c renderer.CullMode) wgpu.CullMode {
	switch c {
	case renderer.CullModeFront:
		return wgpu.CullModeFront
	case renderer.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

// layoutEntry converts one slot to the wgpu layout entry the driver validates bind groups against.
func layoutEntry(e renderer.BindingLayoutEntry) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: shaderStage(e.Visibility),
	}
	switch e.Kind {
	case renderer.BindingKindUniformBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = e.MinBindingSize
	case renderer.BindingKindStorageBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		entry.Buffer.MinBindingSize = e.MinBindingSize
	case renderer.BindingKindReadOnlyStorageBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		entry.Buffer.MinBindingSize = e.MinBindingSize
	case renderer.BindingKindSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case renderer.BindingKindComparisonSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case renderer.BindingKindTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case renderer.BindingKindDepthTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	default:
		return entry, fmt.Errorf("binding %d: unsupported kind %s", e.Binding, e.Kind)
	}
	return entry, nil
}

func vertexLayouts(layouts []renderer.VertexBufferLayout) ([]wgpu.VertexBufferLayout, error) {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for slot, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			f, ok := vertexFormats[a.Format]
			if !ok {
				return nil, fmt.Errorf("vertex slot %d location %d: unsupported format %d", slot, a.ShaderLocation, a.Format)
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         f,
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			})
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		})
	}
	return out, nil
}

// firstAlphaMode returns the surface's preferred alpha mode, or lets the driver pick when the surface reports none.
func firstAlphaMode(modes []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	if len(modes) == 0 {
		return wgpu.CompositeAlphaModeAuto
	}
	return modes[0]
}

func presentMode(m renderer.PresentMode) wgpu.PresentMode {
	if m == renderer.PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}
