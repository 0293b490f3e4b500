package wgpu_backend

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	log "github.com/sirupsen/logrus"
)

const (
	// shadowDepthFormat is the format of every depth texture created through CreateDepthTexture.
	shadowDepthFormat = wgpu.TextureFormatDepth32Float

	// sceneDepthFormat is the format of the depth buffer attached to the color pass.
	sceneDepthFormat = wgpu.TextureFormatDepth24Plus
)

// clearColor is the background of the color pass.
var clearColor = wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

// wgpuContext is the implementation of the WGPUContext interface.
type wgpuContext struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	width, height uint32
	presentMode   renderer.PresentMode
	sampleCount   renderer.MSAASampleCount
	forceFallback bool

	// msaaTarget and depthTarget follow the surface size; msaaTarget is nil without MSAA.
	msaaTarget  *attachment
	depthTarget *attachment

	nextHandle uint32
	buffers    map[renderer.BufferHandle]*wgpu.Buffer
	textures   map[renderer.TextureHandle]*attachment
	samplers   map[renderer.SamplerHandle]*wgpu.Sampler
	programs   map[renderer.ProgramHandle]*wgpu.ShaderModule
	pipelines  map[renderer.PipelineHandle]*renderPipeline
	groups     map[renderer.GroupHandle]*wgpu.BindGroup
}

// attachment is a texture together with the view passes render into.
type attachment struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (a *attachment) release() {
	if a == nil {
		return
	}
	a.view.Release()
	a.texture.Release()
}

func (c *wgpuContext) createAttachment(desc *wgpu.TextureDescriptor) (*attachment, error) {
	tex, err := c.device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view of %s: %w", desc.Label, err)
	}
	return &attachment{texture: tex, view: view}, nil
}

// renderPipeline keeps the bind group layouts next to the pipeline so bind groups can be created for any group index.
type renderPipeline struct {
	pipeline *wgpu.RenderPipeline
	layouts  []*wgpu.BindGroupLayout
}

// release frees whatever part of the pipeline was created. Layouts that were never created are nil.
func (p *renderPipeline) release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	for _, l := range p.layouts {
		if l != nil {
			l.Release()
		}
	}
}

// WGPUContext is a renderer.Context backed by a WebGPU device and a window surface.
type WGPUContext interface {
	renderer.Context

	// Resize reconfigures the surface and recreates the scene depth buffer for a new framebuffer size.
	// A zero width or height leaves the surface unconfigured: color passes report renderer.ErrSurfaceUnavailable
	// until the next non-zero resize.
	//
	// Parameters:
	//   - width: the new framebuffer width in pixels
	//   - height: the new framebuffer height in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be recreated
	Resize(width, height int) error

	// SetPresentMode changes how frames are presented. Takes effect immediately by reconfiguring the surface.
	//
	// Parameters:
	//   - mode: the present mode
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	SetPresentMode(mode renderer.PresentMode) error

	// Release frees every resource created through the context, then the device and surface.
	Release()
}

var _ WGPUContext = &wgpuContext{}

// NewWGPUContext creates a device that can present to the surface described by surfaceDescriptor and configures
// the surface for the given framebuffer size.
// Must be called from the thread that owns the window; the calling goroutine is locked to its OS thread.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, typically from window.Window.SurfaceDescriptor
//   - width, height: the initial framebuffer size in pixels
//   - options: functional options to configure the context
//
// Returns:
//   - WGPUContext: the new context
//   - error: an error if no adapter or device could be acquired
func NewWGPUContext(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUContextBuilderOption) (WGPUContext, error) {
	runtime.LockOSThread()

	c := &wgpuContext{
		mu:          &sync.Mutex{},
		presentMode: renderer.PresentModeVSync,
		sampleCount: renderer.MSAA4x,
		buffers:     make(map[renderer.BufferHandle]*wgpu.Buffer),
		textures:    make(map[renderer.TextureHandle]*attachment),
		samplers:    make(map[renderer.SamplerHandle]*wgpu.Sampler),
		programs:    make(map[renderer.ProgramHandle]*wgpu.ShaderModule),
		pipelines:   make(map[renderer.PipelineHandle]*renderPipeline),
		groups:      make(map[renderer.GroupHandle]*wgpu.BindGroup),
	}
	for _, opt := range options {
		opt(c)
	}

	c.instance = wgpu.CreateInstance(nil)
	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallback,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	c.device = device
	c.queue = device.GetQueue()

	capabilities := c.surface.GetCapabilities(c.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, errors.New("surface reports no supported formats")
	}
	c.surfaceFormat = capabilities.Formats[0]
	c.alphaMode = firstAlphaMode(capabilities.AlphaModes)

	if err := c.Resize(width, height); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"format":  c.surfaceFormat.String(),
		"msaa":    uint32(c.sampleCount),
		"width":   width,
		"height":  height,
		"present": c.presentMode,
	}).Info("wgpu context ready")
	return c, nil
}

func (c *wgpuContext) handle() uint32 {
	c.nextHandle++
	return c.nextHandle
}

// configure applies the current size and present mode to the surface and rebuilds the size-dependent attachments.
// Callers hold c.mu.
func (c *wgpuContext) configure() error {
	if c.width == 0 || c.height == 0 {
		return nil
	}

	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       c.width,
		Height:      c.height,
		PresentMode: presentMode(c.presentMode),
		AlphaMode:   c.alphaMode,
	})

	c.msaaTarget.release()
	c.depthTarget.release()
	c.msaaTarget, c.depthTarget = nil, nil

	count := uint32(c.sampleCount)
	size := wgpu.Extent3D{Width: c.width, Height: c.height, DepthOrArrayLayers: 1}

	var err error
	if count > 1 {
		c.msaaTarget, err = c.createAttachment(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        c.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
	}

	c.depthTarget, err = c.createAttachment(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        sceneDepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	return err
}

func (c *wgpuContext) Resize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.width, c.height = uint32(max(width, 0)), uint32(max(height, 0))
	return c.configure()
}

func (c *wgpuContext) SetPresentMode(mode renderer.PresentMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.presentMode = mode
	return c.configure()
}

func (c *wgpuContext) CreateBuffer(label string, size uint64, usage renderer.BufferUsage) (renderer.BufferHandle, error) {
	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: bufferUsage(usage),
	})
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	h := renderer.BufferHandle(c.handle())
	c.buffers[h] = buf
	return h, nil
}

func (c *wgpuContext) CreateBufferWithData(label string, usage renderer.BufferUsage, data []byte) (renderer.BufferHandle, error) {
	buf, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    bufferUsage(usage),
	})
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	h := renderer.BufferHandle(c.handle())
	c.buffers[h] = buf
	return h, nil
}

func (c *wgpuContext) CreateDepthTexture(label string, width, height uint32) (renderer.TextureHandle, error) {
	tex, err := c.createAttachment(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        shadowDepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	h := renderer.TextureHandle(c.handle())
	c.textures[h] = tex
	return h, nil
}

func (c *wgpuContext) CreateComparisonSampler(label string) (renderer.SamplerHandle, error) {
	samp, err := c.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	h := renderer.SamplerHandle(c.handle())
	c.samplers[h] = samp
	return h, nil
}

func (c *wgpuContext) CreateShaderModule(label, source string) (renderer.ProgramHandle, error) {
	module, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	h := renderer.ProgramHandle(c.handle())
	c.programs[h] = module
	return h, nil
}

func (c *wgpuContext) program(h renderer.ProgramHandle) (*wgpu.ShaderModule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.programs[h]
	if !ok {
		return nil, fmt.Errorf("unknown shader module %d", h)
	}
	return m, nil
}

func (c *wgpuContext) CreateRenderPipeline(desc renderer.RenderPipelineDescriptor) (renderer.PipelineHandle, error) {
	vs, err := c.program(desc.Vertex.Program)
	if err != nil {
		return 0, fmt.Errorf("pipeline %s: %w", desc.Label, err)
	}

	rp := &renderPipeline{layouts: make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))}
	built := false
	defer func() {
		if !built {
			rp.release()
		}
	}()

	layouts := rp.layouts
	for g, l := range desc.BindGroupLayouts {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(l.Entries))
		for _, e := range l.Entries {
			entry, err := layoutEntry(e)
			if err != nil {
				return 0, fmt.Errorf("pipeline %s: group %d: %w", desc.Label, g, err)
			}
			entries = append(entries, entry)
		}
		layouts[g], err = c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", desc.Label, g),
			Entries: entries,
		})
		if err != nil {
			return 0, fmt.Errorf("pipeline %s: failed to create bind group layout for group %d: %w", desc.Label, g, err)
		}
	}

	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return 0, fmt.Errorf("pipeline %s: %w", desc.Label, err)
	}
	// The pipeline holds its own reference to the layout.
	defer pipelineLayout.Release()

	buffers, err := vertexLayouts(desc.Buffers)
	if err != nil {
		return 0, fmt.Errorf("pipeline %s: %w", desc.Label, err)
	}

	wdesc := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              shadowDepthFormat,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBias:           desc.DepthBias,
			DepthBiasSlopeScale: desc.DepthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}

	if desc.Pass == renderer.PassKindColor {
		if desc.Fragment == nil {
			return 0, fmt.Errorf("pipeline %s: color pipelines need a fragment stage", desc.Label)
		}
		fs, err := c.program(desc.Fragment.Program)
		if err != nil {
			return 0, fmt.Errorf("pipeline %s: %w", desc.Label, err)
		}
		wdesc.Fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    c.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		}
		wdesc.Multisample.Count = uint32(c.sampleCount)
		wdesc.DepthStencil.Format = sceneDepthFormat
	}

	rp.pipeline, err = c.device.CreateRenderPipeline(wdesc)
	if err != nil {
		return 0, fmt.Errorf("pipeline %s: %w", desc.Label, err)
	}
	built = true

	c.mu.Lock()
	defer c.mu.Unlock()
	h := renderer.PipelineHandle(c.handle())
	c.pipelines[h] = rp
	return h, nil
}

func (c *wgpuContext) CreateBindGroup(desc renderer.BindGroupDescriptor) (renderer.GroupHandle, error) {
	c.mu.Lock()
	p, ok := c.pipelines[desc.Pipeline]
	if !ok || int(desc.Group) >= len(p.layouts) {
		c.mu.Unlock()
		return 0, fmt.Errorf("bind group %s: pipeline %d has no group %d", desc.Label, desc.Pipeline, desc.Group)
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != 0:
			buf, ok := c.buffers[e.Buffer]
			if !ok {
				c.mu.Unlock()
				return 0, fmt.Errorf("bind group %s: binding %d: unknown buffer %d", desc.Label, e.Binding, e.Buffer)
			}
			entry.Buffer = buf
			entry.Size = wgpu.WholeSize
		case e.Texture != 0:
			tex, ok := c.textures[e.Texture]
			if !ok {
				c.mu.Unlock()
				return 0, fmt.Errorf("bind group %s: binding %d: unknown texture %d", desc.Label, e.Binding, e.Texture)
			}
			entry.TextureView = tex.view
		case e.Sampler != 0:
			samp, ok := c.samplers[e.Sampler]
			if !ok {
				c.mu.Unlock()
				return 0, fmt.Errorf("bind group %s: binding %d: unknown sampler %d", desc.Label, e.Binding, e.Sampler)
			}
			entry.Sampler = samp
		}
		entries = append(entries, entry)
	}
	layout := p.layouts[desc.Group]
	c.mu.Unlock()

	group, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return 0, fmt.Errorf("bind group %s: %w", desc.Label, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	h := renderer.GroupHandle(c.handle())
	c.groups[h] = group
	return h, nil
}

func (c *wgpuContext) WriteBuffer(buffer renderer.BufferHandle, offset uint64, data []byte) error {
	c.mu.Lock()
	buf, ok := c.buffers[buffer]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("write to unknown buffer %d: %w", buffer, renderer.ErrOutOfBoundsWrite)
	}
	return c.queue.WriteBuffer(buf, offset, data)
}

func (c *wgpuContext) BeginCommandRecording() (renderer.CommandRecorder, error) {
	enc, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuEncoder{ctx: c, encoder: enc}, nil
}

func (c *wgpuContext) Submit(commands renderer.CommandBuffer) error {
	cb, ok := commands.(*wgpuCommandBuffer)
	if !ok {
		return fmt.Errorf("submit: foreign command buffer %T", commands)
	}
	if cb.buffer == nil {
		return errors.New("submit: command buffer already submitted")
	}

	c.queue.Submit(cb.buffer)
	cb.buffer.Release()
	cb.buffer = nil

	if cb.frame != nil {
		c.surface.Present()
		cb.frame.release()
		cb.frame = nil
	}
	return nil
}

func (c *wgpuContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, g := range c.groups {
		g.Release()
	}
	for _, p := range c.pipelines {
		p.release()
	}
	for _, m := range c.programs {
		m.Release()
	}
	for _, s := range c.samplers {
		s.Release()
	}
	for _, t := range c.textures {
		t.release()
	}
	for _, b := range c.buffers {
		b.Release()
	}
	clear(c.groups)
	clear(c.pipelines)
	clear(c.programs)
	clear(c.samplers)
	clear(c.textures)
	clear(c.buffers)

	c.msaaTarget.release()
	c.depthTarget.release()
	c.queue.Release()
	c.device.Release()
	c.adapter.Release()
	c.surface.Release()
	c.instance.Release()
}
