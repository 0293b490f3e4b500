package wgpu_backend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// surfaceFrame is the swapchain image acquired for one color pass. It is presented on Submit.
type surfaceFrame struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (f *surfaceFrame) release() {
	f.view.Release()
	f.texture.Release()
}

type wgpuEncoder struct {
	ctx     *wgpuContext
	encoder *wgpu.CommandEncoder
	frame   *surfaceFrame
	open    *wgpuPass
}

var _ renderer.CommandRecorder = &wgpuEncoder{}

func (e *wgpuEncoder) begin(desc *wgpu.RenderPassDescriptor) (*wgpuPass, error) {
	if e.open != nil {
		return nil, errors.New("previous pass is still open")
	}
	p := &wgpuPass{ctx: e.ctx, encoder: e, pass: e.encoder.BeginRenderPass(desc)}
	e.open = p
	return p, nil
}

func (e *wgpuEncoder) BeginDepthPass(target renderer.TextureHandle) (renderer.PassRecorder, error) {
	e.ctx.mu.Lock()
	tex, ok := e.ctx.textures[target]
	e.ctx.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("depth pass: unknown texture %d", target)
	}

	return e.begin(&wgpu.RenderPassDescriptor{
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            tex.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
}

func (e *wgpuEncoder) BeginColorPass() (renderer.PassRecorder, error) {
	if e.frame != nil {
		return nil, errors.New("color pass: surface image already acquired for this command stream")
	}

	e.ctx.mu.Lock()
	configured := e.ctx.width > 0 && e.ctx.height > 0 && e.ctx.depthTarget != nil
	msaa := e.ctx.msaaTarget
	depth := e.ctx.depthTarget
	e.ctx.mu.Unlock()
	if !configured {
		return nil, fmt.Errorf("color pass: zero-sized surface: %w", renderer.ErrSurfaceUnavailable)
	}

	surfaceTexture, err := e.ctx.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("color pass: %w: %w", renderer.ErrSurfaceUnavailable, err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("color pass: %w: %w", renderer.ErrSurfaceUnavailable, err)
	}
	e.frame = &surfaceFrame{texture: surfaceTexture, view: view}

	// With MSAA the pass renders into the multisampled texture and resolves into the swapchain image.
	color := wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clearColor,
	}
	if msaa != nil {
		color.View = msaa.view
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}

	return e.begin(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
}

func (e *wgpuEncoder) Finish() (renderer.CommandBuffer, error) {
	if e.open != nil {
		return nil, errors.New("finish: a pass is still open")
	}
	defer e.encoder.Release()

	buf, err := e.encoder.Finish(nil)
	if err != nil {
		if e.frame != nil {
			e.frame.release()
			e.frame = nil
		}
		return nil, err
	}
	cb := &wgpuCommandBuffer{buffer: buf, frame: e.frame}
	e.frame = nil
	return cb, nil
}

type wgpuCommandBuffer struct {
	buffer *wgpu.CommandBuffer
	frame  *surfaceFrame
}

func (cb *wgpuCommandBuffer) Release() {
	if cb.buffer != nil {
		cb.buffer.Release()
		cb.buffer = nil
	}
	if cb.frame != nil {
		cb.frame.release()
		cb.frame = nil
	}
}

type wgpuPass struct {
	ctx     *wgpuContext
	encoder *wgpuEncoder
	pass    *wgpu.RenderPassEncoder
}

var _ renderer.PassRecorder = &wgpuPass{}

func (p *wgpuPass) SetPipeline(h renderer.PipelineHandle) {
	p.ctx.mu.Lock()
	rp, ok := p.ctx.pipelines[h]
	p.ctx.mu.Unlock()
	if ok {
		p.pass.SetPipeline(rp.pipeline)
	}
}

func (p *wgpuPass) SetBindGroup(index uint32, group renderer.GroupHandle) {
	p.ctx.mu.Lock()
	bg, ok := p.ctx.groups[group]
	p.ctx.mu.Unlock()
	if ok {
		p.pass.SetBindGroup(index, bg, nil)
	}
}

func (p *wgpuPass) SetVertexBuffer(slot uint32, buffer renderer.BufferHandle) {
	p.ctx.mu.Lock()
	buf, ok := p.ctx.buffers[buffer]
	p.ctx.mu.Unlock()
	if ok {
		p.pass.SetVertexBuffer(slot, buf, 0, wgpu.WholeSize)
	}
}

func (p *wgpuPass) SetIndexBuffer(buffer renderer.BufferHandle) {
	p.ctx.mu.Lock()
	buf, ok := p.ctx.buffers[buffer]
	p.ctx.mu.Unlock()
	if ok {
		p.pass.SetIndexBuffer(buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	}
}

func (p *wgpuPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuPass) End() error {
	if p.encoder.open != p {
		return errors.New("pass already ended")
	}
	p.pass.End()
	p.pass.Release()
	p.encoder.open = nil
	return nil
}
