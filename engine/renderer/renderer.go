package renderer

// BufferHandle identifies a GPU buffer created through a Context.
// The zero value never refers to a live buffer.
type BufferHandle uint32

// TextureHandle identifies a GPU texture created through a Context.
type TextureHandle uint32

// SamplerHandle identifies a GPU sampler created through a Context.
type SamplerHandle uint32

// ProgramHandle identifies a compiled shader module.
type ProgramHandle uint32

// PipelineHandle identifies a compiled render pipeline.
type PipelineHandle uint32

// GroupHandle identifies a bind group attached to a pipeline at a fixed slot.
type GroupHandle uint32

// Context is the rendering context the renderer core is written against.
//
// It exposes resource creation, queued buffer writes and a single command submission entry point.
// Implementations own the device, queue and presentation surface; the core only ever sees opaque handles.
type Context interface {
	// CreateBuffer allocates an uninitialized buffer that can be written with WriteBuffer.
	//
	// Parameters:
	//   - label: debug label attached to the GPU object
	//   - size: the size of the buffer in bytes
	//   - usage: how the buffer will be bound (uniform or storage)
	//
	// Returns:
	//   - BufferHandle: the handle of the new buffer
	//   - error: an error if the buffer could not be created
	CreateBuffer(label string, size uint64, usage BufferUsage) (BufferHandle, error)

	// CreateBufferWithData allocates a buffer sized to data and uploads data into it.
	//
	// Parameters:
	//   - label: debug label attached to the GPU object
	//   - usage: how the buffer will be bound (vertex or index)
	//   - data: the initial contents of the buffer
	//
	// Returns:
	//   - BufferHandle: the handle of the new buffer
	//   - error: an error if the buffer could not be created
	CreateBufferWithData(label string, usage BufferUsage, data []byte) (BufferHandle, error)

	// CreateDepthTexture allocates a depth texture usable both as a depth attachment and as a sampled texture.
	//
	// Parameters:
	//   - label: debug label attached to the GPU object
	//   - width, height: the texture dimensions in texels
	//
	// Returns:
	//   - TextureHandle: the handle of the new texture
	//   - error: an error if the texture could not be created
	CreateDepthTexture(label string, width, height uint32) (TextureHandle, error)

	// CreateComparisonSampler allocates a sampler that performs a "less" depth comparison.
	//
	// Parameters:
	//   - label: debug label attached to the GPU object
	//
	// Returns:
	//   - SamplerHandle: the handle of the new sampler
	//   - error: an error if the sampler could not be created
	CreateComparisonSampler(label string) (SamplerHandle, error)

	// CreateShaderModule compiles WGSL source into a shader module.
	//
	// Parameters:
	//   - label: debug label attached to the GPU object
	//   - source: the WGSL source
	//
	// Returns:
	//   - ProgramHandle: the handle of the compiled module
	//   - error: an error if compilation failed
	CreateShaderModule(label, source string) (ProgramHandle, error)

	// CreateRenderPipeline compiles and links a render pipeline. This call may block until the driver is done.
	//
	// Parameters:
	//   - desc: the pipeline description
	//
	// Returns:
	//   - PipelineHandle: the handle of the new pipeline
	//   - error: an error if the pipeline could not be created
	CreateRenderPipeline(desc RenderPipelineDescriptor) (PipelineHandle, error)

	// CreateBindGroup creates a bind group for one group index of a pipeline's layout.
	//
	// Parameters:
	//   - desc: the bind group description
	//
	// Returns:
	//   - GroupHandle: the handle of the new bind group
	//   - error: an error if the bind group could not be created
	CreateBindGroup(desc BindGroupDescriptor) (GroupHandle, error)

	// WriteBuffer queues a write of data into buffer at offset. Writes are ordered before any later Submit.
	//
	// Parameters:
	//   - buffer: the destination buffer
	//   - offset: the byte offset into the buffer
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write could not be queued
	WriteBuffer(buffer BufferHandle, offset uint64, data []byte) error

	// BeginCommandRecording starts a new command stream.
	//
	// Returns:
	//   - CommandRecorder: the recorder for the new stream
	//   - error: an error if the encoder could not be created
	BeginCommandRecording() (CommandRecorder, error)

	// Submit submits a finished command buffer and presents the surface if the buffer drew to it.
	//
	// Parameters:
	//   - commands: the finished command buffer
	//
	// Returns:
	//   - error: an error if submission failed
	Submit(commands CommandBuffer) error
}

// CommandRecorder records render passes into a single command stream.
type CommandRecorder interface {
	// BeginDepthPass opens a depth-only pass that clears and stores into target.
	//
	// Parameters:
	//   - target: the depth texture to render into
	//
	// Returns:
	//   - PassRecorder: the recorder for the pass
	//   - error: an error if the pass could not be opened
	BeginDepthPass(target TextureHandle) (PassRecorder, error)

	// BeginColorPass opens a color + depth pass targeting the presentation surface and the scene depth texture.
	// Returns ErrSurfaceUnavailable if the surface image could not be acquired for this frame.
	//
	// Returns:
	//   - PassRecorder: the recorder for the pass
	//   - error: an error if the pass could not be opened
	BeginColorPass() (PassRecorder, error)

	// Finish closes the command stream.
	//
	// Returns:
	//   - CommandBuffer: the finished command buffer, ready for Context.Submit
	//   - error: an error if the stream could not be finished
	Finish() (CommandBuffer, error)
}

// PassRecorder records the state changes and draws of one render pass.
type PassRecorder interface {
	SetPipeline(p PipelineHandle)
	SetBindGroup(index uint32, group GroupHandle)
	SetVertexBuffer(slot uint32, buffer BufferHandle)
	SetIndexBuffer(buffer BufferHandle)

	// DrawIndexed records an instanced indexed draw. firstInstance is the base instance used to address
	// per-instance storage buffers.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End closes the pass.
	End() error
}

// CommandBuffer is a finished command stream produced by CommandRecorder.Finish.
type CommandBuffer interface {
	// Release frees the command buffer if it was never submitted.
	Release()
}
