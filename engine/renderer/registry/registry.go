package registry

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	log "github.com/sirupsen/logrus"
)

// registry is the implementation of the Registry interface.
type registry struct {
	label string
	ctx   renderer.Context

	buffers  map[renderer.BufferHandle]*bufferEntry
	textures map[renderer.TextureHandle]uint32
	samplers map[renderer.SamplerHandle]string
}

// bufferEntry tracks one allocation. mirror holds the CPU copy of writable buffers.
type bufferEntry struct {
	label  string
	usage  renderer.BufferUsage
	size   uint64
	mirror []byte
}

// Registry allocates and exclusively owns the GPU buffers, depth textures and samplers of one scene.
//
// Buffer sizes are fixed at allocation. There is no reallocation: a scene that needs more capacity builds a new
// Registry. Every upload is bounds-checked against the allocation before it reaches the Context.
type Registry interface {
	// Label returns the debug label of the registry.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Context returns the rendering context the registry allocates from.
	//
	// Returns:
	//   - renderer.Context: the context
	Context() renderer.Context

	// Allocate creates a writable uniform or storage buffer of a fixed size.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - usage: renderer.BufferUsageUniform or renderer.BufferUsageStorage
	//   - size: the size in bytes
	//
	// Returns:
	//   - renderer.BufferHandle: the new buffer
	//   - error: an error wrapping renderer.ErrResourceCreationFailure
	Allocate(label string, usage renderer.BufferUsage, size uint64) (renderer.BufferHandle, error)

	// AllocateWithData creates an immutable vertex or index buffer holding data.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - usage: renderer.BufferUsageVertex or renderer.BufferUsageIndex
	//   - data: the buffer contents
	//
	// Returns:
	//   - renderer.BufferHandle: the new buffer
	//   - error: an error wrapping renderer.ErrResourceCreationFailure
	AllocateWithData(label string, usage renderer.BufferUsage, data []byte) (renderer.BufferHandle, error)

	// AllocateDepthTexture creates a square depth texture that can be rendered into and sampled.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - resolution: the width and height in texels
	//
	// Returns:
	//   - renderer.TextureHandle: the new texture
	//   - error: an error wrapping renderer.ErrResourceCreationFailure
	AllocateDepthTexture(label string, resolution uint32) (renderer.TextureHandle, error)

	// AllocateComparisonSampler creates a depth comparison sampler.
	//
	// Parameters:
	//   - label: debug label for the sampler
	//
	// Returns:
	//   - renderer.SamplerHandle: the new sampler
	//   - error: an error wrapping renderer.ErrResourceCreationFailure
	AllocateComparisonSampler(label string) (renderer.SamplerHandle, error)

	// Upload overwrites bytes [offset, offset+len(data)) of a writable buffer.
	//
	// Parameters:
	//   - h: the destination buffer
	//   - offset: the byte offset to start writing at
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error wrapping renderer.ErrOutOfBoundsWrite if the range exceeds the allocation, the handle is
	//     unknown or the buffer is immutable
	Upload(h renderer.BufferHandle, offset uint64, data []byte) error

	// UploadAll applies a batch of writes in order. Every write is bounds-checked before any is issued,
	// so a rejected batch leaves all buffers untouched.
	//
	// Parameters:
	//   - writes: the staged writes
	//
	// Returns:
	//   - error: the first bounds violation or context error
	UploadAll(writes []BufferWrite) error

	// Size returns the allocated size of a buffer, or 0 if the handle is unknown.
	Size(h renderer.BufferHandle) uint64

	// Usage returns the usage a buffer was allocated with, or renderer.BufferUsageUndefined if unknown.
	Usage(h renderer.BufferHandle) renderer.BufferUsage

	// Contents returns a copy of the bytes last written to a writable buffer, or nil for unknown or immutable buffers.
	Contents(h renderer.BufferHandle) []byte

	// TextureResolution returns the resolution of a depth texture, or 0 if the handle is unknown.
	TextureResolution(h renderer.TextureHandle) uint32

	// HasSampler reports whether the registry owns the sampler.
	HasSampler(h renderer.SamplerHandle) bool
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry that allocates from ctx.
//
// Parameters:
//   - ctx: the rendering context to allocate from
//   - options: functional options to configure the registry
//
// Returns:
//   - Registry: the new registry
func NewRegistry(ctx renderer.Context, options ...RegistryBuilderOption) Registry {
	r := &registry{
		label:    "scene",
		ctx:      ctx,
		buffers:  make(map[renderer.BufferHandle]*bufferEntry),
		textures: make(map[renderer.TextureHandle]uint32),
		samplers: make(map[renderer.SamplerHandle]string),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) Label() string {
	return r.label
}

func (r *registry) Context() renderer.Context {
	return r.ctx
}

func (r *registry) Allocate(label string, usage renderer.BufferUsage, size uint64) (renderer.BufferHandle, error) {
	if !usage.Writable() {
		return 0, fmt.Errorf("registry %s: allocate %q: %s buffers must be created with data: %w",
			r.label, label, usage, renderer.ErrResourceCreationFailure)
	}
	if size == 0 {
		return 0, fmt.Errorf("registry %s: allocate %q: zero size: %w", r.label, label, renderer.ErrResourceCreationFailure)
	}
	h, err := r.ctx.CreateBuffer(label, size, usage)
	if err != nil {
		return 0, fmt.Errorf("registry %s: allocate %q: %w: %w", r.label, label, renderer.ErrResourceCreationFailure, err)
	}
	r.buffers[h] = &bufferEntry{label: label, usage: usage, size: size, mirror: make([]byte, size)}
	log.WithFields(log.Fields{"registry": r.label, "buffer": label, "usage": usage.String(), "size": size}).Debug("allocated buffer")
	return h, nil
}

func (r *registry) AllocateWithData(label string, usage renderer.BufferUsage, data []byte) (renderer.BufferHandle, error) {
	if usage != renderer.BufferUsageVertex && usage != renderer.BufferUsageIndex {
		return 0, fmt.Errorf("registry %s: allocate %q: %s buffers must be allocated empty: %w",
			r.label, label, usage, renderer.ErrResourceCreationFailure)
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("registry %s: allocate %q: no data: %w", r.label, label, renderer.ErrResourceCreationFailure)
	}
	h, err := r.ctx.CreateBufferWithData(label, usage, data)
	if err != nil {
		return 0, fmt.Errorf("registry %s: allocate %q: %w: %w", r.label, label, renderer.ErrResourceCreationFailure, err)
	}
	r.buffers[h] = &bufferEntry{label: label, usage: usage, size: uint64(len(data))}
	log.WithFields(log.Fields{"registry": r.label, "buffer": label, "usage": usage.String(), "size": len(data)}).Debug("allocated buffer")
	return h, nil
}

func (r *registry) AllocateDepthTexture(label string, resolution uint32) (renderer.TextureHandle, error) {
	if resolution == 0 {
		return 0, fmt.Errorf("registry %s: depth texture %q: zero resolution: %w", r.label, label, renderer.ErrResourceCreationFailure)
	}
	h, err := r.ctx.CreateDepthTexture(label, resolution, resolution)
	if err != nil {
		return 0, fmt.Errorf("registry %s: depth texture %q: %w: %w", r.label, label, renderer.ErrResourceCreationFailure, err)
	}
	r.textures[h] = resolution
	log.WithFields(log.Fields{"registry": r.label, "texture": label, "resolution": resolution}).Debug("allocated depth texture")
	return h, nil
}

func (r *registry) AllocateComparisonSampler(label string) (renderer.SamplerHandle, error) {
	h, err := r.ctx.CreateComparisonSampler(label)
	if err != nil {
		return 0, fmt.Errorf("registry %s: sampler %q: %w: %w", r.label, label, renderer.ErrResourceCreationFailure, err)
	}
	r.samplers[h] = label
	return h, nil
}

// check validates a write against the allocation without touching any buffer.
func (r *registry) check(h renderer.BufferHandle, offset uint64, data []byte) (*bufferEntry, error) {
	b, ok := r.buffers[h]
	if !ok {
		return nil, fmt.Errorf("registry %s: upload to unknown buffer %d: %w", r.label, h, renderer.ErrOutOfBoundsWrite)
	}
	if !b.usage.Writable() {
		return nil, fmt.Errorf("registry %s: upload to immutable %s buffer %q: %w", r.label, b.usage, b.label, renderer.ErrOutOfBoundsWrite)
	}
	end := offset + uint64(len(data))
	if end < offset || end > b.size {
		return nil, fmt.Errorf("registry %s: upload [%d, %d) exceeds buffer %q of %d bytes: %w",
			r.label, offset, end, b.label, b.size, renderer.ErrOutOfBoundsWrite)
	}
	return b, nil
}

func (r *registry) write(b *bufferEntry, h renderer.BufferHandle, offset uint64, data []byte) error {
	if err := r.ctx.WriteBuffer(h, offset, data); err != nil {
		return fmt.Errorf("registry %s: upload to %q: %w", r.label, b.label, err)
	}
	copy(b.mirror[offset:], data)
	return nil
}

func (r *registry) Upload(h renderer.BufferHandle, offset uint64, data []byte) error {
	b, err := r.check(h, offset, data)
	if err != nil {
		return err
	}
	return r.write(b, h, offset, data)
}

func (r *registry) UploadAll(writes []BufferWrite) error {
	entries := make([]*bufferEntry, len(writes))
	for i, w := range writes {
		b, err := r.check(w.Buffer, w.Offset, w.Data)
		if err != nil {
			return err
		}
		entries[i] = b
	}
	for i, w := range writes {
		if err := r.write(entries[i], w.Buffer, w.Offset, w.Data); err != nil {
			return err
		}
	}
	return nil
}

func (r *registry) Size(h renderer.BufferHandle) uint64 {
	if b, ok := r.buffers[h]; ok {
		return b.size
	}
	return 0
}

func (r *registry) Usage(h renderer.BufferHandle) renderer.BufferUsage {
	if b, ok := r.buffers[h]; ok {
		return b.usage
	}
	return renderer.BufferUsageUndefined
}

func (r *registry) Contents(h renderer.BufferHandle) []byte {
	if b, ok := r.buffers[h]; ok && b.mirror != nil {
		return slices.Clone(b.mirror)
	}
	return nil
}

func (r *registry) TextureResolution(h renderer.TextureHandle) uint32 {
	return r.textures[h]
}

func (r *registry) HasSampler(h renderer.SamplerHandle) bool {
	_, ok := r.samplers[h]
	return ok
}
