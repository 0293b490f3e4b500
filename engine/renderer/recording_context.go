package renderer

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// RecordedWrite is one WriteBuffer call observed by a RecordingContext.
type RecordedWrite struct {
	Buffer BufferHandle
	Offset uint64
	Data   []byte
}

// RecordedDraw is one DrawIndexed call together with the pass state bound when it was issued.
type RecordedDraw struct {
	Pipeline      PipelineHandle
	BindGroups    map[uint32]GroupHandle
	VertexBuffers map[uint32]BufferHandle
	IndexBuffer   BufferHandle

	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// RecordedPass is one render pass of a submitted command buffer.
type RecordedPass struct {
	Kind PassKind
	// Target is the depth texture of a depth-only pass. Color passes target the surface.
	Target TextureHandle
	Draws  []RecordedDraw
}

// RecordedSubmission is one Submit call.
type RecordedSubmission struct {
	Passes []RecordedPass
	// WritesBefore is the number of buffer writes queued before this submission.
	WritesBefore int
}

// RecordingContext is an in-memory Context. It performs the validation a GPU driver would do for buffer
// bounds and bind group shapes, keeps the contents of every buffer, and records every pass and draw.
// It backs headless runs and tests.
type RecordingContext struct {
	mu *sync.Mutex

	nextHandle uint32

	buffers   map[BufferHandle]*recordedBuffer
	textures  map[TextureHandle][2]uint32
	samplers  map[SamplerHandle]string
	programs  map[ProgramHandle]string
	pipelines map[PipelineHandle]RenderPipelineDescriptor
	groups    map[GroupHandle]BindGroupDescriptor

	writes      []RecordedWrite
	submissions []RecordedSubmission

	failures           map[string]error
	surfaceUnavailable int
}

type recordedBuffer struct {
	label string
	usage BufferUsage
	data  []byte
}

var _ Context = &RecordingContext{}

// NewRecordingContext creates an empty RecordingContext with all specified options applied.
//
// Parameters:
//   - options: functional options to configure the context
//
// Returns:
//   - *RecordingContext: the new context
func NewRecordingContext(options ...RecordingContextOption) *RecordingContext {
	rc := &RecordingContext{
		mu:        &sync.Mutex{},
		buffers:   make(map[BufferHandle]*recordedBuffer),
		textures:  make(map[TextureHandle][2]uint32),
		samplers:  make(map[SamplerHandle]string),
		programs:  make(map[ProgramHandle]string),
		pipelines: make(map[PipelineHandle]RenderPipelineDescriptor),
		groups:    make(map[GroupHandle]BindGroupDescriptor),
		failures:  make(map[string]error),
	}
	for _, opt := range options {
		opt(rc)
	}
	return rc
}

func (rc *RecordingContext) handle() uint32 {
	rc.nextHandle++
	return rc.nextHandle
}

func (rc *RecordingContext) injected(op, label string) error {
	if err, ok := rc.failures[op+":"+label]; ok {
		return err
	}
	return rc.failures[op]
}

func (rc *RecordingContext) CreateBuffer(label string, size uint64, usage BufferUsage) (BufferHandle, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("buffer", label); err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, fmt.Errorf("buffer %q: zero size", label)
	}
	h := BufferHandle(rc.handle())
	rc.buffers[h] = &recordedBuffer{label: label, usage: usage, data: make([]byte, size)}
	return h, nil
}

func (rc *RecordingContext) CreateBufferWithData(label string, usage BufferUsage, data []byte) (BufferHandle, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("buffer", label); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("buffer %q: no data", label)
	}
	h := BufferHandle(rc.handle())
	rc.buffers[h] = &recordedBuffer{label: label, usage: usage, data: slices.Clone(data)}
	return h, nil
}

func (rc *RecordingContext) CreateDepthTexture(label string, width, height uint32) (TextureHandle, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("texture", label); err != nil {
		return 0, err
	}
	if width == 0 || height == 0 {
		return 0, fmt.Errorf("texture %q: zero extent", label)
	}
	h := TextureHandle(rc.handle())
	rc.textures[h] = [2]uint32{width, height}
	return h, nil
}

func (rc *RecordingContext) CreateComparisonSampler(label string) (SamplerHandle, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("sampler", label); err != nil {
		return 0, err
	}
	h := SamplerHandle(rc.handle())
	rc.samplers[h] = label
	return h, nil
}

func (rc *RecordingContext) CreateShaderModule(label, source string) (ProgramHandle, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("shader", label); err != nil {
		return 0, err
	}
	if source == "" {
		return 0, fmt.Errorf("shader %q: empty source", label)
	}
	h := ProgramHandle(rc.handle())
	rc.programs[h] = source
	return h, nil
}

func (rc *RecordingContext) CreateRenderPipeline(desc RenderPipelineDescriptor) (PipelineHandle, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("pipeline", desc.Label); err != nil {
		return 0, err
	}
	if _, ok := rc.programs[desc.Vertex.Program]; !ok {
		return 0, fmt.Errorf("pipeline %q: unknown vertex program", desc.Label)
	}
	if desc.Pass == PassKindDepthOnly && desc.Fragment != nil {
		return 0, fmt.Errorf("pipeline %q: depth-only pipelines take no fragment stage", desc.Label)
	}
	if desc.Pass == PassKindColor {
		if desc.Fragment == nil {
			return 0, fmt.Errorf("pipeline %q: color pipelines need a fragment stage", desc.Label)
		}
		if _, ok := rc.programs[desc.Fragment.Program]; !ok {
			return 0, fmt.Errorf("pipeline %q: unknown fragment program", desc.Label)
		}
	}
	h := PipelineHandle(rc.handle())
	rc.pipelines[h] = desc
	return h, nil
}

func (rc *RecordingContext) CreateBindGroup(desc BindGroupDescriptor) (GroupHandle, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("bindgroup", desc.Label); err != nil {
		return 0, err
	}
	p, ok := rc.pipelines[desc.Pipeline]
	if !ok {
		return 0, fmt.Errorf("bind group %q: unknown pipeline", desc.Label)
	}
	if int(desc.Group) >= len(p.BindGroupLayouts) {
		return 0, fmt.Errorf("bind group %q: pipeline %q has no group %d", desc.Label, p.Label, desc.Group)
	}
	layout := p.BindGroupLayouts[desc.Group]
	if len(layout.Entries) != len(desc.Entries) {
		return 0, fmt.Errorf("bind group %q: %d entries for %d slots", desc.Label, len(desc.Entries), len(layout.Entries))
	}
	for i, e := range desc.Entries {
		if e.Binding != layout.Entries[i].Binding {
			return 0, fmt.Errorf("bind group %q: entry %d binds slot %d, layout expects %d", desc.Label, i, e.Binding, layout.Entries[i].Binding)
		}
	}
	h := GroupHandle(rc.handle())
	rc.groups[h] = desc
	return h, nil
}

func (rc *RecordingContext) WriteBuffer(buffer BufferHandle, offset uint64, data []byte) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	b, ok := rc.buffers[buffer]
	if !ok {
		return fmt.Errorf("write to unknown buffer %d", buffer)
	}
	end := offset + uint64(len(data))
	if end > uint64(len(b.data)) {
		return fmt.Errorf("write [%d, %d) past end of buffer %q (%d bytes): %w", offset, end, b.label, len(b.data), ErrOutOfBoundsWrite)
	}
	copy(b.data[offset:end], data)
	rc.writes = append(rc.writes, RecordedWrite{Buffer: buffer, Offset: offset, Data: slices.Clone(data)})
	return nil
}

func (rc *RecordingContext) BeginCommandRecording() (CommandRecorder, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.injected("encoder", ""); err != nil {
		return nil, err
	}
	return &recordingEncoder{rc: rc}, nil
}

func (rc *RecordingContext) Submit(commands CommandBuffer) error {
	cb, ok := commands.(*recordedCommandBuffer)
	if !ok {
		return errors.New("submit: command buffer was not recorded by this context")
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cb.submitted {
		return errors.New("submit: command buffer already submitted")
	}
	cb.submitted = true
	rc.submissions = append(rc.submissions, RecordedSubmission{
		Passes:       cb.passes,
		WritesBefore: len(rc.writes),
	})
	return nil
}

// BufferContents returns a copy of the current contents of a buffer, or nil if the handle is unknown.
func (rc *RecordingContext) BufferContents(h BufferHandle) []byte {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if b, ok := rc.buffers[h]; ok {
		return slices.Clone(b.data)
	}
	return nil
}

// BufferLabel returns the label a buffer was created with.
func (rc *RecordingContext) BufferLabel(h BufferHandle) string {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if b, ok := rc.buffers[h]; ok {
		return b.label
	}
	return ""
}

// Pipeline returns the descriptor a pipeline was created from.
func (rc *RecordingContext) Pipeline(h PipelineHandle) (RenderPipelineDescriptor, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	desc, ok := rc.pipelines[h]
	return desc, ok
}

// BindGroup returns the descriptor a bind group was created from.
func (rc *RecordingContext) BindGroup(h GroupHandle) (BindGroupDescriptor, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	desc, ok := rc.groups[h]
	return desc, ok
}

// Writes returns every buffer write so far, in order.
func (rc *RecordingContext) Writes() []RecordedWrite {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return slices.Clone(rc.writes)
}

// WritesTo returns the writes so far that targeted one buffer, in order.
func (rc *RecordingContext) WritesTo(h BufferHandle) []RecordedWrite {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	var out []RecordedWrite
	for _, w := range rc.writes {
		if w.Buffer == h {
			out = append(out, w)
		}
	}
	return out
}

// Submissions returns every submission so far, in order.
func (rc *RecordingContext) Submissions() []RecordedSubmission {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return slices.Clone(rc.submissions)
}

// Reset forgets recorded writes and submissions but keeps every resource.
func (rc *RecordingContext) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.writes = nil
	rc.submissions = nil
}

type recordingEncoder struct {
	rc       *RecordingContext
	passes   []RecordedPass
	open     *recordingPass
	finished bool
}

func (e *recordingEncoder) begin(kind PassKind, target TextureHandle) (*recordingPass, error) {
	if e.finished {
		return nil, errors.New("encoder already finished")
	}
	if e.open != nil {
		return nil, errors.New("previous pass was not ended")
	}
	p := &recordingPass{
		enc:           e,
		pass:          RecordedPass{Kind: kind, Target: target},
		bindGroups:    make(map[uint32]GroupHandle),
		vertexBuffers: make(map[uint32]BufferHandle),
	}
	e.open = p
	return p, nil
}

func (e *recordingEncoder) BeginDepthPass(target TextureHandle) (PassRecorder, error) {
	e.rc.mu.Lock()
	_, ok := e.rc.textures[target]
	e.rc.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("depth pass: unknown texture %d", target)
	}
	return e.begin(PassKindDepthOnly, target)
}

func (e *recordingEncoder) BeginColorPass() (PassRecorder, error) {
	e.rc.mu.Lock()
	if e.rc.surfaceUnavailable > 0 {
		e.rc.surfaceUnavailable--
		e.rc.mu.Unlock()
		return nil, ErrSurfaceUnavailable
	}
	e.rc.mu.Unlock()
	return e.begin(PassKindColor, 0)
}

func (e *recordingEncoder) Finish() (CommandBuffer, error) {
	if e.open != nil {
		return nil, errors.New("finish: pass was not ended")
	}
	if e.finished {
		return nil, errors.New("finish: encoder already finished")
	}
	e.finished = true
	return &recordedCommandBuffer{passes: e.passes}, nil
}

type recordingPass struct {
	enc  *recordingEncoder
	pass RecordedPass

	pipeline      PipelineHandle
	bindGroups    map[uint32]GroupHandle
	vertexBuffers map[uint32]BufferHandle
	indexBuffer   BufferHandle
}

func (p *recordingPass) SetPipeline(h PipelineHandle) {
	p.pipeline = h
}

func (p *recordingPass) SetBindGroup(index uint32, group GroupHandle) {
	p.bindGroups[index] = group
}

func (p *recordingPass) SetVertexBuffer(slot uint32, buffer BufferHandle) {
	p.vertexBuffers[slot] = buffer
}

func (p *recordingPass) SetIndexBuffer(buffer BufferHandle) {
	p.indexBuffer = buffer
}

func (p *recordingPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	groups := make(map[uint32]GroupHandle, len(p.bindGroups))
	for k, v := range p.bindGroups {
		groups[k] = v
	}
	vbs := make(map[uint32]BufferHandle, len(p.vertexBuffers))
	for k, v := range p.vertexBuffers {
		vbs[k] = v
	}
	p.pass.Draws = append(p.pass.Draws, RecordedDraw{
		Pipeline:      p.pipeline,
		BindGroups:    groups,
		VertexBuffers: vbs,
		IndexBuffer:   p.indexBuffer,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
}

func (p *recordingPass) End() error {
	if p.enc.open != p {
		return errors.New("end: pass is not open")
	}
	p.enc.passes = append(p.enc.passes, p.pass)
	p.enc.open = nil
	return nil
}

type recordedCommandBuffer struct {
	passes    []RecordedPass
	submitted bool
}

func (cb *recordedCommandBuffer) Release() {}
