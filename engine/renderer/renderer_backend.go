package renderer

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA)
// in the color pass. The shadow pass always renders with a single sample.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// BufferUsage describes how a buffer is bound.
type BufferUsage int

const (
	BufferUsageUndefined BufferUsage = iota
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageVertex:
		return "vertex"
	case BufferUsageIndex:
		return "index"
	case BufferUsageUniform:
		return "uniform"
	case BufferUsageStorage:
		return "storage"
	default:
		return "undefined"
	}
}

// Writable reports whether buffers of this usage accept WriteBuffer after creation.
// Vertex and index buffers are immutable once created with data.
func (u BufferUsage) Writable() bool {
	return u == BufferUsageUniform || u == BufferUsageStorage
}

// ShaderStage is a bit set of the programmable stages a binding is visible to.
type ShaderStage uint32

const (
	ShaderStageNone     ShaderStage = 0
	ShaderStageVertex   ShaderStage = 1 << 0
	ShaderStageFragment ShaderStage = 1 << 1
	ShaderStageCompute  ShaderStage = 1 << 2
)

// BindingKind classifies the resource a bind group slot expects.
type BindingKind int

const (
	BindingKindUndefined BindingKind = iota
	BindingKindUniformBuffer
	BindingKindStorageBuffer
	BindingKindReadOnlyStorageBuffer
	BindingKindSampler
	BindingKindComparisonSampler
	BindingKindTexture
	BindingKindDepthTexture
)

func (k BindingKind) String() string {
	switch k {
	case BindingKindUniformBuffer:
		return "uniform buffer"
	case BindingKindStorageBuffer:
		return "storage buffer"
	case BindingKindReadOnlyStorageBuffer:
		return "read-only storage buffer"
	case BindingKindSampler:
		return "sampler"
	case BindingKindComparisonSampler:
		return "comparison sampler"
	case BindingKindTexture:
		return "texture"
	case BindingKindDepthTexture:
		return "depth texture"
	default:
		return "undefined"
	}
}

// IsBuffer reports whether the binding expects a buffer.
func (k BindingKind) IsBuffer() bool {
	return k == BindingKindUniformBuffer || k == BindingKindStorageBuffer || k == BindingKindReadOnlyStorageBuffer
}

// VertexFormat is the per-attribute data format of a vertex buffer.
type VertexFormat int

const (
	VertexFormatUndefined VertexFormat = iota
	VertexFormatFloat32
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatSint32
	VertexFormatSint32x2
	VertexFormatSint32x3
	VertexFormatSint32x4
	VertexFormatUint32
	VertexFormatUint32x2
	VertexFormatUint32x3
	VertexFormatUint32x4
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// PassKind distinguishes the depth-only pass from the color pass a pipeline renders into.
type PassKind int

const (
	// PassKindDepthOnly pipelines have no fragment stage and render into a Depth32Float texture with one sample.
	PassKindDepthOnly PassKind = iota

	// PassKindColor pipelines render into the surface (optionally multisampled) with a Depth24Plus depth buffer.
	PassKindColor
)

func (k PassKind) String() string {
	if k == PassKindDepthOnly {
		return "depth-only"
	}
	return "color"
}

// VertexAttribute describes one attribute inside a vertex buffer.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes one vertex buffer slot.
type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

// BindingLayoutEntry describes one slot of a bind group layout.
type BindingLayoutEntry struct {
	// Binding is the @binding index.
	Binding uint32
	// Kind is the resource kind the slot expects.
	Kind BindingKind
	// Visibility is the set of stages that read the slot.
	Visibility ShaderStage
	// MinBindingSize is the smallest buffer size the shader accepts, 0 if unknown or not a buffer.
	MinBindingSize uint64
}

// BindGroupLayout is the ordered set of slots a pipeline declares for one group index.
type BindGroupLayout struct {
	Entries []BindingLayoutEntry
}

// ProgramStage binds a compiled module to an entry point.
type ProgramStage struct {
	Program    ProgramHandle
	EntryPoint string
}

// RenderPipelineDescriptor is everything a Context needs to build a render pipeline.
type RenderPipelineDescriptor struct {
	Label string
	Pass  PassKind

	Vertex ProgramStage
	// Fragment is nil for depth-only pipelines.
	Fragment *ProgramStage

	Buffers []VertexBufferLayout
	// BindGroupLayouts is indexed by group number.
	BindGroupLayouts []BindGroupLayout

	CullMode            CullMode
	DepthBias           int32
	DepthBiasSlopeScale float32
}

// BindGroupEntry is one resource bound into a bind group. Exactly one of Buffer, Texture or Sampler is set.
type BindGroupEntry struct {
	Binding uint32
	Buffer  BufferHandle
	Texture TextureHandle
	Sampler SamplerHandle
}

// BindGroupDescriptor describes a bind group for group index Group of Pipeline's layout.
type BindGroupDescriptor struct {
	Label    string
	Pipeline PipelineHandle
	Group    uint32
	Entries  []BindGroupEntry
}
