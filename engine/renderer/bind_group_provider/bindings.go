package bind_group_provider

// Group indices of the scene's bind groups.
const (
	// ShadowGroup is the only group of the shadow pipeline.
	ShadowGroup uint32 = 0
	// ColorVertexGroup is the group of the color pipeline read by its vertex stage.
	ColorVertexGroup uint32 = 0
	// ColorFragmentGroup is the group of the color pipeline read by its fragment stage.
	ColorFragmentGroup uint32 = 1
)

// Bindings of ShadowGroup.
const (
	ShadowModelBinding uint32 = iota
	ShadowLightProjectionBinding
)

// Bindings of ColorVertexGroup.
const (
	ColorViewProjectionBinding uint32 = iota
	ColorModelBinding
	ColorNormalBinding
	ColorLightProjectionBinding
	ColorColorBinding
)

// Bindings of ColorFragmentGroup.
const (
	ColorLightBinding uint32 = iota
	ColorMaterialBinding
	ColorShadowMapBinding
	ColorShadowSamplerBinding
)
