// Package shaders holds the WGSL programs of the shadow-mapped scene. Sources carry @oxy annotations and are
// expanded by shader.NewShader.
package shaders

import _ "embed"

// Shader keys.
const (
	ShadowVertexKey  = "shadow_vertex"
	ColorVertexKey   = "color_vertex"
	ColorFragmentKey = "color_fragment"
)

// ShadowVertex is the vertex stage of the depth-only shadow pipeline.
//
//go:embed assets/shadow.wgsl
var ShadowVertex string

// ColorVertex is the vertex stage of the color pipeline.
//
//go:embed assets/color_vertex.wgsl
var ColorVertex string

// ColorFragment is the fragment stage of the color pipeline: shadow lookup and Blinn-Phong shading.
//
//go:embed assets/color_fragment.wgsl
var ColorFragment string
