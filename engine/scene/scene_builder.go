package scene

import (
	"github.com/Carmen-Shannon/oxy-shadow/engine/instance"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
)

// SceneBuilderOption is a functional option applied to a scene during construction via NewScene.
type SceneBuilderOption func(s *scene)

// WithName sets the scene name used in logs, errors and the registry label.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: a function that applies the name option to a scene
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithLight replaces the default orbiting light.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - SceneBuilderOption: a function that applies the light option to a scene
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.light = l
	}
}

// WithInstanceSpec sets the instance counts and seed.
//
// Parameters:
//   - spec: the instance spec
//
// Returns:
//   - SceneBuilderOption: a function that applies the instance spec option to a scene
func WithInstanceSpec(spec instance.Spec) SceneBuilderOption {
	return func(s *scene) {
		s.spec = spec
	}
}

// WithMeshes replaces the meshes instances are drawn with. Every kind present in the instance spec needs a mesh.
//
// Parameters:
//   - meshes: the mesh of each shape kind
//
// Returns:
//   - SceneBuilderOption: a function that applies the meshes option to a scene
func WithMeshes(meshes Meshes) SceneBuilderOption {
	return func(s *scene) {
		s.meshes = meshes
	}
}

// WithShadowMapResolution sets the width and height of the shadow map in texels.
//
// Parameters:
//   - resolution: the shadow map resolution
//
// Returns:
//   - SceneBuilderOption: a function that applies the resolution option to a scene
func WithShadowMapResolution(resolution uint32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowMapResolution = resolution
	}
}

// WithCompileWorkers sets how many pipelines are compiled at once during setup.
//
// Parameters:
//   - n: the number of workers; values below 1 are clamped to 1
//
// Returns:
//   - SceneBuilderOption: a function that applies the workers option to a scene
func WithCompileWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.compileWorkers = max(n, 1)
	}
}

// WithShadowCullMode sets the face culling of the shadow pipeline. Nothing is culled by default.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - SceneBuilderOption: a function that applies the cull mode option to a scene
func WithShadowCullMode(mode renderer.CullMode) SceneBuilderOption {
	return func(s *scene) {
		s.shadowCull = mode
	}
}

// WithShadowDepthBias sets the rasterizer depth bias of the shadow pipeline.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - SceneBuilderOption: a function that applies the depth bias option to a scene
func WithShadowDepthBias(bias int32, slopeScale float32) SceneBuilderOption {
	return func(s *scene) {
		s.depthBias = bias
		s.depthBiasSlopeScale = slopeScale
	}
}

// WithStageObserver registers fn to be called every time the frame state machine changes stage.
//
// Parameters:
//   - fn: the observer
//
// Returns:
//   - SceneBuilderOption: a function that applies the observer option to a scene
func WithStageObserver(fn func(Stage)) SceneBuilderOption {
	return func(s *scene) {
		s.observer = fn
	}
}
