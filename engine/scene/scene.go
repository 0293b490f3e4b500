package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadow/engine/geometry"
	"github.com/Carmen-Shannon/oxy-shadow/engine/instance"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/params"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/registry"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadow/engine/scene/shaders"
	log "github.com/sirupsen/logrus"
)

// Buffers are the GPU resources a scene writes every frame or binds once.
type Buffers struct {
	ViewProjection      renderer.BufferHandle
	LightViewProjection renderer.BufferHandle
	Light               renderer.BufferHandle
	Material            renderer.BufferHandle
	Models              renderer.BufferHandle
	Normals             renderer.BufferHandle
	Colors              renderer.BufferHandle

	ShadowMap     renderer.TextureHandle
	ShadowSampler renderer.SamplerHandle
}

// scene is the implementation of the Scene interface.
type scene struct {
	name string

	ctx   renderer.Context
	cam   camera.Camera
	light light.Light
	store *params.Store

	spec                instance.Spec
	meshes              Meshes
	shadowMapResolution uint32
	compileWorkers      int
	shadowCull          renderer.CullMode
	depthBias           int32
	depthBiasSlopeScale float32

	registry  registry.Registry
	pipelines pipeline.PipelineSet
	groups    bind_group_provider.BindGroupProvider
	buffers   Buffers

	shadowGroup, colorVertexGroup, colorFragmentGroup renderer.GroupHandle

	instances []instance.Instance
	batches   []ShapeBatch
	// models and normals are re-packed in full every frame
	models, normals []float32

	stage    Stage
	observer func(Stage)
	state    FrameState
	skipped  uint64
}

// Scene drives the two-pass shadow-mapped frame: it updates the light and camera uniforms, advances and
// re-packs the instances, renders the shadow map from the light and then the shaded scene from the camera,
// and submits both passes in one command buffer.
type Scene interface {
	// Name returns the name of the scene.
	Name() string

	// Frame renders one frame.
	//
	// A frame whose surface cannot be acquired is skipped and nil is returned.
	//
	// Parameters:
	//   - elapsed: seconds since the scene started
	//
	// Returns:
	//   - error: an upload error wrapping renderer.ErrOutOfBoundsWrite, or any other error from the Context
	Frame(elapsed float32) error

	// Resize updates the camera aspect ratio for a new surface size. The shadow map keeps its resolution.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	Resize(width, height int)

	// Stage returns the frame stage the scene is in. It is StageIdle between frames.
	Stage() Stage

	// State returns the state of the last frame that reached the light update.
	State() FrameState

	// SkippedFrames returns the number of frames skipped because the surface was unavailable.
	SkippedFrames() uint64

	// Instances returns the scene's instances in partition order.
	Instances() []instance.Instance

	// Batches returns one draw batch per shape kind present, in draw order.
	Batches() []ShapeBatch

	// Buffers returns the handles of the scene's uniform and storage resources.
	Buffers() Buffers

	// Registry returns the registry owning every GPU resource of the scene.
	Registry() registry.Registry

	// Pipelines returns the built pipeline set.
	Pipelines() pipeline.PipelineSet

	// BindGroups returns the bind group provider holding the scene's three groups.
	BindGroups() bind_group_provider.BindGroupProvider

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Params returns the parameter store read at the start of every frame.
	Params() *params.Store
}

var _ Scene = &scene{}

// NewScene builds every resource of a scene: instances, geometry, uniform and storage buffers, the shadow map,
// both pipelines and the three bind groups. Colors are uploaded once here.
//
// Parameters:
//   - ctx: the rendering context
//   - cam: the camera the color pass renders from; nil selects camera.NewCamera()
//   - store: the parameter store; nil selects a store holding params.Default()
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the ready scene
//   - error: an error wrapping renderer.ErrResourceCreationFailure or renderer.ErrBindingLayoutMismatch
func NewScene(ctx renderer.Context, cam camera.Camera, store *params.Store, options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		name:                "shadow",
		ctx:                 ctx,
		cam:                 cam,
		store:               store,
		light:               light.NewLight(),
		spec:                instance.NewSpec(),
		shadowMapResolution: light.ShadowMapResolution,
		compileWorkers:      2,
		shadowCull:          renderer.CullModeNone,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.meshes == nil {
		s.meshes = DefaultMeshes()
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	if s.store == nil {
		s.store = params.NewStore(params.Default())
	}

	if err := s.setup(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.name, err)
	}
	log.WithFields(log.Fields{
		"scene":     s.name,
		"instances": len(s.instances),
		"batches":   len(s.batches),
		"shadowMap": s.shadowMapResolution,
	}).Info("scene ready")
	return s, nil
}

func (s *scene) setup() error {
	instances, err := instance.Initialize(s.spec)
	if err != nil {
		return fmt.Errorf("instances: %w: %w", renderer.ErrResourceCreationFailure, err)
	}
	ranges, err := instance.Ranges(instances)
	if err != nil {
		return fmt.Errorf("instances: %w: %w", renderer.ErrResourceCreationFailure, err)
	}
	s.instances = instances
	n := uint64(len(instances))
	s.models = make([]float32, instance.FloatsPerMatrix*n)
	s.normals = make([]float32, instance.FloatsPerMatrix*n)

	s.registry = registry.NewRegistry(s.ctx, registry.WithLabel(s.name))
	if s.batches, err = uploadBatches(s.registry, s.meshes, ranges); err != nil {
		return err
	}
	if err := s.allocate(n); err != nil {
		return err
	}
	if err := s.buildPipelines(); err != nil {
		return err
	}
	if err := s.bind(); err != nil {
		return err
	}

	// colors never change after setup
	if err := s.registry.Upload(s.buffers.Colors, 0, common.Float32sToBytes(instance.PackColors(s.instances))); err != nil {
		return err
	}
	return nil
}

func (s *scene) allocate(n uint64) error {
	type allocation struct {
		dst   *renderer.BufferHandle
		label string
		usage renderer.BufferUsage
		size  uint64
	}
	allocations := []allocation{
		{&s.buffers.ViewProjection, "viewProjection", renderer.BufferUsageUniform, camera.ViewProjectionLayout.Size()},
		{&s.buffers.LightViewProjection, "lightViewProjection", renderer.BufferUsageUniform, light.ProjectionLayout.Size()},
		{&s.buffers.Light, "light", renderer.BufferUsageUniform, light.LightLayout.Size()},
		{&s.buffers.Material, "material", renderer.BufferUsageUniform, material.Layout.Size()},
		{&s.buffers.Models, "models", renderer.BufferUsageStorage, common.Mat4Size * n},
		{&s.buffers.Normals, "normals", renderer.BufferUsageStorage, common.Mat4Size * n},
		{&s.buffers.Colors, "colors", renderer.BufferUsageStorage, common.Vec4Size * n},
	}
	for _, a := range allocations {
		h, err := s.registry.Allocate(a.label, a.usage, a.size)
		if err != nil {
			return err
		}
		*a.dst = h
	}

	var err error
	if s.buffers.ShadowMap, err = s.registry.AllocateDepthTexture("shadowMap", s.shadowMapResolution); err != nil {
		return err
	}
	if s.buffers.ShadowSampler, err = s.registry.AllocateComparisonSampler("shadowSampler"); err != nil {
		return err
	}
	return nil
}

func (s *scene) buildPipelines() error {
	shadowVS, err := shader.NewShader(shaders.ShadowVertexKey, shader.ShaderTypeVertex, shaders.ShadowVertex)
	if err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrResourceCreationFailure, err)
	}
	colorVS, err := shader.NewShader(shaders.ColorVertexKey, shader.ShaderTypeVertex, shaders.ColorVertex)
	if err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrResourceCreationFailure, err)
	}
	colorFS, err := shader.NewShader(shaders.ColorFragmentKey, shader.ShaderTypeFragment, shaders.ColorFragment)
	if err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrResourceCreationFailure, err)
	}

	s.pipelines = pipeline.NewPipelineSet(s.ctx, pipeline.WithWorkers(s.compileWorkers))
	layout := geometry.VertexLayout()
	if err := s.pipelines.BuildShadowPipeline(shadowVS, layout,
		pipeline.WithCullMode(s.shadowCull),
		pipeline.WithDepthBias(s.depthBias, s.depthBiasSlopeScale),
	); err != nil {
		return err
	}
	if err := s.pipelines.BuildColorPipeline(colorVS, colorFS, layout); err != nil {
		return err
	}
	return s.pipelines.Build()
}

func (s *scene) bind() error {
	s.groups = bind_group_provider.NewBindGroupProvider(s.registry, s.pipelines)
	b := s.buffers

	var err error
	if s.shadowGroup, err = s.groups.BindShadowGroup(b.Models, b.LightViewProjection); err != nil {
		return err
	}
	if s.colorVertexGroup, err = s.groups.BindColorVertexGroup(b.ViewProjection, b.Models, b.Normals, b.LightViewProjection, b.Colors); err != nil {
		return err
	}
	if s.colorFragmentGroup, err = s.groups.BindColorFragmentGroup(b.Light, b.Material, b.ShadowMap, b.ShadowSampler); err != nil {
		return err
	}
	return nil
}

func (s *scene) Frame(elapsed float32) error {
	defer s.enter(StageIdle)

	s.enter(StageLightUpdate)
	if err := s.updateLight(elapsed); err != nil {
		return fmt.Errorf("scene %s: frame %d: light update: %w", s.name, s.state.Frame, err)
	}

	s.enter(StageInstanceUpdate)
	if err := s.updateInstances(); err != nil {
		return fmt.Errorf("scene %s: frame %d: instance update: %w", s.name, s.state.Frame, err)
	}

	enc, err := s.ctx.BeginCommandRecording()
	if err != nil {
		return fmt.Errorf("scene %s: frame %d: %w", s.name, s.state.Frame, err)
	}

	s.enter(StageShadowPass)
	if err := s.shadowPass(enc); err != nil {
		discard(enc)
		return fmt.Errorf("scene %s: frame %d: shadow pass: %w", s.name, s.state.Frame, err)
	}

	s.enter(StageColorPass)
	if err := s.colorPass(enc); err != nil {
		discard(enc)
		if errors.Is(err, renderer.ErrSurfaceUnavailable) {
			s.skipped++
			log.WithFields(log.Fields{"scene": s.name, "frame": s.state.Frame}).Warn("surface unavailable, frame skipped")
			return nil
		}
		return fmt.Errorf("scene %s: frame %d: color pass: %w", s.name, s.state.Frame, err)
	}

	cb, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("scene %s: frame %d: %w", s.name, s.state.Frame, err)
	}
	if err := s.ctx.Submit(cb); err != nil {
		return fmt.Errorf("scene %s: frame %d: submit: %w", s.name, s.state.Frame, err)
	}
	s.enter(StageSubmitted)
	log.WithFields(log.Fields{"scene": s.name, "frame": s.state.Frame, "t": s.state.Time}).Debug("frame submitted")
	return nil
}

// enter moves the frame state machine to stage.
func (s *scene) enter(stage Stage) {
	s.stage = stage
	if s.observer != nil {
		s.observer(stage)
	}
}

// discard finishes and frees a command stream that will not be submitted.
func discard(enc renderer.CommandRecorder) {
	if cb, err := enc.Finish(); err == nil {
		cb.Release()
	}
}

// updateLight advances the frame state and uploads the light, material and, if the camera moved, camera uniforms.
func (s *scene) updateLight(elapsed float32) error {
	view := View{Changed: s.cam.Tick()}
	if view.Changed {
		view.ViewProjection = s.cam.ViewProjection()
		view.Eye = s.cam.Eye()
	}
	s.state = NextFrameState(s.state, elapsed, s.store.Snapshot(), s.light, view)
	st := s.state

	var writes []registry.BufferWrite
	place := func(buf renderer.BufferHandle, layout renderer.UniformLayout, field string, data []byte) error {
		off, err := layout.Place(field, data)
		if err != nil {
			return err
		}
		writes = append(writes, registry.BufferWrite{Buffer: buf, Offset: off, Data: data})
		return nil
	}

	if err := place(s.buffers.LightViewProjection, light.ProjectionLayout, "lightViewProjection", common.Mat4Bytes(st.LightViewProjection)); err != nil {
		return err
	}
	gpuLight := light.GPULight{
		LightPosition: st.LightPosition,
		EyePosition:   st.Eye,
		SpecularColor: st.Params.SpecularRGB(),
	}
	writes = append(writes, registry.BufferWrite{Buffer: s.buffers.Light, Data: gpuLight.Marshal()})
	gpuMaterial := st.Params.Material().GPU()
	writes = append(writes, registry.BufferWrite{Buffer: s.buffers.Material, Data: gpuMaterial.Marshal()})

	if st.CameraChanged {
		if err := place(s.buffers.ViewProjection, camera.ViewProjectionLayout, "viewProjection", common.Mat4Bytes(st.CameraViewProjection)); err != nil {
			return err
		}
	}
	return s.registry.UploadAll(writes)
}

// updateInstances advances the instances, re-packs every matrix and uploads both matrix buffers.
func (s *scene) updateInstances() error {
	instance.Advance(s.instances, s.state.Time)
	if err := instance.PackInto(s.models, s.normals, s.instances); err != nil {
		return err
	}
	return s.registry.UploadAll([]registry.BufferWrite{
		{Buffer: s.buffers.Models, Data: common.Float32sToBytes(s.models)},
		{Buffer: s.buffers.Normals, Data: common.Float32sToBytes(s.normals)},
	})
}

func (s *scene) shadowPass(enc renderer.CommandRecorder) error {
	pass, err := enc.BeginDepthPass(s.buffers.ShadowMap)
	if err != nil {
		return err
	}
	pass.SetPipeline(s.pipelines.Shadow().Handle())
	pass.SetBindGroup(bind_group_provider.ShadowGroup, s.shadowGroup)
	drawBatches(pass, s.batches)
	return pass.End()
}

func (s *scene) colorPass(enc renderer.CommandRecorder) error {
	pass, err := enc.BeginColorPass()
	if err != nil {
		return err
	}
	pass.SetPipeline(s.pipelines.Color().Handle())
	pass.SetBindGroup(bind_group_provider.ColorVertexGroup, s.colorVertexGroup)
	pass.SetBindGroup(bind_group_provider.ColorFragmentGroup, s.colorFragmentGroup)
	drawBatches(pass, s.batches)
	return pass.End()
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.cam.SetAspect(float32(width) / float32(height))
}

func (s *scene) Stage() Stage {
	return s.stage
}

func (s *scene) State() FrameState {
	return s.state
}

func (s *scene) SkippedFrames() uint64 {
	return s.skipped
}

func (s *scene) Instances() []instance.Instance {
	return s.instances
}

func (s *scene) Batches() []ShapeBatch {
	return s.batches
}

func (s *scene) Buffers() Buffers {
	return s.buffers
}

func (s *scene) Registry() registry.Registry {
	return s.registry
}

func (s *scene) Pipelines() pipeline.PipelineSet {
	return s.pipelines
}

func (s *scene) BindGroups() bind_group_provider.BindGroupProvider {
	return s.groups
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Params() *params.Store {
	return s.store
}
