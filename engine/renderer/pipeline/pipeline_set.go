package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/shader"
	log "github.com/sirupsen/logrus"
)

const (
	// ShadowKey is the key of the depth-only shadow pipeline.
	ShadowKey = "shadow"
	// ColorKey is the key of the shaded color pipeline.
	ColorKey = "color"
)

// pipelineSet is the implementation of the PipelineSet interface.
type pipelineSet struct {
	ctx renderer.Context

	// workers is the maximum number of pipelines compiled at once
	workers int

	shadow, color *pipeline
	built         bool
}

// PipelineSet holds the two pipelines of a shadow-mapped scene: a depth-only shadow pipeline and a color
// pipeline that samples the shadow map through a comparison sampler.
//
// Pipelines are staged with BuildShadowPipeline and BuildColorPipeline, then compiled together by Build.
// After Build returns successfully the set is immutable.
type PipelineSet interface {
	// BuildShadowPipeline stages the depth-only shadow pipeline. It has no fragment stage and no color attachment.
	//
	// Parameters:
	//   - vertexShader: the vertex stage
	//   - vertexLayout: the vertex buffer layout, indexed by slot
	//   - opts: additional options such as WithCullMode or WithDepthBias
	//
	// Returns:
	//   - error: an error wrapping renderer.ErrResourceCreationFailure if the stage and layout are inconsistent
	BuildShadowPipeline(vertexShader shader.Shader, vertexLayout []renderer.VertexBufferLayout, opts ...PipelineBuilderOption) error

	// BuildColorPipeline stages the color pipeline. Its layout must declare a depth texture and a comparison
	// sampler binding for the shadow map.
	//
	// Parameters:
	//   - vertexShader: the vertex stage
	//   - fragmentShader: the fragment stage
	//   - vertexLayout: the vertex buffer layout, indexed by slot
	//   - opts: additional options such as WithCullMode
	//
	// Returns:
	//   - error: an error wrapping renderer.ErrResourceCreationFailure if the stages and layout are inconsistent
	BuildColorPipeline(vertexShader, fragmentShader shader.Shader, vertexLayout []renderer.VertexBufferLayout, opts ...PipelineBuilderOption) error

	// Build compiles both staged pipelines concurrently and blocks until both are done or one failed.
	//
	// Returns:
	//   - error: an error wrapping renderer.ErrResourceCreationFailure
	Build() error

	// Built reports whether Build has completed successfully.
	Built() bool

	// Shadow returns the shadow pipeline, or nil if it has not been staged.
	Shadow() Pipeline

	// Color returns the color pipeline, or nil if it has not been staged.
	Color() Pipeline

	// Pipeline returns a staged pipeline by key.
	//
	// Parameters:
	//   - key: ShadowKey or ColorKey
	//
	// Returns:
	//   - Pipeline: the pipeline, or nil if none is staged under key
	Pipeline(key string) Pipeline
}

var _ PipelineSet = &pipelineSet{}

// NewPipelineSet creates an empty PipelineSet that compiles against ctx.
//
// Parameters:
//   - ctx: the rendering context to compile with
//   - options: functional options to configure the set
//
// Returns:
//   - PipelineSet: the new set
func NewPipelineSet(ctx renderer.Context, options ...PipelineSetBuilderOption) PipelineSet {
	s := &pipelineSet{
		ctx:     ctx,
		workers: 2,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *pipelineSet) BuildShadowPipeline(vertexShader shader.Shader, vertexLayout []renderer.VertexBufferLayout, opts ...PipelineBuilderOption) error {
	if s.built {
		return fmt.Errorf("pipeline %s: set already built: %w", ShadowKey, renderer.ErrResourceCreationFailure)
	}
	all := append([]PipelineBuilderOption{WithVertexShader(vertexShader), WithVertexLayout(vertexLayout)}, opts...)
	p, err := NewPipeline(ShadowKey, renderer.PassKindDepthOnly, all...)
	if err != nil {
		return err
	}
	s.shadow = p.(*pipeline)
	return nil
}

func (s *pipelineSet) BuildColorPipeline(vertexShader, fragmentShader shader.Shader, vertexLayout []renderer.VertexBufferLayout, opts ...PipelineBuilderOption) error {
	if s.built {
		return fmt.Errorf("pipeline %s: set already built: %w", ColorKey, renderer.ErrResourceCreationFailure)
	}
	all := append([]PipelineBuilderOption{
		WithVertexShader(vertexShader),
		WithFragmentShader(fragmentShader),
		WithVertexLayout(vertexLayout),
	}, opts...)
	p, err := NewPipeline(ColorKey, renderer.PassKindColor, all...)
	if err != nil {
		return err
	}
	if !declares(p, renderer.BindingKindDepthTexture) || !declares(p, renderer.BindingKindComparisonSampler) {
		return fmt.Errorf("pipeline %s: no shadow map binding (depth texture and comparison sampler): %w",
			ColorKey, renderer.ErrResourceCreationFailure)
	}
	s.color = p.(*pipeline)
	return nil
}

// declares reports whether any group of p has a binding of the given kind.
func declares(p Pipeline, kind renderer.BindingKind) bool {
	for _, l := range p.BindGroupLayouts() {
		for _, e := range l.Entries {
			if e.Kind == kind {
				return true
			}
		}
	}
	return false
}

func (s *pipelineSet) Build() error {
	if s.built {
		return nil
	}
	if s.shadow == nil || s.color == nil {
		return fmt.Errorf("pipeline set: both pipelines must be staged before Build: %w", renderer.ErrResourceCreationFailure)
	}

	staged := []*pipeline{s.shadow, s.color}
	errs := make([]error, len(staged))

	// pool.Wait() only returns once workers idle-exit, so a WaitGroup joins the build instead.
	pool := worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	var wg sync.WaitGroup
	start := time.Now()
	for i, p := range staged {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = p.compile(s.ctx)
				return p.handle, errs[i]
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		log.WithError(err).Error("pipeline build failed")
		return err
	}
	s.built = true
	log.WithField("elapsed", time.Since(start)).Info("pipelines built")
	return nil
}

func (s *pipelineSet) Built() bool {
	return s.built
}

func (s *pipelineSet) Shadow() Pipeline {
	if s.shadow == nil {
		return nil
	}
	return s.shadow
}

func (s *pipelineSet) Color() Pipeline {
	if s.color == nil {
		return nil
	}
	return s.color
}

func (s *pipelineSet) Pipeline(key string) Pipeline {
	switch key {
	case ShadowKey:
		return s.Shadow()
	case ColorKey:
		return s.Color()
	default:
		return nil
	}
}
