package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine"
	"github.com/Carmen-Shannon/oxy-shadow/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/params"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-shadow/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadow/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// defaultHeadlessFrames is the frame budget of a headless run when -frames is not given.
const defaultHeadlessFrames = 3

func init() {
	// GLFW and the wgpu surface must stay on the main thread.
	runtime.LockOSThread()
}

var (
	configPath = flag.String("config", "", "YAML run configuration; defaults apply to missing fields")
	headless   = flag.Bool("headless", false, "Render against the in-memory recording context, without a window or GPU")
	frames     = flag.Uint64("frames", 0, "Stop after this many frames (0 runs until the window closes)")
	profile    = flag.Bool("profile", false, "Log frame rate and memory statistics every second")
	software   = flag.Bool("software", false, "Use the software fallback GPU adapter")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

// run executes one render session from the parsed flags and returns the process exit code.
func run() int {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg := params.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = params.Load(*configPath); err != nil {
			log.WithError(err).Error("cannot load configuration")
			return 1
		}
	}
	log.SetLevel(cfg.LogLevel.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if *headless {
		n := *frames
		if n == 0 {
			n = defaultHeadlessFrames
		}
		var rc *renderer.RecordingContext
		if rc, err = runHeadless(ctx, cfg, n); err == nil {
			logSubmissions(rc)
		}
	} else {
		err = runWindowed(ctx, cfg, *frames)
	}
	if err != nil {
		log.WithError(err).Error("oxy-shadow stopped")
		return 1
	}
	return 0
}

func sceneOptions(cfg params.Config) ([]scene.SceneBuilderOption, error) {
	cull, err := cfg.ShadowCullMode()
	if err != nil {
		return nil, err
	}
	sh := cfg.Shadow
	return []scene.SceneBuilderOption{
		scene.WithName(common.Coalesce(cfg.Name, "shadow")),
		scene.WithInstanceSpec(cfg.InstanceSpec()),
		scene.WithShadowMapResolution(cfg.ShadowMapResolution),
		scene.WithLight(light.NewLight(light.WithShadowFrustum(sh.HalfExtent, sh.Near, sh.Far))),
		scene.WithShadowCullMode(cull),
		scene.WithShadowDepthBias(sh.DepthBias, sh.SlopeScale),
		scene.WithCompileWorkers(cfg.CompileWorkers),
	}, nil
}

func newCamera(cfg params.Config, aspect float32) camera.Camera {
	cam := cfg.Camera
	return camera.NewCamera(
		camera.WithAspect(aspect),
		camera.WithFov(mgl32.DegToRad(cam.FovDegrees)),
		camera.WithClipPlanes(cam.Near, cam.Far),
		camera.WithController(camera.NewOrbitController(camera.WithOrbitSpeed(cam.OrbitSpeed))),
	)
}

func newScene(ctx renderer.Context, cfg params.Config, aspect float32) (scene.Scene, error) {
	opts, err := sceneOptions(cfg)
	if err != nil {
		return nil, err
	}
	return scene.NewScene(ctx, newCamera(cfg, aspect), params.NewStore(cfg.Params), opts...)
}

// runHeadless drives n frames against a recording context with a fixed 60 Hz timestep.
func runHeadless(ctx context.Context, cfg params.Config, n uint64) (*renderer.RecordingContext, error) {
	rc := renderer.NewRecordingContext()
	s, err := newScene(rc, cfg, float32(cfg.Window.Width)/float32(cfg.Window.Height))
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine(s,
		engine.WithMaxFrames(n),
		engine.WithFixedTimestep(time.Second/60),
		engine.WithProfiling(*profile),
	)
	if err := eng.Run(ctx); err != nil {
		return nil, err
	}
	return rc, nil
}

func runWindowed(ctx context.Context, cfg params.Config, n uint64) error {
	mode, err := cfg.RendererPresentMode()
	if err != nil {
		return err
	}

	win := window.NewWindow(
		window.WithTitle(common.Coalesce(cfg.Window.Title, "oxy-shadow")),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithSizeLimits(cfg.Window.MinWidth, cfg.Window.MinHeight, cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)
	defer win.Close()

	gpuOpts := []wgpu_backend.WGPUContextBuilderOption{
		wgpu_backend.WithPresentMode(mode),
		wgpu_backend.WithMSAA(renderer.MSAASampleCount(cfg.MSAA)),
	}
	if *software {
		gpuOpts = append(gpuOpts, wgpu_backend.WithFallbackAdapter())
	}
	gpu, err := wgpu_backend.NewWGPUContext(win.SurfaceDescriptor(), win.Width(), win.Height(), gpuOpts...)
	if err != nil {
		return fmt.Errorf("gpu: %w", err)
	}
	defer gpu.Release()

	s, err := newScene(gpu, cfg, float32(win.Width())/float32(win.Height()))
	if err != nil {
		return err
	}
	eng := engine.NewEngine(s,
		engine.WithWindow(win),
		engine.WithSurface(gpu),
		engine.WithPresentMode(mode),
		engine.WithProfiling(*profile),
		engine.WithMaxFrames(n),
	)
	return eng.Run(ctx)
}

// logSubmissions prints the recorded pass and draw sequence of every submitted frame.
func logSubmissions(rc *renderer.RecordingContext) {
	for i, sub := range rc.Submissions() {
		for _, pass := range sub.Passes {
			for _, d := range pass.Draws {
				label := ""
				if p, ok := rc.Pipeline(d.Pipeline); ok {
					label = p.Label
				}
				log.WithFields(log.Fields{
					"submission":    i,
					"pass":          pass.Kind.String(),
					"pipeline":      label,
					"indexBuffer":   rc.BufferLabel(d.IndexBuffer),
					"indexCount":    d.IndexCount,
					"instanceCount": d.InstanceCount,
					"firstInstance": d.FirstInstance,
				}).Info("draw")
			}
		}
	}
}
