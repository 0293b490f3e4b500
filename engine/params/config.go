package params

import (
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-shadow/engine/instance"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the run configuration read from a YAML file. Fields missing from the file keep their defaults.
type Config struct {
	Params `yaml:",inline"`

	Name      string         `yaml:"name"`
	Instances InstanceConfig `yaml:"instances"`
	Window    WindowConfig   `yaml:"window"`
	Camera    CameraConfig   `yaml:"camera"`
	Shadow    ShadowConfig   `yaml:"shadow"`

	ShadowMapResolution uint32   `yaml:"shadowMapResolution"`
	CompileWorkers      int      `yaml:"compileWorkers"`
	PresentMode         string   `yaml:"presentMode"`
	MSAA                uint32   `yaml:"msaa"`
	LogLevel            LogLevel `yaml:"logLevel"`
}

// InstanceConfig sets the instance counts and the placement seed.
type InstanceConfig struct {
	Cubes   int    `yaml:"cubes"`
	Tori    int    `yaml:"tori"`
	Spheres int    `yaml:"spheres"`
	Seed    uint64 `yaml:"seed"`
}

// WindowConfig sets the initial window and its resize limits.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"minWidth"`
	MinHeight int    `yaml:"minHeight"`
	MaxWidth  int    `yaml:"maxWidth"`
	MaxHeight int    `yaml:"maxHeight"`
}

// CameraConfig sets the perspective and the orbit step of the camera.
type CameraConfig struct {
	FovDegrees float32 `yaml:"fovDegrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
	OrbitSpeed float32 `yaml:"orbitSpeed"`
}

// ShadowConfig sets the light's orthographic shadow box and the shadow pipeline rasterizer state.
type ShadowConfig struct {
	HalfExtent float32 `yaml:"halfExtent"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
	DepthBias  int32   `yaml:"depthBias"`
	SlopeScale float32 `yaml:"slopeScale"`
	Cull       string  `yaml:"cull"`
}

// LogLevel is a logrus level that unmarshals from its name.
type LogLevel log.Level

// UnmarshalYAML parses a level name such as "debug" or "warn".
func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: logLevel must be a scalar", value.Line)
	}
	lvl, err := log.ParseLevel(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*l = LogLevel(lvl)
	return nil
}

// Level returns the logrus level.
func (l LogLevel) Level() log.Level {
	return log.Level(l)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	spec := instance.NewSpec()
	return Config{
		Params: Default(),
		Name:   "shadow",
		Instances: InstanceConfig{
			Cubes:   spec.Cubes,
			Tori:    spec.Tori,
			Spheres: spec.Spheres,
			Seed:    spec.Seed,
		},
		Window: WindowConfig{
			Title:     "oxy-shadow",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 200,
			MaxWidth:  3840,
			MaxHeight: 2160,
		},
		Camera: CameraConfig{
			FovDegrees: 72,
			Near:       0.1,
			Far:        100,
			OrbitSpeed: 0.03,
		},
		Shadow: ShadowConfig{
			HalfExtent: light.DefaultShadowHalfExtent,
			Near:       light.DefaultShadowNear,
			Far:        light.DefaultShadowFar,
			Cull:       "none",
		},
		ShadowMapResolution: light.ShadowMapResolution,
		CompileWorkers:      2,
		PresentMode:         "vsync",
		MSAA:                uint32(renderer.MSAA4x),
		LogLevel:            LogLevel(log.InfoLevel),
	}
}

// Load reads the configuration at path over the defaults.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the configuration
//   - error: an error if the file cannot be read or holds invalid values
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if err := c.InstanceSpec().Validate(); err != nil {
		return fmt.Errorf("instances: %w", err)
	}
	if c.ShadowMapResolution == 0 {
		return fmt.Errorf("shadowMapResolution must be positive")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if w := c.Window; w.MinWidth > w.MaxWidth || w.MinHeight > w.MaxHeight {
		return fmt.Errorf("window limits %dx%d..%dx%d are inverted", w.MinWidth, w.MinHeight, w.MaxWidth, w.MaxHeight)
	}
	if cam := c.Camera; cam.FovDegrees <= 0 || cam.FovDegrees >= 180 {
		return fmt.Errorf("camera fovDegrees must be in (0, 180), got %v", cam.FovDegrees)
	}
	if cam := c.Camera; cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("camera clip planes need 0 < near < far, got %v..%v", cam.Near, cam.Far)
	}
	if c.Camera.OrbitSpeed <= 0 {
		return fmt.Errorf("camera orbitSpeed must be positive")
	}
	if sh := c.Shadow; sh.HalfExtent <= 0 || sh.Far <= sh.Near {
		return fmt.Errorf("shadow box needs halfExtent > 0 and near < far")
	}
	if _, err := c.ShadowCullMode(); err != nil {
		return err
	}
	if c.CompileWorkers < 1 {
		return fmt.Errorf("compileWorkers must be at least 1")
	}
	if m := renderer.MSAASampleCount(c.MSAA); m != renderer.MSAAOff && m != renderer.MSAA4x {
		return fmt.Errorf("msaa must be 1 or 4, got %d", c.MSAA)
	}
	if _, err := c.RendererPresentMode(); err != nil {
		return err
	}
	return nil
}

// InstanceSpec returns the instance counts and seed as an instance.Spec.
func (c Config) InstanceSpec() instance.Spec {
	return instance.NewSpec(
		instance.WithCounts(c.Instances.Cubes, c.Instances.Tori, c.Instances.Spheres),
		instance.WithSeed(c.Instances.Seed),
	)
}

// ShadowCullMode maps the shadow cull name to a renderer.CullMode.
func (c Config) ShadowCullMode() (renderer.CullMode, error) {
	switch strings.ToLower(c.Shadow.Cull) {
	case "", "none":
		return renderer.CullModeNone, nil
	case "front":
		return renderer.CullModeFront, nil
	case "back":
		return renderer.CullModeBack, nil
	default:
		return 0, fmt.Errorf("unknown shadow cull %q", c.Shadow.Cull)
	}
}

// RendererPresentMode maps the presentMode name to a renderer.PresentMode.
func (c Config) RendererPresentMode() (renderer.PresentMode, error) {
	switch strings.ToLower(c.PresentMode) {
	case "", "vsync":
		return renderer.PresentModeVSync, nil
	case "uncapped", "immediate":
		return renderer.PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("unknown presentMode %q", c.PresentMode)
	}
}
