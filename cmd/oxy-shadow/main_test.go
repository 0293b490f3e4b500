package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/engine/params"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHeadless(t *testing.T) {
	cfg, err := params.Parse([]byte("instances: {cubes: 2, tori: 0, spheres: 3}\nshadowMapResolution: 512\n"))
	require.NoError(t, err)

	rc, err := runHeadless(context.Background(), cfg, 2)
	require.NoError(t, err)

	subs := rc.Submissions()
	require.Len(t, subs, 2)
	for _, sub := range subs {
		require.Len(t, sub.Passes, 2)
		assert.Equal(t, renderer.PassKindDepthOnly, sub.Passes[0].Kind)
		assert.Equal(t, renderer.PassKindColor, sub.Passes[1].Kind)
		for _, pass := range sub.Passes {
			require.Len(t, pass.Draws, 2, "no torus batch")
			assert.Equal(t, uint32(2), pass.Draws[0].InstanceCount)
			assert.Equal(t, uint32(3), pass.Draws[1].InstanceCount)
			assert.Equal(t, uint32(2), pass.Draws[1].FirstInstance)
		}
	}
	assert.NotPanics(t, func() { logSubmissions(rc) })
}

func TestRunHeadlessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc, err := runHeadless(ctx, params.DefaultConfig(), 5)
	require.NoError(t, err)
	assert.Empty(t, rc.Submissions())
}

func TestSceneOptionsFromConfig(t *testing.T) {
	cfg, err := params.Parse([]byte("name: tuned\nshadow: {cull: front, depthBias: 2, slopeScale: 1}\ncamera: {fovDegrees: 60}\n"))
	require.NoError(t, err)

	rc := renderer.NewRecordingContext()
	s, err := newScene(rc, cfg, 2)
	require.NoError(t, err)
	assert.Equal(t, "tuned", s.Name())
	assert.InDelta(t, mgl32.DegToRad(60), s.Camera().Fov(), 1e-6)

	desc, ok := rc.Pipeline(s.Pipelines().Shadow().Handle())
	require.True(t, ok)
	assert.Equal(t, renderer.CullModeFront, desc.CullMode)
	assert.Equal(t, int32(2), desc.DepthBias)

	cfg.Shadow.Cull = "sideways"
	_, err = sceneOptions(cfg)
	assert.Error(t, err)
}

func setFlags(t *testing.T, config string, headlessRun bool, n uint64) {
	t.Helper()
	prevConfig, prevHeadless, prevFrames := *configPath, *headless, *frames
	t.Cleanup(func() { *configPath, *headless, *frames = prevConfig, prevHeadless, prevFrames })
	*configPath, *headless, *frames = config, headlessRun, n
}

func TestRunExitCode(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("instances: {cubes: 1, tori: 1, spheres: 1}\nshadowMapResolution: 256\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("shadowMapResolution: 0\n"), 0o600))

	tests := []struct {
		name   string
		config string
		want   int
	}{
		{"headless run", good, 0},
		{"defaults", "", 0},
		{"missing config", filepath.Join(dir, "missing.yaml"), 1},
		{"invalid config", bad, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.config, true, 1)
			assert.Equal(t, tt.want, run())
		})
	}
}
