package wgpu_backend

import "github.com/Carmen-Shannon/oxy-shadow/engine/renderer"

// WGPUContextBuilderOption is a functional option applied to a WGPUContext during construction via NewWGPUContext.
type WGPUContextBuilderOption func(*wgpuContext)

// WithPresentMode sets the initial present mode. Defaults to renderer.PresentModeVSync.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - WGPUContextBuilderOption: a function that applies the present mode option to a WGPUContext
func WithPresentMode(mode renderer.PresentMode) WGPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.presentMode = mode
	}
}

// WithMSAA sets the sample count of the color pass. The depth pass always uses one sample.
// Counts other than renderer.MSAAOff and renderer.MSAA4x are ignored.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - WGPUContextBuilderOption: a function that applies the MSAA option to a WGPUContext
func WithMSAA(count renderer.MSAASampleCount) WGPUContextBuilderOption {
	return func(c *wgpuContext) {
		if count == renderer.MSAAOff || count == renderer.MSAA4x {
			c.sampleCount = count
		}
	}
}

// WithFallbackAdapter forces the software fallback adapter.
//
// Returns:
//   - WGPUContextBuilderOption: a function that applies the fallback option to a WGPUContext
func WithFallbackAdapter() WGPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.forceFallback = true
	}
}
