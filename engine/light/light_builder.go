package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithOrbit sets the horizontal radius and height of the light's circular path.
//
// Parameters:
//   - radius: distance from the Y axis
//   - height: height above the origin
//
// Returns:
//   - LightBuilderOption: a function that applies the orbit option to a lightImpl
func WithOrbit(radius, height float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.orbitRadius = radius
		l.height = height
	}
}

// WithTarget sets the point the light looks at.
//
// Parameters:
//   - target: world-space look-at point
//
// Returns:
//   - LightBuilderOption: a function that applies the target option to a lightImpl
func WithTarget(target mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = target
	}
}

// WithShadowFrustum sets the orthographic shadow box.
//
// Parameters:
//   - halfExtent: half-size of the box in world units along X and Y
//   - near: near plane
//   - far: far plane
//
// Returns:
//   - LightBuilderOption: a function that applies the frustum option to a lightImpl
func WithShadowFrustum(halfExtent, near, far float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.halfExtent = halfExtent
		l.near = near
		l.far = far
	}
}
