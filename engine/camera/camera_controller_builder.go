package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithEye places the camera at eye, deriving radius, azimuth and elevation relative to the current target.
// Apply it after WithTarget when both are used.
//
// Parameters:
//   - eye: the world-space camera position
//
// Returns:
//   - CameraControllerOption: functional option to set the eye position
func WithEye(eye mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		d := eye.Sub(cc.target)
		cc.radius = d.Len()
		if cc.radius == 0 {
			return
		}
		cc.azimuth = math32.Atan2(d.X(), d.Z())
		cc.elevation = math32.Asin(mgl32.Clamp(d.Y()/cc.radius, -1, 1))
	}
}

// WithTarget sets the point the camera orbits and looks at.
//
// Parameters:
//   - target: world-space target position
//
// Returns:
//   - CameraControllerOption: functional option to set the target position
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadiusBounds sets the min and max orbit radius.
//
// Parameters:
//   - min: minimum radius
//   - max: maximum radius
//
// Returns:
//   - CameraControllerOption: functional option to set radius bounds
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = min
		cc.maxRadius = max
	}
}

// WithOrbitSpeed sets the orbit step in radians per key press.
//
// Parameters:
//   - speed: radians per step
//
// Returns:
//   - CameraControllerOption: functional option to set orbit speed
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the radius change per unit of zoom delta.
//
// Parameters:
//   - speed: world units per scroll step
//
// Returns:
//   - CameraControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
