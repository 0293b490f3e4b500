package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the camera's positional state. It orbits a target point using spherical
// coordinates (radius, azimuth, elevation). Camera reads the position and target from the controller
// and polls Revision to learn whether either moved.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Zoom adjusts the camera's distance by modifying orbit radius.
	// Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Radius returns the current orbit radius (distance from target).
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// Azimuth returns the horizontal orbit angle in radians, measured around +Y from +Z.
	//
	// Returns:
	//   - float32: the azimuth in radians
	Azimuth() float32

	// Elevation returns the vertical orbit angle in radians above the horizontal plane.
	//
	// Returns:
	//   - float32: the elevation in radians
	Elevation() float32

	// Revision returns a counter that increases every time the position or target changes.
	//
	// Returns:
	//   - uint64: the current revision
	Revision() uint64
}
