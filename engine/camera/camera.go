package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	eye                  mgl32.Vec3

	controller CameraController

	// seenRevision is the controller revision the cached matrices were built from.
	seenRevision uint64
	dirty        bool
}

// Camera holds perspective settings and derives the view-projection matrix from its CameraController.
//
// Tick is the only place matrices are rebuilt: the frame driver polls it once per frame and uploads the
// view-projection and eye position only when it reports a change.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect changes the aspect ratio. The next Tick reports a change.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// Controller returns the controller that positions the camera.
	//
	// Returns:
	//   - CameraController: the controller
	Controller() CameraController

	// Eye returns the camera position as of the last Tick.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Eye() mgl32.Vec3

	// ViewMatrix returns the view matrix as of the last Tick.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the projection matrix as of the last Tick.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjection returns projection * view as of the last Tick.
	ViewProjection() mgl32.Mat4

	// Tick rebuilds the matrices if the controller moved or the projection changed since the last call.
	// The first call always reports a change.
	//
	// Returns:
	//   - bool: true if the view-projection or eye changed
	Tick() bool
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera. Without WithController it orbits the origin from (0, 10, 20).
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    2 * math32.Pi / 5,
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
		dirty:  true,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewOrbitController()
	}
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.dirty = true
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rev := c.controller.Revision()
	if !c.dirty && rev == c.seenRevision {
		return false
	}
	c.seenRevision = rev
	c.dirty = false
	c.updateMatrices()
	return true
}

// updateMatrices rebuilds view, projection and view-projection. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.eye = c.controller.Position()
	c.viewMatrix = mgl32.LookAtV(c.eye, c.controller.Target(), c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
