// Package camera holds the viewer's perspective camera and the orbit controller that places it.
package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// clipDepthRemap maps OpenGL clip depth [-1, 1] onto WebGPU's [0, 1].
var clipDepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Lens is a perspective projection. Fov is the vertical field of view in radians and Aspect
// is width over height.
type Lens struct {
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
}

// Matrix returns the projection with WebGPU clip depth.
func (l Lens) Matrix() mgl32.Mat4 {
	return clipDepthRemap.Mul4(mgl32.Perspective(l.Fov, l.Aspect, l.Near, l.Far))
}

// Camera combines a Lens with the eye of an orbit controller. Update snapshots the controller
// once per frame, so a frame is drawn from one consistent view even while input moves the rig.
type Camera interface {
	// Lens returns the current projection parameters.
	Lens() Lens

	// View returns the view matrix of the last Update, or identity without a controller.
	View() mgl32.Mat4

	// ViewProjection returns projection times view.
	ViewProjection() mgl32.Mat4

	// Controller returns the orbit controller, or nil.
	Controller() CameraController

	// Uniform builds the group 0 uniform for one frame.
	//
	// Parameters:
	//   - model: the asset's model matrix
	//
	// Returns:
	//   - GPUCameraUniform: view-projection, model and eye position
	Uniform(model mgl32.Mat4) GPUCameraUniform

	// Update snapshots the controller's eye and target.
	Update()

	// SetAspect changes the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width over height
	SetAspect(aspect float32)

	// SetClip changes the near and far plane distances.
	//
	// Parameters:
	//   - near: near plane distance
	//   - far: far plane distance
	SetClip(near, far float32)
}

type cameraImpl struct {
	mu sync.Mutex

	lens       Lens
	controller CameraController

	eye      mgl32.Vec3
	view     mgl32.Mat4
	viewProj mgl32.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a 45 degree field of view, square aspect and a 0.1..100 clip range.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the camera, already updated from its controller
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		lens: Lens{Fov: mgl32.DegToRad(45), Aspect: 1, Near: 0.1, Far: 100},
		view: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.refresh()
	return c
}

func (c *cameraImpl) Lens() Lens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lens
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) Controller() CameraController {
	return c.controller
}

func (c *cameraImpl) Uniform(model mgl32.Mat4) GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj:       c.viewProj,
		Model:          model,
		CameraPosition: c.eye,
	}
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lens.Aspect = aspect
	c.refresh()
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lens.Near, c.lens.Far = near, far
	c.refresh()
}

// refresh recomputes the matrices. Caller holds the mutex.
func (c *cameraImpl) refresh() {
	if c.controller != nil {
		c.eye = c.controller.Position()
		c.view = mgl32.LookAtV(c.eye, c.controller.Target(), worldUp)
	}
	c.viewProj = c.lens.Matrix().Mul4(c.view)
}
