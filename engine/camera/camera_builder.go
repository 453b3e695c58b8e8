package camera

// CameraBuilderOption configures a camera created by NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPerspective sets the vertical field of view and the clip planes.
//
// Parameters:
//   - fov: vertical field of view in radians
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: option to apply
func WithPerspective(fov, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.lens.Fov, c.lens.Near, c.lens.Far = fov, near, far
	}
}

// WithAspect sets the initial aspect ratio. Non-positive values are ignored.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.lens.Aspect = aspect
		}
	}
}

// WithController attaches the orbit controller the camera follows.
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
