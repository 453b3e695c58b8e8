package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController is the orbit rig the viewer camera reads its eye and target from. The
// eye sits on a sphere around the target, described by radius, azimuth and elevation.
// Implementations are safe for use from the input and render goroutines at once.
type CameraController interface {
	// Position returns the eye in world space.
	Position() mgl32.Vec3

	// Target returns the orbit pivot the camera looks at.
	Target() mgl32.Vec3

	// Zoom moves the eye along the view direction by delta zoom steps, each a fraction of the
	// current radius. Positive values move closer. The radius stays within its limits.
	//
	// Parameters:
	//   - delta: zoom steps
	Zoom(delta float32)

	// Orbit turns the eye around the target by whole orbit steps.
	//
	// Parameters:
	//   - yaw: steps around the vertical axis, positive to the right
	//   - pitch: steps of elevation, positive upward; clamped to the pitch limits
	Orbit(yaw, pitch float32)

	// Drag turns the eye from a cursor movement in pixels.
	//
	// Parameters:
	//   - dx: horizontal cursor movement
	//   - dy: vertical cursor movement
	Drag(dx, dy float32)

	// Pan slides eye and target together in the view plane.
	//
	// Parameters:
	//   - right: pan steps along the view's right axis
	//   - up: pan steps along the view's up axis
	Pan(right, up float32)

	// Frame centers the target on a bounding sphere and backs off until the sphere fits.
	// The zoom limits are widened when the sphere is very small or very large.
	//
	// Parameters:
	//   - center: sphere center
	//   - radius: sphere radius; non-positive values frame a unit sphere
	Frame(center mgl32.Vec3, radius float32)

	// Radius returns the eye's distance from the target.
	Radius() float32

	// Azimuth returns the horizontal angle in radians.
	Azimuth() float32

	// Elevation returns the vertical angle in radians.
	Elevation() float32
}
