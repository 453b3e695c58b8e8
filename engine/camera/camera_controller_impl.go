package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// frameDistance is the orbit radius used by Frame, in multiples of the framed sphere radius.
const frameDistance = 2.5

var worldUp = mgl32.Vec3{0, 1, 0}

type cameraControllerImpl struct {
	mu sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius, maxRadius       float32
	minElevation, maxElevation float32

	orbitSpeed      float32
	dragSensitivity float32
	zoomSpeed       float32
	panSpeed        float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller 3 units from the origin, slightly above it.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		radius:    3,
		elevation: math32.Pi / 12,

		minRadius:    0.05,
		maxRadius:    1000,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		orbitSpeed:      0.03,
		dragSensitivity: 0.005,
		zoomSpeed:       0.25,
		panSpeed:        0.01,
	}
	for _, option := range options {
		option(cc)
	}
	cc.clamp()
	cc.place()
	return cc
}

// apply runs fn under the lock and re-derives the eye.
func (cc *cameraControllerImpl) apply(fn func()) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	fn()
	cc.clamp()
	cc.place()
}

func (cc *cameraControllerImpl) clamp() {
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
}

// place puts the eye on the orbit sphere.
func (cc *cameraControllerImpl) place() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)
	cc.position = cc.target.Add(mgl32.Vec3{
		cosElev * sinAzim,
		sinElev,
		cosElev * cosAzim,
	}.Mul(cc.radius))
}

// viewAxes returns the right and up axes of the LookAt basis, or zero vectors when the eye is
// degenerate.
func (cc *cameraControllerImpl) viewAxes() (right, up mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	right = worldUp.Cross(back)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	return right, back.Cross(right)
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.apply(func() {
		cc.radius -= delta * cc.zoomSpeed * cc.radius
	})
}

func (cc *cameraControllerImpl) Orbit(yaw, pitch float32) {
	cc.apply(func() {
		cc.azimuth += yaw * cc.orbitSpeed
		cc.elevation += pitch * cc.orbitSpeed
	})
}

func (cc *cameraControllerImpl) Drag(dx, dy float32) {
	cc.apply(func() {
		cc.azimuth -= dx * cc.dragSensitivity
		cc.elevation += dy * cc.dragSensitivity
	})
}

func (cc *cameraControllerImpl) Pan(right, up float32) {
	cc.apply(func() {
		r, u := cc.viewAxes()
		step := cc.panSpeed * cc.radius
		cc.target = cc.target.Add(r.Mul(right * step)).Add(u.Mul(up * step))
	})
}

func (cc *cameraControllerImpl) Frame(center mgl32.Vec3, radius float32) {
	if radius <= 0 {
		radius = 1
	}
	cc.apply(func() {
		cc.target = center
		cc.radius = radius * frameDistance
		cc.minRadius = math32.Min(cc.minRadius, radius*0.01)
		cc.maxRadius = math32.Max(cc.maxRadius, cc.radius*10)
	})
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}
