package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraControllerOption configures the orbit controller returned by NewCameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithLookAt places the camera at eye looking at target. The orbit angles are derived from the
// eye offset; an eye on the target keeps the default angles and radius.
//
// Parameters:
//   - eye: camera position
//   - target: orbit pivot
//
// Returns:
//   - CameraControllerOption: option to apply
func WithLookAt(eye, target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
		offset := eye.Sub(target)
		r := offset.Len()
		if r < 1e-6 {
			return
		}
		cc.radius = r
		cc.azimuth = math32.Atan2(offset.X(), offset.Z())
		cc.elevation = math32.Asin(offset.Y() / r)
	}
}

// WithOrbit sets the spherical coordinates around the target. Azimuth 0 looks down -Z from +Z;
// elevation 0 is level with the target.
func WithOrbit(radius, azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius, cc.azimuth, cc.elevation = radius, azimuth, elevation
	}
}

// WithDistance sets the orbit radius and keeps the default angles.
func WithDistance(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithTarget sets the orbit pivot.
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithZoomLimits bounds the orbit radius. Frame widens the bounds when an asset does not fit.
func WithZoomLimits(nearest, farthest float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius, cc.maxRadius = nearest, farthest
	}
}

// WithPitchLimits bounds the elevation in radians.
func WithPitchLimits(lowest, highest float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation, cc.maxElevation = lowest, highest
	}
}

// WithSpeeds sets the key orbit step in radians and the zoom and pan steps as fractions of
// the radius. Non-positive values keep the defaults, so config zeros mean "unset".
//
// Parameters:
//   - orbit: radians per orbit key press
//   - zoom: radius fraction per zoom step
//   - pan: radius fraction per pan step
//
// Returns:
//   - CameraControllerOption: option to apply
func WithSpeeds(orbit, zoom, pan float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if orbit > 0 {
			cc.orbitSpeed = orbit
		}
		if zoom > 0 {
			cc.zoomSpeed = zoom
		}
		if pan > 0 {
			cc.panSpeed = pan
		}
	}
}

// WithDragSensitivity sets the radians turned per pixel of mouse drag.
func WithDragSensitivity(radiansPerPixel float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.dragSensitivity = radiansPerPixel
	}
}
