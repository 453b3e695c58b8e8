// Package light provides the single directional light of the PBR pipeline.
package light

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Light is a directional light: no position and no falloff, so every fragment sees the same
// direction and radiance. It is safe to retune while the render goroutine reads it.
type Light interface {
	// Direction returns the normalized direction the light travels.
	Direction() mgl32.Vec3

	// Color returns the RGB color before intensity is applied.
	Color() mgl32.Vec3

	// Intensity returns the scalar applied to Color.
	Intensity() float32

	// Aim points the light along dir.
	//
	// Parameters:
	//   - dir: travel direction, normalized on set
	//
	// Returns:
	//   - bool: false when dir is zero and the direction was kept
	Aim(dir mgl32.Vec3) bool

	// Tint sets the color and intensity together.
	//
	// Parameters:
	//   - color: RGB color
	//   - intensity: scalar multiplier; negative values clamp to 0
	Tint(color mgl32.Vec3, intensity float32)

	// Uniform returns the group 2 uniform with the color premultiplied by the intensity.
	Uniform() GPULightUniform
}

type directional struct {
	mu        sync.RWMutex
	direction mgl32.Vec3
	color     mgl32.Vec3
	intensity float32
}

var _ Light = &directional{}

// NewLight creates a white light of intensity 1 travelling straight down.
//
// Parameters:
//   - opts: functional options
//
// Returns:
//   - Light: the light
func NewLight(opts ...LightBuilderOption) Light {
	l := &directional{
		direction: mgl32.Vec3{0, -1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *directional) Direction() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.direction
}

func (l *directional) Color() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *directional) Intensity() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intensity
}

func (l *directional) Aim(dir mgl32.Vec3) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.aim(dir)
}

func (l *directional) aim(dir mgl32.Vec3) bool {
	if dir.Len() < 1e-8 {
		return false
	}
	l.direction = dir.Normalize()
	return true
}

func (l *directional) Tint(color mgl32.Vec3, intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
	l.intensity = max(intensity, 0)
}

func (l *directional) Uniform() GPULightUniform {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return GPULightUniform{
		Direction: l.direction,
		Color:     l.color.Mul(l.intensity),
	}
}
