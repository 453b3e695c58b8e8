package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption configures a light created by NewLight.
type LightBuilderOption func(*directional)

// WithDirection sets the travel direction. A zero vector keeps the default.
func WithDirection(dir mgl32.Vec3) LightBuilderOption {
	return func(l *directional) {
		l.aim(dir)
	}
}

// WithColor sets the RGB color.
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *directional) {
		l.color = color
	}
}

// WithIntensity sets the color multiplier. Negative values clamp to 0.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *directional) {
		l.intensity = max(intensity, 0)
	}
}
