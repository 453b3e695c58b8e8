// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Renderer RendererConfig `yaml:"renderer" toml:"renderer"`
	Camera   CameraConfig   `yaml:"camera" toml:"camera"`
	Light    LightConfig    `yaml:"light" toml:"light"`
	Loader   LoaderConfig   `yaml:"loader" toml:"loader"`
	Textures TextureConfig  `yaml:"textures" toml:"textures"`
	Watch    WatchConfig    `yaml:"watch" toml:"watch"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

// Depth modes accepted by RendererConfig.DepthMode.
const (
	DepthAuto   = "auto"   // depth attachment for PBR assets only
	DepthAlways = "always" // depth attachment for every asset
	DepthNever  = "never"  // no depth attachment
)

// RendererConfig holds rendering settings.
type RendererConfig struct {
	DepthMode            string     `yaml:"depth_mode" toml:"depth_mode"`
	PresentMode          string     `yaml:"present_mode" toml:"present_mode"`
	FrameLimit           int        `yaml:"frame_limit" toml:"frame_limit"`
	ClearColor           [4]float64 `yaml:"clear_color" toml:"clear_color"`
	ForceFallbackAdapter bool       `yaml:"force_fallback_adapter" toml:"force_fallback_adapter"`
	Profile              bool       `yaml:"profile" toml:"profile"`
}

// CameraConfig holds the initial camera placement and control speeds.
type CameraConfig struct {
	Eye        [3]float32 `yaml:"eye" toml:"eye"`
	Target     [3]float32 `yaml:"target" toml:"target"`
	FovDegrees float32    `yaml:"fov_degrees" toml:"fov_degrees"`
	Near       float32    `yaml:"near" toml:"near"`
	Far        float32    `yaml:"far" toml:"far"`
	ZoomSpeed  float32    `yaml:"zoom_speed" toml:"zoom_speed"`
	OrbitSpeed float32    `yaml:"orbit_speed" toml:"orbit_speed"`
}

// LightConfig holds the directional light.
type LightConfig struct {
	Direction [3]float32 `yaml:"direction" toml:"direction"`
	Color     [3]float32 `yaml:"color" toml:"color"`
	Intensity float32    `yaml:"intensity" toml:"intensity"`
}

// LoaderConfig holds asset loading settings.
type LoaderConfig struct {
	AssetPath     string `yaml:"asset_path" toml:"asset_path"`
	DecodeWorkers int    `yaml:"decode_workers" toml:"decode_workers"`
	DecodeQueue   int    `yaml:"decode_queue" toml:"decode_queue"`
}

// TextureConfig holds texture upload settings.
type TextureConfig struct {
	UseDocumentSamplers bool `yaml:"use_document_samplers" toml:"use_document_samplers"`
}

// WatchConfig holds hot-reload settings.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with the viewer's default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "glbview",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			DepthMode:   DepthAuto,
			PresentMode: "fifo",
			FrameLimit:  0,
			ClearColor:  [4]float64{0.1, 0.1, 0.1, 1.0},
		},
		Camera: CameraConfig{
			Eye:        [3]float32{0, 0, 5},
			Target:     [3]float32{0, 0, 0},
			FovDegrees: 45,
			Near:       0.1,
			Far:        100,
			ZoomSpeed:  0.5,
			OrbitSpeed: 0.05,
		},
		Light: LightConfig{
			Direction: [3]float32{0, -1, 0},
			Color:     [3]float32{1, 1, 1},
			Intensity: 1,
		},
		Loader: LoaderConfig{
			DecodeWorkers: 4,
			DecodeQueue:   16,
		},
		Watch: WatchConfig{
			Enabled:    false,
			DebounceMS: 250,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	switch strings.ToLower(c.Renderer.DepthMode) {
	case DepthAuto, DepthAlways, DepthNever:
	default:
		errs = append(errs, fmt.Errorf("unknown depth mode %q", c.Renderer.DepthMode))
	}
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "fifo", "immediate", "mailbox":
	default:
		errs = append(errs, fmt.Errorf("unknown present mode %q", c.Renderer.PresentMode))
	}
	if c.Renderer.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("frame limit must not be negative, got %d", c.Renderer.FrameLimit))
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180), got %g", c.Camera.FovDegrees))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip planes must satisfy 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far))
	}
	if c.Light.Intensity < 0 {
		errs = append(errs, fmt.Errorf("light intensity must not be negative, got %g", c.Light.Intensity))
	}
	if c.Loader.DecodeWorkers < 1 {
		errs = append(errs, fmt.Errorf("decode workers must be at least 1, got %d", c.Loader.DecodeWorkers))
	}
	if c.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("watch debounce must not be negative, got %d", c.Watch.DebounceMS))
	}
	return errors.Join(errs...)
}
