package renderer

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// AssetRendererOption is a functional option applied to an AssetRenderer during construction.
type AssetRendererOption func(*AssetRenderer)

// WithCamera sets the camera whose matrices feed the camera uniform every frame.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - AssetRendererOption: a function that applies the camera option
func WithCamera(c camera.Camera) AssetRendererOption {
	return func(r *AssetRenderer) {
		r.camera = c
	}
}

// WithLight sets the light whose state feeds the light uniform every frame.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - AssetRendererOption: a function that applies the light option
func WithLight(l light.Light) AssetRendererOption {
	return func(r *AssetRenderer) {
		r.light = l
	}
}

// WithLoader sets the loader used for cache misses.
func WithLoader(l loader.Loader) AssetRendererOption {
	return func(r *AssetRenderer) {
		r.loader = l
	}
}

// WithCache shares an existing asset cache.
func WithCache(c *AssetCache) AssetRendererOption {
	return func(r *AssetRenderer) {
		r.cache = c
	}
}

// WithSurfaceSize sets the initial surface size used for the camera aspect and the depth target.
func WithSurfaceSize(width, height uint32) AssetRendererOption {
	return func(r *AssetRenderer) {
		r.width, r.height = width, height
	}
}

// WithAssetLogger sets the logger of the renderer and of the components it builds.
func WithAssetLogger(log *zap.Logger) AssetRendererOption {
	return func(r *AssetRenderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithDepthMode selects which assets get a depth attachment.
func WithDepthMode(mode DepthMode) AssetRendererOption {
	return func(r *AssetRenderer) {
		r.depthMode = mode
	}
}

// WithBackground sets the clear color of every frame.
func WithBackground(c wgpu.Color) AssetRendererOption {
	return func(r *AssetRenderer) {
		r.clear = &c
	}
}
