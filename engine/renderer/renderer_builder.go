package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a FrameRenderer during construction.
type RendererBuilderOption func(*renderer)

// WithDepth attaches a depth target to every render pass.
//
// Parameters:
//   - depth: the depth target; nil leaves the renderer without depth
//
// Returns:
//   - RendererBuilderOption: a function that applies the depth option to a renderer
func WithDepth(depth *DepthTarget) RendererBuilderOption {
	return func(r *renderer) {
		r.depth = depth
	}
}

// WithClearColor sets the color the color attachment is cleared to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithLabel sets the label prefix of the per-frame encoder and pass.
func WithLabel(label string) RendererBuilderOption {
	return func(r *renderer) {
		if label != "" {
			r.label = label
		}
	}
}

// WithLogger sets the logger used to report skipped frames.
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log
		}
	}
}
