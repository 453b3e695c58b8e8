package engine

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets a pre-built window instead of letting the engine open one.
// The engine does not close a window it did not create.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets a pre-built asset renderer instead of negotiating a GPU device. configure
// is called on the render goroutine with the new framebuffer size before the renderer resizes;
// it may be nil when the surface needs no reconfiguration.
//
// Parameters:
//   - r: the asset renderer
//   - configure: surface reconfiguration hook
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r *renderer.AssetRenderer, configure func(width, height int)) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
		e.configure = configure
	}
}

// WithProfiler sets the profiler ticked after every drawn or skipped frame.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second, overriding
// the configured limit. Pass 0 to uncap the render loop.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithLogger sets the root logger; components receive named children of it.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(log *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if log != nil {
			e.log = log
		}
	}
}
