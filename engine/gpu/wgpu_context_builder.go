package gpu

import (
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// ContextOption is a functional option used to configure a Context during construction.
type ContextOption func(*Context)

// WithPresentMode sets the surface present mode by name: "fifo" (vsync), "immediate" or "mailbox".
// Unknown names keep fifo.
//
// Parameters:
//   - mode: the present mode name
//
// Returns:
//   - ContextOption: a function that sets the present mode
func WithPresentMode(mode string) ContextOption {
	return func(c *Context) {
		c.presentMode = ParsePresentMode(mode)
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
func WithForceFallbackAdapter(force bool) ContextOption {
	return func(c *Context) {
		c.forceFallback = force
	}
}

// WithLogger sets the logger used for device and surface events.
func WithLogger(l *zap.Logger) ContextOption {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// ParsePresentMode maps a present mode name to the wgpu enum, defaulting to fifo.
func ParsePresentMode(mode string) wgpu.PresentMode {
	switch strings.ToLower(mode) {
	case "immediate":
		return wgpu.PresentModeImmediate
	case "mailbox":
		return wgpu.PresentModeMailbox
	default:
		return wgpu.PresentModeFifo
	}
}
