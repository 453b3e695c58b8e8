package binder

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// BinderBuilderOption is a functional option for configuring Bind.
type BinderBuilderOption func(*binder)

// WithColorFormat is an option builder that sets the color target format of the pipeline.
// It must match the format the presentation surface was configured with.
//
// Parameters:
//   - format: the surface color format
//
// Returns:
//   - BinderBuilderOption: a function that applies the color format option
func WithColorFormat(format wgpu.TextureFormat) BinderBuilderOption {
	return func(b *binder) {
		if format != wgpu.TextureFormatUndefined {
			b.colorFormat = format
		}
	}
}

// WithLogger is an option builder that sets the logger used for diagnostics.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - BinderBuilderOption: a function that applies the logger option
func WithLogger(log *zap.Logger) BinderBuilderOption {
	return func(b *binder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithDepthTest is an option builder that overrides the depth test of the pipeline. By default
// only the PBR variant is depth tested.
//
// Parameters:
//   - enabled: whether the pipeline writes and tests depth
//
// Returns:
//   - BinderBuilderOption: a function that applies the depth option
func WithDepthTest(enabled bool) BinderBuilderOption {
	return func(b *binder) {
		b.depthTest = &enabled
	}
}
