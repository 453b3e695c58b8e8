package pipeline

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption adjusts a pipeline before Create.
type PipelineBuilderOption func(*pipeline)

// WithShaders sets the modules exposing vs_main and fs_main.
func WithShaders(vertex, fragment gpu.ShaderModule) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertex, p.fragment = vertex, fragment
	}
}

// WithColorFormat sets the color target format, normally the surface's.
func WithColorFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.ColorFormat = format
	}
}

// WithDepth toggles the DepthFormat attachment. Depth writes and the Less compare stay as in
// DefaultState.
func WithDepth(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthTest = enabled
	}
}

// WithBlend replaces the color blend. Pass nil for opaque output.
func WithBlend(blend *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Blend = blend
	}
}

// WithCulling sets which faces are dropped.
func WithCulling(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Cull = mode
	}
}

// WithState replaces the whole render state.
//
// Parameters:
//   - state: the state to use; a zero SampleCount becomes 1
//
// Returns:
//   - PipelineBuilderOption: option to apply
func WithState(state RenderState) PipelineBuilderOption {
	return func(p *pipeline) {
		if state.SampleCount == 0 {
			state.SampleCount = 1
		}
		p.state = state
	}
}
