package bind_group_provider

import "github.com/Carmen-Shannon/oxy-glb/engine/gpu"

// BindGroupProviderOption configures a provider before Init.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLayout sets the layout the group is created against. The provider borrows it.
func WithLayout(layout gpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = layout
	}
}

// WithUniform binds buf at binding. The provider takes ownership and releases it.
//
// Parameters:
//   - binding: binding index in the layout
//   - buf: the uniform buffer
//
// Returns:
//   - BindGroupProviderOption: option to apply
func WithUniform(binding int, buf gpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithTexturePair binds view at binding and its sampler at binding+1, the order every texture
// group layout declares them in. Both stay owned by their texture set.
//
// Parameters:
//   - binding: binding index of the texture view
//   - view: the texture view
//   - sampler: the sampler
//
// Returns:
//   - BindGroupProviderOption: option to apply
func WithTexturePair(binding int, view gpu.TextureView, sampler gpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = view
		p.samplers[binding+1] = sampler
	}
}
