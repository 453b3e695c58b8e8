package bind_group_provider

import (
	"errors"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is the debug label of the created bind group.
	label string

	// bindGroup is the GPU bind group created by Init, or nil before Init.
	bindGroup gpu.BindGroup
	// bindGroupLayout is the layout the bind group is created against. It is borrowed.
	bindGroupLayout gpu.BindGroupLayout
	// buffers holds the uniform buffers bound by this provider, keyed by binding index. They are owned.
	buffers map[int]gpu.Buffer
	// textureViews holds the texture views bound by this provider, keyed by binding index. They are borrowed.
	textureViews map[int]gpu.TextureView
	// samplers holds the samplers bound by this provider, keyed by binding index. They are borrowed.
	samplers map[int]gpu.Sampler
}

// BindGroupProvider collects the resources of one resource group and creates the GPU bind group
// binding them to a layout. Uniform buffers handed to the provider are owned by it; texture views
// and samplers belong to the texture set they came from.
//
// Usage pattern:
//  1. Create a provider with the group layout and its resources
//  2. Call Init to create the bind group
//  3. Write uniform data with WriteBuffers
//  4. Bind BindGroup() at its group index during the render pass
type BindGroupProvider interface {
	// Release releases the bind group and the owned uniform buffers.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if Init has not been called.
	//
	// Returns:
	//   - gpu.BindGroup: the bind group or nil
	BindGroup() gpu.BindGroup

	// BindGroupLayout returns the layout this provider binds against.
	//
	// Returns:
	//   - gpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() gpu.BindGroupLayout

	// Buffer returns the uniform buffer at the given binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Buffer: the buffer or nil
	Buffer(binding int) gpu.Buffer

	// TextureView returns the texture view at the given binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.TextureView: the texture view or nil
	TextureView(binding int) gpu.TextureView

	// Sampler returns the sampler at the given binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Sampler: the sampler or nil
	Sampler(binding int) gpu.Sampler

	// SetBuffer stores an owned uniform buffer for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to store
	SetBuffer(binding int, buf gpu.Buffer)

	// SetTextureView stores a borrowed texture view for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to store
	SetTextureView(binding int, tv gpu.TextureView)

	// SetSampler stores a borrowed sampler for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s gpu.Sampler)

	// Entries returns one bind group entry per stored resource, ordered by binding index.
	// Buffers are bound whole.
	//
	// Returns:
	//   - []gpu.BindGroupEntry: the ordered entries
	Entries() []gpu.BindGroupEntry

	// Init creates the bind group from the layout and the stored resources, replacing any
	// previously created bind group.
	//
	// Parameters:
	//   - device: the shared graphics device
	//
	// Returns:
	//   - error: a fatal resource error if the layout is missing or the device rejects the group
	Init(device gpu.GraphicsDevice) error
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label of the bind group
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]gpu.Buffer),
		textureViews: make(map[int]gpu.TextureView),
		samplers:     make(map[int]gpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() gpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() gpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) gpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) gpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) gpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf gpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv gpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s gpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) Entries() []gpu.BindGroupEntry {
	bindings := slices.Concat(
		slices.Collect(maps.Keys(p.buffers)),
		slices.Collect(maps.Keys(p.textureViews)),
		slices.Collect(maps.Keys(p.samplers)),
	)
	slices.Sort(bindings)

	entries := make([]gpu.BindGroupEntry, 0, len(bindings))
	for _, b := range bindings {
		entry := gpu.BindGroupEntry{Binding: uint32(b)}
		if buf, ok := p.buffers[b]; ok {
			entry.Buffer = buf
			entry.Size = buf.Size()
		} else if tv, ok := p.textureViews[b]; ok {
			entry.TextureView = tv
		} else {
			entry.Sampler = p.samplers[b]
		}
		entries = append(entries, entry)
	}
	return entries
}

func (p *bindGroupProvider) Init(device gpu.GraphicsDevice) error {
	if p.bindGroupLayout == nil {
		return common.NewResourceError(p.label, errors.New("bind group layout not set"))
	}
	bg, err := device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:   p.label,
		Layout:  p.bindGroupLayout,
		Entries: p.Entries(),
	})
	if err != nil {
		return common.NewResourceError(p.label, err)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
	return nil
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}
