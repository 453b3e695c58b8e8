package binder

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// MaxUniformBindingSize is the largest uniform binding guaranteed by the default device limits.
const MaxUniformBindingSize = 64 << 10

// Bindings holds every GPU object the binder creates for one asset. The texture set and the
// shader program are borrowed and are not released with the bindings.
type Bindings struct {
	Variant        Variant
	Layouts        [3]gpu.BindGroupLayout
	PipelineLayout gpu.PipelineLayout
	Pipeline       pipeline.Pipeline
	Groups         [3]bind_group_provider.BindGroupProvider

	// DepthTest reports whether the pipeline expects a depth attachment.
	DepthTest bool
}

// binder carries the Bind configuration.
type binder struct {
	device      gpu.GraphicsDevice
	queue       gpu.CommandQueue
	colorFormat wgpu.TextureFormat
	depthTest   *bool
	log         *zap.Logger
}

// Bind declares the layouts of the variant, creates and fills the camera, material and light
// uniform buffers, builds the three resource groups and creates the render pipeline. On failure
// every object created so far is released.
//
// Parameters:
//   - device: the shared graphics device
//   - queue: the shared command queue
//   - program: the compiled shader program
//   - materials: the material records of the asset; IsPBR selects the variant
//   - textures: the packed texture set
//   - opts: functional options
//
// Returns:
//   - *Bindings: the created objects
//   - error: an error matching common.ErrFatalResource if any object could not be created
func Bind(device gpu.GraphicsDevice, queue gpu.CommandQueue, program *shader.Program, materials material.Set, textures *texture.TextureSet, opts ...BinderBuilderOption) (*Bindings, error) {
	if program == nil || textures == nil {
		return nil, common.NewResourceError("Bindings", errors.New("missing shader program or texture set"))
	}
	b := &binder{
		device:      device,
		queue:       queue,
		colorFormat: wgpu.TextureFormatBGRA8UnormSrgb,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	out := &Bindings{Variant: VariantFor(materials.IsPBR)}
	out.DepthTest = out.Variant == VariantPBR
	if b.depthTest != nil {
		out.DepthTest = *b.depthTest
	}
	if err := b.bind(out, program, materials, textures); err != nil {
		out.Release()
		return nil, err
	}
	b.log.Debug("resources bound",
		zap.Stringer("variant", out.Variant),
		zap.Int("materials", materials.Len()),
		zap.Int("textures", textures.Loaded),
	)
	return out, nil
}

func (b *binder) bind(out *Bindings, program *shader.Program, materials material.Set, textures *texture.TextureSet) error {
	v := out.Variant
	for i, desc := range Layouts(v) {
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return common.NewResourceError(desc.Label, err)
		}
		out.Layouts[i] = layout
	}

	var cameraUniform camera.GPUCameraUniform
	cameraBuf, err := b.uniform(groupLabel(v, GroupCamera), uint64(cameraUniform.Size()), nil)
	if err != nil {
		return err
	}
	out.Groups[GroupCamera] = bind_group_provider.NewBindGroupProvider(groupLabel(v, GroupCamera),
		bind_group_provider.WithLayout(out.Layouts[GroupCamera]),
		bind_group_provider.WithUniform(0, cameraBuf),
	)

	materialBuf, err := b.uniform(groupLabel(v, GroupMaterial), 0, b.materialBytes(materials))
	if err != nil {
		return err
	}
	materialOpts := []bind_group_provider.BindGroupProviderOption{
		bind_group_provider.WithLayout(out.Layouts[GroupMaterial]),
		bind_group_provider.WithUniform(0, materialBuf),
	}
	if v == VariantPBR {
		for i, slot := range pbrSlots(materials) {
			materialOpts = append(materialOpts, bind_group_provider.WithTexturePair(2*i+1, textures.Views[slot], textures.Samplers[slot]))
		}
	}
	out.Groups[GroupMaterial] = bind_group_provider.NewBindGroupProvider(groupLabel(v, GroupMaterial), materialOpts...)

	if v == VariantPBR {
		lightUniform := light.NewLight().Uniform()
		lightBuf, err := b.uniform(groupLabel(v, GroupAuxiliary), uint64(lightUniform.Size()), lightUniform.Marshal())
		if err != nil {
			return err
		}
		out.Groups[GroupAuxiliary] = bind_group_provider.NewBindGroupProvider(groupLabel(v, GroupAuxiliary),
			bind_group_provider.WithLayout(out.Layouts[GroupAuxiliary]),
			bind_group_provider.WithUniform(0, lightBuf),
		)
	} else {
		out.Groups[GroupAuxiliary] = bind_group_provider.NewBindGroupProvider(groupLabel(v, GroupAuxiliary),
			bind_group_provider.WithLayout(out.Layouts[GroupAuxiliary]),
			bind_group_provider.WithTexturePair(0, textures.Views[0], textures.Samplers[0]),
		)
	}

	for _, g := range out.Groups {
		if err := g.Init(b.device); err != nil {
			return err
		}
	}

	pl, err := b.device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("%s Pipeline Layout", v),
		BindGroupLayouts: out.Layouts[:],
	})
	if err != nil {
		return common.NewResourceError(fmt.Sprintf("%s Pipeline Layout", v), err)
	}
	out.PipelineLayout = pl

	out.Pipeline = pipeline.NewPipeline(fmt.Sprintf("%s Pipeline", v),
		pipeline.WithShaders(program.Vertex, program.Fragment(v == VariantPBR)),
		pipeline.WithColorFormat(b.colorFormat),
		pipeline.WithDepth(out.DepthTest),
	)
	return out.Pipeline.Create(b.device, out.PipelineLayout)
}

// uniform creates a uniform buffer of at least size bytes and writes data into it when non-empty.
func (b *binder) uniform(label string, size uint64, data []byte) (gpu.Buffer, error) {
	size = max(size, uint64(len(data)))
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Uniform",
		Size:  uint64(common.AlignUp(uint32(size), 16)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, common.NewResourceError(label+" Uniform", err)
	}
	if len(data) > 0 {
		if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
			buf.Release()
			return nil, common.NewResourceError(label+" Uniform", err)
		}
	}
	return buf, nil
}

// materialBytes returns the material array, truncated to whole records that fit one uniform binding.
func (b *binder) materialBytes(materials material.Set) []byte {
	data := materials.Bytes()
	if len(data) <= MaxUniformBindingSize {
		return data
	}
	keep := MaxUniformBindingSize / materials.Stride()
	b.log.Warn("material array exceeds uniform binding limit, truncating",
		zap.Int("materials", materials.Len()),
		zap.Int("kept", keep),
	)
	return data[:keep*materials.Stride()]
}

// pbrSlots returns the texture-set slots of the five PBR roles of the bound material.
func pbrSlots(materials material.Set) [5]uint32 {
	if len(materials.PBR) == 0 {
		return [5]uint32{}
	}
	m := materials.PBR[0]
	slots := [5]uint32{m.BaseColorTexture, m.MetallicRoughnessTexture, m.NormalTexture, m.OcclusionTexture, m.EmissiveTexture}
	for i, s := range slots {
		if s >= texture.MaxTextures {
			slots[i] = 0
		}
	}
	return slots
}

// BindGroups returns the created resource groups in group-index order.
func (b *Bindings) BindGroups() [3]gpu.BindGroup {
	var out [3]gpu.BindGroup
	for i, g := range b.Groups {
		if g != nil {
			out[i] = g.BindGroup()
		}
	}
	return out
}

// UpdateCamera uploads the camera uniform.
func (b *Bindings) UpdateCamera(queue gpu.CommandQueue, u camera.GPUCameraUniform) error {
	return bind_group_provider.WriteBuffers(queue, bind_group_provider.BufferWrite{
		Provider: b.Groups[GroupCamera],
		Binding:  0,
		Data:     u.Marshal(),
	})
}

// UpdateLight uploads the light uniform. The unlit variant has no light and ignores the call.
func (b *Bindings) UpdateLight(queue gpu.CommandQueue, u light.GPULightUniform) error {
	if b.Variant != VariantPBR {
		return nil
	}
	return bind_group_provider.WriteBuffers(queue, bind_group_provider.BufferWrite{
		Provider: b.Groups[GroupAuxiliary],
		Binding:  0,
		Data:     u.Marshal(),
	})
}

// Release frees the pipeline, pipeline layout, resource groups, uniform buffers and layouts.
func (b *Bindings) Release() {
	if b.Pipeline != nil {
		b.Pipeline.Release()
		b.Pipeline = nil
	}
	gpu.ReleaseAll(b.PipelineLayout)
	b.PipelineLayout = nil
	for i, g := range b.Groups {
		if g != nil {
			g.Release()
			b.Groups[i] = nil
		}
	}
	for i, l := range b.Layouts {
		gpu.ReleaseAll(l)
		b.Layouts[i] = nil
	}
}
