package binder

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	dev      *gputest.Device
	queue    *gputest.Queue
	program  *shader.Program
	textures *texture.TextureSet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := gputest.NewDevice()
	queue := gputest.NewQueue()
	program, err := shader.NewDefaultProgram(dev)
	require.NoError(t, err)
	textures, err := texture.Pack(dev, queue, nil)
	require.NoError(t, err)
	return &fixture{dev: dev, queue: queue, program: program, textures: textures}
}

func pbrSet(n int) material.Set {
	s := material.Set{IsPBR: true}
	for range n {
		s.PBR = append(s.PBR, material.GPUMaterialPBR{BaseColor: [4]float32{1, 1, 1, 1}, Metallic: 1, Roughness: 1})
	}
	return s
}

func TestLayoutsMatchShaderDeclarations(t *testing.T) {
	vertex, unlit, pbr, err := shader.DefaultShaders()
	require.NoError(t, err)

	for _, tc := range []struct {
		variant  Variant
		fragment shader.Shader
	}{
		{VariantUnlit, unlit},
		{VariantPBR, pbr},
	} {
		layouts := Layouts(tc.variant)
		declared := map[[2]int]bool{}
		for _, s := range []shader.Shader{vertex, tc.fragment} {
			for _, d := range s.Declarations() {
				declared[[2]int{d.Group, d.Binding}] = true
				require.Less(t, d.Group, len(layouts), "%s declares group %d", s.Key(), d.Group)
				entry, ok := findEntry(layouts[d.Group], d.Binding)
				require.True(t, ok, "%s %s: group %d binding %d has no layout entry", tc.variant, s.Key(), d.Group, d.Binding)
				assert.NotZero(t, entry.Visibility&s.Visibility(), "%s: %s not visible to %s", tc.variant, d.VarName(), s.Key())
				switch d.Type {
				case shader.AnnotationTypeBindingGroup:
					assert.Equal(t, wgpu.BufferBindingTypeUniform, entry.Buffer.Type, d.VarName())
				case shader.AnnotationTypeTexture:
					assert.Equal(t, wgpu.TextureSampleTypeFloat, entry.Texture.SampleType, d.VarName())
				case shader.AnnotationTypeSampler:
					assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entry.Sampler.Type, d.VarName())
				}
			}
		}
		for g, layout := range layouts {
			for _, e := range layout.Entries {
				assert.True(t, declared[[2]int{g, int(e.Binding)}], "%s: group %d binding %d unused by shaders", tc.variant, g, e.Binding)
			}
		}
	}
}

func findEntry(desc wgpu.BindGroupLayoutDescriptor, binding int) (wgpu.BindGroupLayoutEntry, bool) {
	for _, e := range desc.Entries {
		if int(e.Binding) == binding {
			return e, true
		}
	}
	return wgpu.BindGroupLayoutEntry{}, false
}

func TestPBRLayoutShape(t *testing.T) {
	layouts := Layouts(VariantPBR)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, layouts[GroupCamera].Entries[0].Visibility)
	require.Len(t, layouts[GroupMaterial].Entries, 11)
	for i := range PBRTextureRoles {
		assert.Equal(t, uint32(2*i+1), layouts[GroupMaterial].Entries[2*i+1].Binding)
		assert.Equal(t, wgpu.TextureViewDimension2D, layouts[GroupMaterial].Entries[2*i+1].Texture.ViewDimension)
		assert.Equal(t, uint32(2*i+2), layouts[GroupMaterial].Entries[2*i+2].Binding)
	}
	assert.Equal(t, wgpu.ShaderStageFragment, layouts[GroupAuxiliary].Entries[0].Visibility)

	unlit := Layouts(VariantUnlit)
	assert.Equal(t, wgpu.ShaderStageVertex, unlit[GroupCamera].Entries[0].Visibility)
	require.Len(t, unlit[GroupAuxiliary].Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, unlit[GroupAuxiliary].Entries[0].Texture.SampleType)
}

func TestBindPBR(t *testing.T) {
	f := newFixture(t)
	set := pbrSet(2)
	set.PBR[0].BaseColorTexture = 2
	set.PBR[0].NormalTexture = 20

	b, err := Bind(f.dev, f.queue, f.program, set, f.textures, WithColorFormat(wgpu.TextureFormatRGBA8UnormSrgb))
	require.NoError(t, err)
	assert.Equal(t, VariantPBR, b.Variant)

	require.Len(t, f.dev.Pipelines, 1)
	desc := f.dev.Pipelines[0].Desc
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, pipeline.DepthFormat, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, desc.Targets[0].Format)
	assert.NotNil(t, desc.Targets[0].Blend)
	assert.Same(t, f.program.PBR, desc.FragmentModule)
	assert.Same(t, f.program.Vertex, desc.VertexModule)
	assert.Equal(t, b.PipelineLayout, desc.Layout)

	require.Len(t, f.dev.PipelineLayouts, 1)
	assert.Len(t, f.dev.PipelineLayouts[0].Desc.BindGroupLayouts, 3)

	assert.Equal(t, uint64(144), f.dev.BufferByLabel("PBR Camera Uniform").Size())
	assert.Equal(t, uint64(160), f.dev.BufferByLabel("PBR Material Uniform").Size())
	lightBuf := f.dev.BufferByLabel("PBR Light Uniform")
	assert.Equal(t, uint64(32), lightBuf.Size())

	materialWrites := f.queue.WritesTo(f.dev.BufferByLabel("PBR Material Uniform"))
	require.Len(t, materialWrites, 1)
	assert.Equal(t, set.Bytes(), materialWrites[0].Data)

	defaultLight := light.NewLight().Uniform()
	lightWrites := f.queue.WritesTo(lightBuf)
	require.Len(t, lightWrites, 1)
	assert.Equal(t, defaultLight.Marshal(), lightWrites[0].Data)

	groups := b.BindGroups()
	for _, g := range groups {
		assert.NotNil(t, g)
	}
	materialGroup := groups[GroupMaterial].(*gputest.BindGroup)
	entries := materialGroup.Desc.Entries
	require.Len(t, entries, 11)
	assert.Equal(t, gpu.TextureView(f.textures.Views[2]), entries[1].TextureView, "base color uses its resolved slot")
	assert.Equal(t, gpu.Sampler(f.textures.Samplers[2]), entries[2].Sampler)
	assert.Equal(t, gpu.TextureView(f.textures.Views[0]), entries[5].TextureView, "out-of-range slot falls back to 0")

	b.Release()
	for _, buf := range f.dev.Buffers {
		if buf.Label != "" && buf.Desc.Usage&wgpu.BufferUsageUniform != 0 {
			assert.True(t, buf.Released, buf.Label)
		}
	}
	for _, bg := range f.dev.BindGroups {
		assert.True(t, bg.Released)
	}
	for _, l := range f.dev.BindGroupLayouts {
		assert.True(t, l.Released)
	}
	assert.True(t, f.dev.Pipelines[0].Released)
	assert.True(t, f.dev.PipelineLayouts[0].Released)
	assert.False(t, f.textures.Views[2].(*gputest.TextureView).Released, "texture set is borrowed")
}

func TestBindUnlit(t *testing.T) {
	f := newFixture(t)
	set := material.Set{Legacy: []material.GPUMaterial{{BaseColor: [4]float32{1, 1, 1, 1}}}}

	b, err := Bind(f.dev, f.queue, f.program, set, f.textures)
	require.NoError(t, err)
	assert.Equal(t, VariantUnlit, b.Variant)

	desc := f.dev.Pipelines[0].Desc
	assert.Nil(t, desc.DepthStencil)
	assert.Same(t, f.program.Unlit, desc.FragmentModule)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, desc.Targets[0].Format)
	assert.Nil(t, f.dev.BufferByLabel("Unlit Light Uniform"))

	texGroup := b.BindGroups()[GroupAuxiliary].(*gputest.BindGroup)
	require.Len(t, texGroup.Desc.Entries, 2)
	assert.Equal(t, gpu.TextureView(f.textures.Views[0]), texGroup.Desc.Entries[0].TextureView)
	assert.Equal(t, gpu.Sampler(f.textures.Samplers[0]), texGroup.Desc.Entries[1].Sampler)

	writes := len(f.queue.BufferWrites)
	assert.NoError(t, b.UpdateLight(f.queue, light.NewLight().Uniform()))
	assert.Len(t, f.queue.BufferWrites, writes, "unlit ignores light updates")
}

func TestBindDepthOverride(t *testing.T) {
	f := newFixture(t)
	set := material.Set{Legacy: []material.GPUMaterial{{BaseColor: [4]float32{1, 1, 1, 1}}}}

	b, err := Bind(f.dev, f.queue, f.program, set, f.textures, WithDepthTest(true))
	require.NoError(t, err)
	assert.Equal(t, VariantUnlit, b.Variant)
	assert.True(t, b.DepthTest)
	require.NotNil(t, f.dev.Pipelines[0].Desc.DepthStencil)
}

func TestUpdateCamera(t *testing.T) {
	f := newFixture(t)
	b, err := Bind(f.dev, f.queue, f.program, pbrSet(1), f.textures)
	require.NoError(t, err)

	u := camera.NewCamera().Uniform(mgl32.Ident4())
	require.NoError(t, b.UpdateCamera(f.queue, u))

	writes := f.queue.WritesTo(b.Groups[GroupCamera].Buffer(0))
	require.Len(t, writes, 1)
	assert.Len(t, writes[0].Data, 144)

	f.queue.WriteErr = errors.New("queue lost")
	assert.ErrorIs(t, b.UpdateLight(f.queue, light.NewLight().Uniform()), common.ErrFatalResource)
}

func TestBindTruncatesMaterials(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zap.WarnLevel)

	_, err := Bind(f.dev, f.queue, f.program, pbrSet(1000), f.textures, WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, uint64(819*80), f.dev.BufferByLabel("PBR Material Uniform").Size())
	assert.Equal(t, 1, logs.Len())
}

func TestBindFailures(t *testing.T) {
	for _, method := range []string{"CreateBindGroupLayout", "CreateBuffer", "CreateBindGroup", "CreatePipelineLayout", "CreateRenderPipeline"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t)
			cause := errors.New("device lost")
			f.dev.FailOn(method, cause)

			b, err := Bind(f.dev, f.queue, f.program, pbrSet(1), f.textures)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, common.ErrFatalResource)
			assert.ErrorIs(t, err, cause)

			for _, buf := range f.dev.Buffers {
				assert.True(t, buf.Released, buf.Label)
			}
			for _, bg := range f.dev.BindGroups {
				assert.True(t, bg.Released)
			}
			for _, l := range f.dev.BindGroupLayouts {
				assert.True(t, l.Released)
			}
		})
	}

	f := newFixture(t)
	_, err := Bind(f.dev, f.queue, nil, pbrSet(1), f.textures)
	assert.ErrorIs(t, err, common.ErrFatalResource)
}
