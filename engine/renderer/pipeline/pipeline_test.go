package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modules(t *testing.T, dev *gputest.Device) (gpu.ShaderModule, gpu.ShaderModule) {
	t.Helper()
	vs, err := dev.CreateShaderModule("vs", "")
	require.NoError(t, err)
	fs, err := dev.CreateShaderModule("fs", "")
	require.NoError(t, err)
	return vs, fs
}

func TestDefaults(t *testing.T) {
	p := NewPipeline("Unlit Pipeline")
	assert.Equal(t, "Unlit Pipeline", p.Label())
	state := p.State()
	assert.False(t, state.DepthTest)
	assert.NotNil(t, state.Blend)
	assert.Equal(t, wgpu.CullModeBack, state.Cull)
	assert.Equal(t, wgpu.FrontFaceCCW, state.FrontFace)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, state.Topology)

	desc := p.Descriptor(nil)
	assert.Nil(t, desc.DepthStencil)
	assert.Equal(t, VertexEntryPoint, desc.VertexEntryPoint)
	assert.Equal(t, FragmentEntryPoint, desc.FragmentEntryPoint)
	require.Len(t, desc.Targets, 1)
	require.NotNil(t, desc.Targets[0].Blend)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, desc.Targets[0].Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, desc.Targets[0].Blend.Color.DstFactor)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Equal(t, uint32(0xFFFFFFFF), desc.Multisample.Mask)
}

func TestDescriptorUsesSharedVertexLayout(t *testing.T) {
	desc := NewPipeline("PBR Pipeline").Descriptor(nil)
	require.Len(t, desc.VertexBuffers, 1)
	layout := desc.VertexBuffers[0]
	assert.Equal(t, uint64(model.VertexStride), layout.ArrayStride)

	offsets := make([]uint64, len(layout.Attributes))
	for i, a := range layout.Attributes {
		offsets[i] = a.Offset
		assert.Equal(t, uint32(i), a.ShaderLocation)
	}
	assert.Equal(t, []uint64{0, 12, 24, 40, 48, 64, 80}, offsets)
	assert.Equal(t, wgpu.VertexFormatUint32x4, layout.Attributes[model.AttrJoints].Format)
}

func TestDepthVariant(t *testing.T) {
	p := NewPipeline("PBR Pipeline",
		WithDepth(true),
		WithColorFormat(wgpu.TextureFormatRGBA8UnormSrgb),
	)
	desc := p.Descriptor(nil)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, DepthFormat, desc.DepthStencil.Format)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, desc.Targets[0].Format)
}

func TestOpaqueAndCulling(t *testing.T) {
	desc := NewPipeline("p", WithBlend(nil), WithCulling(wgpu.CullModeNone)).Descriptor(nil)
	assert.Nil(t, desc.Targets[0].Blend)
	assert.Equal(t, wgpu.CullModeNone, desc.Primitive.CullMode)
}

func TestWithStateDefaultsSampleCount(t *testing.T) {
	state := DefaultState()
	state.SampleCount = 0
	state.DepthTest = true
	p := NewPipeline("p", WithState(state))
	assert.Equal(t, uint32(1), p.State().SampleCount)
	assert.NotNil(t, p.Descriptor(nil).DepthStencil)
}

func TestDefaultStateBlendIsACopy(t *testing.T) {
	a := DefaultState()
	a.Blend.Color.SrcFactor = wgpu.BlendFactorOne
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, DefaultState().Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, AlphaBlend.Color.SrcFactor)
}

func TestCreate(t *testing.T) {
	dev := gputest.NewDevice()
	vs, fs := modules(t, dev)
	layout, err := dev.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{Label: "layout"})
	require.NoError(t, err)

	p := NewPipeline("PBR Pipeline", WithShaders(vs, fs), WithDepth(true))
	require.NoError(t, p.Create(dev, layout))
	require.Len(t, dev.Pipelines, 1)
	assert.Same(t, dev.Pipelines[0], p.RenderPipeline())
	assert.Equal(t, "PBR Pipeline", dev.Pipelines[0].Label)
	assert.Equal(t, layout, dev.Pipelines[0].Desc.Layout)
	assert.Equal(t, vs, dev.Pipelines[0].Desc.VertexModule)

	p.Release()
	assert.True(t, dev.Pipelines[0].Released)
	assert.Nil(t, p.RenderPipeline())
}

func TestCreateFailures(t *testing.T) {
	dev := gputest.NewDevice()
	err := NewPipeline("no shaders").Create(dev, nil)
	assert.ErrorIs(t, err, common.ErrFatalResource)

	vs, fs := modules(t, dev)
	dev.FailOn("CreateRenderPipeline", errors.New("incompatible layout"))
	err = NewPipeline("bad", WithShaders(vs, fs)).Create(dev, nil)
	assert.ErrorIs(t, err, common.ErrFatalResource)
	assert.Contains(t, err.Error(), "incompatible layout")
}
