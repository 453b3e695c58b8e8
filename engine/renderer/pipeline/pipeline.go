// Package pipeline turns a shader pair and a RenderState into a GPU render pipeline over the
// shared glb vertex layout.
package pipeline

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"

	// DepthFormat is the format of the depth attachment a depth-tested pipeline declares.
	DepthFormat = wgpu.TextureFormatDepth24Plus
)

// AlphaBlend is straight alpha over the destination, with alpha accumulated additively.
var AlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// RenderState is the fixed-function part of a pipeline. A nil Blend writes colors opaque.
type RenderState struct {
	ColorFormat  wgpu.TextureFormat
	Topology     wgpu.PrimitiveTopology
	FrontFace    wgpu.FrontFace
	Cull         wgpu.CullMode
	Blend        *wgpu.BlendState
	DepthTest    bool
	DepthWrite   bool
	DepthCompare wgpu.CompareFunction
	SampleCount  uint32
}

// DefaultState is the glb render state: counter-clockwise triangle lists, back faces culled,
// alpha blended into a BGRA sRGB target and no depth attachment.
func DefaultState() RenderState {
	blend := AlphaBlend
	return RenderState{
		ColorFormat:  wgpu.TextureFormatBGRA8UnormSrgb,
		Topology:     wgpu.PrimitiveTopologyTriangleList,
		FrontFace:    wgpu.FrontFaceCCW,
		Cull:         wgpu.CullModeBack,
		Blend:        &blend,
		DepthWrite:   true,
		DepthCompare: wgpu.CompareFunctionLess,
		SampleCount:  1,
	}
}

// Pipeline owns one render pipeline. The shader modules it is built from are borrowed.
type Pipeline interface {
	// Label returns the debug label, also used in errors.
	Label() string

	// State returns the render state the pipeline was configured with.
	State() RenderState

	// Descriptor builds the creation descriptor without touching the device.
	//
	// Parameters:
	//   - layout: the pipeline layout holding the group layouts
	//
	// Returns:
	//   - *gpu.RenderPipelineDescriptor: the descriptor, always using model.VertexBufferLayout
	Descriptor(layout gpu.PipelineLayout) *gpu.RenderPipelineDescriptor

	// Create builds the GPU pipeline, replacing any earlier one.
	//
	// Parameters:
	//   - device: the graphics device
	//   - layout: the pipeline layout holding the group layouts
	//
	// Returns:
	//   - error: a fatal resource error when a shader module is missing or the device refuses
	Create(device gpu.GraphicsDevice, layout gpu.PipelineLayout) error

	// RenderPipeline returns the created pipeline, or nil before Create.
	RenderPipeline() gpu.RenderPipeline

	// Release frees the created pipeline.
	Release()
}

type pipeline struct {
	label            string
	vertex, fragment gpu.ShaderModule
	state            RenderState
	created          gpu.RenderPipeline
}

var _ Pipeline = &pipeline{}

// NewPipeline starts from DefaultState and applies opts.
//
// Parameters:
//   - label: debug label
//   - opts: options adjusting shaders and state
//
// Returns:
//   - Pipeline: the unbuilt pipeline
func NewPipeline(label string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{label: label, state: DefaultState()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Label() string {
	return p.label
}

func (p *pipeline) State() RenderState {
	return p.state
}

func (p *pipeline) RenderPipeline() gpu.RenderPipeline {
	return p.created
}

func (p *pipeline) Descriptor(layout gpu.PipelineLayout) *gpu.RenderPipelineDescriptor {
	s := p.state
	desc := &gpu.RenderPipelineDescriptor{
		Label:              p.label,
		Layout:             layout,
		VertexModule:       p.vertex,
		VertexEntryPoint:   VertexEntryPoint,
		VertexBuffers:      []wgpu.VertexBufferLayout{model.VertexBufferLayout()},
		FragmentModule:     p.fragment,
		FragmentEntryPoint: FragmentEntryPoint,
		Targets: []wgpu.ColorTargetState{{
			Format:    s.ColorFormat,
			Blend:     s.Blend,
			WriteMask: wgpu.ColorWriteMaskAll,
		}},
		Primitive: wgpu.PrimitiveState{
			Topology:  s.Topology,
			FrontFace: s.FrontFace,
			CullMode:  s.Cull,
		},
		Multisample: wgpu.MultisampleState{Count: s.SampleCount, Mask: ^uint32(0)},
	}
	if s.DepthTest {
		always := wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways}
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: s.DepthWrite,
			DepthCompare:      s.DepthCompare,
			StencilFront:      always,
			StencilBack:       always,
		}
	}
	return desc
}

func (p *pipeline) Create(device gpu.GraphicsDevice, layout gpu.PipelineLayout) error {
	if p.vertex == nil || p.fragment == nil {
		return common.NewResourceError(p.label, errors.New("missing shader module"))
	}
	rp, err := device.CreateRenderPipeline(p.Descriptor(layout))
	if err != nil {
		return common.NewResourceError(p.label, err)
	}
	p.Release()
	p.created = rp
	return nil
}

func (p *pipeline) Release() {
	if p.created == nil {
		return
	}
	p.created.Release()
	p.created = nil
}
