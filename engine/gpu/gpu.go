// Package gpu declares the graphics collaborators the renderer core depends on.
//
// The renderer never talks to a concrete graphics API directly. It receives a GraphicsDevice,
// a CommandQueue and a PresentationSurface, all of which are shared capabilities: several
// components hold the same device at once and none of them owns it. Handles returned by the
// device are opaque; the only thing callers do with them is pass them back into descriptors
// and release them.
//
// Plain-data descriptors (buffer, texture, sampler and layout descriptors, vertex layouts and
// all enums) reuse the cogentcore/webgpu types directly. Descriptors that embed handles are
// declared here so they can carry the opaque handle interfaces instead of *wgpu pointers.
package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Releasable is implemented by every GPU handle.
type Releasable interface {
	// Release frees the underlying GPU object. Releasing twice is a no-op.
	Release()
}

// Buffer is an opaque GPU buffer handle.
type Buffer interface {
	Releasable

	// Size returns the buffer size in bytes as requested at creation.
	//
	// Returns:
	//   - uint64: the size in bytes
	Size() uint64
}

// Texture is an opaque GPU texture handle.
type Texture interface {
	Releasable

	// CreateView creates a default full-resource view of the texture.
	//
	// Returns:
	//   - TextureView: the created view
	//   - error: error if the view could not be created
	CreateView() (TextureView, error)

	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32
}

// TextureView is an opaque GPU texture view handle.
type TextureView interface{ Releasable }

// Sampler is an opaque GPU sampler handle.
type Sampler interface{ Releasable }

// BindGroupLayout is an opaque resource group layout handle.
type BindGroupLayout interface{ Releasable }

// BindGroup is an opaque resource group handle.
type BindGroup interface{ Releasable }

// PipelineLayout is an opaque pipeline layout handle.
type PipelineLayout interface{ Releasable }

// RenderPipeline is an opaque render pipeline state object handle.
type RenderPipeline interface{ Releasable }

// ShaderModule is an opaque compiled shader module handle.
type ShaderModule interface{ Releasable }

// CommandBuffer is an opaque recorded command buffer handle.
type CommandBuffer interface{ Releasable }

// CommandEncoder records GPU commands for a single submission.
type CommandEncoder interface {
	Releasable

	// BeginRenderPass opens a render pass with the given attachments.
	//
	// Parameters:
	//   - desc: the render pass attachments and clear values
	//
	// Returns:
	//   - RenderPassEncoder: the pass encoder; End must be called before Finish
	BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder

	// Finish closes the encoder and returns the recorded command buffer.
	//
	// Returns:
	//   - CommandBuffer: the recorded commands
	//   - error: error if encoding failed
	Finish() (CommandBuffer, error)
}

// RenderPassEncoder records draw commands inside a render pass.
type RenderPassEncoder interface {
	Releasable

	// SetPipeline binds the render pipeline for subsequent draws.
	SetPipeline(p RenderPipeline)

	// SetBindGroup binds a resource group at the given group index.
	SetBindGroup(index uint32, group BindGroup)

	// SetVertexBuffer binds the whole buffer as the vertex source for the given slot.
	SetVertexBuffer(slot uint32, buf Buffer)

	// SetIndexBuffer binds the whole buffer as the index source with the given index format.
	SetIndexBuffer(buf Buffer, format wgpu.IndexFormat)

	// DrawIndexed issues an indexed draw starting at index 0 with base vertex 0.
	//
	// Parameters:
	//   - indexCount: number of indices to draw
	//   - instanceCount: number of instances to draw
	DrawIndexed(indexCount, instanceCount uint32)

	// End closes the render pass.
	//
	// Returns:
	//   - error: error if the pass could not be closed
	End() error
}

// GraphicsDevice creates GPU objects. Implementations must be safe to share between components.
type GraphicsDevice interface {
	// CreateBuffer allocates a GPU buffer.
	//
	// Parameters:
	//   - desc: the buffer label, size and usage
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: error if the device rejects the descriptor
	CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error)

	// CreateTexture allocates a GPU texture.
	//
	// Parameters:
	//   - desc: the texture label, size, format and usage
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: error if the device rejects the descriptor
	CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error)

	// CreateSampler creates a texture sampler.
	//
	// Parameters:
	//   - desc: the sampler addressing and filtering configuration
	//
	// Returns:
	//   - Sampler: the created sampler
	//   - error: error if the device rejects the descriptor
	CreateSampler(desc *wgpu.SamplerDescriptor) (Sampler, error)

	// CreateBindGroupLayout declares a resource group layout.
	//
	// Parameters:
	//   - desc: the ordered binding entries of the layout
	//
	// Returns:
	//   - BindGroupLayout: the created layout
	//   - error: error if the device rejects the descriptor
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error)

	// CreateBindGroup binds concrete resources to a layout.
	//
	// Parameters:
	//   - desc: the layout and the resources for each binding
	//
	// Returns:
	//   - BindGroup: the created resource group
	//   - error: error if the resources do not match the layout
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)

	// CreatePipelineLayout combines resource group layouts into a pipeline layout.
	//
	// Parameters:
	//   - desc: the ordered group layouts
	//
	// Returns:
	//   - PipelineLayout: the created pipeline layout
	//   - error: error if the device rejects the descriptor
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error)

	// CreateRenderPipeline builds a render pipeline state object.
	//
	// Parameters:
	//   - desc: shaders, vertex layout, fixed-function state and targets
	//
	// Returns:
	//   - RenderPipeline: the created pipeline
	//   - error: error if the shaders and layouts are incompatible
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)

	// CreateShaderModule hands WGSL source to the driver for compilation.
	//
	// Parameters:
	//   - label: debug label of the module
	//   - wgsl: the WGSL source text
	//
	// Returns:
	//   - ShaderModule: the compiled module
	//   - error: error if compilation fails
	CreateShaderModule(label, wgsl string) (ShaderModule, error)

	// CreateCommandEncoder starts recording a command buffer.
	//
	// Parameters:
	//   - label: debug label of the encoder
	//
	// Returns:
	//   - CommandEncoder: the encoder
	//   - error: error if the encoder could not be created
	CreateCommandEncoder(label string) (CommandEncoder, error)
}

// CommandQueue uploads data and submits recorded command buffers.
type CommandQueue interface {
	// WriteBuffer copies data into buf at the given byte offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: byte offset into buf
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: error if the write was rejected
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// WriteTexture copies pixel rows into a texture using an explicit row pitch.
	//
	// Parameters:
	//   - dst: the destination texture and mip level
	//   - data: the (possibly padded) pixel rows
	//   - layout: bytes per row and rows per image of data
	//   - size: the copy extent in texels
	//
	// Returns:
	//   - error: error if the write was rejected
	WriteTexture(dst *ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error

	// Submit hands recorded command buffers to the GPU.
	Submit(cmds ...CommandBuffer)
}

// PresentationSurface hands out presentable images. It is configured externally.
type PresentationSurface interface {
	// AcquireTexture returns the next presentable image. Failure is expected during resizes
	// and must be treated as a skipped frame by callers.
	//
	// Returns:
	//   - Texture: the acquired surface texture
	//   - error: error if no image is available
	AcquireTexture() (Texture, error)

	// Present shows the most recently acquired image.
	Present()

	// Format returns the color format the surface was configured with.
	//
	// Returns:
	//   - wgpu.TextureFormat: the configured surface format
	Format() wgpu.TextureFormat
}

// BindGroupEntry binds one resource to one binding slot. Exactly one of Buffer, TextureView
// or Sampler is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	Offset      uint64
	Size        uint64
	TextureView TextureView
	Sampler     Sampler
}

// BindGroupDescriptor describes a resource group to create.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// PipelineLayoutDescriptor lists resource group layouts by group index.
type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout
}

// RenderPipelineDescriptor describes a render pipeline state object.
// A nil DepthStencil means the pipeline has no depth attachment.
type RenderPipelineDescriptor struct {
	Label  string
	Layout PipelineLayout

	VertexModule     ShaderModule
	VertexEntryPoint string
	VertexBuffers    []wgpu.VertexBufferLayout

	FragmentModule     ShaderModule
	FragmentEntryPoint string
	Targets            []wgpu.ColorTargetState

	Primitive    wgpu.PrimitiveState
	DepthStencil *wgpu.DepthStencilState
	Multisample  wgpu.MultisampleState
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	View       TextureView
	LoadOp     wgpu.LoadOp
	StoreOp    wgpu.StoreOp
	ClearValue wgpu.Color
}

// DepthAttachment is the depth target of a render pass.
type DepthAttachment struct {
	View            TextureView
	DepthLoadOp     wgpu.LoadOp
	DepthStoreOp    wgpu.StoreOp
	DepthClearValue float32
}

// RenderPassDescriptor describes the attachments of a render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []ColorAttachment
	DepthAttachment  *DepthAttachment
}

// ImageCopyTexture names the destination of a texture write.
type ImageCopyTexture struct {
	Texture  Texture
	MipLevel uint32
	Origin   wgpu.Origin3D
	Aspect   wgpu.TextureAspect
}

// ReleaseAll releases every non-nil handle in order.
func ReleaseAll(handles ...Releasable) {
	for _, h := range handles {
		if h != nil {
			h.Release()
		}
	}
}
