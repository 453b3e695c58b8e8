package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var errForeignHandle = errors.New("handle was not created by the wgpu device")

type wgpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

func (b *wgpuBuffer) Size() uint64 { return b.size }

func (b *wgpuBuffer) Release() {
	if b == nil || b.buf == nil {
		return
	}
	b.buf.Release()
	b.buf = nil
}

type wgpuTexture struct {
	tex           *wgpu.Texture
	width, height uint32
}

func (t *wgpuTexture) Width() uint32  { return t.width }
func (t *wgpuTexture) Height() uint32 { return t.height }

func (t *wgpuTexture) CreateView() (TextureView, error) {
	view, err := t.tex.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuTextureView{view: view}, nil
}

func (t *wgpuTexture) Release() {
	if t == nil || t.tex == nil {
		return
	}
	t.tex.Release()
	t.tex = nil
}

type wgpuTextureView struct{ view *wgpu.TextureView }

func (v *wgpuTextureView) Release() {
	if v == nil || v.view == nil {
		return
	}
	v.view.Release()
	v.view = nil
}

type wgpuSampler struct{ sampler *wgpu.Sampler }

func (s *wgpuSampler) Release() {
	if s == nil || s.sampler == nil {
		return
	}
	s.sampler.Release()
	s.sampler = nil
}

type wgpuBindGroupLayout struct{ layout *wgpu.BindGroupLayout }

func (l *wgpuBindGroupLayout) Release() {
	if l == nil || l.layout == nil {
		return
	}
	l.layout.Release()
	l.layout = nil
}

type wgpuBindGroup struct{ group *wgpu.BindGroup }

func (g *wgpuBindGroup) Release() {
	if g == nil || g.group == nil {
		return
	}
	g.group.Release()
	g.group = nil
}

type wgpuPipelineLayout struct{ layout *wgpu.PipelineLayout }

func (l *wgpuPipelineLayout) Release() {
	if l == nil || l.layout == nil {
		return
	}
	l.layout.Release()
	l.layout = nil
}

type wgpuRenderPipeline struct{ pipeline *wgpu.RenderPipeline }

func (p *wgpuRenderPipeline) Release() {
	if p == nil || p.pipeline == nil {
		return
	}
	p.pipeline.Release()
	p.pipeline = nil
}

type wgpuShaderModule struct{ module *wgpu.ShaderModule }

func (m *wgpuShaderModule) Release() {
	if m == nil || m.module == nil {
		return
	}
	m.module.Release()
	m.module = nil
}

type wgpuCommandBuffer struct{ cmd *wgpu.CommandBuffer }

func (c *wgpuCommandBuffer) Release() {
	if c == nil || c.cmd == nil {
		return
	}
	c.cmd.Release()
	c.cmd = nil
}

type wgpuCommandEncoder struct{ encoder *wgpu.CommandEncoder }

func (e *wgpuCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder {
	rp := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: make([]wgpu.RenderPassColorAttachment, 0, len(desc.ColorAttachments)),
	}
	for _, ca := range desc.ColorAttachments {
		attachment := wgpu.RenderPassColorAttachment{
			LoadOp:     ca.LoadOp,
			StoreOp:    ca.StoreOp,
			ClearValue: ca.ClearValue,
		}
		if v, ok := ca.View.(*wgpuTextureView); ok {
			attachment.View = v.view
		}
		rp.ColorAttachments = append(rp.ColorAttachments, attachment)
	}
	if da := desc.DepthAttachment; da != nil {
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			DepthLoadOp:     da.DepthLoadOp,
			DepthStoreOp:    da.DepthStoreOp,
			DepthClearValue: da.DepthClearValue,
		}
		if v, ok := da.View.(*wgpuTextureView); ok {
			attachment.View = v.view
		}
		rp.DepthStencilAttachment = attachment
	}
	return &wgpuRenderPass{pass: e.encoder.BeginRenderPass(rp)}
}

func (e *wgpuCommandEncoder) Finish() (CommandBuffer, error) {
	cmd, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuCommandBuffer{cmd: cmd}, nil
}

func (e *wgpuCommandEncoder) Release() {
	if e == nil || e.encoder == nil {
		return
	}
	e.encoder.Release()
	e.encoder = nil
}

type wgpuRenderPass struct{ pass *wgpu.RenderPassEncoder }

func (p *wgpuRenderPass) SetPipeline(rp RenderPipeline) {
	if h, ok := rp.(*wgpuRenderPipeline); ok {
		p.pass.SetPipeline(h.pipeline)
	}
}

func (p *wgpuRenderPass) SetBindGroup(index uint32, group BindGroup) {
	if h, ok := group.(*wgpuBindGroup); ok {
		p.pass.SetBindGroup(index, h.group, nil)
	}
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buf Buffer) {
	if h, ok := buf.(*wgpuBuffer); ok {
		p.pass.SetVertexBuffer(slot, h.buf, 0, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPass) SetIndexBuffer(buf Buffer, format wgpu.IndexFormat) {
	if h, ok := buf.(*wgpuBuffer); ok {
		p.pass.SetIndexBuffer(h.buf, format, 0, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (p *wgpuRenderPass) End() error {
	return p.pass.End()
}

func (p *wgpuRenderPass) Release() {
	if p == nil || p.pass == nil {
		return
	}
	p.pass.Release()
	p.pass = nil
}

// wgpuDevice implements GraphicsDevice over a *wgpu.Device.
type wgpuDevice struct {
	device *wgpu.Device
}

var _ GraphicsDevice = &wgpuDevice{}

// NewWGPUDevice wraps an existing *wgpu.Device as a GraphicsDevice.
//
// Parameters:
//   - device: the negotiated WebGPU device
//
// Returns:
//   - GraphicsDevice: the device adapter
func NewWGPUDevice(device *wgpu.Device) GraphicsDevice {
	return &wgpuDevice{device: device}
}

func (d *wgpuDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error) {
	buf, err := d.device.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuBuffer{buf: buf, size: desc.Size}, nil
}

func (d *wgpuDevice) CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error) {
	tex, err := d.device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuTexture{tex: tex, width: desc.Size.Width, height: desc.Size.Height}, nil
}

func (d *wgpuDevice) CreateSampler(desc *wgpu.SamplerDescriptor) (Sampler, error) {
	s, err := d.device.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuSampler{sampler: s}, nil
}

func (d *wgpuDevice) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error) {
	l, err := d.device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuBindGroupLayout{layout: l}, nil
}

func (d *wgpuDevice) CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error) {
	layout, ok := desc.Layout.(*wgpuBindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q layout: %w", desc.Label, errForeignHandle)
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{
			Binding: e.Binding,
			Offset:  e.Offset,
			Size:    e.Size,
		}
		switch {
		case e.Buffer != nil:
			h, ok := e.Buffer.(*wgpuBuffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d buffer: %w", desc.Label, e.Binding, errForeignHandle)
			}
			entry.Buffer = h.buf
		case e.TextureView != nil:
			h, ok := e.TextureView.(*wgpuTextureView)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d texture view: %w", desc.Label, e.Binding, errForeignHandle)
			}
			entry.TextureView = h.view
		case e.Sampler != nil:
			h, ok := e.Sampler.(*wgpuSampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d sampler: %w", desc.Label, e.Binding, errForeignHandle)
			}
			entry.Sampler = h.sampler
		}
		entries[i] = entry
	}

	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuBindGroup{group: group}, nil
}

func (d *wgpuDevice) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		h, ok := l.(*wgpuBindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline layout %q group %d: %w", desc.Label, i, errForeignHandle)
		}
		layouts[i] = h.layout
	}
	pl, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuPipelineLayout{layout: pl}, nil
}

func (d *wgpuDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error) {
	layout, ok := desc.Layout.(*wgpuPipelineLayout)
	if !ok {
		return nil, fmt.Errorf("render pipeline %q layout: %w", desc.Label, errForeignHandle)
	}
	vs, ok := desc.VertexModule.(*wgpuShaderModule)
	if !ok {
		return nil, fmt.Errorf("render pipeline %q vertex module: %w", desc.Label, errForeignHandle)
	}
	fs, ok := desc.FragmentModule.(*wgpuShaderModule)
	if !ok {
		return nil, fmt.Errorf("render pipeline %q fragment module: %w", desc.Label, errForeignHandle)
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout.layout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets:    desc.Targets,
		},
		Primitive:    desc.Primitive,
		DepthStencil: desc.DepthStencil,
		Multisample:  desc.Multisample,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuRenderPipeline{pipeline: created}, nil
}

func (d *wgpuDevice) CreateShaderModule(label, wgsl string) (ShaderModule, error) {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: wgsl,
		},
	})
	if err != nil {
		return nil, err
	}
	return &wgpuShaderModule{module: m}, nil
}

func (d *wgpuDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &wgpuCommandEncoder{encoder: enc}, nil
}

// wgpuQueue implements CommandQueue over a *wgpu.Queue.
type wgpuQueue struct {
	queue *wgpu.Queue
}

var _ CommandQueue = &wgpuQueue{}

// NewWGPUQueue wraps an existing *wgpu.Queue as a CommandQueue.
//
// Parameters:
//   - queue: the device queue
//
// Returns:
//   - CommandQueue: the queue adapter
func NewWGPUQueue(queue *wgpu.Queue) CommandQueue {
	return &wgpuQueue{queue: queue}
}

func (q *wgpuQueue) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	h, ok := buf.(*wgpuBuffer)
	if !ok {
		return fmt.Errorf("write buffer: %w", errForeignHandle)
	}
	return q.queue.WriteBuffer(h.buf, offset, data)
}

func (q *wgpuQueue) WriteTexture(dst *ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	h, ok := dst.Texture.(*wgpuTexture)
	if !ok {
		return fmt.Errorf("write texture: %w", errForeignHandle)
	}
	return q.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  h.tex,
			MipLevel: dst.MipLevel,
			Origin:   dst.Origin,
			Aspect:   dst.Aspect,
		},
		data,
		layout,
		size,
	)
}

func (q *wgpuQueue) Submit(cmds ...CommandBuffer) {
	bufs := make([]*wgpu.CommandBuffer, 0, len(cmds))
	for _, c := range cmds {
		if h, ok := c.(*wgpuCommandBuffer); ok {
			bufs = append(bufs, h.cmd)
		}
	}
	q.queue.Submit(bufs...)
}
