// Package gputest provides an in-memory recording implementation of the gpu collaborator
// interfaces. Every created object and every queue operation is recorded so tests can assert
// on descriptors, upload contents and command order without a GPU.
package gputest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is the common part of every recorded object.
type Handle struct {
	Kind     string
	Label    string
	ID       int
	Released bool
}

// Release marks the handle released.
func (h *Handle) Release() { h.Released = true }

// Buffer is a recorded buffer.
type Buffer struct {
	Handle
	Desc wgpu.BufferDescriptor
}

// Size returns the requested buffer size.
func (b *Buffer) Size() uint64 { return b.Desc.Size }

// Texture is a recorded texture.
type Texture struct {
	Handle
	Desc  wgpu.TextureDescriptor
	Views []*TextureView
	dev   *Device
}

// Width returns the texture width.
func (t *Texture) Width() uint32 { return t.Desc.Size.Width }

// Height returns the texture height.
func (t *Texture) Height() uint32 { return t.Desc.Size.Height }

// CreateView records a view of the texture.
func (t *Texture) CreateView() (gpu.TextureView, error) {
	if err := t.dev.failure("CreateView"); err != nil {
		return nil, err
	}
	v := &TextureView{Handle: t.dev.handle("TextureView", t.Label+" view"), Texture: t}
	t.Views = append(t.Views, v)
	return v, nil
}

// TextureView is a recorded texture view.
type TextureView struct {
	Handle
	Texture *Texture
}

// Sampler is a recorded sampler.
type Sampler struct {
	Handle
	Desc wgpu.SamplerDescriptor
}

// BindGroupLayout is a recorded resource group layout.
type BindGroupLayout struct {
	Handle
	Desc wgpu.BindGroupLayoutDescriptor
}

// BindGroup is a recorded resource group.
type BindGroup struct {
	Handle
	Desc gpu.BindGroupDescriptor
}

// PipelineLayout is a recorded pipeline layout.
type PipelineLayout struct {
	Handle
	Desc gpu.PipelineLayoutDescriptor
}

// RenderPipeline is a recorded render pipeline.
type RenderPipeline struct {
	Handle
	Desc gpu.RenderPipelineDescriptor
}

// ShaderModule is a recorded shader module.
type ShaderModule struct {
	Handle
	Source string
}

// Command is one recorded render pass command.
type Command struct {
	Op        string
	Index     uint32
	Target    gpu.Releasable
	Format    wgpu.IndexFormat
	Count     uint32
	Instances uint32
}

// RenderPass is a recorded render pass.
type RenderPass struct {
	Handle
	Desc     gpu.RenderPassDescriptor
	Commands []Command
	Ended    bool
	dev      *Device
}

func (p *RenderPass) SetPipeline(rp gpu.RenderPipeline) {
	p.Commands = append(p.Commands, Command{Op: "SetPipeline", Target: rp})
}

func (p *RenderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	p.Commands = append(p.Commands, Command{Op: "SetBindGroup", Index: index, Target: group})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	p.Commands = append(p.Commands, Command{Op: "SetVertexBuffer", Index: slot, Target: buf})
}

func (p *RenderPass) SetIndexBuffer(buf gpu.Buffer, format wgpu.IndexFormat) {
	p.Commands = append(p.Commands, Command{Op: "SetIndexBuffer", Target: buf, Format: format})
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.Commands = append(p.Commands, Command{Op: "DrawIndexed", Count: indexCount, Instances: instanceCount})
}

// End fails with the error registered through Device.FailOn("End").
func (p *RenderPass) End() error {
	if err := p.dev.failure("End"); err != nil {
		return err
	}
	p.Ended = true
	return nil
}

// Ops returns the recorded command names in order.
func (p *RenderPass) Ops() []string {
	ops := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		ops[i] = c.Op
	}
	return ops
}

// CommandBuffer is a recorded finished command buffer.
type CommandBuffer struct {
	Handle
	Passes []*RenderPass
}

// CommandEncoder is a recorded command encoder.
type CommandEncoder struct {
	Handle
	Passes   []*RenderPass
	Finished bool
	dev      *Device
}

func (e *CommandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPassEncoder {
	p := &RenderPass{Handle: e.dev.handle("RenderPass", desc.Label), Desc: *desc, dev: e.dev}
	e.Passes = append(e.Passes, p)
	return p
}

func (e *CommandEncoder) Finish() (gpu.CommandBuffer, error) {
	if err := e.dev.failure("Finish"); err != nil {
		return nil, err
	}
	e.Finished = true
	return &CommandBuffer{Handle: e.dev.handle("CommandBuffer", e.Label), Passes: e.Passes}, nil
}

// Device records every object it creates. Use FailOn to inject creation failures.
type Device struct {
	mu     sync.Mutex
	nextID int

	failures map[string]error

	Buffers          []*Buffer
	Textures         []*Texture
	Samplers         []*Sampler
	BindGroupLayouts []*BindGroupLayout
	BindGroups       []*BindGroup
	PipelineLayouts  []*PipelineLayout
	Pipelines        []*RenderPipeline
	ShaderModules    []*ShaderModule
	Encoders         []*CommandEncoder
}

var _ gpu.GraphicsDevice = &Device{}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{failures: make(map[string]error)}
}

// FailOn makes the named method (e.g. "CreateRenderPipeline") return err until cleared with a nil err.
func (d *Device) FailOn(method string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, method)
		return
	}
	d.failures[method] = err
}

func (d *Device) failure(method string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failures[method]; ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (d *Device) handle(kind, label string) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return Handle{Kind: kind, Label: label, ID: d.nextID}
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (gpu.Buffer, error) {
	if err := d.failure("CreateBuffer"); err != nil {
		return nil, err
	}
	b := &Buffer{Handle: d.handle("Buffer", desc.Label), Desc: *desc}
	d.mu.Lock()
	d.Buffers = append(d.Buffers, b)
	d.mu.Unlock()
	return b, nil
}

func (d *Device) CreateTexture(desc *wgpu.TextureDescriptor) (gpu.Texture, error) {
	if err := d.failure("CreateTexture"); err != nil {
		return nil, err
	}
	t := &Texture{Handle: d.handle("Texture", desc.Label), Desc: *desc, dev: d}
	d.mu.Lock()
	d.Textures = append(d.Textures, t)
	d.mu.Unlock()
	return t, nil
}

func (d *Device) CreateSampler(desc *wgpu.SamplerDescriptor) (gpu.Sampler, error) {
	if err := d.failure("CreateSampler"); err != nil {
		return nil, err
	}
	s := &Sampler{Handle: d.handle("Sampler", desc.Label), Desc: *desc}
	d.mu.Lock()
	d.Samplers = append(d.Samplers, s)
	d.mu.Unlock()
	return s, nil
}

func (d *Device) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	if err := d.failure("CreateBindGroupLayout"); err != nil {
		return nil, err
	}
	l := &BindGroupLayout{Handle: d.handle("BindGroupLayout", desc.Label), Desc: *desc}
	d.mu.Lock()
	d.BindGroupLayouts = append(d.BindGroupLayouts, l)
	d.mu.Unlock()
	return l, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	if err := d.failure("CreateBindGroup"); err != nil {
		return nil, err
	}
	g := &BindGroup{Handle: d.handle("BindGroup", desc.Label), Desc: *desc}
	d.mu.Lock()
	d.BindGroups = append(d.BindGroups, g)
	d.mu.Unlock()
	return g, nil
}

func (d *Device) CreatePipelineLayout(desc *gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	if err := d.failure("CreatePipelineLayout"); err != nil {
		return nil, err
	}
	l := &PipelineLayout{Handle: d.handle("PipelineLayout", desc.Label), Desc: *desc}
	d.mu.Lock()
	d.PipelineLayouts = append(d.PipelineLayouts, l)
	d.mu.Unlock()
	return l, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if err := d.failure("CreateRenderPipeline"); err != nil {
		return nil, err
	}
	p := &RenderPipeline{Handle: d.handle("RenderPipeline", desc.Label), Desc: *desc}
	d.mu.Lock()
	d.Pipelines = append(d.Pipelines, p)
	d.mu.Unlock()
	return p, nil
}

func (d *Device) CreateShaderModule(label, wgsl string) (gpu.ShaderModule, error) {
	if err := d.failure("CreateShaderModule"); err != nil {
		return nil, err
	}
	m := &ShaderModule{Handle: d.handle("ShaderModule", label), Source: wgsl}
	d.mu.Lock()
	d.ShaderModules = append(d.ShaderModules, m)
	d.mu.Unlock()
	return m, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	if err := d.failure("CreateCommandEncoder"); err != nil {
		return nil, err
	}
	e := &CommandEncoder{Handle: d.handle("CommandEncoder", label), dev: d}
	d.mu.Lock()
	d.Encoders = append(d.Encoders, e)
	d.mu.Unlock()
	return e, nil
}

// BufferByLabel returns the first recorded buffer with the given label, or nil.
func (d *Device) BufferByLabel(label string) *Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.Buffers {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// BufferWrite is one recorded WriteBuffer call. Data is a copy.
type BufferWrite struct {
	Buffer *Buffer
	Offset uint64
	Data   []byte
}

// TextureWrite is one recorded WriteTexture call. Data is a copy.
type TextureWrite struct {
	Texture *Texture
	Data    []byte
	Layout  wgpu.TextureDataLayout
	Size    wgpu.Extent3D
}

// Queue records uploads and submissions.
type Queue struct {
	mu sync.Mutex

	WriteErr error

	BufferWrites  []BufferWrite
	TextureWrites []TextureWrite
	Submitted     []*CommandBuffer
}

var _ gpu.CommandQueue = &Queue{}

// NewQueue returns an empty recording queue.
func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.WriteErr != nil {
		return q.WriteErr
	}
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("gputest: foreign buffer %T", buf)
	}
	q.BufferWrites = append(q.BufferWrites, BufferWrite{Buffer: b, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}

func (q *Queue) WriteTexture(dst *gpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.WriteErr != nil {
		return q.WriteErr
	}
	t, ok := dst.Texture.(*Texture)
	if !ok {
		return fmt.Errorf("gputest: foreign texture %T", dst.Texture)
	}
	q.TextureWrites = append(q.TextureWrites, TextureWrite{
		Texture: t,
		Data:    append([]byte(nil), data...),
		Layout:  *layout,
		Size:    *size,
	})
	return nil
}

func (q *Queue) Submit(cmds ...gpu.CommandBuffer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range cmds {
		if cb, ok := c.(*CommandBuffer); ok {
			q.Submitted = append(q.Submitted, cb)
		}
	}
}

// WritesTo returns the recorded writes targeting buf, in order.
func (q *Queue) WritesTo(buf gpu.Buffer) []BufferWrite {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []BufferWrite
	for _, w := range q.BufferWrites {
		if gpu.Buffer(w.Buffer) == buf {
			out = append(out, w)
		}
	}
	return out
}

// Surface is a recording presentation surface. Set AcquireErr to simulate a surface with no
// image ready.
type Surface struct {
	mu sync.Mutex

	AcquireErr    error
	Width, Height uint32
	TextureFormat wgpu.TextureFormat

	Acquired []*Texture
	Presents int

	dev *Device
}

var _ gpu.PresentationSurface = &Surface{}

// NewSurface returns a surface of the given size producing textures recorded on dev.
func NewSurface(dev *Device, width, height uint32) *Surface {
	return &Surface{dev: dev, Width: width, Height: height, TextureFormat: wgpu.TextureFormatBGRA8UnormSrgb}
}

func (s *Surface) AcquireTexture() (gpu.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}
	t := &Texture{
		Handle: s.dev.handle("SurfaceTexture", "surface"),
		Desc: wgpu.TextureDescriptor{
			Size:   wgpu.Extent3D{Width: s.Width, Height: s.Height, DepthOrArrayLayers: 1},
			Format: s.TextureFormat,
		},
		dev: s.dev,
	}
	s.Acquired = append(s.Acquired, t)
	return t, nil
}

func (s *Surface) Present() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Presents++
}

func (s *Surface) Format() wgpu.TextureFormat {
	return s.TextureFormat
}
