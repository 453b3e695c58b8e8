package renderer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// DefaultClearColor is the dark gray the color attachment is cleared to.
var DefaultClearColor = wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

// Frame is everything one indexed draw needs. All handles are borrowed for the frame.
type Frame struct {
	Pipeline     gpu.RenderPipeline
	BindGroups   [3]gpu.BindGroup
	VertexBuffer gpu.Buffer
	IndexBuffer  gpu.Buffer
	IndexCount   uint32

	// Upload runs once a surface image is acquired and before the pass is recorded. Per-frame
	// uniform writes go here so a skipped frame changes nothing. An error aborts the frame.
	Upload func() error
}

// FrameResult reports what a RenderFrame call did.
type FrameResult struct {
	// Skipped is true when no presentable image was available and nothing was drawn.
	Skipped bool

	// IndexCount is the number of indices drawn.
	IndexCount uint32
}

// renderer is the implementation of the FrameRenderer interface.
type renderer struct {
	mu *sync.Mutex

	device  gpu.GraphicsDevice
	queue   gpu.CommandQueue
	surface gpu.PresentationSurface

	depth      *DepthTarget
	clearColor wgpu.Color
	label      string

	log *zap.Logger
}

// FrameRenderer records, submits and presents one frame per call.
type FrameRenderer interface {
	// RenderFrame acquires the next surface image, clears it (and the depth target when one is
	// set), binds the pipeline, resource groups and buffers of frame, issues one indexed draw,
	// submits and presents. A failed acquire is not an error: it is logged and reported as a
	// skipped frame with no state changed.
	//
	// Parameters:
	//   - frame: the draw to record
	//
	// Returns:
	//   - FrameResult: whether the frame was drawn
	//   - error: an error matching common.ErrFatalResource if recording or submission fails
	RenderFrame(frame Frame) (FrameResult, error)

	// SetDepth sets the depth target attached to subsequent render passes. Nil removes the
	// depth attachment. The target is borrowed.
	//
	// Parameters:
	//   - depth: the depth target, or nil
	SetDepth(depth *DepthTarget)

	// Depth returns the current depth target, or nil.
	//
	// Returns:
	//   - *DepthTarget: the depth target
	Depth() *DepthTarget
}

var _ FrameRenderer = &renderer{}

// NewFrameRenderer creates a FrameRenderer over the shared device, queue and surface.
//
// Parameters:
//   - device: the shared graphics device
//   - queue: the shared command queue
//   - surface: the configured presentation surface
//   - opts: functional options
//
// Returns:
//   - FrameRenderer: the renderer
func NewFrameRenderer(device gpu.GraphicsDevice, queue gpu.CommandQueue, surface gpu.PresentationSurface, opts ...RendererBuilderOption) FrameRenderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		device:     device,
		queue:      queue,
		surface:    surface,
		clearColor: DefaultClearColor,
		label:      "Frame",
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *renderer) SetDepth(depth *DepthTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depth = depth
}

func (r *renderer) Depth() *DepthTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth
}

func (r *renderer) RenderFrame(frame Frame) (FrameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if frame.Pipeline == nil || frame.VertexBuffer == nil || frame.IndexBuffer == nil {
		return FrameResult{}, common.NewResourceError(r.label, errors.New("incomplete frame"))
	}

	surfaceTexture, err := r.surface.AcquireTexture()
	if err != nil {
		r.log.Warn("surface image unavailable, skipping frame", zap.Error(errors.Join(common.ErrFrameSkipped, err)))
		return FrameResult{Skipped: true}, nil
	}
	defer surfaceTexture.Release()

	if frame.Upload != nil {
		if err := frame.Upload(); err != nil {
			return FrameResult{}, err
		}
	}

	view, err := surfaceTexture.CreateView()
	if err != nil {
		return FrameResult{}, common.NewResourceError(r.label+" View", err)
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(r.label + " Encoder")
	if err != nil {
		return FrameResult{}, common.NewResourceError(r.label+" Encoder", err)
	}
	defer encoder.Release()

	desc := &gpu.RenderPassDescriptor{
		Label: r.label + " Pass",
		ColorAttachments: []gpu.ColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clearColor,
		}},
	}
	if r.depth != nil && r.depth.View() != nil {
		desc.DepthAttachment = &gpu.DepthAttachment{
			View:            r.depth.View(),
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		}
	}

	pass := encoder.BeginRenderPass(desc)
	defer pass.Release()

	pass.SetPipeline(frame.Pipeline)
	for i, group := range frame.BindGroups {
		if group != nil {
			pass.SetBindGroup(uint32(i), group)
		}
	}
	pass.SetVertexBuffer(0, frame.VertexBuffer)
	pass.SetIndexBuffer(frame.IndexBuffer, wgpu.IndexFormatUint32)
	pass.DrawIndexed(frame.IndexCount, 1)
	if err := pass.End(); err != nil {
		return FrameResult{}, common.NewResourceError(r.label+" Pass", err)
	}

	cmd, err := encoder.Finish()
	if err != nil {
		return FrameResult{}, common.NewResourceError(r.label+" Encoder", err)
	}
	defer cmd.Release()

	r.queue.Submit(cmd)
	r.surface.Present()
	return FrameResult{IndexCount: frame.IndexCount}, nil
}
