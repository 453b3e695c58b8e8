package gpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Context owns the WebGPU instance, adapter, device, queue and surface for one window and
// exposes them through the collaborator interfaces. It is the only place in the module that
// negotiates adapters and configures surfaces.
type Context struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	graphicsDevice GraphicsDevice
	commandQueue   CommandQueue

	format        wgpu.TextureFormat
	width, height uint32
	presentMode   wgpu.PresentMode
	forceFallback bool

	log *zap.Logger
}

// NewWGPUContext creates the instance and surface, requests an adapter compatible with the
// surface and requests a device. The surface is not configured until Configure is called.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - opts: functional options
//
// Returns:
//   - *Context: the negotiated context
//   - error: error if no adapter or device is available
func NewWGPUContext(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...ContextOption) (*Context, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("nil surface descriptor")
	}
	runtime.LockOSThread()

	c := &Context{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	a, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallback,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	c.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "glbview device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	c.device = d
	c.queue = d.GetQueue()
	c.graphicsDevice = NewWGPUDevice(c.device)
	c.commandQueue = NewWGPUQueue(c.queue)

	c.log.Info("webgpu device ready", zap.Bool("fallback_adapter", c.forceFallback))
	return c, nil
}

// Configure (re)configures the surface for the given framebuffer size. An sRGB format is
// preferred when the surface offers one. Zero sizes (minimized windows) are ignored.
//
// Parameters:
//   - width: framebuffer width in pixels
//   - height: framebuffer height in pixels
func (c *Context) Configure(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	capabilities := c.surface.GetCapabilities(c.adapter)
	c.format = preferredSurfaceFormat(capabilities.Formats)

	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	c.width, c.height = uint32(width), uint32(height)

	c.log.Debug("surface configured",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Any("format", c.format),
	)
}

// preferredSurfaceFormat picks the first sRGB format, falling back to the first offered format.
func preferredSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8UnormSrgb
	}
	return formats[0]
}

// Device returns the shared GraphicsDevice.
func (c *Context) Device() GraphicsDevice { return c.graphicsDevice }

// Queue returns the shared CommandQueue.
func (c *Context) Queue() CommandQueue { return c.commandQueue }

// Surface returns the PresentationSurface view of the configured surface.
func (c *Context) Surface() PresentationSurface { return &wgpuSurface{ctx: c} }

// Size returns the configured surface size.
func (c *Context) Size() (width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Release frees the device, adapter, surface and instance.
func (c *Context) Release() {
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

// wgpuSurface implements PresentationSurface over the context's configured surface.
type wgpuSurface struct {
	ctx *Context
}

var _ PresentationSurface = &wgpuSurface{}

func (s *wgpuSurface) AcquireTexture() (Texture, error) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	if s.ctx.width == 0 || s.ctx.height == 0 {
		return nil, errors.New("surface is not configured")
	}
	tex, err := s.ctx.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	return &wgpuTexture{tex: tex, width: s.ctx.width, height: s.ctx.height}, nil
}

func (s *wgpuSurface) Present() {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.ctx.surface.Present()
}

func (s *wgpuSurface) Format() wgpu.TextureFormat {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.ctx.format
}
