package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/config"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/input"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-glb/engine/watcher"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// idleWait is how long the render loop sleeps when there is nothing to draw.
const idleWait = 10 * time.Millisecond

// command is a unit of work handed to the render goroutine.
type command struct {
	kind input.Command
	path string
}

// engine implements the Engine interface.
// The main thread runs the window message loop; the render goroutine owns every renderer call.
type engine struct {
	cfg *config.Config

	window    window.Window
	renderer  *renderer.AssetRenderer
	configure func(width, height int)
	controls  *input.Controls
	watcher   *watcher.Watcher
	profiler  *profiler.Profiler

	assetPath string
	title     atomic.Pointer[string]

	commands      chan command
	resizeChannel chan [2]int

	quitChannel chan struct{}
	quitOnce    sync.Once
	wg          sync.WaitGroup
	err         error

	renderFrameLimit time.Duration
	releasers        []func()

	log *zap.Logger
}

// Engine is the viewer: one window, one asset and an orbit camera around it.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the asset renderer driven by the render goroutine.
	//
	// Returns:
	//   - *renderer.AssetRenderer: the renderer
	Renderer() *renderer.AssetRenderer

	// Open queues a load of the asset at path. The load runs on the render goroutine; on failure
	// the previous asset stays on screen.
	//
	// Parameters:
	//   - path: the .glb or .gltf file
	Open(path string)

	// Reload queues a reload of the current asset file from disk.
	Reload()

	// EnableProfiler enables frame and memory statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame and memory statistics.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the render goroutine and the window message loop. It blocks until the window
	// closes or Quit is called, then releases every GPU object the engine created.
	//
	// Returns:
	//   - error: the fatal resource error that stopped rendering, if any
	Run() error

	// Quit signals the render goroutine to stop and the window to close. Safe to call multiple
	// times.
	Quit()
}

// NewEngine creates the viewer from cfg. Unless WithWindow and WithRenderer are given, it
// opens a window, negotiates a WebGPU device for it, compiles the shader program and creates
// the asset renderer.
//
// Parameters:
//   - cfg: the validated viewer configuration
//   - options: functional options
//
// Returns:
//   - Engine: the viewer, ready to Run
//   - error: error if the window or the GPU stack could not be created
func NewEngine(cfg *config.Config, options ...EngineBuilderOption) (Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &engine{
		cfg:           cfg,
		assetPath:     cfg.Loader.AssetPath,
		commands:      make(chan command, 8),
		resizeChannel: make(chan [2]int, 1),
		quitChannel:   make(chan struct{}),
		log:           zap.NewNop(),
	}
	e.SetRenderFrameLimit(float64(cfg.Renderer.FrameLimit))
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(
			profiler.WithEnabled(cfg.Renderer.Profile),
			profiler.WithLogger(e.log.Named("profiler")),
		)
	}

	if err := e.init(); err != nil {
		e.release()
		return nil, err
	}
	return e, nil
}

// init creates whatever the options did not supply and wires the callbacks.
func (e *engine) init() error {
	if e.window == nil {
		w, err := window.NewWindow(
			window.WithTitle(e.cfg.Window.Title),
			window.WithSize(e.cfg.Window.Width, e.cfg.Window.Height),
		)
		if err != nil {
			return err
		}
		e.window = w
		e.releasers = append(e.releasers, func() { _ = w.Close() })
	}
	if e.renderer == nil {
		if err := e.initGPU(); err != nil {
			return err
		}
	}

	e.controls = input.NewControls(e.renderer.Camera().Controller(),
		input.WithCommandHandler(e.handleCommand),
		input.WithLogger(e.log.Named("input")),
	)
	e.window.SetHandlers(window.Handlers{
		Update:    e.update,
		Resize:    e.queueResize,
		Scroll:    e.controls.Scroll,
		KeyDown:   e.controls.KeyDown,
		MouseDown: e.controls.MouseDown,
		MouseUp:   e.controls.MouseUp,
		MouseMove: e.controls.MouseMove,
		Drop:      e.controls.Drop,
	})

	if e.cfg.Watch.Enabled {
		w, err := watcher.New(func(path string) { e.post(command{kind: input.CommandReload, path: path}) },
			watcher.WithDebounce(time.Duration(e.cfg.Watch.DebounceMS)*time.Millisecond),
			watcher.WithLogger(e.log.Named("watcher")),
		)
		if err != nil {
			return err
		}
		e.watcher = w
		e.releasers = append(e.releasers, func() { _ = w.Close() })
	}

	if e.assetPath != "" {
		e.Open(e.assetPath)
	}
	return nil
}

// initGPU builds the device, the shader program and the asset renderer for the window.
func (e *engine) initGPU() error {
	ctx, err := gpu.NewWGPUContext(e.window.SurfaceDescriptor(),
		gpu.WithPresentMode(e.cfg.Renderer.PresentMode),
		gpu.WithForceFallbackAdapter(e.cfg.Renderer.ForceFallbackAdapter),
		gpu.WithLogger(e.log.Named("gpu")),
	)
	if err != nil {
		return err
	}
	e.releasers = append(e.releasers, ctx.Release)
	ctx.Configure(e.window.Size())
	e.configure = ctx.Configure

	program, err := shader.NewDefaultProgram(ctx.Device())
	if err != nil {
		return err
	}
	e.releasers = append(e.releasers, program.Release)

	l := loader.NewLoader(
		loader.WithDecodeWorkers(e.cfg.Loader.DecodeWorkers),
		loader.WithDecodeQueue(e.cfg.Loader.DecodeQueue),
		loader.WithDocumentSamplers(e.cfg.Textures.UseDocumentSamplers),
		loader.WithLogger(e.log.Named("loader")),
	)
	e.releasers = append(e.releasers, l.Close)

	width, height := ctx.Size()
	e.renderer = renderer.NewAssetRenderer(ctx.Device(), ctx.Queue(), ctx.Surface(), program,
		renderer.WithSurfaceSize(width, height),
		renderer.WithCamera(newCamera(e.cfg.Camera)),
		renderer.WithLight(newLight(e.cfg.Light)),
		renderer.WithLoader(l),
		renderer.WithDepthMode(renderer.ParseDepthMode(e.cfg.Renderer.DepthMode)),
		renderer.WithBackground(clearColor(e.cfg.Renderer.ClearColor)),
		renderer.WithAssetLogger(e.log.Named("renderer")),
	)
	e.releasers = append(e.releasers, e.renderer.Release)
	return nil
}

// newCamera builds the orbit camera from the configured eye and target.
func newCamera(c config.CameraConfig) camera.Camera {
	ctrl := camera.NewCameraController(
		camera.WithLookAt(mgl32.Vec3(c.Eye), mgl32.Vec3(c.Target)),
		camera.WithSpeeds(c.OrbitSpeed, c.ZoomSpeed, 0),
	)
	return camera.NewCamera(
		camera.WithPerspective(mgl32.DegToRad(c.FovDegrees), c.Near, c.Far),
		camera.WithController(ctrl),
	)
}

func newLight(c config.LightConfig) light.Light {
	return light.NewLight(
		light.WithDirection(mgl32.Vec3(c.Direction)),
		light.WithColor(mgl32.Vec3(c.Color)),
		light.WithIntensity(c.Intensity),
	)
}

func clearColor(c [4]float64) wgpu.Color {
	return wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() *renderer.AssetRenderer {
	return e.renderer
}

func (e *engine) Open(path string) {
	e.post(command{kind: input.CommandOpen, path: path})
}

func (e *engine) Reload() {
	e.post(command{kind: input.CommandReload})
}

func (e *engine) EnableProfiler() {
	e.profiler.SetEnabled(true)
}

func (e *engine) DisableProfiler() {
	e.profiler.SetEnabled(false)
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() error {
	e.wg.Add(1)
	go e.handleRender()

	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
	e.release()
	return e.err
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel exactly once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// release frees everything init created, newest first.
func (e *engine) release() {
	for i := len(e.releasers) - 1; i >= 0; i-- {
		e.releasers[i]()
	}
	e.releasers = nil
}

// post hands a command to the render goroutine without blocking the caller.
func (e *engine) post(cmd command) {
	select {
	case e.commands <- cmd:
	default:
		e.log.Warn("dropping command, render loop is busy", zap.Stringer("command", cmd.kind))
	}
}

// handleCommand receives input commands on the main thread.
func (e *engine) handleCommand(cmd input.Command, args []string) {
	switch cmd {
	case input.CommandToggleProfiler:
		e.profiler.Toggle()
	case input.CommandOpen:
		if len(args) > 0 {
			e.Open(args[0])
		}
	default:
		e.post(command{kind: cmd})
	}
}

// queueResize keeps only the newest pending framebuffer size.
func (e *engine) queueResize(width, height int) {
	size := [2]int{width, height}
	select {
	case e.resizeChannel <- size:
	default:
		select {
		case <-e.resizeChannel:
		default:
		}
		e.resizeChannel <- size
	}
}

// update runs on the main thread once per message loop iteration. It pushes a pending title to
// the window and closes the window once the render goroutine has quit.
func (e *engine) update() {
	if t := e.title.Swap(nil); t != nil {
		e.window.SetTitle(*t)
	}
	select {
	case <-e.quitChannel:
		_ = e.window.Close()
	default:
	}
}

// handleRender runs the render loop until quit. A fatal resource error stops the viewer.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("render goroutine recovered from panic", zap.Any("panic", r))
			e.err = fmt.Errorf("render goroutine panic: %v", r)
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		start := time.Now()
		if err := e.step(); err != nil {
			e.log.Error("rendering stopped", zap.Error(err))
			e.err = err
			e.signalQuit()
			return
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// step applies pending resizes and commands and renders one frame.
func (e *engine) step() error {
	select {
	case size := <-e.resizeChannel:
		if err := e.resize(size[0], size[1]); err != nil {
			return err
		}
	default:
	}

drain:
	for {
		select {
		case cmd := <-e.commands:
			e.execute(cmd)
		default:
			break drain
		}
	}

	res, err := e.renderer.Render()
	switch {
	case errors.Is(err, renderer.ErrNoAsset):
		time.Sleep(idleWait)
		return nil
	case err != nil:
		return err
	}
	e.profiler.Tick(res.Skipped)
	return nil
}

func (e *engine) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if e.configure != nil {
		e.configure(width, height)
	}
	return e.renderer.Resize(uint32(width), uint32(height))
}

// execute runs one command on the render goroutine. Asset failures are logged and leave the
// previous asset current.
func (e *engine) execute(cmd command) {
	switch cmd.kind {
	case input.CommandOpen:
		e.open(cmd.path)
	case input.CommandReload:
		e.reload(cmd.path)
	case input.CommandResetCamera:
		e.renderer.Reframe()
	}
}

func (e *engine) open(path string) {
	entry, err := e.renderer.LoadFile(path)
	if err != nil {
		e.log.Error("failed to open asset", zap.String("path", path), zap.Error(err))
		return
	}
	if e.watcher != nil && path != e.assetPath && e.assetPath != "" {
		_ = e.watcher.Unwatch(e.assetPath)
	}
	e.assetPath = path
	if e.watcher != nil {
		if err := e.watcher.Watch(path); err != nil {
			e.log.Warn("cannot watch asset", zap.String("path", path), zap.Error(err))
		}
	}
	e.setTitle(entry.Asset.Name)
}

func (e *engine) reload(path string) {
	if path == "" {
		path = e.assetPath
	}
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Error("failed to reload asset", zap.String("path", path), zap.Error(err))
		return
	}
	if _, err := e.renderer.Reload(data); err != nil {
		e.log.Error("failed to reload asset", zap.String("path", path), zap.Error(err))
	}
}

func (e *engine) setTitle(name string) {
	if name == "" {
		name = filepath.Base(e.assetPath)
	}
	title := fmt.Sprintf("%s - %s", e.cfg.Window.Title, name)
	e.title.Store(&title)
}
