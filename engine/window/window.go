// Package window opens the viewer's GLFW window and forwards its events to callbacks.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Handlers receives the window's events on the main thread. Nil fields are skipped.
type Handlers struct {
	// Update runs once per message loop iteration.
	Update func()

	// Resize receives the new framebuffer size in pixels.
	Resize func(width, height int)

	// Scroll receives the vertical wheel delta, positive away from the user.
	Scroll func(delta float32)

	KeyDown func(keyCode uint32)
	KeyUp   func(keyCode uint32)

	MouseDown func(button uint32, x, y int32)
	MouseUp   func(button uint32, x, y int32)
	MouseMove func(x, y int32)

	// Drop receives paths of files dropped onto the window.
	Drop func(paths []string)
}

// Window is the viewer's presentation window. Its message loop must run on the main thread.
type Window interface {
	// SetHandlers replaces every event handler at once.
	//
	// Parameters:
	//   - h: the handlers; key and mouse codes follow common.Key* and common.Mouse*
	SetHandlers(h Handlers)

	// SetTitle replaces the title bar text. Main thread only.
	SetTitle(title string)

	// SurfaceDescriptor returns what the WebGPU instance needs to create a surface for this
	// window, or nil once it is closed.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the framebuffer size in pixels.
	Size() (width, height int)

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// ProcessMessages pumps events until the window closes.
	ProcessMessages()

	// Close destroys the window. A second call does nothing.
	//
	// Returns:
	//   - error: when the platform window was never created
	Close() error
}

type engineWindow struct {
	title string

	// Resize bounds; a zero maximum is unbounded.
	minWidth, minHeight int
	maxWidth, maxHeight int

	width, height int

	handlers Handlers
	platform *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates and shows the platform window. Call it on the main thread.
//
// Parameters:
//   - options: title, size and resize limits
//
// Returns:
//   - Window: the open window
//   - error: when GLFW or the window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "glbview",
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetHandlers(h Handlers) {
	w.handlers = h
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) Size() (int, int) {
	return w.width, w.height
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) ProcessMessages() {
	for platformProcessMessages(w) {
		if w.handlers.Update != nil {
			w.handlers.Update()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}
