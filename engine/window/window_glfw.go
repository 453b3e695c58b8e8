package window

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// eventWait bounds how long one message loop iteration waits for input.
const eventWait = time.Second / 120

// glfwWindow is the platform state behind engineWindow.
type glfwWindow struct {
	window  *glfw.Window
	running bool
}

// newPlatformWindow initializes GLFW without a client API, creates the window and installs the
// event callbacks. The calling goroutine is locked to its OS thread, as GLFW requires.
//
// Reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	gw := &glfwWindow{window: win, running: true}
	w.platform = gw
	installCallbacks(w, gw)

	// The framebuffer can be larger than the requested size on high-DPI displays.
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// installCallbacks routes GLFW events to the window's Handlers. Escape closes the window.
func installCallbacks(w *engineWindow, gw *glfwWindow) {
	win := gw.window

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		switch {
		case (action == glfw.Press || action == glfw.Repeat) && w.handlers.KeyDown != nil:
			w.handlers.KeyDown(uint32(key))
		case action == glfw.Release && w.handlers.KeyUp != nil:
			w.handlers.KeyUp(uint32(key))
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.handlers.Scroll != nil {
			w.handlers.Scroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		x, y := win.GetCursorPos()
		switch {
		case action == glfw.Press && w.handlers.MouseDown != nil:
			w.handlers.MouseDown(uint32(button), int32(x), int32(y))
		case action == glfw.Release && w.handlers.MouseUp != nil:
			w.handlers.MouseUp(uint32(button), int32(x), int32(y))
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.handlers.MouseMove != nil {
			w.handlers.MouseMove(int32(x), int32(y))
		}
	})

	win.SetDropCallback(func(_ *glfw.Window, names []string) {
		if w.handlers.Drop != nil {
			w.handlers.Drop(names)
		}
	})

	// Framebuffer size, not window size: the surface is configured in pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.handlers.Resize != nil {
			w.handlers.Resize(width, height)
		}
	})
}

func platformWindow(w *engineWindow) *glfwWindow {
	return w.platform
}

// platformGetSurfaceDescriptor builds the surface descriptor through the wgpuglfw bridge.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw := platformWindow(w)
	if gw == nil || gw.window == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw := platformWindow(w)
	return gw != nil && gw.running && gw.window != nil && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the window and terminates GLFW. Closing twice is a no-op.
func platformCloseWindow(w *engineWindow) error {
	gw := platformWindow(w)
	if gw == nil {
		return errors.New("window is not initialized")
	}
	gw.running = false
	if gw.window == nil {
		return nil
	}
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	gw.window = nil
	glfw.Terminate()
	return nil
}

// platformProcessMessages waits up to eventWait for events. Rendering runs on its own
// goroutine, so the main thread does not need to spin.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#WaitEventsTimeout
func platformProcessMessages(w *engineWindow) bool {
	glfw.WaitEventsTimeout(eventWait.Seconds())
	return platformIsRunningCheck(w)
}

func platformSetTitle(w *engineWindow, title string) {
	if gw := platformWindow(w); gw != nil && gw.window != nil {
		gw.window.SetTitle(title)
	}
}

// sizeLimit maps an unset bound to glfw.DontCare.
func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}
