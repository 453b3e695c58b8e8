// Package input maps raw window events onto the orbit camera and the viewer's commands.
package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"go.uber.org/zap"
)

// Command is a viewer-level action triggered by a key binding.
type Command int

const (
	CommandReload Command = iota + 1
	CommandToggleProfiler
	CommandResetCamera
	CommandOpen
)

func (c Command) String() string {
	switch c {
	case CommandReload:
		return "reload"
	case CommandToggleProfiler:
		return "toggle-profiler"
	case CommandResetCamera:
		return "reset-camera"
	case CommandOpen:
		return "open"
	default:
		return "unknown"
	}
}

const (
	keyZoomStep = 0.25
	keyPanStep  = 5
)

// cameraMove is one key's camera effect, in controller steps.
type cameraMove struct {
	zoom            float32
	yaw, pitch      float32
	panRight, panUp float32
}

var cameraKeys = map[uint32]cameraMove{
	common.KeyW:     {zoom: keyZoomStep},
	common.KeyS:     {zoom: -keyZoomStep},
	common.KeyA:     {yaw: -1},
	common.KeyD:     {yaw: 1},
	common.KeyQ:     {pitch: -1},
	common.KeyE:     {pitch: 1},
	common.KeyLeft:  {panRight: -keyPanStep},
	common.KeyRight: {panRight: keyPanStep},
	common.KeyUp:    {panUp: keyPanStep},
	common.KeyDown:  {panUp: -keyPanStep},
}

var commandKeys = map[uint32]Command{
	common.KeyR:     CommandReload,
	common.KeyP:     CommandToggleProfiler,
	common.KeySpace: CommandResetCamera,
}

// Controls turns key, scroll and drag events into camera movement and viewer commands. Window
// callbacks run on the main thread while the camera is read by the render goroutine; the
// controller synchronizes itself, Controls only guards its own drag state.
type Controls struct {
	mu sync.Mutex

	controller camera.CameraController
	onCommand  func(cmd Command, args []string)

	dragButton int
	dragging   bool
	lastX      int32
	lastY      int32

	log *zap.Logger
}

// NewControls creates Controls driving controller.
//
// Parameters:
//   - controller: the orbit controller to move
//   - opts: functional options
//
// Returns:
//   - *Controls: the input mapper
func NewControls(controller camera.CameraController, opts ...ControlsOption) *Controls {
	c := &Controls{
		controller: controller,
		dragButton: -1,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// KeyDown handles a key press or repeat. Unbound keys are ignored.
func (c *Controls) KeyDown(key uint32) {
	if cmd, ok := commandKeys[key]; ok {
		c.emit(cmd, nil)
		return
	}
	m, ok := cameraKeys[key]
	if !ok {
		return
	}
	switch {
	case m.zoom != 0:
		c.controller.Zoom(m.zoom)
	case m.yaw != 0 || m.pitch != 0:
		c.controller.Orbit(m.yaw, m.pitch)
	default:
		c.controller.Pan(m.panRight, m.panUp)
	}
}

// Scroll zooms toward the target for positive deltas and away for negative ones.
func (c *Controls) Scroll(delta float32) {
	if delta != 0 {
		c.controller.Zoom(delta)
	}
}

// MouseDown starts a drag. The left button orbits, the right and middle buttons pan. A second
// button pressed during a drag is ignored.
func (c *Controls) MouseDown(button uint32, x, y int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragging {
		return
	}
	switch button {
	case common.MouseLeft, common.MouseRight, common.MouseMiddle:
	default:
		return
	}
	c.dragging = true
	c.dragButton = int(button)
	c.lastX, c.lastY = x, y
}

// MouseUp ends the drag started by button.
func (c *Controls) MouseUp(button uint32, _, _ int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragging && c.dragButton == int(button) {
		c.dragging = false
		c.dragButton = -1
	}
}

// MouseMove applies the cursor delta since the last event to the active drag.
func (c *Controls) MouseMove(x, y int32) {
	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return
	}
	dx, dy := float32(x-c.lastX), float32(y-c.lastY)
	c.lastX, c.lastY = x, y
	button := c.dragButton
	c.mu.Unlock()

	if dx == 0 && dy == 0 {
		return
	}
	if button == common.MouseLeft {
		c.controller.Drag(dx, dy)
		return
	}
	c.controller.Pan(-dx, dy)
}

// Drop requests the first dropped file to be opened.
func (c *Controls) Drop(paths []string) {
	if len(paths) > 0 {
		c.emit(CommandOpen, paths[:1])
	}
}

// Dragging reports whether a drag is in progress.
func (c *Controls) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

func (c *Controls) emit(cmd Command, args []string) {
	c.log.Debug("input command", zap.Stringer("command", cmd), zap.Strings("args", args))
	if c.onCommand != nil {
		c.onCommand(cmd, args)
	}
}
