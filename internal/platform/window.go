// Package platform owns the native window: GL context creation, buffer
// swapping and translation of mouse input into pointer events.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"orbit-renderer/math"
)

func init() {
	// GL contexts are bound to the thread that created them.
	runtime.LockOSThread()
}

// PointerHandler receives normalized pointer events: a press with the left
// button, motion while pressed, and release.
type PointerHandler interface {
	PointerDown(p math.Vec2)
	PointerDrag(p math.Vec2)
	PointerUp()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	pointer     PointerHandler
	pointerDown bool
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "Orbit Renderer",
		Resizable: true,
		VSync:     true,
	}
}

// NewWindow creates a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.SRGBCapable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 32)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	handle.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	handle.SetMouseButtonCallback(window.onMouseButton)
	handle.SetCursorPosCallback(window.onCursorPos)

	return window, nil
}

// SetPointerHandler routes left-button drags to h.
func (w *Window) SetPointerHandler(h PointerHandler) {
	w.pointer = h
}

func (w *Window) onMouseButton(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft || w.pointer == nil {
		return
	}
	switch action {
	case glfw.Press:
		x, y := win.GetCursorPos()
		w.pointerDown = true
		w.pointer.PointerDown(math.NewVec2(float32(x), float32(y)))
	case glfw.Release:
		w.pointerDown = false
		w.pointer.PointerUp()
	}
}

func (w *Window) onCursorPos(win *glfw.Window, x, y float64) {
	if !w.pointerDown || w.pointer == nil {
		return
	}
	w.pointer.PointerDrag(math.NewVec2(float32(x), float32(y)))
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

// FramebufferSize reports the drawable size in pixels. It is zero while the
// window is minimized.
func (w *Window) FramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// AspectRatio is width/height of the framebuffer, or 1 when it has no area.
func (w *Window) AspectRatio() float32 {
	fw, fh := w.FramebufferSize()
	if fw <= 0 || fh <= 0 {
		return 1
	}
	return float32(fw) / float32(fh)
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
