package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context must stay on the main OS thread.
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:      1280,
		Height:     720,
		Title:      "Merry Christmas",
		Resizable:  true,
		VSync:      true,
		Fullscreen: false,
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
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}
	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose() {
	w.Handle.SetShouldClose(true)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// Size returns the window size in screen coordinates, the space pointer
// events are reported in.
func (w *Window) Size() (int, int) {
	return w.Handle.GetSize()
}

// Time returns seconds since GLFW was initialized.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) SetTitle(title string) {
	if title == w.Title {
		return
	}
	w.Handle.SetTitle(title)
	w.Title = title
}

// Destroy detaches every callback before tearing the window down.
func (w *Window) Destroy() {
	w.Handle.SetCursorPosCallback(nil)
	w.Handle.SetMouseButtonCallback(nil)
	w.Handle.SetScrollCallback(nil)
	w.Handle.SetKeyCallback(nil)
	w.Handle.SetCursorEnterCallback(nil)
	w.Handle.SetFramebufferSizeCallback(nil)
	w.Handle.Destroy()
	glfw.Terminate()
}

// ── Event callbacks ──────────────────────────────────────────────────────────

// Coordinates are in screen pixels with the origin at the top-left corner.
type (
	CursorCallback      func(x, y float64)
	MouseButtonCallback func(button int, pressed bool, x, y float64)
	ScrollCallback      func(xoff, yoff float64)
	KeyCallback         func(key int)
	LeaveCallback       func()
	ResizeCallback      func(width, height int)
)

func (w *Window) SetCursorCallback(cb CursorCallback) {
	w.Handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		cb(x, y)
	})
}

func (w *Window) SetMouseButtonCallback(cb MouseButtonCallback) {
	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		x, y := win.GetCursorPos()
		cb(int(b), action == glfw.Press, x, y)
	})
}

func (w *Window) SetScrollCallback(cb ScrollCallback) {
	w.Handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

// SetKeyCallback reports key presses only.
func (w *Window) SetKeyCallback(cb KeyCallback) {
	w.Handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press {
			cb(int(key))
		}
	})
}

func (w *Window) SetLeaveCallback(cb LeaveCallback) {
	w.Handle.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered {
			cb()
		}
	})
}

func (w *Window) SetResizeCallback(cb ResizeCallback) {
	w.Handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width = width
		w.Height = height
		cb(width, height)
	})
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

const (
	MouseLeft = int(glfw.MouseButtonLeft)

	KeyEscape = int(glfw.KeyEscape)
	KeySpace  = int(glfw.KeySpace)
	KeyD      = int(glfw.KeyD)
	KeyE      = int(glfw.KeyE)
	KeyG      = int(glfw.KeyG)
	KeyM      = int(glfw.KeyM)
	KeyN      = int(glfw.KeyN)
	KeyR      = int(glfw.KeyR)
	KeyS      = int(glfw.KeyS)
	KeyQ      = int(glfw.KeyQ)
)
