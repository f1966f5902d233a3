package glfwcontext

import (
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/glsketch/graphics"
	"github.com/richinsley/glsketch/log"
	"github.com/richinsley/glsketch/options"
)

var logger = log.New("glfw")

// Context wraps a GLFW window with an OpenGL 4.1 core context.
type Context struct {
	window *glfw.Window
}

var _ graphics.Context = (*Context)(nil)

// New creates a GLFW window sized from opts and makes its context current.
// Hidden windows are used for offscreen capture.
func New(opts *options.SketchOptions, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
	if opts.HiDPI {
		glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)
		glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.True)
	} else {
		glfw.WindowHint(glfw.ScaleToMonitor, glfw.False)
		glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.False)
	}

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{window: win}
	win.SetKeyCallback(c.glfwKeyCallback)

	c.MakeCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	fbWidth, fbHeight := win.GetFramebufferSize()
	logger.Infof("created %dx%d window (framebuffer %dx%d, visible=%t)", opts.Width, opts.Height, fbWidth, fbHeight, visible)
	return c, nil
}

// closeRequested reports whether a key event asks to close the window.
// Escape is the only key the sketch reacts to.
func closeRequested(key glfw.Key, action glfw.Action) bool {
	return key == glfw.KeyEscape && action == glfw.Press
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if closeRequested(key, action) {
		w.SetShouldClose(true)
	}
}

// MakeCurrent makes the context current for the calling thread.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown only destroys the window; GLFW itself is torn down by TerminateGraphics.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) GetWindowSize() (int, int) {
	return c.window.GetSize()
}

// PixelRatio is the framebuffer to window size ratio, the GLFW analogue of devicePixelRatio.
func (c *Context) PixelRatio() float64 {
	winWidth, _ := c.window.GetSize()
	fbWidth, _ := c.window.GetFramebufferSize()
	if winWidth <= 0 || fbWidth <= 0 {
		return 1
	}
	return float64(fbWidth) / float64(winWidth)
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	logger.Info("GLFW initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	logger.Info("GLFW terminated")
}
