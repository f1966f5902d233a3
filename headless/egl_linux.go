//go:build linux

package headless

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/richinsley/glsketch/graphics"
	"github.com/richinsley/glsketch/log"
)

/*
#cgo LDFLAGS: -lEGL
#include <EGL/egl.h>
#include <EGL/eglext.h>

static PFNEGLQUERYDEVICESEXTPROC eglQueryDevicesEXT_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC eglGetPlatformDisplayEXT_ptr = NULL;

static void initialize_egl_extension_pointers() {
    eglQueryDevicesEXT_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
    eglGetPlatformDisplayEXT_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
}

static EGLDisplay get_platform_display(EGLenum platform, void *native_display, const EGLint *attrib_list) {
    if (eglGetPlatformDisplayEXT_ptr) {
        return eglGetPlatformDisplayEXT_ptr(platform, native_display, attrib_list);
    }
    return EGL_NO_DISPLAY;
}

static EGLBoolean query_devices(EGLint max_devices, EGLDeviceEXT *devices, EGLint *num_devices) {
    if (eglQueryDevicesEXT_ptr) {
        return eglQueryDevicesEXT_ptr(max_devices, devices, num_devices);
    }
    return EGL_FALSE;
}
*/
import "C"

var logger = log.New("headless")

// Context is a windowless OpenGL 4.1 core context rendering into an EGL
// pbuffer of fixed size.
type Context struct {
	display C.EGLDisplay
	context C.EGLContext
	surface C.EGLSurface

	width, height int
	start         time.Time
}

// getEGLDisplay prefers an enumerated GPU device and falls back to the
// default display.
func getEGLDisplay() (C.EGLDisplay, error) {
	C.initialize_egl_extension_pointers()

	var numDevices C.EGLint
	if C.query_devices(0, nil, &numDevices) == C.EGL_FALSE || numDevices == 0 {
		logger.Warning("EGL_EXT_device_query unavailable; falling back to EGL_DEFAULT_DISPLAY")
		display := C.eglGetDisplay(C.EGLNativeDisplayType(C.EGL_DEFAULT_DISPLAY))
		if display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
			return display, fmt.Errorf("eglGetDisplay(EGL_DEFAULT_DISPLAY) failed")
		}
		return display, nil
	}

	devices := make([]C.EGLDeviceEXT, numDevices)
	if C.query_devices(numDevices, &devices[0], &numDevices) == C.EGL_FALSE {
		return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("failed to query EGL devices")
	}
	logger.Infof("found %d EGL device(s)", numDevices)

	for i := 0; i < int(numDevices); i++ {
		display := C.get_platform_display(C.EGL_PLATFORM_DEVICE_EXT, unsafe.Pointer(devices[i]), nil)
		if display != C.EGLDisplay(C.EGL_NO_DISPLAY) {
			logger.Infof("using EGL device %d", i)
			return display, nil
		}
	}
	return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("no EGL device yielded a display")
}

// New creates a pbuffer-backed context of width x height pixels and makes it
// current on the calling thread.
func New(width, height int) (*Context, error) {
	c := &Context{width: width, height: height}

	var err error
	if c.display, err = getEGLDisplay(); err != nil {
		return nil, fmt.Errorf("%w: %v", graphics.ErrNoContext, err)
	}

	var major, minor C.EGLint
	if C.eglInitialize(c.display, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("%w: eglInitialize failed", graphics.ErrNoContext)
	}
	logger.Infof("EGL %d.%d initialized", major, minor)

	if C.eglBindAPI(C.EGL_OPENGL_API) == C.EGL_FALSE {
		c.Shutdown()
		return nil, fmt.Errorf("%w: desktop OpenGL is not available through EGL", graphics.ErrNoContext)
	}

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_DEPTH_SIZE, 24,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_BIT,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var numConfig C.EGLint
	if C.eglChooseConfig(c.display, &configAttribs[0], &config, 1, &numConfig) == C.EGL_FALSE || numConfig == 0 {
		c.Shutdown()
		return nil, fmt.Errorf("%w: no matching EGL config", graphics.ErrNoContext)
	}

	pbufferAttribs := []C.EGLint{
		C.EGL_WIDTH, C.EGLint(width),
		C.EGL_HEIGHT, C.EGLint(height),
		C.EGL_NONE,
	}
	c.surface = C.eglCreatePbufferSurface(c.display, config, &pbufferAttribs[0])
	if c.surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		c.Shutdown()
		return nil, fmt.Errorf("%w: failed to create pbuffer surface", graphics.ErrNoContext)
	}

	contextAttribs := []C.EGLint{
		C.EGL_CONTEXT_MAJOR_VERSION, 4,
		C.EGL_CONTEXT_MINOR_VERSION, 1,
		C.EGL_CONTEXT_OPENGL_PROFILE_MASK, C.EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT,
		C.EGL_NONE,
	}
	c.context = C.eglCreateContext(c.display, config, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if c.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		c.Shutdown()
		return nil, fmt.Errorf("%w: failed to create OpenGL 4.1 context", graphics.ErrNoContext)
	}

	c.MakeCurrent()
	c.start = time.Now()
	return c, nil
}

func (c *Context) MakeCurrent() {
	C.eglMakeCurrent(c.display, c.surface, c.surface, c.context)
}

func (c *Context) Shutdown() {
	if c.display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
		return
	}
	C.eglMakeCurrent(c.display, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
	if c.context != C.EGLContext(C.EGL_NO_CONTEXT) {
		C.eglDestroyContext(c.display, c.context)
	}
	if c.surface != C.EGLSurface(C.EGL_NO_SURFACE) {
		C.eglDestroySurface(c.display, c.surface)
	}
	C.eglTerminate(c.display)
	c.display = C.EGLDisplay(C.EGL_NO_DISPLAY)
}

// ShouldClose is always false; a headless run ends when its frame count is reached.
func (c *Context) ShouldClose() bool {
	return false
}

func (c *Context) EndFrame() {
	C.eglSwapBuffers(c.display, c.surface)
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.width, c.height
}

func (c *Context) GetWindowSize() (int, int) {
	return c.width, c.height
}

func (c *Context) PixelRatio() float64 {
	return 1
}

func (c *Context) Time() float64 {
	return time.Since(c.start).Seconds()
}

func (c *Context) SetTitle(string) {}

var _ graphics.Context = (*Context)(nil)
