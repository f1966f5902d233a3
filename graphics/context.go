package graphics

import "errors"

// ErrNoContext is returned when the host cannot provide a GL drawing context.
var ErrNoContext = errors.New("graphics: drawing context unavailable")

// Context defines the interface for a drawing surface that owns a GL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the frame and pumps host events.
	EndFrame()
	// GetFramebufferSize returns the drawable size in pixels.
	GetFramebufferSize() (int, int)
	// GetWindowSize returns the logical (CSS / screen coordinate) size.
	GetWindowSize() (int, int)
	// PixelRatio is the ratio between framebuffer pixels and logical units.
	PixelRatio() float64
	// Time returns seconds elapsed on the host clock.
	Time() float64
	SetTitle(title string)
}
