//go:build js && wasm

package webgl

import (
	"fmt"
	"math"
	"syscall/js"

	"github.com/richinsley/glsketch/graphics"
	"github.com/richinsley/glsketch/log"
)

var logger = log.New("webgl")

// Canvas is a graphics.Context backed by an HTML canvas element. Its backing
// store follows the element's CSS size.
type Canvas struct {
	element js.Value
	hiDPI   bool
	onSize  js.Func
}

// NewCanvas looks up the canvas element with the given id. When hiDPI is set
// the backing store is scaled by window.devicePixelRatio.
func NewCanvas(id string, hiDPI bool) (*Canvas, error) {
	element := js.Global().Get("document").Call("getElementById", id)
	if !element.Truthy() {
		return nil, fmt.Errorf("%w: no canvas element %q", graphics.ErrNoContext, id)
	}
	c := &Canvas{element: element, hiDPI: hiDPI}
	c.onSize = js.FuncOf(func(js.Value, []js.Value) interface{} {
		c.fit()
		return nil
	})
	js.Global().Call("addEventListener", "resize", c.onSize)
	c.fit()
	return c, nil
}

// fit resizes the drawing buffer to match the displayed size.
func (c *Canvas) fit() {
	width, height := c.GetFramebufferSize()
	if c.element.Get("width").Int() != width || c.element.Get("height").Int() != height {
		c.element.Set("width", width)
		c.element.Set("height", height)
	}
}

func (c *Canvas) MakeCurrent() {}

func (c *Canvas) Shutdown() {
	js.Global().Call("removeEventListener", "resize", c.onSize)
	c.onSize.Release()
}

// ShouldClose is always false; the page owns the canvas lifetime.
func (c *Canvas) ShouldClose() bool {
	return false
}

// EndFrame is a no-op. The browser presents after each animation frame.
func (c *Canvas) EndFrame() {}

func (c *Canvas) GetFramebufferSize() (int, int) {
	width, height := c.GetWindowSize()
	ratio := 1.0
	if c.hiDPI {
		ratio = c.PixelRatio()
	}
	return int(math.Round(float64(width) * ratio)), int(math.Round(float64(height) * ratio))
}

func (c *Canvas) GetWindowSize() (int, int) {
	return c.element.Get("clientWidth").Int(), c.element.Get("clientHeight").Int()
}

func (c *Canvas) PixelRatio() float64 {
	ratio := js.Global().Get("devicePixelRatio")
	if ratio.Type() != js.TypeNumber || ratio.Float() <= 0 {
		return 1
	}
	return ratio.Float()
}

// Time returns the page clock in seconds.
func (c *Canvas) Time() float64 {
	return js.Global().Get("performance").Call("now").Float() / 1000
}

func (c *Canvas) SetTitle(title string) {
	js.Global().Get("document").Set("title", title)
}

// ScriptText returns the text content of the script element with the given
// id, the way shader sources are embedded in the host page.
func ScriptText(id string) (string, error) {
	element := js.Global().Get("document").Call("getElementById", id)
	if !element.Truthy() {
		return "", fmt.Errorf("webgl: no script element %q", id)
	}
	return element.Get("text").String(), nil
}

var _ graphics.Context = (*Canvas)(nil)
