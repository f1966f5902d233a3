package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/richinsley/glsketch/graphics"
)

// call is one recorded GL invocation.
type call struct {
	name string
	args []interface{}
}

func (c call) String() string {
	return fmt.Sprintf("%s%v", c.name, c.args)
}

// fakeGL records every call and simulates compile/link results.
type fakeGL struct {
	calls []call

	nextID      uint32
	compileFail map[graphics.ShaderStage]string
	linkFail    string

	attribs  map[string]int32
	uniforms map[string]int32

	bufferData      []float32
	pixelFill       byte
	framebufferFail string
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		compileFail: make(map[graphics.ShaderStage]string),
		attribs:     map[string]int32{"a_position": 0},
		uniforms:    map[string]int32{"time": 3, "u_resolution": 4},
	}
}

func (g *fakeGL) record(name string, args ...interface{}) {
	g.calls = append(g.calls, call{name: name, args: args})
}

func (g *fakeGL) id() uint32 {
	g.nextID++
	return g.nextID
}

func (g *fakeGL) count(name string) int {
	n := 0
	for _, c := range g.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func (g *fakeGL) last(name string) (call, bool) {
	for i := len(g.calls) - 1; i >= 0; i-- {
		if g.calls[i].name == name {
			return g.calls[i], true
		}
	}
	return call{}, false
}

func (g *fakeGL) index(name string) int {
	for i, c := range g.calls {
		if c.name == name {
			return i
		}
	}
	return -1
}

func (g *fakeGL) trace() string {
	parts := make([]string, len(g.calls))
	for i, c := range g.calls {
		parts[i] = c.String()
	}
	return strings.Join(parts, "\n")
}

func (g *fakeGL) EnableDepthTest()                { g.record("EnableDepthTest") }
func (g *fakeGL) ClearColor(r, gr, b, a float32)  { g.record("ClearColor", r, gr, b, a) }
func (g *fakeGL) Clear()                          { g.record("Clear") }
func (g *fakeGL) Viewport(x, y, w, h int32)       { g.record("Viewport", x, y, w, h) }
func (g *fakeGL) DeleteShader(s graphics.Shader)  { g.record("DeleteShader", s) }
func (g *fakeGL) CompileShader(s graphics.Shader) { g.record("CompileShader", s) }

func (g *fakeGL) CreateShader(stage graphics.ShaderStage) graphics.Shader {
	s := graphics.Shader(g.id())
	g.record("CreateShader", stage, s)
	return s
}

func (g *fakeGL) ShaderSource(s graphics.Shader, source string) {
	g.record("ShaderSource", s, source)
}

func (g *fakeGL) ShaderStatus(s graphics.Shader) (bool, string) {
	g.record("ShaderStatus", s)
	for _, c := range g.calls {
		if c.name == "CreateShader" && c.args[1] == s {
			if info, fail := g.compileFail[c.args[0].(graphics.ShaderStage)]; fail {
				return false, info
			}
		}
	}
	return true, ""
}

func (g *fakeGL) CreateProgram() graphics.Program {
	p := graphics.Program(g.id())
	g.record("CreateProgram", p)
	return p
}

func (g *fakeGL) AttachShader(p graphics.Program, s graphics.Shader) { g.record("AttachShader", p, s) }
func (g *fakeGL) LinkProgram(p graphics.Program)                     { g.record("LinkProgram", p) }
func (g *fakeGL) UseProgram(p graphics.Program)                      { g.record("UseProgram", p) }
func (g *fakeGL) DeleteProgram(p graphics.Program)                   { g.record("DeleteProgram", p) }

func (g *fakeGL) ProgramStatus(p graphics.Program) (bool, string) {
	g.record("ProgramStatus", p)
	if g.linkFail != "" {
		return false, g.linkFail
	}
	return true, ""
}

func (g *fakeGL) CreateVertexArray() graphics.VertexArray {
	v := graphics.VertexArray(g.id())
	g.record("CreateVertexArray", v)
	return v
}

func (g *fakeGL) BindVertexArray(v graphics.VertexArray)   { g.record("BindVertexArray", v) }
func (g *fakeGL) DeleteVertexArray(v graphics.VertexArray) { g.record("DeleteVertexArray", v) }

func (g *fakeGL) CreateBuffer() graphics.Buffer {
	b := graphics.Buffer(g.id())
	g.record("CreateBuffer", b)
	return b
}

func (g *fakeGL) BindArrayBuffer(b graphics.Buffer) { g.record("BindArrayBuffer", b) }
func (g *fakeGL) DeleteBuffer(b graphics.Buffer)    { g.record("DeleteBuffer", b) }

func (g *fakeGL) ArrayBufferData(data []float32) {
	g.bufferData = append([]float32(nil), data...)
	g.record("ArrayBufferData", len(data))
}

func (g *fakeGL) GetAttribLocation(p graphics.Program, name string) int32 {
	g.record("GetAttribLocation", p, name)
	if loc, ok := g.attribs[name]; ok {
		return loc
	}
	return -1
}

func (g *fakeGL) EnableVertexAttribArray(index uint32) { g.record("EnableVertexAttribArray", index) }

func (g *fakeGL) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	g.record("VertexAttribPointer", index, size, stride, offset)
}

func (g *fakeGL) GetUniformLocation(p graphics.Program, name string) int32 {
	g.record("GetUniformLocation", p, name)
	if loc, ok := g.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (g *fakeGL) Uniform1f(loc int32, v float32)     { g.record("Uniform1f", loc, v) }
func (g *fakeGL) Uniform2fv(loc int32, v [2]float32) { g.record("Uniform2fv", loc, v[0], v[1]) }
func (g *fakeGL) DrawTriangles(first, count int32)   { g.record("DrawTriangles", first, count) }

func (g *fakeGL) CreateFramebuffer(width, height int32) (graphics.Framebuffer, error) {
	fb := graphics.Framebuffer(g.id())
	g.record("CreateFramebuffer", width, height, fb)
	if g.framebufferFail != "" {
		return 0, errors.New(g.framebufferFail)
	}
	return fb, nil
}

func (g *fakeGL) BindFramebuffer(fb graphics.Framebuffer)   { g.record("BindFramebuffer", fb) }
func (g *fakeGL) DeleteFramebuffer(fb graphics.Framebuffer) { g.record("DeleteFramebuffer", fb) }

func (g *fakeGL) ReadPixels(x, y, w, h int32, dst []byte) {
	g.record("ReadPixels", x, y, w, h)
	for i := range dst {
		dst[i] = g.pixelFill
	}
}

// fakeContext is a host whose clock and size are driven by the test.
type fakeContext struct {
	width, height int
	ratio         float64
	now           float64
	closeAfter    int
	frames        int
	titles        []string
	tick          func(c *fakeContext)
}

func (c *fakeContext) MakeCurrent()                   {}
func (c *fakeContext) Shutdown()                      {}
func (c *fakeContext) ShouldClose() bool              { return c.closeAfter > 0 && c.frames >= c.closeAfter }
func (c *fakeContext) GetFramebufferSize() (int, int) { return int(float64(c.width) * c.ratio), int(float64(c.height) * c.ratio) }
func (c *fakeContext) GetWindowSize() (int, int)      { return c.width, c.height }
func (c *fakeContext) PixelRatio() float64            { return c.ratio }
func (c *fakeContext) Time() float64                  { return c.now }
func (c *fakeContext) SetTitle(title string)          { c.titles = append(c.titles, title) }

func (c *fakeContext) EndFrame() {
	c.frames++
	if c.tick != nil {
		c.tick(c)
	}
}

var (
	_ graphics.GL      = (*fakeGL)(nil)
	_ graphics.Context = (*fakeContext)(nil)
)
