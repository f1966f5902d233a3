//go:build js && wasm

package webgl

import (
	"encoding/binary"
	"fmt"
	"math"
	"syscall/js"

	"github.com/richinsley/glsketch/graphics"
)

type glConsts struct {
	arrayBuffer    int
	staticDraw     int
	floatType      int
	triangles      int
	depthTest      int
	colorBufferBit int
	depthBufferBit int
	compileStatus  int
	linkStatus     int
	vertexShader   int
	fragmentShader int
	rgba           int
	unsignedByte   int
	packAlignment  int

	framebuffer      int
	renderbuffer     int
	texture2D        int
	colorAttachment0 int
	depthAttachment  int
	depthComponent   int
	textureMinFilter int
	textureMagFilter int
	linear           int
	complete         int
}

// GL implements graphics.GL on a WebGL rendering context. WebGL objects are
// kept in a handle table so the renderer only sees integer ids.
type GL struct {
	gl     js.Value
	vaoExt js.Value
	webgl2 bool
	consts glConsts

	nextID  uint32
	objects map[uint32]js.Value

	// Color texture and depth renderbuffer ids owned by each framebuffer.
	attachments map[uint32][2]uint32

	// Uniform locations are JS objects too; index 0 is reserved.
	locations []js.Value
}

// NewGL acquires a rendering context from the canvas, trying webgl2 first.
func NewGL(canvas *Canvas) (*GL, error) {
	g := &GL{
		objects:     make(map[uint32]js.Value),
		attachments: make(map[uint32][2]uint32),
		locations:   []js.Value{js.Null()},
	}
	for _, name := range []string{"webgl2", "webgl", "experimental-webgl"} {
		ctx := canvas.element.Call("getContext", name)
		if ctx.Truthy() {
			g.gl = ctx
			g.webgl2 = name == "webgl2"
			logger.Infof("acquired %s context", name)
			break
		}
	}
	if !g.gl.Truthy() {
		return nil, graphics.ErrNoContext
	}
	if !g.webgl2 {
		g.vaoExt = g.gl.Call("getExtension", "OES_vertex_array_object")
	}
	g.initConsts()
	return g, nil
}

func (g *GL) initConsts() {
	g.consts = glConsts{
		arrayBuffer:    g.gl.Get("ARRAY_BUFFER").Int(),
		staticDraw:     g.gl.Get("STATIC_DRAW").Int(),
		floatType:      g.gl.Get("FLOAT").Int(),
		triangles:      g.gl.Get("TRIANGLES").Int(),
		depthTest:      g.gl.Get("DEPTH_TEST").Int(),
		colorBufferBit: g.gl.Get("COLOR_BUFFER_BIT").Int(),
		depthBufferBit: g.gl.Get("DEPTH_BUFFER_BIT").Int(),
		compileStatus:  g.gl.Get("COMPILE_STATUS").Int(),
		linkStatus:     g.gl.Get("LINK_STATUS").Int(),
		vertexShader:   g.gl.Get("VERTEX_SHADER").Int(),
		fragmentShader: g.gl.Get("FRAGMENT_SHADER").Int(),
		rgba:           g.gl.Get("RGBA").Int(),
		unsignedByte:   g.gl.Get("UNSIGNED_BYTE").Int(),
		packAlignment:  g.gl.Get("PACK_ALIGNMENT").Int(),

		framebuffer:      g.gl.Get("FRAMEBUFFER").Int(),
		renderbuffer:     g.gl.Get("RENDERBUFFER").Int(),
		texture2D:        g.gl.Get("TEXTURE_2D").Int(),
		colorAttachment0: g.gl.Get("COLOR_ATTACHMENT0").Int(),
		depthAttachment:  g.gl.Get("DEPTH_ATTACHMENT").Int(),
		depthComponent:   g.gl.Get("DEPTH_COMPONENT16").Int(),
		textureMinFilter: g.gl.Get("TEXTURE_MIN_FILTER").Int(),
		textureMagFilter: g.gl.Get("TEXTURE_MAG_FILTER").Int(),
		linear:           g.gl.Get("LINEAR").Int(),
		complete:         g.gl.Get("FRAMEBUFFER_COMPLETE").Int(),
	}
	if g.webgl2 {
		g.consts.depthComponent = g.gl.Get("DEPTH_COMPONENT24").Int()
	}
}

func (g *GL) store(v js.Value) uint32 {
	if !v.Truthy() {
		return 0
	}
	g.nextID++
	g.objects[g.nextID] = v
	return g.nextID
}

func (g *GL) object(id uint32) js.Value {
	if v, ok := g.objects[id]; ok {
		return v
	}
	return js.Null()
}

func (g *GL) release(id uint32) js.Value {
	v := g.object(id)
	delete(g.objects, id)
	return v
}

func (g *GL) EnableDepthTest() {
	g.gl.Call("enable", g.consts.depthTest)
}

func (g *GL) ClearColor(r, gr, b, a float32) {
	g.gl.Call("clearColor", r, gr, b, a)
}

func (g *GL) Clear() {
	g.gl.Call("clear", g.consts.colorBufferBit|g.consts.depthBufferBit)
}

func (g *GL) Viewport(x, y, width, height int32) {
	g.gl.Call("viewport", x, y, width, height)
}

func (g *GL) CreateShader(stage graphics.ShaderStage) graphics.Shader {
	shaderType := g.consts.vertexShader
	if stage == graphics.FragmentStage {
		shaderType = g.consts.fragmentShader
	}
	return graphics.Shader(g.store(g.gl.Call("createShader", shaderType)))
}

func (g *GL) ShaderSource(shader graphics.Shader, source string) {
	g.gl.Call("shaderSource", g.object(uint32(shader)), source)
}

func (g *GL) CompileShader(shader graphics.Shader) {
	g.gl.Call("compileShader", g.object(uint32(shader)))
}

func (g *GL) ShaderStatus(shader graphics.Shader) (bool, string) {
	s := g.object(uint32(shader))
	if g.gl.Call("getShaderParameter", s, g.consts.compileStatus).Bool() {
		return true, ""
	}
	return false, g.gl.Call("getShaderInfoLog", s).String()
}

func (g *GL) DeleteShader(shader graphics.Shader) {
	g.gl.Call("deleteShader", g.release(uint32(shader)))
}

func (g *GL) CreateProgram() graphics.Program {
	return graphics.Program(g.store(g.gl.Call("createProgram")))
}

func (g *GL) AttachShader(program graphics.Program, shader graphics.Shader) {
	g.gl.Call("attachShader", g.object(uint32(program)), g.object(uint32(shader)))
}

func (g *GL) LinkProgram(program graphics.Program) {
	g.gl.Call("linkProgram", g.object(uint32(program)))
}

func (g *GL) ProgramStatus(program graphics.Program) (bool, string) {
	p := g.object(uint32(program))
	if g.gl.Call("getProgramParameter", p, g.consts.linkStatus).Bool() {
		return true, ""
	}
	return false, g.gl.Call("getProgramInfoLog", p).String()
}

func (g *GL) UseProgram(program graphics.Program) {
	g.gl.Call("useProgram", g.object(uint32(program)))
}

func (g *GL) DeleteProgram(program graphics.Program) {
	g.gl.Call("deleteProgram", g.release(uint32(program)))
}

// Vertex array objects are core in WebGL2 and an extension in WebGL1. Without
// either, the single attribute binding lives in global state.
func (g *GL) CreateVertexArray() graphics.VertexArray {
	switch {
	case g.webgl2:
		return graphics.VertexArray(g.store(g.gl.Call("createVertexArray")))
	case g.vaoExt.Truthy():
		return graphics.VertexArray(g.store(g.vaoExt.Call("createVertexArrayOES")))
	}
	return 0
}

func (g *GL) BindVertexArray(vao graphics.VertexArray) {
	switch {
	case g.webgl2:
		g.gl.Call("bindVertexArray", g.object(uint32(vao)))
	case g.vaoExt.Truthy():
		g.vaoExt.Call("bindVertexArrayOES", g.object(uint32(vao)))
	}
}

func (g *GL) DeleteVertexArray(vao graphics.VertexArray) {
	v := g.release(uint32(vao))
	switch {
	case g.webgl2:
		g.gl.Call("deleteVertexArray", v)
	case g.vaoExt.Truthy():
		g.vaoExt.Call("deleteVertexArrayOES", v)
	}
}

func (g *GL) CreateBuffer() graphics.Buffer {
	return graphics.Buffer(g.store(g.gl.Call("createBuffer")))
}

func (g *GL) BindArrayBuffer(buffer graphics.Buffer) {
	g.gl.Call("bindBuffer", g.consts.arrayBuffer, g.object(uint32(buffer)))
}

func (g *GL) ArrayBufferData(data []float32) {
	g.gl.Call("bufferData", g.consts.arrayBuffer, float32Array(data), g.consts.staticDraw)
}

func (g *GL) DeleteBuffer(buffer graphics.Buffer) {
	g.gl.Call("deleteBuffer", g.release(uint32(buffer)))
}

func (g *GL) GetAttribLocation(program graphics.Program, name string) int32 {
	return int32(g.gl.Call("getAttribLocation", g.object(uint32(program)), name).Int())
}

func (g *GL) EnableVertexAttribArray(index uint32) {
	g.gl.Call("enableVertexAttribArray", index)
}

func (g *GL) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	g.gl.Call("vertexAttribPointer", index, size, g.consts.floatType, false, stride, offset)
}

func (g *GL) GetUniformLocation(program graphics.Program, name string) int32 {
	loc := g.gl.Call("getUniformLocation", g.object(uint32(program)), name)
	if loc.IsNull() || loc.IsUndefined() {
		return -1
	}
	g.locations = append(g.locations, loc)
	return int32(len(g.locations) - 1)
}

func (g *GL) location(loc int32) js.Value {
	if loc <= 0 || int(loc) >= len(g.locations) {
		return js.Null()
	}
	return g.locations[loc]
}

func (g *GL) Uniform1f(loc int32, v float32) {
	g.gl.Call("uniform1f", g.location(loc), v)
}

func (g *GL) Uniform2fv(loc int32, v [2]float32) {
	g.gl.Call("uniform2fv", g.location(loc), []interface{}{v[0], v[1]})
}

func (g *GL) DrawTriangles(first, count int32) {
	g.gl.Call("drawArrays", g.consts.triangles, first, count)
}

func (g *GL) CreateFramebuffer(width, height int32) (graphics.Framebuffer, error) {
	fbo := g.store(g.gl.Call("createFramebuffer"))
	g.gl.Call("bindFramebuffer", g.consts.framebuffer, g.object(fbo))

	color := g.store(g.gl.Call("createTexture"))
	g.gl.Call("bindTexture", g.consts.texture2D, g.object(color))
	g.gl.Call("texImage2D", g.consts.texture2D, 0, g.consts.rgba, width, height, 0, g.consts.rgba, g.consts.unsignedByte, js.Null())
	g.gl.Call("texParameteri", g.consts.texture2D, g.consts.textureMinFilter, g.consts.linear)
	g.gl.Call("texParameteri", g.consts.texture2D, g.consts.textureMagFilter, g.consts.linear)
	g.gl.Call("framebufferTexture2D", g.consts.framebuffer, g.consts.colorAttachment0, g.consts.texture2D, g.object(color), 0)

	depth := g.store(g.gl.Call("createRenderbuffer"))
	g.gl.Call("bindRenderbuffer", g.consts.renderbuffer, g.object(depth))
	g.gl.Call("renderbufferStorage", g.consts.renderbuffer, g.consts.depthComponent, width, height)
	g.gl.Call("framebufferRenderbuffer", g.consts.framebuffer, g.consts.depthAttachment, g.consts.renderbuffer, g.object(depth))

	status := g.gl.Call("checkFramebufferStatus", g.consts.framebuffer).Int()
	g.gl.Call("bindFramebuffer", g.consts.framebuffer, js.Null())

	g.attachments[fbo] = [2]uint32{color, depth}
	if status != g.consts.complete {
		g.DeleteFramebuffer(graphics.Framebuffer(fbo))
		return 0, fmt.Errorf("offscreen framebuffer is not complete (status 0x%x)", status)
	}
	return graphics.Framebuffer(fbo), nil
}

func (g *GL) BindFramebuffer(fb graphics.Framebuffer) {
	if fb == 0 {
		g.gl.Call("bindFramebuffer", g.consts.framebuffer, js.Null())
		return
	}
	g.gl.Call("bindFramebuffer", g.consts.framebuffer, g.object(uint32(fb)))
}

func (g *GL) DeleteFramebuffer(fb graphics.Framebuffer) {
	if a, ok := g.attachments[uint32(fb)]; ok {
		g.gl.Call("deleteTexture", g.release(a[0]))
		g.gl.Call("deleteRenderbuffer", g.release(a[1]))
		delete(g.attachments, uint32(fb))
	}
	g.gl.Call("deleteFramebuffer", g.release(uint32(fb)))
}

func (g *GL) ReadPixels(x, y, width, height int32, dst []byte) {
	pixels := js.Global().Get("Uint8Array").New(len(dst))
	g.gl.Call("pixelStorei", g.consts.packAlignment, 1)
	g.gl.Call("readPixels", x, y, width, height, g.consts.rgba, g.consts.unsignedByte, pixels)
	js.CopyBytesToGo(dst, pixels)
}

// float32Array copies data into a new JS Float32Array.
func float32Array(data []float32) js.Value {
	raw := make([]byte, len(data)*4)
	for i, f := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	bytes := js.Global().Get("Uint8Array").New(len(raw))
	js.CopyBytesToJS(bytes, raw)
	return js.Global().Get("Float32Array").New(bytes.Get("buffer"))
}

var _ graphics.GL = (*GL)(nil)
