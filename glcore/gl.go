package glcore

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/glsketch/graphics"
)

var glInitOnce sync.Once

// GL implements graphics.GL on top of the desktop OpenGL 4.1 core bindings.
// A context must be current on the calling thread.
type GL struct {
	attachments map[graphics.Framebuffer]framebufferAttachments
}

type framebufferAttachments struct {
	color uint32
	depth uint32
}

var _ graphics.GL = (*GL)(nil)

// New loads the OpenGL function pointers for the current context.
func New() (*GL, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	return &GL{attachments: make(map[graphics.Framebuffer]framebufferAttachments)}, nil
}

// Version returns the GL_VERSION string of the current context.
func (g *GL) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (g *GL) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
}

func (g *GL) ClearColor(r, gr, b, a float32) {
	gl.ClearColor(r, gr, b, a)
}

func (g *GL) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (g *GL) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (g *GL) CreateShader(stage graphics.ShaderStage) graphics.Shader {
	shaderType := uint32(gl.FRAGMENT_SHADER)
	if stage == graphics.VertexStage {
		shaderType = gl.VERTEX_SHADER
	}
	return graphics.Shader(gl.CreateShader(shaderType))
}

func (g *GL) ShaderSource(shader graphics.Shader, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(shader), 1, csources, nil)
	free()
}

func (g *GL) CompileShader(shader graphics.Shader) {
	gl.CompileShader(uint32(shader))
}

func (g *GL) ShaderStatus(shader graphics.Shader) (bool, string) {
	var status int32
	gl.GetShaderiv(uint32(shader), gl.COMPILE_STATUS, &status)
	if status != gl.FALSE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(uint32(shader), gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(shader), logLength, nil, gl.Str(logText))
	return false, strings.TrimRight(logText, "\x00")
}

func (g *GL) DeleteShader(shader graphics.Shader) {
	gl.DeleteShader(uint32(shader))
}

func (g *GL) CreateProgram() graphics.Program {
	return graphics.Program(gl.CreateProgram())
}

func (g *GL) AttachShader(program graphics.Program, shader graphics.Shader) {
	gl.AttachShader(uint32(program), uint32(shader))
}

func (g *GL) LinkProgram(program graphics.Program) {
	gl.LinkProgram(uint32(program))
}

func (g *GL) ProgramStatus(program graphics.Program) (bool, string) {
	var status int32
	gl.GetProgramiv(uint32(program), gl.LINK_STATUS, &status)
	if status != gl.FALSE {
		return true, ""
	}
	var logLength int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(program), logLength, nil, gl.Str(logText))
	return false, strings.TrimRight(logText, "\x00")
}

func (g *GL) UseProgram(program graphics.Program) {
	gl.UseProgram(uint32(program))
}

func (g *GL) DeleteProgram(program graphics.Program) {
	gl.DeleteProgram(uint32(program))
}

func (g *GL) CreateVertexArray() graphics.VertexArray {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return graphics.VertexArray(vao)
}

func (g *GL) BindVertexArray(vao graphics.VertexArray) {
	gl.BindVertexArray(uint32(vao))
}

func (g *GL) DeleteVertexArray(vao graphics.VertexArray) {
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

func (g *GL) CreateBuffer() graphics.Buffer {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return graphics.Buffer(vbo)
}

func (g *GL) BindArrayBuffer(buffer graphics.Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
}

func (g *GL) ArrayBufferData(data []float32) {
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (g *GL) DeleteBuffer(buffer graphics.Buffer) {
	id := uint32(buffer)
	gl.DeleteBuffers(1, &id)
}

func (g *GL) GetAttribLocation(program graphics.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
}

func (g *GL) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (g *GL) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (g *GL) GetUniformLocation(program graphics.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
}

func (g *GL) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (g *GL) Uniform2fv(location int32, v [2]float32) {
	gl.Uniform2fv(location, 1, &v[0])
}

func (g *GL) DrawTriangles(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func (g *GL) CreateFramebuffer(width, height int32) (graphics.Framebuffer, error) {
	var fbo, color, depth uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	gl.GenTextures(1, &color)
	gl.BindTexture(gl.TEXTURE_2D, color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)

	gl.GenRenderbuffers(1, &depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	fb := graphics.Framebuffer(fbo)
	g.attachments[fb] = framebufferAttachments{color: color, depth: depth}
	if status != gl.FRAMEBUFFER_COMPLETE {
		g.DeleteFramebuffer(fb)
		return 0, fmt.Errorf("offscreen framebuffer is not complete (status 0x%x)", status)
	}
	return fb, nil
}

func (g *GL) BindFramebuffer(fb graphics.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (g *GL) DeleteFramebuffer(fb graphics.Framebuffer) {
	if a, ok := g.attachments[fb]; ok {
		gl.DeleteTextures(1, &a.color)
		gl.DeleteRenderbuffers(1, &a.depth)
		delete(g.attachments, fb)
	}
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
}

func (g *GL) ReadPixels(x, y, width, height int32, dst []byte) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&dst[0]))
}
