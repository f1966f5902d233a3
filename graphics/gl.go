package graphics

// Object handles. Zero is never a valid object, except Framebuffer 0 which
// names the host's default framebuffer.
type (
	Shader      uint32
	Program     uint32
	Buffer      uint32
	VertexArray uint32
	Framebuffer uint32
)

// ShaderStage selects the pipeline stage a shader is compiled for.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	if s == VertexStage {
		return "vertex"
	}
	return "fragment"
}

// GL is the subset of the OpenGL / WebGL API the renderer issues. Location
// lookups return -1 when the name is not active in the program.
type GL interface {
	EnableDepthTest()
	ClearColor(r, g, b, a float32)
	Clear()
	Viewport(x, y, width, height int32)

	CreateShader(stage ShaderStage) Shader
	ShaderSource(shader Shader, source string)
	CompileShader(shader Shader)
	// ShaderStatus reports the compile status and info log.
	ShaderStatus(shader Shader) (bool, string)
	DeleteShader(shader Shader)

	CreateProgram() Program
	AttachShader(program Program, shader Shader)
	LinkProgram(program Program)
	// ProgramStatus reports the link status and info log.
	ProgramStatus(program Program) (bool, string)
	UseProgram(program Program)
	DeleteProgram(program Program)

	CreateVertexArray() VertexArray
	BindVertexArray(vao VertexArray)
	DeleteVertexArray(vao VertexArray)

	CreateBuffer() Buffer
	BindArrayBuffer(buffer Buffer)
	// ArrayBufferData uploads data to the bound ARRAY_BUFFER with STATIC_DRAW usage.
	ArrayBufferData(data []float32)
	DeleteBuffer(buffer Buffer)

	GetAttribLocation(program Program, name string) int32
	EnableVertexAttribArray(index uint32)
	// VertexAttribPointer describes a tightly packed float attribute in the bound buffer.
	VertexAttribPointer(index uint32, size int32, stride int32, offset int)

	GetUniformLocation(program Program, name string) int32
	Uniform1f(location int32, v float32)
	Uniform2fv(location int32, v [2]float32)

	// DrawTriangles issues DrawArrays(TRIANGLES, first, count).
	DrawTriangles(first, count int32)

	// CreateFramebuffer allocates an offscreen framebuffer with an RGBA8 color
	// attachment and a 24-bit depth attachment. It fails when the framebuffer
	// is incomplete. The default framebuffer is bound again on return.
	CreateFramebuffer(width, height int32) (Framebuffer, error)
	BindFramebuffer(fb Framebuffer)
	DeleteFramebuffer(fb Framebuffer)

	// ReadPixels reads RGBA8 pixels from the current read framebuffer into dst.
	ReadPixels(x, y, width, height int32, dst []byte)
}
