package renderer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/glsketch/graphics"
	"github.com/richinsley/glsketch/log"
	"github.com/richinsley/glsketch/options"
	"github.com/richinsley/glsketch/shader"
	"github.com/richinsley/glsketch/translator"
)

var logger = log.New("renderer")

// State is the renderer lifecycle stage.
type State int

const (
	Uninitialized State = iota
	Initializing
	Running
	Failed
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Failed:
		return "failed"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Shaders holds the untranslated vertex and fragment sources.
type Shaders struct {
	Vertex   string
	Fragment string
}

// Renderer owns the GL program, the quad geometry and the timer driving a
// full-viewport fragment shader.
type Renderer struct {
	context    graphics.Context
	gl         graphics.GL
	translator translator.Translator
	shaders    Shaders
	opts       *options.SketchOptions

	program graphics.Program
	vao     graphics.VertexArray
	vbo     graphics.Buffer

	timeLoc       int32
	resolutionLoc int32

	timer      Timer
	stats      *FrameStats
	state      State
	lastUpdate float64

	// Last logical size and pixel ratio seen from the host.
	logicalWidth  int
	logicalHeight int
	pixelRatio    float64

	viewportWidth  int
	viewportHeight int
	resolution     mgl32.Vec2
}

// New creates a renderer. No GL calls are made until Initialize.
func New(ctx graphics.Context, gl graphics.GL, tr translator.Translator, shaders Shaders, opts *options.SketchOptions) *Renderer {
	if tr == nil {
		tr = translator.Passthrough{}
	}
	if opts == nil {
		opts = options.New()
	}
	return &Renderer{
		context:       ctx,
		gl:            gl,
		translator:    tr,
		shaders:       shaders,
		opts:          opts,
		timeLoc:       -1,
		resolutionLoc: -1,
		stats:         NewFrameStats(),
	}
}

// Initialize compiles and links the shaders, uploads the quad, wires the
// attribute and uniforms and sizes the viewport. On failure the renderer
// moves to Failed and never touches the GL context again.
func (r *Renderer) Initialize() error {
	if r.state != Uninitialized {
		return ErrAlreadyInitialized
	}
	if r.context == nil || r.gl == nil {
		r.state = Failed
		logger.Error("GL drawing context not supported")
		return graphics.ErrNoContext
	}
	r.state = Initializing

	r.gl.EnableDepthTest()
	r.gl.ClearColor(0, 0, 0, 1)

	vertex, fragment, err := r.initializeProgram()
	if err != nil {
		r.state = Failed
		logger.Errorf("%v", err)
		return err
	}

	r.initializeModel(vertex)
	r.timeLoc = r.uniformLocation(shader.TimeUniform, fragment, vertex)
	r.resolutionLoc = r.uniformLocation(shader.ResolutionUniform, fragment, vertex)
	if r.timeLoc == -1 {
		logger.Warningf("uniform %q is not active; the effect will not animate", shader.TimeUniform)
	}

	r.state = Running
	r.lastUpdate = r.context.Time()
	r.syncSize()

	logger.Infof("renderer initialized (viewport %dx%d)", r.viewportWidth, r.viewportHeight)
	return nil
}

func (r *Renderer) initializeProgram() (vertex, fragment *translator.Source, err error) {
	if vertex, err = r.translator.Translate(r.shaders.Vertex, graphics.VertexStage); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}
	if fragment, err = r.translator.Translate(r.shaders.Fragment, graphics.FragmentStage); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}

	r.program, err = newProgram(r.gl, vertex.Code, fragment.Code)
	if err != nil {
		return nil, nil, err
	}
	r.gl.UseProgram(r.program)
	return vertex, fragment, nil
}

func (r *Renderer) initializeModel(vertex *translator.Source) {
	r.vao = r.gl.CreateVertexArray()
	r.gl.BindVertexArray(r.vao)

	r.vbo = r.gl.CreateBuffer()
	r.gl.BindArrayBuffer(r.vbo)
	r.gl.ArrayBufferData(QuadVertices())

	positionLoc := r.gl.GetAttribLocation(r.program, vertex.Name(shader.PositionAttribute))
	if positionLoc < 0 {
		logger.Warningf("attribute %q is not active; binding the quad to location 0", shader.PositionAttribute)
		positionLoc = 0
	}
	r.gl.EnableVertexAttribArray(uint32(positionLoc))
	r.gl.VertexAttribPointer(uint32(positionLoc), 2, 0, 0)
}

// uniformLocation resolves name through each translated source in turn.
func (r *Renderer) uniformLocation(name string, sources ...*translator.Source) int32 {
	for _, src := range sources {
		if loc := r.gl.GetUniformLocation(r.program, src.Name(name)); loc != -1 {
			return loc
		}
	}
	return -1
}

// Resize recomputes the viewport from a logical display size, scaled by the
// host pixel ratio when HiDPI is enabled, and updates the resolution uniform.
// It returns the viewport in pixels.
func (r *Renderer) Resize(width, height int) (int, int) {
	ratio := 1.0
	if r.opts.HiDPI && r.context != nil {
		ratio = r.context.PixelRatio()
	}
	return r.resize(width, height, ratio)
}

func (r *Renderer) resize(width, height int, ratio float64) (int, int) {
	if ratio <= 0 {
		ratio = 1
	}
	r.logicalWidth, r.logicalHeight, r.pixelRatio = width, height, ratio

	r.viewportWidth = max(int(math.Round(float64(width)*ratio)), 1)
	r.viewportHeight = max(int(math.Round(float64(height)*ratio)), 1)
	r.resolution = mgl32.Vec2{float32(r.viewportWidth), float32(r.viewportHeight)}

	if r.state != Running {
		return r.viewportWidth, r.viewportHeight
	}

	r.gl.Viewport(0, 0, int32(r.viewportWidth), int32(r.viewportHeight))
	if r.resolutionLoc != -1 {
		r.gl.Uniform2fv(r.resolutionLoc, r.resolution)
	}
	logger.Debugf("viewport resized to %dx%d (ratio %.2f)", r.viewportWidth, r.viewportHeight, ratio)
	return r.viewportWidth, r.viewportHeight
}

// syncSize polls the host's logical size and pixel ratio and resizes when
// either changed. The framebuffer size is derived, never polled.
func (r *Renderer) syncSize() {
	width, height := r.context.GetWindowSize()
	ratio := 1.0
	if r.opts.HiDPI {
		ratio = r.context.PixelRatio()
	}
	if r.viewportWidth != 0 && width == r.logicalWidth && height == r.logicalHeight && ratio == r.pixelRatio {
		return
	}
	r.resize(width, height, ratio)
}

// RenderFrame advances the timer by delta, writes it to the time uniform and
// draws the quad. A non-positive delta advances by FallbackStep. It does
// nothing unless the renderer is running.
func (r *Renderer) RenderFrame(delta time.Duration) {
	if r.state != Running {
		return
	}

	t := r.timer.Advance(delta)
	if r.timeLoc != -1 {
		r.gl.Uniform1f(r.timeLoc, float32(t))
	}

	r.gl.Clear()
	r.gl.DrawTriangles(0, QuadVertexCount)
}

// Step runs one iteration of the frame loop: measure the delta on the host
// clock, follow size changes, render and present.
func (r *Renderer) Step() {
	now := r.context.Time()
	delta := hostDuration(now - r.lastUpdate)
	r.lastUpdate = now

	r.stats.Begin(hostDuration(now))
	r.syncSize()
	r.RenderFrame(delta)
	if r.stats.End(hostDuration(r.context.Time())) {
		r.reportStats()
	}

	r.context.EndFrame()
}

func (r *Renderer) reportStats() {
	logger.Debugf("frame %d: %s", r.stats.Frames, r.stats)
	if r.opts.ShowStats {
		r.context.SetTitle(fmt.Sprintf("%s - %s", r.opts.Title, r.stats))
	}
}

// Run drives Step until the host asks to close or ctx is cancelled.
func (r *Renderer) Run(ctx context.Context) error {
	if r.state != Running {
		return ErrNotInitialized
	}

	logger.Notice("starting render loop")
	for !r.context.ShouldClose() {
		select {
		case <-ctx.Done():
			logger.Notice("render loop interrupted")
			return nil
		default:
		}
		r.Step()
	}
	logger.Noticef("render loop finished after %d frames", r.stats.Frames)
	return nil
}

// Shutdown releases the GL objects. The graphics context belongs to the caller.
func (r *Renderer) Shutdown() {
	if r.state == Running {
		r.gl.DeleteBuffer(r.vbo)
		r.gl.DeleteVertexArray(r.vao)
		r.gl.DeleteProgram(r.program)
	}
	r.state = Terminated
}

// Timer returns the current value of the time uniform in seconds.
func (r *Renderer) Timer() float64 {
	return r.timer.Seconds()
}

// Viewport returns the viewport size in pixels.
func (r *Renderer) Viewport() (int, int) {
	return r.viewportWidth, r.viewportHeight
}

func (r *Renderer) State() State {
	return r.state
}

func (r *Renderer) Stats() *FrameStats {
	return r.stats
}

func hostDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

func newProgram(gl graphics.GL, vertexShaderSource, fragmentShaderSource string) (graphics.Program, error) {
	vertexShader, err := compileShader(gl, vertexShaderSource, graphics.VertexStage)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(gl, fragmentShaderSource, graphics.FragmentStage)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	if ok, info := gl.ProgramStatus(program); !ok {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w\n\n%s", ErrLinkFailed, info)
	}
	return program, nil
}

func compileShader(gl graphics.GL, source string, stage graphics.ShaderStage) (graphics.Shader, error) {
	shader := gl.CreateShader(stage)
	gl.ShaderSource(shader, source)
	gl.CompileShader(shader)

	if ok, info := gl.ShaderStatus(shader); !ok {
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", ErrCompileFailed, stage, info)
	}
	return shader, nil
}
