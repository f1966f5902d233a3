package renderer

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/richinsley/glsketch/graphics"
	"github.com/richinsley/glsketch/options"
	"github.com/richinsley/glsketch/translator"
)

const float32Eps = 1e-5

func testShaders() Shaders {
	return Shaders{Vertex: "vertex source", Fragment: "fragment source"}
}

func newTestRenderer(t *testing.T, mutate func(gl *fakeGL, ctx *fakeContext, opts *options.SketchOptions)) (*Renderer, *fakeGL, *fakeContext) {
	t.Helper()
	gl := newFakeGL()
	ctx := &fakeContext{width: 800, height: 600, ratio: 1}
	opts := options.New()
	if mutate != nil {
		mutate(gl, ctx, opts)
	}
	return New(ctx, gl, nil, testShaders(), opts), gl, ctx
}

func TestInitializeSequence(t *testing.T) {
	r, gl, _ := newTestRenderer(t, nil)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	if r.State() != Running {
		t.Fatalf("expected state %s; got %s", Running, r.State())
	}

	order := []string{
		"EnableDepthTest",
		"CreateShader",
		"LinkProgram",
		"ProgramStatus",
		"UseProgram",
		"BindArrayBuffer",
		"ArrayBufferData",
		"VertexAttribPointer",
		"GetUniformLocation",
		"Viewport",
	}
	prev, prevName := -1, ""
	for _, name := range order {
		idx := gl.index(name)
		if idx == -1 {
			t.Fatalf("expected a %s call; trace:\n%s", name, gl.trace())
		}
		if idx < prev {
			t.Fatalf("expected %s to come after %s; trace:\n%s", name, prevName, gl.trace())
		}
		prev, prevName = idx, name
	}

	if c, _ := gl.last("VertexAttribPointer"); c.args[0] != uint32(0) || c.args[1] != int32(2) {
		t.Fatalf("expected a 2 component attribute at location 0; got %v", c)
	}
	if got := gl.count("DrawTriangles"); got != 0 {
		t.Fatalf("expected no draw calls during initialization; got %d", got)
	}
}

func TestGeometryIsFullScreenQuad(t *testing.T) {
	r, gl, _ := newTestRenderer(t, nil)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}

	exp := []float32{
		-1, -1,
		1, -1,
		-1, 1,
		-1, 1,
		1, -1,
		1, 1,
	}
	if len(gl.bufferData) != len(exp) {
		t.Fatalf("expected %d floats; got %d", len(exp), len(gl.bufferData))
	}
	for i := range exp {
		if gl.bufferData[i] != exp[i] {
			t.Fatalf("expected vertex data %v; got %v", exp, gl.bufferData)
		}
	}

	// Both triangles together must span the whole [-1,1] square.
	var minX, minY, maxX, maxY float32 = 1, 1, -1, -1
	for i := 0; i < len(exp); i += 2 {
		minX, maxX = min(minX, exp[i]), max(maxX, exp[i])
		minY, maxY = min(minY, exp[i+1]), max(maxY, exp[i+1])
	}
	if minX != -1 || minY != -1 || maxX != 1 || maxY != 1 {
		t.Fatalf("expected quad to cover [-1,1]x[-1,1]; got [%v,%v]x[%v,%v]", minX, maxX, minY, maxY)
	}
}

func TestTimerScenario(t *testing.T) {
	r, gl, _ := newTestRenderer(t, nil)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}

	for _, delta := range []time.Duration{16 * time.Millisecond, 16 * time.Millisecond, 33 * time.Millisecond} {
		r.RenderFrame(delta)
	}

	if got := r.Timer(); math.Abs(got-0.065) > 1e-9 {
		t.Fatalf("expected timer 0.065; got %v", got)
	}
	c, ok := gl.last("Uniform1f")
	if !ok {
		t.Fatal("expected the time uniform to be written")
	}
	if c.args[0] != int32(3) || math.Abs(float64(c.args[1].(float32))-0.065) > float32Eps {
		t.Fatalf("expected Uniform1f(3, 0.065); got %v", c)
	}
	if got := gl.count("DrawTriangles"); got != 3 {
		t.Fatalf("expected 3 draw calls; got %d", got)
	}
	if c, _ := gl.last("DrawTriangles"); c.args[0] != int32(0) || c.args[1] != int32(6) {
		t.Fatalf("expected DrawTriangles(0, 6); got %v", c)
	}
}

func TestRenderFrameFallbackStep(t *testing.T) {
	r, _, _ := newTestRenderer(t, nil)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}

	r.RenderFrame(0)
	r.RenderFrame(-time.Millisecond)
	r.RenderFrame(100 * time.Millisecond)

	if got := r.Timer(); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("expected timer 0.2; got %v", got)
	}
}

func TestLinkFailurePreventsDraw(t *testing.T) {
	r, gl, _ := newTestRenderer(t, func(gl *fakeGL, _ *fakeContext, _ *options.SketchOptions) {
		gl.linkFail = "ERROR: 0:1: 'gl_FragColor' : undeclared identifier"
	})

	err := r.Initialize()
	if !errors.Is(err, ErrLinkFailed) {
		t.Fatalf("expected ErrLinkFailed; got %v", err)
	}
	if !strings.Contains(err.Error(), "undeclared identifier") {
		t.Fatalf("expected the linker log in the error; got %q", err.Error())
	}
	if r.State() != Failed {
		t.Fatalf("expected state %s; got %s", Failed, r.State())
	}

	before := len(gl.calls)
	r.RenderFrame(16 * time.Millisecond)
	r.Resize(100, 100)
	if len(gl.calls) != before {
		t.Fatalf("expected no GL calls after a failed initialization; got:\n%s", gl.trace())
	}
	if got := gl.count("DrawTriangles"); got != 0 {
		t.Fatalf("expected no draw calls; got %d", got)
	}
	if gl.count("UseProgram") != 0 || gl.count("GetUniformLocation") != 0 {
		t.Fatalf("expected no uniform lookups before a successful link; trace:\n%s", gl.trace())
	}
	if err := r.Run(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected Run to fail with ErrNotInitialized; got %v", err)
	}
}

func TestCompileFailureSkipsLink(t *testing.T) {
	r, gl, _ := newTestRenderer(t, func(gl *fakeGL, _ *fakeContext, _ *options.SketchOptions) {
		gl.compileFail[graphics.FragmentStage] = "syntax error"
	})

	err := r.Initialize()
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("expected ErrCompileFailed; got %v", err)
	}
	if !strings.Contains(err.Error(), "syntax error") {
		t.Fatalf("expected the compiler log in the error; got %q", err.Error())
	}
	if gl.count("LinkProgram") != 0 {
		t.Fatal("expected no link attempt after a compile failure")
	}
	if gl.count("DeleteShader") != 2 {
		t.Fatalf("expected both shaders to be released; trace:\n%s", gl.trace())
	}
}

func TestNoContext(t *testing.T) {
	r := New(nil, nil, nil, testShaders(), nil)
	if err := r.Initialize(); !errors.Is(err, graphics.ErrNoContext) {
		t.Fatalf("expected ErrNoContext; got %v", err)
	}
	r.RenderFrame(time.Second)
	if r.Timer() != 0 {
		t.Fatalf("expected the timer to stay at zero; got %v", r.Timer())
	}
	if err := r.Initialize(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized on retry; got %v", err)
	}
}

func TestStepFollowsLogicalSize(t *testing.T) {
	specs := []struct {
		hidpi      bool
		expW, expH int
	}{
		{false, 400, 300},
		{true, 800, 600},
	}

	for specIndex, spec := range specs {
		r, _, ctx := newTestRenderer(t, func(_ *fakeGL, ctx *fakeContext, opts *options.SketchOptions) {
			ctx.width, ctx.height, ctx.ratio = 400, 300, 2
			opts.HiDPI = spec.hidpi
		})
		if err := r.Initialize(); err != nil {
			t.Fatal(err)
		}
		r.Step()

		w, h := r.Viewport()
		if w != spec.expW || h != spec.expH {
			t.Errorf("[spec %d] expected viewport %dx%d; got %dx%d", specIndex, spec.expW, spec.expH, w, h)
		}
		if fbW, fbH := ctx.GetFramebufferSize(); spec.hidpi && (fbW != w || fbH != h) {
			t.Errorf("[spec %d] expected the viewport to match the %dx%d framebuffer; got %dx%d", specIndex, fbW, fbH, w, h)
		}

		ctx.width, ctx.height = 500, 250
		r.Step()
		if w, h = r.Viewport(); w != 500*spec.expW/400 || h != 250*spec.expH/300 {
			t.Errorf("[spec %d] expected the viewport to follow a window resize; got %dx%d", specIndex, w, h)
		}
	}
}

func TestResize(t *testing.T) {
	specs := []struct {
		hidpi         bool
		ratio         float64
		width, height int
		expW, expH    int
	}{
		{false, 2, 640, 480, 640, 480},
		{true, 2, 640, 480, 1280, 960},
		{true, 1.5, 333, 201, 500, 302},
		{true, 1, 0, -10, 1, 1},
	}

	for specIndex, spec := range specs {
		r, gl, _ := newTestRenderer(t, func(_ *fakeGL, ctx *fakeContext, opts *options.SketchOptions) {
			ctx.ratio = spec.ratio
			opts.HiDPI = spec.hidpi
		})
		if err := r.Initialize(); err != nil {
			t.Fatal(err)
		}

		w, h := r.Resize(spec.width, spec.height)
		if w != spec.expW || h != spec.expH {
			t.Errorf("[spec %d] expected viewport %dx%d; got %dx%d", specIndex, spec.expW, spec.expH, w, h)
			continue
		}

		vp, _ := gl.last("Viewport")
		if vp.args[2] != int32(spec.expW) || vp.args[3] != int32(spec.expH) {
			t.Errorf("[spec %d] expected Viewport(0,0,%d,%d); got %v", specIndex, spec.expW, spec.expH, vp)
		}
		res, _ := gl.last("Uniform2fv")
		if res.args[0] != int32(4) || res.args[1] != float32(spec.expW) || res.args[2] != float32(spec.expH) {
			t.Errorf("[spec %d] expected resolution uniform %dx%d; got %v", specIndex, spec.expW, spec.expH, res)
		}
	}
}

func TestMissingUniformsAreSkipped(t *testing.T) {
	r, gl, _ := newTestRenderer(t, func(gl *fakeGL, _ *fakeContext, _ *options.SketchOptions) {
		gl.uniforms = map[string]int32{}
		gl.attribs = map[string]int32{}
	})
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	r.RenderFrame(time.Second)

	if gl.count("Uniform1f") != 0 || gl.count("Uniform2fv") != 0 {
		t.Fatalf("expected inactive uniforms not to be written; trace:\n%s", gl.trace())
	}
	if gl.count("DrawTriangles") != 1 {
		t.Fatal("expected the quad to be drawn anyway")
	}
	if c, _ := gl.last("EnableVertexAttribArray"); c.args[0] != uint32(0) {
		t.Fatalf("expected the quad to fall back to attribute 0; got %v", c)
	}
}

type mappingTranslator struct{}

func (mappingTranslator) Translate(source string, stage graphics.ShaderStage) (*translator.Source, error) {
	return translator.NewSource("translated "+source, map[string]string{
		"a_position":   "_ua_position",
		"time":         "_utime",
		"u_resolution": "_uu_resolution",
	}), nil
}

func TestTranslatedNamesAreUsed(t *testing.T) {
	gl := newFakeGL()
	gl.attribs = map[string]int32{"_ua_position": 1}
	gl.uniforms = map[string]int32{"_utime": 7, "_uu_resolution": 8}
	ctx := &fakeContext{width: 10, height: 10, ratio: 1}

	r := New(ctx, gl, mappingTranslator{}, testShaders(), options.New())
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	if c, _ := gl.last("ShaderSource"); c.args[1] != "translated fragment source" {
		t.Fatalf("expected translated source to be compiled; got %v", c)
	}
	if c, _ := gl.last("VertexAttribPointer"); c.args[0] != uint32(1) {
		t.Fatalf("expected mapped attribute location 1; got %v", c)
	}

	r.RenderFrame(time.Second)
	if c, _ := gl.last("Uniform1f"); c.args[0] != int32(7) {
		t.Fatalf("expected mapped time location 7; got %v", c)
	}
}

func TestRunLoop(t *testing.T) {
	r, gl, ctx := newTestRenderer(t, func(_ *fakeGL, ctx *fakeContext, opts *options.SketchOptions) {
		ctx.closeAfter = 5
		ctx.tick = func(c *fakeContext) {
			c.now += 0.02
			if c.frames == 3 {
				c.width, c.height = 1024, 768
			}
		}
		opts.ShowStats = true
	})
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	// The first frame measures the time spent since initialization.
	ctx.now = 0.01

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := gl.count("DrawTriangles"); got != 5 {
		t.Fatalf("expected 5 frames; got %d", got)
	}
	if exp := 0.01 + 4*0.02; math.Abs(r.Timer()-exp) > 1e-6 {
		t.Fatalf("expected timer %v; got %v", exp, r.Timer())
	}
	if w, h := r.Viewport(); w != 1024 || h != 768 {
		t.Fatalf("expected the loop to follow the resize; got %dx%d", w, h)
	}
	if got := r.Stats().Frames; got != 5 {
		t.Fatalf("expected 5 frames in stats; got %d", got)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	r, gl, _ := newTestRenderer(t, nil)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if gl.count("DrawTriangles") != 0 {
		t.Fatal("expected no frames after cancellation")
	}
}

func TestShutdown(t *testing.T) {
	r, gl, _ := newTestRenderer(t, nil)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	r.Shutdown()

	if r.State() != Terminated {
		t.Fatalf("expected state %s; got %s", Terminated, r.State())
	}
	for _, name := range []string{"DeleteBuffer", "DeleteVertexArray", "DeleteProgram"} {
		if gl.count(name) != 1 {
			t.Errorf("expected one %s call", name)
		}
	}
	r.RenderFrame(time.Second)
	if gl.count("DrawTriangles") != 0 {
		t.Fatal("expected no draws after shutdown")
	}
}
