package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/richinsley/glsketch/encoder"
	"github.com/richinsley/glsketch/glcore"
	"github.com/richinsley/glsketch/glfwcontext"
	"github.com/richinsley/glsketch/graphics"
	"github.com/richinsley/glsketch/headless"
	"github.com/richinsley/glsketch/options"
	"github.com/richinsley/glsketch/renderer"
	"github.com/richinsley/glsketch/shader"
	"github.com/richinsley/glsketch/translator"
	"github.com/urfave/cli"
)

// optionsFromContext fills SketchOptions from the command flags. Flags a
// command does not define keep their defaults.
func optionsFromContext(ctx *cli.Context) *options.SketchOptions {
	opts := options.New()
	opts.Width = ctx.Int("width")
	opts.Height = ctx.Int("height")
	opts.VertexPath = ctx.String("vert")
	opts.FragmentPath = ctx.String("frag")

	if ctx.IsSet("hidpi") {
		opts.HiDPI = ctx.Bool("hidpi")
	}
	if ctx.IsSet("vsync") {
		opts.VSync = ctx.BoolT("vsync")
	}
	opts.ShowStats = ctx.Bool("stats")

	if ctx.IsSet("duration") {
		opts.Duration = ctx.Duration("duration")
	}
	if ctx.IsSet("fps") {
		opts.FPS = ctx.Int("fps")
	}
	if ctx.IsSet("output") {
		opts.OutputFile = ctx.String("output")
	}
	if ctx.IsSet("codec") {
		opts.Codec = ctx.String("codec")
	}
	opts.FFMPEGPath = ctx.String("ffmpeg")
	return opts
}

// sketch bundles a drawing host, its GL binding and an initialized renderer.
type sketch struct {
	host     graphics.Context
	renderer *renderer.Renderer
	release  func()
}

// newHost opens a GLFW window, or an EGL pbuffer when headless is set.
// The returned release func tears the host down.
func newHost(opts *options.SketchOptions, visible, headlessHost bool) (graphics.Context, func(), error) {
	if headlessHost {
		host, err := headless.New(opts.Width, opts.Height)
		if err != nil {
			return nil, nil, err
		}
		return host, host.Shutdown, nil
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	window, err := glfwcontext.New(opts, visible)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, err
	}
	return window, func() {
		window.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

func newSketch(opts *options.SketchOptions, visible, headlessHost bool) (*sketch, error) {
	vertex, fragment, err := shader.Sources(opts.VertexPath, opts.FragmentPath)
	if err != nil {
		return nil, err
	}

	host, release, err := newHost(opts, visible, headlessHost)
	if err != nil {
		return nil, err
	}

	gl, err := glcore.New()
	if err != nil {
		release()
		return nil, err
	}
	logger.Infof("OpenGL version %s", gl.Version())

	tr, err := translator.NewGLSL()
	if err != nil {
		release()
		return nil, err
	}

	r := renderer.New(host, gl, tr, renderer.Shaders{Vertex: vertex, Fragment: fragment}, opts)
	if err = r.Initialize(); err != nil {
		release()
		return nil, err
	}
	return &sketch{host: host, renderer: r, release: release}, nil
}

func (s *sketch) close() {
	s.renderer.Shutdown()
	s.release()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Run opens a window and animates the shader until it is closed.
func Run(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := optionsFromContext(ctx)
	if err := opts.Validate(); err != nil {
		return err
	}

	s, err := newSketch(opts, true, false)
	if err != nil {
		return err
	}
	defer s.close()

	runCtx, cancel := signalContext()
	defer cancel()
	return s.renderer.Run(runCtx)
}

// Record renders the shader offscreen and encodes the frames with ffmpeg.
func Record(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := optionsFromContext(ctx)
	if err := opts.ValidateCapture(); err != nil {
		return err
	}

	s, err := newSketch(opts, false, ctx.Bool("headless"))
	if err != nil {
		return err
	}
	defer s.close()

	width, height := s.renderer.Viewport()
	enc := encoder.New(opts, width, height)
	if err = enc.Start(); err != nil {
		return err
	}

	runCtx, cancel := signalContext()
	defer cancel()

	captureErr := s.renderer.Capture(runCtx, enc, opts.TotalFrames(), opts.FrameStep())
	if err = enc.Close(); err != nil && captureErr == nil {
		captureErr = err
	}
	if captureErr != nil {
		return fmt.Errorf("recording %s failed: %w", opts.OutputFile, captureErr)
	}
	logger.Noticef("successfully rendered to %s", opts.OutputFile)
	return nil
}
