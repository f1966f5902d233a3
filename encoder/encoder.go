package encoder

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/richinsley/glsketch/log"
	"github.com/richinsley/glsketch/options"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var logger = log.New("encoder")

var (
	ErrNotStarted = errors.New("encoder: not started")
	ErrClosed     = errors.New("encoder: closed")
	ErrFrameSize  = errors.New("encoder: frame size mismatch")
)

// Encoder pipes raw RGBA frames into an ffmpeg process.
type Encoder struct {
	opts      *options.SketchOptions
	width     int
	height    int
	frameSize int
	goos      string

	mu         sync.Mutex
	pipeWriter *io.PipeWriter
	done       chan error
	frames     int64
	closed     bool
}

// New creates an encoder for frames of width x height pixels.
func New(opts *options.SketchOptions, width, height int) *Encoder {
	return &Encoder{
		opts:      opts,
		width:     width,
		height:    height,
		frameSize: width * height * 4,
		goos:      runtime.GOOS,
	}
}

// videoCodec picks the ffmpeg encoder for the requested codec. macOS gets the
// VideoToolbox hardware encoders; everything else uses the software ones.
func videoCodec(codec, goos string) string {
	hevc := strings.EqualFold(codec, "hevc")
	switch goos {
	case "darwin":
		if hevc {
			return "hevc_videotoolbox"
		}
		return "h264_videotoolbox"
	default:
		if hevc {
			return "libx265"
		}
		return "libx264"
	}
}

// InputArgs describes the raw frames written to ffmpeg's stdin.
func (e *Encoder) InputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", e.width, e.height),
		"r":       fmt.Sprintf("%d", e.opts.FPS),
	}
}

// OutputArgs describes the encoded file. GL read back is bottom row first,
// so frames are flipped vertically.
func (e *Encoder) OutputArgs() ffmpeg.KwArgs {
	outputArgs := ffmpeg.KwArgs{
		"vf":      "vflip",
		"c:v":     videoCodec(e.opts.Codec, e.goos),
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}
	if strings.EqualFold(e.opts.Codec, "hevc") && strings.HasSuffix(strings.ToLower(e.opts.OutputFile), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return outputArgs
}

func (e *Encoder) stream(input io.Reader) *ffmpeg.Stream {
	cmd := ffmpeg.Input("pipe:", e.InputArgs()).
		Output(e.opts.OutputFile, e.OutputArgs()).
		OverWriteOutput().
		ErrorToStdOut()
	if input != nil {
		cmd = cmd.WithInput(input)
	}
	if e.opts.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(e.opts.FFMPEGPath)
	}
	return cmd
}

// Args returns the ffmpeg command line the encoder runs.
func (e *Encoder) Args() []string {
	return e.stream(nil).GetArgs()
}

// Start launches ffmpeg in the background.
func (e *Encoder) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.pipeWriter != nil {
		return nil
	}

	pipeReader, pipeWriter := io.Pipe()
	cmd := e.stream(pipeReader)
	e.pipeWriter = pipeWriter
	e.done = make(chan error, 1)

	logger.Infof("starting ffmpeg: %s", strings.Join(e.Args(), " "))
	go func() {
		err := cmd.Run()
		// Unblock any pending writes if ffmpeg exits early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		e.done <- err
	}()
	return nil
}

// WriteFrame writes one RGBA frame. It blocks until ffmpeg has consumed it.
func (e *Encoder) WriteFrame(pixels []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.pipeWriter == nil {
		return ErrNotStarted
	}
	if len(pixels) != e.frameSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrFrameSize, e.frameSize, len(pixels))
	}
	if _, err := e.pipeWriter.Write(pixels); err != nil {
		return fmt.Errorf("failed to write frame %d to ffmpeg: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Close signals end of stream and waits for ffmpeg to finish.
func (e *Encoder) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	pipeWriter, done := e.pipeWriter, e.done
	e.mu.Unlock()

	if pipeWriter == nil {
		return nil
	}
	pipeWriter.Close()
	if err := <-done; err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	logger.Noticef("wrote %d frames to %s", e.Frames(), e.opts.OutputFile)
	return nil
}
