package options

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Defaults applied by New.
const (
	DefaultWidth    = 1280
	DefaultHeight   = 720
	DefaultFPS      = 60
	DefaultDuration = 10 * time.Second
	DefaultOutput   = "output.mp4"
	DefaultCodec    = "h264"
	DefaultTitle    = "glsketch"
)

var (
	ErrInvalidSize     = errors.New("options: width and height must be positive")
	ErrInvalidFPS      = errors.New("options: fps must be positive")
	ErrInvalidDuration = errors.New("options: duration must be positive")
	ErrInvalidCodec    = errors.New("options: unsupported codec")
)

// SketchOptions collects everything the hosts and the renderer are configured with.
type SketchOptions struct {
	Title  string
	Width  int
	Height int

	// Shader sources. Empty paths select the embedded defaults.
	VertexPath   string
	FragmentPath string

	// HiDPI scales the viewport by the host pixel ratio.
	HiDPI     bool
	VSync     bool
	ShowStats bool

	// Capture settings.
	Duration   time.Duration
	FPS        int
	OutputFile string
	Codec      string
	FFMPEGPath string
}

// New returns options populated with defaults.
func New() *SketchOptions {
	return &SketchOptions{
		Title:      DefaultTitle,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		VSync:      true,
		Duration:   DefaultDuration,
		FPS:        DefaultFPS,
		OutputFile: DefaultOutput,
		Codec:      DefaultCodec,
	}
}

// Validate checks the interactive settings.
func (o *SketchOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w (got %dx%d)", ErrInvalidSize, o.Width, o.Height)
	}
	return nil
}

// ValidateCapture checks the settings used by offscreen capture.
func (o *SketchOptions) ValidateCapture() error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.FPS <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidFPS, o.FPS)
	}
	if o.Duration <= 0 {
		return fmt.Errorf("%w (got %s)", ErrInvalidDuration, o.Duration)
	}
	switch strings.ToLower(o.Codec) {
	case "h264", "hevc":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCodec, o.Codec)
	}
	return nil
}

// TotalFrames is the number of frames a capture of Duration at FPS produces.
func (o *SketchOptions) TotalFrames() int {
	if o.FPS <= 0 || o.Duration <= 0 {
		return 0
	}
	return int(o.Duration * time.Duration(o.FPS) / time.Second)
}

// FrameStep is the fixed timer step used while capturing.
func (o *SketchOptions) FrameStep() time.Duration {
	if o.FPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(o.FPS)
}
