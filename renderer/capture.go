package renderer

import (
	"context"
	"fmt"
	"time"
)

// FrameSink consumes captured frames. Pixels are tightly packed RGBA rows,
// bottom row first. The slice is reused for the next frame, so WriteFrame
// must not retain it.
type FrameSink interface {
	WriteFrame(pixels []byte) error
}

// Capture renders frames with a fixed timer step into an offscreen
// framebuffer, reads each one back and hands it to sink. The default
// framebuffer is bound again on return.
func (r *Renderer) Capture(ctx context.Context, sink FrameSink, frames int, step time.Duration) error {
	if r.state != Running {
		return ErrNotInitialized
	}
	if step <= 0 {
		return fmt.Errorf("capture step must be positive (got %s)", step)
	}

	width, height := r.Viewport()
	fb, err := r.gl.CreateFramebuffer(int32(width), int32(height))
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	r.gl.BindFramebuffer(fb)
	defer func() {
		r.gl.BindFramebuffer(0)
		r.gl.DeleteFramebuffer(fb)
	}()

	pixels := make([]byte, width*height*4)
	logger.Noticef("capturing %d frames at %dx%d (step %s)", frames, width, height, step)

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			logger.Warningf("capture interrupted at frame %d", i)
			return ctx.Err()
		default:
		}

		r.stats.Begin(hostDuration(r.timer.Seconds()))
		r.RenderFrame(step)
		r.gl.ReadPixels(0, 0, int32(width), int32(height), pixels)
		if r.stats.End(hostDuration(r.timer.Seconds())) {
			logger.Infof("captured %d/%d frames", i+1, frames)
		}

		if err := sink.WriteFrame(pixels); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
		r.context.EndFrame()
	}

	logger.Noticef("capture complete (timer at %.3fs)", r.timer.Seconds())
	return nil
}
