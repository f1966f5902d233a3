package renderer

import (
	"fmt"
	"math"
	"time"
)

// statsWindow is how often the FPS figure is recomputed.
const statsWindow = time.Second

// FrameStats tracks frame timings for the FPS overlay. Times are host clock
// offsets, not wall clock instants.
type FrameStats struct {
	// Total frames rendered.
	Frames uint64

	// Time spent between Begin and End for the last frame.
	LastFrameTime time.Duration

	frameStart   time.Duration
	windowStart  time.Duration
	windowFrames int
	started      bool

	fps    float64
	minFPS float64
	maxFPS float64
}

// NewFrameStats returns an empty tracker.
func NewFrameStats() *FrameStats {
	return &FrameStats{minFPS: math.Inf(1)}
}

// Begin marks the start of a frame.
func (s *FrameStats) Begin(now time.Duration) {
	if !s.started {
		s.windowStart = now
		s.started = true
	}
	s.frameStart = now
}

// End marks the end of a frame. It returns true when the FPS figure was
// refreshed by this call.
func (s *FrameStats) End(now time.Duration) bool {
	s.Frames++
	s.windowFrames++
	s.LastFrameTime = now - s.frameStart

	elapsed := now - s.windowStart
	if elapsed < statsWindow {
		return false
	}

	s.fps = float64(s.windowFrames) / elapsed.Seconds()
	s.minFPS = math.Min(s.minFPS, s.fps)
	s.maxFPS = math.Max(s.maxFPS, s.fps)
	s.windowStart = now
	s.windowFrames = 0
	return true
}

// FPS returns the frame rate measured over the last completed window.
func (s *FrameStats) FPS() float64 {
	return s.fps
}

// String formats the stats like the classic FPS panel: "60 FPS (55-60)".
func (s *FrameStats) String() string {
	if math.IsInf(s.minFPS, 1) {
		return "-- FPS"
	}
	return fmt.Sprintf("%d FPS (%d-%d)", int(math.Round(s.fps)), int(math.Round(s.minFPS)), int(math.Round(s.maxFPS)))
}
