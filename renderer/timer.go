package renderer

import "time"

// FallbackStep is added to the timer for frames that carry no usable delta.
const FallbackStep = 0.05

// Timer accumulates elapsed seconds for the time uniform. It never decreases.
type Timer struct {
	seconds float64
}

// Advance adds delta to the timer and returns the new value. A non-positive
// delta means no timestamp was available and FallbackStep is used instead.
func (t *Timer) Advance(delta time.Duration) float64 {
	if delta > 0 {
		t.seconds += delta.Seconds()
	} else {
		t.seconds += FallbackStep
	}
	return t.seconds
}

// Seconds returns the accumulated time.
func (t *Timer) Seconds() float64 {
	return t.seconds
}
