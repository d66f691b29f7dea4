// Package timer tracks frame delta time and frames per second.
package timer

import "time"

// Timer measures time between frames.
type Timer struct {
	now      func() time.Time
	last     time.Time
	fpsStart time.Time
	frames   int
	fps      float64
	maxDelta float64
	elapsed  float64
}

// New starts a timer. Deltas are clamped to maxDelta seconds so a stall
// (debugger, window drag) does not produce one huge step; 0 disables it.
func New(maxDelta float64) *Timer {
	return newWithClock(time.Now, maxDelta)
}

func newWithClock(now func() time.Time, maxDelta float64) *Timer {
	t := now()
	return &Timer{now: now, last: t, fpsStart: t, maxDelta: maxDelta}
}

// Tick ends the current frame and returns its duration in seconds.
func (t *Timer) Tick() float64 {
	now := t.now()
	dt := now.Sub(t.last).Seconds()
	t.last = now
	if t.maxDelta > 0 && dt > t.maxDelta {
		dt = t.maxDelta
	}
	t.elapsed += dt

	t.frames++
	if window := now.Sub(t.fpsStart); window >= time.Second {
		t.fps = float64(t.frames) / window.Seconds()
		t.frames = 0
		t.fpsStart = now
	}
	return dt
}

// FPS returns the frame rate measured over the last full second.
func (t *Timer) FPS() float64 { return t.fps }

// Elapsed returns the sum of all deltas in seconds.
func (t *Timer) Elapsed() float64 { return t.elapsed }
