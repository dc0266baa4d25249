package renderbridge

import (
	"sync/atomic"
	"time"
)

// FrameInfo carries the timing of one frame. A new value is produced at
// frame start and remains valid for the duration of the frame.
type FrameInfo struct {
	// Frame is the 1-based frame sequence number.
	Frame uint64
	// FrameTime is the frame's nominal monotonic timestamp.
	FrameTime time.Time
	// Delta is the time advanced since the previous frame.
	Delta time.Duration
}

// TreeInfo carries per-traversal state for one tree preparation pass.
//
// ErrorHandler is transient: it is installed by RootNode.PrepareTree for
// the duration of a single traversal and cleared immediately after, so
// errors reported outside that window are not routed through it.
type TreeInfo struct {
	// Frame is the current frame's timing.
	Frame *FrameInfo
	// ErrorHandler receives unrecoverable inconsistencies detected during
	// the traversal. Nil outside a traversal.
	ErrorHandler ErrorHandler
}

// frameClock produces per-frame timing from a configured frame interval.
// The interval is external configuration, consumed rather than computed.
//
// Frame time is anchored at the first frame and advances by the interval
// each frame, using the monotonic clock, so wall-clock adjustments do not
// perturb animation timing.
type frameClock struct {
	interval atomic.Int64 // nanoseconds
	anchor   time.Time    // set on first beginFrame, render goroutine only
	frame    uint64       // render goroutine only
	elapsed  time.Duration
}

func newFrameClock(interval time.Duration) *frameClock {
	c := &frameClock{}
	c.interval.Store(int64(interval))
	return c
}

// setInterval updates the frame interval. Safe to call from any goroutine;
// takes effect at the next frame.
func (c *frameClock) setInterval(d time.Duration) {
	if d <= 0 {
		d = time.Second / 60
	}
	c.interval.Store(int64(d))
}

// beginFrame advances the clock by one frame and returns its timing.
// Render goroutine only.
func (c *frameClock) beginFrame() *FrameInfo {
	delta := time.Duration(c.interval.Load())
	if c.anchor.IsZero() {
		c.anchor = time.Now()
		delta = 0
	}
	c.frame++
	c.elapsed += delta
	return &FrameInfo{
		Frame:     c.frame,
		FrameTime: c.anchor.Add(c.elapsed),
		Delta:     delta,
	}
}
