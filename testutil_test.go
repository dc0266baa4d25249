package renderbridge

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// startLooper runs a looper on its own goroutine, waits until it is
// actually processing, and registers cleanup that tears it down.
func startLooper(t *testing.T, options ...LooperOption) *Looper {
	t.Helper()

	l := NewLooper(options...)

	runDone := make(chan error, 1)
	go func() {
		runDone <- l.Run(context.Background())
	}()

	t.Cleanup(func() {
		_ = l.Close()
		select {
		case <-runDone:
		case <-time.After(5 * time.Second):
			t.Error("looper did not stop")
		}
	})

	// Confirm the loop is live by round-tripping a handler.
	ready := make(chan struct{})
	if err := l.Send(HandlerFunc(func() { close(ready) })); err != nil {
		t.Fatalf("Send() on fresh looper: %v", err)
	}
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("looper did not start processing")
	}

	return l
}

// awaitLooper blocks until every handler posted to l before the call has
// executed.
func awaitLooper(t *testing.T, l *Looper) {
	t.Helper()
	done := make(chan struct{})
	if err := l.Send(HandlerFunc(func() { close(done) })); err != nil {
		t.Fatalf("Send() barrier: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("looper barrier timed out")
	}
}

// bufferLogger returns a logger writing JSON lines (no time field) to the
// returned buffer. The buffer must only be read once the log-producing
// goroutines have quiesced.
func bufferLogger(buf *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(buf),
			stumpy.WithTimeField(``),
		),
	).Logger()
}

// testAnimator finishes after a fixed number of frames.
type testAnimator struct {
	mu       sync.Mutex
	frames   int // frames remaining until finished
	advanced int
	listener AnimationListener
}

func newTestAnimator(frames int, listener AnimationListener) *testAnimator {
	return &testAnimator{frames: frames, listener: listener}
}

func (a *testAnimator) Animate(info *FrameInfo) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advanced++
	a.frames--
	return a.frames <= 0
}

func (a *testAnimator) Listener() AnimationListener {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listener
}

func (a *testAnimator) advancedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.advanced
}

// finishRecorder is an AnimationListener that records which animators
// finished, in delivery order, and on which goroutine it was invoked.
type finishRecorder struct {
	mu        sync.Mutex
	finished  []Animator
	goroutine []uint64
}

func (r *finishRecorder) OnAnimationFinished(animator Animator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, animator)
	r.goroutine = append(r.goroutine, getGoroutineID())
}

func (r *finishRecorder) order() []Animator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Animator(nil), r.finished...)
}

func (r *finishRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.finished)
}
