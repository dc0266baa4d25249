package renderbridge

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// proxyTaskBuffer is the capacity of the render task channel. Submission
// blocks once the buffer is full, providing natural backpressure on the
// owner side.
const proxyTaskBuffer = 256

// RenderProxy is the thread-safe command proxy for the rendering
// goroutine: it ships units of work onto that goroutine and drives the
// per-frame lifecycle (tree preparation, animation advancement, event
// flushing) through the AnimationBridge.
//
// The proxy owns the rendering goroutine, which is locked to its OS thread
// for its lifetime.
type RenderProxy struct {
	root     *RootNode
	bridge   *AnimationBridge
	clock    *frameClock
	logger   *logiface.Logger[logiface.Event]
	profiler *FrameProfiler
	prepare  func(*TreeInfo)

	tasks chan func()

	stopped atomic.Bool // StopDrawing / resumed by NotifyFramePending

	destroyOnce sync.Once
	quit        chan struct{}
	done        chan struct{}
}

// NewRenderProxy creates the proxy and starts its rendering goroutine.
//
// A panic occurs if root is nil, or if an invalid option is provided.
func NewRenderProxy(root *RootNode, options ...ProxyOption) *RenderProxy {
	if root == nil {
		panic(`renderbridge: must create RenderProxy with a RootNode`)
	}
	cfg, err := resolveProxyOptions(options)
	if err != nil {
		panic(err)
	}

	p := &RenderProxy{
		root:     root,
		clock:    newFrameClock(cfg.frameInterval),
		logger:   cfg.logger,
		profiler: cfg.profiler,
		prepare:  cfg.prepare,
		tasks:    make(chan func(), proxyTaskBuffer),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.bridge = newAnimationBridge(root, p.clock, cfg.driver, cfg.logger)

	go p.renderLoop()

	return p
}

// renderLoop is the rendering goroutine: it executes posted tasks in order
// until destroyed, then drains what remains.
func (p *RenderProxy) renderLoop() {
	defer close(p.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	p.logger.Debug().Log(`render thread started`)
	defer p.logger.Debug().Log(`render thread stopped`)

	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.quit:
			// Drain already-submitted tasks so PostAndWait callers racing
			// Destroy are not left waiting.
			for {
				select {
				case task := <-p.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Post submits a unit of work to the rendering goroutine, fire-and-forget.
// Tasks execute in submission order. Returns ErrProxyDestroyed after
// Destroy.
func (p *RenderProxy) Post(task func()) error {
	if task == nil {
		return nil
	}
	select {
	case <-p.quit:
		return ErrProxyDestroyed
	case p.tasks <- task:
		return nil
	}
}

// PostAndWait submits a unit of work to the rendering goroutine and blocks
// until it has executed, or ctx expires.
func (p *RenderProxy) PostAndWait(ctx context.Context, task func()) error {
	if task == nil {
		return nil
	}
	doneCh := make(chan struct{})
	if err := p.Post(func() {
		defer close(doneCh)
		task()
	}); err != nil {
		return err
	}
	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fence blocks until every task posted before the call has executed.
func (p *RenderProxy) Fence(ctx context.Context) error {
	return p.PostAndWait(ctx, func() {})
}

// SetFrameInterval updates the nominal frame interval. Safe to call from
// any goroutine; takes effect at the next frame.
func (p *RenderProxy) SetFrameInterval(d time.Duration) {
	p.clock.setInterval(d)
}

// StopDrawing suspends frame production: subsequent SyncAndDrawFrame calls
// fail with ErrProxyStopped until NotifyFramePending.
func (p *RenderProxy) StopDrawing() {
	p.stopped.Store(true)
}

// NotifyFramePending signals that the owner side intends to produce a
// frame, resuming a proxy suspended by StopDrawing.
func (p *RenderProxy) NotifyFramePending() {
	p.stopped.Store(false)
}

// SyncAndDrawFrame runs one complete frame on the rendering goroutine:
// frame start (pending registrations attached, clock advanced), one tree
// preparation pass with the anchor installed as error handler, animation
// advancement, and the finished-event flush. It blocks until the frame
// completes or ctx expires.
func (p *RenderProxy) SyncAndDrawFrame(ctx context.Context) error {
	if p.stopped.Load() {
		return ErrProxyStopped
	}

	var frameErr error
	err := p.PostAndWait(ctx, func() {
		frameErr = p.doFrame()
	})
	if err != nil {
		return err
	}
	return frameErr
}

// doFrame executes the frame lifecycle. Rendering goroutine only.
func (p *RenderProxy) doFrame() error {
	started := time.Now()

	if err := p.bridge.StartFrame(); err != nil {
		return err
	}

	info := &TreeInfo{Frame: p.bridge.FrameInfo()}
	p.root.PrepareTree(info, p.prepare)

	animated := p.bridge.ActiveCount()
	err := p.bridge.RunRemainingAnimations(info)

	if p.profiler != nil {
		p.profiler.Record(FrameSample{
			Frame:    p.clock.frame,
			Duration: time.Since(started),
			Animated: animated,
			Finished: p.bridge.FinishedLastFrame(),
		})
	}

	return err
}

// Destroy stops the rendering goroutine, waits for it to drain, and
// flushes the attached profiler, if any. Idempotent; subsequent calls
// return nil immediately.
func (p *RenderProxy) Destroy(ctx context.Context) error {
	var err error
	p.destroyOnce.Do(func() {
		close(p.quit)
		select {
		case <-p.done:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
		if p.profiler != nil {
			err = p.profiler.Shutdown(ctx)
		}
	})
	return err
}
