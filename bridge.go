package renderbridge

import (
	"errors"
	"fmt"

	"github.com/joeycumines/logiface"
)

// Frame protocol errors.
var (
	// ErrFrameInProgress is returned by StartFrame when the previous frame
	// has not completed its cycle.
	ErrFrameInProgress = errors.New("renderbridge: frame already in progress")

	// ErrFrameNotStarted is returned by RunRemainingAnimations when
	// StartFrame has not been called for the current frame.
	ErrFrameNotStarted = errors.New("renderbridge: frame not started")
)

// finishedEvent pairs a terminal animator with its listener, recorded on
// the rendering goroutine and delivered on the owner goroutine.
type finishedEvent struct {
	animator Animator
	listener AnimationListener
}

// AnimationBridge mediates between the per-frame animation driver and the
// two owner-thread-observable effects of animation: listener callbacks and
// error propagation. All methods run on the rendering goroutine.
//
// Per frame the bridge cycles FrameIdle → FrameStarted → FrameAdvanced →
// FrameFlushed → FrameIdle; see [FrameState].
type AnimationBridge struct {
	root   *RootNode
	clock  *frameClock
	driver AnimationDriver
	logger *logiface.Logger[logiface.Event]

	state frameState

	// Active set: nodes currently attached to the animation context, in
	// attachment order. attached tracks identity so re-registration of a
	// node already in the active set is a no-op.
	active   []*RenderNode
	attached map[*RenderNode]struct{}

	// Current frame's timing and finished-event batch. The batch is created
	// empty at frame start, appended to during advancement, and moved out
	// (not copied) at most once at frame end.
	frame       *FrameInfo
	events      []finishedEvent
	lastFlushed int
}

// newAnimationBridge wires a bridge to its anchor, clock, and driver.
func newAnimationBridge(root *RootNode, clock *frameClock, driver AnimationDriver, logger *logiface.Logger[logiface.Event]) *AnimationBridge {
	if driver == nil {
		driver = defaultDriver{}
	}
	return &AnimationBridge{
		root:     root,
		clock:    clock,
		driver:   driver,
		logger:   logger,
		attached: make(map[*RenderNode]struct{}),
	}
}

// StartFrame marks the start of a frame: pending registrations are drained
// into the active set, in insertion order, before the frame clock advances.
// Must be called exactly once per frame, before RunRemainingAnimations.
func (b *AnimationBridge) StartFrame() error {
	if !b.state.TryTransition(FrameIdle, FrameStarted) {
		return fmt.Errorf("%w (state %s)", ErrFrameInProgress, b.state.Load())
	}
	b.root.pending.drainInto(b.attachAnimatingNode)
	b.frame = b.clock.beginFrame()
	return nil
}

// attachAnimatingNode adds a node to the active set. Attachment is
// idempotent by node identity: a node registered more than once before the
// drain is attached once.
func (b *AnimationBridge) attachAnimatingNode(node *RenderNode) {
	if _, ok := b.attached[node]; ok {
		return
	}
	b.attached[node] = struct{}{}
	b.active = append(b.active, node)
}

// FrameInfo returns the current frame's timing, or nil between frames.
func (b *AnimationBridge) FrameInfo() *FrameInfo {
	return b.frame
}

// ActiveCount returns the size of the active set.
func (b *AnimationBridge) ActiveCount() int {
	return len(b.active)
}

// State returns the bridge's position within the frame cycle.
func (b *AnimationBridge) State() FrameState {
	return b.state.Load()
}

// FinishedLastFrame returns the number of finished-animation events flushed
// by the most recent RunRemainingAnimations call.
func (b *AnimationBridge) FinishedLastFrame() int {
	return b.lastFlushed
}

// RunRemainingAnimations advances every active animation for the current
// frame, then flushes the finished-event batch, if non-empty, as exactly
// one posted unit of work. Nothing is posted for a frame in which no
// animation finished.
//
// If the driver panics, the batch accumulated so far is still flushed
// before the condition is reported through the anchor's error channel:
// finished events already recorded are never lost to a later failure in the
// same frame. The recovered condition is also returned, wrapped.
func (b *AnimationBridge) RunRemainingAnimations(info *TreeInfo) error {
	if !b.state.TryTransition(FrameStarted, FrameAdvanced) {
		return fmt.Errorf("%w (state %s)", ErrFrameNotStarted, b.state.Load())
	}

	panicked := b.advance(info)

	// Post all the finished stuff. The batch is moved, not copied, and the
	// container resets to empty for the next frame.
	b.lastFlushed = len(b.events)
	if len(b.events) > 0 {
		b.logger.Debug().
			Uint64(`frame`, b.frame.Frame).
			Int(`finished`, len(b.events)).
			Log(`flushing finished animations`)
		b.root.post(newInvokeAnimationListeners(&b.events))
	}

	b.state.TryTransition(FrameAdvanced, FrameFlushed)
	b.frame = nil
	b.state.TryTransition(FrameFlushed, FrameIdle)

	if panicked != nil {
		err := PanicError{Value: panicked}
		b.root.OnError(err.Error())
		return err
	}
	return nil
}

// advance delegates to the animation driver, containing any panic so the
// frame can still flush and report.
func (b *AnimationBridge) advance(info *TreeInfo) (panicked any) {
	defer func() {
		panicked = recover()
	}()

	frame := b.frame
	if info != nil && info.Frame != nil {
		frame = info.Frame
	}

	b.active = b.driver.AdvanceAnimations(b.active, frame, b.CallOnFinished)

	// Prune identity tracking for nodes the driver dropped.
	if len(b.active) != len(b.attached) {
		clear(b.attached)
		for _, node := range b.active {
			b.attached[node] = struct{}{}
		}
	}

	return nil
}

// CallOnFinished records one finished animation for delivery at frame end.
// It never invokes the listener directly: listener invocation from the
// rendering goroutine would violate the listener's owner-thread affinity.
//
// Callable only during animation advancement; calling it outside that
// window is a programming error and panics.
func (b *AnimationBridge) CallOnFinished(animator Animator, listener AnimationListener) {
	if b.state.Load() != FrameAdvanced {
		panic(`renderbridge: CallOnFinished outside animation advancement`)
	}
	if listener == nil {
		return
	}
	b.events = append(b.events, finishedEvent{animator: animator, listener: listener})
}
