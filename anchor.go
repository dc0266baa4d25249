package renderbridge

import (
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// RootNode is the render-thread-visible anchor for the owner-side object
// tree. It buffers animating-node registrations until the next frame, and
// is the single point through which cross-thread messages are posted back
// to the owner goroutine's looper.
//
// A RootNode is bound to its looper at construction; there is no ad-hoc
// per-call lookup of the owner context.
type RootNode struct {
	looper  *Looper
	logger  *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter // guards error log spam, never delivery
	pending pendingRegistry
}

// NewRootNode creates the anchor bound to the owner goroutine's looper.
//
// A panic occurs if looper is nil: without an owner event loop no
// cross-thread delivery is possible, which is a programming error, not a
// runtime condition.
func NewRootNode(looper *Looper, options ...RootNodeOption) *RootNode {
	if looper == nil {
		panic(`renderbridge: must create RootNode with an owner looper`)
	}
	cfg, err := resolveRootNodeOptions(options)
	if err != nil {
		panic(err)
	}
	r := &RootNode{
		looper: looper,
		logger: cfg.logger,
	}
	if len(cfg.errorLogRates) > 0 {
		r.limiter = catrate.NewLimiter(cfg.errorLogRates)
	}
	return r
}

// RegisterAnimatingNode buffers node for attachment to the animation
// context at the start of the next frame. Intended to be called from the
// owner goroutine; there is no immediate effect on the render-side tree.
func (r *RootNode) RegisterAnimatingNode(node *RenderNode) {
	if node == nil {
		return
	}
	r.pending.append(node)
}

// post hands a unit of work to the owner goroutine's looper for later,
// asynchronous execution. It returns immediately and never blocks on
// delivery; units posted through the same anchor execute FIFO.
func (r *RootNode) post(h MessageHandler) {
	if err := r.looper.Send(h); err != nil {
		// The looper is gone; the unit of work is undeliverable. This is
		// only reachable during teardown.
		r.logger.Warning().Err(err).Log(`dropped cross-thread message`)
	}
}

// OnError implements ErrorHandler. It wraps message in an error unit of
// work and posts it for delivery on the owner goroutine. Each call posts
// exactly one unit; only the log output is rate limited.
func (r *RootNode) OnError(message string) {
	if r.limiter == nil {
		r.logger.Err().Str(`message`, message).Log(`rendering error`)
	} else if _, ok := r.limiter.Allow(message); ok {
		r.logger.Err().Str(`message`, message).Log(`rendering error`)
	}
	r.post(&errorMessage{looper: r.looper, message: message})
}

// PrepareTree runs one tree preparation pass with the anchor installed as
// the traversal's error handler. The handler is installed only for the
// duration of the pass and cleared immediately after, including when the
// traversal panics.
//
// Rendering goroutine only.
func (r *RootNode) PrepareTree(info *TreeInfo, prepare func(*TreeInfo)) {
	info.ErrorHandler = r
	defer func() {
		info.ErrorHandler = nil
	}()
	if prepare != nil {
		prepare(info)
	}
}
