package renderbridge

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// execBudget bounds the number of handlers executed per loop iteration,
// so termination and cancellation checks are never starved.
const execBudget = 1024

// Looper is the owner goroutine's cooperative event loop. It executes
// posted MessageHandlers FIFO, interleaved with nothing else: the loop
// goroutine is expected to be dedicated to the loop for its lifetime.
//
// Send is safe to call from any goroutine and never blocks on delivery.
type Looper struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	logger  *logiface.Logger[logiface.Event]
	onError func(error)

	state looperState

	// Ingress queue, guarded by mu.
	mu    sync.Mutex
	queue messageQueue

	// Wake-up signal for the sleeping loop. Buffered with capacity 1; a
	// non-blocking send is sufficient because one pending wakeup subsumes
	// any number of them.
	wake chan struct{}

	// In-flight Send counter for shutdown synchronization.
	inflight atomic.Int64

	loopGoroutineID atomic.Uint64

	stopOnce sync.Once
	loopDone chan struct{}
}

// NewLooper creates a new Looper. A panic occurs if an invalid option is
// provided.
func NewLooper(options ...LooperOption) *Looper {
	cfg, err := resolveLooperOptions(options)
	if err != nil {
		panic(err)
	}
	return &Looper{
		logger:   cfg.logger,
		onError:  cfg.onError,
		wake:     make(chan struct{}, 1),
		loopDone: make(chan struct{}),
	}
}

// Run runs the event loop on the calling goroutine and blocks until fully
// stopped (via Shutdown(), Close(), or ctx cancellation).
//
// The calling goroutine is locked to its OS thread for the duration, as
// cross-thread consumers treat the loop goroutine as "the owner thread".
func (l *Looper) Run(ctx context.Context) error {
	if l.isLoopGoroutine() {
		return ErrReentrantRun
	}

	if !l.state.TryTransition(StateAwake, StateRunning) {
		if l.state.Load() == StateTerminated {
			return ErrLooperTerminated
		}
		return ErrLooperAlreadyRunning
	}

	defer close(l.loopDone)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.loopGoroutineID.Store(getGoroutineID())
	defer l.loopGoroutineID.Store(0)

	// Watcher goroutine to wake the loop on context cancellation.
	ctxDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			l.wakeUp()
		case <-ctxDone:
		}
	}()
	defer close(ctxDone)

	l.logger.Debug().Log(`looper started`)
	defer l.logger.Debug().Log(`looper stopped`)

	for {
		select {
		case <-ctx.Done():
			for {
				current := l.state.Load()
				if current == StateTerminating || current == StateTerminated {
					break
				}
				if l.state.TryTransition(current, StateTerminating) {
					break
				}
			}
			l.drainAndTerminate()
			return ctx.Err()
		default:
		}

		if state := l.state.Load(); state == StateTerminating || state == StateTerminated {
			l.drainAndTerminate()
			return nil
		}

		if l.processQueue() {
			continue
		}

		l.sleep(ctx)
	}
}

// processQueue executes up to execBudget queued handlers. Returns true if
// any handler ran.
func (l *Looper) processQueue() bool {
	var ran bool
	for i := 0; i < execBudget; i++ {
		l.mu.Lock()
		h, ok := l.queue.pop()
		l.mu.Unlock()
		if !ok {
			break
		}
		l.safeExecute(h)
		ran = true
	}
	return ran
}

// sleep parks the loop until woken. The queue is re-checked after the
// Running→Sleeping transition so a Send racing the transition cannot be
// lost: either the sender observes StateSleeping and signals wake, or the
// push happened before our re-check and we see it.
func (l *Looper) sleep(ctx context.Context) {
	if !l.state.TryTransition(StateRunning, StateSleeping) {
		return
	}

	l.mu.Lock()
	pending := l.queue.len()
	l.mu.Unlock()
	if pending > 0 {
		l.state.TryTransition(StateSleeping, StateRunning)
		return
	}

	if l.state.Load() == StateTerminating {
		return
	}

	select {
	case <-l.wake:
	case <-ctx.Done():
	}

	l.state.TryTransition(StateSleeping, StateRunning)
}

// drainAndTerminate finishes all queued and in-flight work, then marks the
// looper terminated. Handlers queued before termination are executed, not
// dropped: posted units of work must be delivered eventually.
func (l *Looper) drainAndTerminate() {
	// Terminated is set FIRST so new Send calls are rejected. Any Send that
	// checked state before this has already pushed (or will push while its
	// inflight count is held), and the drain below catches it.
	l.state.Store(StateTerminated)

	emptyChecks := 0
	const requiredEmptyChecks = 3
	for emptyChecks < requiredEmptyChecks {
		for l.inflight.Load() > 0 {
			runtime.Gosched()
		}

		drained := false
		for {
			l.mu.Lock()
			h, ok := l.queue.pop()
			l.mu.Unlock()
			if !ok {
				break
			}
			l.safeExecute(h)
			drained = true
		}

		if drained || l.inflight.Load() > 0 {
			emptyChecks = 0
		} else {
			emptyChecks++
			runtime.Gosched()
		}
	}
}

// Send posts a handler for asynchronous execution on the loop goroutine.
// It returns immediately and never blocks on delivery. Handlers posted
// through the same looper execute FIFO relative to each other.
//
// State policy during shutdown: submissions are accepted while terminating
// (the loop drains them before exiting) and rejected only once fully
// terminated.
func (l *Looper) Send(h MessageHandler) error {
	if h == nil {
		return nil
	}

	// Increment inflight FIRST, before checking state, so drainAndTerminate
	// cannot observe an empty queue while a push is still in progress.
	l.inflight.Add(1)
	defer l.inflight.Add(-1)

	if l.state.Load() == StateTerminated {
		return ErrLooperTerminated
	}

	l.mu.Lock()
	l.queue.push(h)
	l.mu.Unlock()

	if l.state.Load() == StateSleeping {
		l.wakeUp()
	}

	return nil
}

// wakeUp signals the sleeping loop. Non-blocking; one pending signal
// subsumes all others.
func (l *Looper) wakeUp() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Shutdown gracefully shuts down the looper, waiting for all queued
// handlers to execute. It blocks until termination completes or ctx
// expires.
func (l *Looper) Shutdown(ctx context.Context) error {
	var result error
	l.stopOnce.Do(func() {
		result = l.shutdownImpl(ctx)
	})
	if result == nil && l.state.Load() != StateTerminated {
		return ErrLooperTerminated
	}
	return result
}

func (l *Looper) shutdownImpl(ctx context.Context) error {
	for {
		current := l.state.Load()
		if current == StateTerminated || current == StateTerminating {
			return ErrLooperTerminated
		}

		if l.state.TryTransition(current, StateTerminating) {
			if current == StateAwake {
				// Never ran: nothing to drain on the loop goroutine.
				l.state.Store(StateTerminated)
				return nil
			}
			l.wakeUp()
			break
		}
	}

	select {
	case <-l.loopDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close requests termination without waiting for it to complete. Queued
// handlers are still drained by the loop goroutine before it exits.
func (l *Looper) Close() error {
	for {
		current := l.state.Load()
		if current == StateTerminated {
			return ErrLooperTerminated
		}

		if l.state.TryTransition(current, StateTerminating) {
			if current == StateAwake {
				l.state.Store(StateTerminated)
				return nil
			}
			l.wakeUp()
			return nil
		}
	}
}

// State returns the current looper state.
func (l *Looper) State() LooperState {
	return l.state.Load()
}

// raiseError surfaces an error on the loop goroutine: through the
// configured error handler if any, otherwise via the logger.
func (l *Looper) raiseError(err error) {
	if l.onError != nil {
		l.onError(err)
		return
	}
	l.logger.Err().Err(err).Log(`unhandled looper error`)
}

// safeExecute executes a handler with panic recovery. A panicking handler
// must not kill the loop; the recovered value is surfaced as an error.
func (l *Looper) safeExecute(h MessageHandler) {
	defer func() {
		if r := recover(); r != nil {
			l.raiseError(PanicError{Value: r})
		}
	}()

	h.HandleMessage()
}

// isLoopGoroutine checks if we're on the loop goroutine.
func (l *Looper) isLoopGoroutine() bool {
	loopID := l.loopGoroutineID.Load()
	if loopID == 0 {
		return false
	}
	return getGoroutineID() == loopID
}

// getGoroutineID returns the current goroutine's ID.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
