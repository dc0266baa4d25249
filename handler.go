package renderbridge

// MessageHandler is a deferred, single-shot unit of work posted across the
// thread boundary for execution on the owner goroutine's event loop.
//
// HandleMessage is invoked exactly once, on the loop goroutine, some time
// after the handler was posted. Handlers posted through the same Looper
// execute FIFO relative to each other. A handler must be self-sufficient:
// it must not rely on the poster still being alive when it runs.
type MessageHandler interface {
	HandleMessage()
}

// HandlerFunc adapts a plain function to the MessageHandler interface.
type HandlerFunc func()

// HandleMessage implements MessageHandler.
func (f HandlerFunc) HandleMessage() { f() }

// invokeAnimationListeners delivers a batch of finished-animation events on
// the owner goroutine. The batch is moved in (the source slice is taken
// over, not copied) and is never partially delivered: HandleMessage invokes
// every listener, in accumulation order, before returning control to the
// loop.
type invokeAnimationListeners struct {
	events []finishedEvent
}

// newInvokeAnimationListeners takes ownership of *events, clearing the
// source so the caller's batch container is empty afterwards.
func newInvokeAnimationListeners(events *[]finishedEvent) *invokeAnimationListeners {
	h := &invokeAnimationListeners{events: *events}
	*events = nil
	return h
}

// HandleMessage implements MessageHandler.
func (h *invokeAnimationListeners) HandleMessage() {
	for i := range h.events {
		h.events[i].listener.OnAnimationFinished(h.events[i].animator)
	}
	h.events = nil
}

// errorMessage surfaces a rendering-thread error on the owner goroutine.
// It holds its own reference to the looper, independent of the anchor that
// posted it, so delivery survives teardown of the anchor.
type errorMessage struct {
	looper  *Looper
	message string
}

// HandleMessage implements MessageHandler.
func (h *errorMessage) HandleMessage() {
	h.looper.raiseError(&RenderError{Message: h.message})
}
