package renderbridge

import (
	"sync/atomic"
)

// LooperState represents the current state of a Looper.
//
// State Machine:
//
//	StateAwake (0) → StateRunning (2)        [Run()]
//	StateRunning (2) → StateSleeping (3)     [idle wait via CAS]
//	StateSleeping (3) → StateRunning (2)     [wakeup via CAS]
//	StateRunning/Sleeping → StateTerminating [Shutdown()/Close()]
//	StateTerminating (4) → StateTerminated (1)
//	StateTerminated (1) → (terminal)
//
// Transition Rules:
//   - Use TryTransition() (CAS) for temporary states (Running, Sleeping)
//   - Use Store() only for the irreversible Terminated state
type LooperState uint64

const (
	// StateAwake indicates the looper has been created but not started.
	StateAwake LooperState = iota
	// StateTerminated indicates the looper has fully shut down.
	StateTerminated
	// StateRunning indicates the looper is actively executing handlers.
	StateRunning
	// StateSleeping indicates the looper is parked waiting for work.
	StateSleeping
	// StateTerminating indicates shutdown has been requested but not completed.
	StateTerminating
)

// String returns a human-readable representation of the state.
func (s LooperState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// looperState is a lock-free state machine with cache-line padding to
// prevent false sharing between cores.
type looperState struct { // betteralign:ignore
	_ [64]byte      //nolint:unused
	v atomic.Uint64 // State value
	_ [56]byte      //nolint:unused
}

// Load returns the current state atomically.
func (s *looperState) Load() LooperState {
	return LooperState(s.v.Load())
}

// Store atomically stores a new state. No transition validation.
func (s *looperState) Store(state LooperState) {
	s.v.Store(uint64(state))
}

// TryTransition attempts to atomically transition from one state to
// another. Returns true if the transition was successful.
func (s *looperState) TryTransition(from, to LooperState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

// FrameState represents the per-frame state of an AnimationBridge.
//
// State Machine (one cycle per frame, all transitions on the rendering
// goroutine):
//
//	FrameIdle → FrameStarted        [StartFrame()]
//	FrameStarted → FrameAdvanced    [RunRemainingAnimations()]
//	FrameAdvanced → FrameFlushed    [batch flushed, possibly empty]
//	FrameFlushed → FrameIdle        [end of RunRemainingAnimations()]
type FrameState uint64

const (
	// FrameIdle indicates no frame is in progress.
	FrameIdle FrameState = iota
	// FrameStarted indicates StartFrame has run and pending registrations
	// have been attached.
	FrameStarted
	// FrameAdvanced indicates animation advancement has completed for the
	// current frame.
	FrameAdvanced
	// FrameFlushed indicates the finished-event batch has been handed off
	// (or was empty).
	FrameFlushed
)

// String returns a human-readable representation of the state.
func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "Idle"
	case FrameStarted:
		return "Started"
	case FrameAdvanced:
		return "Advanced"
	case FrameFlushed:
		return "Flushed"
	default:
		return "Unknown"
	}
}

// frameState tracks the bridge's position within the frame cycle. Although
// all legal transitions happen on the rendering goroutine, the state is
// atomic so that misuse (e.g. CallOnFinished outside advancement) fails
// deterministically rather than racing.
type frameState struct {
	v atomic.Uint64
}

// Load returns the current state atomically.
func (s *frameState) Load() FrameState {
	return FrameState(s.v.Load())
}

// TryTransition attempts to atomically transition from one state to
// another. Returns true if the transition was successful.
func (s *frameState) TryTransition(from, to FrameState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}
