package renderbridge

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrLooperAlreadyRunning is returned when Run() is called on a looper
	// that is already running.
	ErrLooperAlreadyRunning = errors.New("renderbridge: looper is already running")

	// ErrLooperTerminated is returned when operations are attempted on a
	// terminated looper.
	ErrLooperTerminated = errors.New("renderbridge: looper has been terminated")

	// ErrReentrantRun is returned when Run() is called from within the loop
	// itself.
	ErrReentrantRun = errors.New("renderbridge: cannot call Run() from within the loop")

	// ErrProxyDestroyed is returned when work is submitted to a RenderProxy
	// after Destroy.
	ErrProxyDestroyed = errors.New("renderbridge: render proxy has been destroyed")

	// ErrProxyStopped is returned by RenderProxy.SyncAndDrawFrame while
	// drawing is stopped via StopDrawing.
	ErrProxyStopped = errors.New("renderbridge: render proxy is not drawing")
)

// RenderError is an unrecoverable rendering-thread error, marshalled across
// the thread boundary and surfaced on the owner goroutine.
//
// The Message text is exactly as reported by the rendering goroutine; it is
// never rewritten in transit.
type RenderError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Message == "" {
		return "rendering error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and
// [errors.As].
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// PanicError wraps a value recovered from a panicking unit of work or
// animation driver.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("renderbridge: recovered from panic: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// If the panic Value is not an error (e.g. a string), returns nil.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
