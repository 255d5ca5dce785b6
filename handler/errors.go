package handler

import (
	"fmt"
	"net"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrStarted is returned when the sequence of a running container cannot
	// be changed
	ErrStarted = errors.New("handler is started")
	// ErrNotStopped is returned when a handler must be stopped first
	ErrNotStopped = errors.New("handler is not stopped")
	// ErrDestroyed is returned when a destroyed handler is used again
	ErrDestroyed = errors.New("handler is destroyed")
	// ErrLoop is returned when a handler would become its own descendant
	ErrLoop = errors.New("handler loop")
	// ErrNilHandler is returned when a nil handler is attached to a container
	ErrNilHandler = errors.New("nil handler")
	// ErrFatal can be wrapped by a handler to abort a dispatch, like a
	// transport fault
	ErrFatal = errors.New("fatal handler error")
)

// LifecycleError is returned when an operation is not allowed in the current
// lifecycle state of a handler
type LifecycleError struct {
	Op    string
	State State
	Err   error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("cannot %s in state %s: %s", e.Op, e.State, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }

// CompositionError is returned when a handler cannot be attached to a container
type CompositionError struct {
	Handler H
	Err     error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("cannot attach handler %T: %s", e.Handler, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// TransportFault is an I/O failure on the underlying connection. It aborts
// the dispatch of the current request.
type TransportFault struct {
	Err error
}

// Transport marks err as a transport fault
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return &TransportFault{Err: err}
}

func (e *TransportFault) Error() string {
	return "transport fault: " + e.Err.Error()
}

func (e *TransportFault) Unwrap() error { return e.Err }

// IsTransport returns whether err is caused by a transport fault
func IsTransport(err error) bool {
	var tf *TransportFault
	if errors.As(err, &tf) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}

// ApplicationFault is an error returned by a child of a container, along with
// its position in the sequence
type ApplicationFault struct {
	Index   int
	Handler H
	Err     error
}

func (e *ApplicationFault) Error() string {
	return fmt.Sprintf("handler #%d (%T): %s", e.Index, e.Handler, e.Err)
}

func (e *ApplicationFault) Unwrap() error { return e.Err }

// MultiFault holds all faults captured during a single dispatch, in
// invocation order
type MultiFault struct {
	Faults []*ApplicationFault
}

func (e *MultiFault) Error() string {
	l := make([]string, len(e.Faults))
	for i, f := range e.Faults {
		l[i] = f.Error()
	}
	return fmt.Sprintf("%d faults: %s", len(e.Faults), strings.Join(l, "; "))
}

// Unwrap returns all faults, so that errors.Is and errors.As can inspect them
func (e *MultiFault) Unwrap() []error {
	l := make([]error, len(e.Faults))
	for i, f := range e.Faults {
		l[i] = f
	}
	return l
}

// Len returns the number of faults
func (e *MultiFault) Len() int { return len(e.Faults) }

// collect builds the outcome of a dispatch from the captured faults
func collect(faults []*ApplicationFault) error {
	switch len(faults) {
	case 0:
		return nil
	case 1:
		return faults[0]
	}
	return &MultiFault{Faults: faults}
}

func isFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}
