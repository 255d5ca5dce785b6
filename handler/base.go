package handler

import (
	"sync"
	"sync/atomic"

	"github.com/stairlin/relay/ctx/app"
)

// Base implements the lifecycle shared by all handlers. It is meant to be
// embedded, and it must not be copied after first use.
//
// Handlers which need to acquire or release resources call StartWith,
// StopWith and DestroyWith from their own lifecycle methods.
type Base struct {
	// lmu serialises lifecycle transitions
	lmu   sync.Mutex
	state uint32
	ctx   atomic.Value
}

// binding wraps an app context, since atomic.Value cannot hold nil
type binding struct {
	ctx app.Ctx
}

// State returns the current lifecycle state
func (b *Base) State() State {
	return State(atomic.LoadUint32(&b.state))
}

func (b *Base) setState(s State) {
	atomic.StoreUint32(&b.state, uint32(s))
}

// Ctx returns the application context the handler is bound to
func (b *Base) Ctx() app.Ctx {
	v, _ := b.ctx.Load().(binding)
	return v.ctx
}

// SetCtx binds the handler to the given application context
func (b *Base) SetCtx(ctx app.Ctx) {
	b.ctx.Store(binding{ctx: ctx})
}

// Start starts the handler
func (b *Base) Start() error {
	return b.StartWith(nil)
}

// Stop stops the handler
func (b *Base) Stop() error {
	return b.StopWith(nil)
}

// Destroy destroys the handler
func (b *Base) Destroy() error {
	return b.DestroyWith(nil)
}

// StartWith moves the handler to the started state and runs hook on the way.
//
// Starting a started handler does nothing. When hook fails, the handler ends
// up in the failed state and the error is returned as is.
func (b *Base) StartWith(hook func() error) error {
	b.lmu.Lock()
	defer b.lmu.Unlock()

	switch s := b.State(); s {
	case StateStarted:
		return nil
	case StateDestroying, StateDestroyed:
		return &LifecycleError{Op: "start", State: s, Err: ErrDestroyed}
	}

	b.setState(StateStarting)
	if hook != nil {
		if err := hook(); err != nil {
			b.setState(StateFailed)
			return err
		}
	}
	b.setState(StateStarted)
	return nil
}

// StopWith moves the handler to the stopped state and runs hook on the way.
//
// Stopping a stopped (or destroyed) handler does nothing. The handler ends
// up stopped even when hook fails.
func (b *Base) StopWith(hook func() error) error {
	b.lmu.Lock()
	defer b.lmu.Unlock()

	switch b.State() {
	case StateStopped, StateDestroying, StateDestroyed:
		return nil
	}

	b.setState(StateStopping)
	var err error
	if hook != nil {
		err = hook()
	}
	b.setState(StateStopped)
	return err
}

// DestroyWith moves a stopped handler to the destroyed state and runs hook
// on the way. The handler is destroyed even when hook fails.
//
// The lifecycle lock is released while hook runs, the handler being in the
// destroying state meanwhile.
func (b *Base) DestroyWith(hook func() error) error {
	b.lmu.Lock()
	switch s := b.State(); s {
	case StateStopped:
	case StateDestroying, StateDestroyed:
		b.lmu.Unlock()
		return &LifecycleError{Op: "destroy", State: s, Err: ErrDestroyed}
	default:
		b.lmu.Unlock()
		return &LifecycleError{Op: "destroy", State: s, Err: ErrNotStopped}
	}
	b.setState(StateDestroying)
	b.lmu.Unlock()

	var err error
	if hook != nil {
		err = hook()
	}
	b.setState(StateDestroyed)
	return err
}
