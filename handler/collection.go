package handler

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/ctx/journey"
	"github.com/stairlin/relay/log"
)

// Collection is a container which dispatches every request to all its
// children, in sequence order.
//
// Errors returned by children do not stop the dispatch. They are collected
// and returned once all children have been called, as an ApplicationFault
// when there is only one, or as a MultiFault otherwise. Transport faults
// are the exception, they abort the dispatch and they are returned as is.
type Collection struct {
	Base

	// mu guards the publication of handlers. Mutations also hold the
	// lifecycle lock, which must always be acquired first.
	mu                 sync.Mutex
	handlers           atomic.Value
	mutableWhenRunning bool

	initial []H
}

// Option configures a collection
type Option func(*Collection)

// WithMutableWhenRunning allows (or forbids) changing the sequence of
// handlers once the collection is started
func WithMutableWhenRunning(mutable bool) Option {
	return func(c *Collection) {
		c.mutableWhenRunning = mutable
	}
}

// WithHandlers sets the initial sequence of handlers
func WithHandlers(h ...H) Option {
	return func(c *Collection) {
		c.initial = append(c.initial, h...)
	}
}

// New returns a collection of the given handlers, which cannot be changed
// once started
func New(h ...H) *Collection {
	return NewCollection(WithHandlers(h...))
}

// NewCollection returns a stopped collection.
//
// It panics when one of the initial handlers is nil.
func NewCollection(opts ...Option) *Collection {
	c := &Collection{}
	c.handlers.Store([]H{})
	for _, opt := range opts {
		opt(c)
	}

	if _, err := c.setHandlers(c.initial); err != nil {
		panic(err)
	}
	c.initial = nil
	return c
}

// MutableWhenRunning returns whether the sequence can be changed once started
func (c *Collection) MutableWhenRunning() bool {
	return c.mutableWhenRunning
}

// Handlers returns a copy of the current sequence of handlers
func (c *Collection) Handlers() []H {
	return append([]H{}, c.snapshot()...)
}

// ChildHandlers returns all descendants of the collection
func (c *Collection) ChildHandlers() []H {
	return Expand(c, nil)
}

func (c *Collection) snapshot() []H {
	l, _ := c.handlers.Load().([]H)
	return l
}

// SetHandlers replaces the sequence of handlers and returns the previous one.
//
// Previous handlers are neither stopped nor destroyed. New handlers are bound
// to the app context of the collection, and they are started when the
// collection is already running. The sequence is left untouched on failure.
func (c *Collection) SetHandlers(l []H) ([]H, error) {
	c.lmu.Lock()
	defer c.lmu.Unlock()

	return c.setHandlers(l)
}

// AddHandler appends h to the sequence
func (c *Collection) AddHandler(h H) error {
	c.lmu.Lock()
	defer c.lmu.Unlock()

	old := c.snapshot()
	_, err := c.setHandlers(append(old[:len(old):len(old)], h))
	return err
}

// PrependHandler inserts h at the beginning of the sequence
func (c *Collection) PrependHandler(h H) error {
	c.lmu.Lock()
	defer c.lmu.Unlock()

	_, err := c.setHandlers(append([]H{h}, c.snapshot()...))
	return err
}

// RemoveHandler removes the first occurrence of h from the sequence. It does
// nothing when h is not part of it.
func (c *Collection) RemoveHandler(h H) error {
	c.lmu.Lock()
	defer c.lmu.Unlock()

	old := c.snapshot()
	for i, item := range old {
		if item != h {
			continue
		}

		l := make([]H, 0, len(old)-1)
		l = append(l, old[:i]...)
		l = append(l, old[i+1:]...)
		_, err := c.setHandlers(l)
		return err
	}
	return nil
}

// setHandlers must be called with the lifecycle lock held
func (c *Collection) setHandlers(l []H) ([]H, error) {
	switch s := c.State(); {
	case s == StateDestroying || s == StateDestroyed:
		return nil, &LifecycleError{Op: "set handlers", State: s, Err: ErrDestroyed}
	case s == StateStarted && !c.mutableWhenRunning:
		return nil, &LifecycleError{Op: "set handlers", State: s, Err: ErrStarted}
	}

	for _, h := range l {
		if err := CheckComposition(c, h); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.Ctx()
	for _, h := range l {
		if h.Ctx() != ctx {
			h.SetCtx(ctx)
		}
	}

	if c.State() == StateStarted {
		for i, h := range l {
			if h.State() == StateStarted {
				continue
			}
			if err := h.Start(); err != nil {
				return nil, &ApplicationFault{Index: i, Handler: h, Err: err}
			}
		}
	}

	old := c.snapshot()
	err := Publish(c, l, func() {
		c.handlers.Store(append([]H{}, l...))
	})
	if err != nil {
		return nil, err
	}
	c.trace("h.collection.set", "Handlers updated",
		log.Int("old", len(old)),
		log.Int("new", len(l)),
	)
	return old, nil
}

// SetCtx binds the collection and all its children to ctx
func (c *Collection) SetCtx(ctx app.Ctx) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Base.SetCtx(ctx)
	for _, h := range c.snapshot() {
		if h.Ctx() != ctx {
			h.SetCtx(ctx)
		}
	}
}

// Start starts all children in sequence order. It stops at the first
// failure, and the children already started are left running.
func (c *Collection) Start() error {
	return c.StartWith(func() error {
		for i, h := range c.snapshot() {
			if err := h.Start(); err != nil {
				return &ApplicationFault{Index: i, Handler: h, Err: err}
			}
		}
		c.trace("h.collection.start", "Collection started",
			log.Int("handlers", len(c.snapshot())),
		)
		return nil
	})
}

// Stop stops all children in reverse sequence order. Every child is stopped,
// even when some of them fail.
func (c *Collection) Stop() error {
	return c.StopWith(func() error {
		l := c.snapshot()
		var faults []*ApplicationFault
		for i := len(l) - 1; i >= 0; i-- {
			if err := l[i].Stop(); err != nil {
				faults = append(faults, &ApplicationFault{Index: i, Handler: l[i], Err: err})
			}
		}
		c.trace("h.collection.stop", "Collection stopped",
			log.Int("handlers", len(l)),
			log.Int("faults", len(faults)),
		)
		return collect(faults)
	})
}

// Destroy empties the collection and destroys all its previous children.
// The collection must be stopped.
//
// Children are destroyed outside of the lifecycle lock. Mutations attempted
// meanwhile fail with ErrDestroyed.
func (c *Collection) Destroy() error {
	return c.DestroyWith(func() error {
		c.mu.Lock()
		l := c.snapshot()
		c.handlers.Store([]H{})
		c.mu.Unlock()

		var faults []*ApplicationFault
		for i, h := range l {
			if err := h.Destroy(); err != nil {
				faults = append(faults, &ApplicationFault{Index: i, Handler: h, Err: err})
			}
		}
		return collect(faults)
	})
}

// Handle dispatches the request to all children in sequence order. It does
// nothing unless the collection is started.
func (c *Collection) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	if c.State() != StateStarted {
		return nil
	}

	var faults []*ApplicationFault
	for i, h := range c.snapshot() {
		err := h.Handle(ctx, target, w, r)
		if err == nil {
			continue
		}
		if IsTransport(err) || isFatal(err) {
			return err
		}
		faults = append(faults, &ApplicationFault{Index: i, Handler: h, Err: err})
	}

	if ctx != nil {
		ctx.Stats().Histogram("h.collection.faults", len(faults))
	}
	return collect(faults)
}

func (c *Collection) trace(tag, msg string, fields ...log.Field) {
	if ctx := c.Ctx(); ctx != nil {
		ctx.Trace(tag, msg, fields...)
	}
}
