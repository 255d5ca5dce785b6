// Package trace wraps a handler with OpenTelemetry tracing.
//
// Each request dispatched to the wrapped handler runs in its own span. The
// span context is carried by the journey, so that handlers further down the
// chain can create child spans.
package trace

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/ctx/journey"
	"github.com/stairlin/relay/handler"
)

const defaultTracerName = "github.com/stairlin/relay/handler/trace"

// Handler is a container holding a single child, which it traces
type Handler struct {
	handler.Base

	// mu serialises changes of the wrapped handler
	mu     sync.Mutex
	h      atomic.Value
	name   string
	tracer oteltrace.Tracer
}

// Option configures a tracing handler
type Option func(*Handler)

// WithTracerProvider sets the provider used to create the tracer. The global
// provider is used by default.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(h *Handler) {
		h.tracer = tp.Tracer(defaultTracerName)
	}
}

// WithSpanName sets the name of the spans. It defaults to "relay.handle".
func WithSpanName(name string) Option {
	return func(h *Handler) {
		h.name = name
	}
}

// New wraps h
func New(h handler.H, opts ...Option) (*Handler, error) {
	t := &Handler{name: "relay.handle"}
	for _, opt := range opts {
		opt(t)
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(defaultTracerName)
	}

	if err := t.SetHandler(h); err != nil {
		return nil, err
	}
	return t, nil
}

// child wraps the wrapped handler, since atomic.Value cannot hold nil
type child struct {
	h handler.H
}

// Handler returns the wrapped handler
func (t *Handler) Handler() handler.H {
	c, _ := t.h.Load().(child)
	return c.h
}

// SetHandler replaces the wrapped handler. The handler is started when the
// wrapper is already running.
func (t *Handler) SetHandler(h handler.H) error {
	if err := handler.CheckComposition(t, h); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch s := t.State(); s {
	case handler.StateDestroying, handler.StateDestroyed:
		return &handler.LifecycleError{Op: "set handler", State: s, Err: handler.ErrDestroyed}
	}
	if h.Ctx() != t.Ctx() {
		h.SetCtx(t.Ctx())
	}
	if t.State() == handler.StateStarted {
		if err := h.Start(); err != nil {
			return err
		}
	}
	return handler.Publish(t, []handler.H{h}, func() {
		t.h.Store(child{h: h})
	})
}

// Handlers returns the wrapped handler
func (t *Handler) Handlers() []handler.H {
	if h := t.Handler(); h != nil {
		return []handler.H{h}
	}
	return nil
}

// ChildHandlers returns all descendants of the wrapper
func (t *Handler) ChildHandlers() []handler.H {
	return handler.Expand(t, nil)
}

// SetCtx binds the wrapper and its child to ctx
func (t *Handler) SetCtx(ctx app.Ctx) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Base.SetCtx(ctx)
	if h := t.Handler(); h != nil && h.Ctx() != ctx {
		h.SetCtx(ctx)
	}
}

func (t *Handler) Start() error {
	return t.StartWith(func() error { return t.Handler().Start() })
}

func (t *Handler) Stop() error {
	return t.StopWith(func() error { return t.Handler().Stop() })
}

func (t *Handler) Destroy() error {
	return t.DestroyWith(func() error { return t.Handler().Destroy() })
}

// Handle calls the wrapped handler within a new span. A span without parent
// is created when ctx is nil, and the wrapped handler gets a nil ctx too.
func (t *Handler) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	var parent context.Context = context.Background()
	attrs := []attribute.KeyValue{
		attribute.String("http.target", target),
		attribute.String("http.method", r.Method),
	}
	if ctx != nil {
		parent = ctx
		attrs = append(attrs, attribute.String("relay.journey", ctx.UUID()))
	}

	c, span := t.tracer.Start(parent, t.name,
		oteltrace.WithSpanKind(oteltrace.SpanKindServer),
		oteltrace.WithAttributes(attrs...),
	)
	defer span.End()

	next := ctx
	if ctx != nil {
		next = journey.WithContext(ctx, c)
	}
	err := t.Handler().Handle(next, target, w, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("relay.transport_fault", handler.IsTransport(err)))
	}
	return err
}
