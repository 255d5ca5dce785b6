package handler

import (
	"net/http"

	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/ctx/journey"
)

// H is the interface to implement to be a valid handler
//
// Handle processes a request. target is the routing path of the request.
// A handler returns a TransportFault (or an error wrapping ErrFatal) to abort
// the dispatch, any other error is collected by its container.
type H interface {
	Start() error
	Stop() error
	Destroy() error
	Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error

	State() State
	Ctx() app.Ctx
	SetCtx(ctx app.Ctx)
}

// HandleFunc is the signature of a request handling function
type HandleFunc func(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error

// Func is a leaf handler calling a function for each request
type Func struct {
	Base

	fn HandleFunc
}

// NewFunc returns a handler calling fn for each request
func NewFunc(fn HandleFunc) *Func {
	return &Func{fn: fn}
}

func (f *Func) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	return f.fn(ctx, target, w, r)
}
