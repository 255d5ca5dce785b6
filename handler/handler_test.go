package handler_test

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/stairlin/relay/ctx/journey"
	"github.com/stairlin/relay/handler"
)

// recorder keeps track of the calls made to dummy handlers, across handlers
type recorder struct {
	mu sync.Mutex
	l  []string
}

func (r *recorder) add(s string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.l = append(r.l, s)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.l...)
}

type dummyH struct {
	handler.Base

	name string
	rec  *recorder

	err        error
	startErr   error
	stopErr    error
	destroyErr error
	panics     bool
	// destroyGate blocks Destroy until it is closed
	destroyGate chan struct{}

	handled   int32
	destroyed int32
}

func newDummyH(name string, rec *recorder) *dummyH {
	return &dummyH{name: name, rec: rec}
}

func (h *dummyH) Start() error {
	return h.StartWith(func() error {
		h.rec.add("start " + h.name)
		return h.startErr
	})
}

func (h *dummyH) Stop() error {
	return h.StopWith(func() error {
		h.rec.add("stop " + h.name)
		return h.stopErr
	})
}

func (h *dummyH) Destroy() error {
	return h.DestroyWith(func() error {
		if h.destroyGate != nil {
			<-h.destroyGate
		}
		atomic.AddInt32(&h.destroyed, 1)
		return h.destroyErr
	})
}

func (h *dummyH) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	atomic.AddInt32(&h.handled, 1)
	h.rec.add("handle " + h.name)
	if h.panics {
		panic("dummy panic")
	}
	return h.err
}

func (h *dummyH) Handled() int {
	return int(atomic.LoadInt32(&h.handled))
}

func (h *dummyH) Destroyed() int {
	return int(atomic.LoadInt32(&h.destroyed))
}

// writeH writes its mark to the response
type writeH struct {
	handler.Base

	mark string
}

func (h *writeH) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	_, err := w.Write([]byte(h.mark))
	return err
}
