// Package net manages the servers exposing a chain to the network.
package net

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/log"
)

const (
	// StateDown mode is the default state. The server is not ready to accept
	// new connections
	StateDown uint32 = iota
	// StateUp mode is when a server accepts connections
	StateUp
	// StateDrain mode is when a server stops accepting new connection, but wait
	// for all existing in-flight requests to complete
	StateDrain
)

// ErrEmptyReg is the error returned when there are no servers registered
var ErrEmptyReg = errors.New("there must be at least one registered server")

// Server is the interface to implement to be a valid server
type Server interface {
	Serve(addr string, ctx app.Ctx) error
	Drain()
}

// Reg (registry) holds a list of servers
type Reg struct {
	mu sync.Mutex

	ctx   app.Ctx
	l     map[string]Server
	g     *errgroup.Group
	drain bool
}

// NewReg builds a new registry
func NewReg(ctx app.Ctx) *Reg {
	return &Reg{
		ctx: ctx,
		l:   map[string]Server{},
	}
}

// Add adds the given server to the list of servers
func (r *Reg) Add(addr string, s Server) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.register(addr, s)
	if err != nil {
		// If we attempt to register on the same address, we can assume it is a
		// config error, therefore we should fail loudly and as fast as possible,
		// hence the panic.
		panic(err)
	}
}

// Len returns the number of registered servers
func (r *Reg) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.l)
}

// Serve starts all registered servers in background. Use Wait to block until
// all of them have stopped.
func (r *Reg) Serve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.l) == 0 {
		return ErrEmptyReg
	}

	r.ctx.Trace("server.serve.init", "Starting servers...")

	r.g = &errgroup.Group{}
	for addr, s := range r.l {
		addr, s := addr, s
		r.g.Go(func() error {
			// Deregister itself upon completion
			defer func() {
				r.ctx.Trace("server.serve.s.stop", "Server has stopped running",
					log.String("addr", addr),
					log.Type("server", s),
				)
				r.mu.Lock()
				r.deregister(addr)
				r.mu.Unlock()
			}()

			r.ctx.Trace("server.serve.s", "Server starts serving",
				log.String("addr", addr),
				log.Type("server", s),
			)
			err := s.Serve(addr, r.ctx)
			if err != nil {
				r.ctx.Error("server.serve.s", "Server error",
					log.String("addr", addr),
					log.Error(err),
				)
				return errors.Wrapf(err, "server listening on <%s>", addr)
			}
			return nil
		})
	}

	r.ctx.Trace("server.serve.ready", "All servers are running")
	return nil
}

// Wait blocks until all servers have stopped and returns the first error
// returned by one of them
func (r *Reg) Wait() error {
	r.mu.Lock()
	g := r.g
	r.mu.Unlock()

	if g == nil {
		return nil
	}
	return g.Wait()
}

// Drain notify all servers to enter in draining mode. It means they are no
// longer accepting new requests, but they can finish all in-flight requests
func (r *Reg) Drain() {
	r.mu.Lock()

	// Check if we are already draining
	if r.drain {
		r.mu.Unlock()
		return
	}

	// Flag registry as draining
	r.drain = true
	l := make([]Server, 0, len(r.l))
	for _, s := range r.l {
		l = append(l, s)
	}
	r.mu.Unlock()

	// Drain servers
	r.ctx.Trace("server.drain.init", "Start draining",
		log.Int("servers", len(l)),
	)
	g := errgroup.Group{}
	for _, s := range l {
		s := s
		r.ctx.Trace("server.drain.s", "Drain server",
			log.Type("server", s),
		)
		g.Go(func() error {
			s.Drain()
			return nil
		})
	}
	g.Wait()

	r.mu.Lock()
	r.drain = false
	r.mu.Unlock()
	r.ctx.Trace("server.drain.done", "All servers have been drained")
}

func (r *Reg) register(addr string, s Server) error {
	if _, ok := r.l[addr]; ok {
		return fmt.Errorf(
			"server listening on <%s> has already been registered (%T)",
			addr,
			r.l[addr],
		)
	}

	r.l[addr] = s
	return nil
}

func (r *Reg) deregister(addr string) {
	delete(r.l, addr)
}
