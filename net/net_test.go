package net_test

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/net"
	lt "github.com/stairlin/relay/testing"
)

// TestServerRegistration tests whether a server that listen on a given
// address can be registered once and only once
func TestServerRegistration(t *testing.T) {
	tt := lt.New(t)
	reg := net.NewReg(tt.NewAppCtx("net-test"))
	addr := "localhost:8080"
	s := newDummyServer()

	// Register a first time
	if p, msg := lt.DidPanic(func() { reg.Add(addr, s) }); p {
		t.Error("expect to be able to add server", msg)
	}

	// Attempt to register another server on the same address
	if p, _ := lt.DidPanic(func() { reg.Add(addr, newDummyServer()) }); !p {
		t.Error("expect to fail when another server has already been registered on the same address")
	}
	require.Equal(t, 1, reg.Len())
}

// TestServeEmptyRegistry tests whether Serve returns an error when the registry
// is empty
func TestServeEmptyRegistry(t *testing.T) {
	tt := lt.New(t)
	reg := net.NewReg(tt.NewAppCtx("net-test"))

	if err := reg.Serve(); err != net.ErrEmptyReg {
		t.Error("expect Serve to return an error when the registry is empty", err)
	}
	require.NoError(t, reg.Wait())
}

// TestServeAndDrain tests whether all servers are started and then
// properly drained
func TestServeAndDrain(t *testing.T) {
	tt := lt.New(t)
	reg := net.NewReg(tt.NewAppCtx("net-test"))

	l := map[string]*dummyServer{
		"localhost:8080": newDummyServer(),
		"localhost:8888": newDummyServer(),
		":9000":          newDummyServer(),
		":9001":          newDummyServer(),
	}
	for addr, s := range l {
		reg.Add(addr, s)
	}

	require.NoError(t, reg.Serve())
	for addr, s := range l {
		select {
		case <-s.started:
		case <-time.After(time.Second):
			t.Fatal("expect server to be running", addr)
		}
	}

	reg.Drain()
	require.NoError(t, reg.Wait())
	for addr, s := range l {
		if s.IsRunning() {
			t.Error("expect server to have been stopped", addr)
		}
	}
	require.Equal(t, 0, reg.Len(), "expect servers to deregister themselves")
}

// TestWaitError tests whether a server failure is reported by Wait
func TestWaitError(t *testing.T) {
	tt := lt.New(t)
	tt.DisableStrictMode()
	reg := net.NewReg(tt.NewAppCtx("net-test"))

	s := newDummyServer()
	s.err = errors.New("address already in use")
	reg.Add(":9000", s)

	require.NoError(t, reg.Serve())
	err := reg.Wait()
	require.Error(t, err)
	require.Equal(t, s.err, errors.Cause(err))
	require.Contains(t, err.Error(), ":9000")
}

type dummyServer struct {
	mu sync.Mutex

	running bool
	err     error
	started chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

func newDummyServer() *dummyServer {
	return &dummyServer{
		started: make(chan struct{}),
		stop:    make(chan struct{}, 1),
		done:    make(chan struct{}, 1),
	}
}

func (s *dummyServer) Serve(addr string, ctx app.Ctx) error {
	if s.err != nil {
		return s.err
	}
	s.run(true)
	close(s.started)
	<-s.stop
	s.run(false)
	s.done <- struct{}{}
	return nil
}

func (s *dummyServer) Drain() {
	s.stop <- struct{}{}
	<-s.done
}

func (s *dummyServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *dummyServer) run(f bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = f
}
