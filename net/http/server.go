package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/ctx/journey"
	"github.com/stairlin/relay/handler"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/net"
)

// HealthPath is the path of the health check endpoint
const HealthPath = "/_health"

// A Server exposes a handler chain over HTTP
type Server struct {
	// mu orders the admission of requests with the start of a drain
	mu    sync.Mutex
	wg    sync.WaitGroup
	state uint32

	http http.Server

	root        handler.H
	middlewares []Middleware

	certFile string
	keyFile  string
}

// NewServer creates a new server dispatching requests to root and attaches
// the default middlewares
func NewServer(root handler.H, opts ...Option) *Server {
	s := &Server{root: root}
	s.Append(mwDebug)
	s.Append(mwStats)
	s.Append(mwLogging)
	s.Append(mwPanic)
	s.SetOptions(opts...)
	return s
}

// Append appends the given middleware to the call chain
func (s *Server) Append(m Middleware) {
	s.middlewares = append(s.middlewares, m)
}

// ActivateTLS activates TLS on this server. That means only incoming HTTPS
// connections are allowed.
//
// If the certificate is signed by a certificate authority, the certFile should
// be the concatenation of the server's certificate, any intermediates,
// and the CA's certificate.
func (s *Server) ActivateTLS(certFile, keyFile string) {
	s.certFile = certFile
	s.keyFile = keyFile
}

// SetOptions changes the server options
func (s *Server) SetOptions(opts ...Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// Handler returns the HTTP handler of the server, bound to ctx
func (s *Server) Handler(ctx app.Ctx) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(HealthPath, s.health).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").HandlerFunc(s.buildHandleFunc(ctx))
	return r
}

// Serve starts serving HTTP requests (blocking call)
func (s *Server) Serve(addr string, ctx app.Ctx) error {
	s.http.Addr = addr
	s.http.Handler = s.Handler(ctx)

	tlsEnabled := s.certFile != "" && s.keyFile != ""
	ctx.Trace("s.http.listen", "Listening...", log.String("addr", addr),
		log.Bool("tls", tlsEnabled),
	)

	s.mu.Lock()
	atomic.CompareAndSwapUint32(&s.state, net.StateDown, net.StateUp)
	s.mu.Unlock()

	var err error
	if tlsEnabled {
		err = s.http.ListenAndServeTLS(s.certFile, s.keyFile)
	} else {
		err = s.http.ListenAndServe()
	}
	atomic.CompareAndSwapUint32(&s.state, net.StateUp, net.StateDown)

	if err == http.ErrServerClosed {
		// Suppress error caused by a server Shutdown or Close
		return nil
	}
	return err
}

// Drain puts the server into drain mode. All new requests will be
// blocked with a 503 and it will block this call until all in-flight requests
// have been completed
func (s *Server) Drain() {
	s.mu.Lock()
	atomic.StoreUint32(&s.state, net.StateDrain)
	s.mu.Unlock()

	s.wg.Wait()                           // Wait for all in-flight requests to complete
	s.http.Shutdown(context.Background()) // Then close all idle connections
}

// admit registers an in-flight request, unless the server is draining
func (s *Server) admit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isState(net.StateDrain) {
		return false
	}
	s.wg.Add(1)
	return true
}

// isState checks the current server state
func (s *Server) isState(state uint32) bool {
	return atomic.LoadUint32(&s.state) == state
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.isState(net.StateDrain) {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) buildHandleFunc(app app.Ctx) http.HandlerFunc {
	serve := buildMiddlewareChain(s.middlewares, s.dispatch)

	return func(w http.ResponseWriter, r *http.Request) {
		// Add to waitgroup for a graceful shutdown
		if !s.admit() {
			app.Trace("http.draining", "Server is draining")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		defer s.wg.Done()

		// Assign unique request ID
		parent := r.Context()
		if timeout := app.Config().Request.Timeout(); timeout > 0 {
			var cancel context.CancelFunc
			parent, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		ctx := journey.NewWithContext(app, parent)

		// Wrap net/http parameters
		res := &responseWriter{http: w}
		req := &Request{
			startTime: time.Now(),
			HTTP:      r,
		}

		serve(ctx, res, req)
	}
}

// dispatch hands the request over to the chain and maps its outcome to a
// response
func (s *Server) dispatch(ctx journey.Ctx, w ResponseWriter, r *Request) {
	err := s.root.Handle(ctx, r.Target(), w, r.HTTP)
	switch {
	case err == nil:
		if !w.HasCode() {
			// No handler took care of this request
			w.WriteHeader(http.StatusNotFound)
		}
	case handler.IsTransport(err):
		// The connection is gone, there is nobody to reply to
		ctx.Warning("http.transport.err", "Transport fault", log.Error(err))
	default:
		ctx.Error("http.handle.err", "Chain fault", log.Error(err))
		if !w.HasCode() {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}
