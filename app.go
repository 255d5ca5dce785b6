// Package relay is the application shell of a handler chain.
//
// An App owns the root collection of the chain, the servers exposing it and
// the ambient services (logger, stats, background jobs). It starts the chain
// before the servers, and it drains the servers before stopping the chain.
package relay

import (
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/stairlin/relay/bg"
	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/handler"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/log/logger"
	"github.com/stairlin/relay/net"
	"github.com/stairlin/relay/stats"
	sa "github.com/stairlin/relay/stats/adapter"
)

// App is the core structure for a new service
type App struct {
	mu sync.Mutex

	service string
	ctx     app.Ctx
	config  *config.Config
	stats   stats.Stats
	chain   *handler.Collection
	servers *net.Reg
	bg      *bg.Reg
	drain   bool
	ready   chan struct{}
	done    chan struct{}
}

// New creates a new App from the TOML config file at path
func New(service, path string) (*App, error) {
	c, err := config.LoadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load config")
	}
	return NewWithConfig(service, c)
}

// NewWithConfig creates a new App with the given config
func NewWithConfig(service string, c *config.Config) (*App, error) {
	// Create logger
	l, err := logger.New(service, &c.Log)
	if err != nil {
		return nil, errors.Wrap(err, "logger error")
	}

	// Build stats
	s, err := sa.New(c)
	if err != nil {
		return nil, errors.Wrap(err, "stats error")
	}
	s.SetLogger(l)
	s.Start()

	// Build app context
	ctx := app.NewCtx(service, c, l, s)

	// Build the root of the chain
	chain := handler.NewCollection(
		handler.WithMutableWhenRunning(c.Chain.MutableWhenRunning),
	)
	chain.SetCtx(ctx)

	a := &App{
		service: service,
		ctx:     ctx,
		config:  c,
		stats:   s,
		chain:   chain,
		servers: net.NewReg(ctx),
		bg:      bg.NewReg(l),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}

	// Start background services
	a.bg.Dispatch(newHeartbeat(a, 5*time.Second))

	return a, nil
}

// Config returns the relay config
func (a *App) Config() *config.Config {
	return a.config
}

// Ctx returns the application context
func (a *App) Ctx() app.Ctx {
	return a.ctx
}

// Chain returns the root collection of the chain
func (a *App) Chain() *handler.Collection {
	return a.chain
}

// Handle appends the given handlers to the chain
func (a *App) Handle(h ...handler.H) error {
	for _, item := range h {
		if err := a.chain.AddHandler(item); err != nil {
			return errors.Wrapf(err, "cannot attach handler %T", item)
		}
	}
	return nil
}

// RegisterServer adds the given server to the list of managed servers
func (a *App) RegisterServer(addr string, s net.Server) {
	a.servers.Add(addr, s)
}

// Serve starts the chain, then all servers, and blocks until the app is
// drained
func (a *App) Serve() error {
	defer func() {
		if recover := recover(); recover != nil {
			a.ctx.Error("relay.serve.panic", "App panic",
				log.Object("err", recover),
				log.String("stack", string(debug.Stack())),
			)

			// Attempt to clean resources before propagating the panic further up
			a.Drain()

			panic(recover)
		}
	}()

	a.ctx.Trace("relay.serve", "Start serving...")

	if err := a.chain.Start(); err != nil {
		a.ctx.Error("relay.serve.chain", "Cannot start chain", log.Error(err))
		a.Drain()
		return errors.Wrap(err, "cannot start chain")
	}

	if err := a.servers.Serve(); err != nil {
		a.ctx.Error("relay.serve.error", "Cannot start servers", log.Error(err))
		a.Drain()
		return err
	}

	errc := make(chan error, 1)
	go func() {
		errc <- a.servers.Wait()
	}()
	go a.trapSignals()

	// Notify all callees that the app is up and running
	close(a.ready)

	select {
	case <-a.done:
		return nil
	case err := <-errc:
		a.Drain()
		<-a.done
		return err
	}
}

// Ready holds the callee until the app is fully operational
func (a *App) Ready() {
	<-a.ready
}

// Drain notify all servers to enter in draining mode. It means they are no
// longer accepting new requests, but they can finish all in-flight requests.
//
// The chain is then stopped and destroyed.
func (a *App) Drain() {
	// Check if we are already stopping
	a.mu.Lock()
	if a.drain {
		a.mu.Unlock()
		return
	}
	a.drain = true
	a.mu.Unlock()

	a.ctx.Trace("relay.drain", "Start draining...")

	a.servers.Drain() // Block all new requests and drain in-flight requests
	if err := a.chain.Stop(); err != nil {
		a.ctx.Warning("relay.drain.stop", "Chain stopped with errors", log.Error(err))
	}
	if err := a.chain.Destroy(); err != nil {
		a.ctx.Warning("relay.drain.destroy", "Chain destroyed with errors", log.Error(err))
	}
	a.bg.Drain()

	a.ctx.Trace("relay.drain.done", "App drained")
	a.stats.Stop()

	close(a.done) // Release Serve()
}

func (a *App) trapSignals() {
	ch := make(chan os.Signal, 10)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		a.ctx.Trace("relay.signal", "Signal trapped", log.String("sig", sig.String()))
		a.Drain()
	case <-a.done:
	}
}
