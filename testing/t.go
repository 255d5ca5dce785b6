// Package testing provides helpers to test components built on relay.
//
// It is usually imported as lt:
//
//	tt := lt.New(t)
//	ctx := tt.NewAppCtx("my-test")
package testing

import (
	"testing"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/ctx/journey"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/stats"
)

// T is a wrapper of go standard testing.T
// It adds a few additional functions useful to relay
type T struct {
	*testing.T

	logger log.Logger
	stats  stats.Stats
	config *config.Config
}

// New returns a new instance of T
func New(t *testing.T) *T {
	return &T{
		T:      t,
		logger: NewLogger(t, true),
		stats:  NewStats(t),
		config: &config.Config{},
	}
}

// Logger returns a relay logger interface
func (t *T) Logger() log.Logger {
	return t.logger
}

// Stats returns a relay stats interface
func (t *T) Stats() stats.Stats {
	return t.stats
}

// Config returns an empty relay config
func (t *T) Config() *config.Config {
	return t.config
}

// NewAppCtx returns a new application context
func (t *T) NewAppCtx(name string) app.Ctx {
	return app.NewCtx(name, t.Config(), t.Logger(), t.Stats())
}

// NewJourney returns a new journey running on a new application context
func (t *T) NewJourney(name string) journey.Ctx {
	return journey.New(t.NewAppCtx(name))
}

// DisableStrictMode will stop making error logs failing a test
func (t *T) DisableStrictMode() {
	t.logger = NewLogger(t.T, false)
}

// DidPanic returns whether the given function panicked, along with the
// recovered value
func DidPanic(f func()) (p bool, msg interface{}) {
	defer func() {
		if msg = recover(); msg != nil {
			p = true
		}
	}()
	f()
	return
}
