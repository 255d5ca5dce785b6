// Package journey defines a context type, which carries information about
// a specific inbound request. It is created when it hits a connector and it
// is passed to every handler of the chain.
//
// It has been named journey instead of request, because a journey can result
// of multiple sub-requests. And also because it sounds nice, isn't it?
package journey

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/ctx"
	"github.com/stairlin/relay/ctx/app"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/stats"
)

// Ctx is the journey context interface
type Ctx interface {
	context.Context
	ctx.Ctx

	UUID() string
	ShortID() string
	App() app.Ctx
	AppConfig() *config.Config
}

// journey holds the context of a request during its whole lifecycle
type journey struct {
	context.Context

	id   string
	step *uint32
	app  app.Ctx
}

// New creates a new context and returns it
func New(ctx app.Ctx) Ctx {
	return NewWithContext(ctx, context.Background())
}

// NewWithContext creates a new journey bound to a parent context, such as
// the one of an inbound HTTP request
func NewWithContext(ctx app.Ctx, parent context.Context) Ctx {
	return &journey{
		Context: parent,
		id:      uuid.New().String(),
		step:    new(uint32),
		app:     ctx,
	}
}

// WithContext returns a copy of j bound to c. The copy shares its identity
// and log steps with j.
func WithContext(j Ctx, c context.Context) Ctx {
	if jj, ok := j.(*journey); ok {
		copy := *jj
		copy.Context = c
		return &copy
	}
	return &journey{
		Context: c,
		id:      j.UUID(),
		step:    new(uint32),
		app:     j.App(),
	}
}

// UUID returns the universally unique identifier assigned to this context
func (j *journey) UUID() string {
	return j.id
}

// ShortID returns a partial representation of a request ID for the sake of readability
// However its uniqueness is not guarantee
func (j *journey) ShortID() string {
	return strings.Split(j.id, "-")[0]
}

// App returns the application context on which this journey runs
func (j *journey) App() app.Ctx {
	return j.app
}

// AppConfig returns the application configuration on which this context currently runs
func (j *journey) AppConfig() *config.Config {
	return j.app.Config()
}

func (j *journey) Stats() stats.Stats {
	return j.app.Stats()
}

func (j *journey) Trace(tag, msg string, fields ...log.Field) {
	j.app.L().Trace(tag, msg, j.fields(fields)...)
}

func (j *journey) Warning(tag, msg string, fields ...log.Field) {
	j.app.L().Warning(tag, msg, j.fields(fields)...)
}

func (j *journey) Error(tag, msg string, fields ...log.Field) {
	j.app.L().Error(tag, msg, j.fields(fields)...)
}

func (j *journey) fields(l []log.Field) []log.Field {
	step := atomic.AddUint32(j.step, 1)
	return append([]log.Field{
		log.String("journey", j.ShortID()),
		log.Uint("step", uint(step)),
		log.String("log_type", "J"),
	}, l...)
}
