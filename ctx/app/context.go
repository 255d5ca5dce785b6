// Package app defines an application context, which carries information about
// the application environment.
//
// It is the runtime binding shared by all handlers of a chain.
package app

import (
	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/ctx"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/stats"
)

// Ctx is the app context interface
type Ctx interface {
	ctx.Ctx

	Name() string
	L() log.Logger
	Config() *config.Config
}

// context holds the application context
type context struct {
	service string
	config  *config.Config

	l     log.Logger
	stats stats.Stats
}

// NewCtx creates a new app context
func NewCtx(service string, c *config.Config, l log.Logger, s stats.Stats) Ctx {
	return &context{
		service: service,
		config:  c,
		l: l.AddCalldepth(1).With(
			log.String("node", c.Node),
			log.String("version", c.Version),
			log.String("log_type", "A"),
		),
		stats: s,
	}
}

func (c *context) Name() string {
	return c.service
}

func (c *context) L() log.Logger {
	return c.l
}

func (c *context) Stats() stats.Stats {
	return c.stats
}

func (c *context) Config() *config.Config {
	return c.config
}

func (c *context) Trace(tag, msg string, fields ...log.Field) {
	c.l.Trace(tag, msg, fields...)
	c.incLogLevelCount(log.LevelTrace, tag)
}

func (c *context) Warning(tag, msg string, fields ...log.Field) {
	c.l.Warning(tag, msg, fields...)
	c.incLogLevelCount(log.LevelWarning, tag)
}

func (c *context) Error(tag, msg string, fields ...log.Field) {
	c.l.Error(tag, msg, fields...)
	c.incLogLevelCount(log.LevelError, tag)
}

func (c *context) incLogLevelCount(lvl log.Level, tag string) {
	tags := map[string]string{
		"level":   lvl.String(),
		"service": c.service,
		"tag":     tag,
	}

	c.stats.Count("log.level", 1, tags)
}
