package ctx

import (
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/stats"
)

// Ctx is the root interface that defines a context
type Ctx interface {
	Logger
	Stats() stats.Stats
}

// Logger provides the core interface for logging
type Logger interface {
	Trace(tag, msg string, fields ...log.Field)
	Warning(tag, msg string, fields ...log.Field)
	Error(tag, msg string, fields ...log.Field)
}
