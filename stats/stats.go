// Package stats defines the metrics interface shared by all components.
// Concrete backends live in stats/adapter.
package stats

import (
	"time"

	"github.com/stairlin/relay/log"
)

// Stats is an interface for app statistics
type Stats interface {
	Start()
	Stop()
	SetLogger(l log.Logger)

	Count(key string, n interface{}, tags ...map[string]string)
	Inc(key string, tags ...map[string]string)
	Dec(key string, tags ...map[string]string)
	Gauge(key string, n interface{}, tags ...map[string]string)
	Timing(key string, t time.Duration, tags ...map[string]string)
	Histogram(key string, n interface{}, tags ...map[string]string)
}
