package formatter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/log/formatter/json"
	"github.com/stairlin/relay/log/formatter/logf"
)

func init() {
	Register(json.Name, json.New)
	Register(logf.Name, logf.New)
}

// Adapter returns a new formatter initialised with the given config
type Adapter func(config *config.Log) (log.Formatter, error)

var (
	adaptersMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Adapters returns the list of registered adapters
func Adapters() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	var l []string
	for a := range adapters {
		l = append(l, a)
	}

	sort.Strings(l)

	return l
}

// Register makes a formatter adapter available by the provided name.
// If an adapter is registered twice or if an adapter is nil, it will panic.
func Register(name string, adapter Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()

	if adapter == nil {
		panic("logs: Registered adapter is nil")
	}
	if _, dup := adapters[name]; dup {
		panic("logs: Duplicated adapter")
	}

	adapters[name] = adapter
}

// New returns a new formatter instance. logf is used when no adapter is set.
func New(config *config.Log) (log.Formatter, error) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	if config.Formatter == "" {
		return logf.New(config)
	}

	if f, ok := adapters[config.Formatter]; ok {
		return f(config)
	}
	return nil, fmt.Errorf("log formatter not found <%s>", config.Formatter)
}
