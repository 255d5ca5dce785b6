package adapter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/stats"
	"github.com/stairlin/relay/stats/adapter/prometheus"
	"github.com/stairlin/relay/stats/adapter/statsd"
)

func init() {
	Register(statsd.Name, statsd.New)
	Register(prometheus.Name, prometheus.New)
}

// Adapter returns a new stats client initialised with the given config tree
type Adapter func(tree config.Tree) (stats.Stats, error)

// Null returns a stats client that drops everything
func Null() stats.Stats {
	return &null{}
}

// New builds the stats client selected by the config. A null client is
// returned when stats are turned off.
func New(c *config.Config) (stats.Stats, error) {
	if !c.Stats.On {
		return &null{}, nil
	}

	return newStats(c.Stats.Adapter, c.Tree().Get("stats").Get(c.Stats.Adapter))
}

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

// Register makes a stats adapter available by the provided name.
// If an adapter is registered twice or if an adapter is nil, it will panic.
func Register(name string, adapter Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()

	if adapter == nil {
		panic("stats: Registered adapter is nil")
	}
	if _, dup := adapters[name]; dup {
		panic("stats: Duplicated adapter")
	}

	adapters[name] = adapter
}

func newStats(adapter string, tree config.Tree) (stats.Stats, error) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	if f, ok := adapters[adapter]; ok {
		return f(tree)
	}

	return nil, fmt.Errorf("stats adapter not found <%s>", adapter)
}
