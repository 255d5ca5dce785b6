package printer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/log/printer/file"
	"github.com/stairlin/relay/log/printer/stdout"
)

func init() {
	Register(stdout.Name, stdout.New)
	Register(file.Name, file.New)
}

// Printer returns a new printer initialised with the given config
type Printer func(config *config.Log) (log.Printer, error)

var (
	printersMu sync.RWMutex
	printers   = make(map[string]Printer)
)

// Printers returns the list of registered printers
func Printers() []string {
	printersMu.RLock()
	defer printersMu.RUnlock()

	var l []string
	for a := range printers {
		l = append(l, a)
	}

	sort.Strings(l)

	return l
}

// Register makes a logger printer available by the provided name.
// If an printer is registered twice or if an printer is nil, it will panic.
func Register(name string, printer Printer) {
	printersMu.Lock()
	defer printersMu.Unlock()

	if printer == nil {
		panic("logs: Registered printer is nil")
	}
	if _, dup := printers[name]; dup {
		panic("logs: Duplicated printer")
	}

	printers[name] = printer
}

// New returns a new printer instance. stdout is used when no printer is set.
func New(config *config.Log) (log.Printer, error) {
	printersMu.RLock()
	defer printersMu.RUnlock()

	if config.Printer == "" {
		return stdout.New(config)
	}

	if f, ok := printers[config.Printer]; ok {
		return f(config)
	}
	return nil, fmt.Errorf("log printer not found <%s>", config.Printer)
}
