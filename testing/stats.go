package testing

import (
	"sync"
	"testing"
	"time"

	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/stats"
)

// Stats is a simple Stats interface useful for tests.
// It records how many times each key has been reported.
type Stats struct {
	t *testing.T

	mu   sync.RWMutex
	keys map[string]int
}

// NewStats creates a new stats
func NewStats(t *testing.T) stats.Stats {
	return &Stats{t: t, keys: map[string]int{}}
}

// Calls returns how many times key has been reported
func (s *Stats) Calls(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}

func (s *Stats) inc(key string) {
	s.mu.Lock()
	s.keys[key]++
	s.mu.Unlock()
}

func (s *Stats) Start()                                                         {}
func (s *Stats) Stop()                                                          {}
func (s *Stats) SetLogger(l log.Logger)                                         {}
func (s *Stats) Count(key string, n interface{}, tags ...map[string]string)     { s.inc(key) }
func (s *Stats) Inc(key string, tags ...map[string]string)                      { s.inc(key) }
func (s *Stats) Dec(key string, tags ...map[string]string)                      { s.inc(key) }
func (s *Stats) Gauge(key string, n interface{}, tags ...map[string]string)     { s.inc(key) }
func (s *Stats) Timing(key string, t time.Duration, tags ...map[string]string)  { s.inc(key) }
func (s *Stats) Histogram(key string, n interface{}, tags ...map[string]string) { s.inc(key) }
