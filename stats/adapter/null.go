package adapter

import (
	"time"

	"github.com/stairlin/relay/log"
)

// null is a stats adapter that does not do anything
type null struct{}

func (s *null) Start()                                                         {}
func (s *null) Stop()                                                          {}
func (s *null) SetLogger(l log.Logger)                                         {}
func (s *null) Count(key string, n interface{}, tags ...map[string]string)     {}
func (s *null) Inc(key string, tags ...map[string]string)                      {}
func (s *null) Dec(key string, tags ...map[string]string)                      {}
func (s *null) Gauge(key string, n interface{}, tags ...map[string]string)     {}
func (s *null) Timing(key string, t time.Duration, tags ...map[string]string)  {}
func (s *null) Histogram(key string, n interface{}, tags ...map[string]string) {}
