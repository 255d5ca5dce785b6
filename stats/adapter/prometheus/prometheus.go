// Package prometheus exposes metrics through a Prometheus registry.
//
// Metric vectors are created lazily on first use. The label names of a
// metric are the tag keys given on that first call, so a key must always be
// reported with the same set of tags.
package prometheus

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/stats"
)

const Name = "prometheus"

const defaultNamespace = "relay"

// Config defines the prometheus adapter config ([stats.prometheus])
type Config struct {
	Namespace   string            `toml:"namespace"`
	Subsystem   string            `toml:"subsystem"`
	ConstLabels map[string]string `toml:"const_labels"`
	Buckets     []float64         `toml:"buckets"`
}

// New builds a client backed by its own registry
func New(tree config.Tree) (stats.Stats, error) {
	c := Config{}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Namespace == "" {
		c.Namespace = defaultNamespace
	}
	if len(c.Buckets) == 0 {
		c.Buckets = prometheus.DefBuckets
	}

	return &Client{
		config:     c,
		registry:   prometheus.NewRegistry(),
		counters:   map[string]*prometheus.CounterVec{},
		gauges:     map[string]*prometheus.GaugeVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}, nil
}

// Client records metrics in a Prometheus registry
type Client struct {
	mu     sync.Mutex
	config Config
	logger log.Logger

	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// Registry returns the underlying registry
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the registry in the exposition format
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Client) Start()                 {}
func (c *Client) Stop()                  {}
func (c *Client) SetLogger(l log.Logger) { c.logger = l }

func (c *Client) Count(key string, n interface{}, tags ...map[string]string) {
	v, ok := c.float(key, n)
	if !ok {
		return
	}
	l := labels(tags)
	vec, err := c.counter(key+"_total", l)
	if err == nil {
		var m prometheus.Counter
		if m, err = vec.GetMetricWith(l); err == nil {
			if v < 0 {
				err = fmt.Errorf("counter %s cannot decrease", key)
			} else {
				m.Add(v)
			}
		}
	}
	c.warn(key, err)
}

func (c *Client) Inc(key string, tags ...map[string]string) {
	c.add(key, 1, tags)
}

func (c *Client) Dec(key string, tags ...map[string]string) {
	c.add(key, -1, tags)
}

func (c *Client) Gauge(key string, n interface{}, tags ...map[string]string) {
	v, ok := c.float(key, n)
	if !ok {
		return
	}
	l := labels(tags)
	vec, err := c.gauge(key, l)
	if err == nil {
		var m prometheus.Gauge
		if m, err = vec.GetMetricWith(l); err == nil {
			m.Set(v)
		}
	}
	c.warn(key, err)
}

func (c *Client) Timing(key string, t time.Duration, tags ...map[string]string) {
	c.observe(key+"_seconds", t.Seconds(), tags)
}

func (c *Client) Histogram(key string, n interface{}, tags ...map[string]string) {
	v, ok := c.float(key, n)
	if !ok {
		return
	}
	c.observe(key, v, tags)
}

func (c *Client) add(key string, v float64, tags []map[string]string) {
	l := labels(tags)
	vec, err := c.gauge(key, l)
	if err == nil {
		var m prometheus.Gauge
		if m, err = vec.GetMetricWith(l); err == nil {
			m.Add(v)
		}
	}
	c.warn(key, err)
}

func (c *Client) observe(key string, v float64, tags []map[string]string) {
	l := labels(tags)
	vec, err := c.histogram(key, l)
	if err == nil {
		var m prometheus.Observer
		if m, err = vec.GetMetricWith(l); err == nil {
			m.Observe(v)
		}
	}
	c.warn(key, err)
}

func (c *Client) counter(key string, l prometheus.Labels) (*prometheus.CounterVec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := metricName(key)
	if vec, ok := c.counters[name]; ok {
		return vec, nil
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        key,
		ConstLabels: c.config.ConstLabels,
	}, labelNames(l))
	if err := c.registry.Register(vec); err != nil {
		return nil, err
	}
	c.counters[name] = vec
	return vec, nil
}

func (c *Client) gauge(key string, l prometheus.Labels) (*prometheus.GaugeVec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := metricName(key)
	if vec, ok := c.gauges[name]; ok {
		return vec, nil
	}
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        key,
		ConstLabels: c.config.ConstLabels,
	}, labelNames(l))
	if err := c.registry.Register(vec); err != nil {
		return nil, err
	}
	c.gauges[name] = vec
	return vec, nil
}

func (c *Client) histogram(key string, l prometheus.Labels) (*prometheus.HistogramVec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := metricName(key)
	if vec, ok := c.histograms[name]; ok {
		return vec, nil
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        key,
		ConstLabels: c.config.ConstLabels,
		Buckets:     c.config.Buckets,
	}, labelNames(l))
	if err := c.registry.Register(vec); err != nil {
		return nil, err
	}
	c.histograms[name] = vec
	return vec, nil
}

func (c *Client) float(key string, n interface{}) (float64, bool) {
	switch v := n.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	c.warn(key, fmt.Errorf("unsupported metric value type %T", n))
	return 0, false
}

func (c *Client) warn(key string, err error) {
	if err != nil && c.logger != nil {
		c.logger.Warning("stats.prometheus.err", "Cannot record metric",
			log.String("key", key),
			log.Error(err),
		)
	}
}

func labels(tags []map[string]string) prometheus.Labels {
	l := prometheus.Labels{}
	if len(tags) > 0 {
		for k, v := range tags[0] {
			l[metricName(k)] = v
		}
	}
	return l
}

func labelNames(l prometheus.Labels) []string {
	names := make([]string, 0, len(l))
	for k := range l {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var nameReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")

// metricName converts a dotted stats key to a valid metric name
func metricName(key string) string {
	return nameReplacer.Replace(key)
}
