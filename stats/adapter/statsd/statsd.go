// Package statsd sends metrics to a statsd agent over UDP.
package statsd

import (
	"fmt"
	"time"

	statsd "gopkg.in/alexcesaro/statsd.v2"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/stats"
)

const Name = "statsd"

const defaultPrefix = "relay"

var tagsFormats = map[string]statsd.TagFormat{
	"influxdb": statsd.InfluxDB,
	"datadog":  statsd.Datadog,
}

// Config defines the statsd adapter config ([stats.statsd])
type Config struct {
	Addr       string            `toml:"addr"`
	Port       string            `toml:"port"`
	Prefix     string            `toml:"prefix"`
	TagsFormat string            `toml:"tags_format"`
	Tags       map[string]string `toml:"tags"`
}

// New builds a statsd client from the given config tree
func New(tree config.Tree) (stats.Stats, error) {
	c := Config{Prefix: defaultPrefix}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, err
	}

	client := &Client{}
	opts := []statsd.Option{
		statsd.Prefix(c.Prefix),
		statsd.ErrorHandler(client.handleError),
	}
	if c.Port != "" {
		opts = append(opts, statsd.Address(fmt.Sprintf("%s:%s", c.Addr, c.Port)))
	}
	if c.TagsFormat != "" {
		f, ok := tagsFormats[c.TagsFormat]
		if !ok {
			return nil, fmt.Errorf("unknown statsd tags format <%s>", c.TagsFormat)
		}
		opts = append(opts, statsd.TagsFormat(f))
	}
	for k, v := range c.Tags {
		opts = append(opts, statsd.Tags(k, v))
	}

	// If nothing is listening on the target port, an error is returned and
	// the returned client is muted. We'd rather fail at boot time.
	sc, err := statsd.New(opts...)
	if err != nil {
		return nil, err
	}
	client.c = sc
	return client, nil
}

// Client wraps a statsd client
type Client struct {
	c      *statsd.Client
	logger log.Logger
}

func (c *Client) Start() {}

func (c *Client) Stop() {
	c.c.Close()
}

func (c *Client) SetLogger(l log.Logger) {
	c.logger = l
}

func (c *Client) Count(key string, n interface{}, tags ...map[string]string) {
	c.with(tags).Count(key, n)
}

func (c *Client) Inc(key string, tags ...map[string]string) {
	c.with(tags).Count(key, 1)
}

func (c *Client) Dec(key string, tags ...map[string]string) {
	c.with(tags).Count(key, -1)
}

func (c *Client) Gauge(key string, n interface{}, tags ...map[string]string) {
	c.with(tags).Gauge(key, n)
}

func (c *Client) Timing(key string, t time.Duration, tags ...map[string]string) {
	c.with(tags).Timing(key, t.Nanoseconds()/int64(time.Millisecond))
}

func (c *Client) Histogram(key string, n interface{}, tags ...map[string]string) {
	c.with(tags).Histogram(key, n)
}

// with returns a clone carrying the metric tags
func (c *Client) with(tags []map[string]string) *statsd.Client {
	if len(tags) == 0 || len(tags[0]) == 0 {
		return c.c
	}

	kv := make([]string, 0, len(tags[0])*2)
	for k, v := range tags[0] {
		kv = append(kv, k, v)
	}
	return c.c.Clone(statsd.Tags(kv...))
}

func (c *Client) handleError(err error) {
	if c.logger != nil {
		c.logger.Warning("stats.statsd.err", "Cannot send metric", log.Error(err))
	}
}
