// Package config loads the application configuration from TOML.
//
// Any string value starting with a dollar sign is replaced by the value of the
// environment variable of the same name (e.g. addr = "$HTTP_ADDR").
package config

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Config defines the app config
type Config struct {
	Node    string  `toml:"node"`
	Version string  `toml:"version"`
	Request Request `toml:"request"`
	Log     Log     `toml:"log"`
	Stats   Stats   `toml:"stats"`
	Chain   Chain   `toml:"chain"`
	HTTP    HTTP    `toml:"http"`

	tree Tree
}

// Request defines the request default configuration
type Request struct {
	TimeoutMS int `toml:"timeout_ms"`
	// Panic lets panics raised by handlers crash the process instead of
	// turning them into a 500
	Panic bool `toml:"panic"`
}

// Timeout returns the TimeoutMS field in time.Duration
func (r *Request) Timeout() time.Duration {
	return time.Millisecond * time.Duration(r.TimeoutMS)
}

// Log contains all log-related configuration
type Log struct {
	Level     string `toml:"level"`
	Formatter string `toml:"formatter"`
	Printer   string `toml:"printer"`
	// Path is used by the file printer
	Path string `toml:"path"`
}

// Stats contains all stats-related configuration.
// Adapter specific options live in a sub-table named after the adapter
// (e.g. [stats.statsd])
type Stats struct {
	On      bool   `toml:"on"`
	Adapter string `toml:"adapter"`
}

// Chain configures the root handler collection
type Chain struct {
	MutableWhenRunning bool `toml:"mutable_when_running"`
	// Trace wraps the configured handlers into an OpenTelemetry span
	Trace    bool            `toml:"trace"`
	Handlers []HandlerConfig `toml:"handlers"`
}

// HandlerConfig describes a leaf handler built by the bootstrap tooling
type HandlerConfig struct {
	Type   string `toml:"type"`
	Name   string `toml:"name"`
	Value  string `toml:"value"`
	Root   string `toml:"root"`
	Prefix string `toml:"prefix"`
}

// HTTP configures the HTTP connector
type HTTP struct {
	Addr     string `toml:"addr"`
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

// Tree returns the raw configuration tree. It is never nil.
func (c *Config) Tree() Tree {
	if c.tree == nil {
		return &nullTree{}
	}
	return c.tree
}

// Load reads a TOML document from r
func Load(r io.Reader) (*Config, error) {
	t, err := LoadTree(r)
	if err != nil {
		return nil, err
	}

	c := &Config{}
	if err := t.Unmarshal(c); err != nil {
		return nil, err
	}
	c.tree = t
	return c, nil
}

// LoadFile reads the TOML file located at path
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "config file cannot be opened")
	}
	defer f.Close()

	return Load(f)
}
