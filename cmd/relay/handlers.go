package main

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/ctx/journey"
	"github.com/stairlin/relay/handler"
	"github.com/stairlin/relay/log"
)

type builder func(c config.HandlerConfig) (handler.H, error)

var builders = map[string]builder{
	"static":  newStaticH,
	"header":  newHeaderH,
	"log":     newLogH,
	"metrics": newMetricsH,
}

// buildHandlers builds the leaf handlers described in l, in order
func buildHandlers(l []config.HandlerConfig) ([]handler.H, error) {
	handlers := make([]handler.H, 0, len(l))
	for i, c := range l {
		build, ok := builders[c.Type]
		if !ok {
			return nil, errors.Errorf("handler #%d: unknown type %q", i, c.Type)
		}
		h, err := build(c)
		if err != nil {
			return nil, errors.Wrapf(err, "handler #%d (%s)", i, c.Type)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// staticH serves the files located under root. Targets outside of prefix,
// missing files and directories are left to the next handlers.
type staticH struct {
	handler.Base

	prefix string
	fs     http.FileSystem
}

func newStaticH(c config.HandlerConfig) (handler.H, error) {
	if c.Root == "" {
		return nil, errors.New("root is missing")
	}
	prefix := strings.TrimSuffix(c.Prefix, "/")
	return &staticH{prefix: prefix, fs: http.Dir(c.Root)}, nil
}

// match returns the part of target below prefix. Prefixes match whole path
// segments only.
func (h *staticH) match(target string) (string, bool) {
	if !strings.HasPrefix(target, h.prefix) {
		return "", false
	}
	rest := target[len(h.prefix):]
	if rest != "" && rest[0] != '/' {
		return "", false
	}
	return rest, true
}

func (h *staticH) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	rest, ok := h.match(target)
	if !ok {
		return nil
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return nil
	}

	name := path.Clean("/" + rest)
	f, err := h.fs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", name)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "cannot stat %s", name)
	}
	if fi.IsDir() {
		return nil
	}

	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	return nil
}

// headerH sets a response header on every request
type headerH struct {
	handler.Base

	name  string
	value string
}

func newHeaderH(c config.HandlerConfig) (handler.H, error) {
	if c.Name == "" {
		return nil, errors.New("header name is missing")
	}
	return &headerH{name: c.Name, value: c.Value}, nil
}

func (h *headerH) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set(h.name, h.value)
	return nil
}

// logH traces every request it sees
type logH struct {
	handler.Base
}

func newLogH(c config.HandlerConfig) (handler.H, error) {
	return &logH{}, nil
}

func (h *logH) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	ctx.Trace("relay.request", "Request",
		log.String("method", r.Method),
		log.String("target", target),
		log.String("remote", r.RemoteAddr),
	)
	return nil
}

// metricsH exposes the stats collected by the app, when its adapter can
// render them (e.g. prometheus)
type metricsH struct {
	handler.Base

	path string
}

type exposer interface {
	Handler() http.Handler
}

func newMetricsH(c config.HandlerConfig) (handler.H, error) {
	p := c.Prefix
	if p == "" {
		p = "/metrics"
	}
	return &metricsH{path: p}, nil
}

func (h *metricsH) Handle(ctx journey.Ctx, target string, w http.ResponseWriter, r *http.Request) error {
	if target != h.path {
		return nil
	}
	e, ok := ctx.Stats().(exposer)
	if !ok {
		return nil
	}
	e.Handler().ServeHTTP(w, r)
	return nil
}
