package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/stairlin/relay"
	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/handler"
	"github.com/stairlin/relay/handler/trace"
	"github.com/stairlin/relay/net/http"
)

const defaultAddr = ":8080"

func serveCmd() *cobra.Command {
	var (
		path    string
		addr    string
		service string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chain described in the config file",
		Long: `Serve the chain described in the config file.

The server drains in-flight requests on SIGINT or SIGTERM, then stops
and destroys the chain.

Examples:
  relay serve
  relay serve --config=/etc/relay.toml --addr=:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := relay.New(service, path)
			if err != nil {
				return err
			}
			if err := setup(a, addr); err != nil {
				a.Drain()
				return err
			}
			return a.Serve()
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "relay.toml", "Path to the config file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config, then "+defaultAddr+")")
	cmd.Flags().StringVar(&service, "service", "relay", "Service name")

	return cmd
}

// setup attaches the configured chain to a and registers the HTTP server
func setup(a *relay.App, addr string) error {
	c := a.Config()

	l, err := buildHandlers(c.Chain.Handlers)
	if err != nil {
		return err
	}

	if c.Chain.Trace {
		t, err := trace.New(handler.New(l...))
		if err != nil {
			return errors.Wrap(err, "cannot trace chain")
		}
		l = []handler.H{t}
	}
	if err := a.Handle(l...); err != nil {
		return err
	}

	a.RegisterServer(listenAddr(addr, &c.HTTP), newServer(a, &c.HTTP))
	return nil
}

func newServer(a *relay.App, c *config.HTTP) *http.Server {
	s := http.NewServer(a.Chain())
	if c.CertFile != "" && c.KeyFile != "" {
		s.ActivateTLS(c.CertFile, c.KeyFile)
	}
	return s
}

func listenAddr(flag string, c *config.HTTP) string {
	switch {
	case flag != "":
		return flag
	case c.Addr != "":
		return c.Addr
	}
	return defaultAddr
}
