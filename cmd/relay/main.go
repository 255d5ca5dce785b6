// Command relay serves a handler chain described in a TOML file.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Serve a request dispatch chain",
		Long: `Relay serves an ordered chain of handlers over HTTP.

The chain is described in a TOML file:

  [chain]
  mutable_when_running = false

  [[chain.handlers]]
  type = "header"
  name = "X-Served-By"
  value = "relay"

  [[chain.handlers]]
  type = "static"
  root = "./public"
  prefix = "/"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}
