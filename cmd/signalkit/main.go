// Command signalkit exercises and observes signal hubs: a concurrent stress
// run that verifies delivery counts and a diagnostics server exposing hub
// metrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "signalkit",
		Short: "Load-test and inspect in-process signals",
		Long: `signalkit drives the signal engine from the command line.

  stress   emit concurrently against one signal and verify every delivery
  serve    run a demo hub and expose its metrics over HTTP
  version  print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		stressCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}
