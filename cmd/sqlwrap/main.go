// Command sqlwrap is a small SQLite client: templated statements, a
// per-connection statement cache and all-or-nothing transactions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/sqlwrap/internal/cli"
)

func main() {
	// Cancel in-flight statements on Ctrl+C or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(cli.GetExitCode(err))
	}
}
