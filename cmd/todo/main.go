package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/tada/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Root flags and the subcommand are both handled by the runner.
	code := cli.Run(ctx, os.Args[1:], cli.Options{})
	stop()
	os.Exit(code)
}
