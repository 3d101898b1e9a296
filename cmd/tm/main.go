package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task-manager/internal/cli"
)

func main() {
	// Interactive commands (serve, tui) run until interrupted; the rest apply
	// the configured application timeout on top of this context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(bootstrap, os.Stdout)
	if err := root.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
