// Package main is the entry point for the handyctl command line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kimutaijeremy/handyproconnect/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewRootCommand())
	stop()
	os.Exit(code)
}
