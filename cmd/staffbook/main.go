// Package main is the entry point of the staffbook command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/staffbook/staffbook/internal/interface/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
