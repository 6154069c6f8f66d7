package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Stderr)
	stop()
	os.Exit(code)
}
