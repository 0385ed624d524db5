package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gstrecon/cmd/gstrecon/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(os.Stdout, os.Stderr).Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
