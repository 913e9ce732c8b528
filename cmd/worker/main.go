package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"delivery-dispatch/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := app.MustBuildWorkerContainer(ctx, os.Args[1:])
	app.NewWorkerRunner().MustRun(container)
}
