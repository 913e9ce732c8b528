package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/live"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/transport/kafka"
	"delivery-dispatch/internal/transport/rabbitmq"
)

// WorkerRunner runs the fulfillment intake without the HTTP surface.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes fulfillment events until the container context ends
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

type workerIn struct {
	dig.In
	Ctx      context.Context
	Config   *config.Config
	Logger   logx.Logger
	Storage  *storage
	Consumer *kafka.Consumer
	Hub      *live.Hub
	Notifier *rabbitmq.Notifier
}

func workerRun(in workerIn) error {
	defer closeWorker(in)
	if in.Consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	if in.Config.Storage.Driver != config.StoragePostgres {
		return fmt.Errorf("worker requires %s storage, got %q", config.StoragePostgres, in.Config.Storage.Driver)
	}

	in.Logger.Info("delivery-dispatch-worker started")
	return in.Consumer.Run(in.Ctx)
}

func closeWorker(in workerIn) {
	if err := in.Consumer.Close(); err != nil {
		in.Logger.Error("kafka close error", logx.Err(err))
	}
	in.Hub.Close()
	if err := in.Notifier.Close(); err != nil {
		in.Logger.Error("rabbitmq close error", logx.Err(err))
	}
	in.Storage.Close()
}
