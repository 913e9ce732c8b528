package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/live"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/transport/grpchealth"
	"delivery-dispatch/internal/transport/kafka"
	"delivery-dispatch/internal/transport/rabbitmq"
)

const shutdownTimeout = 15 * time.Second

// MustRun starts the service using the provided DI container
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

type runIn struct {
	dig.In
	Ctx         context.Context
	Config      *config.Config
	Logger      logx.Logger
	Server      *http.Server
	DebugServer *http.Server `name:"debug_server" optional:"true"`
	Health      *grpchealth.Server
	Controller  *dispatch.Controller
	Consumer    *kafka.Consumer
	Hub         *live.Hub
	Notifier    *rabbitmq.Notifier
	Storage     *storage
}

func run(container *dig.Container) error {
	return container.Invoke(serve)
}

func serve(in runIn) error {
	logger := in.Logger
	errCh := make(chan error, 4)

	httpLis, err := net.Listen("tcp", in.Server.Addr)
	if err != nil {
		closeRuntime(in, logger)
		return fmt.Errorf("listen http: %w", err)
	}
	startServer(in.Server, httpLis, "api", logger, errCh)

	if in.DebugServer != nil {
		debugLis, err := net.Listen("tcp", in.DebugServer.Addr)
		if err != nil {
			logger.Warn("debug server disabled", logx.Err(err))
			in.DebugServer = nil
		} else {
			startServer(in.DebugServer, debugLis, "debug", logger, errCh)
		}
	}

	if in.Config.GRPC.Port != 0 {
		grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", in.Config.GRPC.Port))
		if err != nil {
			logger.Warn("grpc health server disabled", logx.Err(err))
		} else {
			logger.Info("grpc health listening", logx.String("addr", grpcLis.Addr().String()))
			go func() {
				if err := in.Health.Serve(in.Ctx, grpcLis); err != nil {
					errCh <- fmt.Errorf("grpc health: %w", err)
				}
			}()
		}
	}

	if in.Consumer != nil {
		go func() {
			if err := in.Consumer.Run(in.Ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	if in.Config.Dispatch.AutoStart {
		if err := in.Controller.StartAutomatic(); err != nil {
			logger.Warn("automatic dispatch not started", logx.Err(err))
		}
	}

	logger.Info("delivery-dispatch started", logx.String("storage", in.Storage.driver))

	var runErr error
	select {
	case <-in.Ctx.Done():
		logger.Info("shutting down delivery-dispatch...")
	case runErr = <-errCh:
		logger.Error("component failed, shutting down", logx.Err(runErr))
	}

	gracefulShutdown(in, logger, shutdownTimeout)
	closeRuntime(in, logger)
	return runErr
}

func startServer(srv *http.Server, lis net.Listener, name string, logger logx.Logger, errCh chan<- error) {
	logger.Info("http listening", logx.String("server", name), logx.String("addr", lis.Addr().String()))
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}()
}

func gracefulShutdown(in runIn, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := in.Server.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.String("server", "api"), logx.Err(err))
	}
	if err := in.Controller.Shutdown(shCtx); err != nil {
		logger.Warn("dispatch shutdown error", logx.Err(err))
	}
	if in.Config.GRPC.Port != 0 {
		if err := in.Health.Shutdown(shCtx); err != nil {
			logger.Warn("grpc shutdown error", logx.Err(err))
		}
	}
	if in.DebugServer != nil {
		if err := in.DebugServer.Shutdown(shCtx); err != nil {
			logger.Warn("graceful shutdown error", logx.String("server", "debug"), logx.Err(err))
		}
	}
}

func closeRuntime(in runIn, logger logx.Logger) {
	if err := in.Consumer.Close(); err != nil {
		logger.Error("kafka close error", logx.Err(err))
	}
	in.Hub.Close()
	if err := in.Notifier.Close(); err != nil {
		logger.Error("rabbitmq close error", logx.Err(err))
	}
	in.Storage.Close()
	_ = logger.Sync()
}
