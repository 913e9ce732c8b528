package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/live"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/ports/dispatchstore"
	"delivery-dispatch/internal/repository"
	"delivery-dispatch/internal/repository/memstore"
	"delivery-dispatch/internal/service/assignment"
	"delivery-dispatch/internal/service/delivery"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/service/driver"
	"delivery-dispatch/internal/service/fulfillment"
	"delivery-dispatch/internal/service/tracking"
	"delivery-dispatch/internal/transport/grpchealth"
	"delivery-dispatch/internal/transport/kafka"
	"delivery-dispatch/internal/transport/rabbitmq"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	args       []string
	dbConnect  dbConnectFunc
	registerer prometheus.Registerer
	logOutput  io.Writer
	logFatalf  func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder for the given
// command-line arguments.
func NewContainerBuilder(args []string) *ContainerBuilder {
	return &ContainerBuilder{
		args:       args,
		dbConnect:  connectDbWithRetry,
		registerer: prometheus.DefaultRegisterer,
		logOutput:  os.Stdout,
		logFatalf:  log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithRegisterer sets the registry metrics are registered with
func (b *ContainerBuilder) WithRegisterer(reg prometheus.Registerer) *ContainerBuilder {
	if reg != nil {
		b.registerer = reg
	}
	return b
}

// WithLogOutput sets where the JSON logger writes
func (b *ContainerBuilder) WithLogOutput(w io.Writer) *ContainerBuilder {
	if w != nil {
		b.logOutput = w
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.Build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// Build registers every provider of the API process. Providers run lazily on Invoke.
func (b *ContainerBuilder) Build(ctx context.Context) (*dig.Container, error) {
	container, err := b.buildIntake(ctx)
	if err != nil {
		return nil, err
	}
	if err := registerDispatch(container); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// BuildWorker registers only what the fulfillment intake needs: storage, the
// live hub with its sinks, the delivery service and the Kafka consumer.
func (b *ContainerBuilder) BuildWorker(ctx context.Context) (*dig.Container, error) {
	return b.buildIntake(ctx)
}

// MustBuildWorker builds the worker container or calls logFatalf.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.BuildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildIntake(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := b.registerCore(ctx, container); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStorage(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := registerLive(container); err != nil {
		return nil, fmt.Errorf("live: %w", err)
	}
	if err := registerIntake(container); err != nil {
		return nil, fmt.Errorf("intake: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context, args []string) *dig.Container {
	return NewContainerBuilder(args).MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}

func (b *ContainerBuilder) registerCore(ctx context.Context, container *dig.Container) error {
	err := provideAll(container,
		func() context.Context { return ctx },
		func() (*config.Config, error) { return config.LoadArgs(b.args) },
		func(cfg *config.Config) logx.Logger { return logx.NewJSON(b.logOutput, cfg.LogLevel) },
		func() prometheus.Registerer { return b.registerer },
		func(reg prometheus.Registerer) (*metrics.Dispatch, error) {
			m := metrics.NewDispatch()
			return m, registerAll(reg, m.Collectors()...)
		},
		func(reg prometheus.Registerer) (*metrics.Live, error) {
			m := metrics.NewLive()
			return m, registerAll(reg, m.Collectors()...)
		},
	)
	if err != nil {
		return err
	}
	if err := container.Provide(func(reg prometheus.Registerer) (prometheus.Counter, error) {
		c := metrics.NewRateLimitExceededTotal()
		return c, registerAll(reg, c)
	}, dig.Name("rate_limit_exceeded_total")); err != nil {
		return fmt.Errorf("provide rate limit counter: %w", err)
	}
	if err := container.Provide(func(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
		c := metrics.NewFulfillmentEventsTotal()
		return c, registerAll(reg, c)
	}, dig.Name("fulfillment_events_total")); err != nil {
		return fmt.Errorf("provide fulfillment counter: %w", err)
	}
	return nil
}

// storage owns the selected backend and its resources.
type storage struct {
	store  dispatchstore.Store
	driver string
	close  func()
}

func (s *storage) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

func registerStorage(container *dig.Container, dbConnect dbConnectFunc) error {
	providerStorage := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*storage, error) {
		if cfg.Storage.Driver != config.StoragePostgres {
			logger.Info("using in-memory storage")
			return &storage{store: memstore.New(), driver: config.StorageMemory}, nil
		}
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{store: repository.NewStore(pool), driver: config.StoragePostgres, close: pool.Close}, nil
	}
	return provideAll(container,
		providerStorage,
		func(s *storage) dispatchstore.Store { return s.store },
	)
}

func registerLive(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger) (*rabbitmq.Notifier, error) {
			return rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		},
		func(cfg *config.Config, logger logx.Logger, m *metrics.Live, n *rabbitmq.Notifier) *live.Hub {
			var sinks []live.Sink
			if n != nil {
				sinks = append(sinks, n)
			}
			return live.NewHub(cfg.Live.SubscriberBuffer, logger, m, sinks...)
		},
	)
}

type processorIn struct {
	dig.In
	Deliveries *delivery.Service
	Logger     logx.Logger
	Events     *prometheus.CounterVec `name:"fulfillment_events_total"`
}

func registerIntake(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, st dispatchstore.Store, hub *live.Hub, logger logx.Logger, m *metrics.Dispatch) *delivery.Service {
			return delivery.NewService(st, hub, cfg.Dispatch.OperationTimeout, logger, m)
		},
		func(in processorIn) *fulfillment.Processor {
			return fulfillment.NewProcessor(in.Deliveries, in.Logger, in.Events)
		},
		func(cfg *config.Config, logger logx.Logger, p *fulfillment.Processor) (*kafka.Consumer, error) {
			return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, p.Handle)
		},
	)
}

func registerDispatch(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, st dispatchstore.Store, logger logx.Logger) *driver.Service {
			return driver.NewService(st, cfg.Dispatch.OperationTimeout, logger)
		},
		func(cfg *config.Config, st dispatchstore.Store, hub *live.Hub, deliveries *delivery.Service, logger logx.Logger) *tracking.Service {
			return tracking.NewService(st, hub, deliveries, tracking.Options{
				OperationTimeout: cfg.Dispatch.OperationTimeout,
				AutoArrival:      cfg.Dispatch.AutoArrival,
				ArrivalRadiusM:   cfg.Dispatch.ArrivalRadiusM,
			}, logger)
		},
		func(st dispatchstore.Store, deliveries *delivery.Service, logger logx.Logger, m *metrics.Dispatch) *assignment.Engine {
			return assignment.NewEngine(st, deliveries, logger, m)
		},
		func(cfg *config.Config, engine *assignment.Engine, logger logx.Logger) *assignment.Scheduler {
			return assignment.NewScheduler(engine, cfg.Dispatch.PassTimeout, logger)
		},
		func(cfg *config.Config, engine *assignment.Engine, sched *assignment.Scheduler, logger logx.Logger) *dispatch.Controller {
			return dispatch.NewController(engine, sched, cfg.Dispatch.Interval, logger)
		},
		func(st dispatchstore.Store, logger logx.Logger) *grpchealth.Server {
			return grpchealth.New(st, 0, logger)
		},
	)
}

// MustBuildWorkerContainer builds the container used by the standalone worker.
func MustBuildWorkerContainer(ctx context.Context, args []string) *dig.Container {
	return NewContainerBuilder(args).MustBuildWorker(ctx)
}
