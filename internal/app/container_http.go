package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/http/debugserver"
	"delivery-dispatch/internal/http/handlers"
	"delivery-dispatch/internal/http/middleware"
	"delivery-dispatch/internal/http/middleware/ratelimit"
	"delivery-dispatch/internal/http/router"
	"delivery-dispatch/internal/live"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/service/delivery"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/service/driver"
	"delivery-dispatch/internal/service/tracking"
)

type routerIn struct {
	dig.In
	Logger     logx.Logger
	Base       *handlers.Handlers
	Deliveries *handlers.DeliveryHandler
	Drivers    *handlers.DriverHandler
	Assignment *handlers.AssignmentHandler
	Live       *handlers.LiveHandler
	RateLimit  *ratelimit.Middleware
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Handlers{
		Base:       in.Base,
		Deliveries: in.Deliveries,
		Drivers:    in.Drivers,
		Assignment: in.Assignment,
		Live:       in.Live,
	}, middleware.Observability(in.Logger), in.RateLimit.Handler())
}

type debugServerOut struct {
	dig.Out
	Server *http.Server `name:"debug_server"`
}

func newDebugServer(cfg *config.Config, reg prometheus.Registerer) debugServerOut {
	if cfg.Debug.Port == 0 {
		return debugServerOut{}
	}
	var g prometheus.Gatherer = prometheus.DefaultGatherer
	if gg, ok := reg.(prometheus.Gatherer); ok {
		g = gg
	}
	return debugServerOut{Server: &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Debug.Port),
		Handler:           debugserver.Handler(debugserver.Config{User: cfg.Debug.User, Pass: cfg.Debug.Pass}, g),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(logger logx.Logger, d *delivery.Service, t *tracking.Service) *handlers.DeliveryHandler {
			return handlers.NewDeliveryHandler(logger, d, t)
		},
		func(logger logx.Logger, d *driver.Service, t *tracking.Service) *handlers.DriverHandler {
			return handlers.NewDriverHandler(logger, d, t)
		},
		func(logger logx.Logger, c *dispatch.Controller) *handlers.AssignmentHandler {
			return handlers.NewAssignmentHandler(logger, c)
		},
		func(logger logx.Logger, hub *live.Hub, d *delivery.Service) *handlers.LiveHandler {
			return handlers.NewLiveHandler(logger, hub, d)
		},
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		serverProvider,
		newDebugServer,
	)
}
