package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"delivery-dispatch/internal/http/handlers"
)

const requestTimeout = 5 * time.Second

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Base       *handlers.Handlers
	Deliveries *handlers.DeliveryHandler
	Drivers    *handlers.DriverHandler
	Assignment *handlers.AssignmentHandler
	Live       *handlers.LiveHandler
}

// New constructs a chi-based http.Handler with base middleware and routes.
// The WebSocket route is mounted outside the request timeout.
func New(h Handlers, mws ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	for _, mw := range mws {
		if mw != nil {
			r.Use(mw)
		}
	}

	if h.Live != nil {
		r.Get("/ws/deliveries/{id}", h.Live.Subscribe)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/ping", h.Base.Ping)
		r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.Base.HealthcheckHead))

		if h.Assignment != nil {
			r.Route("/assignment", func(r chi.Router) {
				r.Post("/start", h.Assignment.Start)
				r.Post("/stop", h.Assignment.Stop)
				r.Post("/manual", h.Assignment.Manual)
				r.Get("/status", h.Assignment.Status)
			})
		}

		if h.Deliveries != nil {
			r.Route("/deliveries", func(r chi.Router) {
				r.Post("/", h.Deliveries.Create)
				r.Get("/", h.Deliveries.List)
				r.Get("/{id}", h.Deliveries.Get)
				r.Post("/{id}/status", h.Deliveries.ChangeStatus)
				r.Post("/{id}/location", h.Deliveries.PushLocation)
				r.Post("/{id}/rating", h.Deliveries.Rate)
			})
		}

		if h.Drivers != nil {
			r.Route("/drivers", func(r chi.Router) {
				r.Post("/", h.Drivers.Create)
				r.Get("/", h.Drivers.List)
				r.Get("/{id}", h.Drivers.GetByID)
				r.Post("/{id}/location", h.Drivers.PushLocation)
			})
		}
	})

	r.NotFound(http.HandlerFunc(h.Base.NotFound))

	return r
}
