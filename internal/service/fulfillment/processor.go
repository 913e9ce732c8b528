// Package fulfillment turns order fulfillment events into delivery operations.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
)

// Processor processes fulfillment events
type Processor struct {
	delivery DeliveryPort
	factory  *actionFactory
	logger   logx.Logger
	events   *prometheus.CounterVec
}

// NewProcessor creates a new Processor. A nil counter is replaced by an unregistered one.
func NewProcessor(deliverySvc DeliveryPort, logger logx.Logger, events *prometheus.CounterVec) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	if events == nil {
		events = metrics.NewFulfillmentEventsTotal()
	}
	p := &Processor{
		delivery: deliverySvc,
		logger:   logger,
		events:   events,
	}
	p.factory = newActionFactory(p.onReady, p.onCanceled)
	return p
}

// Handle processes a single Event. Unknown statuses are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	status := strings.ToLower(strings.TrimSpace(e.Status))
	fn, ok := p.factory.get(status)
	if !ok {
		p.events.WithLabelValues(status, "ignored").Inc()
		return nil
	}
	err := fn(ctx, e)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.events.WithLabelValues(status, outcome).Inc()
	return err
}

func (p *Processor) onReady(ctx context.Context, e Event) error {
	if e.RestaurantLocation == nil || e.CustomerLocation == nil {
		return fmt.Errorf("order %q: locations are required: %w", e.OrderID, apperr.ErrInvalid)
	}
	d, err := p.delivery.Create(ctx, domain.NewDelivery{
		OrderID:            e.OrderID,
		RestaurantLocation: *e.RestaurantLocation,
		CustomerLocation:   *e.CustomerLocation,
	})
	if errors.Is(err, apperr.ErrConflict) {
		p.logger.Debug("delivery already exists",
			logx.String("event", "fulfillment_duplicate"),
			logx.String("order_id", e.OrderID),
		)
		return nil
	}
	if err != nil {
		return err
	}
	p.logger.Info("delivery opened from order",
		logx.String("event", "fulfillment_ready"),
		logx.String("order_id", e.OrderID),
		logx.String("delivery_id", d.ID),
	)
	return nil
}

func (p *Processor) onCanceled(ctx context.Context, e Event) error {
	_, err := p.delivery.CancelByOrderID(ctx, e.OrderID, domain.SystemActor())
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidTransition) {
		return nil
	}
	return err
}
