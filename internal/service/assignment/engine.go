package assignment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
)

// Pass triggers
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// Engine runs matching passes. Passes may overlap; the conditional claims keep
// them from double-assigning a driver or a delivery.
type Engine struct {
	store    Snapshotter
	assigner Assigner
	logger   logx.Logger
	metrics  *metrics.Dispatch
}

// NewEngine creates an Engine.
func NewEngine(store Snapshotter, assigner Assigner, logger logx.Logger, m *metrics.Dispatch) *Engine {
	if logger == nil {
		logger = logx.Nop()
	}
	if m == nil {
		m = metrics.NewDispatch()
	}
	return &Engine{store: store, assigner: assigner, logger: logger, metrics: m}
}

// RunOnce executes a single matching pass and returns the number of assignments made.
func (e *Engine) RunOnce(ctx context.Context) (int, error) {
	return e.run(ctx, TriggerManual)
}

func (e *Engine) run(ctx context.Context, trigger string) (n int, err error) {
	start := time.Now()
	defer func() {
		e.metrics.PassDuration.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		e.metrics.Passes.WithLabelValues(trigger, result).Inc()
	}()

	deliveries, err := e.store.PendingDeliveries(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot pending deliveries: %w", err)
	}
	if len(deliveries) == 0 {
		return 0, nil
	}
	drivers, err := e.store.AvailableDrivers(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot available drivers: %w", err)
	}

	for _, c := range Plan(deliveries, drivers) {
		_, err := e.assigner.Assign(ctx, c.Delivery.ID, c.Driver.ID)
		if errors.Is(err, apperr.ErrAlreadyClaimed) {
			e.metrics.ClaimConflicts.Inc()
			e.logger.Debug("claim lost",
				logx.String("event", "claim_conflict"),
				logx.String("delivery_id", c.Delivery.ID),
				logx.Int64("driver_id", c.Driver.ID),
			)
			continue
		}
		if err != nil {
			return n, fmt.Errorf("assign delivery %s to driver %d: %w", c.Delivery.ID, c.Driver.ID, err)
		}

		n++
		e.metrics.Assignments.Inc()
		fields := []logx.Field{
			logx.String("event", "delivery_assigned"),
			logx.String("trigger", trigger),
			logx.String("delivery_id", c.Delivery.ID),
			logx.Int64("driver_id", c.Driver.ID),
		}
		if !math.IsInf(c.DistanceKm, 1) {
			fields = append(fields, logx.Float64("distance_km", c.DistanceKm))
		}
		e.logger.Info("delivery assigned", fields...)
	}
	return n, nil
}
