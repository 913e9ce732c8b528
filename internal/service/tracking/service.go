// Package tracking ingests driver positions.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
	"delivery-dispatch/internal/logx"
)

// maxClockSkew is how far ahead of server time a client timestamp may be.
const maxClockSkew = 30 * time.Second

// Options configures arrival detection and timeouts.
type Options struct {
	OperationTimeout time.Duration
	AutoArrival      bool
	ArrivalRadiusM   float64
}

// Service validates and stores driver positions and fans them out.
type Service struct {
	store     Store
	publisher LocationPublisher
	statuses  Transitioner
	opts      Options
	logger    logx.Logger
	now       func() time.Time
}

// NewService creates a tracking Service.
func NewService(st Store, pub LocationPublisher, statuses Transitioner, opts Options, logger logx.Logger) *Service {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = 3 * time.Second
	}
	if opts.ArrivalRadiusM <= 0 {
		opts.ArrivalRadiusM = 50
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		store:     st,
		publisher: pub,
		statuses:  statuses,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.OperationTimeout)
}

// PushLocation records the assigned driver's position on a delivery. It reports
// whether the point was stored; an older point than the stored one is accepted
// but neither stored nor fanned out.
func (s *Service) PushLocation(ctx context.Context, u domain.LocationUpdate) (bool, error) {
	if err := validate(u.DriverID, u.Point); err != nil {
		return false, err
	}
	at, err := s.stamp(u.At)
	if err != nil {
		return false, err
	}
	u.At = at

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.store.GetDelivery(ctx, u.DeliveryID)
	if err != nil {
		return false, err
	}
	if d == nil {
		return false, fmt.Errorf("delivery %s: %w", u.DeliveryID, apperr.ErrNotFound)
	}
	if err := checkOwner(*d, u.DriverID); err != nil {
		return false, err
	}

	stored, err := s.store.UpdateDeliveryLocation(ctx, u)
	if errors.Is(err, apperr.ErrAlreadyClaimed) {
		fresh, lerr := s.store.GetDelivery(ctx, u.DeliveryID)
		if lerr != nil {
			return false, lerr
		}
		if fresh == nil {
			return false, fmt.Errorf("delivery %s: %w", u.DeliveryID, apperr.ErrNotFound)
		}
		if oerr := checkOwner(*fresh, u.DriverID); oerr != nil {
			return false, oerr
		}
		return false, fmt.Errorf("delivery %s: %w", u.DeliveryID, apperr.ErrInactive)
	}
	if err != nil {
		return false, err
	}
	if !stored {
		s.logger.Debug("stale location ignored",
			logx.String("event", "location_stale"),
			logx.String("delivery_id", u.DeliveryID),
			logx.Int64("driver_id", u.DriverID),
			logx.Time("at", u.At),
		)
		return false, nil
	}

	s.publisher.PublishLocation(u.DeliveryID, u.DriverID, u.Point, u.At)

	if s.opts.AutoArrival && d.Status == domain.StatusInTransit &&
		geo.WithinRadius(u.Point, d.CustomerLocation, s.opts.ArrivalRadiusM) {
		s.arrive(ctx, *d)
	}
	return true, nil
}

// arrive completes a delivery whose driver reached the customer. Failures are
// logged only; the position itself has been accepted.
func (s *Service) arrive(ctx context.Context, d domain.Delivery) {
	if s.statuses == nil {
		return
	}
	_, err := s.statuses.Transition(ctx, d.ID, domain.StatusDelivered, domain.SystemActor())
	if err != nil {
		s.logger.Warn("arrival transition failed",
			logx.String("event", "arrival_failed"),
			logx.String("delivery_id", d.ID),
			logx.Err(err),
		)
		return
	}
	s.logger.Info("driver arrived",
		logx.String("event", "delivery_arrived"),
		logx.String("delivery_id", d.ID),
	)
}

// PushDriverPosition records an idle driver position used by matching.
func (s *Service) PushDriverPosition(ctx context.Context, driverID int64, p geo.Point, at time.Time) (bool, error) {
	if err := validate(driverID, p); err != nil {
		return false, err
	}
	at, err := s.stamp(at)
	if err != nil {
		return false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	dr, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return false, err
	}
	if dr == nil {
		return false, fmt.Errorf("driver %d: %w", driverID, apperr.ErrNotFound)
	}
	return s.store.UpdateDriverPosition(ctx, driverID, p, at)
}

// stamp defaults a missing timestamp to now and rejects points from the future,
// which would otherwise mark every later point as stale.
func (s *Service) stamp(at time.Time) (time.Time, error) {
	now := s.now()
	if at.IsZero() {
		return now, nil
	}
	if at.After(now.Add(maxClockSkew)) {
		return time.Time{}, fmt.Errorf("timestamp %s is ahead of server time: %w", at.UTC().Format(time.RFC3339), apperr.ErrInvalid)
	}
	return at, nil
}

func validate(driverID int64, p geo.Point) error {
	if driverID <= 0 {
		return fmt.Errorf("driver id is required: %w", apperr.ErrInvalid)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("point: %w: %w", apperr.ErrInvalid, err)
	}
	return nil
}

func checkOwner(d domain.Delivery, driverID int64) error {
	if !d.HasDriver(driverID) {
		return fmt.Errorf("driver %d is not assigned to delivery %s: %w", driverID, d.ID, apperr.ErrForbidden)
	}
	if !d.Status.Active() {
		return fmt.Errorf("delivery %s is %s: %w", d.ID, d.Status, apperr.ErrInactive)
	}
	return nil
}
