// Package memstore is an in-process dispatchstore.Store used for local runs and tests.
// It holds the same conditional-update semantics as the PostgreSQL store: every
// mutation of a driver/delivery pair happens under one lock and checks its guard first.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
	"delivery-dispatch/internal/ports/dispatchstore"
)

// Store keeps deliveries and drivers in maps guarded by a single mutex.
// Records are cloned on the way in and out.
type Store struct {
	mu         sync.Mutex
	deliveries map[string]*domain.Delivery
	byOrder    map[string]string
	drivers    map[int64]*domain.Driver
	phones     map[string]int64
	nextID     int64
	now        func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		deliveries: make(map[string]*domain.Delivery),
		byOrder:    make(map[string]string),
		drivers:    make(map[int64]*domain.Driver),
		phones:     make(map[string]int64),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// CreateDelivery stores d. A second delivery for the same order is apperr.ErrConflict.
func (s *Store) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byOrder[d.OrderID]; ok {
		return apperr.ErrConflict
	}
	if _, ok := s.deliveries[d.ID]; ok {
		return apperr.ErrConflict
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	cp := d.Clone()
	s.deliveries[d.ID] = &cp
	s.byOrder[d.OrderID] = d.ID
	return nil
}

// GetDelivery returns a copy of the delivery or (nil, nil).
func (s *Store) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliveryCopy(id), nil
}

// GetDeliveryByOrderID returns a copy of the order's delivery or (nil, nil).
func (s *Store) GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	return s.deliveryCopy(id), nil
}

// ListDeliveries returns deliveries ordered by creation time, then id.
func (s *Store) ListDeliveries(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Delivery, 0, len(s.deliveries))
	for _, d := range s.deliveries {
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.DriverID != nil && !d.HasDriver(*f.DriverID) {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// PendingDeliveries returns unassigned deliveries, oldest first.
func (s *Store) PendingDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	status := domain.StatusPending
	return s.ListDeliveries(ctx, domain.DeliveryFilter{Status: &status})
}

// CreateDriver registers d with the next id. A reused phone is apperr.ErrConflict.
func (s *Store) CreateDriver(ctx context.Context, d *domain.Driver) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.phones[d.Phone]; ok {
		return apperr.ErrConflict
	}
	s.nextID++
	d.ID = s.nextID
	d.Available = true
	d.CurrentDeliveryID = nil
	d.RegisteredAt = s.now()

	cp := d.Clone()
	s.drivers[d.ID] = &cp
	s.phones[d.Phone] = d.ID
	return nil
}

// GetDriver returns a copy of the driver or (nil, nil).
func (s *Store) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, nil
	}
	cp := d.Clone()
	return &cp, nil
}

// ListDrivers returns drivers ordered by id.
func (s *Store) ListDrivers(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if f.Available != nil && d.Available != *f.Available {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Limit, f.Offset), nil
}

// AvailableDrivers returns drivers not holding an active delivery, in registration order.
func (s *Store) AvailableDrivers(ctx context.Context) ([]domain.Driver, error) {
	available := true
	return s.ListDrivers(ctx, domain.DriverFilter{Available: &available})
}

// UpdateDriverPosition stores an idle position unless a newer one is stored.
func (s *Store) UpdateDriverPosition(ctx context.Context, id int64, p geo.Point, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[id]
	if !ok {
		return false, nil
	}
	return setPosition(d, p, at), nil
}

// ClaimAssignment assigns the delivery to the driver when both are still free.
func (s *Store) ClaimAssignment(ctx context.Context, c domain.Claim) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dr, ok := s.drivers[c.DriverID]
	if !ok || !dr.Available || dr.CurrentDeliveryID != nil {
		return nil, apperr.ErrAlreadyClaimed
	}
	d, ok := s.deliveries[c.DeliveryID]
	if !ok || d.Status != domain.StatusPending {
		return nil, apperr.ErrAlreadyClaimed
	}

	at := c.At
	driverID := c.DriverID
	deliveryID := d.ID
	d.Status = domain.StatusDriverAssigned
	d.DriverID = &driverID
	d.AssignedAt = &at
	dr.Available = false
	dr.CurrentDeliveryID = &deliveryID

	cp := d.Clone()
	return &cp, nil
}

// TransitionStatus moves the delivery from ch.From to ch.To and optionally frees its driver.
func (s *Store) TransitionStatus(ctx context.Context, ch domain.StatusChange) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[ch.DeliveryID]
	if !ok || d.Status != ch.From {
		return nil, apperr.ErrAlreadyClaimed
	}
	stamp := d.StampFor(ch.To)
	if stamp == nil || ch.To == domain.StatusDriverAssigned {
		return nil, apperr.ErrInvalidTransition
	}

	d.Status = ch.To
	if *stamp == nil {
		at := ch.At
		*stamp = &at
	}
	if ch.ReleaseDriver && d.DriverID != nil {
		if dr, ok := s.drivers[*d.DriverID]; ok && dr.CurrentDeliveryID != nil && *dr.CurrentDeliveryID == d.ID {
			dr.Available = true
			dr.CurrentDeliveryID = nil
		}
	}

	cp := d.Clone()
	return &cp, nil
}

// SetRating records the rating of a delivered, unrated delivery.
func (s *Store) SetRating(ctx context.Context, deliveryID string, rating int) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[deliveryID]
	if !ok || d.Status != domain.StatusDelivered || d.Rating != nil {
		return nil, apperr.ErrAlreadyClaimed
	}
	r := rating
	d.Rating = &r
	if d.DriverID != nil {
		if dr, ok := s.drivers[*d.DriverID]; ok {
			total := dr.AverageRating*float64(dr.RatingCount) + float64(rating)
			dr.RatingCount++
			dr.AverageRating = total / float64(dr.RatingCount)
		}
	}

	cp := d.Clone()
	return &cp, nil
}

// UpdateDeliveryLocation stores the owning driver's position. Stale points return false.
func (s *Store) UpdateDeliveryLocation(ctx context.Context, u domain.LocationUpdate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[u.DeliveryID]
	if !ok || !d.HasDriver(u.DriverID) || !d.Status.Active() {
		return false, apperr.ErrAlreadyClaimed
	}
	if d.DriverLocationAt != nil && u.At.Before(*d.DriverLocationAt) {
		return false, nil
	}
	p, at := u.Point, u.At
	d.DriverLocation = &p
	d.DriverLocationAt = &at
	if dr, ok := s.drivers[u.DriverID]; ok {
		setPosition(dr, u.Point, u.At)
	}
	return true, nil
}

func (s *Store) deliveryCopy(id string) *domain.Delivery {
	d, ok := s.deliveries[id]
	if !ok {
		return nil
	}
	cp := d.Clone()
	return &cp
}

func setPosition(d *domain.Driver, p geo.Point, at time.Time) bool {
	if d.LocationAt != nil && at.Before(*d.LocationAt) {
		return false
	}
	d.Location = &p
	d.LocationAt = &at
	return true
}

func page[T any](items []T, limit, offset *int) []T {
	if offset != nil && *offset > 0 {
		if *offset >= len(items) {
			return []T{}
		}
		items = items[*offset:]
	}
	if limit != nil && *limit >= 0 && *limit < len(items) {
		items = items[:*limit]
	}
	return items
}

var _ dispatchstore.Store = (*Store)(nil)
