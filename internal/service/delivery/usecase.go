package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
)

// Service is the delivery state machine. It is the only writer of delivery status.
type Service struct {
	store            Store
	publisher        StatusPublisher
	operationTimeout time.Duration
	logger           logx.Logger
	metrics          *metrics.Dispatch
	now              func() time.Time
	newID            func() string
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// NewService creates a delivery Service. A nil publisher discards status events.
func NewService(st Store, pub StatusPublisher, timeout time.Duration, logger logx.Logger, m *metrics.Dispatch) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if m == nil {
		m = metrics.NewDispatch()
	}
	return &Service{
		store:            st,
		publisher:        pub,
		operationTimeout: timeout,
		logger:           logger,
		metrics:          m,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishStatus(domain.Delivery) {}

// Create registers a new pending delivery for an order.
func (s *Service) Create(ctx context.Context, in domain.NewDelivery) (domain.Delivery, error) {
	orderID, err := validateOrderID(in.OrderID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if err := in.RestaurantLocation.Validate(); err != nil {
		return domain.Delivery{}, fmt.Errorf("restaurant location: %w: %w", apperr.ErrInvalid, err)
	}
	if err := in.CustomerLocation.Validate(); err != nil {
		return domain.Delivery{}, fmt.Errorf("customer location: %w: %w", apperr.ErrInvalid, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d := domain.Delivery{
		ID:                 s.newID(),
		OrderID:            orderID,
		Status:             domain.StatusPending,
		RestaurantLocation: in.RestaurantLocation,
		CustomerLocation:   in.CustomerLocation,
		CreatedAt:          s.now(),
	}
	if err := s.store.CreateDelivery(ctx, &d); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return domain.Delivery{}, fmt.Errorf("order %q already has a delivery: %w", orderID, apperr.ErrConflict)
		}
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.String("delivery_id", d.ID),
		logx.String("order_id", d.OrderID),
	)
	return d, nil
}

// Get returns a delivery by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Delivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.load(ctx, id)
}

// GetByOrderID returns the delivery of an order.
func (s *Service) GetByOrderID(ctx context.Context, orderID string) (domain.Delivery, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.Delivery{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.store.GetDeliveryByOrderID(ctx, orderID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
	}
	return *d, nil
}

// List returns deliveries matching f.
func (s *Service) List(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, fmt.Errorf("status %q: %w", *f.Status, apperr.ErrInvalid)
	}
	if (f.Limit != nil && *f.Limit < 0) || (f.Offset != nil && *f.Offset < 0) {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.ListDeliveries(ctx, f)
}

// Assign claims a pending delivery for a driver. A lost race is returned as
// apperr.ErrAlreadyClaimed so the caller can move on to its next candidate.
func (s *Service) Assign(ctx context.Context, deliveryID string, driverID int64) (domain.Delivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, err := s.store.ClaimAssignment(ctx, domain.Claim{
		DeliveryID: deliveryID,
		DriverID:   driverID,
		At:         s.now(),
	})
	if err != nil {
		return domain.Delivery{}, err
	}
	s.accepted(*updated, domain.StatusPending, domain.Actor{Kind: domain.ActorDispatcher, DriverID: driverID})
	return *updated, nil
}

// Transition moves a delivery to target on behalf of actor.
func (s *Service) Transition(ctx context.Context, deliveryID string, target domain.Status, actor domain.Actor) (domain.Delivery, error) {
	if !target.Valid() {
		return domain.Delivery{}, fmt.Errorf("status %q: %w", target, apperr.ErrInvalid)
	}
	if !actor.Kind.Valid() {
		return domain.Delivery{}, fmt.Errorf("actor %q: %w", actor.Kind, apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.load(ctx, deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if actor.Kind == domain.ActorDriver && !current.HasDriver(actor.DriverID) {
		return domain.Delivery{}, fmt.Errorf("driver %d on delivery %s: %w", actor.DriverID, deliveryID, apperr.ErrForbidden)
	}
	if !domain.CanTransition(current.Status, target) {
		return domain.Delivery{}, transitionError(current, target)
	}

	if target == domain.StatusDriverAssigned {
		return s.transitionToAssigned(ctx, current, actor)
	}

	updated, err := s.store.TransitionStatus(ctx, domain.StatusChange{
		DeliveryID:    deliveryID,
		From:          current.Status,
		To:            target,
		At:            s.now(),
		ReleaseDriver: domain.ReleasesDriver(target),
	})
	if errors.Is(err, apperr.ErrAlreadyClaimed) {
		return domain.Delivery{}, s.lostRace(ctx, deliveryID, target)
	}
	if err != nil {
		return domain.Delivery{}, err
	}

	s.accepted(*updated, current.Status, actor)
	return *updated, nil
}

func (s *Service) transitionToAssigned(ctx context.Context, current domain.Delivery, actor domain.Actor) (domain.Delivery, error) {
	if actor.Kind != domain.ActorDispatcher && actor.Kind != domain.ActorOperator {
		return domain.Delivery{}, fmt.Errorf("actor %q cannot assign: %w", actor.Kind, apperr.ErrForbidden)
	}
	if actor.DriverID <= 0 {
		return domain.Delivery{}, fmt.Errorf("driver id is required to assign: %w", apperr.ErrInvalid)
	}

	updated, err := s.store.ClaimAssignment(ctx, domain.Claim{
		DeliveryID: current.ID,
		DriverID:   actor.DriverID,
		At:         s.now(),
	})
	if errors.Is(err, apperr.ErrAlreadyClaimed) {
		fresh, lerr := s.load(ctx, current.ID)
		if lerr != nil {
			return domain.Delivery{}, lerr
		}
		if fresh.Status != domain.StatusPending {
			return domain.Delivery{}, transitionError(fresh, domain.StatusDriverAssigned)
		}
		return domain.Delivery{}, fmt.Errorf("driver %d is not available: %w", actor.DriverID, apperr.ErrConflict)
	}
	if err != nil {
		return domain.Delivery{}, err
	}

	s.accepted(*updated, current.Status, actor)
	return *updated, nil
}

// Cancel cancels a non-terminal delivery and releases its driver.
func (s *Service) Cancel(ctx context.Context, deliveryID string, actor domain.Actor) (domain.Delivery, error) {
	return s.Transition(ctx, deliveryID, domain.StatusCancelled, actor)
}

// CancelByOrderID cancels the delivery of an order.
func (s *Service) CancelByOrderID(ctx context.Context, orderID string, actor domain.Actor) (domain.Delivery, error) {
	d, err := s.GetByOrderID(ctx, orderID)
	if err != nil {
		return domain.Delivery{}, err
	}
	return s.Cancel(ctx, d.ID, actor)
}

// Rate records a 1..5 rating for a delivered delivery, exactly once.
func (s *Service) Rate(ctx context.Context, deliveryID string, rating int) (domain.Delivery, error) {
	if rating < 1 || rating > 5 {
		return domain.Delivery{}, fmt.Errorf("rating %d: %w", rating, apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.load(ctx, deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if err := ratingAllowed(current); err != nil {
		return domain.Delivery{}, err
	}

	updated, err := s.store.SetRating(ctx, deliveryID, rating)
	if errors.Is(err, apperr.ErrAlreadyClaimed) {
		fresh, lerr := s.load(ctx, deliveryID)
		if lerr != nil {
			return domain.Delivery{}, lerr
		}
		if rerr := ratingAllowed(fresh); rerr != nil {
			return domain.Delivery{}, rerr
		}
		return domain.Delivery{}, fmt.Errorf("delivery %s: %w", deliveryID, apperr.ErrDuplicateRating)
	}
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery rated",
		logx.String("event", "delivery_rated"),
		logx.String("delivery_id", deliveryID),
		logx.Int("rating", rating),
	)
	return *updated, nil
}

func ratingAllowed(d domain.Delivery) error {
	if d.Status != domain.StatusDelivered {
		return fmt.Errorf("delivery %s is %s: %w", d.ID, d.Status, apperr.ErrRatingNotAllowed)
	}
	if d.Rating != nil {
		return fmt.Errorf("delivery %s: %w", d.ID, apperr.ErrDuplicateRating)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (domain.Delivery, error) {
	d, err := s.store.GetDelivery(ctx, id)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, fmt.Errorf("delivery %s: %w", id, apperr.ErrNotFound)
	}
	return *d, nil
}

// lostRace reports a failed conditional update against the status that won.
func (s *Service) lostRace(ctx context.Context, id string, target domain.Status) error {
	fresh, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return transitionError(fresh, target)
}

func (s *Service) accepted(d domain.Delivery, from domain.Status, actor domain.Actor) {
	s.metrics.Transitions.WithLabelValues(string(d.Status)).Inc()

	fields := []logx.Field{
		logx.String("event", "delivery_transition"),
		logx.String("delivery_id", d.ID),
		logx.String("from", string(from)),
		logx.String("to", string(d.Status)),
		logx.String("actor", string(actor.Kind)),
	}
	if d.DriverID != nil {
		fields = append(fields, logx.Int64("driver_id", *d.DriverID))
	}
	s.logger.Info("delivery status changed", fields...)
	s.publisher.PublishStatus(d)
}

func transitionError(d domain.Delivery, target domain.Status) error {
	return &apperr.TransitionError{DeliveryID: d.ID, From: string(d.Status), To: string(target)}
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", fmt.Errorf("order id is required: %w", apperr.ErrInvalid)
	}
	return orderID, nil
}
