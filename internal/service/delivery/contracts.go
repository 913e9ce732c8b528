//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=delivery_test

package delivery

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// Store is the subset of dispatchstore.Store the state machine needs.
type Store interface {
	CreateDelivery(ctx context.Context, d *domain.Delivery) error
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)
	GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	ListDeliveries(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error)
	ClaimAssignment(ctx context.Context, c domain.Claim) (*domain.Delivery, error)
	TransitionStatus(ctx context.Context, ch domain.StatusChange) (*domain.Delivery, error)
	SetRating(ctx context.Context, deliveryID string, rating int) (*domain.Delivery, error)
}

// StatusPublisher receives every accepted transition. It must not block.
type StatusPublisher interface {
	PublishStatus(d domain.Delivery)
}
