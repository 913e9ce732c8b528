//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=tracking_test

package tracking

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
)

// Store is the subset of dispatchstore.Store used by location ingestion.
type Store interface {
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	UpdateDeliveryLocation(ctx context.Context, u domain.LocationUpdate) (bool, error)
	UpdateDriverPosition(ctx context.Context, id int64, p geo.Point, at time.Time) (bool, error)
}

// LocationPublisher fans out accepted positions. It must not block.
type LocationPublisher interface {
	PublishLocation(deliveryID string, driverID int64, p geo.Point, at time.Time)
}

// Transitioner applies status changes detected from positions.
type Transitioner interface {
	Transition(ctx context.Context, deliveryID string, target domain.Status, actor domain.Actor) (domain.Delivery, error)
}
