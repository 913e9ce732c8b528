//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=assignment_test

package assignment

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// Snapshotter reads the candidate sets of a matching pass.
type Snapshotter interface {
	PendingDeliveries(ctx context.Context) ([]domain.Delivery, error)
	AvailableDrivers(ctx context.Context) ([]domain.Driver, error)
}

// Assigner claims one delivery for one driver. A lost race must be reported
// as apperr.ErrAlreadyClaimed.
type Assigner interface {
	Assign(ctx context.Context, deliveryID string, driverID int64) (domain.Delivery, error)
}
