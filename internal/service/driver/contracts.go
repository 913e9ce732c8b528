package driver

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// driverRepository defines storage operations required by the registry.
type driverRepository interface {
	CreateDriver(ctx context.Context, d *domain.Driver) error
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	ListDrivers(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error)
}
