// Package dispatchstore defines the persistence contract shared by the PostgreSQL
// and in-process backends.
//
// Reads return (nil, nil) when the record does not exist. Conditional updates that
// find the record in an unexpected state return apperr.ErrAlreadyClaimed and change nothing.
package dispatchstore

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
)

// DeliveryStore persists deliveries.
type DeliveryStore interface {
	CreateDelivery(ctx context.Context, d *domain.Delivery) error
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)
	GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	ListDeliveries(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error)
	PendingDeliveries(ctx context.Context) ([]domain.Delivery, error)
}

// DriverStore persists drivers.
type DriverStore interface {
	CreateDriver(ctx context.Context, d *domain.Driver) error
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	ListDrivers(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error)
	AvailableDrivers(ctx context.Context) ([]domain.Driver, error)
	UpdateDriverPosition(ctx context.Context, id int64, p geo.Point, at time.Time) (bool, error)
}

// ConditionalStore holds every mutation of the contended driver/delivery pairs.
type ConditionalStore interface {
	ClaimAssignment(ctx context.Context, c domain.Claim) (*domain.Delivery, error)
	TransitionStatus(ctx context.Context, ch domain.StatusChange) (*domain.Delivery, error)
	SetRating(ctx context.Context, deliveryID string, rating int) (*domain.Delivery, error)
	UpdateDeliveryLocation(ctx context.Context, u domain.LocationUpdate) (bool, error)
}

// Store is the full persistence contract.
type Store interface {
	DeliveryStore
	DriverStore
	ConditionalStore
	Ping(ctx context.Context) error
}
