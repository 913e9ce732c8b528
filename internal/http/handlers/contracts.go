package handlers

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
	"delivery-dispatch/internal/live"
	"delivery-dispatch/internal/service/dispatch"
)

type deliveryUsecase interface {
	Create(ctx context.Context, in domain.NewDelivery) (domain.Delivery, error)
	Get(ctx context.Context, id string) (domain.Delivery, error)
	List(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error)
	Transition(ctx context.Context, deliveryID string, target domain.Status, actor domain.Actor) (domain.Delivery, error)
	Rate(ctx context.Context, deliveryID string, rating int) (domain.Delivery, error)
}

type driverUsecase interface {
	Register(ctx context.Context, name, phone string) (domain.Driver, error)
	Get(ctx context.Context, id int64) (domain.Driver, error)
	List(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error)
}

type trackingUsecase interface {
	PushLocation(ctx context.Context, u domain.LocationUpdate) (bool, error)
	PushDriverPosition(ctx context.Context, driverID int64, p geo.Point, at time.Time) (bool, error)
}

type dispatchControl interface {
	StartAutomatic() error
	StopAutomatic()
	TriggerManual(ctx context.Context) (int, error)
	Status() dispatch.Status
}

type liveSubscriber interface {
	Subscribe(deliveryID string) *live.Subscription
}
