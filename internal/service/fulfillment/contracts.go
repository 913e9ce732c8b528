//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=fulfillment_test

package fulfillment

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// DeliveryPort abstracts the subset of delivery service operations
// needed by the Processor when handling order events
type DeliveryPort interface {
	Create(ctx context.Context, in domain.NewDelivery) (domain.Delivery, error)
	CancelByOrderID(ctx context.Context, orderID string, actor domain.Actor) (domain.Delivery, error)
}
