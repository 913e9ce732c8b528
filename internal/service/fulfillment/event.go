package fulfillment

import (
	"time"

	"delivery-dispatch/internal/geo"
)

// Event is a single order fulfillment event.
type Event struct {
	OrderID            string
	Status             string
	RestaurantLocation *geo.Point
	CustomerLocation   *geo.Point
	CreatedAt          time.Time
}
