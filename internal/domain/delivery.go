package domain

import (
	"time"

	"delivery-dispatch/internal/geo"
)

// Delivery is the physical fulfillment of one order.
type Delivery struct {
	ID                 string
	OrderID            string
	Status             Status
	DriverID           *int64
	RestaurantLocation geo.Point
	CustomerLocation   geo.Point
	DriverLocation     *geo.Point
	DriverLocationAt   *time.Time
	CreatedAt          time.Time
	AssignedAt         *time.Time
	PickedUpAt         *time.Time
	InTransitAt        *time.Time
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	Rating             *int
}

// NewDelivery carries the fields captured when an order enters fulfillment.
type NewDelivery struct {
	OrderID            string
	RestaurantLocation geo.Point
	CustomerLocation   geo.Point
}

// Claim is a guarded pending -> driver_assigned update for one driver.
type Claim struct {
	DeliveryID string
	DriverID   int64
	At         time.Time
}

// StatusChange is a guarded status update conditioned on From.
type StatusChange struct {
	DeliveryID    string
	From          Status
	To            Status
	At            time.Time
	ReleaseDriver bool
}

// LocationUpdate is a driver position reported for a delivery.
type LocationUpdate struct {
	DeliveryID string
	DriverID   int64
	Point      geo.Point
	At         time.Time
}

// DeliveryFilter narrows delivery listings. Nil fields mean "no constraint".
type DeliveryFilter struct {
	Status   *Status
	DriverID *int64
	Limit    *int
	Offset   *int
}

// Candidate is one (delivery, driver, distance) triple evaluated during a matching pass.
type Candidate struct {
	Delivery   Delivery
	Driver     Driver
	DistanceKm float64
}

// Clone returns a deep copy so callers can't mutate shared pointers.
func (d Delivery) Clone() Delivery {
	out := d
	out.DriverID = clonePtr(d.DriverID)
	out.DriverLocation = clonePtr(d.DriverLocation)
	out.DriverLocationAt = clonePtr(d.DriverLocationAt)
	out.AssignedAt = clonePtr(d.AssignedAt)
	out.PickedUpAt = clonePtr(d.PickedUpAt)
	out.InTransitAt = clonePtr(d.InTransitAt)
	out.DeliveredAt = clonePtr(d.DeliveredAt)
	out.CancelledAt = clonePtr(d.CancelledAt)
	out.Rating = clonePtr(d.Rating)
	return out
}

// HasDriver reports whether d is owned by driverID.
func (d Delivery) HasDriver(driverID int64) bool {
	return d.DriverID != nil && *d.DriverID == driverID
}

// StampFor returns the timestamp field that records entering s.
func (d *Delivery) StampFor(s Status) **time.Time {
	switch s {
	case StatusDriverAssigned:
		return &d.AssignedAt
	case StatusPickedUp:
		return &d.PickedUpAt
	case StatusInTransit:
		return &d.InTransitAt
	case StatusDelivered:
		return &d.DeliveredAt
	case StatusCancelled:
		return &d.CancelledAt
	default:
		return nil
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
