package handlers

import (
	"time"

	"delivery-dispatch/internal/geo"
)

type createDeliveryRequest struct {
	OrderID            string    `json:"order_id"`
	RestaurantLocation geo.Point `json:"restaurant_location"`
	CustomerLocation   geo.Point `json:"customer_location"`
}

type changeStatusRequest struct {
	Status   string `json:"status"`
	Actor    string `json:"actor"`
	DriverID int64  `json:"driver_id,omitempty"`
}

type locationRequest struct {
	DriverID  int64      `json:"driver_id,omitempty"`
	Point     geo.Point  `json:"point"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type locationResponse struct {
	Stored bool `json:"stored"`
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type deliveryDTO struct {
	ID                 string     `json:"id"`
	OrderID            string     `json:"order_id"`
	Status             string     `json:"status"`
	DriverID           *int64     `json:"driver_id"`
	RestaurantLocation geo.Point  `json:"restaurant_location"`
	CustomerLocation   geo.Point  `json:"customer_location"`
	DriverLocation     *geo.Point `json:"driver_location,omitempty"`
	DriverLocationAt   *time.Time `json:"driver_location_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	AssignedAt         *time.Time `json:"assigned_at,omitempty"`
	PickedUpAt         *time.Time `json:"picked_up_at,omitempty"`
	InTransitAt        *time.Time `json:"in_transit_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	Rating             *int       `json:"rating,omitempty"`
}
