package kafka

import (
	"strings"
	"time"

	"delivery-dispatch/internal/geo"
	"delivery-dispatch/internal/service/fulfillment"
)

// PointDTO is a coordinate pair on the wire
type PointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventDTO is a data transfer object for fulfillment.Event
type EventDTO struct {
	OrderID            string    `json:"order_id"`
	Status             string    `json:"status"`
	RestaurantLocation *PointDTO `json:"restaurant_location,omitempty"`
	CustomerLocation   *PointDTO `json:"customer_location,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// ToDomain converts EventDTO to fulfillment.Event
func ToDomain(dto EventDTO) fulfillment.Event {
	return fulfillment.Event{
		OrderID:            strings.TrimSpace(dto.OrderID),
		Status:             strings.TrimSpace(dto.Status),
		RestaurantLocation: toPoint(dto.RestaurantLocation),
		CustomerLocation:   toPoint(dto.CustomerLocation),
		CreatedAt:          dto.CreatedAt,
	}
}

func toPoint(p *PointDTO) *geo.Point {
	if p == nil {
		return nil
	}
	return &geo.Point{Lat: p.Lat, Lng: p.Lng}
}
