package handlers

import (
	"time"

	"delivery-dispatch/internal/geo"
)

type driverDTO struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Available         bool       `json:"available"`
	AverageRating     float64    `json:"average_rating"`
	RatingCount       int        `json:"rating_count"`
	CurrentDeliveryID *string    `json:"current_delivery_id,omitempty"`
	Location          *geo.Point `json:"location,omitempty"`
	LocationAt        *time.Time `json:"location_at,omitempty"`
	RegisteredAt      time.Time  `json:"registered_at"`
}

type createDriverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type assignmentStatusResponse struct {
	State    string `json:"state"`
	Interval string `json:"interval"`
}

type manualPassResponse struct {
	Assigned int `json:"assigned"`
}
