package domain

import (
	"regexp"
	"time"

	"delivery-dispatch/internal/geo"
)

// Driver is a dispatchable agent. ID order is registration order.
type Driver struct {
	ID                int64
	Name              string
	Phone             string
	AverageRating     float64
	RatingCount       int
	Available         bool
	CurrentDeliveryID *string
	Location          *geo.Point
	LocationAt        *time.Time
	RegisteredAt      time.Time
}

// DriverFilter narrows driver listings. Nil fields mean "no constraint".
type DriverFilter struct {
	Available *bool
	Limit     *int
	Offset    *int
}

// Clone returns a deep copy of d.
func (d Driver) Clone() Driver {
	out := d
	out.CurrentDeliveryID = clonePtr(d.CurrentDeliveryID)
	out.Location = clonePtr(d.Location)
	out.LocationAt = clonePtr(d.LocationAt)
	return out
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{11}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
