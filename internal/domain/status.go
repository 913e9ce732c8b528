package domain

// Status is a delivery lifecycle status.
type Status string

// List of delivery statuses
const (
	StatusPending        Status = "pending"
	StatusDriverAssigned Status = "driver_assigned"
	StatusPickedUp       Status = "picked_up"
	StatusInTransit      Status = "in_transit"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

var allowedStatuses = [...]Status{
	StatusPending, StatusDriverAssigned, StatusPickedUp,
	StatusInTransit, StatusDelivered, StatusCancelled,
}

// transitions is the delivery lifecycle graph. No skipping, no reversal.
var transitions = map[Status][]Status{
	StatusPending:        {StatusDriverAssigned, StatusCancelled},
	StatusDriverAssigned: {StatusPickedUp, StatusCancelled},
	StatusPickedUp:       {StatusInTransit, StatusCancelled},
	StatusInTransit:      {StatusDelivered},
}

// Valid checks if the Status is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Active reports whether s holds a driver.
func (s Status) Active() bool {
	return s == StatusDriverAssigned || s == StatusPickedUp || s == StatusInTransit
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReleasesDriver reports whether entering s frees the attached driver.
func ReleasesDriver(s Status) bool {
	return s.Terminal()
}
