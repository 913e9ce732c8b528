package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the actor does not own the referenced delivery.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned when a status change violates the delivery lifecycle.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrAlreadyClaimed signals that a conditional update lost a race.
// It never leaves the service layer.
var ErrAlreadyClaimed = errors.New("already claimed")

// ErrUnavailable indicates that persistence or transport is unreachable.
var ErrUnavailable = errors.New("unavailable")

// ErrDuplicateRating is returned when a delivery has already been rated.
var ErrDuplicateRating = errors.New("duplicate rating")

// ErrRatingNotAllowed is returned when a rating is submitted before the delivery is delivered.
var ErrRatingNotAllowed = errors.New("rating not allowed")

// ErrInactive is returned when an operation targets a delivery in a terminal status.
var ErrInactive = errors.New("delivery is not active")

// ErrAlreadyRunning is returned when automatic matching is started twice.
var ErrAlreadyRunning = errors.New("already running")

// TransitionError describes a rejected status change.
type TransitionError struct {
	DeliveryID string
	From       string
	To         string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("delivery %s: transition %s -> %s is not allowed", e.DeliveryID, e.From, e.To)
}

// Is makes TransitionError match ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
