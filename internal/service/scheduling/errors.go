package scheduling

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidationReason identifies which field-level rule a request broke.
// Callers can branch on it without parsing messages.
type ValidationReason string

const (
	ReasonMissingUser     ValidationReason = "missing_user"
	ReasonMissingVehicle  ValidationReason = "missing_vehicle"
	ReasonMissingInterval ValidationReason = "missing_interval"
	ReasonInvalidInterval ValidationReason = "invalid_interval"
	ReasonPastStart       ValidationReason = "past_start_date"

	ReasonInvalidIdempotencyKey ValidationReason = "invalid_idempotency_key"
)

type ValidationError struct {
	Reason ValidationReason
	msg    string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(reason ValidationReason, msg string) error {
	return &ValidationError{Reason: reason, msg: msg}
}

// ConflictError reports a double booking. ConflictingID names the reservation
// that blocked the request when the in-memory pre-check found it; it is
// uuid.Nil when the conflict only surfaced at commit time through the
// storage constraint.
type ConflictError struct {
	ConflictingID uuid.UUID
}

func (e *ConflictError) Error() string {
	if e.ConflictingID == uuid.Nil {
		return "reservation conflicts with an existing reservation"
	}
	return fmt.Sprintf("reservation conflicts with reservation %s", e.ConflictingID)
}

// ErrNoActiveAssignment means the user holds no assignment for the vehicle
// that is active right now.
var ErrNoActiveAssignment = errors.New("user has no active assignment for this vehicle")
