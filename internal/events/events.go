// Package events publishes reservation lifecycle messages to RabbitMQ for
// downstream consumers (notifications, analytics). Publishing is best effort:
// a failed publish never fails the request that triggered it.
package events

import (
	"time"

	"fleetdesk/backend/internal/domain"
)

const (
	KindReservationCreated  = "reservation.created"
	KindReservationUpdated  = "reservation.updated"
	KindReservationCanceled = "reservation.canceled"
)

// ReservationEvent carries enough information for consumers to act without
// querying the primary database.
type ReservationEvent struct {
	Kind          string    `json:"kind"`
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	VehicleID     string    `json:"vehicle_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReservationEvent builds an event of the given kind from a reservation.
func NewReservationEvent(kind string, res domain.Reservation) ReservationEvent {
	return ReservationEvent{
		Kind:          kind,
		ReservationID: res.ID.String(),
		UserID:        res.UserID.String(),
		VehicleID:     res.VehicleID.String(),
		StartDate:     res.StartDate,
		EndDate:       res.EndDate,
		OccurredAt:    time.Now().UTC(),
	}
}
