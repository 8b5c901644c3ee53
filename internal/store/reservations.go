package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetdesk/backend/internal/domain"
)

// ListFilter narrows a reservation listing. Nil fields match everything.
type ListFilter struct {
	UserID    *uuid.UUID
	VehicleID *uuid.UUID
	Limit     int
	Offset    int
}

// CandidateFilter selects the reservations that could collide with a proposed
// interval: every reservation sharing the user OR the vehicle, minus the
// reservation being updated. The interval bounds are a closed-interval
// prefilter; the scheduler still runs the authoritative overlap test in
// memory.
type CandidateFilter struct {
	UserID    uuid.UUID
	VehicleID uuid.UUID
	Start     time.Time
	End       time.Time
	ExcludeID uuid.UUID
}

type ReservationRepository interface {
	Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]domain.Reservation, error)
	ListCandidates(ctx context.Context, f CandidateFilter) ([]domain.Reservation, error)

	// PurgeEndedBefore removes reservations whose interval ended before the
	// cutoff. Used by the retention sweep; past reservations never
	// participate in conflict checks for strictly-future requests.
	PurgeEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
