package store

import (
	"context"

	"github.com/google/uuid"

	"fleetdesk/backend/internal/domain"
)

// ScheduleTx is the unit of work a reservation write runs in. Implementations
// must hold whatever locks are needed so that the candidate set read through
// ListCandidates cannot change underneath the write that follows it.
type ScheduleTx interface {
	CreateReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	UpdateReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	DeleteReservation(ctx context.Context, id uuid.UUID) error
	ListCandidates(ctx context.Context, f CandidateFilter) ([]domain.Reservation, error)
}
