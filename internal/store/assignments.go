package store

import (
	"context"

	"github.com/google/uuid"

	"fleetdesk/backend/internal/domain"
)

// AssignmentFilter narrows an assignment listing. Nil fields match everything.
type AssignmentFilter struct {
	UserID    *uuid.UUID
	VehicleID *uuid.UUID
}

// AssignmentRepository is read-only from this service's perspective;
// assignments are written by the fleet-administration subsystem.
type AssignmentRepository interface {
	List(ctx context.Context, f AssignmentFilter) ([]domain.Assignment, error)
}
