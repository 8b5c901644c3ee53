package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Assignment grants a user the right to reserve a specific vehicle. A nil
// EndDate means the grant never expires. Assignments are owned by the
// assignment-management subsystem; this service only reads them.
type Assignment struct {
	bun.BaseModel `bun:"table:assignments"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	VehicleID uuid.UUID  `bun:"vehicle_id,notnull,type:uuid"`
	StartDate time.Time  `bun:"start_date,notnull"`
	EndDate   *time.Time `bun:"end_date"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	UpdatedAt time.Time  `bun:"updated_at,notnull"`
}

// ActiveAt reports whether the assignment covers the instant t. The start is
// inclusive; an end equal to t means the assignment has already lapsed.
func (a *Assignment) ActiveAt(t time.Time) bool {
	if a.StartDate.After(t) {
		return false
	}
	return a.EndDate == nil || a.EndDate.After(t)
}
