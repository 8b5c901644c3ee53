package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"fleetdesk/backend/internal/domain"
	"fleetdesk/backend/internal/store"
)

type AssignmentRepo struct {
	db *bun.DB
}

func NewAssignmentRepo(db *bun.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

func (r *AssignmentRepo) List(ctx context.Context, f store.AssignmentFilter) ([]domain.Assignment, error) {
	var rows []domain.Assignment
	q := r.db.NewSelect().Model(&rows)
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.VehicleID != nil {
		q = q.Where("vehicle_id = ?", *f.VehicleID)
	}
	if err := q.OrderExpr("start_date ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}
