package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"fleetdesk/backend/internal/domain"
	"fleetdesk/backend/internal/store"
)

// Exclusion constraints on the reservations table. Each one rejects a row
// whose closed [start_date, end_date] range intersects an existing row for
// the same vehicle or the same user. They are the commit-time guarantee; the
// scheduler's in-memory pre-check only exists for a friendlier error.
const (
	constraintVehicleNoOverlap = "reservations_vehicle_no_overlap"
	constraintUserNoOverlap    = "reservations_user_no_overlap"
)

type ReservationRepo struct {
	db *bun.DB
}

func NewReservationRepo(db *bun.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

type scheduleTx struct {
	tx bun.Tx
}

func (r *ReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	var out domain.Reservation
	err := r.InScheduleTransaction(ctx, res.UserID, res.VehicleID, func(ctx context.Context, tx store.ScheduleTx) error {
		created, err := tx.CreateReservation(ctx, res)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return out, nil
}

func (r *ReservationRepo) Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	var out domain.Reservation
	err := r.InScheduleTransaction(ctx, res.UserID, res.VehicleID, func(ctx context.Context, tx store.ScheduleTx) error {
		updated, err := tx.UpdateReservation(ctx, res)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return out, nil
}

func (r *ReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	var row domain.Reservation
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reservation{}, store.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	return row, nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Reservation)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) List(ctx context.Context, f store.ListFilter) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	q := r.db.NewSelect().Model(&rows)
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.VehicleID != nil {
		q = q.Where("vehicle_id = ?", *f.VehicleID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if err := q.OrderExpr("start_date ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReservationRepo) ListCandidates(ctx context.Context, f store.CandidateFilter) ([]domain.Reservation, error) {
	return listCandidates(ctx, r.db, f)
}

func (r *ReservationRepo) PurgeEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*domain.Reservation)(nil)).
		Where("end_date < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InScheduleTransaction runs fn with advisory locks held on both schedules a
// write touches: the user's and the vehicle's. Locks are acquired in sorted
// key order so two requests crossing over a user/vehicle pair cannot
// deadlock.
func (r *ReservationRepo) InScheduleTransaction(ctx context.Context, userID, vehicleID uuid.UUID, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockSchedules(ctx, tx, userID, vehicleID); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{tx: tx})
	})
}

func lockSchedules(ctx context.Context, tx bun.Tx, userID, vehicleID uuid.UUID) error {
	keys := []string{"user:" + userID.String(), "vehicle:" + vehicleID.String()}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (t scheduleTx) CreateReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	m := domain.Reservation{
		ID:        res.ID,
		UserID:    res.UserID,
		VehicleID: res.VehicleID,
		StartDate: res.StartDate,
		EndDate:   res.EndDate,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}

	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if isOverlapViolation(pgErr) {
				return domain.Reservation{}, store.ErrConflict
			}
			if pgErr.Code == "23505" {
				// Duplicate primary key: a retried create with the same
				// idempotency key landed on the deterministic id.
				var existing domain.Reservation
				selectErr := t.tx.NewSelect().
					Model(&existing).
					Where("id = ?", m.ID).
					Limit(1).
					Scan(ctx)
				if selectErr != nil {
					return domain.Reservation{}, err
				}

				if existing.UserID != res.UserID ||
					existing.VehicleID != res.VehicleID ||
					!existing.StartDate.Equal(res.StartDate) ||
					!existing.EndDate.Equal(res.EndDate) {
					return domain.Reservation{}, store.ErrIdempotencyConflict
				}

				return existing, nil
			}
		}
		return domain.Reservation{}, err
	}

	res.ID = m.ID
	return res, nil
}

func (t scheduleTx) UpdateReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	m := res
	result, err := t.tx.NewUpdate().
		Model(&m).
		Column("user_id", "vehicle_id", "start_date", "end_date", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && isOverlapViolation(pgErr) {
			return domain.Reservation{}, store.ErrConflict
		}
		return domain.Reservation{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Reservation{}, err
	}
	if affected == 0 {
		return domain.Reservation{}, store.ErrNotFound
	}
	return m, nil
}

func (t scheduleTx) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.NewDelete().
		Model((*domain.Reservation)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t scheduleTx) ListCandidates(ctx context.Context, f store.CandidateFilter) ([]domain.Reservation, error) {
	return listCandidates(ctx, t.tx, f)
}

func listCandidates(ctx context.Context, db bun.IDB, f store.CandidateFilter) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	q := db.NewSelect().
		Model(&rows).
		Where("(user_id = ? OR vehicle_id = ?)", f.UserID, f.VehicleID).
		// Closed-interval prefilter: rows that cannot intersect
		// [f.Start, f.End] even at a shared endpoint are skipped.
		Where("start_date <= ?", f.End).
		Where("end_date >= ?", f.Start)
	if f.ExcludeID != uuid.Nil {
		q = q.Where("id != ?", f.ExcludeID)
	}
	if err := q.OrderExpr("start_date ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func isOverlapViolation(pgErr *pgconn.PgError) bool {
	if pgErr.Code != "23P01" {
		return false
	}
	return pgErr.ConstraintName == constraintVehicleNoOverlap ||
		pgErr.ConstraintName == constraintUserNoOverlap
}
