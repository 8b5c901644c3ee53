package postgres

import (
	"context"

	"github.com/uptrace/bun"
)

// schemaStatements bootstrap a development database. The reservations table
// carries the range-exclusion constraints the repository maps to
// store.ErrConflict; tstzrange with '[]' bounds makes boundary-touching
// intervals collide, the same policy as domain.Overlaps. The assignments
// table is owned by the fleet-administration subsystem and only read here.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL,
		vehicle_id uuid NOT NULL,
		start_date timestamptz NOT NULL,
		end_date timestamptz NOT NULL,
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL,
		CONSTRAINT reservations_valid_interval CHECK (end_date > start_date),
		CONSTRAINT reservations_vehicle_no_overlap EXCLUDE USING gist (
			vehicle_id WITH =,
			tstzrange(start_date, end_date, '[]') WITH &&
		),
		CONSTRAINT reservations_user_no_overlap EXCLUDE USING gist (
			user_id WITH =,
			tstzrange(start_date, end_date, '[]') WITH &&
		)
	)`,

	`CREATE INDEX IF NOT EXISTS reservations_user_idx ON reservations (user_id, start_date)`,
	`CREATE INDEX IF NOT EXISTS reservations_vehicle_idx ON reservations (vehicle_id, start_date)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL,
		vehicle_id uuid NOT NULL,
		start_date timestamptz NOT NULL,
		end_date timestamptz,
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL,
		CONSTRAINT assignments_valid_interval CHECK (end_date IS NULL OR end_date > start_date)
	)`,

	`CREATE INDEX IF NOT EXISTS assignments_user_vehicle_idx ON assignments (user_id, vehicle_id)`,
}

// EnsureSchema applies the bootstrap DDL statement by statement. All
// statements are idempotent. Accepts any bun executor so tests can run it
// inside a transaction with a scratch search_path.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
