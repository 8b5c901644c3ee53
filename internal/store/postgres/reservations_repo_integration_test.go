package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"fleetdesk/backend/internal/domain"
	"fleetdesk/backend/internal/store"
)

func TestPostgresIntegration_ReservationOverlapAndIdempotency(t *testing.T) {
	databaseURL := strings.TrimSpace(os.Getenv("FLEETDESK_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("FLEETDESK_TEST_DATABASE_URL not set")
	}

	db, err := Open(databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	schema := "fleetdesk_test_" + randomHex(t, 8)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = db.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userA := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	userB := uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	vehicleA := uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	vehicleB := uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewRaw("SET LOCAL search_path TO " + schema + ", public").Exec(ctx); err != nil {
			return err
		}
		if err := EnsureSchema(ctx, tx); err != nil {
			return err
		}

		s := scheduleTx{tx: tx}

		r1, err := s.CreateReservation(ctx, domain.Reservation{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000901"),
			UserID:    userA,
			VehicleID: vehicleA,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			return err
		}

		// Same vehicle, different user, overlapping: vehicle constraint fires.
		_, err = s.CreateReservation(ctx, domain.Reservation{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000902"),
			UserID:    userB,
			VehicleID: vehicleA,
			StartDate: start.Add(time.Hour),
			EndDate:   end.Add(time.Hour),
		})
		if err != store.ErrConflict {
			return fmt.Errorf("vehicle overlap err = %v, want %v", err, store.ErrConflict)
		}

		// Same vehicle, boundary touching: closed ranges still collide.
		_, err = s.CreateReservation(ctx, domain.Reservation{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000903"),
			UserID:    userB,
			VehicleID: vehicleA,
			StartDate: end,
			EndDate:   end.Add(2 * time.Hour),
		})
		if err != store.ErrConflict {
			return fmt.Errorf("boundary overlap err = %v, want %v", err, store.ErrConflict)
		}

		// Same user, different vehicle, overlapping: user constraint fires.
		_, err = s.CreateReservation(ctx, domain.Reservation{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000904"),
			UserID:    userA,
			VehicleID: vehicleB,
			StartDate: start.Add(time.Hour),
			EndDate:   end.Add(time.Hour),
		})
		if err != store.ErrConflict {
			return fmt.Errorf("user overlap err = %v, want %v", err, store.ErrConflict)
		}

		// Disjoint by a minute: accepted.
		r2, err := s.CreateReservation(ctx, domain.Reservation{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000905"),
			UserID:    userB,
			VehicleID: vehicleA,
			StartDate: end.Add(time.Minute),
			EndDate:   end.Add(2 * time.Hour),
		})
		if err != nil {
			return err
		}

		rows, err := s.ListCandidates(ctx, store.CandidateFilter{
			UserID:    userB,
			VehicleID: vehicleA,
			Start:     start,
			End:       end.Add(3 * time.Hour),
		})
		if err != nil {
			return err
		}
		if len(rows) != 2 {
			return fmt.Errorf("len(candidates) = %d, want 2", len(rows))
		}

		// Re-running the same idempotent create returns the stored row.
		again, err := s.CreateReservation(ctx, domain.Reservation{
			ID:        r1.ID,
			UserID:    userA,
			VehicleID: vehicleA,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			return err
		}
		if again.ID != r1.ID {
			return fmt.Errorf("idempotent create id = %s, want %s", again.ID, r1.ID)
		}

		// Same id with different fields is a key reuse.
		_, err = s.CreateReservation(ctx, domain.Reservation{
			ID:        r1.ID,
			UserID:    userA,
			VehicleID: vehicleB,
			StartDate: start,
			EndDate:   end,
		})
		if err != store.ErrIdempotencyConflict {
			return fmt.Errorf("idempotency err = %v, want %v", err, store.ErrIdempotencyConflict)
		}

		// Updating r2 onto r1's slot trips the constraint; moving it away works.
		r2.StartDate = start.Add(30 * time.Minute)
		r2.EndDate = start.Add(90 * time.Minute)
		_, err = s.UpdateReservation(ctx, r2)
		if err != store.ErrConflict {
			return fmt.Errorf("update overlap err = %v, want %v", err, store.ErrConflict)
		}

		r2.StartDate = end.Add(3 * time.Hour)
		r2.EndDate = end.Add(4 * time.Hour)
		if _, err := s.UpdateReservation(ctx, r2); err != nil {
			return err
		}

		// Deleting frees the slot immediately.
		if err := s.DeleteReservation(ctx, r1.ID); err != nil {
			return err
		}
		if _, err := s.CreateReservation(ctx, domain.Reservation{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000906"),
			UserID:    userB,
			VehicleID: vehicleA,
			StartDate: start,
			EndDate:   end,
		}); err != nil {
			return err
		}

		if err := s.DeleteReservation(ctx, r1.ID); err != store.ErrNotFound {
			return fmt.Errorf("double delete err = %v, want %v", err, store.ErrNotFound)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("tx error: %v", err)
	}
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}
