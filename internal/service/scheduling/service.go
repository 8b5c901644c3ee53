package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetdesk/backend/internal/domain"
	"fleetdesk/backend/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service decides whether a proposed reservation may be created or updated.
// Every write runs the same pipeline: field validation, conflict detection
// against reservations sharing the user or the vehicle, then an assignment
// check. The in-memory conflict scan produces a friendly error naming the
// blocking reservation; the storage layer re-enforces the invariant at commit
// time, so two racing requests cannot both slip through.
type Service struct {
	reservations store.ReservationRepository
	assignments  store.AssignmentRepository

	// now is swappable in tests. Both the strictly-future start rule and
	// assignment activity are evaluated against wall-clock time at request
	// time, not against the reservation's own dates.
	now func() time.Time
}

func NewService(reservations store.ReservationRepository, assignments store.AssignmentRepository) *Service {
	return &Service{
		reservations: reservations,
		assignments:  assignments,
		now:          time.Now,
	}
}

type CreateInput struct {
	UserID         uuid.UUID
	VehicleID      uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	IdempotencyKey string
}

// UpdateInput carries a partial update; nil fields keep the stored value.
type UpdateInput struct {
	UserID    *uuid.UUID
	VehicleID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Reservation, error) {
	res := domain.Reservation{
		UserID:    in.UserID,
		VehicleID: in.VehicleID,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
	}

	if err := s.validate(res); err != nil {
		return domain.Reservation{}, err
	}
	if err := s.checkConflictAndAuthorization(ctx, res, uuid.Nil); err != nil {
		return domain.Reservation{}, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Reservation{}, validationError(ReasonInvalidIdempotencyKey, "idempotency_key too long")
		}
		res.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fleetdesk:create_reservation:"+in.UserID.String()+":"+key))
	}

	created, err := s.reservations.Create(ctx, res)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.Reservation{}, &ConflictError{}
		}
		return domain.Reservation{}, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (domain.Reservation, error) {
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}

	res := current
	if in.UserID != nil {
		res.UserID = *in.UserID
	}
	if in.VehicleID != nil {
		res.VehicleID = *in.VehicleID
	}
	if in.StartDate != nil {
		res.StartDate = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		res.EndDate = in.EndDate.UTC()
	}

	if err := s.validate(res); err != nil {
		return domain.Reservation{}, err
	}
	if err := s.checkConflictAndAuthorization(ctx, res, id); err != nil {
		return domain.Reservation{}, err
	}

	updated, err := s.reservations.Update(ctx, res)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.Reservation{}, &ConflictError{}
		}
		return domain.Reservation{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.ListFilter) ([]domain.Reservation, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.reservations.List(ctx, f)
}

// Delete removes a reservation. The interval stops participating in conflict
// checks the moment the delete commits.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.reservations.Delete(ctx, id)
}

func (s *Service) ListAssignments(ctx context.Context, f store.AssignmentFilter) ([]domain.Assignment, error) {
	return s.assignments.List(ctx, f)
}

// validate applies the field-level rules in a fixed order; the first broken
// rule wins. Used identically by Create and Update.
func (s *Service) validate(res domain.Reservation) error {
	if res.UserID == uuid.Nil {
		return validationError(ReasonMissingUser, "user_id is required")
	}
	if res.VehicleID == uuid.Nil {
		return validationError(ReasonMissingVehicle, "vehicle_id is required")
	}
	if res.StartDate.IsZero() || res.EndDate.IsZero() {
		return validationError(ReasonMissingInterval, "start_date and end_date are required")
	}
	if !res.EndDate.After(res.StartDate) {
		return validationError(ReasonInvalidInterval, "end_date must be after start_date")
	}
	if !res.StartDate.After(s.now()) {
		return validationError(ReasonPastStart, "start_date must be in the future")
	}
	return nil
}

func (s *Service) checkConflictAndAuthorization(ctx context.Context, res domain.Reservation, excludeID uuid.UUID) error {
	conflict, err := s.findConflict(ctx, res, excludeID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return &ConflictError{ConflictingID: conflict.ID}
	}

	ok, err := s.isAuthorized(ctx, res.UserID, res.VehicleID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoActiveAssignment
	}
	return nil
}

// findConflict returns the first stored reservation sharing the candidate's
// user or vehicle whose closed interval intersects the candidate's, skipping
// excludeID so an update never collides with its own prior version. Which
// conflicting reservation is returned when several exist is unspecified.
func (s *Service) findConflict(ctx context.Context, candidate domain.Reservation, excludeID uuid.UUID) (*domain.Reservation, error) {
	rows, err := s.reservations.ListCandidates(ctx, store.CandidateFilter{
		UserID:    candidate.UserID,
		VehicleID: candidate.VehicleID,
		Start:     candidate.StartDate,
		End:       candidate.EndDate,
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if excludeID != uuid.Nil && rows[i].ID == excludeID {
			continue
		}
		if domain.Overlaps(candidate.StartDate, candidate.EndDate, rows[i].StartDate, rows[i].EndDate) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// isAuthorized reports whether the user holds an assignment for the vehicle
// that is active at the reference instant. The instant is wall-clock "now",
// not the reservation's start: a far-future reservation is authorized by
// today's assignment state.
func (s *Service) isAuthorized(ctx context.Context, userID, vehicleID uuid.UUID, at time.Time) (bool, error) {
	rows, err := s.assignments.List(ctx, store.AssignmentFilter{
		UserID:    &userID,
		VehicleID: &vehicleID,
	})
	if err != nil {
		return false, err
	}

	for i := range rows {
		if rows[i].ActiveAt(at) {
			return true, nil
		}
	}
	return false, nil
}
