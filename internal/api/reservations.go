package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fleetdesk/backend/internal/domain"
	"fleetdesk/backend/internal/events"
	"fleetdesk/backend/internal/service/scheduling"
	"fleetdesk/backend/internal/store"
)

// schedulingService is the slice of the scheduler the handlers need;
// tests substitute a fake.
type schedulingService interface {
	Create(ctx context.Context, in scheduling.CreateInput) (domain.Reservation, error)
	Update(ctx context.Context, id uuid.UUID, in scheduling.UpdateInput) (domain.Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	List(ctx context.Context, f store.ListFilter) ([]domain.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListAssignments(ctx context.Context, f store.AssignmentFilter) ([]domain.Assignment, error)
}

type ReservationsHandler struct {
	svc    schedulingService
	events *events.Publisher
	log    *slog.Logger
}

func NewReservationsHandler(svc schedulingService, publisher *events.Publisher, log *slog.Logger) *ReservationsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReservationsHandler{
		svc:    svc,
		events: publisher,
		log:    log.With(slog.String("component", "api.reservations")),
	}
}

type reservationPayload struct {
	UserID    *uuid.UUID `json:"user_id"`
	VehicleID *uuid.UUID `json:"vehicle_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type reservationResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toReservationResponse(res domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:        res.ID,
		UserID:    res.UserID,
		VehicleID: res.VehicleID,
		StartDate: res.StartDate,
		EndDate:   res.EndDate,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "create"))

	var payload reservationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	in := scheduling.CreateInput{
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	}
	if payload.UserID != nil {
		in.UserID = *payload.UserID
	}
	if payload.VehicleID != nil {
		in.VehicleID = *payload.VehicleID
	}
	if payload.StartDate != nil {
		in.StartDate = *payload.StartDate
	}
	if payload.EndDate != nil {
		in.EndDate = *payload.EndDate
	}

	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("reservation created",
		slog.String("reservation_id", created.ID.String()),
		slog.String("user_id", created.UserID.String()),
		slog.String("vehicle_id", created.VehicleID.String()),
		slog.Time("start_date", created.StartDate),
		slog.Time("end_date", created.EndDate),
	)
	h.publish(r.Context(), events.KindReservationCreated, created)

	writeJSON(w, http.StatusCreated, toReservationResponse(created))
}

func (h *ReservationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "update"))

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "reservation id must be a UUID"})
		return
	}

	var payload reservationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	updated, err := h.svc.Update(r.Context(), id, scheduling.UpdateInput{
		UserID:    payload.UserID,
		VehicleID: payload.VehicleID,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("reservation updated", slog.String("reservation_id", id.String()))
	h.publish(r.Context(), events.KindReservationUpdated, updated)

	writeJSON(w, http.StatusOK, toReservationResponse(updated))
}

func (h *ReservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "get"))

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "reservation id must be a UUID"})
		return
	}

	res, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "list"))

	f, err := parseListFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	rows, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, log, err)
		return
	}

	out := make([]reservationResponse, 0, len(rows))
	for _, res := range rows {
		out = append(out, toReservationResponse(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": out})
}

func (h *ReservationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "delete"))

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "reservation id must be a UUID"})
		return
	}

	// Fetch first so the cancellation event can carry the interval.
	res, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("reservation deleted", slog.String("reservation_id", id.String()))
	h.publish(r.Context(), events.KindReservationCanceled, res)

	w.WriteHeader(http.StatusNoContent)
}

// publish is fire and forget; a broker outage must not fail the request.
func (h *ReservationsHandler) publish(ctx context.Context, kind string, res domain.Reservation) {
	_ = h.events.Publish(ctx, events.NewReservationEvent(kind, res))
}
