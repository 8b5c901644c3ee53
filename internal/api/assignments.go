package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fleetdesk/backend/internal/store"
)

type AssignmentsHandler struct {
	svc schedulingService
	log *slog.Logger
}

func NewAssignmentsHandler(svc schedulingService, log *slog.Logger) *AssignmentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AssignmentsHandler{
		svc: svc,
		log: log.With(slog.String("component", "api.assignments")),
	}
}

type assignmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	VehicleID uuid.UUID  `json:"vehicle_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "list"))

	var f store.AssignmentFilter
	var err error
	if f.UserID, err = parseUUIDParam(r, "user_id"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if f.VehicleID, err = parseUUIDParam(r, "vehicle_id"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	rows, err := h.svc.ListAssignments(r.Context(), f)
	if err != nil {
		writeError(w, log, err)
		return
	}

	out := make([]assignmentResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, assignmentResponse{
			ID:        a.ID,
			UserID:    a.UserID,
			VehicleID: a.VehicleID,
			StartDate: a.StartDate,
			EndDate:   a.EndDate,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": out})
}

func parseUUIDParam(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.New(name + " must be a UUID")
	}
	return &id, nil
}

func parseListFilter(r *http.Request) (store.ListFilter, error) {
	var f store.ListFilter
	var err error
	if f.UserID, err = parseUUIDParam(r, "user_id"); err != nil {
		return store.ListFilter{}, err
	}
	if f.VehicleID, err = parseUUIDParam(r, "vehicle_id"); err != nil {
		return store.ListFilter{}, err
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if f.Limit, err = strconv.Atoi(raw); err != nil {
			return store.ListFilter{}, errors.New("limit must be an integer")
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if f.Offset, err = strconv.Atoi(raw); err != nil {
			return store.ListFilter{}, errors.New("offset must be an integer")
		}
	}
	return f, nil
}
