package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"fleetdesk/backend/internal/service/scheduling"
	"fleetdesk/backend/internal/store"
)

// errorBody is the JSON shape of every non-2xx response. Reason is set for
// validation failures, ConflictingReservationID when the scheduler could name
// the blocking reservation, and Retryable only for transient store failures —
// every other error requires the caller to change the request.
type errorBody struct {
	Error                    string `json:"error"`
	Reason                   string `json:"reason,omitempty"`
	ConflictingReservationID string `json:"conflicting_reservation_id,omitempty"`
	Retryable                bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps scheduler and store errors onto the HTTP contract. Internal
// causes are logged, never leaked to the caller.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var vErr *scheduling.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  vErr.Error(),
			Reason: string(vErr.Reason),
		})
		return
	}

	var cErr *scheduling.ConflictError
	if errors.As(err, &cErr) {
		body := errorBody{Error: "the vehicle or user already has a reservation during that time"}
		if cErr.ConflictingID != uuid.Nil {
			body.ConflictingReservationID = cErr.ConflictingID.String()
		}
		writeJSON(w, http.StatusConflict, body)
		return
	}

	switch {
	case errors.Is(err, scheduling.ErrNoActiveAssignment):
		writeJSON(w, http.StatusForbidden, errorBody{
			Error: "you have no active assignment for this vehicle",
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "reservation not found"})
	case errors.Is(err, store.ErrIdempotencyConflict):
		writeJSON(w, http.StatusConflict, errorBody{
			Error: "this idempotency key was already used for a different reservation",
		})
	default:
		log.Error("request failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:     "internal error, try again later",
			Retryable: true,
		})
	}
}
