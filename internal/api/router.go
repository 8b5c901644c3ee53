package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"fleetdesk/backend/internal/api/middleware"
)

// RouterConfig carries the transport-level knobs. JWTSecret empty disables
// authentication (development only); RateLimit follows its own Enabled flag.
type RouterConfig struct {
	JWTSecret string
	RateLimit middleware.RateLimitConfig
}

// NewRouter assembles the HTTP surface. All reservation and assignment
// routes sit behind auth and rate limiting; /healthz stays open for probes.
func NewRouter(cfg RouterConfig, reservations *ReservationsHandler, assignments *AssignmentsHandler, rdb *redis.Client) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	if cfg.JWTSecret != "" {
		v1.Use(middleware.Auth(cfg.JWTSecret))
	}
	v1.Use(middleware.RateLimit(cfg.RateLimit, rdb))

	v1.HandleFunc("/reservations", reservations.List).Methods(http.MethodGet)
	v1.HandleFunc("/reservations", reservations.Create).Methods(http.MethodPost)
	v1.HandleFunc("/reservations/{id}", reservations.Get).Methods(http.MethodGet)
	v1.HandleFunc("/reservations/{id}", reservations.Update).Methods(http.MethodPatch)
	v1.HandleFunc("/reservations/{id}", reservations.Delete).Methods(http.MethodDelete)
	v1.HandleFunc("/assignments", assignments.List).Methods(http.MethodGet)

	return handlers.RecoveryHandler()(
		handlers.CombinedLoggingHandler(os.Stdout,
			handlers.CORS(
				handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
				handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Idempotency-Key"}),
			)(r),
		),
	)
}
