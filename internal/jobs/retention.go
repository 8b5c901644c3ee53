// Package jobs holds the background maintenance work driven by cron.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fleetdesk/backend/internal/store"
)

const sweepTimeout = 2 * time.Minute

// RetentionSweeper deletes reservations whose interval ended more than the
// retention window ago. Past reservations never block new ones (starts must
// be strictly future), so purging them only trims the candidate sets the
// conflict scan reads.
type RetentionSweeper struct {
	reservations store.ReservationRepository
	retention    time.Duration
	log          *slog.Logger
}

func NewRetentionSweeper(reservations store.ReservationRepository, retention time.Duration, log *slog.Logger) *RetentionSweeper {
	if log == nil {
		log = slog.Default()
	}
	return &RetentionSweeper{
		reservations: reservations,
		retention:    retention,
		log:          log.With(slog.String("component", "jobs.retention")),
	}
}

// Run executes one sweep. It is the cron entry point and swallows errors
// after logging them; the next scheduled run retries naturally.
func (s *RetentionSweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.retention)
	purged, err := s.reservations.PurgeEndedBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("retention sweep failed", slog.Any("err", err), slog.Time("cutoff", cutoff))
		return
	}
	if purged > 0 {
		s.log.Info("retention sweep done", slog.Int64("purged", purged), slog.Time("cutoff", cutoff))
	}
}

// Schedule registers the sweeper with the cron runner under the given spec
// (e.g. "@daily"). The caller owns starting and stopping the runner.
func (s *RetentionSweeper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddJob(spec, s)
}
