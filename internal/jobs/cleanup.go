package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository"
)

// CleanupJob reaps expired state on a fixed interval: heartbeat records
// older than the retention window and closed sessions past their history
// retention. Presence correctness never depends on the purge; it only
// bounds storage.
type CleanupJob struct {
	sessionRepo      repository.SessionRepository
	presenceRepo     repository.PresenceRepository
	sessionRetention time.Duration
	heartbeatMaxAge  time.Duration
	interval         time.Duration
	done             chan struct{}
}

func NewCleanupJob(
	sessionRepo repository.SessionRepository,
	presenceRepo repository.PresenceRepository,
	sessionRetention time.Duration,
	heartbeatMaxAge time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		sessionRepo:      sessionRepo,
		presenceRepo:     presenceRepo,
		sessionRetention: sessionRetention,
		heartbeatMaxAge:  heartbeatMaxAge,
		interval:         interval,
		done:             make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.runCleanup(ctx, "stale heartbeats", func(ctx context.Context) (int64, error) {
		return j.presenceRepo.PurgeStale(ctx, j.heartbeatMaxAge)
	})
	j.runCleanup(ctx, "closed sessions", func(ctx context.Context) (int64, error) {
		// Only sessions closed before the cutoff are reaped; active ones
		// are never touched regardless of age.
		return j.sessionRepo.DeleteClosedBefore(ctx, time.Now().Add(-j.sessionRetention))
	})
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
