package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository"
)

type heartbeatKey struct {
	resourceID    string
	participantID string
}

// PresenceRepository keeps heartbeats in a map keyed by (resource,
// participant), so repeated heartbeats overwrite rather than accumulate.
// The clock is injectable for staleness tests.
type PresenceRepository struct {
	mu         sync.RWMutex
	heartbeats map[heartbeatKey]time.Time
	now        func() time.Time
}

var _ repository.PresenceRepository = (*PresenceRepository)(nil)

func NewPresenceRepository() *PresenceRepository {
	return &PresenceRepository{
		heartbeats: make(map[heartbeatKey]time.Time),
		now:        time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (r *PresenceRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *PresenceRepository) Heartbeat(ctx context.Context, resourceID, participantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heartbeats[heartbeatKey{resourceID, participantID}] = r.now()
	return nil
}

func (r *PresenceRepository) ActiveCount(ctx context.Context, resourceID string, staleness time.Duration) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := r.now().Add(-staleness)
	count := 0
	for key, ts := range r.heartbeats {
		if key.resourceID == resourceID && !ts.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *PresenceRepository) PurgeStale(ctx context.Context, retention time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-retention)
	var purged int64
	for key, ts := range r.heartbeats {
		if ts.Before(cutoff) {
			delete(r.heartbeats, key)
			purged++
		}
	}
	return purged, nil
}

// Len reports the number of stored heartbeat records. Test hook for
// verifying upsert semantics.
func (r *PresenceRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.heartbeats)
}
