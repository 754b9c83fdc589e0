package repository

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/LahcenOub/tinmel-lms-sub000/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

// PresenceRepository keeps one heartbeat per (resource, participant) key.
// There is no leave signal anywhere in the system: a participant who
// closes the tab, crashes or loses the network simply ages out of the
// active count after the staleness window.
type PresenceRepository interface {
	Heartbeat(ctx context.Context, resourceID, participantID string) error
	// ActiveCount is computed at query time; "now" advances continuously,
	// so the result is never cached.
	ActiveCount(ctx context.Context, resourceID string, staleness time.Duration) (int, error)
	// PurgeStale removes heartbeats older than the retention window. It is
	// an optimization, never required for ActiveCount correctness.
	PurgeStale(ctx context.Context, retention time.Duration) (int64, error)
}

// presenceRepo stores heartbeats in one sorted set per resource, scored by
// the heartbeat's unix-millisecond timestamp. ZADD on an existing member
// replaces its score, which gives upsert semantics for free.
type presenceRepo struct {
	redis *redisclient.Client
}

func NewPresenceRepository(redis *redisclient.Client) PresenceRepository {
	return &presenceRepo{redis: redis}
}

func (r *presenceRepo) Heartbeat(ctx context.Context, resourceID, participantID string) error {
	key := redisclient.PresenceKey(resourceID)
	return r.redis.ZAdd(ctx, key, goredis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: participantID,
	}).Err()
}

func (r *presenceRepo) ActiveCount(ctx context.Context, resourceID string, staleness time.Duration) (int, error) {
	key := redisclient.PresenceKey(resourceID)
	min := time.Now().Add(-staleness).UnixMilli()

	count, err := r.redis.ZCount(ctx, key, fmt.Sprintf("%d", min), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *presenceRepo) PurgeStale(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := fmt.Sprintf("%d", time.Now().Add(-retention).UnixMilli())

	var purged int64
	iter := r.redis.Scan(ctx, 0, redisclient.PresenceKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		removed, err := r.redis.ZRemRangeByScore(ctx, iter.Val(), "-inf", cutoff).Result()
		if err != nil {
			return purged, err
		}
		purged += removed
	}
	if err := iter.Err(); err != nil {
		return purged, err
	}
	return purged, nil
}
