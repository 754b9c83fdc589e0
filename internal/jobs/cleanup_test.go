package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository/inmem"
)

func TestCleanupReapsClosedSessionsAndStaleHeartbeats(t *testing.T) {
	sessionRepo := inmem.NewSessionRepository()
	presenceRepo := inmem.NewPresenceRepository()

	// An old closed session, a fresh closed session and an active one.
	old, err := sessionRepo.Create(context.Background(), model.CreateSessionParams{
		ID: "old", HostID: "prof-1", Title: "old", AccessKey: "AAAAAA",
	})
	require.NoError(t, err)
	require.NoError(t, sessionRepo.Close(context.Background(), old.ID))

	active, err := sessionRepo.Create(context.Background(), model.CreateSessionParams{
		ID: "active", HostID: "prof-1", Title: "active", AccessKey: "BBBBBB",
	})
	require.NoError(t, err)

	// Heartbeats: one ancient, one current.
	now := time.Now()
	presenceRepo.SetClock(func() time.Time { return now.Add(-2 * time.Hour) })
	require.NoError(t, presenceRepo.Heartbeat(context.Background(), "lesson-1", "student-1"))
	presenceRepo.SetClock(func() time.Time { return now })
	require.NoError(t, presenceRepo.Heartbeat(context.Background(), "lesson-1", "student-2"))

	job := NewCleanupJob(sessionRepo, presenceRepo, 0, time.Hour, time.Minute)
	job.cleanup()

	gone, err := sessionRepo.FindByID(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "closed session past retention is reaped")

	kept, err := sessionRepo.FindByID(context.Background(), active.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept, "active session is never reaped")

	assert.Equal(t, 1, presenceRepo.Len(), "only the stale heartbeat is purged")
}

func TestCleanupJobStartStop(t *testing.T) {
	sessionRepo := inmem.NewSessionRepository()
	presenceRepo := inmem.NewPresenceRepository()

	job := NewCleanupJob(sessionRepo, presenceRepo, time.Hour, time.Hour, 10*time.Millisecond)
	job.Start()
	time.Sleep(25 * time.Millisecond)
	job.Stop()
}
