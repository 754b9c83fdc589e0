package service

import (
	"context"
	"fmt"
	"time"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository"
)

// PresenceService answers "how many participants are engaged with this
// resource right now" from heartbeat bookkeeping alone. Clients send a
// heartbeat on a fixed interval while viewing; silence for one staleness
// window means gone, whatever the cause.
type PresenceService struct {
	repo      repository.PresenceRepository
	staleness time.Duration
}

func NewPresenceService(repo repository.PresenceRepository, staleness time.Duration) *PresenceService {
	return &PresenceService{repo: repo, staleness: staleness}
}

// Heartbeat upserts the last-seen timestamp for (resource, participant).
// Safe to call repeatedly; N rapid calls leave one record, not N.
func (s *PresenceService) Heartbeat(ctx context.Context, resourceID, participantID string) error {
	if err := s.repo.Heartbeat(ctx, resourceID, participantID); err != nil {
		return fmt.Errorf("record heartbeat: %w", err)
	}
	return nil
}

func (s *PresenceService) ActiveCount(ctx context.Context, resourceID string) (int, error) {
	count, err := s.repo.ActiveCount(ctx, resourceID, s.staleness)
	if err != nil {
		return 0, fmt.Errorf("active count: %w", err)
	}
	return count, nil
}
