package inmem

import (
	"context"
	"sync"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository"
)

// ChannelMessageRepository keeps per-receiver message logs in append
// order, mirroring the seq ordering of the Postgres store.
type ChannelMessageRepository struct {
	mu       sync.RWMutex
	messages map[string][]model.ChatMessage
}

var _ repository.ChannelMessageRepository = (*ChannelMessageRepository)(nil)

func NewChannelMessageRepository() *ChannelMessageRepository {
	return &ChannelMessageRepository{
		messages: make(map[string][]model.ChatMessage),
	}
}

func (r *ChannelMessageRepository) Append(ctx context.Context, msg model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ReceiverID] = append(r.messages[msg.ReceiverID], msg)
	return nil
}

func (r *ChannelMessageRepository) ListByReceiver(ctx context.Context, receiverID string, limit, offset int) ([]model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.messages[receiverID]
	if offset >= len(log) {
		return []model.ChatMessage{}, nil
	}
	end := offset + limit
	if end > len(log) {
		end = len(log)
	}

	out := make([]model.ChatMessage, end-offset)
	copy(out, log[offset:end])
	return out, nil
}

func (r *ChannelMessageRepository) CountByReceiver(ctx context.Context, receiverID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages[receiverID]), nil
}
