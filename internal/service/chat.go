package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository"
)

// ChatService is the generic channel message log: staff rooms and class
// channels address a fixed group id, 1:1 inboxes address a participant id.
// Whiteboard-session chat goes through SessionService instead; both share
// the same append/read discipline.
type ChatService struct {
	repo repository.ChannelMessageRepository
}

func NewChatService(repo repository.ChannelMessageRepository) *ChatService {
	return &ChatService{repo: repo}
}

// Send appends a message and returns it together with the updated ordered
// log, ready for immediate optimistic display. Empty content is an
// expected rejection: (nil, nil, nil), never an error state.
func (s *ChatService) Send(ctx context.Context, sender model.Participant, receiverID, content string) (*model.ChatMessage, []model.ChatMessage, error) {
	if content == "" {
		return nil, nil, nil
	}

	msg := model.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		SenderName: sender.Name,
		ReceiverID: receiverID,
		Content:    content,
		SentAt:     time.Now(),
	}

	if err := s.repo.Append(ctx, msg); err != nil {
		return nil, nil, fmt.Errorf("append channel message: %w", err)
	}

	msgs, err := s.repo.ListByReceiver(ctx, receiverID, listAllLimit, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("list channel messages: %w", err)
	}

	return &msg, msgs, nil
}

// listAllLimit caps the log returned from Send. Display order is store
// append order; timestamps are cosmetic.
const listAllLimit = 500

func (s *ChatService) List(ctx context.Context, receiverID string, limit, offset int) ([]model.ChatMessage, error) {
	msgs, err := s.repo.ListByReceiver(ctx, receiverID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list channel messages: %w", err)
	}
	return msgs, nil
}

func (s *ChatService) Count(ctx context.Context, receiverID string) (int, error) {
	count, err := s.repo.CountByReceiver(ctx, receiverID)
	if err != nil {
		return 0, fmt.Errorf("count channel messages: %w", err)
	}
	return count, nil
}
