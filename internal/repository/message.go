package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

// ChannelMessageRepository is the generic append-only message log keyed by
// receiver: a fixed group id (staff room, class channel) or a participant
// id (1:1 inbox). Whiteboard-session chat lives with the session instead.
type ChannelMessageRepository interface {
	Append(ctx context.Context, msg model.ChatMessage) error
	ListByReceiver(ctx context.Context, receiverID string, limit, offset int) ([]model.ChatMessage, error)
	CountByReceiver(ctx context.Context, receiverID string) (int, error)
}

type channelMessageRepo struct {
	db *sqlx.DB
}

func NewChannelMessageRepository(db *sqlx.DB) ChannelMessageRepository {
	return &channelMessageRepo{db: db}
}

func (r *channelMessageRepo) Append(ctx context.Context, msg model.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channel_messages (id, sender_id, sender_name, receiver_id, content, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.SenderID, msg.SenderName, msg.ReceiverID, msg.Content, msg.SentAt)
	return err
}

func (r *channelMessageRepo) ListByReceiver(ctx context.Context, receiverID string, limit, offset int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT id, sender_id, sender_name, receiver_id, content, sent_at
		FROM channel_messages
		WHERE receiver_id = $1
		ORDER BY seq ASC
		LIMIT $2 OFFSET $3
	`, receiverID, limit, offset)
	return msgs, err
}

func (r *channelMessageRepo) CountByReceiver(ctx context.Context, receiverID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM channel_messages WHERE receiver_id = $1
	`, receiverID)
	return count, err
}
