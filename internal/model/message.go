package model

import "time"

// ChatMessage is an append-only log entry, scoped either to a whiteboard
// session or to a channel (a fixed group id or a participant id for 1:1).
// SenderName is frozen at send time; it is not updated on rename.
// SentAt is the sender's clock and is cosmetic only: display order is
// always the store's append order, never the timestamp.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"senderId"`
	SenderName string    `db:"sender_name" json:"senderName"`
	ReceiverID string    `db:"receiver_id" json:"receiverId"`
	Content    string    `db:"content" json:"content"`
	SentAt     time.Time `db:"sent_at" json:"timestamp"`
}
