package model

import "time"

// Session is one whiteboard collaboration instance: exactly one host,
// zero or more viewers. HostID and Title are immutable after creation.
type Session struct {
	ID        string     `db:"id" json:"id"`
	HostID    string     `db:"host_id" json:"hostId"`
	Title     string     `db:"title" json:"title"`
	AccessKey string     `db:"access_key" json:"accessKey"`
	IsActive  bool       `db:"is_active" json:"isActive"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	ClosedAt  *time.Time `db:"closed_at" json:"closedAt,omitempty"`
}

type CreateSessionParams struct {
	ID        string
	HostID    string
	Title     string
	AccessKey string
}

// SessionSnapshot is the authoritative view a polling client reconciles
// against: the session plus its full ordered stroke and message logs.
type SessionSnapshot struct {
	Session  Session       `json:"session"`
	Strokes  []Stroke      `json:"strokes"`
	Messages []ChatMessage `json:"messages"`
}

func (s *SessionSnapshot) StrokeCount() int  { return len(s.Strokes) }
func (s *SessionSnapshot) MessageCount() int { return len(s.Messages) }
