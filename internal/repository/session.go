package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

// SessionRepository is the durable store for whiteboard sessions and their
// append-only stroke and message logs. It is a dumb log: authorization
// (host-only draw/clear) is the caller's contract, enforced one layer up.
type SessionRepository interface {
	Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error)
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// FindActiveByAccessKey matches active sessions only. A closed session's
	// key and a key that never existed are observably identical to callers.
	FindActiveByAccessKey(ctx context.Context, key string) (*model.Session, error)
	AppendStroke(ctx context.Context, sessionID string, stroke model.Stroke) error
	AppendMessage(ctx context.Context, sessionID string, msg model.ChatMessage) error
	ListStrokes(ctx context.Context, sessionID string) ([]model.Stroke, error)
	ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	// ClearStrokes is a destructive full overwrite. A clear racing with an
	// in-flight append can lose that append; accepted limitation, the log
	// layer does no versioning.
	ClearStrokes(ctx context.Context, sessionID string) error
	Close(ctx context.Context, sessionID string) error
	DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO sessions (id, host_id, title, access_key, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING *
	`, params.ID, params.HostID, params.Title, params.AccessKey)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE id = $1
	`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindActiveByAccessKey(ctx context.Context, key string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions
		WHERE access_key = $1
		AND is_active = true
	`, key)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) AppendStroke(ctx context.Context, sessionID string, stroke model.Stroke) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO strokes (session_id, points, color, size, tool)
		VALUES ($1, $2, $3, $4, $5)
	`, sessionID, stroke.Points, stroke.Color, stroke.Size, stroke.Tool)
	return err
}

func (r *sessionRepo) AppendMessage(ctx context.Context, sessionID string, msg model.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_messages (id, session_id, sender_id, sender_name, content, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, sessionID, msg.SenderID, msg.SenderName, msg.Content, msg.SentAt)
	return err
}

func (r *sessionRepo) ListStrokes(ctx context.Context, sessionID string) ([]model.Stroke, error) {
	var strokes []model.Stroke
	err := r.db.SelectContext(ctx, &strokes, `
		SELECT points, color, size, tool FROM strokes
		WHERE session_id = $1
		ORDER BY seq ASC
	`, sessionID)
	return strokes, err
}

func (r *sessionRepo) ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT id, sender_id, sender_name, session_id AS receiver_id, content, sent_at
		FROM session_messages
		WHERE session_id = $1
		ORDER BY seq ASC
	`, sessionID)
	return msgs, err
}

func (r *sessionRepo) ClearStrokes(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM strokes WHERE session_id = $1
	`, sessionID)
	return err
}

func (r *sessionRepo) Close(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			is_active = false,
			closed_at = COALESCE(closed_at, $2)
		WHERE id = $1
	`, sessionID, time.Now())
	return err
}

func (r *sessionRepo) DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE is_active = false AND closed_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
