// Package inmem provides in-memory implementations of the repository
// interfaces. They back tests and single-process offline deployments; the
// semantics match the Postgres/Redis implementations, including the
// active-only access key lookup and last-write-wins clears.
package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository"
)

type sessionRecord struct {
	session  model.Session
	strokes  []model.Stroke
	messages []model.ChatMessage
}

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*sessionRecord)}
}

func (r *SessionRepository) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.sessions {
		if rec.session.IsActive && rec.session.AccessKey == params.AccessKey {
			return nil, fmt.Errorf("access key %q already in use: %w", params.AccessKey, errUniqueViolation)
		}
	}

	session := model.Session{
		ID:        params.ID,
		HostID:    params.HostID,
		Title:     params.Title,
		AccessKey: params.AccessKey,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	r.sessions[params.ID] = &sessionRecord{session: session}

	copied := session
	return &copied, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	session := rec.session
	return &session, nil
}

func (r *SessionRepository) FindActiveByAccessKey(ctx context.Context, key string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.sessions {
		if rec.session.IsActive && rec.session.AccessKey == key {
			session := rec.session
			return &session, nil
		}
	}
	return nil, nil
}

func (r *SessionRepository) AppendStroke(ctx context.Context, sessionID string, stroke model.Stroke) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	rec.strokes = append(rec.strokes, stroke)
	return nil
}

func (r *SessionRepository) AppendMessage(ctx context.Context, sessionID string, msg model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	rec.messages = append(rec.messages, msg)
	return nil
}

func (r *SessionRepository) ListStrokes(ctx context.Context, sessionID string) ([]model.Stroke, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	strokes := make([]model.Stroke, len(rec.strokes))
	copy(strokes, rec.strokes)
	return strokes, nil
}

func (r *SessionRepository) ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	msgs := make([]model.ChatMessage, len(rec.messages))
	copy(msgs, rec.messages)
	return msgs, nil
}

func (r *SessionRepository) ClearStrokes(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.sessions[sessionID]; ok {
		rec.strokes = nil
	}
	return nil
}

func (r *SessionRepository) Close(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	if rec.session.IsActive {
		now := time.Now()
		rec.session.IsActive = false
		rec.session.ClosedAt = &now
	}
	return nil
}

func (r *SessionRepository) DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, rec := range r.sessions {
		if !rec.session.IsActive && rec.session.ClosedAt != nil && rec.session.ClosedAt.Before(cutoff) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}
