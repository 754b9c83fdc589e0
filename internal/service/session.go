package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/audit"
	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/sse"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/util"
)

// accessKeyMaxAttempts bounds the retry loop when a generated key collides
// with another active session's key.
const accessKeyMaxAttempts = 5

// SessionService owns the caller-side contracts the store deliberately does
// not enforce: host-only strokes and clears, empty-input rejection, and the
// explicit confirm flag for destructive clears.
type SessionService struct {
	repo   repository.SessionRepository
	broker *sse.Broker
}

// NewSessionService creates the service. The broker may be nil; push
// notifications are an optional accelerant over polling.
func NewSessionService(repo repository.SessionRepository, broker *sse.Broker) *SessionService {
	return &SessionService{repo: repo, broker: broker}
}

func (s *SessionService) Create(ctx context.Context, host model.Participant, title string) (*model.Session, error) {
	if title == "" {
		return nil, apperrors.MissingRequired("title")
	}

	var session *model.Session
	for attempt := 1; ; attempt++ {
		var err error
		session, err = s.repo.Create(ctx, model.CreateSessionParams{
			ID:        uuid.NewString(),
			HostID:    host.ID,
			Title:     title,
			AccessKey: util.GenerateAccessKey(),
		})
		if err == nil {
			break
		}
		if repository.IsUniqueViolation(err) && attempt < accessKeyMaxAttempts {
			log.Warn().Int("attempt", attempt).Msg("access key collision, regenerating")
			continue
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Info().
		Str("sessionId", session.ID).
		Str("hostId", host.ID).
		Str("accessKey", session.AccessKey).
		Msg("session created")

	audit.Log(ctx, audit.Event{
		Type:          audit.EventSessionCreate,
		ParticipantID: host.ID,
		SessionID:     session.ID,
	})

	return session, nil
}

func (s *SessionService) GetByID(ctx context.Context, id string) (*model.Session, error) {
	// The id column is uuid typed; a malformed id would error at the cast
	// instead of finding no rows.
	if !util.IsValidUUID(id) {
		return nil, apperrors.NotFound("Session")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	return session, nil
}

// GetByAccessKey resolves a viewer's typed code. Closed sessions are not
// discoverable this way: the caller cannot tell "closed" from "never
// existed", which avoids leaking past codes.
func (s *SessionService) GetByAccessKey(ctx context.Context, key string) (*model.Session, error) {
	session, err := s.repo.FindActiveByAccessKey(ctx, util.NormalizeAccessKey(key))
	if err != nil {
		return nil, fmt.Errorf("find session by access key: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	return session, nil
}

// Snapshot returns the session with its full ordered stroke and message
// logs, the authoritative state polling clients reconcile against.
func (s *SessionService) Snapshot(ctx context.Context, sessionID string) (*model.SessionSnapshot, error) {
	session, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	strokes, err := s.repo.ListStrokes(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list strokes: %w", err)
	}
	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return &model.SessionSnapshot{
		Session:  *session,
		Strokes:  strokes,
		Messages: messages,
	}, nil
}

// AppendStroke appends a finalized stroke to the session log. Returns false
// without error for expected no-ops: a zero-point stroke, or input from a
// participant who is not the host. Neither is surfaced as a failure.
func (s *SessionService) AppendStroke(ctx context.Context, p model.Participant, sessionID string, stroke model.Stroke) (bool, error) {
	session, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return false, err
	}

	if p.ID != session.HostID {
		log.Warn().
			Str("sessionId", sessionID).
			Str("participantId", p.ID).
			Msg("non-host stroke dropped")
		audit.Log(ctx, audit.Event{
			Type:          audit.EventDrawDenied,
			ParticipantID: p.ID,
			SessionID:     sessionID,
		})
		return false, nil
	}

	if len(stroke.Points) == 0 {
		return false, nil
	}

	if err := s.repo.AppendStroke(ctx, sessionID, stroke); err != nil {
		return false, fmt.Errorf("append stroke: %w", err)
	}

	s.publish(ctx, sessionID, "stroke_appended")
	return true, nil
}

// AppendMessage appends a chat message to the session log. Returns
// (nil, nil) when the content is empty: an expected rejection, not an
// error. SenderName is frozen at send time.
func (s *SessionService) AppendMessage(ctx context.Context, p model.Participant, sessionID, content string) (*model.ChatMessage, error) {
	if content == "" {
		return nil, nil
	}

	session, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	msg := model.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   p.ID,
		SenderName: p.Name,
		ReceiverID: session.ID,
		Content:    content,
		SentAt:     time.Now(),
	}

	if err := s.repo.AppendMessage(ctx, sessionID, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	s.publish(ctx, sessionID, "message_appended")
	return &msg, nil
}

// ClearStrokes wipes the stroke log. Host-only, and never silent: callers
// must pass an explicit confirm flag. A clear racing with an in-flight
// append can lose that append; this is a documented limitation of the
// last-write-wins store, not something the service detects.
func (s *SessionService) ClearStrokes(ctx context.Context, p model.Participant, sessionID string, confirm bool) error {
	if !confirm {
		return apperrors.ValidationRejected("clearing the board requires confirmation")
	}

	session, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if p.ID != session.HostID {
		audit.Log(ctx, audit.Event{
			Type:          audit.EventClearDenied,
			ParticipantID: p.ID,
			SessionID:     sessionID,
		})
		return apperrors.Forbidden("only the host may clear the board")
	}

	if err := s.repo.ClearStrokes(ctx, sessionID); err != nil {
		return fmt.Errorf("clear strokes: %w", err)
	}

	log.Info().Str("sessionId", sessionID).Msg("board cleared")
	audit.Log(ctx, audit.Event{
		Type:          audit.EventBoardClear,
		ParticipantID: p.ID,
		SessionID:     sessionID,
	})

	s.publish(ctx, sessionID, "strokes_cleared")
	return nil
}

// Close deactivates the session. Idempotent; the session stays queryable
// by id for history until the cleanup job reaps it.
func (s *SessionService) Close(ctx context.Context, p model.Participant, sessionID string) error {
	session, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if p.ID != session.HostID {
		audit.Log(ctx, audit.Event{
			Type:          audit.EventCloseDenied,
			ParticipantID: p.ID,
			SessionID:     sessionID,
		})
		return apperrors.Forbidden("only the host may close the session")
	}

	if err := s.repo.Close(ctx, sessionID); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	log.Info().Str("sessionId", sessionID).Msg("session closed")
	audit.Log(ctx, audit.Event{
		Type:          audit.EventSessionClose,
		ParticipantID: p.ID,
		SessionID:     sessionID,
	})

	s.publish(ctx, sessionID, "session_closed")
	return nil
}

func (s *SessionService) publish(ctx context.Context, sessionID, eventType string) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, sessionID, sse.Event{
		Type: eventType,
		Data: []byte(`{}`),
	})
	if err != nil {
		// Push is best-effort; polling clients converge regardless.
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("failed to publish session event")
	}
}
