// Package client is the Go API client for the board service. The polling
// synchronizer and heartbeater plug into it; it also covers the one-shot
// operations a participant performs (create, join, draw, chat, close).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

const requestTimeout = 5 * time.Second

const (
	headerParticipantID   = "X-Participant-Id"
	headerParticipantName = "X-Participant-Name"
	headerParticipantRole = "X-Participant-Role"
)

type Client struct {
	baseURL     string
	httpClient  *http.Client
	participant model.Participant
}

// New creates a client acting as the given participant. Identity travels
// in headers set by the gateway in production; the client sets them
// directly for internal and test use.
func New(baseURL string, participant model.Participant) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		participant: participant,
	}
}

func (c *Client) CreateSession(ctx context.Context, title string) (*model.Session, error) {
	var session model.Session
	err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"title": title}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// JoinByAccessKey resolves a typed access code to its active session.
func (c *Client) JoinByAccessKey(ctx context.Context, accessKey string) (*model.Session, error) {
	var session model.Session
	err := c.do(ctx, http.MethodGet, "/api/sessions/key/"+url.PathEscape(accessKey), nil, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FetchSnapshot satisfies the synchronizer's fetcher contract.
func (c *Client) FetchSnapshot(ctx context.Context, sessionID string) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// AppendStroke reports whether the stroke was accepted. False without an
// error means the server dropped it as an expected no-op.
func (c *Client) AppendStroke(ctx context.Context, sessionID string, stroke model.Stroke) (bool, error) {
	var result struct {
		Appended bool `json:"appended"`
	}
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(sessionID)+"/strokes", stroke, &result)
	if err != nil {
		return false, err
	}
	return result.Appended, nil
}

// SendMessage returns (nil, nil) for empty content without touching the
// wire, mirroring the server's drop semantics. Callers must not render an
// optimistic message when no message comes back.
func (c *Client) SendMessage(ctx context.Context, sessionID, content string) (*model.ChatMessage, error) {
	if content == "" {
		return nil, nil
	}
	var msg model.ChatMessage
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(sessionID)+"/messages", map[string]string{"content": content}, &msg)
	if err != nil {
		return nil, err
	}
	if msg.ID == "" {
		// The server answered 204: it dropped the message as a no-op.
		return nil, nil
	}
	return &msg, nil
}

func (c *Client) ClearStrokes(ctx context.Context, sessionID string, confirm bool) error {
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/strokes"
	if confirm {
		path += "?confirm=true"
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(sessionID)+"/close", nil, nil)
}

// SendHeartbeat satisfies the heartbeater's sender contract. The
// participant id in the path must match the identity headers; the server
// rejects mismatches.
func (c *Client) SendHeartbeat(ctx context.Context, resourceID, participantID string) error {
	path := "/api/presence/" + url.PathEscape(resourceID) + "/heartbeat"
	beat := model.PresenceHeartbeat{
		ResourceID:    resourceID,
		ParticipantID: participantID,
		Timestamp:     time.Now(),
	}
	return c.do(ctx, http.MethodPost, path, beat, nil)
}

// FetchActiveCount satisfies the count poller's fetcher contract.
func (c *Client) FetchActiveCount(ctx context.Context, resourceID string) (int, error) {
	var result struct {
		ActiveCount int `json:"activeCount"`
	}
	err := c.do(ctx, http.MethodGet, "/api/presence/"+url.PathEscape(resourceID)+"/count", nil, &result)
	if err != nil {
		return 0, err
	}
	return result.ActiveCount, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerParticipantID, c.participant.ID)
	req.Header.Set(headerParticipantName, c.participant.Name)
	req.Header.Set(headerParticipantRole, string(c.participant.Role))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError rebuilds the server's AppError so callers can branch on the
// code with the usual helpers; IsNotFound drives the synchronizer's closed
// state.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string              `json:"error"`
		Code  apperrors.ErrorCode `json:"code"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil || body.Code == "" {
		return apperrors.New(apperrors.ErrCodeUnavailable,
			fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	return apperrors.New(body.Code, body.Error)
}
