package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/httputil"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

var testParticipant = model.Participant{ID: "prof-1", Name: "Prof. Amrani", Role: model.RoleProfessor}

func TestClientSendsIdentityHeaders(t *testing.T) {
	var gotID, gotName, gotRole string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Participant-Id")
		gotName = r.Header.Get("X-Participant-Name")
		gotRole = r.Header.Get("X-Participant-Role")
		httputil.WriteJSON(w, http.StatusOK, model.Session{ID: "sess-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	_, err := c.CreateSession(context.Background(), "Algebra review")

	require.NoError(t, err)
	assert.Equal(t, "prof-1", gotID)
	assert.Equal(t, "Prof. Amrani", gotName)
	assert.Equal(t, "professor", gotRole)
}

func TestClientFetchSnapshot(t *testing.T) {
	snap := model.SessionSnapshot{
		Session: model.Session{ID: "sess-1", HostID: "prof-1", IsActive: true},
		Strokes: []model.Stroke{
			{Points: model.PointList{{X: 1, Y: 2}}, Color: "#000000", Size: 3, Tool: model.ToolPen},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sessions/sess-1", r.URL.Path)
		httputil.WriteJSON(w, http.StatusOK, snap)
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	got, err := c.FetchSnapshot(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.Session.ID)
	require.Equal(t, 1, got.StrokeCount())
	assert.Equal(t, model.ToolPen, got.Strokes[0].Tool)
}

func TestClientNotFoundRoundTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, apperrors.NotFound("Session"))
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	_, err := c.FetchSnapshot(context.Background(), "gone")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err), "NOT_FOUND must survive the wire for the poller")
}

func TestClientAppendStroke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/sess-1/strokes", r.URL.Path)
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"appended": false})
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	appended, err := c.AppendStroke(context.Background(), "sess-1", model.Stroke{
		Points: model.PointList{{X: 1, Y: 1}},
		Tool:   model.ToolPen,
	})

	require.NoError(t, err)
	assert.False(t, appended)
}

func TestClientDropsEmptyMessageLocally(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	msg, err := c.SendMessage(context.Background(), "sess-1", "")

	require.NoError(t, err)
	assert.Nil(t, msg, "a dropped message must not look like a sent one")
	assert.Equal(t, 0, hits, "empty content must never reach the wire")
}

func TestClientServerDroppedMessageReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	msg, err := c.SendMessage(context.Background(), "sess-1", "   ")

	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestClientClearStrokesConfirm(t *testing.T) {
	var gotConfirm string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotConfirm = r.URL.Query().Get("confirm")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	require.NoError(t, c.ClearStrokes(context.Background(), "sess-1", true))
	assert.Equal(t, "true", gotConfirm)
}

func TestClientHeartbeatAndCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/presence/sess-1/heartbeat":
			w.WriteHeader(http.StatusNoContent)
		case "/api/presence/sess-1/count":
			httputil.WriteJSON(w, http.StatusOK, map[string]int{"activeCount": 7})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	require.NoError(t, c.SendHeartbeat(context.Background(), "sess-1", "prof-1"))

	count, err := c.FetchActiveCount(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestClientUndecodableErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, testParticipant)
	_, err := c.FetchSnapshot(context.Background(), "sess-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnavailable, apperrors.GetCode(err))
	assert.False(t, apperrors.IsNotFound(err))
}
