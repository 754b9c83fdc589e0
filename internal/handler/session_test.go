package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/middleware"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository/inmem"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/service"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/util"
)

var (
	hostUser    = model.Participant{ID: "prof-1", Name: "Prof. Amrani", Role: model.RoleProfessor}
	studentUser = model.Participant{ID: "student-1", Name: "Yassine", Role: model.RoleStudent}
)

func newTestRouter(t *testing.T) (chi.Router, *service.SessionService) {
	t.Helper()

	repo := inmem.NewSessionRepository()
	sessionService := service.NewSessionService(repo, nil)

	r := chi.NewRouter()
	r.Use(middleware.NewIdentityMiddleware().Handler)
	r.Mount("/api/sessions", NewSessionHandler(sessionService).Routes())
	return r, sessionService
}

func doRequest(t *testing.T, router http.Handler, p model.Participant, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(middleware.HeaderParticipantID, p.ID)
	req.Header.Set(middleware.HeaderParticipantName, p.Name)
	req.Header.Set(middleware.HeaderParticipantRole, string(p.Role))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router http.Handler) model.Session {
	t.Helper()

	rec := doRequest(t, router, hostUser, http.MethodPost, "/api/sessions", map[string]string{"title": "Algebra review"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var session model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session
}

func TestCreateSession(t *testing.T) {
	router, _ := newTestRouter(t)

	session := createSession(t, router)

	assert.Equal(t, "prof-1", session.HostID)
	assert.Equal(t, "Algebra review", session.Title)
	assert.True(t, session.IsActive)
	assert.Len(t, session.AccessKey, util.AccessKeyLength)
}

func TestCreateSessionRequiresTitle(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, hostUser, http.MethodPost, "/api/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSessionRequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString(`{"title":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetByAccessKey(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	rec := doRequest(t, router, studentUser, http.MethodGet, "/api/sessions/key/"+session.AccessKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, session.ID, got.ID)
}

func TestGetByAccessKeyUnknown(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, studentUser, http.MethodGet, "/api/sessions/key/ZZZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppendStrokeAsHost(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	stroke := model.Stroke{
		Points: model.PointList{{X: 1, Y: 2}, {X: 3, Y: 4}},
		Color:  "#000000",
		Size:   3,
		Tool:   model.ToolPen,
	}
	rec := doRequest(t, router, hostUser, http.MethodPost, "/api/sessions/"+session.ID+"/strokes", stroke)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"appended":true}`, rec.Body.String())

	rec = doRequest(t, router, studentUser, http.MethodGet, "/api/sessions/"+session.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap model.SessionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, 1, snap.StrokeCount())
	assert.Equal(t, stroke.Points, snap.Strokes[0].Points)
}

func TestAppendStrokeAsViewerDropped(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	stroke := model.Stroke{Points: model.PointList{{X: 1, Y: 1}}, Tool: model.ToolPen}
	rec := doRequest(t, router, studentUser, http.MethodPost, "/api/sessions/"+session.ID+"/strokes", stroke)

	// Dropped, not an error: the response says so without failing.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"appended":false}`, rec.Body.String())
}

func TestClearStrokesRequiresConfirm(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	rec := doRequest(t, router, hostUser, http.MethodDelete, "/api/sessions/"+session.ID+"/strokes", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearStrokesForbiddenForViewer(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	rec := doRequest(t, router, studentUser, http.MethodDelete, "/api/sessions/"+session.ID+"/strokes?confirm=true", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClearStrokesEmptiesLog(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	stroke := model.Stroke{Points: model.PointList{{X: 1, Y: 1}}, Tool: model.ToolPen}
	doRequest(t, router, hostUser, http.MethodPost, "/api/sessions/"+session.ID+"/strokes", stroke)

	rec := doRequest(t, router, hostUser, http.MethodDelete, "/api/sessions/"+session.ID+"/strokes?confirm=true", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, hostUser, http.MethodGet, "/api/sessions/"+session.ID, nil)
	var snap model.SessionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 0, snap.StrokeCount())
}

func TestAppendMessage(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	rec := doRequest(t, router, studentUser, http.MethodPost, "/api/sessions/"+session.ID+"/messages",
		map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg model.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "student-1", msg.SenderID)
	assert.Equal(t, "Yassine", msg.SenderName)
	assert.Equal(t, "hello", msg.Content)
}

func TestAppendMessageEmptyDropped(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	rec := doRequest(t, router, studentUser, http.MethodPost, "/api/sessions/"+session.ID+"/messages",
		map[string]string{"content": ""})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, studentUser, http.MethodGet, "/api/sessions/"+session.ID, nil)
	var snap model.SessionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 0, snap.MessageCount())
}

func TestCloseSession(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	rec := doRequest(t, router, studentUser, http.MethodPost, "/api/sessions/"+session.ID+"/close", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, hostUser, http.MethodPost, "/api/sessions/"+session.ID+"/close", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Closing again is idempotent.
	rec = doRequest(t, router, hostUser, http.MethodPost, "/api/sessions/"+session.ID+"/close", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The key no longer resolves, but the snapshot survives for history.
	rec = doRequest(t, router, studentUser, http.MethodGet, "/api/sessions/key/"+session.AccessKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, studentUser, http.MethodGet, "/api/sessions/"+session.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap model.SessionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.False(t, snap.Session.IsActive)
}

func TestAccessKeyReusableAfterClose(t *testing.T) {
	router, _ := newTestRouter(t)
	session := createSession(t, router)

	rec := doRequest(t, router, hostUser, http.MethodPost, "/api/sessions/"+session.ID+"/close", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Uniqueness applies among active sessions only; a new session may
	// receive the code a closed one held.
	second := createSession(t, router)
	assert.NotEmpty(t, second.AccessKey)
	assert.NotEqual(t, session.ID, second.ID)
}
