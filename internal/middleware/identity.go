package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/audit"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

type contextKey string

const ParticipantContextKey contextKey = "participant"

const (
	HeaderParticipantID   = "X-Participant-Id"
	HeaderParticipantName = "X-Participant-Name"
	HeaderParticipantRole = "X-Participant-Role"
)

// GetParticipant returns the authenticated participant, or nil outside the
// identity middleware.
func GetParticipant(ctx context.Context) *model.Participant {
	if p, ok := ctx.Value(ParticipantContextKey).(*model.Participant); ok {
		return p
	}
	return nil
}

// IdentityMiddleware reads the participant identity the authenticating
// gateway stamped on the request. The service trusts these headers; it
// sits behind the gateway and is not directly reachable.
type IdentityMiddleware struct{}

func NewIdentityMiddleware() *IdentityMiddleware {
	return &IdentityMiddleware{}
}

func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderParticipantID)
		name := r.Header.Get(HeaderParticipantName)
		role := model.Role(r.Header.Get(HeaderParticipantRole))

		if id == "" || name == "" || !role.Valid() {
			log.Warn().Str("path", r.URL.Path).Msg("request missing participant identity")
			audit.LogFromRequest(r, audit.Event{
				Type:          audit.EventIdentityRejected,
				ParticipantID: id,
			})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing participant identity",
			})
			return
		}

		participant := &model.Participant{ID: id, Name: name, Role: role}
		ctx := context.WithValue(r.Context(), ParticipantContextKey, participant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
