package model

import "time"

// PresenceHeartbeat is keyed by (ResourceID, ParticipantID): at most one
// live record per key, a new heartbeat replaces the old one.
type PresenceHeartbeat struct {
	ResourceID    string    `json:"resourceId"`
	ParticipantID string    `json:"participantId"`
	Timestamp     time.Time `json:"timestamp"`
}
