package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Client-side synchronization intervals. The whiteboard poll is fast; the
// presence loop is slower and independent of it.
const (
	SessionPollInterval   = 1 * time.Second
	PresencePollInterval  = 5 * time.Second
	HeartbeatSendInterval = 10 * time.Second
)

// Every remote call a polling client makes is bounded by this timeout; on
// expiry the tick is skipped and last-known-good state is kept.
const PollTickTimeout = 1 * time.Second

// Consecutive failed ticks before a client surfaces a "reconnecting" state.
const ReconnectingAfterFailures = 3
