package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/config"
)

// HeartbeatSender records "this participant is still viewing this
// resource". Failures are swallowed; a missed beat just shortens the
// apparent presence window.
type HeartbeatSender interface {
	SendHeartbeat(ctx context.Context, resourceID, participantID string) error
}

// Heartbeater emits a heartbeat for one (resource, participant) pair on a
// fixed interval while running. The send interval is well inside the
// staleness window so a single dropped beat does not flicker the count.
type Heartbeater struct {
	sender        HeartbeatSender
	resourceID    string
	participantID string
	interval      time.Duration

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewHeartbeater(sender HeartbeatSender, resourceID, participantID string, interval time.Duration) *Heartbeater {
	if interval <= 0 {
		interval = config.HeartbeatSendInterval
	}
	return &Heartbeater{
		sender:        sender,
		resourceID:    resourceID,
		participantID: participantID,
		interval:      interval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins beating immediately, then on every interval.
func (h *Heartbeater) Start(ctx context.Context) {
	go h.run(ctx)
}

func (h *Heartbeater) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.beat(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeater) beat(ctx context.Context) {
	beatCtx, cancel := context.WithTimeout(ctx, config.PollTickTimeout)
	defer cancel()

	if err := h.sender.SendHeartbeat(beatCtx, h.resourceID, h.participantID); err != nil {
		log.Debug().Err(err).Str("resourceId", h.resourceID).Msg("heartbeat send failed")
	}
}

// Stop halts the beats. There is no sign-off message; the record simply
// goes stale after the staleness window.
func (h *Heartbeater) Stop() {
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
