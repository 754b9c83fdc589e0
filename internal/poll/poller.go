// Package poll keeps a participant's view of a session converged with the
// store by periodic snapshot fetches. Polling is the authoritative sync
// path; push events only make it look faster.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/config"
	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

// State is the poller's connection state as shown to the participant.
type State string

const (
	StateLive         State = "live"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Fetcher retrieves the authoritative session snapshot. A closed or
// deleted session surfaces as a NOT_FOUND AppError.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, sessionID string) (*model.SessionSnapshot, error)
}

// Callbacks are invoked from the poller's goroutine. OnSnapshot fires only
// when the fetched counts differ from the expected ones; a clear shrinks
// the stroke count and still propagates. Local optimistic appends noted
// via NoteLocalStroke and NoteLocalMessage count as expected.
type Callbacks struct {
	OnSnapshot    func(snap *model.SessionSnapshot)
	OnStateChange func(state State)
}

// Poller fetches the session snapshot on a fixed interval. Ticks never
// stack: if a fetch is still in flight when the next tick fires, the tick
// is skipped. Responses that arrive out of order are discarded by a
// generation counter so a stale snapshot can never overwrite a newer one.
type Poller struct {
	fetcher   Fetcher
	sessionID string
	interval  time.Duration
	callbacks Callbacks

	inFlight   atomic.Bool
	generation atomic.Uint64
	applied    atomic.Uint64

	mu           sync.Mutex
	state        State
	strokeCount  int
	messageCount int
	hasSnapshot  bool
	failures     int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewPoller(fetcher Fetcher, sessionID string, interval time.Duration, callbacks Callbacks) *Poller {
	if interval <= 0 {
		interval = config.SessionPollInterval
	}
	return &Poller{
		fetcher:   fetcher,
		sessionID: sessionID,
		interval:  interval,
		callbacks: callbacks,
		state:     StateLive,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the poll loop. The first fetch happens immediately so a
// joining participant sees the current board without waiting an interval.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
	log.Debug().Str("sessionId", p.sessionID).Dur("interval", p.interval).Msg("session poller started")
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.Tick(ctx)
			if p.State() == StateClosed {
				return
			}
		}
	}
}

// Stop shuts the loop down and waits for it to exit.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// NoteLocalStroke records a successful optimistic append so the next fetch
// that merely confirms it does not replace the local state. If another
// participant wrote in between, the counts diverge and the snapshot fires
// as usual.
func (p *Poller) NoteLocalStroke() {
	p.mu.Lock()
	if p.hasSnapshot {
		p.strokeCount++
	}
	p.mu.Unlock()
}

// NoteLocalMessage is the chat counterpart of NoteLocalStroke.
func (p *Poller) NoteLocalMessage() {
	p.mu.Lock()
	if p.hasSnapshot {
		p.messageCount++
	}
	p.mu.Unlock()
}

// Tick performs one poll cycle. Exported so callers can force an immediate
// refresh, e.g. right after a push event hints that something changed.
func (p *Poller) Tick(ctx context.Context) {
	if p.State() == StateClosed {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	gen := p.generation.Add(1)

	fetchCtx, cancel := context.WithTimeout(ctx, config.PollTickTimeout)
	defer cancel()

	snap, err := p.fetcher.FetchSnapshot(fetchCtx, p.sessionID)
	if err != nil {
		p.handleError(err)
		return
	}
	p.apply(gen, snap)
}

func (p *Poller) handleError(err error) {
	if apperrors.IsNotFound(err) {
		// The session was closed or reaped. Terminal; polling stops.
		p.setState(StateClosed)
		log.Info().Str("sessionId", p.sessionID).Msg("session gone, poller closed")
		return
	}

	p.mu.Lock()
	p.failures++
	failures := p.failures
	p.mu.Unlock()

	log.Warn().Err(err).Str("sessionId", p.sessionID).Int("failures", failures).Msg("session poll failed")
	if failures >= config.ReconnectingAfterFailures {
		// Last-known-good state stays displayed; polling continues at the
		// normal cadence and self-heals on the next success.
		p.setState(StateReconnecting)
	}
}

func (p *Poller) apply(gen uint64, snap *model.SessionSnapshot) {
	// Newest-wins: if a newer fetch already applied, drop this one.
	for {
		applied := p.applied.Load()
		if gen <= applied {
			return
		}
		if p.applied.CompareAndSwap(applied, gen) {
			break
		}
	}

	if !snap.Session.IsActive {
		p.setState(StateClosed)
		return
	}

	p.mu.Lock()
	p.failures = 0
	changed := !p.hasSnapshot ||
		snap.StrokeCount() != p.strokeCount ||
		snap.MessageCount() != p.messageCount
	p.hasSnapshot = true
	p.strokeCount = snap.StrokeCount()
	p.messageCount = snap.MessageCount()
	p.mu.Unlock()

	p.setState(StateLive)

	if changed && p.callbacks.OnSnapshot != nil {
		p.callbacks.OnSnapshot(snap)
	}
}

func (p *Poller) setState(next State) {
	p.mu.Lock()
	if p.state == next || p.state == StateClosed {
		p.mu.Unlock()
		return
	}
	p.state = next
	p.mu.Unlock()

	if p.callbacks.OnStateChange != nil {
		p.callbacks.OnStateChange(next)
	}
}
