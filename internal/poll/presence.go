package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/config"
)

// CountFetcher reads the current active-viewer count for a resource.
type CountFetcher interface {
	FetchActiveCount(ctx context.Context, resourceID string) (int, error)
}

// CountPoller refreshes an active-viewer count on a fixed interval.
// Presence is cosmetic, so the cadence is slower than session polling and
// errors keep the last known value on screen.
type CountPoller struct {
	fetcher    CountFetcher
	resourceID string
	interval   time.Duration
	onCount    func(count int)

	mu    sync.Mutex
	count int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewCountPoller(fetcher CountFetcher, resourceID string, interval time.Duration, onCount func(count int)) *CountPoller {
	if interval <= 0 {
		interval = config.PresencePollInterval
	}
	return &CountPoller{
		fetcher:    fetcher,
		resourceID: resourceID,
		interval:   interval,
		onCount:    onCount,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (c *CountPoller) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *CountPoller) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

func (c *CountPoller) Tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, config.PollTickTimeout)
	defer cancel()

	count, err := c.fetcher.FetchActiveCount(tickCtx, c.resourceID)
	if err != nil {
		log.Debug().Err(err).Str("resourceId", c.resourceID).Msg("active count poll failed")
		return
	}

	c.mu.Lock()
	changed := count != c.count
	c.count = count
	c.mu.Unlock()

	if changed && c.onCount != nil {
		c.onCount(count)
	}
}

func (c *CountPoller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *CountPoller) Stop() {
	c.once.Do(func() { close(c.stop) })
	<-c.done
}
