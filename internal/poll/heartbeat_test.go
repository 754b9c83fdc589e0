package poll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	beats int
	err   error
}

func (f *fakeSender) SendHeartbeat(ctx context.Context, resourceID, participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beats++
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.beats
}

func TestHeartbeaterBeatsOnInterval(t *testing.T) {
	sender := &fakeSender{}
	h := NewHeartbeater(sender, "sess-1", "student-1", 10*time.Millisecond)

	h.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	h.Stop()

	beats := sender.count()
	assert.GreaterOrEqual(t, beats, 2, "immediate beat plus interval beats")

	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, beats, sender.count(), "no beats after Stop")
}

func TestHeartbeaterSwallowsSendErrors(t *testing.T) {
	sender := &fakeSender{err: assert.AnError}
	h := NewHeartbeater(sender, "sess-1", "student-1", 10*time.Millisecond)

	h.Start(context.Background())
	time.Sleep(25 * time.Millisecond)
	h.Stop()

	assert.GreaterOrEqual(t, sender.count(), 2, "keeps beating through failures")
}

type fakeCountFetcher struct {
	mu    sync.Mutex
	count int
	err   error
}

func (f *fakeCountFetcher) FetchActiveCount(ctx context.Context, resourceID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.err
}

func (f *fakeCountFetcher) set(count int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count = count
	f.err = err
}

func TestCountPollerNotifiesOnChange(t *testing.T) {
	fetcher := &fakeCountFetcher{count: 3}
	var got []int
	p := NewCountPoller(fetcher, "sess-1", time.Second, func(count int) {
		got = append(got, count)
	})

	p.Tick(context.Background())
	p.Tick(context.Background())
	fetcher.set(5, nil)
	p.Tick(context.Background())

	require.Equal(t, []int{3, 5}, got)
	assert.Equal(t, 5, p.Count())
}

func TestCountPollerKeepsLastValueOnError(t *testing.T) {
	fetcher := &fakeCountFetcher{count: 4}
	p := NewCountPoller(fetcher, "sess-1", time.Second, nil)

	p.Tick(context.Background())
	require.Equal(t, 4, p.Count())

	fetcher.set(0, assert.AnError)
	p.Tick(context.Background())
	assert.Equal(t, 4, p.Count())
}
