package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock lets a test decide when each scheduled wait elapses
type manualClock struct {
	requests chan time.Duration
	release  chan struct{}
}

func newManualClock() *manualClock {
	return &manualClock{
		requests: make(chan time.Duration, 16),
		release:  make(chan struct{}),
	}
}

func (c *manualClock) wait(ctx context.Context, d time.Duration) bool {
	c.requests <- d
	select {
	case <-ctx.Done():
		return false
	case <-c.release:
		return true
	}
}

func (c *manualClock) tick(t *testing.T) {
	t.Helper()
	select {
	case c.release <- struct{}{}:
	case <-time.After(time.Second):
		t.Fatal("poller was not waiting")
	}
}

func (c *manualClock) nextWait(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-c.requests:
		return d
	case <-time.After(time.Second):
		t.Fatal("poller did not schedule a wait")
		return 0
	}
}

func TestPollerCadence(t *testing.T) {
	var calls atomic.Int32
	clock := newManualClock()

	p := NewPoller(6*time.Second, 30*time.Second, func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})
	p.wait = clock.wait

	ctx, cancel := context.WithCancel(context.Background())
	values := make(chan int, 16)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, func(v int) { values <- v }) }()

	// fires immediately, before any wait elapses
	assert.Equal(t, 6*time.Second, clock.nextWait(t))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, <-values)

	for i := 2; i <= 4; i++ {
		clock.tick(t)
		assert.Equal(t, 6*time.Second, clock.nextWait(t))
		assert.Equal(t, int32(i), calls.Load())
		assert.Equal(t, i, <-values)
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	assert.Equal(t, int32(4), calls.Load())
}

func TestPollerBackoff(t *testing.T) {
	var calls atomic.Int32
	clock := newManualClock()
	failFor := int32(4)
	var reported []time.Duration

	p := NewPoller(5*time.Second, 30*time.Second, func(ctx context.Context) (string, error) {
		if calls.Add(1) <= failFor {
			return "", errors.New("db unavailable")
		}
		return "ok", nil
	})
	p.wait = clock.wait
	p.OnError = func(err error, retryIn time.Duration) { reported = append(reported, retryIn) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx, func(string) {}) }()

	want := []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second, 5 * time.Second}
	for i, w := range want {
		require.Equal(t, w, clock.nextWait(t), "wait %d", i)
		if i < len(want)-1 {
			clock.tick(t)
		}
	}
	cancel()
	assert.Len(t, reported, 4)
}

func TestSubscribeStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller(10*time.Millisecond, 50*time.Millisecond, func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	ch := Subscribe(ctx, p)

	first := <-ch
	assert.Equal(t, int32(1), first)
	<-ch

	cancel()
	for range ch {
	}
	stopped := calls.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}
