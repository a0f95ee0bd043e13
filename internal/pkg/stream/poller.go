// Package stream turns a fetch function into a cancellable subscription with
// a fixed cadence and exponential backoff on errors.
package stream

import (
	"context"
	"time"
)

// FetchFunc loads the latest value
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller calls Fetch once immediately and then once per Interval until the
// context is cancelled. After a failed fetch the wait doubles per
// consecutive failure, capped at MaxBackoff; a success restores Interval.
type Poller[T any] struct {
	Interval   time.Duration
	MaxBackoff time.Duration
	Fetch      FetchFunc[T]
	// OnError is told about each failed fetch and the wait before the retry
	OnError func(err error, retryIn time.Duration)

	// wait blocks for d or until ctx is done; it returns false on cancellation
	wait func(ctx context.Context, d time.Duration) bool
}

// NewPoller creates a poller with the given cadence
func NewPoller[T any](interval, maxBackoff time.Duration, fetch FetchFunc[T]) *Poller[T] {
	return &Poller[T]{
		Interval:   interval,
		MaxBackoff: maxBackoff,
		Fetch:      fetch,
	}
}

// Run blocks until ctx is cancelled, handing each fetched value to emit
func (p *Poller[T]) Run(ctx context.Context, emit func(T)) error {
	wait := p.wait
	if wait == nil {
		wait = sleep
	}

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, err := p.Fetch(ctx)
		var next time.Duration
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			next = p.Backoff(failures)
			if p.OnError != nil {
				p.OnError(err, next)
			}
		} else {
			failures = 0
			next = p.Interval
			emit(value)
		}

		if !wait(ctx, next) {
			return ctx.Err()
		}
	}
}

// Backoff returns the wait after the given number of consecutive failures
func (p *Poller[T]) Backoff(failures int) time.Duration {
	maxBackoff := p.MaxBackoff
	if maxBackoff < p.Interval {
		maxBackoff = p.Interval
	}
	d := p.Interval
	for i := 0; i < failures && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// Subscribe runs p in a goroutine and delivers values on the returned
// channel, which is closed once ctx is cancelled.
func Subscribe[T any](ctx context.Context, p *Poller[T]) <-chan T {
	out := make(chan T, 1)
	go func() {
		defer close(out)
		_ = p.Run(ctx, func(v T) {
			select {
			case out <- v:
			case <-ctx.Done():
			}
		})
	}()
	return out
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
