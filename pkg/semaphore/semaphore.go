// Package semaphore bounds the number of concurrent WebSocket sessions the
// echo server runs.
package semaphore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrFull is returned by Acquire when no slot became free in time.
var ErrFull = errors.New("semaphore: all session slots in use")

// Limiter hands out a fixed number of session slots.
type Limiter struct {
	slots chan struct{}
	wait  time.Duration
}

// New creates a Limiter with n free slots. Acquire waits up to wait for a
// slot; zero fails immediately when all slots are taken.
func New(n int, wait time.Duration) *Limiter {
	slots := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		slots <- struct{}{}
	}
	return &Limiter{slots: slots, wait: wait}
}

// Acquire takes a slot. It returns ErrFull if none became free within the
// wait time, or ctx.Err() if ctx ended first. A nil Limiter never blocks.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}

	select {
	case <-l.slots:
		return nil
	default:
	}

	if l.wait <= 0 {
		return ErrFull
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case <-l.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w (waited %v)", ErrFull, l.wait)
	}
}

// Release returns a slot taken by Acquire.
func (l *Limiter) Release() {
	if l == nil {
		return
	}
	l.slots <- struct{}{}
}

// Free returns the number of slots currently available.
func (l *Limiter) Free() int {
	if l == nil {
		return 0
	}
	return len(l.slots)
}
