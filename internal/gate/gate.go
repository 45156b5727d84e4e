// Package gate bounds concurrent operations against a rate-limited upstream
// service. A Limiter admits at most K simultaneous operations and spaces
// consecutive admissions by a minimum interval, measured start to start
// rather than end to start, so short calls cannot burst past the upstream
// request cadence.
package gate

import (
	"context"
	"sync"
	"time"
)

// Limiter is a concurrency gate with a minimum spacing between grants.
// Use New; the zero value admits nothing.
//
// Ordering among blocked callers is best effort, not FIFO: a waiter woken
// by a release re-checks both the capacity and the spacing condition, and
// whichever waiter the scheduler runs first claims the slot.
type Limiter struct {
	mu        sync.Mutex
	max       int
	interval  time.Duration
	active    int
	lastGrant time.Time
	waiters   []chan struct{}
}

// New creates a Limiter admitting at most maxConcurrent simultaneous
// operations, with at least minInterval between consecutive grant times.
// maxConcurrent below 1 is clamped to 1; a negative minInterval is clamped
// to zero.
func New(maxConcurrent int, minInterval time.Duration) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if minInterval < 0 {
		minInterval = 0
	}
	return &Limiter{
		max:      maxConcurrent,
		interval: minInterval,
	}
}

// Acquire blocks until a slot is free and the spacing interval since the
// previous grant has elapsed, then claims the slot. Waiting is unbounded;
// Acquire returns early only when ctx is cancelled, in which case the slot
// is not claimed and Release must not be called.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		if l.active < l.max {
			wait := l.spacingLocked()
			if wait <= 0 {
				l.active++
				l.lastGrant = time.Now()
				gateActive.Set(float64(l.active))
				l.mu.Unlock()
				return nil
			}
			// Capacity is free but the previous grant is too recent. Sleep
			// out the remainder and re-check: another caller may have taken
			// the slot by then.
			l.mu.Unlock()
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
			continue
		}

		ch := make(chan struct{})
		l.waiters = append(l.waiters, ch)
		gateWaiting.Set(float64(len(l.waiters)))
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			l.abandon(ch)
			return ctx.Err()
		}
	}
}

// Release frees a slot and wakes the next waiter, if any. Releasing when
// no operations are active is a no-op on the count.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active > 0 {
		l.active--
	}
	gateActive.Set(float64(l.active))
	l.wakeLocked()
}

// Active returns the number of currently admitted operations.
func (l *Limiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Waiting returns the number of callers blocked on capacity. Callers
// sleeping out the spacing interval are not counted.
func (l *Limiter) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiters)
}

// spacingLocked returns how long the caller must still wait for the grant
// interval to elapse. Callers must hold mu.
func (l *Limiter) spacingLocked() time.Duration {
	if l.lastGrant.IsZero() {
		return 0
	}
	return l.interval - time.Since(l.lastGrant)
}

// wakeLocked signals the oldest waiter. Callers must hold mu.
func (l *Limiter) wakeLocked() {
	if len(l.waiters) > 0 {
		close(l.waiters[0])
		l.waiters = l.waiters[1:]
		gateWaiting.Set(float64(len(l.waiters)))
	}
}

// abandon removes a cancelled waiter from the queue. If the waiter was
// already woken by a release, the wakeup is passed on to the next waiter
// so it is not lost.
func (l *Limiter) abandon(ch chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, w := range l.waiters {
		if w == ch {
			l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
			gateWaiting.Set(float64(len(l.waiters)))
			return
		}
	}
	l.wakeLocked()
}
