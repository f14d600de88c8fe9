package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Locker serializes access to table files. Every read-check-append-persist
// sequence for a given path must run under the same lock, so two concurrent
// reservations for one (date, slot) can never both observe "free".
type Locker struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	timeout time.Duration
}

// NewLocker creates a locker whose acquisitions give up after timeout
// rather than blocking indefinitely.
func NewLocker(timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Locker{
		locks:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (l *Locker) tokens(path string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[path]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[path] = ch
	}
	return ch
}

// Acquire takes the lock for path, returning a release function. A lock
// that cannot be acquired within the timeout surfaces as
// ErrStorageUnavailable, never as a hang or a crash.
func (l *Locker) Acquire(ctx context.Context, path string) (func(), error) {
	ch := l.tokens(path)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, fmt.Errorf("lock %s: timed out after %s: %w", path, l.timeout, ErrStorageUnavailable)
	case <-ctx.Done():
		return nil, fmt.Errorf("lock %s: %v: %w", path, ctx.Err(), ErrStorageUnavailable)
	}
}
