// Package guard provides the allocator's non-blocking mutual exclusion
// primitive.
package guard

import "sync/atomic"

// Guard is an advisory try-lock built on an atomic compare-and-swap flag.
//
// Unlike a mutex, acquisition never blocks: a caller that loses the race is
// told immediately so it can surface a retryable error instead of queuing.
// This bounds allocation latency under contention.
type Guard struct {
	held atomic.Bool
}

// New creates a released guard.
func New() *Guard {
	return &Guard{}
}

// TryAcquire attempts to take the guard without blocking.
//
// Returns:
//   - bool: true if the guard was acquired, false if another holder exists
func (g *Guard) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release returns the guard. Calling Release without holding the guard is a
// programming error; the release is unconditional.
func (g *Guard) Release() {
	g.held.Store(false)
}

// Held reports whether the guard is currently taken. Intended for
// observability only; the answer may be stale by the time it is read.
func (g *Guard) Held() bool {
	return g.held.Load()
}
