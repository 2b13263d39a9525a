package asyncobjects

import (
	"context"
	"time"
)

// Mutex is the async mutual-exclusion primitive of spec.md §4.2's Mutex
// row: a binary semaphore with an explicit Lock/Unlock vocabulary rather
// than Wait/Signal, kept as a distinct type (rather than a thin alias
// over Semaphore) since its contract is narrower - at most one holder,
// no permit counting - even though it reuses Semaphore's waiter-release
// mechanics internally.
type Mutex struct {
	sem *Semaphore
}

// NewMutex constructs an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: NewSemaphore(1, 1)}
}

// Lock acquires the mutex, parking if it is currently held.
func (m *Mutex) Lock(ctx context.Context) error {
	return m.sem.Wait(ctx)
}

// LockFor acquires the mutex, ctx is cancelled, or d elapses first.
func (m *Mutex) LockFor(ctx context.Context, d time.Duration) (WaitResult, error) {
	return m.sem.WaitFor(ctx, d)
}

// Unlock releases the mutex. Calling Unlock without a matching successful
// Lock is a caller error; unlike sync.Mutex this does not panic, since
// spec.md's error taxonomy has no dedicated "unlock of unlocked mutex"
// kind - it simply hands the permit to the next waiter or restores
// availability.
func (m *Mutex) Unlock() { m.sem.Signal() }

// Close fails every currently-tabled waiter with ErrClosed.
func (m *Mutex) Close() { m.sem.Close() }
