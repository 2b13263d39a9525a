package asyncobjects

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/av-sync/asyncobjects/internal/xlog"
)

// Semaphore guards a non-negative permit count (spec.md §4.2's Semaphore
// row): Wait acquires a permit, parking if none is available; Signal
// releases one, either handing it straight to the earliest-tabled waiter
// or adding it back to the pool. value and limit are guarded by the
// shared Registry lock, following the same discipline as CountdownEvent.
type Semaphore struct {
	registry *Registry[uint64, struct{}]
	value    int64
	limit    int64 // 0 means unbounded
	nextKey  atomic.Uint64
	logger   *xlog.Logger
}

// NewSemaphore constructs a Semaphore with the given number of initially
// available permits and an optional upper bound (limit <= 0 means
// unbounded; Signal past the limit is clamped rather than rejected,
// mirroring a counting semaphore with no distinct "overflow" error in
// spec.md's taxonomy).
func NewSemaphore(initial, limit int64) *Semaphore {
	return &Semaphore{
		registry: NewRegistry[uint64, struct{}](),
		value:    initial,
		limit:    limit,
		logger:   xlog.Default,
	}
}

// Signal releases one permit: if a waiter is parked, it is handed the
// permit directly (value is not incremented, since it passes straight
// through); otherwise value is incremented, clamped to limit when set.
func (s *Semaphore) Signal() {
	s.registry.Lock()
	if s.registry.ResumeFrontLocked(struct{}{}, nil) {
		s.registry.Unlock()
		return
	}
	s.value++
	if s.limit > 0 && s.value > s.limit {
		s.value = s.limit
	}
	s.registry.Unlock()
}

// Wait acquires a permit, decrementing value if one is available or
// parking (FIFO) until one is released.
func (s *Semaphore) Wait(ctx context.Context) error {
	key := s.nextKey.Add(1)
	_, err := SuspendCancellable(ctx, s.registry, key, func() (struct{}, bool, error) {
		if s.value > 0 {
			s.value--
			return struct{}{}, true, nil
		}
		s.registry.TableLocked(key)
		return struct{}{}, false, nil
	})
	return err
}

// WaitFor acquires a permit, ctx is cancelled, or d elapses first.
func (s *Semaphore) WaitFor(ctx context.Context, d time.Duration) (WaitResult, error) {
	return waitFor(ctx, d, s.Wait)
}

// Available returns the current number of free permits.
func (s *Semaphore) Available() int64 {
	s.registry.Lock()
	defer s.registry.Unlock()
	return s.value
}

// Close fails every currently-tabled waiter with ErrClosed.
func (s *Semaphore) Close() {
	s.registry.Lock()
	s.registry.DrainLocked(ErrClosed)
	s.registry.Unlock()
}
