package asyncobjects

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/av-sync/asyncobjects/internal/xlog"
)

// CountdownEvent is set iff count ≤ limit (spec.md §3's countdown state,
// §4.2's release rule). limit, initial, and count are guarded by the
// shared Registry lock rather than their own mutex or atomics, since
// every mutation must be observed transactionally with the table
// drain/table decision (spec.md §4.2: "release only occurs when C
// transitions across the threshold under the registry lock").
type CountdownEvent struct {
	registry *Registry[uint64, struct{}]
	limit    int64
	initial  int64
	count    int64
	nextKey  atomic.Uint64
	logger   *xlog.Logger
}

// NewCountdownEvent constructs a CountdownEvent with the given threshold
// (limit) and starting count (initial).
func NewCountdownEvent(limit, initial int64) *CountdownEvent {
	return &CountdownEvent{
		registry: NewRegistry[uint64, struct{}](),
		limit:    limit,
		initial:  initial,
		count:    initial,
		logger:   xlog.Default,
	}
}

// isSetLocked reports whether count has crossed the release threshold.
// Must be called with registry.Lock held.
func (c *CountdownEvent) isSetLocked() bool { return c.count <= c.limit }

// Signal decrements the live count by r (floored at zero) and releases
// every waiter if this crosses the threshold (spec.md §4.2's `signal`
// effect for CountdownEvent).
func (c *CountdownEvent) Signal(r int64) {
	c.registry.Lock()
	c.count -= r
	if c.count < 0 {
		c.count = 0
	}
	var released int
	if c.isSetLocked() {
		released = c.registry.ResumeAllLocked(struct{}{}, nil)
	}
	c.registry.Unlock()
	if released > 0 {
		xlog.Debug(c.logger, xlog.Caller(1), "countdown released", map[string]any{"waiters_released": released})
	}
}

// Increment raises the live count by r. If this uncrosses the threshold,
// the event silently becomes unset again: already-resumed waiters are
// unaffected, and no new release is triggered (spec.md §4.2).
func (c *CountdownEvent) Increment(r int64) {
	c.registry.Lock()
	c.count += r
	c.registry.Unlock()
}

// Reset restores count to the baseline captured at construction or by the
// last ResetTo (spec.md §4.2: "C ← I").
func (c *CountdownEvent) Reset() {
	c.registry.Lock()
	c.count = c.initial
	c.registry.Unlock()
}

// ResetTo replaces the baseline and the live count (spec.md §4.2:
// "I ← I'; C ← I'"). A wait racing with ResetTo only releases once the
// registry lock observes count ≤ limit, so a late-arriving ResetTo never
// spuriously releases an already-tabled waiter ahead of that check.
func (c *CountdownEvent) ResetTo(initial int64) {
	c.registry.Lock()
	c.initial = initial
	c.count = initial
	c.registry.Unlock()
}

// Count returns the current live count.
func (c *CountdownEvent) Count() int64 {
	c.registry.Lock()
	defer c.registry.Unlock()
	return c.count
}

// Wait suspends until count ≤ limit or ctx is cancelled. A call issued
// while already set returns immediately (spec.md §4.2).
func (c *CountdownEvent) Wait(ctx context.Context) error {
	key := c.nextKey.Add(1)
	_, err := SuspendCancellable(ctx, c.registry, key, func() (struct{}, bool, error) {
		if c.isSetLocked() {
			return struct{}{}, true, nil
		}
		c.registry.TableLocked(key)
		return struct{}{}, false, nil
	})
	return err
}

// WaitFor suspends until count ≤ limit, ctx is cancelled, or d elapses.
func (c *CountdownEvent) WaitFor(ctx context.Context, d time.Duration) (WaitResult, error) {
	return waitFor(ctx, d, c.Wait)
}

// Close fails every currently-tabled waiter with ErrClosed.
func (c *CountdownEvent) Close() {
	c.registry.Lock()
	c.registry.DrainLocked(ErrClosed)
	c.registry.Unlock()
}
