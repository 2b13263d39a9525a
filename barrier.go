package asyncobjects

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/av-sync/asyncobjects/internal/xlog"
)

// Barrier releases every party at once the moment limit arrivals have
// been observed, then automatically resets for the next generation
// (spec.md §4.2's Barrier row). Unlike CountdownEvent it has no external
// signal/reset vocabulary: Arrive is both the state mutation and the
// only way to cross the threshold.
type Barrier struct {
	registry *Registry[uint64, struct{}]
	limit    int64
	arrived  int64
	nextKey  atomic.Uint64
	logger   *xlog.Logger
}

// NewBarrier constructs a Barrier requiring limit arrivals per
// generation.
func NewBarrier(limit int64) *Barrier {
	return &Barrier{
		registry: NewRegistry[uint64, struct{}](),
		limit:    limit,
		logger:   xlog.Default,
	}
}

// Arrive registers one party's arrival and suspends until the remaining
// limit-1 parties also arrive, ctx is cancelled, or the barrier is
// closed. The arrival that completes the generation releases every
// other waiter and resets arrived to zero for the next generation
// (spec.md §4.2: "on reaching limit, release all parties, then reset");
// it returns synchronously to its own caller rather than tabling itself,
// since ResumeAllLocked (which must run under the same lock as the
// threshold check, per the registry's registration/resume-race
// discipline) cannot also resume the very continuation the releasing
// goroutine would otherwise be blocked on.
func (b *Barrier) Arrive(ctx context.Context) error {
	key := b.nextKey.Add(1)
	var released int
	_, err := SuspendCancellable(ctx, b.registry, key, func() (struct{}, bool, error) {
		b.arrived++
		if b.arrived >= b.limit {
			b.arrived = 0
			released = b.registry.ResumeAllLocked(struct{}{}, nil)
			return struct{}{}, true, nil
		}
		b.registry.TableLocked(key)
		return struct{}{}, false, nil
	})
	if released > 0 {
		xlog.Debug(b.logger, xlog.Caller(1), "barrier released", map[string]any{"parties_released": released})
	}
	return err
}

// ArriveFor is Arrive bounded by a duration.
func (b *Barrier) ArriveFor(ctx context.Context, d time.Duration) (WaitResult, error) {
	return waitFor(ctx, d, b.Arrive)
}

// Parties reports the number of arrivals observed in the current
// generation.
func (b *Barrier) Parties() int64 {
	b.registry.Lock()
	defer b.registry.Unlock()
	return b.arrived
}

// Close fails every currently-tabled waiter with ErrClosed.
func (b *Barrier) Close() {
	b.registry.Lock()
	b.registry.DrainLocked(ErrClosed)
	b.registry.Unlock()
}
