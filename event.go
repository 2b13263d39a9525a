package asyncobjects

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/av-sync/asyncobjects/internal/xlog"
)

// Event is the async analogue of a manual-reset event: once Signal is
// called, every current and future Wait returns immediately (spec.md
// §4.2's Event row). It shares the Registry waiter-table pattern used by
// every primitive in this file.
type Event struct {
	registry *Registry[uint64, struct{}]
	set      atomic.Bool
	nextKey  atomic.Uint64
	logger   *xlog.Logger
}

// NewEvent constructs an unset Event.
func NewEvent() *Event {
	return &Event{registry: NewRegistry[uint64, struct{}](), logger: xlog.Default}
}

// Signal sets the event, releasing every waiter (spec.md §4.2: "set ←
// true", "all" released). Non-suspending; a no-op if already set.
func (e *Event) Signal() {
	if !e.set.CompareAndSwap(false, true) {
		return
	}
	e.registry.Lock()
	n := e.registry.ResumeAllLocked(struct{}{}, nil)
	e.registry.Unlock()
	xlog.Debug(e.logger, xlog.Caller(1), "event signalled", map[string]any{"waiters_released": n})
}

// Reset clears the event back to unset. Waiters already released by a
// prior Signal are unaffected; new Wait calls will park again.
func (e *Event) Reset() { e.set.Store(false) }

// Wait suspends until the event is set or ctx is cancelled.
func (e *Event) Wait(ctx context.Context) error {
	key := e.nextKey.Add(1)
	_, err := SuspendCancellable(ctx, e.registry, key, func() (struct{}, bool, error) {
		if e.set.Load() {
			return struct{}{}, true, nil
		}
		e.registry.TableLocked(key)
		return struct{}{}, false, nil
	})
	return err
}

// WaitFor suspends until the event is set, ctx is cancelled, or d
// elapses, per spec.md §6's `wait(for:)`.
func (e *Event) WaitFor(ctx context.Context, d time.Duration) (WaitResult, error) {
	return waitFor(ctx, d, e.Wait)
}

// Close fails every currently-tabled waiter with ErrClosed, per spec.md
// §3/§7's destruction contract.
func (e *Event) Close() {
	e.registry.Lock()
	e.registry.DrainLocked(ErrClosed)
	e.registry.Unlock()
}
