// Package queue implements the admission-controlled TaskQueue of spec.md
// §4.4: a bounded-concurrency executor whose submissions carry Flags that
// select priority, detachment, and exclusivity behavior.
package queue

import (
	"context"
	"sync/atomic"

	async "github.com/av-sync/asyncobjects"
	"github.com/av-sync/asyncobjects/internal/xlog"
	"github.com/av-sync/asyncobjects/pool"
)

// Func is a submitted unit of work. It is executed on an admission slot
// and may block; every call is cancellation-aware via ctx.
type Func[R any] func(context.Context) (R, error)

// entry is one tabled-but-not-yet-admitted submission, carrying the flags
// the admission/draining logic needs alongside its Continuation.
type entry[R any] struct {
	key      uint64
	ctx      context.Context
	fn       Func[R]
	flags    Flags
	priority Priority
}

// TaskQueue is the admission-controlled executor of spec.md §4.4. It
// reuses Registry (L1) for the FIFO waiter table and layers its own
// currentRunning/blocked bookkeeping under the same lock, following
// spec.md's "TaskQueue is itself an actor-like serializer" guidance by
// never mutating that bookkeeping except while holding Registry's lock.
type TaskQueue[R any] struct {
	registry *async.Registry[uint64, R]
	entries  map[uint64]*entry[R]

	blocked         bool
	currentRunning  int64
	defaultPriority Priority

	nextKey atomic.Uint64
	pool    pool.Pool
	metrics *queueMetrics
	logger  *xlog.Logger
}

// New constructs a TaskQueue, configured by opts (queue/options.go).
func New[R any](opts ...Option) *TaskQueue[R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	newSlot := func() interface{} { return &execSlot[R]{} }
	var p pool.Pool
	if o.concurrency > 0 {
		p = pool.NewFixed(o.concurrency, newSlot)
	} else {
		p = pool.NewDynamic(newSlot)
	}

	return &TaskQueue[R]{
		registry:        async.NewRegistry[uint64, R](),
		entries:         make(map[uint64]*entry[R]),
		defaultPriority: o.defaultPriority,
		pool:            p,
		metrics:         newQueueMetrics(o.metrics),
		logger:          o.logger,
	}
}

// Submit admits fn under flags, suspending the caller until it has run to
// completion (spec.md §4.4's admission rule). A nil requested leaves
// priority selection to defaultPriority/context alone.
func (q *TaskQueue[R]) Submit(ctx context.Context, fn Func[R], flags Flags, requested *Priority) (R, error) {
	var zero R
	pr := q.selectPriority(ctx, flags, requested)

	q.registry.Lock()
	if q.admitsLocked(flags) {
		q.admitLocked(flags)
		q.registry.Unlock()
		q.metrics.admitted.Add(1)
		v, err := q.runSlot(ctx, fn)
		q.complete(flags)
		return v, err
	}
	// Only a submission that would actually queue needs to honor an
	// already-cancelled ctx; one that admits synchronously above always
	// wins, mirroring SuspendCancellable's terminal-state-first ordering.
	if err := ctx.Err(); err != nil {
		q.registry.Unlock()
		return zero, async.ErrCancelled
	}

	key := q.nextKey.Add(1)
	cont := q.registry.TableLocked(key)
	q.entries[key] = &entry[R]{key: key, ctx: ctx, fn: fn, flags: flags, priority: pr}
	q.registry.Unlock()
	q.metrics.queued.Add(1)
	xlog.Debug(q.logger, xlog.Caller(1), "task queued", map[string]any{"key": key})

	v, err := q.registry.Await(ctx, key, cont)
	if err != nil {
		q.registry.Lock()
		delete(q.entries, key)
		q.registry.Unlock()
		q.metrics.cancelled.Add(1)
	}
	return v, err
}

// admitsLocked implements spec.md §4.4's admission predicate for a fresh
// submission: "¬blocked ∧ queue.empty ∧ ¬(barrier ∧ currentRunning > 0)".
// Must be called with Lock held; uses len(entries) rather than
// Registry.Len() (which would re-acquire the same lock).
func (q *TaskQueue[R]) admitsLocked(f Flags) bool {
	if q.blocked {
		return false
	}
	if len(q.entries) > 0 {
		return false
	}
	return !(f.Barrier && q.currentRunning > 0)
}

// canAdmitHeadLocked is the same predicate applied to the FIFO head
// during drain (queue/serial.go), where "queue.empty" cannot be the
// literal test — the head is itself a queued entry. What draining
// actually needs is exclusivity (¬blocked) and the barrier/quiescence
// check; the head's position at the front of the table already implies
// every entry ahead of it has been admitted. Must be called with Lock
// held.
func (q *TaskQueue[R]) canAdmitHeadLocked(f Flags) bool {
	if q.blocked {
		return false
	}
	return !(f.Barrier && q.currentRunning > 0)
}

// admitLocked applies the side effects of admitting f: currentRunning is
// incremented exactly once, before the work starts, regardless of
// whether admission was synchronous or via drain (spec.md §9's flagged
// double-increment bug is avoided by having exactly one call site for
// this). Block/Barrier hold the queue exclusive until completion.
func (q *TaskQueue[R]) admitLocked(f Flags) {
	q.currentRunning++
	if f.Block || f.Barrier {
		q.blocked = true
	}
	q.metrics.running.Add(1)
}

// complete runs the completion protocol of spec.md §4.4: decrement
// currentRunning, clear blocked if f held it, then drain the FIFO queue.
func (q *TaskQueue[R]) complete(f Flags) {
	q.registry.Lock()
	q.currentRunning--
	q.metrics.running.Add(-1)
	if f.Block || f.Barrier {
		q.blocked = false
	}
	q.drainLocked()
	q.registry.Unlock()
}

// runSlot executes fn on a pooled execSlot (queue/dispatcher.go),
// recovering from panics the way the teacher's worker.go does.
func (q *TaskQueue[R]) runSlot(ctx context.Context, fn Func[R]) (R, error) {
	slot := q.pool.Get().(*execSlot[R])
	defer q.pool.Put(slot)
	return slot.run(ctx, fn)
}

// Len reports the number of currently tabled (not-yet-admitted)
// submissions.
func (q *TaskQueue[R]) Len() int {
	q.registry.Lock()
	defer q.registry.Unlock()
	return len(q.entries)
}

// Running reports the number of admitted submissions currently executing.
func (q *TaskQueue[R]) Running() int64 {
	q.registry.Lock()
	defer q.registry.Unlock()
	return q.currentRunning
}

// Close fails every currently-tabled submission with ErrClosed.
func (q *TaskQueue[R]) Close() {
	q.registry.Lock()
	for k := range q.entries {
		delete(q.entries, k)
	}
	q.registry.DrainLocked(async.ErrClosed)
	q.registry.Unlock()
}
