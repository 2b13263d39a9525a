package asyncobjects

import (
	"container/list"
	"context"
	"sync"
)

// Registry is the cancellable suspension registry of spec.md §4.1: a
// per-primitive waiter table keyed by an opaque, comparable key, parking
// one Continuation per key, with insertion order preserved (spec.md §3
// requires FIFO for TaskQueue; every other primitive's callers simply
// don't observe the order, so a single implementation serves both).
//
// Registry's own mutex doubles as the "non-async critical section"
// primitive from spec.md's L0 row: primitives that need to guard extra
// state of their own (CountdownEvent.count, Semaphore.value, ...) do so by calling
// Lock/Unlock around that state *and* around Registry's table
// operations, so state-check and table-mutation are never observably
// separated — this is what closes the registration/resume race described
// in spec.md §4.1.
type Registry[K comparable, V any] struct {
	mu    sync.Mutex
	conts map[K]*Continuation[V]
	order *list.List
	elems map[K]*list.Element
}

// NewRegistry constructs an empty Registry.
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		conts: make(map[K]*Continuation[V]),
		order: list.New(),
		elems: make(map[K]*list.Element),
	}
}

// Lock acquires the registry's critical section. Primitives embedding a
// Registry call this instead of declaring their own sync.Mutex.
func (r *Registry[K, V]) Lock() { r.mu.Lock() }

// Unlock releases the registry's critical section.
func (r *Registry[K, V]) Unlock() { r.mu.Unlock() }

// Len reports the number of tabled waiters. It acquires Lock itself, so
// it must not be called with Lock held; the result is a snapshot.
func (r *Registry[K, V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conts)
}

// TableLocked allocates a Continuation, tables it under key in FIFO
// order, and returns it. Must be called with Lock held. Overwrites any
// existing entry for key (callers are expected to use unique keys).
func (r *Registry[K, V]) TableLocked(key K) *Continuation[V] {
	cont := newContinuation[V]()
	r.conts[key] = cont
	r.elems[key] = r.order.PushBack(key)
	return cont
}

// removeLocked detaches key from the table, if present. Must be called
// with Lock held.
func (r *Registry[K, V]) removeLocked(key K) {
	if el, ok := r.elems[key]; ok {
		r.order.Remove(el)
		delete(r.elems, key)
	}
	delete(r.conts, key)
}

// Keys returns the tabled keys in FIFO (insertion) order. It acquires
// Lock itself, so it must not be called with Lock held; the result is a
// snapshot.
func (r *Registry[K, V]) Keys() []K {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]K, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(K))
	}
	return out
}

// ResumeLocked resumes the continuation tabled under key, if any, with
// (v, err), removing it from the table on success. Must be called with
// Lock held. Returns false if no waiter is tabled under key, or the
// tabled continuation had already been resumed by a racing path (in
// which case it is still removed, since it's stale).
func (r *Registry[K, V]) ResumeLocked(key K, v V, err error) bool {
	cont, ok := r.conts[key]
	if !ok {
		return false
	}
	resumed := cont.Resume(v, err)
	r.removeLocked(key)
	return resumed
}

// ResumeFrontLocked resumes the earliest-tabled waiter (FIFO head) with
// (v, err), as used by Semaphore.Signal/Mutex release: "wakes exactly one
// parked waiter if any". Must be called with Lock held. Returns false if
// the table is empty.
func (r *Registry[K, V]) ResumeFrontLocked(v V, err error) bool {
	el := r.order.Front()
	if el == nil {
		return false
	}
	key := el.Value.(K)
	return r.ResumeLocked(key, v, err)
}

// ResumeAllLocked resumes every tabled waiter with (v, err) and empties
// the table, as used by Event.Signal, CountdownEvent reaching its
// threshold, Barrier reaching its limit, and Future.fulfill. Must be
// called with Lock held. Returns the number of waiters resumed.
func (r *Registry[K, V]) ResumeAllLocked(v V, err error) int {
	keys := make([]K, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(K))
	}
	n := 0
	for _, k := range keys {
		cont, ok := r.conts[k]
		if !ok {
			continue
		}
		if cont.Resume(v, err) {
			n++
		}
		r.removeLocked(k)
	}
	return n
}

// SuspendCancellable is the registry's single public wait entry point
// (spec.md §4.1). checkAndRegister is invoked under Lock and must either:
//
//   - report a terminal/already-satisfied state by returning
//     (v, true, err) without tabling anything (the primitive was already
//     in a resolved state, e.g. Event already set, Future already
//     settled, Semaphore already has permits) — SuspendCancellable
//     returns (v, err) immediately, synchronously, never touching the
//     channel/select machinery below; or
//   - table a Continuation under key (via r.TableLocked) and return
//     (zero, false, nil) — the caller is then parked until resumed or
//     ctx is cancelled.
//
// This resolves all three races from spec.md §4.1: the terminal-state
// probe always runs before cancellation is honored, so an already-
// satisfied primitive reports its result even under an already-cancelled
// ctx (spec.md §5's zero-duration wait relies on this); the
// registration/resume race is closed because checkAndRegister runs under
// the same lock a concurrent Signal/fulfill/etc. needs to resume
// synchronously; the resume/cancellation race is closed by
// Continuation's CAS.
func SuspendCancellable[K comparable, V any](
	ctx context.Context,
	r *Registry[K, V],
	key K,
	checkAndRegister func() (v V, done bool, err error),
) (V, error) {
	var zero V

	r.Lock()
	v, done, err := checkAndRegister()
	if done {
		r.Unlock()
		return v, err
	}
	cont, ok := r.conts[key]
	if !ok {
		r.Unlock()
		// checkAndRegister reported "not done" but never tabled anything:
		// programmer error in the calling primitive, not a valid state.
		return zero, err
	}
	// Only now, having confirmed the primitive would actually park, does
	// an already-cancelled ctx matter. Evict the entry we just tabled
	// rather than leaving it for Await's select to discover.
	if cerr := ctx.Err(); cerr != nil {
		r.removeLocked(key)
		r.Unlock()
		return zero, ErrCancelled
	}
	r.Unlock()

	return r.Await(ctx, key, cont)
}

// Await suspends the caller on a Continuation already obtained from
// TableLocked, for components (queue.TaskQueue) that must interleave
// extra bookkeeping of their own between tabling and parking and so
// cannot route through SuspendCancellable's single combined call. Taking
// cont directly, rather than re-looking it up by key, avoids a
// table/pop race in the window between Unlock and the wait select below.
func (r *Registry[K, V]) Await(ctx context.Context, key K, cont *Continuation[V]) (V, error) {
	var zero V
	select {
	case res := <-cont.ch:
		return res.value, res.err
	case <-ctx.Done():
		r.Lock()
		r.removeLocked(key)
		won := cont.Resume(zero, ErrCancelled)
		r.Unlock()
		if won {
			return zero, ErrCancelled
		}
		// Lost the race: a signaller already won. Their value is (or
		// imminently will be) in the channel; take it rather than
		// reporting a spurious cancellation.
		res := <-cont.ch
		return res.value, res.err
	}
}

// FrontLocked returns the FIFO head's key without removing it. Must be
// called with Lock held. Returns ok=false if the table is empty.
func (r *Registry[K, V]) FrontLocked() (key K, ok bool) {
	el := r.order.Front()
	if el == nil {
		return key, false
	}
	return el.Value.(K), true
}

// PopFrontLocked removes and returns the earliest-tabled key and its
// Continuation without resuming it, for callers (queue.TaskQueue) that
// must run additional work before the outcome is known and so need to
// separate "this waiter is no longer queued" from "this waiter is
// resumed". Must be called with Lock held. ok is false if the table is
// empty.
func (r *Registry[K, V]) PopFrontLocked() (key K, cont *Continuation[V], ok bool) {
	el := r.order.Front()
	if el == nil {
		return key, nil, false
	}
	k := el.Value.(K)
	cont = r.conts[k]
	r.removeLocked(k)
	return k, cont, true
}

// DrainLocked resumes every tabled waiter with the given error (used on
// primitive destruction, per spec.md §3/§7: "every entry is failed").
// Must be called with Lock held.
func (r *Registry[K, V]) DrainLocked(err error) {
	var zero V
	r.ResumeAllLocked(zero, err)
}
