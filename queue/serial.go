package queue

import async "github.com/av-sync/asyncobjects"

// drainLocked is the serial execution path taken once the queue is
// blocked: the teacher's fifo.go shipped a single-goroutine,
// sequential-drain executor under a `//go:build ignore` tag, unwired to
// anything. Its shape — pop one head entry, run it, decide whether to
// continue — is exactly spec.md §4.4's "Completion protocol": drain the
// FIFO queue, popping the head iff the admission predicate allows it,
// and stopping after resuming a Block/Barrier entry. Must be called with
// Lock held.
func (q *TaskQueue[R]) drainLocked() {
	for {
		headKey, ok := q.registry.FrontLocked()
		if !ok {
			return
		}
		head, ok := q.entries[headKey]
		if !ok || !q.canAdmitHeadLocked(head.flags) {
			return
		}

		key, cont, ok := q.registry.PopFrontLocked()
		if !ok {
			return
		}
		delete(q.entries, key)
		q.admitLocked(head.flags)
		q.metrics.admitted.Add(1)

		go q.runDrained(head, cont)

		if head.flags.Block || head.flags.Barrier {
			return
		}
	}
}

// runDrained executes a previously-queued entry's work on its own
// goroutine and resumes the original caller's Continuation with the
// outcome, then runs the completion protocol for this admission. It runs
// outside the registry lock, which was released before this entry was
// ever admitted.
func (q *TaskQueue[R]) runDrained(e *entry[R], cont *async.Continuation[R]) {
	if err := e.ctx.Err(); err != nil {
		cont.Resume(*new(R), err)
		q.complete(e.flags)
		return
	}
	v, err := q.runSlot(e.ctx, e.fn)
	cont.Resume(v, err)
	q.complete(e.flags)
}
