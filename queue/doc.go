// Package queue implements TaskQueue, the admission-controlled executor
// of spec.md §4.4: a bounded-concurrency scheduler whose submissions
// carry Flags selecting priority propagation, detachment, and serial
// (Block/Barrier) exclusivity.
//
// Admission
// A submission admits synchronously when the queue is unblocked, empty,
// and (for Barrier) quiescent; otherwise it is tabled in FIFO order and
// released by the completion protocol of whichever admission finishes
// next.
//
// Flags
//   - Enforce: priority is the max of every present candidate.
//   - Detached: excludes the calling context's priority from that set.
//   - Block: exclusive until completion, no admission quiescence required.
//   - Barrier: Block plus a quiescent-queue precondition to admit.
//
// Pools
//   - WithConcurrency(0) (default): dynamic pool, grows/shrinks via sync.Pool.
//   - WithConcurrency(n): fixed pool capped at n concurrently-running slots.
package queue
