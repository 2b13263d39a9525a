// Package asyncobjects provides cancellable suspension primitives for
// cooperative-multitasking Go: a FIFO waiter registry (Registry,
// Continuation), the event-family primitives built on it (Event,
// Semaphore, Mutex, CountdownEvent, Barrier), and a single-assignment
// Future with its combinators.
//
// Every primitive shares the same suspend/resume discipline: a caller
// parks on a context.Context-aware Continuation tabled in a Registry,
// and is resumed at most once, exactly-once, whether by the primitive's
// own release condition or by ctx cancellation racing against it. This
// closes the three registration/resume races spec.md calls out
// (register-vs-cancel, resume-vs-cancel, register-vs-resume) by holding
// a single mutex across the check-and-table and resume paths.
//
// Higher layers build on these primitives from their own packages:
// queue.TaskQueue (admission-controlled execution with priority/
// exclusivity flags), operation.TaskOperation (a NEW/EXECUTING/FINISHED
// bridge onto a host operation queue), and wait.AsyncObject (a uniform
// Signal/Wait/WaitFor façade over every primitive, including TaskQueue
// and TaskOperation).
package asyncobjects
