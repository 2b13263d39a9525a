// Package operation adapts the library's wait contract onto a
// host-platform imperative operation abstraction (spec.md §4.5):
// NEW/EXECUTING/FINISHED states with Start/Cancel/Result/
// WaitUntilFinished, optionally admitted through a HostQueue (typically
// a *queue.TaskQueue) rather than a bare goroutine.
package operation
