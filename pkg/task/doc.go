// Package task implements single-assignment futures (Task) driven by a
// Scheduler. Loop is the scheduler used in practice: one worker goroutine
// draining a FIFO queue, so actions and continuations never run inside the
// call that created them and always run in the order they were posted.
package task
