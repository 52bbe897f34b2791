package task

import (
	"sync"
	"time"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// ContinueWith creates a task settled by fn(src) once src settles. If src is
// already terminal fn is still deferred to the scheduler.
func ContinueWith[T, U any](src *Task[T], fn func(*Task[T]) (U, error)) *Task[U] {
	next := NewPending[U](src.sched)
	src.onSettled(func() {
		next.settleOutcome(capture(func() (U, error) { return fn(src) }))
	}, func(err error) { next.fault(err) })
	return next
}

// Run starts fn on s and returns its task.
func Run[T any](s Scheduler, fn func() (T, error)) *Task[T] {
	t := New(s, func(any) (T, error) { return fn() }, nil)
	_ = t.Start()
	return t
}

// Delay returns a task that completes with state after d. It faults if the
// scheduler closes first.
func Delay(s Scheduler, d time.Duration, state any) *Task[any] {
	t := NewPending[any](s)
	err := s.After(d, func(err error) {
		if err != nil {
			t.fault(err)
			return
		}
		t.settle(StatusRanToCompletion, state, nil)
	})
	if err != nil {
		t.fault(err)
	}
	return t
}

// WhenAll settles once every input has settled. Results keep input order.
// Any fault wins and carries an aggregate of every collected error, then any
// cancellation; otherwise the task completes with all results. No inputs
// complete immediately with an empty slice.
func WhenAll[T any](s Scheduler, tasks ...*Task[T]) *Task[[]T] {
	all := NewPending[[]T](s)
	if len(tasks) == 0 {
		all.settle(StatusRanToCompletion, []T{}, nil)
		return all
	}
	for _, t := range tasks {
		if t == nil {
			all.settle(StatusFaulted, nil, exceptions.NewArgumentNull("tasks", "", nil))
			return all
		}
	}

	var (
		mu        sync.Mutex
		results   = make([]T, len(tasks))
		remaining = len(tasks)
		canceled  bool
		errs      []error
	)
	for i, t := range tasks {
		t.onSettled(func() {
			value, err, status := t.snapshot()
			mu.Lock()
			switch status {
			case StatusRanToCompletion:
				results[i] = value
			case StatusCanceled:
				canceled = true
			case StatusFaulted:
				errs = append(errs, err)
			}
			remaining--
			finished := remaining == 0
			mu.Unlock()
			if !finished {
				return
			}
			switch {
			case len(errs) > 0:
				all.settle(StatusFaulted, nil, exceptions.NewAggregate("", errs...))
			case canceled:
				all.settle(StatusCanceled, nil, nil)
			default:
				all.settle(StatusRanToCompletion, results, nil)
			}
		}, func(err error) { all.fault(err) })
	}
	return all
}

// WhenAny propagates the outcome of whichever input settles first.
func WhenAny[T any](s Scheduler, tasks ...*Task[T]) (*Task[T], error) {
	if len(tasks) == 0 {
		return nil, exceptions.NewArgument("At least one task is required", "tasks", nil)
	}
	for _, t := range tasks {
		if t == nil {
			return nil, exceptions.NewArgumentNull("tasks", "", nil)
		}
	}
	first := NewPending[T](s)
	for _, t := range tasks {
		t.onSettled(func() {
			value, err, status := t.snapshot()
			first.settle(status, value, err)
		}, func(err error) { first.fault(err) })
	}
	return first, nil
}
