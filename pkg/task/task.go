package task

import (
	"context"
	"errors"
	"sync"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// Task is a single-assignment result: it settles exactly once, to a value, an
// error or cancellation. Callbacks registered before settlement are posted to
// the scheduler in registration order when it settles.
type Task[T any] struct {
	sched Scheduler

	mu        sync.Mutex
	status    Status
	action    func(state any) (T, error)
	state     any
	result    T
	err       error
	callbacks []continuation
	done      chan struct{}
}

// continuation runs on the scheduler after settlement. abort receives the
// scheduler's error when run cannot be posted.
type continuation struct {
	run   func()
	abort func(error)
}

// New creates a task that runs action(state) on s once started.
func New[T any](s Scheduler, action func(state any) (T, error), state any) *Task[T] {
	return &Task[T]{sched: s, status: StatusCreated, action: action, state: state, done: make(chan struct{})}
}

// NewPending creates a task without an action, settled from outside through
// SetResult, SetError or SetCanceled.
func NewPending[T any](s Scheduler) *Task[T] {
	return &Task[T]{sched: s, status: StatusWaitingForActivation, done: make(chan struct{})}
}

// FromResult returns a task already completed with value.
func FromResult[T any](s Scheduler, value T) *Task[T] {
	t := NewPending[T](s)
	t.settle(StatusRanToCompletion, value, nil)
	return t
}

// Start schedules the action. Only a created task can start.
func (t *Task[T]) Start() error {
	t.mu.Lock()
	if t.status != StatusCreated {
		t.mu.Unlock()
		return exceptions.NewInvalidOperation("Task was already started.", nil)
	}
	action, state := t.action, t.state
	if action == nil {
		t.mu.Unlock()
		return exceptions.NewArgumentNull("action", "", nil)
	}
	t.status = StatusRunning
	t.action, t.state = nil, nil
	t.mu.Unlock()

	if o, ok := t.sched.(taskObserver); ok {
		o.taskStarted()
	}
	err := t.sched.Post(func() {
		t.settleOutcome(capture(func() (T, error) { return action(state) }))
	})
	if err != nil {
		t.fault(err)
	}
	return nil
}

func (t *Task[T]) SetResult(value T) error {
	return t.mustSettle(StatusRanToCompletion, value, nil)
}

// SetError faults the task with err. A nil err faults with a generic
// exception.
func (t *Task[T]) SetError(err error) error {
	if err == nil {
		err = exceptions.New("", nil)
	}
	var zero T
	return t.mustSettle(StatusFaulted, zero, err)
}

func (t *Task[T]) SetCanceled() error {
	var zero T
	return t.mustSettle(StatusCanceled, zero, nil)
}

func (t *Task[T]) fault(err error) bool {
	var zero T
	return t.settle(StatusFaulted, zero, err)
}

func (t *Task[T]) mustSettle(status Status, value T, err error) error {
	if !t.settle(status, value, err) {
		return exceptions.NewInvalidOperation("Task was already completed.", nil)
	}
	return nil
}

// settleOutcome maps an action's return onto the task: context cancellation
// cancels, any other error faults.
func (t *Task[T]) settleOutcome(value T, err error) {
	var zero T
	switch {
	case err == nil:
		t.settle(StatusRanToCompletion, value, nil)
	case errors.Is(err, context.Canceled):
		t.settle(StatusCanceled, zero, nil)
	default:
		t.settle(StatusFaulted, zero, err)
	}
}

// settle is a no-op once the task is terminal.
func (t *Task[T]) settle(status Status, value T, err error) bool {
	t.mu.Lock()
	if t.status.Terminal() {
		t.mu.Unlock()
		return false
	}
	t.status = status
	t.result = value
	t.err = err
	t.action, t.state = nil, nil
	callbacks := t.callbacks
	t.callbacks = nil
	close(t.done)
	t.mu.Unlock()

	if o, ok := t.sched.(taskObserver); ok {
		o.taskSettled(status)
	}
	for _, cb := range callbacks {
		t.post(cb)
	}
	return true
}

func (t *Task[T]) post(cb continuation) {
	if err := t.sched.Post(cb.run); err != nil {
		cb.abort(err)
	}
}

// onSettled posts run after settlement; if the task is already terminal run
// is posted right away. abort gets the error if the scheduler refuses it.
func (t *Task[T]) onSettled(run func(), abort func(error)) {
	cb := continuation{run: run, abort: abort}
	t.mu.Lock()
	if !t.status.Terminal() {
		t.callbacks = append(t.callbacks, cb)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	t.post(cb)
}

func (t *Task[T]) snapshot() (T, error, Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err, t.status
}

func (t *Task[T]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Task[T]) IsCompleted() bool { return t.Status().Terminal() }

func (t *Task[T]) IsCanceled() bool { return t.Status() == StatusCanceled }

func (t *Task[T]) IsFaulted() bool { return t.Status() == StatusFaulted }

// Err is the stored failure of a faulted task.
func (t *Task[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// GetResult returns the value of a completed task, an operation-canceled
// exception for a canceled one, the stored error for a faulted one and an
// invalid-operation exception while it is still pending.
func (t *Task[T]) GetResult() (T, error) {
	result, err, status := t.snapshot()
	var zero T
	switch status {
	case StatusRanToCompletion:
		return result, nil
	case StatusCanceled:
		return zero, exceptions.NewOperationCanceled("Task was cancelled.", nil)
	case StatusFaulted:
		return zero, err
	}
	return zero, exceptions.NewInvalidOperation("Task is not yet completed.", nil)
}

// Done is closed when the task settles.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task settles or ctx ends, then behaves like
// GetResult. It must not be called from a callback running on a serial
// scheduler that the task depends on.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.GetResult()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (t *Task[T]) RuntimeType(r *runtime.Registry) *runtime.Type {
	return r.MustInstantiate(runtime.GenericTaskTypeName, runtime.TypeFor[T](r))
}

// capture runs fn and turns a panic into an exception.
func capture[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, exceptions.FromPanic(r)
		}
	}()
	return fn()
}
