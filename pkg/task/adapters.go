package task

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// Invoker calls a method by name. *runtime.Object satisfies it.
type Invoker interface {
	Invoke(method string, args ...runtime.Value) (runtime.Value, error)
}

// Callback completes the task it was handed out for.
type Callback func(value runtime.Value)

func completer(t *Task[runtime.Value]) Callback {
	return func(value runtime.Value) {
		t.settle(StatusRanToCompletion, value, nil)
	}
}

func invokeInto(t *Task[runtime.Value], target Invoker, method string, args []runtime.Value) {
	if target == nil {
		t.settle(StatusFaulted, nil, exceptions.NewArgumentNull("target", "", nil))
		return
	}
	if _, err := target.Invoke(method, args...); err != nil {
		t.settle(StatusFaulted, nil, err)
	}
}

// FromCallback calls target.method(args..., callback) and completes the task
// with whatever the callback receives.
func FromCallback(s Scheduler, target Invoker, method string, args ...runtime.Value) *Task[runtime.Value] {
	t := NewPending[runtime.Value](s)
	invokeInto(t, target, method, append(slices.Clone(args), completer(t)))
	return t
}

// FromCallbackResult lets handler place the callback: it receives the
// arguments and the callback and returns the argument list to call with.
func FromCallbackResult(s Scheduler, target Invoker, method string, handler func(args []runtime.Value, cb Callback) []runtime.Value, args ...runtime.Value) *Task[runtime.Value] {
	t := NewPending[runtime.Value](s)
	if handler == nil {
		t.settle(StatusFaulted, nil, exceptions.NewArgumentNull("handler", "", nil))
		return t
	}
	invokeInto(t, target, method, handler(slices.Clone(args), completer(t)))
	return t
}

// FromCallbackOptions stores the callback under name in the options bag
// passed as the first argument, creating the bag when it is missing. The bag
// may be a map[string]runtime.Value or an *runtime.Object.
func FromCallbackOptions(s Scheduler, target Invoker, method, name string, args ...runtime.Value) *Task[runtime.Value] {
	t := NewPending[runtime.Value](s)
	args = slices.Clone(args)
	if len(args) == 0 {
		args = append(args, nil)
	}
	cb := completer(t)
	switch opts := args[0].(type) {
	case nil:
		args[0] = map[string]runtime.Value{name: cb}
	case map[string]runtime.Value:
		if opts == nil {
			opts = make(map[string]runtime.Value)
			args[0] = opts
		}
		opts[name] = cb
	case *runtime.Object:
		opts.Set(name, cb)
	default:
		t.settle(StatusFaulted, nil, exceptions.NewArgument(
			fmt.Sprintf("options must be a property bag, got %T", opts), "options", nil))
		return t
	}
	invokeInto(t, target, method, args)
	return t
}

// Promise is a thenable: exactly one of the handlers is eventually called.
type Promise interface {
	Then(onFulfilled func(values ...runtime.Value), onRejected func(reasons ...runtime.Value))
}

// PromiseSource yields a Promise, as deferred objects do.
type PromiseSource interface {
	Promise() Promise
}

// FromPromise settles with handler(values...) when p fulfills, or with all
// fulfilled values when handler is nil. A rejection faults the task with an
// ErrorException.
func FromPromise(s Scheduler, p Promise, handler func(values ...runtime.Value) (runtime.Value, error)) *Task[runtime.Value] {
	t := NewPending[runtime.Value](s)
	if p == nil {
		t.settle(StatusFaulted, nil, exceptions.NewArgumentNull("promise", "", nil))
		return t
	}
	p.Then(func(values ...runtime.Value) {
		if handler == nil {
			t.settle(StatusRanToCompletion, slices.Clone(values), nil)
			return
		}
		t.settleOutcome(capture(func() (runtime.Value, error) { return handler(values...) }))
	}, func(reasons ...runtime.Value) {
		t.settle(StatusFaulted, nil, rejection(reasons))
	})
	return t
}

func FromPromiseSource(s Scheduler, src PromiseSource, handler func(values ...runtime.Value) (runtime.Value, error)) *Task[runtime.Value] {
	if src == nil {
		return FromPromise(s, nil, handler)
	}
	return FromPromise(s, src.Promise(), handler)
}

func rejection(reasons []runtime.Value) error {
	if len(reasons) == 1 {
		if err, ok := reasons[0].(error); ok {
			if ex, ok := exceptions.As(err); ok && ex.Kind() == exceptions.KindError {
				return ex
			}
			return exceptions.Wrap(err)
		}
	}
	return exceptions.Wrap(errors.New(fmt.Sprint(reasons...)))
}
