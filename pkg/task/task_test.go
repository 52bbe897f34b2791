package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

func newTestLoop(t *testing.T, opts ...LoopOption) *Loop {
	t.Helper()
	l := NewLoop(opts...)
	t.Cleanup(l.Close)
	return l
}

func TestStartRunsLater(t *testing.T) {
	loop := newTestLoop(t)
	var mu sync.Mutex
	var trace []string
	record := func(s string) {
		mu.Lock()
		trace = append(trace, s)
		mu.Unlock()
	}

	block := make(chan struct{})
	loop.Post(func() { <-block })
	tk := New(loop, func(state any) (int, error) {
		record("action")
		return state.(int) * 2, nil
	}, 21)
	if err := tk.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	record("after start")
	if tk.Status() != StatusRunning {
		t.Fatalf("status = %s", tk.Status())
	}
	close(block)
	loop.Flush()

	if len(trace) != 2 || trace[0] != "after start" {
		t.Fatalf("action ran inside Start: %v", trace)
	}
	if v, err := tk.GetResult(); err != nil || v != 42 {
		t.Fatalf("GetResult = %v, %v", v, err)
	}
	if err := tk.Start(); !exceptions.Is(err, exceptions.KindInvalidOperation) || err.Error() != "Task was already started." {
		t.Fatalf("second Start = %v", err)
	}
}

func TestSettleOnce(t *testing.T) {
	loop := newTestLoop(t)
	tk := NewPending[string](loop)
	if _, err := tk.GetResult(); err == nil || err.Error() != "Task is not yet completed." {
		t.Fatalf("pending GetResult = %v", err)
	}
	if err := tk.SetResult("a"); err != nil {
		t.Fatalf("SetResult: %v", err)
	}
	for _, err := range []error{tk.SetResult("b"), tk.SetError(errors.New("x")), tk.SetCanceled()} {
		if err == nil || err.Error() != "Task was already completed." {
			t.Fatalf("second settle = %v", err)
		}
	}
	if v, _ := tk.GetResult(); v != "a" {
		t.Fatalf("result overwritten: %v", v)
	}
	if !tk.IsCompleted() || tk.IsFaulted() || tk.IsCanceled() {
		t.Fatalf("status flags wrong for %s", tk.Status())
	}
}

func TestCanceledAndFaulted(t *testing.T) {
	loop := newTestLoop(t)
	c := NewPending[int](loop)
	_ = c.SetCanceled()
	if _, err := c.GetResult(); !exceptions.Is(err, exceptions.KindOperationCanceled) || err.Error() != "Task was cancelled." {
		t.Fatalf("canceled GetResult = %v", err)
	}

	boom := errors.New("boom")
	f := Run(loop, func() (int, error) { return 0, boom })
	if _, err := f.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("faulted Wait = %v", err)
	}
	if !f.IsFaulted() || !errors.Is(f.Err(), boom) {
		t.Fatalf("stored error = %v", f.Err())
	}

	p := Run(loop, func() (int, error) {
		var m map[string]int
		m["x"] = 1
		return 0, nil
	})
	if _, err := p.Wait(context.Background()); !exceptions.Is(err, exceptions.KindNullReference) {
		t.Fatalf("panicking action should fault with a classified exception, got %v", err)
	}

	ctxCanceled := Run(loop, func() (int, error) { return 0, context.Canceled })
	_, _ = ctxCanceled.Wait(context.Background())
	if !ctxCanceled.IsCanceled() {
		t.Fatalf("context cancellation should cancel the task, status %s", ctxCanceled.Status())
	}
}

func TestWaitHonoursContext(t *testing.T) {
	loop := newTestLoop(t)
	tk := NewPending[int](loop)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := tk.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v", err)
	}
}

func TestContinuationsRunInRegistrationOrder(t *testing.T) {
	loop := newTestLoop(t)
	src := NewPending[int](loop)
	var order []int
	var conts []*Task[int]
	for i := 0; i < 3; i++ {
		conts = append(conts, ContinueWith(src, func(s *Task[int]) (int, error) {
			order = append(order, i)
			v, err := s.GetResult()
			return v + i, err
		}))
	}
	_ = src.SetResult(10)
	loop.Flush()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("order = %v", order)
	}
	if v, _ := conts[2].GetResult(); v != 12 {
		t.Fatalf("continuation result = %d", v)
	}
}

func TestContinueWithOnSettledTaskIsDeferred(t *testing.T) {
	loop := newTestLoop(t)
	src := FromResult(loop, "done")
	ran := false
	block := make(chan struct{})
	loop.Post(func() { <-block })
	next := ContinueWith(src, func(s *Task[string]) (bool, error) {
		ran = true
		return true, nil
	})
	if ran {
		t.Fatalf("continuation ran synchronously")
	}
	close(block)
	if v, err := next.Wait(context.Background()); err != nil || !v {
		t.Fatalf("continuation result = %v, %v", v, err)
	}

	failing := ContinueWith(src, func(*Task[string]) (int, error) { panic("bad continuation") })
	if _, err := failing.Wait(context.Background()); err == nil || err.Error() != "bad continuation" {
		t.Fatalf("panicking continuation = %v", err)
	}
}

func TestDelay(t *testing.T) {
	loop := newTestLoop(t)
	start := time.Now()
	d := Delay(loop, 20*time.Millisecond, "state")
	loop.Flush()
	if !d.IsCompleted() {
		t.Fatalf("Flush returned before the delay fired")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("delay completed early")
	}
	if v, _ := d.GetResult(); v != "state" {
		t.Fatalf("delay result = %v", v)
	}
}

func TestWhenAll(t *testing.T) {
	loop := newTestLoop(t)
	empty := WhenAll[int](loop)
	if v, err := empty.GetResult(); err != nil || len(v) != 0 || v == nil {
		t.Fatalf("empty WhenAll = %v, %v", v, err)
	}

	a, b := NewPending[int](loop), NewPending[int](loop)
	all := WhenAll(loop, a, b)
	_ = b.SetResult(2)
	_ = a.SetResult(1)
	got, err := all.Wait(context.Background())
	if err != nil || len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("WhenAll = %v, %v", got, err)
	}

	e1, e2 := errors.New("one"), errors.New("two")
	c, f1, f2 := NewPending[int](loop), NewPending[int](loop), NewPending[int](loop)
	mixed := WhenAll(loop, c, f1, f2)
	_ = c.SetCanceled()
	_ = f1.SetError(e1)
	_ = f2.SetError(e2)
	_, err = mixed.Wait(context.Background())
	ex, ok := exceptions.As(err)
	if !ok || ex.Kind() != exceptions.KindAggregate {
		t.Fatalf("expected aggregate fault, got %v", err)
	}
	if inner := ex.InnerExceptions(); len(inner) != 2 {
		t.Fatalf("aggregate inner errors = %v", inner)
	}
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("aggregate lost errors")
	}

	x, y := NewPending[int](loop), NewPending[int](loop)
	canceled := WhenAll(loop, x, y)
	_ = x.SetResult(1)
	_ = y.SetCanceled()
	_, _ = canceled.Wait(context.Background())
	if !canceled.IsCanceled() {
		t.Fatalf("status = %s, want canceled", canceled.Status())
	}
}

func TestWhenAny(t *testing.T) {
	loop := newTestLoop(t)
	if _, err := WhenAny[int](loop); !exceptions.Is(err, exceptions.KindArgument) || err.Error() != "At least one task is required" {
		t.Fatalf("empty WhenAny = %v", err)
	}
	a, b := NewPending[int](loop), NewPending[int](loop)
	first, err := WhenAny(loop, a, b)
	if err != nil {
		t.Fatalf("WhenAny: %v", err)
	}
	_ = b.SetResult(7)
	_ = a.SetError(errors.New("late"))
	if v, err := first.Wait(context.Background()); err != nil || v != 7 {
		t.Fatalf("WhenAny = %v, %v", v, err)
	}
	loop.Flush()
	if first.IsFaulted() {
		t.Fatalf("later settlement leaked into WhenAny")
	}
}

func TestTaskRuntimeType(t *testing.T) {
	loop := newTestLoop(t)
	r := runtime.NewRegistry()
	typ := r.TypeOf(FromResult(loop, 1))
	if typ.GenericBase() != runtime.GenericTaskTypeName {
		t.Fatalf("generic base = %s", typ.GenericBase())
	}
	if !r.Is(FromResult(loop, "x"), r.ResolveType(runtime.TaskTypeName)) {
		t.Fatalf("Task$1 should extend Task")
	}
}
