package runtime

import (
	"testing"
)

type logAspect struct{ calls []string }

func TestInterceptAndRestore(t *testing.T) {
	r := NewRegistry()
	animal, _, _ := defineAnimals(t, r)
	a, _ := animal.New("Ann")
	other, _ := animal.New("Bob")

	aspect := &logAspect{}
	a.AttachAspect("Logging", aspect)
	restore, err := a.Intercept("Speak", func(next *MethodInfo) Method {
		return func(c *Call) (Value, error) {
			aspect.calls = append(aspect.calls, "entry")
			res, err := next.Invoke(c.Self, c.Args...)
			aspect.calls = append(aspect.calls, "exit")
			return res, err
		}
	})
	if err != nil {
		t.Fatalf("Intercept: %v", err)
	}

	got, _ := a.Invoke("Speak")
	if got != "Ann says ..." {
		t.Fatalf("intercepted result = %v", got)
	}
	if len(aspect.calls) != 2 {
		t.Fatalf("interceptor calls = %v", aspect.calls)
	}
	if _, _ = other.Invoke("Speak"); len(aspect.calls) != 2 {
		t.Fatalf("interception leaked to another instance")
	}

	restore()
	restore()
	a.Invoke("Speak")
	if len(aspect.calls) != 2 {
		t.Fatalf("restore did not remove the interceptor")
	}

	if list := a.Aspects("Logging"); len(list) != 1 || list[0] != aspect {
		t.Fatalf("aspects = %v", list)
	}
	if !a.DetachAspect("Logging", aspect) || a.DetachAspect("Logging", aspect) {
		t.Fatalf("detach should succeed once")
	}
	if len(a.Aspects("Logging")) != 0 {
		t.Fatalf("aspect not detached")
	}
}

func TestInterceptUnknownMethod(t *testing.T) {
	r := NewRegistry()
	animal, _, _ := defineAnimals(t, r)
	a, _ := animal.New("Ann")
	if _, err := a.Intercept("Fly", func(next *MethodInfo) Method { return nil }); err == nil {
		t.Fatalf("expected failure for unknown method")
	}
}
