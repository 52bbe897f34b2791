package runtime

import (
	"errors"
	"testing"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

func drain(t *testing.T, en Enumerator[Value]) []Value {
	t.Helper()
	var out []Value
	for {
		ok, err := en.MoveNext()
		if err != nil {
			t.Fatalf("MoveNext: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, en.Current())
	}
}

func TestArrayEnumerator(t *testing.T) {
	en := NewArrayEnumerator([]Value{"a", "b"})
	if en.Current() != nil {
		t.Fatalf("Current before MoveNext should be the zero value")
	}
	got := drain(t, en)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
	if ok, _ := en.MoveNext(); ok {
		t.Fatalf("exhausted enumerator advanced again")
	}
	if err := en.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if again := drain(t, en); len(again) != 2 {
		t.Fatalf("reset did not rewind, got %v", again)
	}
}

func TestCustomEnumeratorDisposesOnFailure(t *testing.T) {
	disposed := 0
	boom := errors.New("boom")
	en := NewCustomEnumerator(
		func() (bool, error) { return false, boom },
		func() int { return 0 },
		nil,
		func() { disposed++ },
	)
	if _, err := en.MoveNext(); !errors.Is(err, boom) {
		t.Fatalf("expected step error, got %v", err)
	}
	en.Dispose()
	if disposed != 1 {
		t.Fatalf("dispose ran %d times, want 1", disposed)
	}
	if err := en.Reset(); !exceptions.Is(err, exceptions.KindNotSupported) {
		t.Fatalf("reset without implementation should be unsupported, got %v", err)
	}
}

type letters struct{ s string }

func (l letters) Len() int       { return len(l.s) }
func (l letters) At(i int) Value { return string(l.s[i]) }

func TestGetEnumeratorAdapters(t *testing.T) {
	cases := []struct {
		name  string
		value Value
		want  []Value
	}{
		{"values", []Value{1, 2}, []Value{1, 2}},
		{"typed slice", []int{3, 4}, []Value{3, 4}},
		{"array", [2]string{"x", "y"}, []Value{"x", "y"}},
		{"string", "hé", []Value{'h', 'é'}},
		{"indexer", letters{"ab"}, []Value{"a", "b"}},
	}
	for _, tc := range cases {
		en, err := GetEnumerator(tc.value)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		got := drain(t, en)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: element %d = %#v, want %#v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestGetEnumeratorFromInstanceMethod(t *testing.T) {
	r := NewRegistry()
	typ, _ := r.Define("Demo.Bag", Members{
		"GetEnumerator": Method(func(c *Call) (Value, error) {
			return Enumerator[Value](NewArrayEnumerator([]Value{"only"})), nil
		}),
	}, ClassOptions{})
	bag, _ := typ.New()
	items, err := ToArray(bag)
	if err != nil || len(items) != 1 || items[0] != "only" {
		t.Fatalf("ToArray = %v, %v", items, err)
	}
}

func TestGetEnumeratorRejectsScalars(t *testing.T) {
	for _, v := range []Value{nil, 42, true} {
		if _, err := GetEnumerator(v); !exceptions.Is(err, exceptions.KindInvalidOperation) {
			t.Fatalf("GetEnumerator(%#v) should fail, got %v", v, err)
		}
	}
}
