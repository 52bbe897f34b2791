package exceptions

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDefaultMessages(t *testing.T) {
	cases := []struct {
		ex   *Exception
		want string
	}{
		{NewArgument("", "", nil), "Value does not fall within the expected range."},
		{NewKeyNotFound("", nil), "Key not found."},
		{NewDivideByZero("", nil), "Division by 0."},
		{NewFormat("", nil), "Invalid format."},
		{NewInvalidCast("", nil), "The cast is not valid."},
		{NewInvalidOperation("", nil), "Operation is not valid due to the current state of the object."},
		{NewNotImplemented("", nil), "The method or operation is not implemented."},
		{NewNotSupported("", nil), "Specified method is not supported."},
		{NewNullReference("", nil), "Object is null."},
		{NewAggregate(""), "One or more errors occurred."},
	}
	for _, tc := range cases {
		if got := tc.ex.Message(); got != tc.want {
			t.Fatalf("%s: message = %q, want %q", tc.ex.Kind(), got, tc.want)
		}
	}
}

func TestArgumentNullAppendsParameterName(t *testing.T) {
	ex := NewArgumentNull("key", "", nil)
	want := "Value cannot be null.\nParameter name: key"
	if ex.Error() != want {
		t.Fatalf("message = %q, want %q", ex.Error(), want)
	}
	if ex.ParamName() != "key" {
		t.Fatalf("param name = %q", ex.ParamName())
	}
	if !Is(ex, KindArgument) {
		t.Fatalf("argument-null should be an argument exception")
	}
}

func TestArgumentOutOfRangeCarriesActualValue(t *testing.T) {
	ex := NewArgumentOutOfRange("index", "", nil, 7)
	if !strings.HasPrefix(ex.Message(), "Value is out of range.") {
		t.Fatalf("unexpected message %q", ex.Message())
	}
	actual, ok := ex.ActualValue()
	if !ok || actual != 7 {
		t.Fatalf("actual value = %v (%v), want 7", actual, ok)
	}
}

func TestKindTree(t *testing.T) {
	if !KindOperationCanceled.InheritsFrom(KindInvalidOperation) {
		t.Fatalf("operation canceled should descend from invalid operation")
	}
	if !KindArgumentOutOfRange.InheritsFrom(KindException) {
		t.Fatalf("every kind descends from the root")
	}
	if KindFormat.InheritsFrom(KindArgument) {
		t.Fatalf("format is not an argument exception")
	}
	kinds := Kinds()
	pos := make(map[Kind]int, len(kinds))
	for i, k := range kinds {
		pos[k] = i
	}
	for _, k := range kinds {
		if parent := k.Parent(); parent != "" && pos[parent] > pos[k] {
			t.Fatalf("parent %s listed after %s", parent, k)
		}
	}
}

func TestDefineKind(t *testing.T) {
	custom := Kind("Demo.ValidationException")
	if err := DefineKind(custom, KindArgument, "Validation failed."); err != nil {
		t.Fatalf("DefineKind: %v", err)
	}
	if err := DefineKind(custom, KindArgument, ""); err == nil {
		t.Fatalf("expected redefinition to fail")
	}
	if err := DefineKind("Demo.Orphan", "Demo.Missing", ""); err == nil {
		t.Fatalf("expected unknown parent to fail")
	}
	ex := NewOfKind(custom, "", nil)
	if ex.Message() != "Validation failed." {
		t.Fatalf("message = %q", ex.Message())
	}
	if !Is(ex, KindArgument) {
		t.Fatalf("custom kind should inherit from its parent")
	}
}

func TestInnerChainAndString(t *testing.T) {
	root := errors.New("disk on fire")
	inner := Wrap(root)
	outer := NewInvalidOperation("save failed", inner)

	if outer.InnerException() != inner {
		t.Fatalf("inner exception not kept")
	}
	if !errors.Is(outer, root) {
		t.Fatalf("errors.Is should reach the native error")
	}
	if Is(outer, KindError) {
		t.Fatalf("Is should test only the outermost exception")
	}
	want := "System.InvalidOperationException: save failed ---> System.ErrorException: disk on fire"
	if outer.String() != want {
		t.Fatalf("String() = %q, want %q", outer.String(), want)
	}
}

func TestAsThroughFmtWrapping(t *testing.T) {
	ex := NewKeyNotFound("", nil)
	wrapped := fmt.Errorf("lookup: %w", ex)
	got, ok := As(wrapped)
	if !ok || got != ex {
		t.Fatalf("As did not find the exception")
	}
	if !Is(wrapped, KindKeyNotFound) {
		t.Fatalf("Is should see through fmt wrapping")
	}
}

func TestDataBag(t *testing.T) {
	ex := New("boom", nil)
	ex.SetData("b", 2)
	ex.SetData("a", 1)
	if v, ok := ex.Data("a"); !ok || v != 1 {
		t.Fatalf("data a = %v (%v)", v, ok)
	}
	if _, ok := ex.Data("missing"); ok {
		t.Fatalf("missing key reported present")
	}
	keys := ex.DataKeys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestStackTraceCaptured(t *testing.T) {
	ex := New("boom", nil)
	trace := ex.StackTrace()
	if !strings.Contains(trace, "TestStackTraceCaptured") {
		t.Fatalf("stack trace missing caller frame:\n%s", trace)
	}
}

func TestAggregateCollectsErrors(t *testing.T) {
	first := errors.New("first")
	second := NewFormat("", nil)
	agg := NewAggregate("", first, nil, second)

	inners := agg.InnerExceptions()
	if len(inners) != 2 {
		t.Fatalf("expected 2 inner errors, got %d", len(inners))
	}
	if inners[0] != first || inners[1] != second {
		t.Fatalf("inner order not preserved: %v", inners)
	}
	if !errors.Is(agg, first) {
		t.Fatalf("errors.Is should search aggregate members")
	}
	if agg.InnerException() != first {
		t.Fatalf("inner exception should be the first cause")
	}
}
