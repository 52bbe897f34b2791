package collections

import (
	"testing"

	"github.com/zhouwensi/Bridge/pkg/runtime"
)

func TestDefaultComparerEmptyValues(t *testing.T) {
	c := DefaultComparer[any]()
	if !c.Equals(nil, nil) {
		t.Fatalf("two empty values are equal")
	}
	if c.Equals(nil, 0) || c.Equals(0, nil) {
		t.Fatalf("empty never equals present")
	}
	if h, err := c.HashCode(nil); h != 0 || err != nil {
		t.Fatalf("empty hash = %d, %v", h, err)
	}
	if !c.Equals(1, 1.0) {
		t.Fatalf("numbers compare by value")
	}
	h1, _ := c.HashCode("abc")
	h2, _ := DefaultComparer[string]().HashCode("abc")
	if h1 != h2 || h1 != runtime.StringHash("abc") {
		t.Fatalf("hash mismatch: %d %d", h1, h2)
	}
}

func TestKeyValuePairRuntimeType(t *testing.T) {
	r := runtime.NewRegistry()
	p := NewKeyValuePair("k", 1)
	typ := r.TypeOf(p)
	if typ.GenericBase() != runtime.KeyValuePairTypeName {
		t.Fatalf("generic base = %s", typ.GenericBase())
	}
	if len(typ.TypeArguments()) != 2 {
		t.Fatalf("type arguments = %v", typ.TypeArguments())
	}
	if p.String() != "[k, 1]" {
		t.Fatalf("String = %q", p.String())
	}
	if r.TypeOf(DefaultComparer[int]()).GenericBase() != runtime.EqualityComparerTypeName {
		t.Fatalf("default comparer descriptor wrong")
	}
}
