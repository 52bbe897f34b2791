package runtime

import "testing"

func TestNamespaceGetSearchesOutward(t *testing.T) {
	r := NewRegistry()
	outer, _ := r.EnsureNamespace("App")
	inner, _ := r.EnsureNamespace("App.Core")
	outer.Define("Version", "1.0")

	v, err := inner.Get("Version")
	if err != nil || v != "1.0" {
		t.Fatalf("Get = %v, %v", v, err)
	}
	if _, ok := inner.Lookup("Version"); ok {
		t.Fatalf("Lookup must not search outward")
	}
	if _, err := inner.Get("Missing"); err == nil {
		t.Fatalf("expected error for undefined name")
	}
	if inner.Parent() != outer {
		t.Fatalf("parent link broken")
	}
}

func TestNamespaceKeysAndSnapshot(t *testing.T) {
	r := NewRegistry()
	ns, _ := r.EnsureNamespace("Keys")
	ns.Define("b", 2)
	ns.Define("a", 1)
	keys := ns.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys = %v", keys)
	}
	snap := ns.Snapshot()
	snap["c"] = 3
	if _, ok := ns.Lookup("c"); ok {
		t.Fatalf("snapshot must be a copy")
	}
}

func TestSplitTypeName(t *testing.T) {
	segments, leaf := splitTypeName("System.Collections.Generic.List$1$System.Int32")
	if len(segments) != 3 || segments[2] != "Generic" {
		t.Fatalf("segments = %v", segments)
	}
	if leaf != "List$1$System.Int32" {
		t.Fatalf("leaf = %q", leaf)
	}
	segments, leaf = splitTypeName("Plain")
	if len(segments) != 0 || leaf != "Plain" {
		t.Fatalf("split of a bare name = %v %q", segments, leaf)
	}
}

func TestKindOf(t *testing.T) {
	var nilPtr *Object
	cases := []struct {
		value Value
		want  Kind
	}{
		{nil, KindNull},
		{nilPtr, KindNull},
		{true, KindBool},
		{3, KindNumber},
		{"s", KindString},
		{[]int{}, KindArray},
		{map[string]int{}, KindMap},
		{func() {}, KindFunction},
		{struct{}{}, KindHost},
	}
	for _, tc := range cases {
		if got := KindOf(tc.value); got != tc.want {
			t.Fatalf("KindOf(%#v) = %s, want %s", tc.value, got, tc.want)
		}
	}
}
