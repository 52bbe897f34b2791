package collections

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

func expectItems[T comparable](t *testing.T, l *List[T], want ...T) {
	t.Helper()
	got := l.ToArray()
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
}

func expectOutOfRange(t *testing.T, err error, actual int) {
	t.Helper()
	ex, ok := exceptions.As(err)
	if !ok || ex.Kind() != exceptions.KindArgumentOutOfRange {
		t.Fatalf("expected out-of-range, got %v", err)
	}
	if v, ok := ex.ActualValue(); !ok || v != actual {
		t.Fatalf("actual value = %v, want %d", v, actual)
	}
}

func TestListIndexBounds(t *testing.T) {
	l := NewList(1, 2, 3)
	for _, idx := range []int{-1, 3} {
		_, err := l.Get(idx)
		expectOutOfRange(t, err, idx)
		expectOutOfRange(t, l.Set(idx, 0), idx)
		expectOutOfRange(t, l.RemoveAt(idx), idx)
	}
	expectOutOfRange(t, l.Insert(4, 0), 4)
	if err := l.Insert(3, 4); err != nil {
		t.Fatalf("insert at Count should append: %v", err)
	}
	expectItems(t, l, 1, 2, 3, 4)
}

func TestListBulkOperationsAreChecked(t *testing.T) {
	l := NewList("a", "b", "c")
	expectOutOfRange(t, l.RemoveRange(1, 5), 5)
	expectOutOfRange(t, l.RemoveRange(-1, 1), -1)
	_, err := l.GetRange(2, 2)
	expectOutOfRange(t, err, 2)
	_, err = l.Slice(2, 1)
	expectOutOfRange(t, err, 1)
	_, err = l.Splice(4, 0)
	expectOutOfRange(t, err, 4)
	expectOutOfRange(t, l.RemoveRange(1, math.MaxInt), math.MaxInt)
	_, err = l.Splice(1, math.MaxInt)
	expectOutOfRange(t, err, math.MaxInt)
	_, err = l.GetRange(3, math.MaxInt)
	expectOutOfRange(t, err, math.MaxInt)
	expectItems(t, l, "a", "b", "c")
}

func TestListRangeCopies(t *testing.T) {
	l := NewList(1, 2, 3, 4, 5)
	sub, err := l.GetRange(1, 3)
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	expectItems(t, sub, 2, 3, 4)
	_ = sub.Set(0, 99)
	if v, _ := l.Get(1); v != 2 {
		t.Fatalf("GetRange shares storage")
	}
	window, _ := l.Slice(3, 5)
	if len(window) != 2 || window[0] != 4 {
		t.Fatalf("Slice = %v", window)
	}
	removed, err := l.Splice(1, 2, 7, 8, 9)
	if err != nil || len(removed) != 2 || removed[0] != 2 || removed[1] != 3 {
		t.Fatalf("Splice removed %v, %v", removed, err)
	}
	expectItems(t, l, 1, 7, 8, 9, 4, 5)
	if err := l.RemoveRange(1, 3); err != nil {
		t.Fatalf("RemoveRange: %v", err)
	}
	expectItems(t, l, 1, 4, 5)
	l.Unshift(-1, 0)
	expectItems(t, l, -1, 0, 1, 4, 5)
	if err := l.InsertRange(2, 10, 11); err != nil {
		t.Fatalf("InsertRange: %v", err)
	}
	expectItems(t, l, -1, 0, 10, 11, 1, 4, 5)
}

func TestListSearch(t *testing.T) {
	l := NewList("x", "y", "x")
	if l.IndexOf("x") != 0 || l.LastIndexOf("x") != 2 || l.IndexOf("z") != -1 {
		t.Fatalf("IndexOf/LastIndexOf wrong")
	}
	if i, _ := l.IndexOfFrom("x", 1); i != 2 {
		t.Fatalf("IndexOfFrom = %d", i)
	}
	if _, err := l.IndexOfFrom("x", 4); err == nil {
		t.Fatalf("IndexOfFrom beyond Count should fail")
	}
	if i, _ := l.LastIndexOfFrom("x", 1); i != 0 {
		t.Fatalf("LastIndexOfFrom = %d", i)
	}
	if !l.Remove("x") || l.Remove("z") {
		t.Fatalf("Remove result wrong")
	}
	expectItems(t, l, "y", "x")
	if NewList[int]().LastIndexOf(1) != -1 {
		t.Fatalf("empty list LastIndexOf")
	}
}

func TestListCustomComparer(t *testing.T) {
	l := NewList("Apple", "pear").WithComparer(ComparerFuncs[string]{
		Equal: strings.EqualFold,
	})
	if !l.Contains("APPLE") {
		t.Fatalf("comparer not used")
	}
}

type version struct{ major, minor int }

func (v version) CompareTo(other any) int {
	o := other.(version)
	if v.major != o.major {
		return v.major - o.major
	}
	return v.minor - o.minor
}

func TestListSortDefault(t *testing.T) {
	ints := NewList(3, 1, 2)
	if err := ints.SortDefault(); err != nil {
		t.Fatalf("SortDefault: %v", err)
	}
	expectItems(t, ints, 1, 2, 3)

	words := NewList("pear", "apple")
	_ = words.SortDefault()
	expectItems(t, words, "apple", "pear")

	versions := NewList(version{1, 2}, version{0, 9}, version{1, 0})
	_ = versions.SortDefault()
	expectItems(t, versions, version{0, 9}, version{1, 0}, version{1, 2})

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := NewList(day.Add(time.Hour), day)
	_ = dates.SortDefault()
	if got, _ := dates.Get(0); !got.Equal(day) {
		t.Fatalf("dates not sorted")
	}

	mixed := NewList[any](1, "a")
	if err := mixed.SortDefault(); !exceptions.Is(err, exceptions.KindInvalidOperation) {
		t.Fatalf("mixed element types should not sort, got %v", err)
	}
}

func TestListSortAndReverse(t *testing.T) {
	l := NewList("bb", "a", "cc", "d")
	if err := l.Sort(func(a, b string) int { return len(a) - len(b) }); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	expectItems(t, l, "a", "d", "bb", "cc")
	l.Reverse()
	expectItems(t, l, "cc", "bb", "d", "a")
	if err := l.Sort(nil); !exceptions.Is(err, exceptions.KindArgumentNull) {
		t.Fatalf("nil comparison should fail, got %v", err)
	}
}

func TestListJoin(t *testing.T) {
	if got := NewList[any](1, nil, "x", 2.5).Join(","); got != "1,,x,2.5" {
		t.Fatalf("Join = %q", got)
	}
}

func TestNewListFrom(t *testing.T) {
	l, err := NewListFrom[int]([]int{4, 5})
	if err != nil {
		t.Fatalf("NewListFrom slice: %v", err)
	}
	expectItems(t, l, 4, 5)
	copied, err := NewListFrom[int](l)
	if err != nil {
		t.Fatalf("NewListFrom list: %v", err)
	}
	copied.Add(6)
	if l.Count() != 2 {
		t.Fatalf("copy shares storage")
	}
	if _, err := NewListFrom[int]([]string{"x"}); !exceptions.Is(err, exceptions.KindInvalidCast) {
		t.Fatalf("expected invalid cast, got %v", err)
	}
}

func TestListRuntimeTypeAndEnumeration(t *testing.T) {
	r := runtime.NewRegistry()
	l := NewList(1, 2)
	typ := r.TypeOf(l)
	if typ != r.TypeOf(NewList[int]()) {
		t.Fatalf("lists of the same element type should share a descriptor")
	}
	if !r.Is(l, r.ResolveType(runtime.ICollectionTypeName)) {
		t.Fatalf("list should satisfy ICollection")
	}
	values, err := runtime.ToArray(l)
	if err != nil || len(values) != 2 || values[1] != 2 {
		t.Fatalf("ToArray = %v, %v", values, err)
	}
	l.Clear()
	if l.Count() != 0 {
		t.Fatalf("Clear left %d items", l.Count())
	}
}
