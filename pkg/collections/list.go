package collections

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/emirpasic/gods/utils"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// Comparable values order themselves for SortDefault.
type Comparable interface {
	CompareTo(other any) int
}

// List is a resizable sequence. Every index is checked against [0, Count)
// (or [0, Count] where inserting at the end is allowed) and violations fail
// with argument-out-of-range carrying the offending value.
type List[T any] struct {
	items    []T
	comparer EqualityComparer[T]
}

// NewList copies items into a new list.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items), comparer: DefaultComparer[T]()}
}

// NewListFrom drains any enumerable value into a new list. Elements that are
// not T fail with invalid-cast.
func NewListFrom[T any](src runtime.Value) (*List[T], error) {
	if typed, ok := src.(runtime.Enumerable[T]); ok {
		return drainTyped(typed.GetEnumerator())
	}
	values, err := runtime.ToArray(src)
	if err != nil {
		return nil, err
	}
	l := NewList[T]()
	for _, v := range values {
		item, ok := v.(T)
		if !ok && v != nil {
			var zero T
			return nil, exceptions.NewInvalidCast(fmt.Sprintf("Unable to cast %T to %T", v, any(zero)), nil)
		}
		l.items = append(l.items, item)
	}
	return l, nil
}

func drainTyped[T any](en runtime.Enumerator[T]) (*List[T], error) {
	defer en.Dispose()
	l := NewList[T]()
	for {
		ok, err := en.MoveNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return l, nil
		}
		l.items = append(l.items, en.Current())
	}
}

// WithComparer replaces the equality used by IndexOf, Contains and Remove.
func (l *List[T]) WithComparer(c EqualityComparer[T]) *List[T] {
	if c == nil {
		c = DefaultComparer[T]()
	}
	l.comparer = c
	return l
}

func outOfRange(param string, value int) error {
	return exceptions.NewArgumentOutOfRange(param, "Index out of range", nil, value)
}

func (l *List[T]) checkIndex(index int) error {
	if index < 0 || index >= len(l.items) {
		return outOfRange("index", index)
	}
	return nil
}

// checkRange validates a window of count items starting at index.
func (l *List[T]) checkRange(index, count int) error {
	if index < 0 || index > len(l.items) {
		return outOfRange("index", index)
	}
	if count < 0 || count > len(l.items)-index {
		return outOfRange("count", count)
	}
	return nil
}

func (l *List[T]) Count() int { return len(l.items) }

func (l *List[T]) Get(index int) (T, error) {
	if err := l.checkIndex(index); err != nil {
		var zero T
		return zero, err
	}
	return l.items[index], nil
}

func (l *List[T]) Set(index int, value T) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items[index] = value
	return nil
}

func (l *List[T]) Add(value T) { l.items = append(l.items, value) }

func (l *List[T]) AddRange(values ...T) { l.items = append(l.items, values...) }

// Insert places value before index; index may equal Count.
func (l *List[T]) Insert(index int, value T) error {
	return l.InsertRange(index, value)
}

func (l *List[T]) InsertRange(index int, values ...T) error {
	if index < 0 || index > len(l.items) {
		return outOfRange("index", index)
	}
	l.items = slices.Insert(l.items, index, values...)
	return nil
}

func (l *List[T]) Clear() { l.items = nil }

func (l *List[T]) IndexOf(item T) int {
	for i, candidate := range l.items {
		if l.comparer.Equals(candidate, item) {
			return i
		}
	}
	return -1
}

// IndexOfFrom searches forward from start, which may equal Count.
func (l *List[T]) IndexOfFrom(item T, start int) (int, error) {
	if start < 0 || start > len(l.items) {
		return -1, outOfRange("startIndex", start)
	}
	for i := start; i < len(l.items); i++ {
		if l.comparer.Equals(l.items[i], item) {
			return i, nil
		}
	}
	return -1, nil
}

func (l *List[T]) LastIndexOf(item T) int {
	if len(l.items) == 0 {
		return -1
	}
	i, _ := l.LastIndexOfFrom(item, len(l.items)-1)
	return i
}

// LastIndexOfFrom searches backward from from.
func (l *List[T]) LastIndexOfFrom(item T, from int) (int, error) {
	if err := l.checkIndex(from); err != nil {
		return -1, err
	}
	for i := from; i >= 0; i-- {
		if l.comparer.Equals(l.items[i], item) {
			return i, nil
		}
	}
	return -1, nil
}

func (l *List[T]) Contains(item T) bool { return l.IndexOf(item) >= 0 }

// Remove deletes the first occurrence of item and reports whether there was
// one.
func (l *List[T]) Remove(item T) bool {
	i := l.IndexOf(item)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

func (l *List[T]) RemoveAt(index int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items = slices.Delete(l.items, index, index+1)
	return nil
}

func (l *List[T]) RemoveRange(index, count int) error {
	if err := l.checkRange(index, count); err != nil {
		return err
	}
	l.items = slices.Delete(l.items, index, index+count)
	return nil
}

// GetRange copies count items starting at index into a new list.
func (l *List[T]) GetRange(index, count int) (*List[T], error) {
	if err := l.checkRange(index, count); err != nil {
		return nil, err
	}
	return &List[T]{items: slices.Clone(l.items[index : index+count]), comparer: l.comparer}, nil
}

// Slice copies the half-open window [start, end).
func (l *List[T]) Slice(start, end int) ([]T, error) {
	if start < 0 || start > len(l.items) {
		return nil, outOfRange("start", start)
	}
	if end < start || end > len(l.items) {
		return nil, outOfRange("end", end)
	}
	return slices.Clone(l.items[start:end]), nil
}

// Splice removes count items at start, inserts values in their place and
// returns the removed items.
func (l *List[T]) Splice(start, count int, values ...T) ([]T, error) {
	if err := l.checkRange(start, count); err != nil {
		return nil, err
	}
	removed := slices.Clone(l.items[start : start+count])
	l.items = slices.Replace(l.items, start, start+count, values...)
	return removed, nil
}

// Unshift prepends values, keeping their order.
func (l *List[T]) Unshift(values ...T) {
	l.items = slices.Insert(l.items, 0, values...)
}

func (l *List[T]) Reverse() { slices.Reverse(l.items) }

// Sort orders the list with cmp; equal elements keep their relative order.
func (l *List[T]) Sort(cmp func(a, b T) int) error {
	if cmp == nil {
		return exceptions.NewArgumentNull("comparison", "", nil)
	}
	slices.SortStableFunc(l.items, cmp)
	return nil
}

// SortDefault orders elements by their natural order: Comparable values via
// CompareTo, basic Go values with the matching gods comparator. Every element
// must share one dynamic type.
func (l *List[T]) SortDefault() error {
	if len(l.items) < 2 {
		return nil
	}
	values := make([]interface{}, len(l.items))
	for i, item := range l.items {
		values[i] = item
	}
	cmp, err := naturalComparator(values)
	if err != nil {
		return err
	}
	utils.Sort(values, cmp)
	for i, v := range values {
		l.items[i] = v.(T)
	}
	return nil
}

func naturalComparator(values []interface{}) (utils.Comparator, error) {
	first := fmt.Sprintf("%T", values[0])
	for _, v := range values[1:] {
		if fmt.Sprintf("%T", v) != first {
			return nil, exceptions.NewInvalidOperation("Failed to compare two elements in the array.", nil)
		}
	}
	switch values[0].(type) {
	case Comparable:
		return func(a, b interface{}) int { return a.(Comparable).CompareTo(b) }, nil
	case string:
		return utils.StringComparator, nil
	case int:
		return utils.IntComparator, nil
	case int8:
		return utils.Int8Comparator, nil
	case int16:
		return utils.Int16Comparator, nil
	case int32:
		return utils.Int32Comparator, nil
	case int64:
		return utils.Int64Comparator, nil
	case uint:
		return utils.UIntComparator, nil
	case uint8:
		return utils.UInt8Comparator, nil
	case uint16:
		return utils.UInt16Comparator, nil
	case uint32:
		return utils.UInt32Comparator, nil
	case uint64:
		return utils.UInt64Comparator, nil
	case float32:
		return utils.Float32Comparator, nil
	case float64:
		return utils.Float64Comparator, nil
	case time.Time:
		return utils.TimeComparator, nil
	}
	return nil, exceptions.NewInvalidOperation("Failed to compare two elements in the array.", nil)
}

// Join renders every element and joins them with sep; empty elements render
// as the empty string.
func (l *List[T]) Join(sep string) string {
	parts := make([]string, len(l.items))
	for i, item := range l.items {
		if v := any(item); !runtime.IsNil(v) {
			parts[i] = utils.ToString(v)
		}
	}
	return strings.Join(parts, sep)
}

func (l *List[T]) ToArray() []T { return slices.Clone(l.items) }

func (l *List[T]) GetEnumerator() runtime.Enumerator[T] {
	return runtime.NewArrayEnumerator(l.items)
}

func (l *List[T]) ValueEnumerator() runtime.Enumerator[runtime.Value] {
	values := make([]runtime.Value, len(l.items))
	for i, item := range l.items {
		values[i] = item
	}
	return runtime.NewArrayEnumerator(values)
}

func (l *List[T]) RuntimeType(r *runtime.Registry) *runtime.Type {
	return r.MustInstantiate(runtime.ListTypeName, runtime.TypeFor[T](r))
}
