package runtime

import (
	"reflect"
	"sync"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Enumerator is the cursor protocol shared by every sequence in the runtime.
// A fresh enumerator sits before the first element; Current is only
// meaningful after MoveNext returned true.
type Enumerator[T any] interface {
	MoveNext() (bool, error)
	Current() T
	Reset() error
	Dispose()
}

// Enumerable produces enumerators over its elements.
type Enumerable[T any] interface {
	GetEnumerator() Enumerator[T]
}

// ValueEnumerable is implemented by typed collections that can also be
// walked as untyped values.
type ValueEnumerable interface {
	ValueEnumerator() Enumerator[Value]
}

// Indexer is anything with a length and positional access.
type Indexer interface {
	Len() int
	At(i int) Value
}

// ArrayEnumerator walks a slice by index.
type ArrayEnumerator[T any] struct {
	items []T
	index int
}

func NewArrayEnumerator[T any](items []T) *ArrayEnumerator[T] {
	return &ArrayEnumerator[T]{items: items, index: -1}
}

func (e *ArrayEnumerator[T]) MoveNext() (bool, error) {
	if e.index < len(e.items) {
		e.index++
	}
	return e.index < len(e.items), nil
}

func (e *ArrayEnumerator[T]) Current() T {
	if e.index < 0 || e.index >= len(e.items) {
		var zero T
		return zero
	}
	return e.items[e.index]
}

func (e *ArrayEnumerator[T]) Reset() error {
	e.index = -1
	return nil
}

func (e *ArrayEnumerator[T]) Dispose() {}

// CustomEnumerator adapts step functions into an Enumerator. A failing step
// disposes the enumerator before the error is returned.
type CustomEnumerator[T any] struct {
	moveNext func() (bool, error)
	current  func() T
	reset    func() error
	dispose  func()

	disposeOnce sync.Once
}

// NewCustomEnumerator builds an enumerator; reset and dispose are optional.
func NewCustomEnumerator[T any](moveNext func() (bool, error), current func() T, reset func() error, dispose func()) *CustomEnumerator[T] {
	return &CustomEnumerator[T]{moveNext: moveNext, current: current, reset: reset, dispose: dispose}
}

func (e *CustomEnumerator[T]) MoveNext() (bool, error) {
	if e.moveNext == nil {
		return false, nil
	}
	ok, err := e.moveNext()
	if err != nil {
		e.Dispose()
		return false, err
	}
	return ok, nil
}

func (e *CustomEnumerator[T]) Current() T {
	if e.current == nil {
		var zero T
		return zero
	}
	return e.current()
}

func (e *CustomEnumerator[T]) Reset() error {
	if e.reset == nil {
		return exceptions.NewNotSupported("", nil)
	}
	return e.reset()
}

func (e *CustomEnumerator[T]) Dispose() {
	e.disposeOnce.Do(func() {
		if e.dispose != nil {
			e.dispose()
		}
	})
}

// GetEnumerator adapts v into an untyped enumerator: enumerables, typed
// collections, indexers, slices, arrays, strings (by rune) and instances
// with a GetEnumerator method are accepted.
func GetEnumerator(v Value) (Enumerator[Value], error) {
	switch val := v.(type) {
	case nil:
	case Enumerator[Value]:
		return val, nil
	case Enumerable[Value]:
		return val.GetEnumerator(), nil
	case ValueEnumerable:
		return val.ValueEnumerator(), nil
	case Indexer:
		return indexerEnumerator(val.Len, val.At), nil
	case []Value:
		return NewArrayEnumerator(val), nil
	case string:
		runes := []rune(val)
		return indexerEnumerator(func() int { return len(runes) }, func(i int) Value { return runes[i] }), nil
	case *Object:
		if val != nil && val.HasMethod("GetEnumerator") {
			res, err := val.Invoke("GetEnumerator")
			if err != nil {
				return nil, err
			}
			if en, ok := res.(Enumerator[Value]); ok {
				return en, nil
			}
		}
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return indexerEnumerator(rv.Len, func(i int) Value { return rv.Index(i).Interface() }), nil
		}
	}
	return nil, exceptions.NewInvalidOperation("Cannot create enumerator", nil)
}

func indexerEnumerator(length func() int, at func(int) Value) Enumerator[Value] {
	index := -1
	return NewCustomEnumerator(
		func() (bool, error) {
			if index < length() {
				index++
			}
			return index < length(), nil
		},
		func() Value {
			if index < 0 || index >= length() {
				return nil
			}
			return at(index)
		},
		func() error {
			index = -1
			return nil
		},
		nil,
	)
}

// ToArray drains v's enumerator into a slice.
func ToArray(v Value) ([]Value, error) {
	en, err := GetEnumerator(v)
	if err != nil {
		return nil, err
	}
	defer en.Dispose()
	var out []Value
	for {
		ok, err := en.MoveNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, en.Current())
	}
}
