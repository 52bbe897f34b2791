package runtime

import (
	"reflect"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// HasValue reports whether a nullable value is present.
func HasValue(v Value) bool { return !IsNil(v) }

// GetValue unwraps a nullable value, failing when it is absent.
func GetValue(v Value) (Value, error) {
	if IsNil(v) {
		return nil, exceptions.NewInvalidOperation("Nullable instance doesn't have a value.", nil)
	}
	return v, nil
}

// GetValueOrDefault unwraps a nullable value or returns def.
func GetValueOrDefault(v, def Value) Value {
	if IsNil(v) {
		return def
	}
	return v
}

// Deref is GetValue for a typed pointer.
func Deref[T any](p *T) (T, error) {
	if p == nil {
		var zero T
		return zero, exceptions.NewInvalidOperation("Nullable instance doesn't have a value.", nil)
	}
	return *p, nil
}

// DerefOr is GetValueOrDefault for a typed pointer.
func DerefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// IsEmpty reports whether v is nil, an empty string, or an empty slice, array
// or map.
func IsEmpty(v Value) bool {
	if IsNil(v) {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case Indexer:
		return val.Len() == 0
	}
	switch KindOf(v) {
	case KindArray, KindMap:
		return reflect.ValueOf(v).Len() == 0
	}
	return false
}
