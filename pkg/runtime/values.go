package runtime

import (
	"reflect"
	"time"
)

// Value is any host value handled by the runtime: Go primitives, time.Time,
// slices, maps, funcs, *Object instances, *Type descriptors and errors.
type Value = any

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDate
	KindArray
	KindMap
	KindFunction
	KindObject
	KindType
	KindError
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindFunction:
		return "function"
	case KindObject:
		return "object"
	case KindType:
		return "type"
	case KindError:
		return "error"
	case KindHost:
		return "host"
	default:
		return "unknown"
	}
}

// KindOf classifies a value. Typed nil pointers, maps, slices and funcs are
// reported as KindNull.
func KindOf(v Value) Kind {
	if IsNil(v) {
		return KindNull
	}
	switch v.(type) {
	case bool:
		return KindBool
	case string:
		return KindString
	case time.Time:
		return KindDate
	case *Object:
		return KindObject
	case *Type:
		return KindType
	case error:
		return KindError
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Map:
		return KindMap
	case reflect.Func:
		return KindFunction
	}
	if isNumberKind(rv.Kind()) {
		return KindNumber
	}
	return KindHost
}

// IsNil reports whether v is nil or a nil reference of a nilable kind.
func IsNil(v Value) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// toFloat converts any Go number to float64.
func toFloat(v Value) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
