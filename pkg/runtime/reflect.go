package runtime

import (
	"fmt"
	"reflect"
	"time"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Equaler is implemented by values that define their own equality.
type Equaler interface {
	Equals(other Value) bool
}

// Is reports whether v satisfies t. Nil never does. A type's own predicate
// decides when present; otherwise identity, the structural chain, bound Go
// interfaces, the array/IEnumerable rule and finally the inheritor graph are
// consulted.
func (r *Registry) Is(v Value, t *Type) bool {
	if t == nil || IsNil(v) {
		return false
	}
	if t.isFunc != nil {
		return t.isFunc(v)
	}
	if t == r.core.object {
		return true
	}
	actual := r.TypeOf(v)
	if actual == nil {
		return false
	}
	for cur := actual; cur != nil; cur = cur.base {
		if cur == t {
			return true
		}
	}
	if gt := t.GoType(); gt != nil && gt.Kind() == reflect.Interface && reflect.TypeOf(v).Implements(gt) {
		return true
	}
	if t == r.core.enumerable {
		switch reflect.ValueOf(v).Kind() {
		case reflect.Slice, reflect.Array:
			return true
		}
	}
	return t.hasInheritor(actual)
}

// As returns v when it satisfies t and nil otherwise.
func (r *Registry) As(v Value, t *Type) Value {
	if r.Is(v, t) {
		return v
	}
	return nil
}

// Cast returns v when it satisfies t, fails with an invalid-cast exception
// otherwise. Nil casts to any type.
func (r *Registry) Cast(v Value, t *Type) (Value, error) {
	if IsNil(v) {
		return nil, nil
	}
	if r.Is(v, t) {
		return v, nil
	}
	target := "null"
	if t != nil {
		target = t.name
	}
	return nil, exceptions.NewInvalidCast(
		fmt.Sprintf("Unable to cast type %s to type %s", r.TypeName(v), target), nil)
}

// DefaultValue is the value a variable of type t starts with.
func (r *Registry) DefaultValue(t *Type) Value {
	if t == nil {
		return nil
	}
	if t.defaultValue != nil {
		return t.defaultValue()
	}
	switch t {
	case r.core.boolean:
		return false
	case r.core.dateTime:
		return time.UnixMilli(0).UTC()
	}
	if gt := t.GoType(); gt != nil && isNumberKind(gt.Kind()) {
		return reflect.Zero(gt).Interface()
	}
	return nil
}

// Equals compares two values. Values with their own equality (Equaler, or an
// instance method Equals) decide for themselves; a failing Equals method
// counts as inequality. Dates compare by instant, numbers by value across Go
// numeric types, reference kinds by identity and the rest with ==.
func Equals(a, b Value) bool {
	if e, ok := a.(Equaler); ok && !IsNil(a) {
		return e.Equals(b)
	}
	if obj, ok := a.(*Object); ok && obj != nil {
		if m, ok := obj.Method("Equals"); ok {
			res, err := m.Invoke(obj, b)
			if err != nil {
				return false
			}
			eq, _ := res.(bool)
			return eq
		}
	}
	aNil, bNil := IsNil(a), IsNil(b)
	if aNil || bNil {
		return aNil && bNil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isNumberKind(ra.Kind()) && isNumberKind(rb.Kind()) {
		return numbersEqual(ra, rb)
	}
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return SameIdentity(a, b)
	}
	if ra.Comparable() && rb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func numbersEqual(a, b reflect.Value) bool {
	switch {
	case isSigned(a.Kind()) && isSigned(b.Kind()):
		return a.Int() == b.Int()
	case isUnsigned(a.Kind()) && isUnsigned(b.Kind()):
		return a.Uint() == b.Uint()
	}
	fa, _ := toFloat(a.Interface())
	fb, _ := toFloat(b.Interface())
	return fa == fb
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}
