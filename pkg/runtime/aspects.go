package runtime

import (
	"fmt"
	"reflect"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// AttachAspect records an aspect on the instance under its aspect type name.
func (o *Object) AttachAspect(kind string, aspect any) {
	o.mu.Lock()
	if o.aspects == nil {
		o.aspects = make(map[string][]any)
	}
	o.aspects[kind] = append(o.aspects[kind], aspect)
	o.mu.Unlock()
}

// Aspects lists the aspects attached under kind, in attach order.
func (o *Object) Aspects(kind string) []any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]any(nil), o.aspects[kind]...)
}

// DetachAspect removes one attached aspect by identity.
func (o *Object) DetachAspect(kind string, aspect any) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	list := o.aspects[kind]
	for i, candidate := range list {
		if SameIdentity(candidate, aspect) {
			o.aspects[kind] = append(list[:i:i], list[i+1:]...)
			if len(o.aspects[kind]) == 0 {
				delete(o.aspects, kind)
			}
			return true
		}
	}
	return false
}

// Intercept replaces the instance's implementation of method with the result
// of wrap, which receives the implementation currently in effect. The
// returned function restores that implementation; restores are expected to
// run in reverse order of interception.
func (o *Object) Intercept(method string, wrap func(next *MethodInfo) Method) (func(), error) {
	if wrap == nil {
		return nil, exceptions.NewArgumentNull("wrap", "", nil)
	}
	current, ok := o.Method(method)
	if !ok {
		return nil, exceptions.NewNullReference(fmt.Sprintf("%s does not define method '%s'", o.typ.name, method), nil)
	}
	impl := wrap(current)
	if impl == nil {
		return nil, exceptions.NewArgument("interceptor returned no implementation", "wrap", nil)
	}
	replacement := &MethodInfo{name: method, owner: o.typ, impl: impl, base: current.base}

	o.mu.Lock()
	previous, hadPrevious := o.overrides[method]
	if o.overrides == nil {
		o.overrides = make(map[string]*MethodInfo)
	}
	o.overrides[method] = replacement
	o.mu.Unlock()

	restored := false
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if restored {
			return
		}
		restored = true
		if hadPrevious {
			o.overrides[method] = previous
			return
		}
		delete(o.overrides, method)
	}, nil
}

// SameIdentity compares reference kinds by address and other comparable
// values with ==.
func SameIdentity(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}
	if ra.Comparable() && rb.Comparable() {
		return a == b
	}
	return false
}
