package runtime

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Object is an instance of a class descriptor. Reads fall back to the
// type's member defaults when the instance has no own value.
type Object struct {
	typ *Type

	mu        sync.RWMutex
	fields    map[string]Value
	overrides map[string]*MethodInfo
	aspects   map[string][]any
}

func newObject(t *Type) *Object {
	return &Object{typ: t, fields: make(map[string]Value)}
}

// Type is the most-derived descriptor of the instance.
func (o *Object) Type() *Type { return o.typ }

// Get reads an own property or, failing that, an inherited member default.
func (o *Object) Get(name string) (Value, bool) {
	o.mu.RLock()
	v, ok := o.fields[name]
	o.mu.RUnlock()
	if ok {
		return v, true
	}
	return o.typ.MemberDefault(name)
}

// Value is Get without the presence flag.
func (o *Object) Value(name string) Value {
	v, _ := o.Get(name)
	return v
}

// Set assigns an own property, shadowing any member default.
func (o *Object) Set(name string, value Value) {
	o.mu.Lock()
	o.fields[name] = value
	o.mu.Unlock()
}

// Has reports whether the instance holds an own property.
func (o *Object) Has(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.fields[name]
	return ok
}

// Delete drops an own property so the member default shows through again.
func (o *Object) Delete(name string) {
	o.mu.Lock()
	delete(o.fields, name)
	o.mu.Unlock()
}

// Keys lists the own properties in sorted order.
func (o *Object) Keys() []string {
	o.mu.RLock()
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	o.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Method resolves the implementation that Invoke would run.
func (o *Object) Method(name string) (*MethodInfo, bool) {
	o.mu.RLock()
	m, ok := o.overrides[name]
	o.mu.RUnlock()
	if ok {
		return m, true
	}
	return o.typ.Method(name)
}

// HasMethod reports whether name resolves to a method.
func (o *Object) HasMethod(name string) bool {
	_, ok := o.Method(name)
	return ok
}

// Invoke calls a method on the instance.
func (o *Object) Invoke(name string, args ...Value) (Value, error) {
	m, ok := o.Method(name)
	if !ok {
		return nil, exceptions.NewNullReference(fmt.Sprintf("%s does not define method '%s'", o.typ.name, name), nil)
	}
	return m.Invoke(o, args...)
}

func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	if m, ok := o.Method("ToString"); ok {
		if v, err := m.Invoke(o); err == nil {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return o.typ.name
}
