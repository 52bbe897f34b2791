package runtime

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Method is the implementation of an instance member.
type Method func(c *Call) (Value, error)

// StaticFunc is a callable static member.
type StaticFunc func(args ...Value) (Value, error)

// MethodInfo binds a method implementation to the type that declared it and
// to the implementation it overrides, if any.
type MethodInfo struct {
	name  string
	owner *Type
	impl  Method
	base  *MethodInfo
}

func (m *MethodInfo) Name() string { return m.name }

func (m *MethodInfo) Owner() *Type { return m.owner }

// Base is the overridden parent implementation, nil when the method does not
// override anything.
func (m *MethodInfo) Base() *MethodInfo { return m.base }

// Invoke runs the method against self.
func (m *MethodInfo) Invoke(self *Object, args ...Value) (Value, error) {
	if m == nil || m.impl == nil {
		return nil, nil
	}
	return m.impl(&Call{Self: self, Args: args, method: m})
}

// Call is the receiver-bound invocation context handed to a Method.
type Call struct {
	Self *Object
	Args []Value

	method *MethodInfo
}

// Arg returns the i-th argument or nil when absent.
func (c *Call) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

func (c *Call) Method() *MethodInfo { return c.method }

// Base invokes the overridden parent implementation on the same receiver.
func (c *Call) Base(args ...Value) (Value, error) {
	if c.method == nil || c.method.base == nil {
		name := ""
		if c.method != nil {
			name = c.method.name
		}
		return nil, exceptions.NewInvalidOperation(fmt.Sprintf("'%s' has no base implementation", name), nil)
	}
	return c.method.base.Invoke(c.Self, args...)
}

// Type is a runtime type descriptor: a class, an interface or a generic
// instantiation of either.
type Type struct {
	registry    *Registry
	name        string
	parents     []*Type
	base        *Type
	isInterface bool

	defaults     map[string]Value
	methods      map[string]*MethodInfo
	initMembers  *MethodInfo
	init         *MethodInfo
	ctors        map[string]*MethodInfo
	ctorDetector *MethodInfo
	isFunc       func(Value) bool
	defaultValue func() Value
	goType       reflect.Type

	mu          sync.RWMutex
	inheritors  []*Type
	statics     map[string]Value
	nested      *Namespace
	genericBase string
	typeArgs    []*Type
}

func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

func (t *Type) Registry() *Registry { return t.registry }

// Base is the structural parent; nil only for System.Object.
func (t *Type) Base() *Type { return t.base }

// Parents returns the ordered extend list: structural base first, then
// interface tags.
func (t *Type) Parents() []*Type {
	return append([]*Type(nil), t.parents...)
}

// Interfaces returns the interface tags (every parent after the first).
func (t *Type) Interfaces() []*Type {
	if len(t.parents) < 2 {
		return nil
	}
	return append([]*Type(nil), t.parents[1:]...)
}

// Inheritors returns the descriptors that list t as a parent.
func (t *Type) Inheritors() []*Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Type(nil), t.inheritors...)
}

func (t *Type) IsInterface() bool { return t.isInterface }

// GoType is the host type bound to this descriptor, if any.
func (t *Type) GoType() reflect.Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.goType
}

func (t *Type) IsGeneric() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.genericBase != ""
}

// GenericBase is the generic definition name of an instantiation.
func (t *Type) GenericBase() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.genericBase
}

func (t *Type) TypeArguments() []*Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Type(nil), t.typeArgs...)
}

func (t *Type) setGeneric(base string, args []*Type) {
	t.mu.Lock()
	if t.genericBase == "" {
		t.genericBase = base
		t.typeArgs = append([]*Type(nil), args...)
	}
	t.mu.Unlock()
}

// Method looks up an instance method, inherited ones included.
func (t *Type) Method(name string) (*MethodInfo, bool) {
	m, ok := t.methods[name]
	return m, ok
}

// MethodNames lists the instance methods in sorted order.
func (t *Type) MethodNames() []string {
	names := make([]string, 0, len(t.methods))
	for name := range t.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemberDefault reads a member default along the structural chain.
func (t *Type) MemberDefault(name string) (Value, bool) {
	for cur := t; cur != nil; cur = cur.base {
		if v, ok := cur.defaults[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Nested returns the namespace holding types nested under this one.
func (t *Type) Nested() *Namespace {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.nested == nil {
		t.nested = &Namespace{name: t.name, path: t.name, values: make(map[string]Value)}
	}
	return t.nested
}

func (t *Type) Static(name string) (Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.statics[name]
	return v, ok
}

func (t *Type) SetStatic(name string, value Value) {
	t.mu.Lock()
	if t.statics == nil {
		t.statics = make(map[string]Value)
	}
	t.statics[name] = value
	t.mu.Unlock()
}

// InvokeStatic calls a static member holding a StaticFunc.
func (t *Type) InvokeStatic(name string, args ...Value) (Value, error) {
	v, _ := t.Static(name)
	switch fn := v.(type) {
	case StaticFunc:
		return fn(args...)
	case func(...Value) (Value, error):
		return fn(args...)
	}
	return nil, exceptions.NewNullReference(fmt.Sprintf("static member %s.%s is not callable", t.name, name), nil)
}

// IsAssignableFrom reports whether values of type other satisfy t: identity,
// the structural chain of other, or t's inheritor graph.
func (t *Type) IsAssignableFrom(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	for cur := other; cur != nil; cur = cur.base {
		if cur == t {
			return true
		}
	}
	return t.hasInheritor(other)
}

func (t *Type) hasInheritor(target *Type) bool {
	visited := map[*Type]bool{t: true}
	pending := t.Inheritors()
	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if cur == target {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		pending = append(pending, cur.Inheritors()...)
	}
	return false
}

func (t *Type) addInheritor(child *Type) {
	t.mu.Lock()
	t.inheritors = append(t.inheritors, child)
	t.mu.Unlock()
}

func (t *Type) removeInheritor(child *Type) {
	t.mu.Lock()
	t.inheritors = slices.DeleteFunc(t.inheritors, func(c *Type) bool { return c == child })
	t.mu.Unlock()
}
