package delegate

import (
	"fmt"
	"reflect"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// Func is the shape of every delegate member.
type Func func(args ...runtime.Value) (runtime.Value, error)

type member struct {
	fn Func
	// method and scope identify bound members; two members bound to the same
	// method on the same scope are interchangeable for Remove.
	method any
	scope  any
	bound  bool
}

type methodName string

// Delegate is an ordered, immutable invocation list. The nil *Delegate is the
// absent delegate.
type Delegate struct {
	members []*member
}

// New wraps fn as a single-member delegate. A nil fn yields nil.
//
// Each call creates a fresh member that only matches itself in Remove, so
// calling New twice on the same fn gives two delegates that do not cancel.
// Keep the returned delegate to unsubscribe it later, or use Bind.
func New(fn Func) *Delegate {
	if fn == nil {
		return nil
	}
	return &Delegate{members: []*member{{fn: fn}}}
}

// Bind wraps fn together with the scope it closes over. Members bound from
// the same function code and an identical scope match each other in Remove.
func Bind(scope any, fn Func) *Delegate {
	if fn == nil {
		return nil
	}
	return &Delegate{members: []*member{{
		fn:     fn,
		method: reflect.ValueOf(fn).Pointer(),
		scope:  scope,
		bound:  true,
	}}}
}

// BindMethod binds the named method of obj. The method is resolved at call
// time, so later overrides and interceptors are honoured.
func BindMethod(obj *runtime.Object, name string) (*Delegate, error) {
	if obj == nil {
		return nil, exceptions.NewArgumentNull("obj", "", nil)
	}
	if !obj.HasMethod(name) {
		return nil, exceptions.NewNullReference(fmt.Sprintf("%s does not define method '%s'", obj.Type().Name(), name), nil)
	}
	return &Delegate{members: []*member{{
		fn: func(args ...runtime.Value) (runtime.Value, error) {
			return obj.Invoke(name, args...)
		},
		method: methodName(name),
		scope:  obj,
		bound:  true,
	}}}, nil
}

func (d *Delegate) Len() int {
	if d == nil {
		return 0
	}
	return len(d.members)
}

// Invoke calls every member in order with args and returns the last result.
// The first failing member stops the chain.
func (d *Delegate) Invoke(args ...runtime.Value) (runtime.Value, error) {
	if d == nil {
		return nil, exceptions.NewNullReference("", nil)
	}
	var result runtime.Value
	for _, m := range d.members {
		var err error
		result, err = m.fn(args...)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// InvocationList splits d into single-member delegates.
func (d *Delegate) InvocationList() []*Delegate {
	if d == nil {
		return nil
	}
	out := make([]*Delegate, len(d.members))
	for i, m := range d.members {
		out[i] = &Delegate{members: []*member{m}}
	}
	return out
}

func (d *Delegate) RuntimeType(r *runtime.Registry) *runtime.Type {
	if d.Len() > 1 {
		return r.ResolveType(runtime.MulticastDelegateName)
	}
	return r.ResolveType(runtime.DelegateTypeName)
}

func build(members []*member) *Delegate {
	if len(members) == 0 {
		return nil
	}
	return &Delegate{members: members}
}

// Combine returns a delegate invoking a's members then b's. If either is
// absent the other is returned.
func Combine(a, b *Delegate) *Delegate {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	members := make([]*member, 0, len(a.members)+len(b.members))
	members = append(members, a.members...)
	members = append(members, b.members...)
	return build(members)
}

// Remove drops from a every member that also appears in b, either as the
// same member or as the same bound method and scope. Survivors keep their
// order; removing everything yields nil.
func Remove(a, b *Delegate) *Delegate {
	if a == nil || b == nil {
		return a
	}
	kept := make([]*member, 0, len(a.members))
	for i := len(a.members) - 1; i >= 0; i-- {
		candidate := a.members[i]
		excluded := false
		for _, other := range b.members {
			if matches(candidate, other) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, candidate)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return build(kept)
}

func matches(a, b *member) bool {
	if a == b {
		return true
	}
	return a.bound && b.bound && a.method == b.method && runtime.SameIdentity(a.scope, b.scope)
}
