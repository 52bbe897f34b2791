package runtime

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Members declares the instance members of a class: Method values become
// methods, everything else becomes a member default shared through the
// structural chain until an instance assigns its own value.
type Members map[string]Value

// ClassOptions configures Define.
type ClassOptions struct {
	// Extend lists the parents. The first entry is the structural base, the
	// rest are interface tags. Empty means System.Object.
	Extend []*Type
	// Statics are copied onto the descriptor, not onto instances.
	Statics map[string]Value
	// StaticInit runs once after the type is registered.
	StaticInit func(t *Type) error

	// InitMembers runs before any constructor. When nil, the base type's
	// member initializer runs with the same arguments.
	InitMembers Method
	// Init is the default constructor. When nil, the base constructor runs
	// with no arguments.
	Init Method
	// Ctors are named constructors selected by a leading string argument.
	Ctors map[string]Method
	// CtorDetector picks the construction path itself when no named
	// constructor matched.
	CtorDetector Method

	Interface bool
	// Scope registers the name relative to this namespace instead of the root.
	Scope *Namespace
	// IsFunc replaces the type test for this descriptor.
	IsFunc func(Value) bool
	// DefaultValue supplies the type's default value.
	DefaultValue func() Value
	// GoType binds a host type to the descriptor.
	GoType reflect.Type
}

// Define builds a type descriptor and registers it under name.
func (r *Registry) Define(name string, members Members, opts ClassOptions) (*Type, error) {
	return r.define(name, members, opts, true)
}

// DefineInterface is Define for an interface with no members.
func (r *Registry) DefineInterface(name string, extends ...*Type) (*Type, error) {
	return r.define(name, nil, ClassOptions{Extend: extends, Interface: true}, true)
}

func (r *Registry) define(name string, members Members, opts ClassOptions, register bool) (*Type, error) {
	if name == "" {
		return nil, exceptions.NewArgument("type name must not be empty", "name", nil)
	}
	for member := range members {
		if err := checkMemberName(member); err != nil {
			return nil, err
		}
	}
	for ctor := range opts.Ctors {
		if err := checkMemberName(ctor); err != nil {
			return nil, err
		}
	}
	parents := opts.Extend
	if len(parents) == 0 && r.core.object != nil {
		parents = []*Type{r.core.object}
	}
	for i, p := range parents {
		if p == nil {
			return nil, exceptions.NewArgumentNull(fmt.Sprintf("extend[%d]", i), "", nil)
		}
	}

	qualified := name
	scope := opts.Scope
	if scope == nil {
		scope = r.root
	} else {
		qualified = qualify(scope.Path(), name)
	}

	t := &Type{
		registry:     r,
		name:         qualified,
		parents:      append([]*Type(nil), parents...),
		isInterface:  opts.Interface,
		defaults:     make(map[string]Value),
		methods:      make(map[string]*MethodInfo),
		isFunc:       opts.IsFunc,
		defaultValue: opts.DefaultValue,
		goType:       opts.GoType,
	}
	if len(parents) > 0 {
		t.base = parents[0]
	}
	t.buildMembers(members)
	t.buildConstructors(opts)
	if len(opts.Statics) > 0 {
		t.statics = make(map[string]Value, len(opts.Statics))
		for k, v := range opts.Statics {
			t.statics[k] = v
		}
	}

	if register {
		if err := r.bind(scope, name, t); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	r.types[qualified] = t
	prevGo, hadGo := r.goTypes[opts.GoType]
	if opts.GoType != nil {
		r.goTypes[opts.GoType] = t
	}
	r.mu.Unlock()
	for _, p := range parents {
		p.addInheritor(t)
	}
	// withdraw undoes the registration above when static init fails.
	withdraw := func() {
		for _, p := range parents {
			p.removeInheritor(t)
		}
		r.mu.Lock()
		if r.types[qualified] == t {
			delete(r.types, qualified)
		}
		if opts.GoType != nil && r.goTypes[opts.GoType] == t {
			if hadGo {
				r.goTypes[opts.GoType] = prevGo
			} else {
				delete(r.goTypes, opts.GoType)
			}
		}
		r.mu.Unlock()
		if register {
			r.unbind(scope, name, t)
		}
	}
	if r.core.object != nil {
		baseName := ""
		if t.base != nil {
			baseName = t.base.name
		}
		r.logger.Debug("runtime: type defined", "type", qualified, "base", baseName, "interface", t.isInterface)
	}
	if opts.StaticInit != nil {
		if err := opts.StaticInit(t); err != nil {
			withdraw()
			r.logger.Debug("runtime: type withdrawn", "type", qualified, "error", err)
			return nil, err
		}
	}
	return t, nil
}

func checkMemberName(name string) error {
	if name == "" || strings.HasPrefix(name, "$") {
		return exceptions.NewArgument(fmt.Sprintf("member name '%s' is reserved", name), "members", nil)
	}
	return nil
}

func asMethod(v Value) (Method, bool) {
	switch fn := v.(type) {
	case Method:
		return fn, fn != nil
	case func(*Call) (Value, error):
		return fn, fn != nil
	}
	return nil, false
}

func (t *Type) buildMembers(members Members) {
	if t.base != nil {
		for name, m := range t.base.methods {
			t.methods[name] = m
		}
	}
	for name, v := range members {
		impl, ok := asMethod(v)
		if !ok {
			t.defaults[name] = v
			// a plain value shadows an inherited method of the same name
			delete(t.methods, name)
			continue
		}
		var overridden *MethodInfo
		if t.base != nil {
			overridden = t.base.methods[name]
		}
		t.methods[name] = &MethodInfo{name: name, owner: t, impl: impl, base: overridden}
	}
}

func (t *Type) buildConstructors(opts ClassOptions) {
	var baseInit, baseInitMembers *MethodInfo
	if t.base != nil {
		baseInit = t.base.init
		baseInitMembers = t.base.initMembers
	}
	switch {
	case opts.InitMembers != nil:
		t.initMembers = &MethodInfo{name: "initMembers", owner: t, impl: opts.InitMembers, base: baseInitMembers}
	default:
		t.initMembers = baseInitMembers
	}
	switch {
	case opts.Init != nil:
		t.init = &MethodInfo{name: "init", owner: t, impl: opts.Init, base: baseInit}
	case baseInit != nil:
		t.init = &MethodInfo{name: "init", owner: t, impl: func(c *Call) (Value, error) { return c.Base() }, base: baseInit}
	}
	if len(opts.Ctors) > 0 {
		t.ctors = make(map[string]*MethodInfo, len(opts.Ctors))
		for name, impl := range opts.Ctors {
			if impl == nil {
				continue
			}
			t.ctors[name] = &MethodInfo{name: name, owner: t, impl: impl, base: baseInit}
		}
	}
	if opts.CtorDetector != nil {
		t.ctorDetector = &MethodInfo{name: "ctorDetector", owner: t, impl: opts.CtorDetector, base: baseInit}
	}
}

// New constructs an instance: member initialization first, then constructor
// dispatch (named constructor, detector, default constructor, or nothing).
func (t *Type) New(args ...Value) (*Object, error) {
	if t.isInterface {
		return nil, exceptions.NewNotSupported(fmt.Sprintf("cannot create an instance of interface %s", t.name), nil)
	}
	obj := newObject(t)
	if t.initMembers != nil {
		if _, err := t.initMembers.Invoke(obj, args...); err != nil {
			return nil, err
		}
	}
	if len(t.ctors) > 0 && len(args) > 0 {
		if name, ok := args[0].(string); ok {
			if ctor, ok := t.ctors[name]; ok {
				if _, err := ctor.Invoke(obj, args[1:]...); err != nil {
					return nil, err
				}
				return obj, nil
			}
		}
	}
	var ctor *MethodInfo
	switch {
	case t.ctorDetector != nil:
		ctor = t.ctorDetector
	case t.init != nil:
		ctor = t.init
	}
	if ctor != nil {
		if _, err := ctor.Invoke(obj, args...); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// HasConstructor reports whether a named constructor exists.
func (t *Type) HasConstructor(name string) bool {
	_, ok := t.ctors[name]
	return ok
}
