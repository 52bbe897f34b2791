package runtime

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Registry owns the namespace tree, the type descriptors and the generic
// instantiation cache. It is created once at process start and passed to
// whatever needs to define or resolve types.
type Registry struct {
	mu        sync.RWMutex
	root      *Namespace
	types     map[string]*Type
	generics  map[string]*genericDefinition
	instances map[string]*Type
	goTypes   map[reflect.Type]*Type
	logger    *slog.Logger

	core coreTypes
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger routes registry diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds a registry preloaded with the core System types.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		root:      newNamespace("", nil),
		types:     make(map[string]*Type),
		generics:  make(map[string]*genericDefinition),
		instances: make(map[string]*Type),
		goTypes:   make(map[reflect.Type]*Type),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.bootstrap()
	return r
}

// Root is the top of the namespace tree.
func (r *Registry) Root() *Namespace { return r.root }

func (r *Registry) Logger() *slog.Logger { return r.logger }

// EnsureNamespace returns the namespace at dotted, creating missing
// segments. A segment bound to a type descends into the type's nested
// namespace.
func (r *Registry) EnsureNamespace(dotted string) (*Namespace, error) {
	if dotted == "" {
		return r.root, nil
	}
	return r.root.ensurePath(strings.Split(dotted, "."))
}

// RegisterType binds an existing descriptor at dotted under the root
// namespace, creating intermediate namespaces. The name must be free.
func (r *Registry) RegisterType(dotted string, t *Type) error {
	if t == nil {
		return exceptions.NewArgumentNull("type", "", nil)
	}
	return r.bind(r.root, dotted, t)
}

func (r *Registry) bind(scope *Namespace, dotted string, value Value) error {
	if dotted == "" {
		return exceptions.NewArgument("type name must not be empty", "name", nil)
	}
	segments, leaf := splitTypeName(dotted)
	ns, err := scope.ensurePath(segments)
	if err != nil {
		return err
	}
	return ns.bindUnique(leaf, value)
}

// unbind removes value from dotted below scope if it is still bound there.
func (r *Registry) unbind(scope *Namespace, dotted string, value Value) {
	segments, leaf := splitTypeName(dotted)
	ns := scope
	for _, seg := range segments {
		next, ok := ns.Child(seg)
		if !ok {
			return
		}
		ns = next
	}
	ns.mu.Lock()
	if ns.values[leaf] == value {
		delete(ns.values, leaf)
	}
	ns.mu.Unlock()
}

// Resolve walks a dotted name from the root. A missing segment yields nil.
func (r *Registry) Resolve(dotted string) Value {
	return r.root.Resolve(dotted)
}

// ResolveType returns the descriptor registered under its qualified name.
func (r *Registry) ResolveType(name string) *Type {
	r.mu.RLock()
	t := r.types[name]
	r.mu.RUnlock()
	if t != nil {
		return t
	}
	if t, ok := r.Resolve(name).(*Type); ok {
		return t
	}
	return nil
}

// Types lists every defined descriptor name in no particular order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

// BindGoType maps a host type onto a descriptor so TypeOf and TypeFor report
// it. Binding an interface type also makes Is accept any value implementing
// it.
func (r *Registry) BindGoType(rt reflect.Type, t *Type) {
	if rt == nil || t == nil {
		return
	}
	r.mu.Lock()
	r.goTypes[rt] = t
	r.mu.Unlock()
	t.mu.Lock()
	if t.goType == nil {
		t.goType = rt
	}
	t.mu.Unlock()
}

// Typed is implemented by host values that know their runtime descriptor.
type Typed interface {
	RuntimeType(r *Registry) *Type
}

// TypeOf reports the most-derived descriptor of v, nil for nil values.
func (r *Registry) TypeOf(v Value) *Type {
	if IsNil(v) {
		return nil
	}
	switch val := v.(type) {
	case *Object:
		return val.Type()
	case *Type:
		return r.core.typ
	case Typed:
		return val.RuntimeType(r)
	case *exceptions.Exception:
		return r.exceptionType(val.Kind())
	}
	return r.GoType(reflect.TypeOf(v))
}

// TypeName is the qualified name of v's descriptor, "" for nil.
func (r *Registry) TypeName(v Value) string {
	if t := r.TypeOf(v); t != nil {
		return t.name
	}
	return ""
}

// TypeFor maps the static type T onto a descriptor.
func TypeFor[T any](r *Registry) *Type {
	return r.GoType(reflect.TypeFor[T]())
}

// GoType maps a host type onto a descriptor. Unbound named types receive a
// detached descriptor derived from System.Object on first use.
func (r *Registry) GoType(rt reflect.Type) *Type {
	if rt == nil {
		return r.core.object
	}
	r.mu.RLock()
	t := r.goTypes[rt]
	r.mu.RUnlock()
	if t != nil {
		return t
	}
	switch rt.Kind() {
	case reflect.Interface:
		return r.core.object
	case reflect.Slice, reflect.Array:
		return r.core.array
	case reflect.Func:
		return r.core.delegate
	}
	name := "Go." + rt.String()
	created, err := r.define(name, nil, ClassOptions{GoType: rt}, false)
	if err != nil {
		r.logger.Warn("runtime: cannot describe host type", "type", rt.String(), "error", err)
		return r.core.object
	}
	r.mu.Lock()
	if existing := r.goTypes[rt]; existing != nil {
		r.mu.Unlock()
		return existing
	}
	r.goTypes[rt] = created
	r.mu.Unlock()
	return created
}

func (r *Registry) exceptionType(kind exceptions.Kind) *Type {
	if t := r.ResolveType(string(kind)); t != nil {
		return t
	}
	if !kind.Known() {
		return r.ResolveType(string(exceptions.KindException))
	}
	parent := r.core.object
	if p := kind.Parent(); p != "" {
		parent = r.exceptionType(p)
	}
	t, err := r.Define(string(kind), nil, ClassOptions{Extend: []*Type{parent}})
	if err != nil {
		// lost a race with another definition
		if existing := r.ResolveType(string(kind)); existing != nil {
			return existing
		}
		r.logger.Warn("runtime: cannot describe exception kind", "kind", string(kind), "error", err)
		return parent
	}
	return t
}

func (r *Registry) mustDefine(name string, members Members, opts ClassOptions) *Type {
	t, err := r.Define(name, members, opts)
	if err != nil {
		panic(fmt.Sprintf("runtime: define %s: %v", name, err))
	}
	return t
}
