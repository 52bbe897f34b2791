package runtime

import (
	"fmt"
	"strings"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// GenericBuilder creates the descriptor of one generic instantiation. name is
// the composed instance name the descriptor should be defined under.
type GenericBuilder func(r *Registry, name string, args []*Type) (*Type, error)

type genericDefinition struct {
	name  string
	arity int
	build GenericBuilder
}

// GenericName composes the cache key and name of an instantiation: the base
// name followed by "$" and the name of each argument, in order.
func GenericName(base string, args ...*Type) string {
	var b strings.Builder
	b.WriteString(base)
	for _, arg := range args {
		b.WriteByte('$')
		if arg == nil {
			b.WriteString("null")
			continue
		}
		b.WriteString(arg.name)
	}
	return b.String()
}

// DefineGeneric registers a generic definition. The base name conventionally
// ends in "$" followed by the arity, as in "System.Collections.Generic.List$1".
func (r *Registry) DefineGeneric(base string, arity int, build GenericBuilder) error {
	if base == "" {
		return exceptions.NewArgument("generic type name must not be empty", "base", nil)
	}
	if arity <= 0 {
		return exceptions.NewArgumentOutOfRange("arity", "", nil, arity)
	}
	if build == nil {
		return exceptions.NewArgumentNull("build", "", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.generics[base]; exists {
		return exceptions.NewArgument(fmt.Sprintf("generic type '%s' is already defined", base), "base", nil)
	}
	r.generics[base] = &genericDefinition{name: base, arity: arity, build: build}
	return nil
}

// Instantiate returns the descriptor of base applied to args. The first
// request builds it; every later request with the same arguments returns the
// identical descriptor.
func (r *Registry) Instantiate(base string, args ...*Type) (*Type, error) {
	r.mu.RLock()
	def := r.generics[base]
	r.mu.RUnlock()
	if def == nil {
		return nil, exceptions.NewArgument(fmt.Sprintf("unknown generic type '%s'", base), "base", nil)
	}
	if len(args) != def.arity {
		return nil, exceptions.NewArgument(
			fmt.Sprintf("generic type '%s' expects %d type arguments, got %d", base, def.arity, len(args)), "args", nil)
	}
	for _, arg := range args {
		if arg == nil {
			return nil, exceptions.NewArgumentNull("args", "", nil)
		}
	}

	key := GenericName(base, args...)
	if t := r.cachedInstance(key); t != nil {
		return t, nil
	}
	t, err := def.build(r, key, args)
	if err != nil {
		if cached := r.cachedInstance(key); cached != nil {
			return cached, nil
		}
		return nil, err
	}
	t.setGeneric(base, args)

	r.mu.Lock()
	if existing := r.instances[key]; existing != nil {
		r.mu.Unlock()
		return existing, nil
	}
	r.instances[key] = t
	r.mu.Unlock()
	r.logger.Debug("runtime: generic instantiated", "type", key)
	return t, nil
}

// MustInstantiate is Instantiate for definitions known to exist.
func (r *Registry) MustInstantiate(base string, args ...*Type) *Type {
	t, err := r.Instantiate(base, args...)
	if err != nil {
		panic(fmt.Sprintf("runtime: instantiate %s: %v", base, err))
	}
	return t
}

func (r *Registry) cachedInstance(key string) *Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[key]
}
