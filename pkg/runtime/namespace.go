package runtime

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Namespace is one segment of the dotted name tree. Entries are nested
// namespaces, type descriptors or plain values.
type Namespace struct {
	mu     sync.RWMutex
	name   string
	path   string
	values map[string]Value
	parent *Namespace
}

func newNamespace(name string, parent *Namespace) *Namespace {
	path := name
	if parent != nil && parent.path != "" {
		path = parent.path + "." + name
	}
	return &Namespace{
		name:   name,
		path:   path,
		values: make(map[string]Value),
		parent: parent,
	}
}

// Name is the last segment; the root namespace has an empty name.
func (n *Namespace) Name() string { return n.name }

// Path is the qualified dotted name.
func (n *Namespace) Path() string { return n.path }

// Parent exposes the enclosing namespace (nil for the root).
func (n *Namespace) Parent() *Namespace { return n.parent }

// Define inserts or replaces a binding in this namespace.
func (n *Namespace) Define(name string, value Value) {
	n.mu.Lock()
	n.values[name] = value
	n.mu.Unlock()
}

// Lookup reads a binding of this namespace only.
func (n *Namespace) Lookup(name string) (Value, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.values[name]
	return v, ok
}

// Get retrieves a binding, searching outward through enclosing namespaces.
func (n *Namespace) Get(name string) (Value, error) {
	for cur := n; cur != nil; cur = cur.parent {
		if v, ok := cur.Lookup(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("undefined name '%s' in namespace '%s'", name, n.path)
}

// Keys returns the bindings in sorted order.
func (n *Namespace) Keys() []string {
	n.mu.RLock()
	keys := make([]string, 0, len(n.values))
	for k := range n.values {
		keys = append(keys, k)
	}
	n.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the current bindings.
func (n *Namespace) Snapshot() map[string]Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]Value, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// Child returns the container bound at name: a nested namespace, or the
// nested namespace of a type descriptor.
func (n *Namespace) Child(name string) (*Namespace, bool) {
	v, ok := n.Lookup(name)
	if !ok {
		return nil, false
	}
	switch c := v.(type) {
	case *Namespace:
		return c, true
	case *Type:
		return c.Nested(), true
	}
	return nil, false
}

// Resolve walks a dotted name below this namespace. A missing segment yields
// nil.
func (n *Namespace) Resolve(dotted string) Value {
	if dotted == "" {
		return n
	}
	segments, leaf := splitTypeName(dotted)
	cur := n
	for _, seg := range segments {
		next, ok := cur.Child(seg)
		if !ok {
			return nil
		}
		cur = next
	}
	v, ok := cur.Lookup(leaf)
	if !ok {
		return nil
	}
	return v
}

func (n *Namespace) ensureChild(name string) (*Namespace, error) {
	n.mu.Lock()
	v, ok := n.values[name]
	if !ok {
		child := newNamespace(name, n)
		n.values[name] = child
		n.mu.Unlock()
		return child, nil
	}
	n.mu.Unlock()
	switch c := v.(type) {
	case *Namespace:
		return c, nil
	case *Type:
		return c.Nested(), nil
	}
	return nil, exceptions.NewArgument(
		fmt.Sprintf("'%s' is already bound to a %s value", qualify(n.path, name), KindOf(v)), "name", nil)
}

// bindUnique binds value at name unless the name is taken.
func (n *Namespace) bindUnique(name string, value Value) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.values[name]; exists {
		return exceptions.NewArgument(fmt.Sprintf("'%s' is already registered", qualify(n.path, name)), "name", nil)
	}
	n.values[name] = value
	return nil
}

func (n *Namespace) ensurePath(segments []string) (*Namespace, error) {
	cur := n
	for _, seg := range segments {
		if seg == "" {
			return nil, exceptions.NewArgument(fmt.Sprintf("empty segment in name below '%s'", n.path), "name", nil)
		}
		next, err := cur.ensureChild(seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// splitTypeName separates the namespace segments from the leaf name. Dots
// after the first '$' belong to generic argument names and do not split.
func splitTypeName(name string) ([]string, string) {
	head, tail := name, ""
	if i := strings.IndexByte(name, '$'); i >= 0 {
		head, tail = name[:i], name[i:]
	}
	parts := strings.Split(head, ".")
	return parts[:len(parts)-1], parts[len(parts)-1] + tail
}

func qualify(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
