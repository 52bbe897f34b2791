package exceptions

import (
	"fmt"
	"sort"
	"sync"
)

// Kind names one node of the exception tree. The string form is the
// qualified type name the runtime registry uses for the matching descriptor.
type Kind string

const (
	KindException          Kind = "System.Exception"
	KindError              Kind = "System.ErrorException"
	KindArgument           Kind = "System.ArgumentException"
	KindArgumentNull       Kind = "System.ArgumentNullException"
	KindArgumentOutOfRange Kind = "System.ArgumentOutOfRangeException"
	KindKeyNotFound        Kind = "System.Collections.Generic.KeyNotFoundException"
	KindDivideByZero       Kind = "System.DivideByZeroException"
	KindFormat             Kind = "System.FormatException"
	KindInvalidCast        Kind = "System.InvalidCastException"
	KindInvalidOperation   Kind = "System.InvalidOperationException"
	KindOperationCanceled  Kind = "System.OperationCanceledException"
	KindNotImplemented     Kind = "System.NotImplementedException"
	KindNotSupported       Kind = "System.NotSupportedException"
	KindNullReference      Kind = "System.NullReferenceException"
	KindAggregate          Kind = "System.AggregateException"
)

type kindInfo struct {
	parent         Kind
	defaultMessage string
}

var (
	kindsMu sync.RWMutex
	kinds   = map[Kind]kindInfo{
		KindException:          {defaultMessage: "Exception of type 'System.Exception' was thrown."},
		KindError:              {parent: KindException, defaultMessage: "Unknown error."},
		KindArgument:           {parent: KindException, defaultMessage: "Value does not fall within the expected range."},
		KindArgumentNull:       {parent: KindArgument, defaultMessage: "Value cannot be null."},
		KindArgumentOutOfRange: {parent: KindArgument, defaultMessage: "Value is out of range."},
		KindKeyNotFound:        {parent: KindException, defaultMessage: "Key not found."},
		KindDivideByZero:       {parent: KindException, defaultMessage: "Division by 0."},
		KindFormat:             {parent: KindException, defaultMessage: "Invalid format."},
		KindInvalidCast:        {parent: KindException, defaultMessage: "The cast is not valid."},
		KindInvalidOperation:   {parent: KindException, defaultMessage: "Operation is not valid due to the current state of the object."},
		KindOperationCanceled:  {parent: KindInvalidOperation, defaultMessage: "The operation was canceled."},
		KindNotImplemented:     {parent: KindException, defaultMessage: "The method or operation is not implemented."},
		KindNotSupported:       {parent: KindException, defaultMessage: "Specified method is not supported."},
		KindNullReference:      {parent: KindException, defaultMessage: "Object is null."},
		KindAggregate:          {parent: KindException, defaultMessage: "One or more errors occurred."},
	}
)

// DefineKind adds a kind below parent. Redefining an existing kind is an error.
func DefineKind(kind Kind, parent Kind, defaultMessage string) error {
	if kind == "" {
		return fmt.Errorf("exceptions: empty kind name")
	}
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, ok := kinds[kind]; ok {
		return fmt.Errorf("exceptions: kind %s already defined", kind)
	}
	if _, ok := kinds[parent]; !ok {
		return fmt.Errorf("exceptions: unknown parent kind %s", parent)
	}
	kinds[kind] = kindInfo{parent: parent, defaultMessage: defaultMessage}
	return nil
}

// Known reports whether the kind is part of the tree.
func (k Kind) Known() bool {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	_, ok := kinds[k]
	return ok
}

// Parent returns the parent kind; the root and unknown kinds return "".
func (k Kind) Parent() Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	return kinds[k].parent
}

// DefaultMessage returns the message used when none is supplied.
func (k Kind) DefaultMessage() string {
	kindsMu.RLock()
	info, ok := kinds[k]
	kindsMu.RUnlock()
	if !ok || info.defaultMessage == "" {
		return fmt.Sprintf("Exception of type '%s' was thrown.", string(k))
	}
	return info.defaultMessage
}

// InheritsFrom reports whether k equals ancestor or descends from it.
func (k Kind) InheritsFrom(ancestor Kind) bool {
	for cur, depth := k, 0; cur != "" && depth <= 64; cur, depth = cur.Parent(), depth+1 {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Kinds returns every kind currently in the tree, parents before children.
func Kinds() []Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]Kind, 0, len(kinds))
	seen := make(map[Kind]bool, len(kinds))
	var visit func(k Kind)
	visit = func(k Kind) {
		if seen[k] {
			return
		}
		seen[k] = true
		if parent := kinds[k].parent; parent != "" {
			visit(parent)
		}
		out = append(out, k)
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	for _, name := range names {
		visit(Kind(name))
	}
	return out
}
