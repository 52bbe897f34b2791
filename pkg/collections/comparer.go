package collections

import (
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// EqualityComparer decides key equality and hashing for the containers.
// Equal values must hash alike.
type EqualityComparer[T any] interface {
	Equals(x, y T) bool
	HashCode(x T) (int32, error)
}

// DefaultComparer delegates to runtime.Equals and runtime.HashCode. Two empty
// values are equal, an empty value never equals a present one, and empty
// values hash to 0.
func DefaultComparer[T any]() EqualityComparer[T] {
	return defaultComparer[T]{}
}

type defaultComparer[T any] struct{}

func (defaultComparer[T]) Equals(x, y T) bool {
	xv, yv := any(x), any(y)
	if runtime.IsNil(xv) {
		return runtime.IsNil(yv)
	}
	if runtime.IsNil(yv) {
		return false
	}
	return runtime.Equals(xv, yv)
}

func (defaultComparer[T]) HashCode(x T) (int32, error) {
	v := any(x)
	if runtime.IsNil(v) {
		return 0, nil
	}
	return runtime.HashCode(v)
}

func (defaultComparer[T]) RuntimeType(r *runtime.Registry) *runtime.Type {
	return r.MustInstantiate(runtime.EqualityComparerTypeName, runtime.TypeFor[T](r))
}

// ComparerFuncs adapts a pair of functions into an EqualityComparer. A nil
// Hash falls back to the default hash.
type ComparerFuncs[T any] struct {
	Equal func(x, y T) bool
	Hash  func(x T) (int32, error)
}

func (c ComparerFuncs[T]) Equals(x, y T) bool {
	if c.Equal == nil {
		return defaultComparer[T]{}.Equals(x, y)
	}
	return c.Equal(x, y)
}

func (c ComparerFuncs[T]) HashCode(x T) (int32, error) {
	if c.Hash == nil {
		return defaultComparer[T]{}.HashCode(x)
	}
	return c.Hash(x)
}
