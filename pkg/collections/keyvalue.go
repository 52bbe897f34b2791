package collections

import (
	"fmt"

	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// KeyValuePair is a dictionary entry.
type KeyValuePair[K, V any] struct {
	Key   K
	Value V
}

func NewKeyValuePair[K, V any](key K, value V) KeyValuePair[K, V] {
	return KeyValuePair[K, V]{Key: key, Value: value}
}

func (p KeyValuePair[K, V]) String() string {
	return fmt.Sprintf("[%v, %v]", p.Key, p.Value)
}

func (p KeyValuePair[K, V]) RuntimeType(r *runtime.Registry) *runtime.Type {
	return r.MustInstantiate(runtime.KeyValuePairTypeName, runtime.TypeFor[K](r), runtime.TypeFor[V](r))
}
