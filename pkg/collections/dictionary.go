package collections

import (
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// Dictionary maps keys to values by comparer hash. Each hash owns a bucket of
// entries kept in insertion order; buckets themselves are kept in the order
// their hash was first seen, which is the enumeration order.
type Dictionary[K, V any] struct {
	comparer EqualityComparer[K]
	buckets  *orderedmap.OrderedMap // int32 -> *bucket[K, V]
	count    int
}

type bucket[K, V any] struct {
	entries []*KeyValuePair[K, V]
}

// NewDictionary creates an empty dictionary. A nil comparer selects
// DefaultComparer.
func NewDictionary[K, V any](comparer EqualityComparer[K]) *Dictionary[K, V] {
	if comparer == nil {
		comparer = DefaultComparer[K]()
	}
	return &Dictionary[K, V]{comparer: comparer, buckets: orderedmap.New()}
}

// NewDictionaryFrom copies the entries of src in its enumeration order.
func NewDictionaryFrom[K, V any](src *Dictionary[K, V], comparer EqualityComparer[K]) (*Dictionary[K, V], error) {
	d := NewDictionary[K, V](comparer)
	if src == nil {
		return d, nil
	}
	for _, entry := range src.Entries() {
		if err := d.Add(entry.Key, entry.Value); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// NewDictionaryFromProperties turns each property of a bag into an entry,
// visiting property names in sorted order.
func NewDictionaryFromProperties[V any](props map[string]V, comparer EqualityComparer[string]) (*Dictionary[string, V], error) {
	d := NewDictionary[string, V](comparer)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := d.Add(name, props[name]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dictionary[K, V]) Comparer() EqualityComparer[K] { return d.comparer }

func (d *Dictionary[K, V]) Count() int { return d.count }

func (d *Dictionary[K, V]) Clear() {
	d.buckets = orderedmap.New()
	d.count = 0
}

func (d *Dictionary[K, V]) bucketFor(hash int32) *bucket[K, V] {
	raw, ok := d.buckets.Get(hash)
	if !ok {
		return nil
	}
	return raw.(*bucket[K, V])
}

func (d *Dictionary[K, V]) findEntry(key K) (*KeyValuePair[K, V], int32, error) {
	hash, err := d.comparer.HashCode(key)
	if err != nil {
		return nil, 0, err
	}
	b := d.bucketFor(hash)
	if b == nil {
		return nil, hash, nil
	}
	for _, entry := range b.entries {
		if d.comparer.Equals(entry.Key, key) {
			return entry, hash, nil
		}
	}
	return nil, hash, nil
}

// Get returns the value stored under key.
func (d *Dictionary[K, V]) Get(key K) (V, error) {
	entry, _, err := d.findEntry(key)
	if err != nil {
		var zero V
		return zero, err
	}
	if entry == nil {
		var zero V
		return zero, exceptions.NewKeyNotFound(fmt.Sprintf("Key %v does not exist.", key), nil)
	}
	return entry.Value, nil
}

// Put upserts key. With exclusiveAdd an existing key is an argument error and
// the dictionary is left unchanged.
func (d *Dictionary[K, V]) Put(key K, value V, exclusiveAdd bool) error {
	entry, hash, err := d.findEntry(key)
	if err != nil {
		return err
	}
	if entry != nil {
		if exclusiveAdd {
			return exceptions.NewArgument(fmt.Sprintf("Key %v already exists.", key), "key", nil)
		}
		entry.Value = value
		return nil
	}
	b := d.bucketFor(hash)
	if b == nil {
		b = &bucket[K, V]{}
		d.buckets.Set(hash, b)
	}
	b.entries = append(b.entries, &KeyValuePair[K, V]{Key: key, Value: value})
	d.count++
	return nil
}

func (d *Dictionary[K, V]) Set(key K, value V) error { return d.Put(key, value, false) }

func (d *Dictionary[K, V]) Add(key K, value V) error { return d.Put(key, value, true) }

// Remove deletes key and reports whether it was present. A bucket left empty
// is dropped.
func (d *Dictionary[K, V]) Remove(key K) (bool, error) {
	hash, err := d.comparer.HashCode(key)
	if err != nil {
		return false, err
	}
	b := d.bucketFor(hash)
	if b == nil {
		return false, nil
	}
	for i, entry := range b.entries {
		if !d.comparer.Equals(entry.Key, key) {
			continue
		}
		b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
		if len(b.entries) == 0 {
			d.buckets.Delete(hash)
		}
		d.count--
		return true, nil
	}
	return false, nil
}

func (d *Dictionary[K, V]) ContainsKey(key K) (bool, error) {
	entry, _, err := d.findEntry(key)
	return entry != nil, err
}

// ContainsValue scans every entry with the default comparer for V.
func (d *Dictionary[K, V]) ContainsValue(value V) bool {
	cmp := DefaultComparer[V]()
	found := false
	d.each(func(entry *KeyValuePair[K, V]) bool {
		found = cmp.Equals(entry.Value, value)
		return !found
	})
	return found
}

// TryGetValue reports presence; the value is V's zero value when absent.
func (d *Dictionary[K, V]) TryGetValue(key K) (V, bool, error) {
	entry, _, err := d.findEntry(key)
	if err != nil || entry == nil {
		var zero V
		return zero, false, err
	}
	return entry.Value, true, nil
}

func (d *Dictionary[K, V]) each(visit func(entry *KeyValuePair[K, V]) bool) {
	for pair := d.buckets.Oldest(); pair != nil; pair = pair.Next() {
		for _, entry := range pair.Value.(*bucket[K, V]).entries {
			if !visit(entry) {
				return
			}
		}
	}
}

// Entries copies the entries in enumeration order.
func (d *Dictionary[K, V]) Entries() []KeyValuePair[K, V] {
	out := make([]KeyValuePair[K, V], 0, d.count)
	d.each(func(entry *KeyValuePair[K, V]) bool {
		out = append(out, *entry)
		return true
	})
	return out
}

func (d *Dictionary[K, V]) GetEnumerator() runtime.Enumerator[KeyValuePair[K, V]] {
	return snapshotEnumerator(d.Entries)
}

func (d *Dictionary[K, V]) ValueEnumerator() runtime.Enumerator[runtime.Value] {
	return snapshotEnumerator(func() []runtime.Value {
		entries := d.Entries()
		out := make([]runtime.Value, len(entries))
		for i, entry := range entries {
			out[i] = entry
		}
		return out
	})
}

// Keys is a read-only live view over the keys.
func (d *Dictionary[K, V]) Keys() *DictionaryCollection[K] {
	return &DictionaryCollection[K]{
		count:    d.Count,
		contains: d.ContainsKey,
		items: func() []K {
			out := make([]K, 0, d.count)
			d.each(func(entry *KeyValuePair[K, V]) bool {
				out = append(out, entry.Key)
				return true
			})
			return out
		},
	}
}

// Values is a read-only live view over the values.
func (d *Dictionary[K, V]) Values() *DictionaryCollection[V] {
	return &DictionaryCollection[V]{
		count: d.Count,
		contains: func(v V) (bool, error) {
			return d.ContainsValue(v), nil
		},
		items: func() []V {
			out := make([]V, 0, d.count)
			d.each(func(entry *KeyValuePair[K, V]) bool {
				out = append(out, entry.Value)
				return true
			})
			return out
		},
	}
}

func (d *Dictionary[K, V]) RuntimeType(r *runtime.Registry) *runtime.Type {
	return r.MustInstantiate(runtime.DictionaryTypeName, runtime.TypeFor[K](r), runtime.TypeFor[V](r))
}

// DictionaryCollection is the key or value view of a Dictionary. Mutators
// fail with not-supported.
type DictionaryCollection[T any] struct {
	count    func() int
	contains func(T) (bool, error)
	items    func() []T
}

func (c *DictionaryCollection[T]) Count() int { return c.count() }

func (c *DictionaryCollection[T]) Contains(item T) (bool, error) { return c.contains(item) }

func (c *DictionaryCollection[T]) ToArray() []T { return c.items() }

func (c *DictionaryCollection[T]) GetEnumerator() runtime.Enumerator[T] {
	return snapshotEnumerator(c.items)
}

func (c *DictionaryCollection[T]) ValueEnumerator() runtime.Enumerator[runtime.Value] {
	return snapshotEnumerator(func() []runtime.Value {
		items := c.items()
		out := make([]runtime.Value, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out
	})
}

func (c *DictionaryCollection[T]) Add(T) error {
	return exceptions.NewNotSupported("", nil)
}

func (c *DictionaryCollection[T]) Clear() error {
	return exceptions.NewNotSupported("", nil)
}

func (c *DictionaryCollection[T]) Remove(T) (bool, error) {
	return false, exceptions.NewNotSupported("", nil)
}

func (c *DictionaryCollection[T]) RuntimeType(r *runtime.Registry) *runtime.Type {
	return r.MustInstantiate(runtime.DictionaryCollectionName, runtime.TypeFor[T](r))
}

// snapshotEnumerator walks a copy taken on the first MoveNext and retaken on
// Reset, so mutation during enumeration never shifts the cursor.
func snapshotEnumerator[T any](take func() []T) runtime.Enumerator[T] {
	var items []T
	index := -1
	started := false
	return runtime.NewCustomEnumerator(
		func() (bool, error) {
			if !started {
				items = take()
				started = true
			}
			if index < len(items) {
				index++
			}
			return index < len(items), nil
		},
		func() T {
			if index < 0 || index >= len(items) {
				var zero T
				return zero
			}
			return items[index]
		},
		func() error {
			started = false
			index = -1
			return nil
		},
		nil,
	)
}
