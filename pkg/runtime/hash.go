package runtime

import (
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	goRuntime "runtime"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"
	"unsafe"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Hasher is implemented by values that compute their own hash code.
type Hasher interface {
	HashCode() int32
}

// HashCode computes a 32-bit hash consistent with Equals.
//
// Values with their own hash (Hasher, or an instance method GetHashCode) are
// asked for it. Booleans hash to 1/0, dates to their epoch milliseconds,
// numbers to the digits of their exponential-notation mantissa, strings with
// the 31-multiplier rolling hash over UTF-16 code units. Anything else gets a
// random tag that stays fixed for the value's identity.
func HashCode(v Value) (int32, error) {
	if IsNil(v) {
		return 0, exceptions.NewInvalidOperation("HashCode cannot be calculated for empty value", nil)
	}
	switch val := v.(type) {
	case Hasher:
		return val.HashCode(), nil
	case *Object:
		if m, ok := val.Method("GetHashCode"); ok {
			res, err := m.Invoke(val)
			if err != nil {
				return 0, err
			}
			f, ok := toFloat(res)
			if !ok {
				return 0, exceptions.NewInvalidCast(
					fmt.Sprintf("GetHashCode of %s returned %s, not a number", val.typ.name, KindOf(res)), nil)
			}
			return truncate32(int64(f)), nil
		}
		return identityHash(v), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case time.Time:
		return truncate32(val.UnixMilli()), nil
	case string:
		return StringHash(val), nil
	}
	if f, ok := toFloat(v); ok {
		return NumberHash(f), nil
	}
	return identityHash(v), nil
}

// StringHash is h = h*31 + unit over the UTF-16 encoding of s, wrapping at
// 32 bits.
func StringHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	return h
}

// NumberHash hashes the significant digits of f: the mantissa of its
// shortest exponential form with the point removed, read as an integer and
// truncated to 32 bits.
func NumberHash(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		bits := math.Float64bits(f)
		return int32(uint32(bits) ^ uint32(bits>>32))
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		s = s[:i]
	}
	digits := strings.Replace(s, ".", "", 1)
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return truncate32(n)
}

func truncate32(n int64) int32 {
	return int32(uint32(uint64(n)))
}

type identityKey struct {
	typ reflect.Type
	ptr uintptr
}

type identityTag struct {
	tag int32
	gen uint64
}

var identities = struct {
	sync.Mutex
	gen  uint64
	tags map[any]identityTag
}{tags: make(map[any]identityTag)}

// identityHash hands out a random tag per identity. Reference kinds are keyed
// by address and their tag is dropped once the referent is collected; func
// values are keyed by code address and never dropped. Comparable non-reference
// values are keyed by value, so each distinct value keeps one entry.
//
// Until a collected referent's cleanup has run, a new allocation at the same
// address sees the old tag.
func identityHash(v Value) int32 {
	key, ref := identityKeyOf(v)
	identities.Lock()
	defer identities.Unlock()
	if entry, ok := identities.tags[key]; ok {
		return entry.tag
	}
	identities.gen++
	entry := identityTag{tag: int32(rand.Uint32()), gen: identities.gen}
	identities.tags[key] = entry
	if ref != nil {
		watchIdentity(ref, identityRelease{key: key, gen: entry.gen})
	}
	return entry.tag
}

type identityRelease struct {
	key any
	gen uint64
}

// watchIdentity arranges for rel to be forgotten when the allocation holding
// ref is collected. Memory the collector does not own keeps its entry.
func watchIdentity(ref unsafe.Pointer, rel identityRelease) {
	defer func() { _ = recover() }()
	goRuntime.AddCleanup((*byte)(ref), forgetIdentity, rel)
}

func forgetIdentity(rel identityRelease) {
	identities.Lock()
	if entry, ok := identities.tags[rel.key]; ok && entry.gen == rel.gen {
		delete(identities.tags, rel.key)
	}
	identities.Unlock()
}

func identityKeyOf(v Value) (any, unsafe.Pointer) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan:
		key := identityKey{typ: rv.Type(), ptr: rv.Pointer()}
		if key.ptr == 0 {
			return key, nil
		}
		return key, rv.UnsafePointer()
	case reflect.Func, reflect.UnsafePointer:
		return identityKey{typ: rv.Type(), ptr: rv.Pointer()}, nil
	}
	if rv.Comparable() {
		return v, nil
	}
	return identityKey{typ: rv.Type()}, nil
}
