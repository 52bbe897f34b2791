package runtime

import (
	"fmt"
	"reflect"
	"time"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Core type names.
const (
	ObjectTypeName           = "System.Object"
	TypeTypeName             = "System.Type"
	BooleanTypeName          = "System.Boolean"
	StringTypeName           = "System.String"
	DoubleTypeName           = "System.Double"
	Int32TypeName            = "System.Int32"
	Int64TypeName            = "System.Int64"
	DateTimeTypeName         = "System.DateTime"
	ArrayTypeName            = "System.Array"
	DelegateTypeName         = "System.Delegate"
	MulticastDelegateName    = "System.MulticastDelegate"
	IEnumerableTypeName      = "System.Collections.IEnumerable"
	IEnumeratorTypeName      = "System.Collections.IEnumerator"
	ICollectionTypeName      = "System.Collections.ICollection"
	IEqualityComparerName    = "System.Collections.IEqualityComparer"
	IComparableTypeName      = "System.IComparable"
	IDisposableTypeName      = "System.IDisposable"
	TaskTypeName             = "System.Threading.Tasks.Task"
	GenericIEnumerableName   = "System.Collections.Generic.IEnumerable$1"
	GenericIEnumeratorName   = "System.Collections.Generic.IEnumerator$1"
	GenericICollectionName   = "System.Collections.Generic.ICollection$1"
	GenericIEqualityComparer = "System.Collections.Generic.IEqualityComparer$1"
	GenericIDictionaryName   = "System.Collections.Generic.IDictionary$2"
	KeyValuePairTypeName     = "System.Collections.Generic.KeyValuePair$2"
	EqualityComparerTypeName = "System.Collections.Generic.EqualityComparer$1"
	DictionaryTypeName       = "System.Collections.Generic.Dictionary$2"
	DictionaryCollectionName = "System.Collections.Generic.DictionaryCollection$1"
	ListTypeName             = "System.Collections.Generic.List$1"
	GenericTaskTypeName      = "System.Threading.Tasks.Task$1"
)

type coreTypes struct {
	object     *Type
	typ        *Type
	boolean    *Type
	dateTime   *Type
	array      *Type
	delegate   *Type
	enumerable *Type
}

// Object returns the root descriptor.
func (r *Registry) Object() *Type { return r.core.object }

var primitiveTypes = []struct {
	name    string
	goTypes []reflect.Type
}{
	{BooleanTypeName, []reflect.Type{reflect.TypeFor[bool]()}},
	{StringTypeName, []reflect.Type{reflect.TypeFor[string]()}},
	{DoubleTypeName, []reflect.Type{reflect.TypeFor[float64]()}},
	{"System.Single", []reflect.Type{reflect.TypeFor[float32]()}},
	{"System.SByte", []reflect.Type{reflect.TypeFor[int8]()}},
	{"System.Int16", []reflect.Type{reflect.TypeFor[int16]()}},
	{Int32TypeName, []reflect.Type{reflect.TypeFor[int32]()}},
	{Int64TypeName, []reflect.Type{reflect.TypeFor[int64](), reflect.TypeFor[int]()}},
	{"System.Byte", []reflect.Type{reflect.TypeFor[uint8]()}},
	{"System.UInt16", []reflect.Type{reflect.TypeFor[uint16]()}},
	{"System.UInt32", []reflect.Type{reflect.TypeFor[uint32]()}},
	{"System.UInt64", []reflect.Type{reflect.TypeFor[uint64](), reflect.TypeFor[uint](), reflect.TypeFor[uintptr]()}},
	{DateTimeTypeName, []reflect.Type{reflect.TypeFor[time.Time]()}},
}

func (r *Registry) bootstrap() {
	r.core.object = r.mustDefine(ObjectTypeName, nil, ClassOptions{GoType: reflect.TypeFor[*Object]()})

	enumerable := r.mustDefine(IEnumerableTypeName, nil, ClassOptions{Interface: true})
	r.core.enumerable = enumerable
	r.mustDefine(IEnumeratorTypeName, nil, ClassOptions{Interface: true})
	collection := r.mustDefine(ICollectionTypeName, nil, ClassOptions{Interface: true, Extend: []*Type{enumerable}})
	r.mustDefine(IEqualityComparerName, nil, ClassOptions{Interface: true})
	r.mustDefine(IComparableTypeName, nil, ClassOptions{Interface: true})
	r.mustDefine(IDisposableTypeName, nil, ClassOptions{Interface: true})

	r.core.typ = r.mustDefine(TypeTypeName, nil, ClassOptions{GoType: reflect.TypeFor[*Type]()})
	for _, p := range primitiveTypes {
		t := r.mustDefine(p.name, nil, ClassOptions{GoType: p.goTypes[0]})
		for _, extra := range p.goTypes[1:] {
			r.BindGoType(extra, t)
		}
	}
	r.core.boolean = r.ResolveType(BooleanTypeName)
	r.core.dateTime = r.ResolveType(DateTimeTypeName)
	r.core.array = r.mustDefine(ArrayTypeName, nil, ClassOptions{Extend: []*Type{r.core.object, enumerable, collection}})
	r.core.delegate = r.mustDefine(DelegateTypeName, nil, ClassOptions{})
	r.mustDefine(MulticastDelegateName, nil, ClassOptions{Extend: []*Type{r.core.delegate}})
	r.mustDefine(TaskTypeName, nil, ClassOptions{})

	for _, kind := range exceptions.Kinds() {
		r.exceptionType(kind)
	}

	r.bootstrapGenerics()
}

func (r *Registry) bootstrapGenerics() {
	iface := func(parents func(r *Registry, args []*Type) []*Type) GenericBuilder {
		return func(r *Registry, name string, args []*Type) (*Type, error) {
			return r.Define(name, nil, ClassOptions{Interface: true, Extend: parents(r, args)})
		}
	}
	class := func(parents func(r *Registry, args []*Type) []*Type) GenericBuilder {
		return func(r *Registry, name string, args []*Type) (*Type, error) {
			return r.Define(name, nil, ClassOptions{Extend: parents(r, args)})
		}
	}
	byName := func(names ...string) func(r *Registry, args []*Type) []*Type {
		return func(r *Registry, _ []*Type) []*Type {
			out := make([]*Type, 0, len(names))
			for _, n := range names {
				out = append(out, r.ResolveType(n))
			}
			return out
		}
	}

	r.mustDefineGeneric(GenericIEnumerableName, 1, iface(byName(IEnumerableTypeName)))
	r.mustDefineGeneric(GenericIEnumeratorName, 1, iface(byName(IEnumeratorTypeName, IDisposableTypeName)))
	r.mustDefineGeneric(GenericICollectionName, 1, iface(func(r *Registry, args []*Type) []*Type {
		return []*Type{r.MustInstantiate(GenericIEnumerableName, args...)}
	}))
	r.mustDefineGeneric(GenericIEqualityComparer, 1, iface(byName(IEqualityComparerName)))
	r.mustDefineGeneric(KeyValuePairTypeName, 2, class(byName(ObjectTypeName)))
	r.mustDefineGeneric(GenericIDictionaryName, 2, iface(func(r *Registry, args []*Type) []*Type {
		pair := r.MustInstantiate(KeyValuePairTypeName, args...)
		return []*Type{r.MustInstantiate(GenericIEnumerableName, pair)}
	}))
	r.mustDefineGeneric(EqualityComparerTypeName, 1, class(func(r *Registry, args []*Type) []*Type {
		return []*Type{r.core.object, r.MustInstantiate(GenericIEqualityComparer, args...)}
	}))
	r.mustDefineGeneric(DictionaryTypeName, 2, class(func(r *Registry, args []*Type) []*Type {
		return []*Type{r.core.object, r.MustInstantiate(GenericIDictionaryName, args...)}
	}))
	r.mustDefineGeneric(DictionaryCollectionName, 1, class(func(r *Registry, args []*Type) []*Type {
		return []*Type{r.core.object, r.MustInstantiate(GenericICollectionName, args...)}
	}))
	r.mustDefineGeneric(ListTypeName, 1, class(func(r *Registry, args []*Type) []*Type {
		return []*Type{r.core.object, r.MustInstantiate(GenericICollectionName, args...), r.ResolveType(ICollectionTypeName)}
	}))
	r.mustDefineGeneric(GenericTaskTypeName, 1, class(byName(TaskTypeName)))
}

func (r *Registry) mustDefineGeneric(base string, arity int, build GenericBuilder) {
	if err := r.DefineGeneric(base, arity, build); err != nil {
		panic(fmt.Sprintf("runtime: define generic %s: %v", base, err))
	}
}
