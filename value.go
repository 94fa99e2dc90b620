package duk

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/terraswarm/duk/internal/core"
)

// Value is a script value that has an equivalent Go mapping. The engine
// supports values beyond these (pointers, light functions), but they have
// no good Go semantics and surface as UnsupportedTypeError instead.
//
// The variant set is closed: Undefined, Null, Boolean, Number, String,
// Array, Object and Bytes. Every variant round-trips through the engine
// without loss, except that Object keys come back in ascending key order
// rather than insertion order.
type Value interface {
	isValue()
}

// Undefined is the `undefined` value.
type Undefined struct{}

// Null is the `null` value.
type Null struct{}

// Boolean is a boolean like `true` or `false`.
type Boolean bool

// Number is any number, both integral like `5` and fractional like `2.3`.
type Number float64

// String is any string like `'abc'`.
type String string

// Array is any array of values like `['a', 2, false]`.
type Array []Value

// Object is a JSON-like object like `{a: 'a', b: 2, c: false}`. Keys are
// unique; iteration order when pushing is ascending by key.
type Object map[string]Value

// Bytes is a raw engine byte buffer.
type Bytes []byte

func (Undefined) isValue() {}
func (Null) isValue()      {}
func (Boolean) isValue()   {}
func (Number) isValue()    {}
func (String) isValue()    {}
func (Array) isValue()     {}
func (Object) isValue()    {}
func (Bytes) isValue()     {}

// getValue converts the slot at idx into a Value. Traversing composite
// values pushes transient child slots, but they are always fully unwound:
// the slot at idx is the only net stack content getValue touches.
//
// The type-tag branch is total over the engine's documented tag set.
// Pointer and light-function slots are recoverable UnsupportedTypeError;
// any other unlisted tag means the engine violated its tag contract and
// is a fatal fault, never a coercion.
func getValue(s core.Stack, idx int) (Value, error) {
	switch t := s.GetType(idx); t {
	case core.TypeUndefined:
		return Undefined{}, nil
	case core.TypeNull:
		return Null{}, nil
	case core.TypeBoolean:
		return Boolean(s.GetBoolean(idx)), nil
	case core.TypeNumber:
		return Number(s.GetNumber(idx)), nil
	case core.TypeString:
		return String(getString(s, idx)), nil
	case core.TypeObject:
		if s.IsArray(idx) {
			return getArray(s, idx)
		}
		return getObject(s, idx)
	case core.TypeBuffer:
		return Bytes(s.GetBytes(idx)), nil
	case core.TypePointer:
		return nil, &UnsupportedTypeError{TypeName: "pointer"}
	case core.TypeLightFunc:
		return nil, &UnsupportedTypeError{TypeName: "lightfunc"}
	default:
		panic(fmt.Sprintf("duk: engine reported unmapped type tag %d", t))
	}
}

func getArray(s core.Stack, idx int) (Value, error) {
	n := s.GetLength(idx)
	arr := make(Array, 0, n)
	for i := 0; i < n; i++ {
		if !s.GetPropIndex(idx, uint(i)) {
			panic(fmt.Sprintf("duk: array element %d missing during read", i))
		}
		el, err := getValue(s, -1)
		s.Pop()
		if err != nil {
			return nil, err
		}
		arr = append(arr, el)
	}
	return arr, nil
}

func getObject(s core.Stack, idx int) (Value, error) {
	obj := make(Object)
	s.Enum(idx, core.EnumOwnPropertiesOnly)
	for s.Next(-1, true) {
		key := getString(s, -2)
		v, err := getValue(s, -1)
		s.Pop2()
		if err != nil {
			s.Pop() // the enumerator
			return nil, err
		}
		obj[key] = v
	}
	s.Pop()
	return obj, nil
}

// getString reads the string slot at idx. The engine guarantees valid
// UTF-8 for script strings; a violation is a contract fault, not an error.
func getString(s core.Stack, idx int) string {
	str := s.GetString(idx)
	if !utf8.ValidString(str) {
		panic(fmt.Sprintf("duk: engine returned invalid UTF-8 at stack index %d", idx))
	}
	return str
}

// pushValue writes v onto the top of the stack. Net stack effect is
// exactly +1 on every path. A nil Value pushes undefined.
func pushValue(s core.Stack, v Value) {
	switch v := v.(type) {
	case nil, Undefined:
		s.PushUndefined()
	case Null:
		s.PushNull()
	case Boolean:
		s.PushBoolean(bool(v))
	case Number:
		s.PushNumber(float64(v))
	case String:
		s.PushString(string(v))
	case Array:
		s.PushArray()
		for i, el := range v {
			pushValue(s, el)
			if !s.PutPropIndex(-2, uint(i)) {
				panic(fmt.Sprintf("duk: binding array element %d failed", i))
			}
		}
	case Object:
		s.PushObject()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.PushString(k)
			pushValue(s, v[k])
			s.PutProp(-3)
		}
	case Bytes:
		s.PushBytes(v)
	default:
		panic(fmt.Sprintf("duk: unknown Value variant %T", v))
	}
}
