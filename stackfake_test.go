package duk

import (
	"fmt"
	"sort"

	"github.com/terraswarm/duk/internal/core"
)

// The fake stack is a small in-memory stack machine implementing the same
// capability surface as the real engine adapter, so the marshalling and
// call protocol are testable without an engine heap. Protected execution
// is canned: tests register per-script outcomes and per-function behavior.

// fakeVal is one engine-side value.
type fakeVal struct {
	t     core.Type
	b     bool
	n     float64
	s     string // string payload, and the defensive rendering for faults
	buf   []byte
	arr   []*fakeVal // array elements when isArr
	props []fakeProp // object properties, insertion order preserved
	isArr bool
	fn    string // name of the canned behavior for callable objects
	code  int    // fault code when this value was thrown
	enum  *fakeEnum
}

type fakeProp struct {
	key string
	val *fakeVal
}

type fakeEnum struct {
	props []fakeProp
	pos   int
}

// fakeOutcome is the canned result of a protected evaluation or call: the
// value (or fault) it leaves on top of the stack.
type fakeOutcome struct {
	val  *fakeVal
	fail bool
}

type fakeStack struct {
	slots     []*fakeVal
	globals   []fakeProp
	scripts   map[string]fakeOutcome
	fns       map[string]func(args []*fakeVal) fakeOutcome
	fatal     *core.FatalError // when set, protected execution aborts
	destroyed bool
}

var _ core.Stack = (*fakeStack)(nil)

func newFakeStack() *fakeStack {
	return &fakeStack{
		scripts: make(map[string]fakeOutcome),
		fns:     make(map[string]func(args []*fakeVal) fakeOutcome),
	}
}

// script cans a successful evaluation of src.
func (f *fakeStack) script(src string, result Value) {
	f.scripts[src] = fakeOutcome{val: fakeFrom(result)}
}

// scriptErr cans a faulting evaluation of src.
func (f *fakeStack) scriptErr(src string, code int, rendered string) {
	f.scripts[src] = fakeOutcome{val: fakeFault(code, rendered), fail: true}
}

// defineFn registers a callable global with canned behavior.
func (f *fakeStack) defineFn(name string, fn func(args []*fakeVal) fakeOutcome) {
	f.fns[name] = fn
	f.globals = append(f.globals, fakeProp{
		key: name,
		val: &fakeVal{t: core.TypeObject, fn: name},
	})
}

func (f *fakeStack) push(v *fakeVal) { f.slots = append(f.slots, v) }

func (f *fakeStack) at(idx int) *fakeVal {
	if idx < 0 {
		idx = len(f.slots) + idx
	}
	if idx < 0 || idx >= len(f.slots) {
		panic(fmt.Sprintf("fake stack: index %d out of range (depth %d)", idx, len(f.slots)))
	}
	return f.slots[idx]
}

func (f *fakeStack) PevalString(src string) bool {
	if f.fatal != nil {
		panic(f.fatal)
	}
	outcome, ok := f.scripts[src]
	if !ok {
		panic(fmt.Sprintf("fake stack: no canned outcome for script %q", src))
	}
	f.push(outcome.val)
	return !outcome.fail
}

func (f *fakeStack) Pcall(nargs int) bool {
	if f.fatal != nil {
		panic(f.fatal)
	}
	fnSlot := f.at(-(nargs + 1))
	if fnSlot.fn == "" {
		panic("fake stack: pcall target is not callable")
	}
	args := make([]*fakeVal, nargs)
	copy(args, f.slots[len(f.slots)-nargs:])
	f.slots = f.slots[:len(f.slots)-nargs-1]
	outcome := f.fns[fnSlot.fn](args)
	f.push(outcome.val)
	return !outcome.fail
}

func (f *fakeStack) PushGlobalObject() {
	f.push(&fakeVal{t: core.TypeObject, props: f.globals})
}

func (f *fakeStack) GetPropString(objIdx int, key string) bool {
	obj := f.at(objIdx)
	for _, p := range obj.props {
		if p.key == key {
			f.push(p.val)
			return true
		}
	}
	f.push(&fakeVal{t: core.TypeUndefined})
	return false
}

func (f *fakeStack) GetType(idx int) core.Type { return f.at(idx).t }
func (f *fakeStack) GetBoolean(idx int) bool   { return f.at(idx).b }
func (f *fakeStack) GetNumber(idx int) float64 { return f.at(idx).n }
func (f *fakeStack) GetString(idx int) string  { return f.at(idx).s }

func (f *fakeStack) GetBytes(idx int) []byte {
	out := make([]byte, len(f.at(idx).buf))
	copy(out, f.at(idx).buf)
	return out
}

func (f *fakeStack) IsArray(idx int) bool  { return f.at(idx).isArr }
func (f *fakeStack) GetLength(idx int) int { return len(f.at(idx).arr) }

func (f *fakeStack) GetPropIndex(objIdx int, i uint) bool {
	obj := f.at(objIdx)
	if int(i) < len(obj.arr) && obj.arr[i] != nil {
		f.push(obj.arr[i])
		return true
	}
	f.push(&fakeVal{t: core.TypeUndefined})
	return false
}

func (f *fakeStack) Enum(objIdx int, flags uint) {
	if flags&core.EnumOwnPropertiesOnly == 0 {
		panic("fake stack: enumeration must request own properties only")
	}
	obj := f.at(objIdx)
	props := make([]fakeProp, len(obj.props))
	copy(props, obj.props)
	f.push(&fakeVal{t: core.TypeObject, enum: &fakeEnum{props: props}})
}

func (f *fakeStack) Next(enumIdx int, withValue bool) bool {
	e := f.at(enumIdx).enum
	if e == nil {
		panic("fake stack: next on a non-enumerator slot")
	}
	if e.pos >= len(e.props) {
		return false
	}
	p := e.props[e.pos]
	e.pos++
	f.push(&fakeVal{t: core.TypeString, s: p.key})
	if withValue {
		f.push(p.val)
	}
	return true
}

func (f *fakeStack) PushUndefined()       { f.push(&fakeVal{t: core.TypeUndefined}) }
func (f *fakeStack) PushNull()            { f.push(&fakeVal{t: core.TypeNull}) }
func (f *fakeStack) PushBoolean(v bool)   { f.push(&fakeVal{t: core.TypeBoolean, b: v}) }
func (f *fakeStack) PushNumber(v float64) { f.push(&fakeVal{t: core.TypeNumber, n: v}) }
func (f *fakeStack) PushString(v string)  { f.push(&fakeVal{t: core.TypeString, s: v}) }

func (f *fakeStack) PushArray() int {
	f.push(&fakeVal{t: core.TypeObject, isArr: true})
	return len(f.slots) - 1
}

func (f *fakeStack) PushObject() int {
	f.push(&fakeVal{t: core.TypeObject})
	return len(f.slots) - 1
}

func (f *fakeStack) PutPropIndex(objIdx int, i uint) bool {
	obj := f.at(objIdx)
	val := f.at(-1)
	f.Pop()
	for int(i) >= len(obj.arr) {
		obj.arr = append(obj.arr, nil)
	}
	obj.arr[i] = val
	return true
}

func (f *fakeStack) PutProp(objIdx int) {
	obj := f.at(objIdx)
	key := f.at(-2)
	val := f.at(-1)
	f.Pop2()
	for i, p := range obj.props {
		if p.key == key.s {
			obj.props[i].val = val
			return
		}
	}
	obj.props = append(obj.props, fakeProp{key: key.s, val: val})
}

func (f *fakeStack) PushBytes(v []byte) {
	buf := make([]byte, len(v))
	copy(buf, v)
	f.push(&fakeVal{t: core.TypeBuffer, buf: buf})
}

func (f *fakeStack) GetErrorCode(idx int) int { return f.at(idx).code }

func (f *fakeStack) SafeToString(idx int) string { return f.at(idx).s }

func (f *fakeStack) Pop() {
	if len(f.slots) == 0 {
		panic("fake stack: pop on empty stack")
	}
	f.slots = f.slots[:len(f.slots)-1]
}

func (f *fakeStack) Pop2() {
	f.Pop()
	f.Pop()
}

func (f *fakeStack) Top() int { return len(f.slots) }

func (f *fakeStack) Destroy() { f.destroyed = true }

// fakeFrom builds the engine-side representation of v. Object properties
// are laid down in ascending key order for determinism; insertion-order
// tests build their fakeVal by hand instead.
func fakeFrom(v Value) *fakeVal {
	switch v := v.(type) {
	case nil, Undefined:
		return &fakeVal{t: core.TypeUndefined}
	case Null:
		return &fakeVal{t: core.TypeNull}
	case Boolean:
		return &fakeVal{t: core.TypeBoolean, b: bool(v)}
	case Number:
		return &fakeVal{t: core.TypeNumber, n: float64(v)}
	case String:
		return &fakeVal{t: core.TypeString, s: string(v)}
	case Array:
		arr := make([]*fakeVal, len(v))
		for i, el := range v {
			arr[i] = fakeFrom(el)
		}
		return &fakeVal{t: core.TypeObject, isArr: true, arr: arr}
	case Object:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		props := make([]fakeProp, 0, len(v))
		for _, k := range keys {
			props = append(props, fakeProp{key: k, val: fakeFrom(v[k])})
		}
		return &fakeVal{t: core.TypeObject, props: props}
	case Bytes:
		buf := make([]byte, len(v))
		copy(buf, v)
		return &fakeVal{t: core.TypeBuffer, buf: buf}
	default:
		panic(fmt.Sprintf("fake stack: unknown Value variant %T", v))
	}
}

// fakeFault builds a thrown fault value with the given engine code and
// defensive rendering.
func fakeFault(code int, rendered string) *fakeVal {
	return &fakeVal{t: core.TypeObject, code: code, s: rendered}
}

// echoOutcome returns the called arguments back as a script array, for
// argument round-trip tests.
func echoOutcome(args []*fakeVal) fakeOutcome {
	return fakeOutcome{val: &fakeVal{t: core.TypeObject, isArr: true, arr: args}}
}
