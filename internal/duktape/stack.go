// Package duktape adapts a Duktape heap, via gopkg.in/olebedev/go-duktape.v3,
// to the core.Stack capability surface.
package duktape

import (
	"fmt"
	"unsafe"

	duklib "gopkg.in/olebedev/go-duktape.v3"

	"github.com/terraswarm/duk/internal/core"
)

// Stack implements core.Stack on a real Duktape heap.
type Stack struct {
	ctx *duklib.Context
}

var _ core.Stack = (*Stack)(nil)

// NewStack creates a fresh Duktape heap with no loaded script state.
func NewStack() *Stack {
	return &Stack{ctx: duklib.New()}
}

// PevalString evaluates src under duk_peval. The binding reports a fault
// via its returned error but leaves the fault value on the stack either
// way, which is what the caller's error conversion reads.
func (s *Stack) PevalString(src string) (ok bool) {
	defer s.trapFatal()
	return s.ctx.PevalString(src) == nil
}

// Pcall issues a protected call with nargs arguments already pushed.
func (s *Stack) Pcall(nargs int) (ok bool) {
	defer s.trapFatal()
	return s.ctx.Pcall(nargs) == 0
}

func (s *Stack) PushGlobalObject() { s.ctx.PushGlobalObject() }

func (s *Stack) GetPropString(objIdx int, key string) bool {
	return s.ctx.GetPropString(objIdx, key)
}

func (s *Stack) GetType(idx int) core.Type { return core.Type(s.ctx.GetType(idx)) }

func (s *Stack) GetBoolean(idx int) bool   { return s.ctx.GetBoolean(idx) }
func (s *Stack) GetNumber(idx int) float64 { return s.ctx.GetNumber(idx) }
func (s *Stack) GetString(idx int) string  { return s.ctx.GetString(idx) }

func (s *Stack) GetBytes(idx int) []byte {
	ptr, size := s.ctx.GetBuffer(idx)
	if ptr == nil || size == 0 {
		return []byte{}
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(ptr), size))
	return out
}

func (s *Stack) IsArray(idx int) bool  { return s.ctx.IsArray(idx) }
func (s *Stack) GetLength(idx int) int { return s.ctx.GetLength(idx) }

func (s *Stack) GetPropIndex(objIdx int, i uint) bool {
	return s.ctx.GetPropIndex(objIdx, i)
}

func (s *Stack) Enum(objIdx int, flags uint) { s.ctx.Enum(objIdx, flags) }

func (s *Stack) Next(enumIdx int, withValue bool) bool {
	return s.ctx.Next(enumIdx, withValue)
}

func (s *Stack) PushUndefined()       { s.ctx.PushUndefined() }
func (s *Stack) PushNull()            { s.ctx.PushNull() }
func (s *Stack) PushBoolean(v bool)   { s.ctx.PushBoolean(v) }
func (s *Stack) PushNumber(v float64) { s.ctx.PushNumber(v) }
func (s *Stack) PushString(v string)  { s.ctx.PushString(v) }
func (s *Stack) PushArray() int       { return s.ctx.PushArray() }
func (s *Stack) PushObject() int      { return s.ctx.PushObject() }

func (s *Stack) PutPropIndex(objIdx int, i uint) bool {
	return s.ctx.PutPropIndex(objIdx, i)
}

func (s *Stack) PutProp(objIdx int) { s.ctx.PutProp(objIdx) }

func (s *Stack) PushBytes(v []byte) {
	ptr := s.ctx.PushFixedBuffer(len(v))
	if len(v) > 0 {
		copy(unsafe.Slice((*byte)(ptr), len(v)), v)
	}
}

func (s *Stack) GetErrorCode(idx int) int { return int(s.ctx.GetErrorCode(idx)) }

func (s *Stack) SafeToString(idx int) string { return s.ctx.SafeToString(idx) }

func (s *Stack) Pop()     { s.ctx.Pop() }
func (s *Stack) Pop2()    { s.ctx.Pop2() }
func (s *Stack) Top() int { return s.ctx.GetTop() }

// Destroy releases the Duktape heap.
func (s *Stack) Destroy() { s.ctx.DestroyHeap() }

// trapFatal rethrows a fatal abort from the binding as a *core.FatalError
// panic carrying a best-effort heap dump. Protected execution traps every
// script-level throw, so a panic escaping duk_peval/duk_pcall can only be
// the engine's fatal handler (allocation failure, internal assertion).
func (s *Stack) trapFatal() {
	r := recover()
	if r == nil {
		return
	}
	if fatal, ok := r.(*core.FatalError); ok {
		panic(fatal)
	}
	panic(&core.FatalError{
		Message: fmt.Sprint(r),
		Dump:    s.tryDump(),
	})
}

// tryDump renders duk_push_context_dump output. The heap may be unusable
// after a fatal fault, so the attempt itself is guarded.
func (s *Stack) tryDump() (dump string) {
	defer func() { _ = recover() }()
	s.ctx.PushContextDump()
	dump = s.ctx.SafeToString(-1)
	s.ctx.Pop()
	return dump
}
