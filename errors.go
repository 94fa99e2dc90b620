package duk

import (
	"errors"
	"fmt"

	"github.com/terraswarm/duk/internal/core"
)

// JsErrorKind classifies a script-level fault.
type JsErrorKind int

const (
	// KindGeneric is a thrown value that doesn't inherit from Error, like
	// when the script does `throw 3.14;`.
	KindGeneric JsErrorKind = iota

	// Engine-internal fault classes.
	KindUnimplemented
	KindUnsupported
	KindInternal
	KindAlloc
	KindAssertion
	KindAPI
	KindUncaught

	// Standard script error prototypes.
	KindError     // instance of Error
	KindEval      // instance of EvalError
	KindRange     // instance of RangeError
	KindReference // instance of ReferenceError
	KindSyntax    // instance of SyntaxError
	KindType      // instance of TypeError
	KindURI       // instance of URIError
)

var jsErrorKindNames = map[JsErrorKind]string{
	KindGeneric:       "Generic",
	KindUnimplemented: "Unimplemented",
	KindUnsupported:   "Unsupported",
	KindInternal:      "Internal",
	KindAlloc:         "Alloc",
	KindAssertion:     "Assertion",
	KindAPI:           "API",
	KindUncaught:      "Uncaught",
	KindError:         "Error",
	KindEval:          "Eval",
	KindRange:         "Range",
	KindReference:     "Reference",
	KindSyntax:        "Syntax",
	KindType:          "Type",
	KindURI:           "URI",
}

func (k JsErrorKind) String() string {
	if name, ok := jsErrorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("JsErrorKind(%d)", int(k))
}

// JsError is a fault that originates from executing script code.
type JsError struct {
	Kind    JsErrorKind
	Message string // descriptive, script-controlled message
}

func (e *JsError) Error() string { return e.Message }

// UnsupportedTypeError indicates a value at the boundary whose engine type
// has no equivalent Value mapping.
type UnsupportedTypeError struct {
	TypeName string // "pointer" or "lightfunc"
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("duk: no Value mapping for engine type %q", e.TypeName)
}

// ErrNonExistent indicates that the requested global function does not
// exist.
var ErrNonExistent = errors.New("duk: global function does not exist")

// kindFromCode maps an engine fault code to its JsErrorKind. The mapping
// is total over the set of codes the engine defines; a code outside that
// set means the engine violated its fault-code contract and is fatal,
// never a new recoverable kind.
func kindFromCode(code int) JsErrorKind {
	switch code {
	case core.ErrNone:
		return KindGeneric
	case core.ErrUnimplemented:
		return KindUnimplemented
	case core.ErrUnsupported:
		return KindUnsupported
	case core.ErrInternal:
		return KindInternal
	case core.ErrAlloc:
		return KindAlloc
	case core.ErrAssertion:
		return KindAssertion
	case core.ErrAPI:
		return KindAPI
	case core.ErrUncaught:
		return KindUncaught
	case core.ErrError:
		return KindError
	case core.ErrEval:
		return KindEval
	case core.ErrRange:
		return KindRange
	case core.ErrReference:
		return KindReference
	case core.ErrSyntax:
		return KindSyntax
	case core.ErrType:
		return KindType
	case core.ErrURI:
		return KindURI
	default:
		panic(fmt.Sprintf("duk: engine reported unmapped fault code %d", code))
	}
}

// errorFromStack reads the faulted slot at idx into a JsError. The message
// is rendered through the engine's defensive string conversion because the
// faulting value need not be a well-formed string.
func errorFromStack(s core.Stack, idx int) *JsError {
	return &JsError{
		Kind:    kindFromCode(s.GetErrorCode(idx)),
		Message: s.SafeToString(idx),
	}
}
