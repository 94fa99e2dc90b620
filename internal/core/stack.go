package core

// Type is the engine's type tag for one stack slot. The numbering matches
// Duktape's DUK_TYPE_* values; the set is closed and any tag outside it is
// a contract violation by the engine, not a value to be coerced.
type Type int

const (
	TypeNone Type = iota
	TypeUndefined
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeBuffer
	TypePointer
	TypeLightFunc
)

// Engine fault codes as reported for a faulted stack slot. Codes 1-7 are
// the standard script error prototypes; 50-56 are engine-internal fault
// classes; 0 means the thrown value does not inherit from Error.
const (
	ErrNone = 0
)

const (
	ErrError = 1 + iota
	ErrEval
	ErrRange
	ErrReference
	ErrSyntax
	ErrType
	ErrURI
)

const (
	ErrUnimplemented = 50 + iota
	ErrUnsupported
	ErrInternal
	ErrAlloc
	ErrAssertion
	ErrAPI
	ErrUncaught
)

// EnumOwnPropertiesOnly restricts property enumeration to own properties,
// skipping inherited ones. Matches DUK_ENUM_OWN_PROPERTIES_ONLY.
const EnumOwnPropertiesOnly uint = 1 << 4

// Stack is the capability surface the marshalling and call protocol consume
// from the engine: an index-addressed value stack with protected execution.
// Negative indices address slots from the top (-1 is the top slot).
//
// Implementations are not safe for concurrent use; a Stack is exclusively
// owned by one Context.
type Stack interface {
	// PevalString evaluates src under the engine's protected-call
	// mechanism. It leaves exactly one value on the stack: the result on
	// success (returns true) or the fault value on failure (returns false).
	PevalString(src string) bool

	// Pcall invokes the function at -(nargs+1) with the nargs topmost
	// slots as arguments. The function and arguments are replaced by a
	// single result slot on success (true) or fault slot on failure (false).
	Pcall(nargs int) bool

	// PushGlobalObject pushes the script global object.
	PushGlobalObject()

	// GetPropString looks up key on the object at objIdx and pushes the
	// property value, or pushes undefined and returns false if absent.
	GetPropString(objIdx int, key string) bool

	// GetType reports the type tag of the slot at idx.
	GetType(idx int) Type

	GetBoolean(idx int) bool
	GetNumber(idx int) float64
	GetString(idx int) string

	// GetBytes copies out the raw contents of the buffer at idx.
	GetBytes(idx int) []byte

	// IsArray reports whether the object at idx satisfies the engine's
	// array predicate.
	IsArray(idx int) bool

	// GetLength reports the length of the array-like object at idx.
	GetLength(idx int) int

	// GetPropIndex pushes element i of the object at objIdx. It returns
	// false (still pushing undefined) when the element is absent.
	GetPropIndex(objIdx int, i uint) bool

	// Enum pushes an enumerator over the properties of the object at
	// objIdx, filtered by flags.
	Enum(objIdx int, flags uint)

	// Next advances the enumerator at enumIdx. When a pair remains it
	// pushes the key (and, if withValue, the value above it) and returns
	// true; otherwise it pushes nothing and returns false.
	Next(enumIdx int, withValue bool) bool

	PushUndefined()
	PushNull()
	PushBoolean(v bool)
	PushNumber(v float64)
	PushString(v string)

	// PushArray pushes a fresh empty array and returns its stack index.
	PushArray() int

	// PushObject pushes a fresh empty object and returns its stack index.
	PushObject() int

	// PutPropIndex pops the top slot and binds it as element i of the
	// array at objIdx.
	PutPropIndex(objIdx int, i uint) bool

	// PutProp pops the top two slots (key at -2, value at -1) and binds
	// them as a property of the object at objIdx.
	PutProp(objIdx int)

	// PushBytes pushes a fixed-size engine buffer containing a copy of v.
	PushBytes(v []byte)

	// GetErrorCode reads the engine fault code of the faulted slot at idx.
	GetErrorCode(idx int) int

	// SafeToString renders the slot at idx as a string through the
	// engine's defensive conversion, which cannot itself fault.
	SafeToString(idx int) string

	// Pop removes the top slot; Pop2 removes the top two.
	Pop()
	Pop2()

	// Top reports the current stack depth.
	Top() int

	// Destroy releases the engine heap. The Stack must not be used after.
	Destroy()
}
