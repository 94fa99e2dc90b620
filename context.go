package duk

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/terraswarm/duk/internal/core"
)

// SourceLoader resolves a script path to its source text for EvalFile.
type SourceLoader interface {
	Load(path string) (string, error)
}

// SourceLoaderFunc adapts a function to the SourceLoader interface.
type SourceLoaderFunc func(path string) (string, error)

// Load calls f.
func (f SourceLoaderFunc) Load(path string) (string, error) { return f(path) }

// FatalFunc observes a fatal engine fault just before the unit of work is
// terminated. It must not attempt to recover: the panic carrying the fault
// propagates after it returns, and the Context is disabled.
type FatalFunc func(err *core.FatalError)

type config struct {
	loader  SourceLoader
	onFatal FatalFunc
}

// Option configures a Context.
type Option func(*config)

// WithSourceLoader replaces the default file loader (os.ReadFile) used by
// EvalFile.
func WithSourceLoader(l SourceLoader) Option {
	return func(c *config) { c.loader = l }
}

// WithFatalHandler replaces the default fatal-fault observer, which logs
// the engine's diagnostic dump.
func WithFatalHandler(f FatalFunc) Option {
	return func(c *config) { c.onFatal = f }
}

// Context is a thread of script execution. It exclusively owns one engine
// heap, created by New and released by Close.
//
// A Context is not safe for concurrent use, and every operation runs to
// completion on the calling goroutine: a long-running script blocks the
// caller until the engine returns. Every operation leaves the engine's
// value stack at exactly the depth it found it, success or failure, so a
// single Context can be reused across many calls without growth.
type Context struct {
	id       string
	stack    core.Stack
	loader   SourceLoader
	onFatal  FatalFunc
	closed   bool
	poisoned bool
}

// New creates a Context with a fresh engine heap and no loaded script
// state.
func New(opts ...Option) *Context {
	return newContext(newBackend(), opts...)
}

// newContext wires an engine stack to a Context. Tests inject a fake
// stack here; New supplies the real backend.
func newContext(stack core.Stack, opts ...Option) *Context {
	cfg := config{
		loader: SourceLoaderFunc(func(path string) (string, error) {
			src, err := os.ReadFile(path)
			return string(src), err
		}),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Context{
		id:      uuid.NewString(),
		stack:   stack,
		loader:  cfg.loader,
		onFatal: cfg.onFatal,
	}
	if c.onFatal == nil {
		c.onFatal = func(err *core.FatalError) {
			log.Printf("duk: context %s: %v\n%s", c.id, err, err.Dump)
		}
	}
	return c
}

// ID is the unique identity of this Context, used in fatal-fault
// diagnostics.
func (c *Context) ID() string { return c.id }

// EvalString evaluates the script string within the current context.
//
// A script-level throw comes back as a *JsError:
//
//	v, err := ctx.EvalString("var a = {}; a.foo()")
//	var jsErr *duk.JsError
//	if errors.As(err, &jsErr) {
//		// jsErr.Kind == duk.KindType
//		// jsErr.Message == "TypeError: undefined not callable"
//	}
func (c *Context) EvalString(src string) (Value, error) {
	c.enter()
	defer c.trapFatal()
	return c.popValueOrError(c.stack.PevalString(src))
}

// EvalFile loads and evaluates the script at path within the current
// context. The path is resolved to source through the configured
// SourceLoader; a load failure is returned as the wrapped I/O error.
func (c *Context) EvalFile(path string) (Value, error) {
	src, err := c.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("duk: loading %s: %w", path, err)
	}
	return c.EvalString(src)
}

// CallGlobal calls the named global function with the supplied arguments.
// If the global does not exist, it returns ErrNonExistent without invoking
// any script code or pushing any argument.
func (c *Context) CallGlobal(name string, args ...Value) (Value, error) {
	c.enter()
	defer c.trapFatal()

	s := c.stack
	s.PushGlobalObject()
	if !s.GetPropString(-1, name) {
		s.Pop2() // the undefined lookup result and the global object
		return nil, ErrNonExistent
	}
	for _, arg := range args {
		pushValue(s, arg)
	}
	v, err := c.popValueOrError(s.Pcall(len(args)))
	s.Pop() // the global object
	return v, err
}

// Close releases the engine heap. It is idempotent; any other operation
// after Close panics.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.stack.Destroy()
}

// popValueOrError consumes the single result (ok) or fault (!ok) slot a
// protected evaluation or call left on top of the stack.
func (c *Context) popValueOrError(ok bool) (Value, error) {
	if ok {
		v, err := getValue(c.stack, -1)
		c.stack.Pop()
		return v, err
	}
	e := errorFromStack(c.stack, -1)
	c.stack.Pop()
	return nil, e
}

func (c *Context) enter() {
	if c.closed {
		panic("duk: use of closed Context")
	}
	if c.poisoned {
		panic("duk: use of Context disabled by a fatal engine fault")
	}
}

// trapFatal observes a propagating fatal engine fault: the Context is
// poisoned against further use and the handler sees the diagnostics, then
// the panic continues to terminate the unit of work. Fatal faults are
// never converted to returnable errors.
func (c *Context) trapFatal() {
	r := recover()
	if r == nil {
		return
	}
	if fatal, ok := r.(*core.FatalError); ok {
		c.poisoned = true
		c.onFatal(fatal)
	}
	panic(r)
}
