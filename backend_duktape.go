package duk

import (
	"github.com/terraswarm/duk/internal/core"
	"github.com/terraswarm/duk/internal/duktape"
)

// newBackend creates the engine stack backing a new Context. Duktape is
// the only engine; the indirection keeps backend selection in one place.
func newBackend() core.Stack {
	return duktape.NewStack()
}
