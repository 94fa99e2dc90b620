// Package duk embeds the Duktape JavaScript/EcmaScript engine behind a
// small, host-safe API.
//
// The focus is "extension"/"plug-in" use cases: loading script code and
// calling functions to get their result. A Context owns one engine heap
// and exposes three operations — EvalString, EvalFile and CallGlobal.
// Every engine value crossing the boundary is translated into the closed
// Value model, and every script fault into a structured error (JsError,
// UnsupportedTypeError or ErrNonExistent) that callers dispatch on with
// errors.As and errors.Is.
//
// A Context is not safe for concurrent use; run one Context per concurrent
// unit of work (Pool helps with that). Exposing Go functions to scripts is
// not supported.
package duk
