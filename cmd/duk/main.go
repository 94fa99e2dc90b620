// Command duk evaluates JavaScript files and expressions with an embedded
// Duktape engine and prints the result of the last evaluation.
//
// Usage:
//
//	duk [-e expr] [-call name -args '[...]'] [-yaml] [file ...]
//
// Files are evaluated in order, then -e, then -call. Arguments to -call
// are a JSON array. Results print as JSON by default, YAML with -yaml.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/terraswarm/duk"
)

func main() {
	expr := flag.String("e", "", "expression to evaluate")
	call := flag.String("call", "", "global function to call after evaluation")
	callArgs := flag.String("args", "[]", "JSON array of arguments for -call")
	asYAML := flag.Bool("yaml", false, "print the result as YAML instead of JSON")
	flag.Parse()

	if *expr == "" && *call == "" && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: duk [-e expr] [-call name -args '[...]'] [-yaml] [file ...]")
		os.Exit(2)
	}

	ctx := duk.New()
	defer ctx.Close()

	var last duk.Value
	run := func(v duk.Value, err error) bool {
		if err != nil {
			fail(err)
			return false
		}
		last = v
		return true
	}

	for _, path := range flag.Args() {
		if !run(ctx.EvalFile(path)) {
			os.Exit(1)
		}
	}
	if *expr != "" {
		if !run(ctx.EvalString(*expr)) {
			os.Exit(1)
		}
	}
	if *call != "" {
		args, err := parseArgs(*callArgs)
		if err != nil {
			fail(fmt.Errorf("parsing -args: %w", err))
			os.Exit(1)
		}
		if !run(ctx.CallGlobal(*call, args...)) {
			os.Exit(1)
		}
	}

	printResult(last, *asYAML)
}

// fail reports a failed evaluation, coloring script errors when stderr is
// a terminal.
func fail(err error) {
	msg := err.Error()
	var jsErr *duk.JsError
	if errors.As(err, &jsErr) {
		msg = fmt.Sprintf("%s error: %s", jsErr.Kind, jsErr.Message)
	}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31mduk: %s\x1b[0m\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "duk: %s\n", msg)
	}
}

func printResult(v duk.Value, asYAML bool) {
	native := toNative(v)
	if asYAML {
		out, err := yaml.Marshal(native)
		if err != nil {
			fail(fmt.Errorf("encoding result: %w", err))
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}
	out, err := json.MarshalIndent(native, "", "  ")
	if err != nil {
		fail(fmt.Errorf("encoding result: %w", err))
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// parseArgs decodes a JSON array into call arguments.
func parseArgs(src string) ([]duk.Value, error) {
	var raw []any
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		return nil, err
	}
	args := make([]duk.Value, len(raw))
	for i, v := range raw {
		args[i] = fromNative(v)
	}
	return args, nil
}

// fromNative maps a decoded JSON value onto the Value model.
func fromNative(v any) duk.Value {
	switch v := v.(type) {
	case nil:
		return duk.Null{}
	case bool:
		return duk.Boolean(v)
	case float64:
		return duk.Number(v)
	case string:
		return duk.String(v)
	case []any:
		arr := make(duk.Array, len(v))
		for i, el := range v {
			arr[i] = fromNative(el)
		}
		return arr
	case map[string]any:
		obj := make(duk.Object, len(v))
		for k, el := range v {
			obj[k] = fromNative(el)
		}
		return obj
	default:
		panic(fmt.Sprintf("duk: unexpected JSON value %T", v))
	}
}

// toNative maps a Value onto plain Go data for encoding. Both encoders
// emit map keys in sorted order, matching the Object key contract.
func toNative(v duk.Value) any {
	switch v := v.(type) {
	case nil, duk.Undefined, duk.Null:
		return nil
	case duk.Boolean:
		return bool(v)
	case duk.Number:
		return float64(v)
	case duk.String:
		return string(v)
	case duk.Array:
		arr := make([]any, len(v))
		for i, el := range v {
			arr[i] = toNative(el)
		}
		return arr
	case duk.Object:
		obj := make(map[string]any, len(v))
		for k, el := range v {
			obj[k] = toNative(el)
		}
		return obj
	case duk.Bytes:
		return []byte(v)
	default:
		panic(fmt.Sprintf("duk: unexpected Value %T", v))
	}
}
