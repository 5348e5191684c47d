package funcreg

import (
	"fmt"
	"os"

	"github.com/lakequery/hogql/pkg/resolve"
	"go.starlark.net/starlark"
)

// LoadStarlarkFile executes the Starlark script at path and registers
// every signature it declares via the script-level `register(...)`
// builtin into r, following the teacher's pattern of a dedicated
// starlark.Thread per execution (internal/starlark/thread.go's
// ThreadPool.Get) with output suppressed (Print is a no-op, matching
// "No-op for template execution").
//
// A script registers a function like:
//
//	register(
//	    name = "matchesCohort",
//	    min_args = 1,
//	    max_args = 1,
//	    return_type = "boolean",
//	)
func LoadStarlarkFile(path string, r *Registry) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("funcreg: reading %s: %w", path, err)
	}
	return LoadStarlarkSource(path, src, r)
}

// LoadStarlarkSource executes src (named name for error messages) and
// registers every declared signature into r.
func LoadStarlarkSource(name string, src []byte, r *Registry) error {
	thread := &starlark.Thread{
		Name:  name,
		Print: func(_ *starlark.Thread, _ string) {},
	}

	registerBuiltin := starlark.NewBuiltin("register", func(
		_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		return starlark.None, registerFromKwargs(r, args, kwargs)
	})

	globals := starlark.StringDict{"register": registerBuiltin}
	_, err := starlark.ExecFile(thread, name, src, globals)
	if err != nil {
		return fmt.Errorf("funcreg: executing %s: %w", name, err)
	}
	return nil
}

func registerFromKwargs(r *Registry, args starlark.Tuple, kwargs []starlark.Tuple) error {
	var (
		fname           string
		minArgs         = 0
		maxArgs         = -1
		returnType      string
		paramTypes      []string
		requireConstArg []int
	)

	for _, kw := range kwargs {
		key, ok := starlark.AsString(kw[0])
		if !ok {
			continue
		}
		switch key {
		case "name":
			fname, _ = starlark.AsString(kw[1])
		case "min_args":
			if i, ok := asInt(kw[1]); ok {
				minArgs = i
			}
		case "max_args":
			if i, ok := asInt(kw[1]); ok {
				maxArgs = i
			}
		case "return_type":
			returnType, _ = starlark.AsString(kw[1])
		case "param_types":
			paramTypes = asStringList(kw[1])
		case "require_const_arg":
			requireConstArg = asIntList(kw[1])
		}
	}
	if len(args) > 0 {
		fname, _ = starlark.AsString(args[0])
	}
	if fname == "" {
		return fmt.Errorf("funcreg: register() requires a name")
	}

	ret, err := TypeByName(returnType)
	if err != nil {
		return err
	}

	sig := resolve.FuncSignature{
		MinArgs:         minArgs,
		MaxArgs:         maxArgs,
		ReturnType:      ret,
		RequireConstArg: requireConstArg,
	}
	for _, pt := range paramTypes {
		t, err := TypeByName(pt)
		if err != nil {
			return err
		}
		sig.ParamTypes = append(sig.ParamTypes, t)
	}

	r.Register(fname, sig)
	return nil
}

func asInt(v starlark.Value) (int, bool) {
	i, ok := v.(starlark.Int)
	if !ok {
		return 0, false
	}
	n, ok := i.Int64()
	return int(n), ok
}

func asStringList(v starlark.Value) []string {
	list, ok := v.(*starlark.List)
	if !ok {
		return nil
	}
	out := make([]string, 0, list.Len())
	iter := list.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		if s, ok := starlark.AsString(elem); ok {
			out = append(out, s)
		}
	}
	return out
}

func asIntList(v starlark.Value) []int {
	list, ok := v.(*starlark.List)
	if !ok {
		return nil
	}
	out := make([]int, 0, list.Len())
	iter := list.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		if n, ok := asInt(elem); ok {
			out = append(out, n)
		}
	}
	return out
}
