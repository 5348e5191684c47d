// Package funcreg implements spec.md §1's "pluggable user-defined
// function metadata lookup": a registry mapping a function name to its
// declared parameter/return shape and arity, consulted by pkg/resolve
// during Call resolution (resolve.FuncRegistry) to type a call's
// ReturnType and validate its arguments (SPEC_FULL §3's
// validate_function_args).
//
// Signatures can be registered directly in Go or loaded from a
// `functions.star` script, mirroring the teacher's embedding of
// go.starlark.net for extensibility without a Go rebuild
// (internal/starlark in the teacher; see builtins.go for the
// Predeclared-globals idiom this package's register() builtin follows).
package funcreg

import (
	"fmt"
	"sync"

	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/resolve"
)

// Registry is a concurrency-safe, in-memory resolve.FuncRegistry.
// Catalog reads and other host-provided lookups the resolver consults
// are documented (spec.md §5) as thread-safe across concurrent
// resolver instances operating on distinct queries; Registry honors
// that by guarding its map with a mutex.
type Registry struct {
	mu   sync.RWMutex
	sigs map[string]resolve.FuncSignature
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{sigs: make(map[string]resolve.FuncSignature)}
}

// Register adds or replaces name's signature.
func (r *Registry) Register(name string, sig resolve.FuncSignature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sigs[name] = sig
}

// Lookup implements resolve.FuncRegistry.
func (r *Registry) Lookup(name string) (resolve.FuncSignature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.sigs[name]
	return sig, ok
}

// TypeByName maps the small set of type-name strings a functions.star
// script (or a Go caller preferring names over literal qltype values)
// may use to describe a parameter or return type.
func TypeByName(name string) (qltype.Type, error) {
	switch name {
	case "", "unknown":
		return &qltype.Unknown{}, nil
	case "boolean":
		return &qltype.Boolean{}, nil
	case "integer":
		return &qltype.Integer{}, nil
	case "float":
		return &qltype.Float{}, nil
	case "string":
		return &qltype.String{}, nil
	case "date":
		return &qltype.Date{}, nil
	case "datetime":
		return &qltype.DateTime{}, nil
	case "uuid":
		return &qltype.UUID{}, nil
	case "json":
		return &qltype.JSON{}, nil
	default:
		return nil, fmt.Errorf("funcreg: unknown type name %q", name)
	}
}

// StandardSignatures returns the aggregate/scalar builtins HogQL
// queries commonly use, so a fresh Registry is useful without first
// loading a functions.star file. Arities and return types are taken
// from the function families HogQL shares with ClickHouse SQL.
func StandardSignatures() map[string]resolve.FuncSignature {
	unknown := func() qltype.Type { return &qltype.Unknown{} }
	boolean := func() qltype.Type { return &qltype.Boolean{} }
	integer := func() qltype.Type { return &qltype.Integer{} }
	float := func() qltype.Type { return &qltype.Float{} }
	str := func() qltype.Type { return &qltype.String{} }

	return map[string]resolve.FuncSignature{
		"count":       {MinArgs: 0, MaxArgs: 1, ReturnType: integer()},
		"countIf":     {MinArgs: 1, MaxArgs: 2, ReturnType: integer()},
		"sum":         {MinArgs: 1, MaxArgs: 1, ReturnType: float()},
		"avg":         {MinArgs: 1, MaxArgs: 1, ReturnType: float()},
		"min":         {MinArgs: 1, MaxArgs: 1, ReturnType: unknown()},
		"max":         {MinArgs: 1, MaxArgs: 1, ReturnType: unknown()},
		"uniq":        {MinArgs: 1, MaxArgs: -1, ReturnType: integer()},
		"uniqExact":   {MinArgs: 1, MaxArgs: -1, ReturnType: integer()},
		"if":          {MinArgs: 3, MaxArgs: 3, ReturnType: unknown()},
		"ifNull":      {MinArgs: 2, MaxArgs: 2, ReturnType: unknown()},
		"coalesce":    {MinArgs: 1, MaxArgs: -1, ReturnType: unknown()},
		"toString":    {MinArgs: 1, MaxArgs: 1, ReturnType: str()},
		"toInt":       {MinArgs: 1, MaxArgs: 1, ReturnType: integer()},
		"toFloat":     {MinArgs: 1, MaxArgs: 1, ReturnType: float()},
		"isNull":      {MinArgs: 1, MaxArgs: 1, ReturnType: boolean()},
		"isNotNull":   {MinArgs: 1, MaxArgs: 1, ReturnType: boolean()},
		"now":         {MinArgs: 0, MaxArgs: 0, ReturnType: &qltype.DateTime{}},
		"today":       {MinArgs: 0, MaxArgs: 0, ReturnType: &qltype.Date{}},
		"arrayMap":    {MinArgs: 2, MaxArgs: 2, ReturnType: unknown()},
		"arrayFilter": {MinArgs: 2, MaxArgs: 2, ReturnType: unknown()},
		"length":      {MinArgs: 1, MaxArgs: 1, ReturnType: integer()},
		"dateDiff": {
			MinArgs: 3, MaxArgs: 3, ReturnType: integer(),
			RequireConstArg: []int{0},
		},
		"formatDateTime": {
			MinArgs: 2, MaxArgs: 2, ReturnType: str(),
			RequireConstArg: []int{1},
		},
	}
}

// NewStandard returns a Registry pre-populated with StandardSignatures.
func NewStandard() *Registry {
	r := New()
	for name, sig := range StandardSignatures() {
		r.Register(name, sig)
	}
	return r
}
