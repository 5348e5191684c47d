package funcreg

import (
	"testing"

	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/resolve"
	"github.com/stretchr/testify/require"
)

func TestLookupMissReturnsFalse(t *testing.T) {
	r := New()
	_, ok := r.Lookup("nope")
	require.False(t, ok)
}

func TestRegisterThenLookup(t *testing.T) {
	r := New()
	r.Register("double", resolve.FuncSignature{MinArgs: 1, MaxArgs: 1, ReturnType: &qltype.Float{}})
	sig, ok := r.Lookup("double")
	require.True(t, ok)
	require.Equal(t, 1, sig.MinArgs)
	require.IsType(t, &qltype.Float{}, sig.ReturnType)
}

func TestStandardSignaturesRegistersCount(t *testing.T) {
	r := NewStandard()
	sig, ok := r.Lookup("count")
	require.True(t, ok)
	require.Equal(t, 0, sig.MinArgs)
	require.Equal(t, 1, sig.MaxArgs)
}

func TestTypeByNameUnknownFails(t *testing.T) {
	_, err := TypeByName("not-a-type")
	require.Error(t, err)
}

func TestLoadStarlarkSourceRegistersFunction(t *testing.T) {
	r := New()
	src := `
register(
    name = "matchesCohort",
    min_args = 1,
    max_args = 1,
    return_type = "boolean",
)
`
	err := LoadStarlarkSource("functions.star", []byte(src), r)
	require.NoError(t, err)
	sig, ok := r.Lookup("matchesCohort")
	require.True(t, ok)
	require.IsType(t, &qltype.Boolean{}, sig.ReturnType)
	require.Equal(t, 1, sig.MinArgs)
	require.Equal(t, 1, sig.MaxArgs)
}

func TestLoadStarlarkSourceWithParamTypes(t *testing.T) {
	r := New()
	src := `
register(
    name = "customFn",
    min_args = 2,
    max_args = 2,
    return_type = "string",
    param_types = ["string", "integer"],
    require_const_arg = [1],
)
`
	err := LoadStarlarkSource("functions.star", []byte(src), r)
	require.NoError(t, err)
	sig, ok := r.Lookup("customFn")
	require.True(t, ok)
	require.Len(t, sig.ParamTypes, 2)
	require.Equal(t, []int{1}, sig.RequireConstArg)
}

func TestLoadStarlarkSourceRejectsUnknownReturnType(t *testing.T) {
	r := New()
	src := `register(name = "bad", return_type = "nope")`
	err := LoadStarlarkSource("functions.star", []byte(src), r)
	require.Error(t, err)
}
