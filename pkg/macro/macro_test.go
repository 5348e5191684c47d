package macro

import (
	"testing"

	"github.com/lakequery/hogql/pkg/parser"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/token"
	"github.com/stretchr/testify/require"
)

type parserAdapter struct{}

func (parserAdapter) ParseExpr(src string) (qlast.Expr, error)   { return parser.ParseExpr(src) }
func (parserAdapter) ParseSelect(src string) (qlast.Node, error) { return parser.ParseSelect(src) }

type fakeCohorts struct{ query string }

func (f fakeCohorts) CohortQuery(_ string, _ qlast.Expr) (string, error) { return f.query, nil }

type fakeActions struct{ expr string }

func (f fakeActions) ActionExpr(_ string, _ qlast.Expr) (string, error) { return f.expr, nil }

var zeroSpan = token.Span{}

func TestExpandCohortParsesStoredQuery(t *testing.T) {
	e := New(parserAdapter{}, fakeCohorts{query: "SELECT person_id FROM persons"}, nil)
	sq, err := e.ExpandCohort("team1", qlast.NewConstant(zeroSpan, int64(3)))
	require.NoError(t, err)
	require.Len(t, sq.Select, 1)
}

func TestExpandCohortFailsWithoutLookup(t *testing.T) {
	e := New(parserAdapter{}, nil, nil)
	_, err := e.ExpandCohort("team1", qlast.NewConstant(zeroSpan, int64(3)))
	require.Error(t, err)
}

func TestExpandTagBecomesCall(t *testing.T) {
	e := New(parserAdapter{}, nil, nil)
	tag := qlast.NewHogQLXTag(zeroSpan, "Sparkline", map[string]qlast.Expr{
		"data": qlast.NewConstant(zeroSpan, int64(1)),
	})
	node, err := e.ExpandTag("team1", tag)
	require.NoError(t, err)
	call, ok := node.(*qlast.Call)
	require.True(t, ok)
	require.Equal(t, "Sparkline", call.Name)
	require.Len(t, call.Args, 1)
}

func TestExpandCallSparklineRewritesToArrayMap(t *testing.T) {
	e := New(parserAdapter{}, nil, nil)
	call := qlast.NewCall(zeroSpan, "sparkline", []qlast.Expr{qlast.NewConstant(zeroSpan, int64(1))}, nil)
	expanded, ok, err := e.ExpandCall("team1", call)
	require.NoError(t, err)
	require.True(t, ok)
	rewritten, ok := expanded.(*qlast.Call)
	require.True(t, ok)
	require.Equal(t, "arrayMap", rewritten.Name)
}

func TestExpandCallFallsThroughForOrdinaryFunctions(t *testing.T) {
	e := New(parserAdapter{}, nil, nil)
	call := qlast.NewCall(zeroSpan, "count", nil, nil)
	_, ok, err := e.ExpandCall("team1", call)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExpandMatchesActionParsesStoredExpr(t *testing.T) {
	ae := NewActionExpander(parserAdapter{}, fakeActions{expr: "event = '$pageview'"})
	call := qlast.NewCall(zeroSpan, "matchesAction", []qlast.Expr{
		qlast.NewField(zeroSpan, []string{"event"}),
		qlast.NewConstant(zeroSpan, int64(1)),
	}, nil)
	expr, err := ae.ExpandMatchesAction("team1", call)
	require.NoError(t, err)
	require.NotNil(t, expr)
}

func TestExpandMatchesActionFailsWithoutLookup(t *testing.T) {
	ae := NewActionExpander(parserAdapter{}, nil)
	call := qlast.NewCall(zeroSpan, "matchesAction", []qlast.Expr{
		qlast.NewField(zeroSpan, []string{"event"}),
		qlast.NewConstant(zeroSpan, int64(1)),
	}, nil)
	_, err := ae.ExpandMatchesAction("team1", call)
	require.Error(t, err)
}
