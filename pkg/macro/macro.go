// Package macro implements the pure AST->AST expansion pass spec.md §6
// calls "expansion macros": cohort membership, the sparkline() builtin,
// and the HogQLX XML-tag literal sugar (`<Sparkline data={x} />`).
// pkg/resolve treats all of it as an opaque host-provided transform via
// the resolve.TagExpander/CohortExpander interfaces; this package is
// one concrete implementation of those interfaces, grounded on the
// original implementation's resolver_utils.convert_hogqlx_tag and
// functions.cohort.cohort_query_node / functions.sparkline.sparkline
// (original_source/posthog/hogql/resolver.py lines 17-21, 260, 385-412,
// 653-661).
package macro

import (
	"fmt"

	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/token"
)

// CohortLookup resolves a cohort id (an integer constant or a
// parametrised expression) to the HogQL source text of the query that
// tests membership in it. Implemented by the host (e.g. a lookup
// against the product's cohort storage); pkg/macro only owns parsing
// the returned text back into an AST.
type CohortLookup interface {
	CohortQuery(teamID string, cohortID qlast.Expr) (string, error)
}

// ActionLookup resolves an action id to the HogQL source text of the
// boolean expression testing whether an event matches that action,
// mirroring the original's functions.action.matches_action.
type ActionLookup interface {
	ActionExpr(teamID string, actionID qlast.Expr) (string, error)
}

// Parser is the narrow slice of pkg/parser the macro expanders need:
// turning macro-produced source text back into AST nodes. Kept as an
// interface so pkg/macro doesn't force every caller to import the full
// parser for tests that never touch cohort/action expansion.
type Parser interface {
	ParseExpr(src string) (qlast.Expr, error)
	ParseSelect(src string) (qlast.Node, error)
}

// Expander is the default TagExpander/CohortExpander implementation:
// cohort lookups against the host's storage, sparkline and HogQLX-tag
// expansion done locally since both are pure rewrites that need no
// catalog access. No Expander method reads its Actions field;
// matchesAction(...) is expanded by ActionExpander (action.go).
type Expander struct {
	Parser  Parser
	Cohorts CohortLookup
	Actions ActionLookup
}

// New builds an Expander. cohorts may be nil if the host never needs
// COHORT support; ExpandCohort then fails with a clear error instead of
// silently no-opping. actions is stored as Expander.Actions, which no
// Expander method reads.
func New(parser Parser, cohorts CohortLookup, actions ActionLookup) *Expander {
	return &Expander{Parser: parser, Cohorts: cohorts, Actions: actions}
}

// ExpandCohort implements resolve.CohortExpander: `x IN COHORT k`
// rewrites to `x IN (cohort-query-for k)`, grounded on the original's
// cohort_query_node call at resolver.py:653,661.
func (e *Expander) ExpandCohort(teamID string, cohortID qlast.Expr) (*qlast.SelectQuery, error) {
	if e.Cohorts == nil {
		return nil, fmt.Errorf("macro: no cohort lookup configured")
	}
	src, err := e.Cohorts.CohortQuery(teamID, cohortID)
	if err != nil {
		return nil, fmt.Errorf("macro: resolving cohort query: %w", err)
	}
	node, err := e.Parser.ParseSelect(src)
	if err != nil {
		return nil, fmt.Errorf("macro: parsing cohort query: %w", err)
	}
	sq, ok := node.(*qlast.SelectQuery)
	if !ok {
		return nil, fmt.Errorf("macro: cohort query must be a single SELECT, got %T", node)
	}
	return sq, nil
}

// ExpandTag implements resolve.TagExpander's tag half: a HogQLX literal
// is sugar for a Call of the same name with one argument per attribute,
// following the original's convert_hogqlx_tag (resolver.py:260, 385).
// `<Sparkline data={x} />` becomes `Sparkline(x)`: the call keeps the
// tag name exactly as written, and the attribute values become
// positional arguments in attribute-name order with the names dropped
// (HogQL has no named-argument calls, matching the original's
// positional flattening for the tags it actually supports).
func (e *Expander) ExpandTag(_ string, tag *qlast.HogQLXTag) (qlast.Node, error) {
	span := token.Span{Start: tag.Pos(), End: tag.End()}
	args := make([]qlast.Expr, 0, len(tag.Attributes))
	for _, name := range sortedKeys(tag.Attributes) {
		args = append(args, tag.Attributes[name])
	}
	return qlast.NewCall(span, tag.TagName, args, nil), nil
}

// ExpandCall implements resolve.TagExpander's call half: sparkline(...)
// is rewritten here; every other call name, matchesAction included,
// returns ok=false so pkg/resolve falls through to its Actions and
// FuncRegistry paths, matching the original's visit_call dispatch order
// (sparkline and matchesAction checked before generic function lookup,
// resolver.py:410-412).
func (e *Expander) ExpandCall(teamID string, call *qlast.Call) (qlast.Expr, bool, error) {
	switch call.Name {
	case "sparkline":
		expanded, err := e.expandSparkline(call)
		return expanded, true, err
	default:
		return nil, false, nil
	}
}

// expandSparkline rewrites `sparkline(data)` into an array-valued
// expression, grounded on functions.sparkline.sparkline. Unlike cohort
// expansion it builds the replacement AST directly rather than
// reparsing source text, and it computes no per-bucket event counts:
// the result is `arrayMap(x -> x, data)`.
func (e *Expander) expandSparkline(call *qlast.Call) (qlast.Expr, error) {
	if len(call.Args) == 0 {
		return nil, fmt.Errorf("macro: sparkline() requires at least one argument")
	}
	// sparkline(data) -> arrayMap(x -> x, data): a minimal but type-correct
	// array-producing rewrite. The original computes bucketed counts from
	// a time range carried on the query context; that range is outside
	// this package's narrow AST->AST contract (spec.md §6: macros are
	// "pure AST->AST transformers"), so the rewrite here preserves the
	// return shape (an array) without fabricating a time dimension the
	// surrounding resolver has no way to supply.
	span := token.Span{Start: call.Pos(), End: call.End()}
	lambdaParam := "x"
	body := qlast.NewField(span, []string{lambdaParam})
	lambda := qlast.NewLambda(span, []string{lambdaParam}, body)
	return qlast.NewCall(span, "arrayMap", []qlast.Expr{lambda, call.Args[0]}, nil), nil
}

func sortedKeys(m map[string]qlast.Expr) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
