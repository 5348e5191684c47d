package resolve

import (
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// DefaultMaxCTEExpansions bounds how many CTE expansions may be open at
// once, nested inside one another, during one resolve_types call
// (spec.md §3 invariant 5): the counter rises before a CTE body is
// resolved and falls when it returns, so the expansion that would be
// the 51st open one fails. SPEC_FULL.md keeps the bound as configurable
// resolver state rather than a silent constant.
const DefaultMaxCTEExpansions = 50

// Resolver holds the per-call mutable state spec.md §5 describes: a
// scope stack and a CTE-expansion counter, owned exclusively by one
// ResolveTypes call. Nothing here is safe to share across concurrent
// calls; build a fresh Resolver (or call the package-level ResolveTypes
// helper) per query.
type Resolver struct {
	ctx     *Context
	dialect Dialect
	scopes  scopeStack

	MaxCTEExpansions int
	cteExpansions    int
	viewDepth        int
}

// New builds a Resolver over ctx under dialect, with MaxCTEExpansions
// at its default.
func New(ctx *Context, dialect Dialect) *Resolver {
	return &Resolver{ctx: ctx, dialect: dialect, MaxCTEExpansions: DefaultMaxCTEExpansions}
}

// ResolveTypes is the package's entry point, matching spec.md §6's
// `resolve_types(node, context, dialect, scopes?)`. It returns a fully
// typed AST whose SELECT and UNION nodes are new, but whose expression
// nodes are taken from the input and typed and rewritten in place, so
// resolving the same input again fails at its first already-typed
// expression.
func ResolveTypes(node qlast.Node, ctx *Context, dialect Dialect, scopes ...*qltype.SelectQuery) (qlast.Node, error) {
	rv := New(ctx, dialect)
	for _, sq := range scopes {
		rv.scopes.pushExisting(sq)
	}
	return rv.Resolve(node)
}

// Resolve dispatches on node's concrete kind and runs the matching
// top-level pipeline.
func (rv *Resolver) Resolve(node qlast.Node) (qlast.Node, error) {
	switch n := node.(type) {
	case *qlast.SelectQuery:
		return rv.resolveSelectQuery(n)
	case *qlast.SelectUnionQuery:
		return rv.resolveSelectUnion(n)
	case qlast.Expr:
		return rv.resolveExpr(n)
	default:
		return nil, qlerr.NewImpossibleAST(token.Span{}, "resolve_types: unsupported root node %T", node)
	}
}

func spanOf(n qlast.Node) token.Span {
	return token.Span{Start: n.Pos(), End: n.End()}
}

// requireUnresolved enforces invariant 1's other half: re-resolving an
// already-typed node is an error.
func requireUnresolved(e qlast.Expr) error {
	if e.Resolved() {
		return qlerr.NewImpossibleAST(spanOf(e), "type already resolved")
	}
	return nil
}

func (rv *Resolver) logDebug(msg string, args ...any) {
	if rv.ctx == nil {
		return
	}
	base := []any{"request_id", rv.ctx.RequestID, "scope_depth", rv.scopes.depth()}
	rv.ctx.logger().Debug(msg, append(base, args...)...)
}
