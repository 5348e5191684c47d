package resolve

import (
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// resolveSelectQuery implements the eight-step pipeline of spec.md §4.4.
// Order is contractual: FROM must populate scope.tables before the
// SELECT list is visited; ARRAY JOIN aliases must be registered
// (unresolved) before the SELECT list so they're visible to it, but
// their expressions are only resolved afterward so they can in turn
// reference SELECT-list aliases.
func (rv *Resolver) resolveSelectQuery(n *qlast.SelectQuery) (qlast.Node, error) {
	if err := requireUnresolved(n); err != nil {
		return nil, err
	}
	span := token.Span{Start: n.Pos(), End: n.End()}

	// Step 1: new SelectQuery type, transfer CTEs, push.
	scope := rv.scopes.push(rv.scopes.current())
	rv.logDebug("resolve: entering select scope", "cte_count", len(n.With))
	if err := rv.registerCTEs(scope, n.With, span); err != nil {
		rv.scopes.pop()
		return nil, err
	}

	// Step 2: clone with empty select list and nulled With.
	out := qlast.NewSelectQuery(span)
	out.Distinct = n.Distinct
	out.LimitWithTies = n.LimitWithTies
	out.Settings = n.Settings
	out.ViewName = n.ViewName
	out.SetType(scope)

	resolved, err := rv.resolveSelectBody(n, out, scope, span)
	rv.scopes.pop()
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (rv *Resolver) resolveSelectBody(n, out *qlast.SelectQuery, scope *qltype.SelectQuery, span token.Span) (*qlast.SelectQuery, error) {
	// Step 3: FROM.
	from, err := rv.resolveJoinChain(n.From)
	if err != nil {
		return nil, err
	}
	out.From = from

	// Step 4: ARRAY JOIN pass 1 - register placeholder aliases.
	if n.ArrayJoin != nil {
		if err := rv.registerArrayJoinPlaceholders(scope, n.ArrayJoin, span); err != nil {
			return nil, err
		}
	}

	// Step 5: resolve SELECT list, expanding asterisks, registering columns.
	if err := rv.resolveSelectList(n.Select, out, scope); err != nil {
		return nil, err
	}

	// Step 6: ARRAY JOIN pass 2 - drop placeholders, resolve for real.
	if n.ArrayJoin != nil {
		for _, name := range arrayJoinNames(n.ArrayJoin) {
			delete(scope.Aliases, name)
		}
		resolvedCols := make([]qlast.Expr, len(n.ArrayJoin.Columns))
		for i, c := range n.ArrayJoin.Columns {
			resolved, err := rv.resolveExpr(c)
			if err != nil {
				return nil, err
			}
			resolvedCols[i] = resolved
		}
		out.ArrayJoin = &qlast.ArrayJoin{Left: n.ArrayJoin.Left, Columns: resolvedCols}
	}

	// Step 7: WHERE, PREWHERE, HAVING, GROUP BY, ORDER BY, LIMIT BY, LIMIT,
	// OFFSET, windows.
	if out.Where, err = rv.resolveOptionalExpr(n.Where); err != nil {
		return nil, err
	}
	if out.PreWhere, err = rv.resolveOptionalExpr(n.PreWhere); err != nil {
		return nil, err
	}
	if out.Having, err = rv.resolveOptionalExpr(n.Having); err != nil {
		return nil, err
	}
	if out.GroupBy, err = rv.resolveExprList(n.GroupBy); err != nil {
		return nil, err
	}
	if out.LimitBy, err = rv.resolveExprList(n.LimitBy); err != nil {
		return nil, err
	}
	out.OrderBy, err = rv.resolveOrderList(n.OrderBy)
	if err != nil {
		return nil, err
	}
	if out.Limit, err = rv.resolveOptionalExpr(n.Limit); err != nil {
		return nil, err
	}
	if out.Offset, err = rv.resolveOptionalExpr(n.Offset); err != nil {
		return nil, err
	}
	if n.Windows != nil {
		out.Windows = make(map[string]*qlast.Window, len(n.Windows))
		for name, w := range n.Windows {
			pb, err := rv.resolveExprList(w.PartitionBy)
			if err != nil {
				return nil, err
			}
			ob, err := rv.resolveOrderList(w.OrderBy)
			if err != nil {
				return nil, err
			}
			out.Windows[name] = &qlast.Window{PartitionBy: pb, OrderBy: ob}
		}
	}

	return out, nil
}

// registerCTEs transfers each WITH entry into scope's CTEs map (spec.md
// §4.4 step 1). The body is kept unresolved (any-typed) for clone-at-use
// by field.go/join.go; Reference is left unset.
func (rv *Resolver) registerCTEs(scope *qltype.SelectQuery, with []qlast.WithEntry, span token.Span) error {
	for _, w := range with {
		if _, exists := scope.CTEs[w.Name]; exists {
			return qlerr.NewQueryError(span, "duplicate CTE name %q", w.Name)
		}
		scope.CTEs[w.Name] = &qltype.CTEDef{
			Name:     w.Name,
			IsColumn: w.Kind == qlast.CTEColumn,
			Body:     w.Body,
		}
	}
	return nil
}

func arrayJoinNames(aj *qlast.ArrayJoin) []string {
	names := make([]string, 0, len(aj.Columns))
	for _, c := range aj.Columns {
		if alias, ok := c.(*qlast.Alias); ok {
			names = append(names, alias.AliasName)
		}
	}
	return names
}

// registerArrayJoinPlaceholders implements spec.md §4.4 step 4: for each
// alias the ARRAY JOIN introduces, fail on collision, otherwise register
// with Unknown inner type so later SELECT-list lookups can see the name
// without yet resolving the (possibly SELECT-list-dependent) expression.
func (rv *Resolver) registerArrayJoinPlaceholders(scope *qltype.SelectQuery, aj *qlast.ArrayJoin, span token.Span) error {
	for _, name := range arrayJoinNames(aj) {
		if _, ok := scope.Aliases[name]; ok {
			return qlerr.NewQueryError(span, "ARRAY JOIN alias %q collides with an existing alias", name)
		}
		if _, ok := scope.Tables[name]; ok {
			return qlerr.NewQueryError(span, "ARRAY JOIN alias %q collides with a table alias", name)
		}
		scope.Aliases[name] = &qltype.FieldAlias{Alias: name, Inner: &qltype.Unknown{}}
	}
	return nil
}

// resolveSelectList implements spec.md §4.4 step 5: visit each
// SELECT-list expression, expanding an Asterisk into one bare
// identifier per exported column (each visited exactly once - see
// spec.md §9's open question about the source's re-visiting quirk,
// deliberately not reproduced here), and registering each resulting
// column under the visible-dominates-hidden rule.
func (rv *Resolver) resolveSelectList(exprs []qlast.Expr, out *qlast.SelectQuery, scope *qltype.SelectQuery) error {
	for _, e := range exprs {
		resolved, err := rv.resolveExpr(e)
		if err != nil {
			return err
		}
		if ast, ok := resolved.(*qlast.Asterisk); ok {
			expanded, err := rv.expandAsterisk(ast)
			if err != nil {
				return err
			}
			for _, fieldExpr := range expanded {
				resolvedField, err := rv.resolveExpr(fieldExpr)
				if err != nil {
					return err
				}
				out.Select = append(out.Select, resolvedField)
				registerColumn(scope, resolvedField)
			}
			continue
		}
		out.Select = append(out.Select, resolved)
		registerColumn(scope, resolved)
	}
	return nil
}

// registerColumn implements spec.md §4.4 step 5's naming/visibility
// rule: the exported name is, in priority order, a FieldAlias's own
// alias, a Field/ExpressionField's name, or an explicit Alias.alias. A
// visible binding always dominates a hidden one for the same name.
func registerColumn(scope *qltype.SelectQuery, e qlast.Expr) {
	name, hidden := columnNameOf(e)
	if name == "" {
		return
	}
	scope.AddColumn(name, e.Type())

	existing, ok := scope.Aliases[name]
	if hidden {
		if !ok {
			scope.Aliases[name] = &qltype.FieldAlias{Alias: name, Inner: e.Type(), Hidden: true}
		}
		return
	}
	if ok && !existing.Hidden {
		return
	}
	scope.Aliases[name] = &qltype.FieldAlias{Alias: name, Inner: e.Type(), Hidden: false}
}

func columnNameOf(e qlast.Expr) (name string, hidden bool) {
	switch v := e.(type) {
	case *qlast.Alias:
		return v.AliasName, v.Hidden
	case *qlast.Field:
		switch t := v.Type().(type) {
		case *qltype.FieldAlias:
			return t.Alias, t.Hidden
		case *qltype.Field:
			return t.Name, true
		case *qltype.ExpressionField:
			return t.Name, true
		case *qltype.UnresolvedField:
			return t.Name, true
		default:
			return "", true
		}
	default:
		return "", true
	}
}

func (rv *Resolver) resolveOptionalExpr(e qlast.Expr) (qlast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return rv.resolveExpr(e)
}

func (rv *Resolver) resolveExprList(es []qlast.Expr) ([]qlast.Expr, error) {
	if es == nil {
		return nil, nil
	}
	out := make([]qlast.Expr, len(es))
	for i, e := range es {
		resolved, err := rv.resolveExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (rv *Resolver) resolveOrderList(os []qlast.OrderExpr) ([]qlast.OrderExpr, error) {
	if os == nil {
		return nil, nil
	}
	out := make([]qlast.OrderExpr, len(os))
	for i, o := range os {
		resolved, err := rv.resolveExpr(o.Expr)
		if err != nil {
			return nil, err
		}
		out[i] = qlast.OrderExpr{Expr: resolved, Desc: o.Desc}
	}
	return out, nil
}

// resolveSelectUnion implements spec.md §4.4's union handling: no new
// scope of its own, but the first branch's CTEs (if any) are pushed for
// the duration of every branch, so they're visible on the right-hand
// side of a UNION too.
func (rv *Resolver) resolveSelectUnion(n *qlast.SelectUnionQuery) (qlast.Node, error) {
	if err := requireUnresolved(n); err != nil {
		return nil, err
	}
	if len(n.Branches) == 0 {
		return nil, qlerr.NewImpossibleAST(token.Span{Start: n.Pos(), End: n.End()}, "empty SELECT union")
	}

	pushedShared := false
	if len(n.Branches[0].With) > 0 {
		span := token.Span{Start: n.Branches[0].Pos(), End: n.Branches[0].End()}
		shared := rv.scopes.push(rv.scopes.current())
		if err := rv.registerCTEs(shared, n.Branches[0].With, span); err != nil {
			rv.scopes.pop()
			return nil, err
		}
		pushedShared = true
	}

	branches := make([]*qltype.SelectQuery, len(n.Branches))
	outBranches := make([]*qlast.SelectQuery, len(n.Branches))
	for i, b := range n.Branches {
		resolved, err := rv.resolveSelectQuery(b)
		if err != nil {
			if pushedShared {
				rv.scopes.pop()
			}
			return nil, err
		}
		sq := resolved.(*qlast.SelectQuery)
		outBranches[i] = sq
		branches[i] = sq.Type().(*qltype.SelectQuery)
	}
	if pushedShared {
		rv.scopes.pop()
	}

	out := qlast.NewSelectUnionQuery(token.Span{Start: n.Pos(), End: n.End()}, n.Combinator, outBranches)
	out.SetType(&qltype.SelectUnion{Branches: branches})
	return out, nil
}
