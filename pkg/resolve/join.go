package resolve

import (
	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/lakequery/hogql/pkg/parser"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// resolveJoinChain implements the JoinExpr resolver (spec.md §4.3) for
// one link of a FROM/JOIN chain: resolve Table to a source, visit USING,
// register the source in the current scope, then visit ON/Sample and
// recurse into NextJoin. Returns the cloned, typed chain.
func (rv *Resolver) resolveJoinChain(j *qlast.JoinExpr) (*qlast.JoinExpr, error) {
	if j == nil {
		return nil, nil
	}
	span := token.Span{Start: j.Pos(), End: j.End()}
	out := j.Clone()

	switch j.TableKind {
	case qlast.TableMacroTag:
		tag, ok := j.Table.(*qlast.HogQLXTag)
		if !ok {
			return nil, qlerr.NewImpossibleAST(span, "TableMacroTag join with non-tag Table node")
		}
		if rv.ctx.Macros == nil {
			return nil, qlerr.NewQueryError(span, "table tag <%s> used but no macro expander is configured", tag.TagName)
		}
		expanded, err := rv.ctx.Macros.ExpandTag(rv.ctx.TeamID, tag)
		if err != nil {
			return nil, qlerr.NewQueryError(span, "expanding table tag <%s>: %v", tag.TagName, err)
		}
		out.Table = expanded
		out.TableKind = classifyExpandedTableKind(expanded)
		return rv.resolveJoinChain(out)

	case qlast.TableIdentifier:
		return rv.resolveJoinIdentifier(out, span)

	case qlast.TableSubquery:
		return rv.resolveJoinSubquery(out, span)

	case qlast.TableFunctionArgs:
		return rv.resolveJoinFunctionArgs(out, span)

	default:
		return nil, qlerr.NewQueryError(span, "cannot be used as a SELECT source")
	}
}

func classifyExpandedTableKind(n qlast.Node) qlast.TableExprKind {
	switch n.(type) {
	case *qlast.SelectQuery, *qlast.SelectUnionQuery:
		return qlast.TableSubquery
	case *qlast.Field:
		return qlast.TableIdentifier
	default:
		return qlast.TableSubquery
	}
}

// resolveJoinIdentifier handles spec.md §4.3 cases 2 and 3: a
// single-segment identifier naming either a visible CTE or a catalog
// table.
func (rv *Resolver) resolveJoinIdentifier(out *qlast.JoinExpr, span token.Span) (*qlast.JoinExpr, error) {
	field, ok := out.Table.(*qlast.Field)
	if !ok || len(field.Chain) != 1 {
		return nil, qlerr.NewQueryError(span, "join source must be a single-segment identifier")
	}
	name := field.Chain[0]
	scope := rv.scopes.current()
	if scope == nil {
		return nil, qlerr.NewImpossibleAST(span, "JoinExpr outside a SELECT")
	}

	if def, ok := rv.scopes.lookupCTE(name); ok && !def.IsColumn {
		if err := rv.bumpCTEExpansion(span); err != nil {
			return nil, err
		}
		defer rv.unbumpCTEExpansion()

		out.Table = qlast.Clone(toNode(def.Body))
		if out.Alias == "" {
			out.Alias = name
		}
		return rv.resolveResolvedJoinSource(out, span)
	}

	desc, err := rv.ctx.Database.GetTable(rv.ctx.stdCtx(), name)
	if err != nil {
		return nil, qlerr.NewQueryError(span, "resolving table %q: %v", name, err)
	}

	if out.Alias != "" {
		if _, ok := scope.Tables[out.Alias]; ok {
			return nil, qlerr.NewQueryError(span, "table alias %q already joined", out.Alias)
		}
	} else if _, ok := scope.Tables[name]; ok {
		return nil, qlerr.NewQueryError(span, "table %q already joined", name)
	}

	switch desc.Kind {
	case catalog.SavedQuery:
		return rv.resolveJoinSavedQuery(out, desc, name, span)
	case catalog.Lazy:
		return rv.finishJoinTable(out, &qltype.LazyTable{Descriptor: desc}, name, desc, span)
	default:
		return rv.finishJoinTable(out, &qltype.Table{Descriptor: desc}, name, desc, span)
	}
}

// resolveJoinSavedQuery parses a view's stored text, tags the resulting
// sub-query with the view name, and recurses as a sub-query join
// (spec.md §4.3 case 3's SavedQuery dispatch), tracking view-depth.
func (rv *Resolver) resolveJoinSavedQuery(out *qlast.JoinExpr, desc *catalog.TableDescriptor, name string, span token.Span) (*qlast.JoinExpr, error) {
	if rv.viewDepth >= rv.ctx.MaxViewDepth {
		return nil, qlerr.NewQueryError(span, "saved-view expansion depth exceeds %d", rv.ctx.MaxViewDepth)
	}
	body, err := parser.ParseSelect(desc.Query)
	if err != nil {
		return nil, qlerr.NewQueryError(span, "parsing saved view %q: %v", name, err)
	}
	sq, ok := body.(*qlast.SelectQuery)
	if !ok {
		return nil, qlerr.NewImpossibleAST(span, "saved view %q body is not a SELECT", name)
	}
	sq.ViewName = name
	if out.Alias == "" {
		out.Alias = name
	}
	out.Table = sq
	out.TableKind = qlast.TableSubquery

	rv.viewDepth++
	defer func() { rv.viewDepth-- }()
	return rv.resolveResolvedJoinSource(out, span)
}

func (rv *Resolver) finishJoinTable(out *qlast.JoinExpr, t qltype.TableKind, name string, desc *catalog.TableDescriptor, span token.Span) (*qlast.JoinExpr, error) {
	if err := rv.resolveUsingThenOn(out, span); err != nil {
		return nil, err
	}

	var final qltype.TableKind = t
	alias := out.Alias
	if alias != "" || desc.Kind == catalog.FunctionCall {
		effectiveAlias := alias
		if effectiveAlias == "" {
			effectiveAlias = name
		}
		final = &qltype.TableAlias{Alias: effectiveAlias, Inner: t}
		alias = effectiveAlias
	} else {
		alias = name
	}

	scope := rv.scopes.current()
	scope.Tables[alias] = final
	out.Type = final

	if err := rv.resolveSampleAndArgs(out, span); err != nil {
		return nil, err
	}
	return rv.continueNextJoin(out, final, span)
}

// resolveJoinSubquery implements spec.md §4.3 case 4: a parenthesised
// SELECT or union as a join source.
func (rv *Resolver) resolveJoinSubquery(out *qlast.JoinExpr, span token.Span) (*qlast.JoinExpr, error) {
	out.Table = qlast.Clone(out.Table)
	return rv.resolveResolvedJoinSource(out, span)
}

// resolveResolvedJoinSource finishes a join whose Table is already a
// concrete sub-query/union AST (used by the CTE, saved-view, and plain
// sub-query paths, which differ only in how Table got there): visit
// USING first, resolve the sub-query, then classify it as a view,
// aliased sub-query, or anonymous table per spec.md §4.3 case 4.
func (rv *Resolver) resolveResolvedJoinSource(out *qlast.JoinExpr, span token.Span) (*qlast.JoinExpr, error) {
	if err := rv.resolveUsingThenOn(out, span); err != nil {
		return nil, err
	}

	resolved, err := rv.Resolve(out.Table)
	if err != nil {
		return nil, err
	}
	out.Table = resolved

	var source qltype.SelectSource
	var viewName string
	switch v := resolved.(type) {
	case *qlast.SelectQuery:
		source = v.Type().(qltype.SelectSource)
		viewName = v.ViewName
	case *qlast.SelectUnionQuery:
		source = v.Type().(qltype.SelectSource)
	default:
		return nil, qlerr.NewQueryError(span, "cannot be used as a SELECT source")
	}

	scope := rv.scopes.current()
	var final qltype.Type
	switch {
	case viewName != "" && out.Alias != "":
		final = &qltype.SelectView{Alias: out.Alias, ViewName: viewName, Inner: source}
		scope.Tables[out.Alias] = final.(qltype.TableKind)
	case out.Alias != "":
		final = &qltype.SelectQueryAlias{Alias: out.Alias, Inner: source}
		scope.Tables[out.Alias] = final.(qltype.TableKind)
	default:
		final = &qltype.SelectQueryAlias{Inner: source}
		scope.AnonymousTables = append(scope.AnonymousTables, final.(qltype.TableKind))
	}
	out.Type = final

	if err := rv.resolveSampleAndArgs(out, span); err != nil {
		return nil, err
	}
	return rv.continueNextJoin(out, final, span)
}

// resolveJoinFunctionArgs resolves a function-call table source (e.g.
// numbers(10)): the descriptor comes from the catalog keyed by function
// name, always wrapped in a TableAlias per spec.md §4.3 case 3's note
// ("so foo.* FROM foo() continues to work").
func (rv *Resolver) resolveJoinFunctionArgs(out *qlast.JoinExpr, span token.Span) (*qlast.JoinExpr, error) {
	field, ok := out.Table.(*qlast.Field)
	if !ok || len(field.Chain) != 1 {
		return nil, qlerr.NewQueryError(span, "function-call table source must be a bare identifier")
	}
	name := field.Chain[0]
	desc, err := rv.ctx.Database.GetTable(rv.ctx.stdCtx(), name)
	if err != nil {
		return nil, qlerr.NewQueryError(span, "resolving function table %q: %v", name, err)
	}
	for i, arg := range out.TableArgs {
		resolved, err := rv.resolveExpr(arg)
		if err != nil {
			return nil, err
		}
		out.TableArgs[i] = resolved
	}
	return rv.finishJoinTable(out, &qltype.Table{Descriptor: desc}, name, desc, span)
}

// resolveUsingThenOn visits USING before the joined table shadows
// ambient columns (spec.md §4.3 case 3). It does not visit ON; its
// callers leave that to resolveSampleAndArgs once the table is
// registered.
func (rv *Resolver) resolveUsingThenOn(out *qlast.JoinExpr, _ token.Span) error {
	for i, u := range out.Using {
		resolved, err := rv.resolveExpr(u)
		if err != nil {
			return err
		}
		out.Using[i] = resolved
	}
	return nil
}

func (rv *Resolver) resolveSampleAndArgs(out *qlast.JoinExpr, _ token.Span) error {
	if out.On != nil {
		resolved, err := rv.resolveExpr(out.On)
		if err != nil {
			return err
		}
		out.On = resolved
	}
	if out.Sample != nil {
		resolved, err := rv.resolveExpr(out.Sample)
		if err != nil {
			return err
		}
		out.Sample = resolved
	}
	return nil
}

// continueNextJoin recurses into NextJoin, then applies global-join
// promotion (spec.md §4.3's "Global-join promotion"): if cur is the
// events table and the resolved next link is an s3 table, its join type
// is rewritten to GLOBAL JOIN. This is the only place the resolver
// rewrites a join kind.
func (rv *Resolver) continueNextJoin(out *qlast.JoinExpr, cur qltype.Type, span token.Span) (*qlast.JoinExpr, error) {
	if out.NextJoin == nil {
		return out, nil
	}
	next, err := rv.resolveJoinChain(out.NextJoin)
	if err != nil {
		return nil, err
	}
	out.NextJoin = next

	if isEventsTable(cur) && isS3Table(next.Type) {
		next.JoinType = "GLOBAL JOIN"
	}
	return out, nil
}

func isEventsTable(t qltype.Type) bool {
	desc := descriptorOf(t)
	return desc != nil && desc.Kind == catalog.Events
}

func isS3Table(t qltype.Type) bool {
	desc := descriptorOf(t)
	return desc != nil && desc.Kind == catalog.S3
}
