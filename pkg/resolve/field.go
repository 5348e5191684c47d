package resolve

import (
	"strconv"
	"strings"

	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/lakequery/hogql/pkg/parser"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// resolveFieldExpr implements the field resolver (spec.md §4.6): given
// a dotted identifier chain, the current scope, and the active dialect,
// seed a starting type (table alias, scope alias, table column,
// schema-declared expression field/traverser, or CTE), walk the
// remaining chain segments against it, and post-process the leaf
// (expression-field inlining, hidden-alias wrapping).
func (rv *Resolver) resolveFieldExpr(f *qlast.Field) (qlast.Expr, error) {
	if err := requireUnresolved(f); err != nil {
		return nil, err
	}
	span := spanOf(f)
	scope := rv.scopes.current()
	if scope == nil {
		return nil, qlerr.NewImpossibleAST(span, "field reference %q outside a SELECT", strings.Join(f.Chain, "."))
	}
	chain := f.Chain
	if len(chain) == 0 {
		return nil, qlerr.NewResolutionError(span, "empty field chain")
	}

	c0 := chain[0]
	seed, consumedFirst, err := rv.seedForName(scope, c0, len(chain) > 1, span)
	if err != nil {
		return nil, err
	}

	// Step 4: a CTE visible on the full scope stack.
	if seed == nil {
		if def, ok := rv.scopes.lookupCTE(c0); ok {
			return rv.resolveCTEReference(f, def, chain)
		}
	}

	// Step 5: unresolved.
	if seed == nil {
		return rv.unresolvedField(f, c0, span)
	}

	rest := chain
	if consumedFirst {
		rest = chain[1:]
	}
	final, err := rv.walkChain(seed, stringKeys(rest), span)
	if err != nil {
		return nil, err
	}
	return rv.postProcessLeaf(f, final)
}

// seedForName implements spec.md §4.6 steps 1/3a/3b against scope, then
// - per spec.md §4.2's "field lookup inside a lambda chains to the
// parent chain up to the nearest SELECT" - retries against scope's
// parent, and its parent, for as long as each frame visited is itself a
// lambda frame; the first ordinary SELECT frame reached is checked once
// and, on a miss, ends the walk.
func (rv *Resolver) seedForName(scope *qltype.SelectQuery, name string, multiSegment bool, span token.Span) (qltype.Type, bool, error) {
	for cur := scope; cur != nil; cur = cur.Parent {
		if multiSegment {
			if t, ok := cur.Tables[name]; ok {
				return t, true, nil
			}
		}
		if alias, ok := cur.Aliases[name]; ok {
			return alias.Inner, true, nil
		}
		found, err := rv.lookupAmongTables(cur, name, span)
		if err != nil {
			return nil, false, err
		}
		if found != nil {
			return found, true, nil
		}
		if !cur.IsLambda {
			break
		}
	}
	return nil, false, nil
}

// lookupAmongTables searches every table registered in scope (named and
// anonymous) for a column, expression field, or traverser named name,
// failing if more than one table exposes it (spec.md §4.6 step 3: "a
// name visible in multiple tables is ambiguous and fails").
func (rv *Resolver) lookupAmongTables(scope *qltype.SelectQuery, name string, span token.Span) (qltype.Type, error) {
	var found qltype.Type
	var foundIn string
	check := func(alias string, t qltype.TableKind) error {
		res, err := rv.getChild(t, strKey(name), span)
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}
		if found != nil {
			return qlerr.NewQueryError(span, "ambiguous identifier %q: present in both %q and %q", name, foundIn, alias)
		}
		found = res
		foundIn = alias
		return nil
	}
	for alias, t := range scope.Tables {
		if err := check(alias, t); err != nil {
			return nil, err
		}
	}
	for i, t := range scope.AnonymousTables {
		if err := check("<anonymous "+strconv.Itoa(i)+">", t); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func (rv *Resolver) unresolvedField(f *qlast.Field, name string, span token.Span) (qlast.Expr, error) {
	if rv.dialect == Strict {
		return nil, qlerr.NewQueryErrorRange(span, span.Start.Offset, span.End.Offset, "unable to resolve field: %s", name)
	}
	rv.ctx.AddError(span, "unable to resolve field: %s", name)
	uf := &qltype.UnresolvedField{Name: name, Reason: "no matching table, alias, or CTE"}
	f.SetType(uf)
	return f, nil
}

// resolveCTEReference implements spec.md §4.6 step 4. A table-level
// ("subquery") CTE referenced by its bare name (chain length 1) is
// re-emitted as a value reference to its sole column; every other case
// clones the CTE body and recurses, bumping the CTE-expansion guard
// (spec.md §3 invariant 5).
func (rv *Resolver) resolveCTEReference(f *qlast.Field, def *qltype.CTEDef, chain []string) (qlast.Expr, error) {
	span := spanOf(f)
	if !def.IsColumn && len(chain) == 1 {
		return rv.resolveTableCTEAsValue(f, def, span)
	}

	if err := rv.bumpCTEExpansion(span); err != nil {
		return nil, err
	}
	defer rv.unbumpCTEExpansion()

	cloned := qlast.Clone(toNode(def.Body))
	var seed qltype.Type
	if def.IsColumn {
		exprClone, ok := cloned.(qlast.Expr)
		if !ok {
			return nil, qlerr.NewImpossibleAST(span, "column CTE %q body is not an expression", def.Name)
		}
		resolved, err := rv.resolveExpr(exprClone)
		if err != nil {
			return nil, err
		}
		seed = resolved.Type()
	} else {
		resolvedNode, err := rv.Resolve(cloned)
		if err != nil {
			return nil, err
		}
		seed = resolvedNode.(qlast.Expr).Type()
	}

	rest := chain[1:]
	if len(rest) == 0 {
		f.SetType(seed)
		return f, nil
	}
	final, err := rv.walkChain(seed, stringKeys(rest), span)
	if err != nil {
		return nil, err
	}
	return rv.postProcessLeaf(f, final)
}

// resolveTableCTEAsValue handles the documented corner case of
// referencing a table-level CTE as a bare scalar value: it resolves the
// CTE body once and, if it has exactly one exported column, re-emits a
// Field referencing that column.
func (rv *Resolver) resolveTableCTEAsValue(f *qlast.Field, def *qltype.CTEDef, span token.Span) (qlast.Expr, error) {
	if err := rv.bumpCTEExpansion(span); err != nil {
		return nil, err
	}
	defer rv.unbumpCTEExpansion()

	cloned := qlast.Clone(toNode(def.Body))
	resolvedNode, err := rv.Resolve(cloned)
	if err != nil {
		return nil, err
	}
	sqType := resolvedNode.(qlast.Expr).Type()
	sq, ok := sqType.(*qltype.SelectQuery)
	if !ok {
		if union, ok := sqType.(*qltype.SelectUnion); ok && len(union.Branches) > 0 {
			sq = union.Branches[0]
		}
	}
	if sq == nil || len(sq.Columns) != 1 {
		return nil, qlerr.NewQueryError(span, "CTE %q cannot be used as a scalar value: it does not have exactly one column", def.Name)
	}
	final := &qltype.Field{Name: sq.Columns[0].Name, Owner: sq, IsJSON: qltype.IsJSONPath(sq.Columns[0].Type)}
	return rv.postProcessLeaf(f, final)
}

func (rv *Resolver) bumpCTEExpansion(span token.Span) error {
	rv.cteExpansions++
	if rv.cteExpansions > rv.MaxCTEExpansions {
		rv.ctx.logger().Warn("resolve: CTE expansion limit reached", "request_id", rv.ctx.RequestID, "limit", rv.MaxCTEExpansions)
		return qlerr.NewQueryError(span, "CTE expansion limit exceeded (%d); likely a cycle", rv.MaxCTEExpansions)
	}
	return nil
}

func (rv *Resolver) unbumpCTEExpansion() {
	rv.cteExpansions--
}

func toNode(body any) qlast.Node {
	if n, ok := body.(qlast.Node); ok {
		return n
	}
	return nil
}

// postProcessLeaf implements spec.md §4.6's leaf post-processing: an
// ExpressionField is inlined (strict dialect only); a Field or Property
// leaf is wrapped in a synthetic hidden alias so later passes have a
// stable name to reference.
func (rv *Resolver) postProcessLeaf(f *qlast.Field, cur qltype.Type) (qlast.Expr, error) {
	span := spanOf(f)
	switch t := cur.(type) {
	case *qltype.ExpressionField:
		if rv.dialect != Strict {
			f.SetType(t)
			return f, nil
		}
		return rv.inlineExpressionField(f, t, span)
	case *qltype.Field:
		f.SetType(t)
		rv.ctx.AddNotice(span, "field %s resolved", t.Name)
		return wrapHiddenAlias(f, t.Name, t), nil
	case *qltype.Property:
		f.SetType(t)
		return wrapHiddenAlias(f, propertyAliasName(t), t), nil
	default:
		f.SetType(cur)
		return f, nil
	}
}

// inlineExpressionField substitutes an ExpressionField reference with a
// hidden alias wrapping the schema's stored expression text, resolved
// fresh in the current scope (spec.md §4.6: "the expression's own
// fields get resolved in the current scope, not the schema's").
func (rv *Resolver) inlineExpressionField(f *qlast.Field, ef *qltype.ExpressionField, span token.Span) (qlast.Expr, error) {
	desc := descriptorOf(ef.Owner)
	if desc == nil {
		return nil, qlerr.NewImpossibleAST(span, "expression field %q has no owning descriptor", ef.Name)
	}
	decl, ok := desc.ExpressionField(ef.Name)
	if !ok {
		return nil, qlerr.NewImpossibleAST(span, "expression field %q not declared on %q", ef.Name, desc.Name)
	}
	body, err := parser.ParseExpr(decl.Expr)
	if err != nil {
		return nil, qlerr.NewImpossibleAST(span, "parsing expression field %q: %v", ef.Name, err)
	}
	hidden := qlast.NewAlias(span, ef.Name, body, true)
	resolved, err := rv.resolveAliasExpr(hidden)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func descriptorOf(owner qltype.Type) *catalog.TableDescriptor {
	switch t := owner.(type) {
	case *qltype.Table:
		return t.Descriptor
	case *qltype.LazyTable:
		return t.Descriptor
	case *qltype.TableAlias:
		return descriptorOf(t.Inner)
	default:
		return nil
	}
}

func propertyAliasName(p *qltype.Property) string {
	parts := make([]string, len(p.Chain))
	for i, k := range p.Chain {
		parts[i] = keyString(k)
	}
	base := ""
	switch b := p.Base.(type) {
	case *qltype.Field:
		base = b.Name
	case *qltype.Property:
		base = propertyAliasName(b)
	}
	if base == "" {
		return strings.Join(parts, "__")
	}
	return base + "__" + strings.Join(parts, "__")
}

func wrapHiddenAlias(inner qlast.Expr, name string, t qltype.Type) qlast.Expr {
	span := spanOf(inner)
	alias := qlast.NewAlias(span, name, inner, true)
	alias.SetType(&qltype.FieldAlias{Alias: name, Inner: t, Hidden: true})
	return alias
}
