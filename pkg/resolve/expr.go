package resolve

import (
	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// resolveExpr dispatches on the concrete Expr variant, the entry point
// every other resolver file (field.go, join.go, select.go) calls to
// resolve a sub-expression in the current scope.
func (rv *Resolver) resolveExpr(e qlast.Expr) (qlast.Expr, error) {
	switch n := e.(type) {
	case *qlast.Field:
		return rv.resolveFieldExpr(n)
	case *qlast.Constant:
		return rv.resolveConstant(n)
	case *qlast.Alias:
		return rv.resolveAliasExpr(n)
	case *qlast.Call:
		return rv.resolveCall(n)
	case *qlast.Lambda:
		return rv.resolveLambda(n)
	case *qlast.Logical:
		return rv.resolveLogical(n)
	case *qlast.CompareOperation:
		return rv.resolveCompareOperation(n)
	case *qlast.Access:
		return rv.resolveAccess(n)
	case *qlast.Asterisk:
		return rv.resolveAsteriskExpr(n)
	case *qlast.HogQLXTag:
		return rv.resolveHogQLXTag(n)
	case *qlast.SelectQuery:
		resolved, err := rv.resolveSelectQuery(n)
		if err != nil {
			return nil, err
		}
		return resolved.(qlast.Expr), nil
	case *qlast.SelectUnionQuery:
		resolved, err := rv.resolveSelectUnion(n)
		if err != nil {
			return nil, err
		}
		return resolved.(qlast.Expr), nil
	default:
		return nil, qlerr.NewImpossibleAST(spanOf(e), "resolve_types: unsupported expression %T", e)
	}
}

// resolveConstant classifies a literal's Go value via
// qltype.ClassifyConstant, the already-implemented C3 component.
func (rv *Resolver) resolveConstant(c *qlast.Constant) (qlast.Expr, error) {
	if err := requireUnresolved(c); err != nil {
		return nil, err
	}
	t, err := qltype.ClassifyConstant(c.Value, spanOf(c))
	if err != nil {
		return nil, err
	}
	c.SetType(t)
	return c, nil
}

// resolveAliasExpr resolves the aliased expression and registers the
// binding in the current scope (spec.md §4.7: "fail on empty alias,
// fail on visible collision in the current scope; visit expression;
// register if not hidden"). A hidden alias never overwrites a visible
// one of the same name, but a visible alias always overwrites a hidden
// one - invariant 2, spec.md §4.4 step 5's dominance rule applied here
// too since this is where author-written AS bindings become visible to
// later SELECT-list items in the same query.
func (rv *Resolver) resolveAliasExpr(a *qlast.Alias) (qlast.Expr, error) {
	if err := requireUnresolved(a); err != nil {
		return nil, err
	}
	span := spanOf(a)
	if a.AliasName == "" {
		return nil, qlerr.NewImpossibleAST(span, "alias must have a name")
	}

	scope := rv.scopes.current()
	if scope != nil && !a.Hidden {
		if existing, ok := scope.Aliases[a.AliasName]; ok && !existing.Hidden {
			return nil, qlerr.NewQueryError(span, "alias %q is already defined in this scope", a.AliasName)
		}
	}

	resolved, err := rv.resolveExpr(a.Expr)
	if err != nil {
		return nil, err
	}
	a.Expr = resolved
	fa := &qltype.FieldAlias{Alias: a.AliasName, Inner: resolved.Type(), Hidden: a.Hidden}
	a.SetType(fa)

	if scope != nil {
		existing, ok := scope.Aliases[a.AliasName]
		if !a.Hidden || !ok || existing.Hidden {
			scope.Aliases[a.AliasName] = fa
		}
	}
	return a, nil
}

// resolveLambda pushes a fresh child scope seeding each parameter as a
// LambdaArgument, resolves the body, then pops. Lambdas have no tables
// of their own; name lookup for anything but the bound parameters falls
// through to the Parent chain (spec.md §4.6's "a lambda body may also
// reference its enclosing scope's columns").
func (rv *Resolver) resolveLambda(l *qlast.Lambda) (qlast.Expr, error) {
	if err := requireUnresolved(l); err != nil {
		return nil, err
	}
	parent := rv.scopes.current()
	child := rv.scopes.pushLambda(parent)
	for _, p := range l.Params {
		child.Aliases[p] = &qltype.FieldAlias{Alias: p, Inner: &qltype.LambdaArgument{Name: p}}
	}
	body, err := rv.resolveExpr(l.Body)
	rv.scopes.pop()
	if err != nil {
		return nil, err
	}
	l.Body = body
	l.SetType(body.Type())
	return l, nil
}

// resolveLogical resolves every operand; the node's own type is always
// Boolean once resolved, regardless of operand types (spec.md §4's
// "AND/OR/NOT always produce Boolean").
func (rv *Resolver) resolveLogical(lg *qlast.Logical) (qlast.Expr, error) {
	if err := requireUnresolved(lg); err != nil {
		return nil, err
	}
	for i, op := range lg.Operands {
		resolved, err := rv.resolveExpr(op)
		if err != nil {
			return nil, err
		}
		lg.Operands[i] = resolved
	}
	lg.SetType(&qltype.Boolean{})
	return lg, nil
}

// resolveCompareOperation resolves both sides, then applies the two
// comparison-site rewrites spec.md §5 describes: cohort-membership
// expansion (`x IN COHORT k`) and global-join/global-IN promotion. Both
// rewrites happen after the operands are fully typed, since they need
// to inspect the left/right types to decide whether they apply.
func (rv *Resolver) resolveCompareOperation(c *qlast.CompareOperation) (qlast.Expr, error) {
	if err := requireUnresolved(c); err != nil {
		return nil, err
	}
	left, err := rv.resolveExpr(c.Left)
	if err != nil {
		return nil, err
	}
	c.Left = left

	if c.Op == qlast.CompareInCohort || c.Op == qlast.CompareNotInCohort {
		return rv.resolveCohortMembership(c)
	}

	right, err := rv.resolveExpr(c.Right)
	if err != nil {
		return nil, err
	}
	c.Right = right

	rv.maybePromoteGlobalIn(c)

	c.SetType(&qltype.Boolean{})
	return c, nil
}

// resolveCohortMembership rewrites `x IN COHORT k` / `x NOT IN COHORT k`
// into `x IN (cohort-query k)` when Modifiers.InCohortVia is
// CohortSubquery and a CohortExpander is configured; otherwise the
// comparison is left as-is for a later join-based rewrite to handle.
func (rv *Resolver) resolveCohortMembership(c *qlast.CompareOperation) (qlast.Expr, error) {
	span := spanOf(c)
	if rv.ctx.Modifiers.InCohortVia != CohortSubquery || rv.ctx.Cohorts == nil {
		right, err := rv.resolveExpr(c.Right)
		if err != nil {
			return nil, err
		}
		c.Right = right
		c.SetType(&qltype.Boolean{})
		return c, nil
	}

	sub, err := rv.ctx.Cohorts.ExpandCohort(rv.ctx.TeamID, c.Right)
	if err != nil {
		return nil, qlerr.NewQueryError(span, "expanding cohort: %v", err)
	}
	resolvedSub, err := rv.resolveSelectQuery(sub)
	if err != nil {
		return nil, err
	}
	subExpr := resolvedSub.(qlast.Expr)
	c.Right = subExpr
	if c.Op == qlast.CompareInCohort {
		c.Op = qlast.CompareIn
	} else {
		c.Op = qlast.CompareNotIn
	}
	c.SetType(&qltype.Boolean{})
	return c, nil
}

// maybePromoteGlobalIn implements spec.md §4.7's comparison-site
// rewrite: IN/NOT IN is promoted to its GLOBAL variant when the left
// operand is a column of the events catalog table and the right operand
// is a SELECT whose FROM resolves to an s3 external table. This rewrite
// only ever upgrades CompareIn/CompareNotIn; it never downgrades, and
// never touches any other operator.
func (rv *Resolver) maybePromoteGlobalIn(c *qlast.CompareOperation) {
	if c.Op != qlast.CompareIn && c.Op != qlast.CompareNotIn {
		return
	}
	leftKind, leftOK := fieldTableKind(c.Left)
	if !leftOK || leftKind != catalog.Events {
		return
	}
	if !rightIsSelectFromS3(c.Right) {
		return
	}
	if c.Op == qlast.CompareIn {
		c.Op = qlast.CompareGlobalIn
	} else {
		c.Op = qlast.CompareGlobalNotIn
	}
}

// rightIsSelectFromS3 reports whether e's resolved type is a SelectQuery
// (or an alias/view/union wrapping one) whose sole FROM source is an
// s3-kind catalog table.
func rightIsSelectFromS3(e qlast.Expr) bool {
	if e == nil {
		return false
	}
	sq := unwrapSelectQuery(e.Type())
	if sq == nil || len(sq.Tables) != 1 {
		return false
	}
	for _, t := range sq.Tables {
		desc := descriptorOf(t)
		if desc != nil && desc.Kind == catalog.S3 {
			return true
		}
	}
	return false
}

func unwrapSelectQuery(t qltype.Type) *qltype.SelectQuery {
	switch v := t.(type) {
	case *qltype.SelectQuery:
		return v
	case *qltype.SelectQueryAlias:
		return unwrapSelectQuery(v.Inner)
	case *qltype.SelectView:
		return unwrapSelectQuery(v.Inner)
	case *qltype.SelectUnion:
		if len(v.Branches) == 0 {
			return nil
		}
		return v.Branches[0]
	default:
		return nil
	}
}

func fieldTableKind(e qlast.Expr) (catalog.TableKind, bool) {
	f, ok := unwrapToField(e)
	if !ok {
		return 0, false
	}
	desc := descriptorOf(f.Owner)
	if desc == nil {
		return 0, false
	}
	return desc.Kind, true
}

func unwrapToField(e qlast.Expr) (*qltype.Field, bool) {
	switch v := e.(type) {
	case *qlast.Alias:
		return unwrapToField(v.Expr)
	default:
		if v == nil {
			return nil, false
		}
		if f, ok := v.Type().(*qltype.Field); ok {
			return f, true
		}
		return nil, false
	}
}

// resolveAccess resolves Base, then folds Index into Base's Property
// chain when Base (looking through any FieldAlias wrapper) resolved to
// a JSON-typed Field or an existing Property (spec.md §4's "bracket and
// dotted access are the same operation once a JSON path is entered").
// Index is evaluated for its constant key value via getChild's
// PropertyKey and then cleared; the Access node itself is kept, typed
// as the resulting Property, and wrapped in a hidden alias named after
// the chain (e.g. properties__$browser).
func (rv *Resolver) resolveAccess(a *qlast.Access) (qlast.Expr, error) {
	if err := requireUnresolved(a); err != nil {
		return nil, err
	}
	span := spanOf(a)
	base, err := rv.resolveExpr(a.Base)
	if err != nil {
		return nil, err
	}
	a.Base = base

	baseType := base.Type()
	for fa, ok := baseType.(*qltype.FieldAlias); ok; fa, ok = baseType.(*qltype.FieldAlias) {
		baseType = fa.Inner
	}
	if qltype.IsJSONPath(baseType) {
		key, err := accessKey(a, span)
		if err != nil {
			return nil, err
		}
		next, err := rv.getChild(baseType, key, span)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, qlerr.NewResolutionError(span, "cannot resolve property access")
		}
		a.Index = nil
		a.SetType(next)
		if p, ok := next.(*qltype.Property); ok {
			return wrapHiddenAlias(a, propertyAliasName(p), p), nil
		}
		return a, nil
	}

	index, err := rv.resolveExpr(a.Index)
	if err != nil {
		return nil, err
	}
	a.Index = index
	switch t := base.Type().(type) {
	case *qltype.Array:
		a.SetType(t.Item)
	case *qltype.Tuple:
		n, ok := constIntValue(a.Index)
		if !ok || n < 1 || n > len(t.Items) {
			return nil, qlerr.NewResolutionError(span, "tuple index out of range")
		}
		a.SetType(t.Items[n-1])
	default:
		return nil, qlerr.NewResolutionError(span, "cannot index into %T", base.Type())
	}
	return a, nil
}

func accessKey(a *qlast.Access, span token.Span) (qltype.PropertyKey, error) {
	if n, ok := constIntValue(a.Index); ok {
		return qltype.PropertyKey{Int: n, IsInt: true}, nil
	}
	if c, ok := a.Index.(*qlast.Constant); ok {
		if s, ok := c.Value.(string); ok {
			return qltype.PropertyKey{Str: s}, nil
		}
	}
	return qltype.PropertyKey{}, qlerr.NewResolutionError(span, "property access key must be a constant")
}

func constIntValue(e qlast.Expr) (int, bool) {
	c, ok := e.(*qlast.Constant)
	if !ok {
		return 0, false
	}
	switch v := c.Value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// resolveAsteriskExpr resolves a bare or qualified `*` used outside a
// SELECT list (e.g. `count(*)`) to an Asterisk type; full expansion into
// individual columns happens only for a SELECT-list asterisk, in
// select.go.
func (rv *Resolver) resolveAsteriskExpr(a *qlast.Asterisk) (qlast.Expr, error) {
	if err := requireUnresolved(a); err != nil {
		return nil, err
	}
	span := spanOf(a)
	scope := rv.scopes.current()
	if scope == nil {
		return nil, qlerr.NewImpossibleAST(span, "asterisk outside a SELECT")
	}
	if a.Qualifier == "" {
		owner, err := soleTableInScope(scope, span)
		if err != nil {
			return nil, err
		}
		a.SetType(&qltype.Asterisk{Owner: owner})
		return a, nil
	}
	owner, err := rv.resolveAsteriskOwner(scope, a.Qualifier, span)
	if err != nil {
		return nil, err
	}
	a.SetType(&qltype.Asterisk{Owner: owner})
	return a, nil
}

// soleTableInScope implements spec.md §4.6 step 2 and §7's "`*` with
// zero or multiple tables" QueryError: a bare `*` requires exactly one
// table registered in the current scope, named or anonymous.
func soleTableInScope(scope *qltype.SelectQuery, span token.Span) (qltype.Type, error) {
	var sole qltype.Type
	count := 0
	for _, t := range scope.Tables {
		sole = t
		count++
	}
	for _, t := range scope.AnonymousTables {
		sole = t
		count++
	}
	if count != 1 {
		return nil, qlerr.NewQueryError(span, "asterisk requires exactly one table in scope, found %d", count)
	}
	return sole, nil
}

func (rv *Resolver) resolveAsteriskOwner(scope *qltype.SelectQuery, qualifier string, span token.Span) (qltype.Type, error) {
	if t, ok := scope.Tables[qualifier]; ok {
		return t, nil
	}
	if alias, ok := scope.Aliases[qualifier]; ok {
		return alias.Inner, nil
	}
	return nil, qlerr.NewResolutionError(span, "unknown table qualifier %q", qualifier)
}

// resolveHogQLXTag expands a macro tag via Context.Macros, then resolves
// whatever node the expansion produced (spec.md §4.3 case 1: "HogQLX
// tags are expanded into a Call before normal resolution begins").
func (rv *Resolver) resolveHogQLXTag(tag *qlast.HogQLXTag) (qlast.Expr, error) {
	if err := requireUnresolved(tag); err != nil {
		return nil, err
	}
	span := spanOf(tag)
	if rv.ctx.Macros == nil {
		return nil, qlerr.NewQueryError(span, "tag <%s> used but no macro expander is configured", tag.TagName)
	}
	expanded, err := rv.ctx.Macros.ExpandTag(rv.ctx.TeamID, tag)
	if err != nil {
		return nil, qlerr.NewQueryError(span, "expanding tag <%s>: %v", tag.TagName, err)
	}
	expr, ok := expanded.(qlast.Expr)
	if !ok {
		return nil, qlerr.NewImpossibleAST(span, "tag <%s> expanded to a non-expression node", tag.TagName)
	}
	return rv.resolveExpr(expr)
}

// resolveCall resolves every argument and parameter, then looks up the
// function's signature (spec.md §4.7): a macro dispatch first (cohort
// literal calls, matchesAction, sparkline), falling through to the
// configured FuncRegistry for ordinary functions, and finally an
// untyped Call when neither is configured.
func (rv *Resolver) resolveCall(call *qlast.Call) (qlast.Expr, error) {
	if err := requireUnresolved(call); err != nil {
		return nil, err
	}
	span := spanOf(call)

	if rv.ctx.Macros != nil {
		expanded, ok, err := rv.ctx.Macros.ExpandCall(rv.ctx.TeamID, call)
		if err != nil {
			return nil, qlerr.NewQueryError(span, "expanding call %s: %v", call.Name, err)
		}
		if ok {
			return rv.resolveExpr(expanded)
		}
	}
	if call.Name == "matchesAction" && rv.ctx.Actions != nil {
		expanded, err := rv.ctx.Actions.ExpandMatchesAction(rv.ctx.TeamID, call)
		if err != nil {
			return nil, qlerr.NewQueryError(span, "expanding matchesAction: %v", err)
		}
		return rv.resolveExpr(expanded)
	}

	for i, arg := range call.Args {
		resolved, err := rv.resolveExpr(arg)
		if err != nil {
			return nil, err
		}
		call.Args[i] = resolved
	}
	for i, p := range call.Params {
		resolved, err := rv.resolveExpr(p)
		if err != nil {
			return nil, err
		}
		call.Params[i] = resolved
	}

	argTypes := make([]qltype.Type, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = a.Type()
	}

	if rv.ctx.Funcs != nil {
		sig, ok := rv.ctx.Funcs.Lookup(call.Name)
		if ok {
			if err := validateFunctionArgs(call, sig, span); err != nil {
				return nil, err
			}
			call.SetType(&qltype.Call{Name: call.Name, ArgTypes: argTypes, ParamTypes: sig.ParamTypes, ReturnType: sig.ReturnType})
			return call, nil
		}
	}

	call.SetType(&qltype.Call{Name: call.Name, ArgTypes: argTypes, ReturnType: &qltype.Unknown{}})
	return call, nil
}

// validateFunctionArgs checks arity and const-argument requirements
// against a registered FuncSignature (SPEC_FULL §3's
// "validate_function_args").
func validateFunctionArgs(call *qlast.Call, sig FuncSignature, span token.Span) error {
	n := len(call.Args)
	if n < sig.MinArgs || (sig.MaxArgs >= 0 && n > sig.MaxArgs) {
		return qlerr.NewQueryError(span, "function %q takes between %d and %d arguments, got %d", call.Name, sig.MinArgs, sig.MaxArgs, n)
	}
	for _, idx := range sig.RequireConstArg {
		if idx < 0 || idx >= n {
			continue
		}
		if _, ok := call.Args[idx].(*qlast.Constant); !ok {
			return qlerr.NewQueryError(span, "function %q requires argument %d to be a constant", call.Name, idx+1)
		}
	}
	return nil
}
