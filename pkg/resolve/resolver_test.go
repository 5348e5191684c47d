package resolve

import (
	"context"
	"testing"

	"github.com/lakequery/hogql/internal/testutil"
	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/lakequery/hogql/pkg/parser"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/stretchr/testify/require"
)

// resolveSQL parses src and resolves it against the sample schema
// (events/s3_table/view v, spec.md §8's worked-example fixture) under
// dialect, returning the resolved node.
func resolveSQL(t *testing.T, src string, dialect Dialect) (qlast.Node, *Context) {
	t.Helper()
	node, err := parser.ParseSelect(src)
	require.NoError(t, err, "parsing %q", src)
	ctx := NewContext(catalog.SampleSchema())
	ctx.Logger = testutil.NewTestLogger(t)
	resolved, err := ResolveTypes(node, ctx, dialect)
	require.NoError(t, err, "resolving %q", src)
	return resolved, ctx
}

func mustSelectQuery(t *testing.T, n qlast.Node) *qlast.SelectQuery {
	t.Helper()
	sq, ok := n.(*qlast.SelectQuery)
	require.True(t, ok, "expected *qlast.SelectQuery, got %T", n)
	return sq
}

func scopeOf(t *testing.T, sq *qlast.SelectQuery) *qltype.SelectQuery {
	t.Helper()
	scope, ok := sq.Type().(*qltype.SelectQuery)
	require.True(t, ok, "expected SelectQuery type, got %T", sq.Type())
	return scope
}

// --- S1: plain SELECT, no rewrites ---

func TestS1PlainSelect(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT event FROM events WHERE event = '$pageview'`, Strict)
	sq := mustSelectQuery(t, resolved)
	scope := scopeOf(t, sq)
	require.Len(t, scope.Columns, 1)
	require.Equal(t, "event", scope.Columns[0].Name)
	// A bare column leaf is wrapped in a hidden alias (spec.md §4.6's
	// leaf post-processing), so the exported column type is a
	// FieldAlias wrapping the underlying Field, not the Field itself.
	fa, ok := scope.Columns[0].Type.(*qltype.FieldAlias)
	require.True(t, ok)
	require.True(t, fa.Hidden)
	_, ok = fa.Inner.(*qltype.Field)
	require.True(t, ok)
	require.NotNil(t, sq.Where)
	require.True(t, sq.Where.Resolved())
}

// --- S2: global-join promotion ---

func TestS2GlobalJoinPromotion(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT e.* FROM events e JOIN s3_table x ON e.id = x.id`, Strict)
	sq := mustSelectQuery(t, resolved)
	require.Equal(t, "GLOBAL JOIN", sq.From.NextJoin.JoinType)

	scope := scopeOf(t, sq)
	names := make([]string, len(scope.Columns))
	for i, c := range scope.Columns {
		names[i] = c.Name
	}
	require.Equal(t, []string{"id", "event", "properties", "start", "end"}, names)
}

func TestGlobalJoinPromotionRequiresEventsOuter(t *testing.T) {
	// s3_table as the outer source: no promotion, since the rewrite only
	// fires when the *current* (outer) source is the events table.
	resolved, _ := resolveSQL(t, `SELECT x.id FROM s3_table x JOIN events e ON e.id = x.id`, Strict)
	sq := mustSelectQuery(t, resolved)
	require.NotEqual(t, "GLOBAL JOIN", sq.From.NextJoin.JoinType)
}

// --- S3: CTE inlining ---

func TestS3CTEInlinedIntoFrom(t *testing.T) {
	resolved, _ := resolveSQL(t, `WITH c AS (SELECT event FROM events) SELECT event FROM c`, Strict)
	sq := mustSelectQuery(t, resolved)
	scope := scopeOf(t, sq)
	require.Len(t, scope.Columns, 1)
	require.Equal(t, "event", scope.Columns[0].Name)
	// The clone's own With clause is nulled once CTEs move into the type.
	require.Nil(t, sq.With)
}

// --- S4: JSON path folding ---

func TestS4JSONPathFolding(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT properties['$browser'] FROM events`, Strict)
	sq := mustSelectQuery(t, resolved)
	require.Len(t, sq.Select, 1)

	alias, ok := sq.Select[0].(*qlast.Alias)
	require.True(t, ok, "expected hidden alias wrapping the folded property, got %T", sq.Select[0])
	require.True(t, alias.Hidden)
	require.Equal(t, "properties__$browser", alias.AliasName)

	prop, ok := alias.Expr.Type().(*qltype.Property)
	require.True(t, ok, "expected *qltype.Property, got %T", alias.Expr.Type())
	require.Len(t, prop.Chain, 1)
	require.Equal(t, "$browser", prop.Chain[0].Str)

	base, ok := prop.Base.(*qltype.Field)
	require.True(t, ok)
	require.Equal(t, "properties", base.Name)
}

// --- S5: saved-view expansion ---

func TestS5SavedViewExpansion(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT event FROM v`, Strict)
	sq := mustSelectQuery(t, resolved)
	scope := scopeOf(t, sq)
	require.Len(t, scope.Columns, 1)
	require.Equal(t, "event", scope.Columns[0].Name)

	view, ok := sq.From.Type.(*qltype.SelectView)
	require.True(t, ok, "expected *qltype.SelectView, got %T", sq.From.Type)
	require.Equal(t, "v", view.ViewName)
}

// --- S6: strict vs lenient on an unresolvable identifier ---

func TestS6StrictFailsOnUnresolvedField(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT nonexistent FROM events`)
	require.NoError(t, err)
	ctx := NewContext(catalog.SampleSchema())
	_, err = ResolveTypes(node, ctx, Strict)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nonexistent")
}

func TestS6LenientRecordsDiagnosticAndUnresolvedField(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT nonexistent FROM events`)
	require.NoError(t, err)
	ctx := NewContext(catalog.SampleSchema())
	resolved, err := ResolveTypes(node, ctx, Lenient)
	require.NoError(t, err)
	require.NotEmpty(t, ctx.Errors)
	require.Contains(t, ctx.Errors[0].Message, "nonexistent")

	sq := mustSelectQuery(t, resolved)
	require.Len(t, sq.Select, 1)
	field, ok := sq.Select[0].(*qlast.Field)
	require.True(t, ok, "expected a bare *qlast.Field carrying UnresolvedField, got %T", sq.Select[0])
	uf, ok := field.Type().(*qltype.UnresolvedField)
	require.True(t, ok, "expected *qltype.UnresolvedField, got %T", field.Type())
	require.Equal(t, "nonexistent", uf.Name)
}

// --- Property 1: idempotence guard ---

func TestIdempotenceGuardRejectsReResolve(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT event FROM events`)
	require.NoError(t, err)
	ctx := NewContext(catalog.SampleSchema())
	resolved, err := ResolveTypes(node, ctx, Strict)
	require.NoError(t, err)

	_, err = ResolveTypes(resolved, NewContext(catalog.SampleSchema()), Strict)
	require.Error(t, err, "re-resolving an already-typed node must fail")
	require.Contains(t, err.Error(), "already resolved")
}

func TestIdempotenceGuardAllowsFreshClone(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT event FROM events`)
	require.NoError(t, err)
	ctx := NewContext(catalog.SampleSchema())
	_, err = ResolveTypes(node, ctx, Strict)
	require.NoError(t, err)

	// A second, independent parse of the same source text is an
	// unresolved tree and must resolve cleanly.
	fresh, err := parser.ParseSelect(`SELECT event FROM events`)
	require.NoError(t, err)
	_, err = ResolveTypes(fresh, NewContext(catalog.SampleSchema()), Strict)
	require.NoError(t, err)
}

// --- Property 2: total typing ---

func TestTotalTypingEveryExprHasType(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT event, properties['x'] AS p FROM events WHERE event = 'x' ORDER BY event LIMIT 10`, Strict)
	sq := mustSelectQuery(t, resolved)
	for _, e := range sq.Select {
		require.True(t, e.Resolved(), "select item %T not resolved", e)
	}
	require.True(t, sq.Where.Resolved())
	require.True(t, sq.Limit.Resolved())
	for _, o := range sq.OrderBy {
		require.True(t, o.Expr.Resolved())
	}
}

// --- Property 3: asterisk expansion ---

func TestAsteriskExpansionMatchesTableColumns(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT * FROM events`, Strict)
	sq := mustSelectQuery(t, resolved)
	scope := scopeOf(t, sq)
	names := make([]string, len(scope.Columns))
	for i, c := range scope.Columns {
		names[i] = c.Name
	}
	require.Equal(t, []string{"id", "event", "properties", "start", "end"}, names)
}

// --- Property 4: asterisk ambiguity ---

func TestBareAsteriskFailsWithTwoTables(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT * FROM events a JOIN events b ON a.id = b.id`)
	require.NoError(t, err)
	_, err = ResolveTypes(node, NewContext(catalog.SampleSchema()), Strict)
	require.Error(t, err)
}

func TestQualifiedAsteriskSucceedsWithTwoTables(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT a.* FROM events a JOIN events b ON a.id = b.id`, Strict)
	sq := mustSelectQuery(t, resolved)
	scope := scopeOf(t, sq)
	require.Len(t, scope.Columns, 5)
}

// --- Property 5: alias shadowing ---

func TestVisibleAliasOverridesHiddenRegardlessOfOrder(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT id, id AS id FROM events`, Strict)
	sq := mustSelectQuery(t, resolved)
	scope := scopeOf(t, sq)
	alias, ok := scope.Aliases["id"]
	require.True(t, ok)
	require.False(t, alias.Hidden, "a later visible alias must win over the earlier hidden one")
}

func TestRedefiningVisibleAliasFails(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT id AS x, event AS x FROM events`)
	require.NoError(t, err)
	_, err = ResolveTypes(node, NewContext(catalog.SampleSchema()), Strict)
	require.Error(t, err)
	require.Contains(t, err.Error(), "x")
}

// --- Property 6: CTE cycle guard ---

func TestCTECycleGuard(t *testing.T) {
	node, err := parser.ParseSelect(`WITH r AS (SELECT * FROM r) SELECT * FROM r`)
	require.NoError(t, err)
	rv := New(NewContext(catalog.SampleSchema()), Strict)
	rv.MaxCTEExpansions = 5
	_, err = rv.Resolve(node)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CTE expansion")
}

// --- Property 7: view depth guard ---

func TestViewDepthGuard(t *testing.T) {
	db := catalog.NewMemoryDatabase()
	db.Register(&catalog.TableDescriptor{
		Name: "events", Kind: catalog.Events,
		Columns: []catalog.Column{{Name: "id", Kind: catalog.ColumnString}},
	})
	db.Register(&catalog.TableDescriptor{Name: "v1", Kind: catalog.SavedQuery, Query: "SELECT id FROM events"})
	db.Register(&catalog.TableDescriptor{Name: "v2", Kind: catalog.SavedQuery, Query: "SELECT id FROM v1"})
	db.Register(&catalog.TableDescriptor{Name: "v3", Kind: catalog.SavedQuery, Query: "SELECT id FROM v2"})

	node, err := parser.ParseSelect(`SELECT id FROM v3`)
	require.NoError(t, err)
	ctx := NewContext(db)
	ctx.MaxViewDepth = 2
	_, err = ResolveTypes(node, ctx, Strict)
	require.Error(t, err)
	require.Contains(t, err.Error(), "depth")
}

// --- Property 9 (duplicate of S2, distinct query shape) / Property 10: global-IN promotion ---

func TestGlobalInPromotion(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT id FROM events WHERE id IN (SELECT id FROM s3_table)`, Strict)
	sq := mustSelectQuery(t, resolved)
	cmp, ok := sq.Where.(*qlast.CompareOperation)
	require.True(t, ok, "expected *qlast.CompareOperation, got %T", sq.Where)
	require.Equal(t, qlast.CompareGlobalIn, cmp.Op)
}

func TestGlobalNotInPromotion(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT id FROM events WHERE id NOT IN (SELECT id FROM s3_table)`, Strict)
	sq := mustSelectQuery(t, resolved)
	cmp, ok := sq.Where.(*qlast.CompareOperation)
	require.True(t, ok)
	require.Equal(t, qlast.CompareGlobalNotIn, cmp.Op)
}

func TestNoGlobalInPromotionWithoutS3Source(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT id FROM events WHERE id IN (SELECT id FROM events)`, Strict)
	sq := mustSelectQuery(t, resolved)
	cmp, ok := sq.Where.(*qlast.CompareOperation)
	require.True(t, ok)
	require.Equal(t, qlast.CompareIn, cmp.Op)
}

// --- Property 11: cohort rewrite ---

type stubCohortExpander struct {
	calledWith qlast.Expr
}

func (s *stubCohortExpander) ExpandCohort(_ string, cohortID qlast.Expr) (*qlast.SelectQuery, error) {
	s.calledWith = cohortID
	q, err := parser.ParseSelect(`SELECT id FROM events`)
	if err != nil {
		return nil, err
	}
	return q.(*qlast.SelectQuery), nil
}

func TestCohortRewriteViaSubquery(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT id FROM events WHERE id IN COHORT 3`)
	require.NoError(t, err)
	ctx := NewContext(catalog.SampleSchema())
	expander := &stubCohortExpander{}
	ctx.Cohorts = expander
	ctx.Modifiers.InCohortVia = CohortSubquery

	resolved, err := ResolveTypes(node, ctx, Strict)
	require.NoError(t, err)
	sq := mustSelectQuery(t, resolved)
	cmp, ok := sq.Where.(*qlast.CompareOperation)
	require.True(t, ok)
	require.Equal(t, qlast.CompareIn, cmp.Op, "COHORT membership rewrites to a plain IN over the expanded subquery")
	require.NotNil(t, expander.calledWith)
	_, isSubquery := cmp.Right.(*qlast.SelectQuery)
	require.True(t, isSubquery)
}

func TestCohortNotRewrittenUnderLeftJoinMode(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT id FROM events WHERE id IN COHORT 3`)
	require.NoError(t, err)
	ctx := NewContext(catalog.SampleSchema())
	ctx.Modifiers.InCohortVia = CohortLeftJoin

	resolved, err := ResolveTypes(node, ctx, Strict)
	require.NoError(t, err)
	sq := mustSelectQuery(t, resolved)
	cmp, ok := sq.Where.(*qlast.CompareOperation)
	require.True(t, ok)
	require.Equal(t, qlast.CompareInCohort, cmp.Op, "left-join cohort mode leaves the comparison untouched")
}

// --- Property 12: expression-field inlining ---

func TestExpressionFieldInlining(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT e.duration FROM events e`, Strict)
	sq := mustSelectQuery(t, resolved)
	require.Len(t, sq.Select, 1)

	alias, ok := sq.Select[0].(*qlast.Alias)
	require.True(t, ok, "expected the expression field inlined as a hidden alias, got %T", sq.Select[0])
	require.True(t, alias.Hidden)
	require.Equal(t, "duration", alias.AliasName)

	call, ok := alias.Expr.(*qlast.Call)
	require.True(t, ok, "expected `end - start` to parse as a binary Call, got %T", alias.Expr)
	require.Equal(t, "-", call.Name)
	require.Len(t, call.Args, 2)
	for _, arg := range call.Args {
		argAlias, ok := arg.(*qlast.Alias)
		require.True(t, ok, "operand should be wrapped in a hidden alias, got %T", arg)
		require.True(t, argAlias.Hidden)
		innerField, ok := argAlias.Expr.(*qlast.Field)
		require.True(t, ok)
		ft, ok := innerField.Type().(*qltype.Field)
		require.True(t, ok)
		_, isTable := ft.Owner.(*qltype.Table)
		require.True(t, isTable, "operand should resolve against the events table, got %T", ft.Owner)
	}
}

func TestExpressionFieldNotInlinedUnderLenient(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT e.duration FROM events e`, Lenient)
	sq := mustSelectQuery(t, resolved)
	require.Len(t, sq.Select, 1)
	field, ok := sq.Select[0].(*qlast.Field)
	require.True(t, ok, "lenient dialect should not inline, got %T", sq.Select[0])
	_, ok = field.Type().(*qltype.ExpressionField)
	require.True(t, ok)
}

// --- Property 13: JSON path folding (multi-level) ---

func TestJSONPathFoldingMultiLevel(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT properties['x']['y'] FROM events`, Strict)
	sq := mustSelectQuery(t, resolved)
	alias, ok := sq.Select[0].(*qlast.Alias)
	require.True(t, ok)
	prop, ok := alias.Expr.Type().(*qltype.Property)
	require.True(t, ok)
	require.Len(t, prop.Chain, 2)
	require.Equal(t, "x", prop.Chain[0].Str)
	require.Equal(t, "y", prop.Chain[1].Str)
}

// --- Property 14: USING vs ON ordering ---

func TestUsingResolvesAgainstPriorScope(t *testing.T) {
	// USING(id) must resolve unambiguously before t is registered,
	// otherwise "id" would be ambiguous between a and t.
	resolved, _ := resolveSQL(t, `SELECT a.id FROM events a JOIN events t USING (id)`, Strict)
	sq := mustSelectQuery(t, resolved)
	require.Len(t, sq.Select, 1)
	require.True(t, sq.From.NextJoin.Using[0].Resolved())
}

func TestOnResolvesAgainstJustRegisteredTable(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT a.id FROM events a JOIN s3_table t ON a.id = t.id`, Strict)
	sq := mustSelectQuery(t, resolved)
	on, ok := sq.From.NextJoin.On.(*qlast.CompareOperation)
	require.True(t, ok)
	require.True(t, on.Right.Resolved())

	ra, ok := on.Right.(*qlast.Alias)
	require.True(t, ok, "bare field leaf should be wrapped in a hidden alias, got %T", on.Right)
	rf, ok := ra.Expr.(*qlast.Field)
	require.True(t, ok)
	f, ok := rf.Type().(*qltype.Field)
	require.True(t, ok)
	owner, ok := f.Owner.(*qltype.Table)
	require.True(t, ok, "expected *qltype.Table, got %T", f.Owner)
	require.Equal(t, "s3_table", owner.Descriptor.Name)
}

// --- Property 15: lambda scoping ---

func TestLambdaScopingFallsThroughToEnclosingSelect(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT arrayMap(x -> x, id) FROM events`, Strict)
	sq := mustSelectQuery(t, resolved)
	call, ok := sq.Select[0].(*qlast.Call)
	require.True(t, ok)
	lambda, ok := call.Args[0].(*qlast.Lambda)
	require.True(t, ok)
	body, ok := lambda.Body.(*qlast.Field)
	require.True(t, ok)
	_, isLambdaArg := body.Type().(*qltype.LambdaArgument)
	require.True(t, isLambdaArg, "x should resolve to the lambda parameter")
}

func TestLambdaBodyFallsThroughForNonParamNames(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT arrayMap(x -> event, id) FROM events`, Strict)
	sq := mustSelectQuery(t, resolved)
	call, ok := sq.Select[0].(*qlast.Call)
	require.True(t, ok)
	lambda, ok := call.Args[0].(*qlast.Lambda)
	require.True(t, ok)

	// "event" is not a lambda parameter, so resolution falls through to
	// the enclosing SELECT's events table (spec.md §4.2) and the leaf
	// gets wrapped in a hidden alias like any other bare field.
	bodyAlias, ok := lambda.Body.(*qlast.Alias)
	require.True(t, ok, "expected the fallen-through field wrapped in a hidden alias, got %T", lambda.Body)
	require.True(t, bodyAlias.Hidden)
	body, ok := bodyAlias.Expr.(*qlast.Field)
	require.True(t, ok)
	f, ok := body.Type().(*qltype.Field)
	require.True(t, ok, "y-equivalent (event) should fall through to the enclosing select's events table")
	_, isTable := f.Owner.(*qltype.Table)
	require.True(t, isTable)
}

// --- ARRAY JOIN two-pass ordering ---

func TestArrayJoinCanReferenceSelectListAlias(t *testing.T) {
	resolved, _ := resolveSQL(t, `SELECT properties AS p ARRAY JOIN p AS el FROM events`, Strict)
	sq := mustSelectQuery(t, resolved)
	require.NotNil(t, sq.ArrayJoin)
	require.Len(t, sq.ArrayJoin.Columns, 1)
	require.True(t, sq.ArrayJoin.Columns[0].Resolved())
}

// --- Invariant 3 / ARRAY JOIN alias collision ---

func TestArrayJoinAliasCollisionFails(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT id AS el FROM events ARRAY JOIN id AS el`)
	require.NoError(t, err)
	_, err = ResolveTypes(node, NewContext(catalog.SampleSchema()), Strict)
	require.Error(t, err)
}

// --- Ambiguous identifier across two tables ---

func TestAmbiguousIdentifierFails(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT id FROM events a JOIN events b ON a.id = b.id`)
	require.NoError(t, err)
	_, err = ResolveTypes(node, NewContext(catalog.SampleSchema()), Strict)
	require.Error(t, err)
}

// --- Table already joined ---

func TestDuplicateTableAliasFails(t *testing.T) {
	node, err := parser.ParseSelect(`SELECT 1 FROM events e JOIN events e ON e.id = e.id`)
	require.NoError(t, err)
	_, err = ResolveTypes(node, NewContext(catalog.SampleSchema()), Strict)
	require.Error(t, err)
}

// --- Function-call table always wraps in TableAlias ---

func TestFunctionCallTableAlwaysWrapsInTableAlias(t *testing.T) {
	db := catalog.NewMemoryDatabase()
	db.Register(&catalog.TableDescriptor{
		Name: "numbers", Kind: catalog.FunctionCall,
		Columns: []catalog.Column{{Name: "number", Kind: catalog.ColumnInteger}},
	})
	node, err := parser.ParseSelect(`SELECT numbers.number FROM numbers(10)`)
	require.NoError(t, err)
	resolved, err := ResolveTypes(node, NewContext(db), Strict)
	require.NoError(t, err)
	sq := mustSelectQuery(t, resolved)
	_, ok := sq.From.Type.(*qltype.TableAlias)
	require.True(t, ok, "function-call table source must be wrapped in TableAlias even without an explicit alias, got %T", sq.From.Type)
}

// --- Lazy table resolves columns on first use ---

func TestLazyTableResolvesColumnsOnUse(t *testing.T) {
	calls := 0
	db := catalog.NewMemoryDatabase()
	db.Register(catalog.NewLazyDescriptor("lazy_events", func(ctx context.Context) ([]catalog.Column, error) {
		calls++
		return []catalog.Column{{Name: "id", Kind: catalog.ColumnString}}, nil
	}))
	node, err := parser.ParseSelect(`SELECT id FROM lazy_events`)
	require.NoError(t, err)
	resolved, err := ResolveTypes(node, NewContext(db), Strict)
	require.NoError(t, err)
	sq := mustSelectQuery(t, resolved)
	require.Len(t, sq.Select, 1)
	require.Equal(t, 1, calls)
}

// --- Scope pre-seeding (resolve_types' optional `scopes` argument) ---

func TestPreSeededScopeResolvesOuterReference(t *testing.T) {
	outer := qltype.NewSelectQuery(nil)
	outer.Tables["events"] = &qltype.Table{Descriptor: mustDescriptor(t, "events")}

	expr, err := parser.ParseExpr(`events.id`)
	require.NoError(t, err)
	ctx := NewContext(catalog.SampleSchema())
	resolved, err := ResolveTypes(expr, ctx, Strict, outer)
	require.NoError(t, err)
	require.True(t, resolved.(qlast.Expr).Resolved())
}

func mustDescriptor(t *testing.T, name string) *catalog.TableDescriptor {
	t.Helper()
	desc, err := catalog.SampleSchema().GetTable(context.Background(), name)
	require.NoError(t, err)
	return desc
}
