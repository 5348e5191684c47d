package qlast

import (
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

type stmtBase struct {
	span token.Span
	typ  qltype.Type
}

func (b *stmtBase) Pos() token.Position   { return b.span.Start }
func (b *stmtBase) End() token.Position   { return b.span.End }
func (b *stmtBase) stmtNode()             {}
func (b *stmtBase) exprNode()             {}
func (b *stmtBase) Resolved() bool        { return b.typ != nil }
func (b *stmtBase) Type() qltype.Type     { return b.typ }
func (b *stmtBase) SetType(t qltype.Type) { b.typ = t }

// CTEKind distinguishes a column-level CTE (`WITH x AS (expr)`) from a
// table-level one (`WITH x AS (SELECT ...)`).
type CTEKind int

const (
	CTETable CTEKind = iota
	CTEColumn
)

// WithEntry is one `name AS (body)` entry of a WITH clause, as written
// by the query author. On a resolved SelectQuery, the WithEntry list is
// emptied (step 2 of the §4.4 pipeline: the clone's CTEs field is nulled
// since they are no longer printable) and the definitions instead live
// on the attached qltype.SelectQuery's CTEs map.
type WithEntry struct {
	Name string
	Kind CTEKind
	Body Node // Expr for CTEColumn, *SelectQuery or *SelectUnionQuery for CTETable
}

// SelectQuery is a single SELECT statement. It is both a Stmt (it can
// appear as a top-level query) and an Expr (it can appear as a
// sub-query source inside a JoinExpr or IN-subquery).
type SelectQuery struct {
	stmtBase

	With          []WithEntry // nulled on the resolved clone, per §4.4 step 2
	Distinct      bool
	Select        []Expr // the SELECT list; Asterisk nodes are expanded in place during resolution
	From          *JoinExpr
	ArrayJoin     *ArrayJoin
	Where         Expr
	PreWhere      Expr
	GroupBy       []Expr
	Having        Expr
	OrderBy       []OrderExpr
	LimitBy       []Expr
	Limit         Expr
	Offset        Expr
	LimitWithTies bool
	Settings      map[string]string
	ViewName      string // set when this query is a saved-view expansion
	Windows       map[string]*Window
}

// Window is a named window definition (`WINDOW w AS (...)`) or an
// inline OVER(...) clause's spec.
type Window struct {
	PartitionBy []Expr
	OrderBy     []OrderExpr
}

// OrderExpr is one ORDER BY entry.
type OrderExpr struct {
	Expr Expr
	Desc bool
}

// ArrayJoin is an ARRAY JOIN clause: a left (non-left-join semantics
// unless Left is true) join that introduces new column aliases from
// array expressions.
type ArrayJoin struct {
	Left    bool
	Columns []Expr // each is an Alias(name, expr) pair written by the author
}

// SelectUnionQuery is a chain of SELECTs combined with UNION/UNION ALL/
// INTERSECT/EXCEPT. It introduces no scope of its own; if its first
// branch declares CTEs, those are visible to every branch (pkg/resolve
// pushes them once for the whole union).
type SelectUnionQuery struct {
	stmtBase
	Branches []*SelectQuery
	Combinator string // "UNION", "UNION ALL", "INTERSECT", "EXCEPT"
}

// TableExprKind discriminates what a JoinExpr's Table field holds.
type TableExprKind int

const (
	TableIdentifier TableExprKind = iota // a possibly-dotted identifier naming a catalog table or CTE
	TableSubquery                        // a parenthesised SELECT or union
	TableMacroTag                        // a HogQLX-style macro tag to expand into a table source
	TableFunctionArgs                    // a function-call table, e.g. numbers(10)
)

// JoinExpr is one source in a FROM/JOIN chain. Chained joins are
// represented by NextJoin, matching the original's linked-list shape
// rather than a flat slice, since global-join promotion needs to mutate
// exactly the next link's JoinType.
type JoinExpr struct {
	span token.Span

	TableKind TableExprKind
	Table     Node   // *Field (identifier), *SelectQuery, *SelectUnionQuery, or *HogQLXTag
	TableArgs []Expr // arguments when TableKind == TableFunctionArgs
	Alias     string
	JoinType  string // "", "INNER JOIN", "LEFT JOIN", "GLOBAL JOIN", ...
	Using     []Expr
	On        Expr
	Sample    Expr
	NextJoin  *JoinExpr

	// Type is filled in by pkg/resolve: a qltype.TableKind,
	// *qltype.SelectQueryAlias, or *qltype.SelectView.
	Type qltype.Type
}

func (j *JoinExpr) Pos() token.Position { return j.span.Start }
func (j *JoinExpr) End() token.Position { return j.span.End }

// NewSelectQuery builds an unresolved SelectQuery node at span.
func NewSelectQuery(span token.Span) *SelectQuery {
	return &SelectQuery{stmtBase: stmtBase{span: span}}
}

// NewSelectUnionQuery builds an unresolved union node at span.
func NewSelectUnionQuery(span token.Span, combinator string, branches []*SelectQuery) *SelectUnionQuery {
	return &SelectUnionQuery{stmtBase: stmtBase{span: span}, Combinator: combinator, Branches: branches}
}

// NewJoinExpr builds a join-chain link at span.
func NewJoinExpr(span token.Span, kind TableExprKind, table Node) *JoinExpr {
	return &JoinExpr{span: span, TableKind: kind, Table: table}
}

// Clone returns a shallow structural copy of the join-chain link,
// suitable as the starting point for the clone-and-annotate pass
// (nested Table/NextJoin/On/Using nodes are still shared and must be
// cloned by the caller if they themselves need independent mutation).
func (j *JoinExpr) Clone() *JoinExpr {
	cp := *j
	return &cp
}
