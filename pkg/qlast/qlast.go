// Package qlast defines the AST node shapes the resolver consumes and
// produces: an untyped tree on input, the same shapes carrying a
// resolved qltype.Type on output. Node variants follow the
// Node/Expr/Stmt marker-interface idiom the teacher uses in
// pkg/core/ast.go, generalised from a single SQL dialect's AST to
// HogQL's shape (lambdas, property access, array/tuple access, macro
// tags, saved-view joins).
package qlast

import (
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
	End() token.Position
}

// Expr is implemented by every expression node. Resolved() / SetType()
// let the resolver enforce invariant 1 (every returned Expr carries a
// non-nil type, and re-resolving an already-typed node is an error).
type Expr interface {
	Node
	exprNode()
	Resolved() bool
	Type() qltype.Type
	SetType(qltype.Type)
}

// Stmt is implemented by statement-level nodes (currently just the two
// SELECT shapes, which are also valid expressions when used as a
// sub-query source).
type Stmt interface {
	Node
	stmtNode()
}

// exprBase factors out the position/type bookkeeping every Expr needs.
type exprBase struct {
	span token.Span
	typ  qltype.Type
}

func (b *exprBase) Pos() token.Position { return b.span.Start }
func (b *exprBase) End() token.Position { return b.span.End }
func (b *exprBase) exprNode()           {}
func (b *exprBase) Resolved() bool      { return b.typ != nil }
func (b *exprBase) Type() qltype.Type   { return b.typ }
func (b *exprBase) SetType(t qltype.Type) {
	b.typ = t
}

// Span returns the node's source span.
func (b *exprBase) Span() token.Span { return b.span }

// newExprBase builds an exprBase at the given span, used by the
// constructors below.
func newExprBase(span token.Span) exprBase { return exprBase{span: span} }

// Field is a dotted-identifier chain as written by the query author,
// e.g. `events.properties.foo`.
type Field struct {
	exprBase
	Chain []string
}

func NewField(span token.Span, chain []string) *Field {
	return &Field{exprBase: newExprBase(span), Chain: chain}
}

// Constant is a literal value: number, string, boolean, null, array, or
// tuple, classified by pkg/qltype.ClassifyConstant.
type Constant struct {
	exprBase
	Value any
}

func NewConstant(span token.Span, value any) *Constant {
	return &Constant{exprBase: newExprBase(span), Value: value}
}

// Alias is an `expr AS name` binding, or a resolver-synthesised hidden
// alias wrapping a resolved Field/Property/ExpressionField leaf.
type Alias struct {
	exprBase
	AliasName string
	Expr      Expr
	Hidden    bool
}

func NewAlias(span token.Span, name string, expr Expr, hidden bool) *Alias {
	return &Alias{exprBase: newExprBase(span), AliasName: name, Expr: expr, Hidden: hidden}
}

// Call is a function invocation, `name(args...)` with optional
// parameters (`name(params)(args)`, used by parametrised aggregate
// functions).
type Call struct {
	exprBase
	Name     string
	Args     []Expr
	Params   []Expr
	Distinct bool
}

func NewCall(span token.Span, name string, args, params []Expr) *Call {
	return &Call{exprBase: newExprBase(span), Name: name, Args: args, Params: params}
}

// Lambda is `x, y -> expr`.
type Lambda struct {
	exprBase
	Params []string
	Body   Expr
}

func NewLambda(span token.Span, params []string, body Expr) *Lambda {
	return &Lambda{exprBase: newExprBase(span), Params: params, Body: body}
}

// LogicalOp is the operator of an And/Or/Not node.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalNot
)

// Logical is an AND/OR/NOT expression; its type is always Boolean once
// resolved.
type Logical struct {
	exprBase
	Op       LogicalOp
	Operands []Expr // one operand for Not, two-or-more for And/Or
}

func NewLogical(span token.Span, op LogicalOp, operands []Expr) *Logical {
	return &Logical{exprBase: newExprBase(span), Op: op, Operands: operands}
}

// CompareOp is the operator of a CompareOperation node. Global variants
// are never produced by the parser; only global-join/global-IN
// promotion (pkg/resolve) ever sets them.
type CompareOp int

const (
	CompareEq CompareOp = iota
	CompareNotEq
	CompareLt
	CompareLtEq
	CompareGt
	CompareGtEq
	CompareLike
	CompareNotLike
	CompareIn
	CompareNotIn
	CompareGlobalIn
	CompareGlobalNotIn
	CompareInCohort
	CompareNotInCohort
)

// CompareOperation is a binary comparison, including membership tests
// that the resolver may rewrite in place (cohort expansion, global-IN
// promotion).
type CompareOperation struct {
	exprBase
	Op    CompareOp
	Left  Expr
	Right Expr
}

func NewCompareOperation(span token.Span, op CompareOp, left, right Expr) *CompareOperation {
	return &CompareOperation{exprBase: newExprBase(span), Op: op, Left: left, Right: right}
}

// AccessKind distinguishes array-index access from tuple-index access;
// the resolver treats both uniformly as "access" nodes that may fold
// into a base Field/Property's chain.
type AccessKind int

const (
	AccessArray AccessKind = iota
	AccessTuple
)

// Access is `base[index]` (array) or `base.N` (tuple, 1-based per
// convention). When Base resolves to a JSON-typed Field or a Property,
// the resolver folds this access into Base's Property chain: the Access
// node is kept with Index cleared, typed as the extended Property, and
// wrapped in a hidden alias - see pkg/resolve's resolveAccess.
type Access struct {
	exprBase
	Kind  AccessKind
	Base  Expr
	Index Expr // nil once folded into Base's Property chain
}

func NewAccess(span token.Span, kind AccessKind, base, index Expr) *Access {
	return &Access{exprBase: newExprBase(span), Kind: kind, Base: base, Index: index}
}

// Asterisk is a bare `*`, or a qualified `table.*`.
type Asterisk struct {
	exprBase
	Qualifier string // empty for a bare `*`
}

func NewAsterisk(span token.Span, qualifier string) *Asterisk {
	return &Asterisk{exprBase: newExprBase(span), Qualifier: qualifier}
}

// HogQLXTag is the XML-like tag literal HogQL accepts as sugar for a
// function call, e.g. `<Sparkline data={x} />`. pkg/macro expands it
// into a Call before the main resolution pass runs.
type HogQLXTag struct {
	exprBase
	TagName    string
	Attributes map[string]Expr
}

func NewHogQLXTag(span token.Span, name string, attrs map[string]Expr) *HogQLXTag {
	return &HogQLXTag{exprBase: newExprBase(span), TagName: name, Attributes: attrs}
}
