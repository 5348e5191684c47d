// Package resolve is the name-and-type resolver: it walks an untyped
// pkg/qlast tree and produces a new tree in which every expression
// carries a resolved pkg/qltype.Type, every identifier is bound to a
// table column, sub-query column, CTE, lambda parameter, alias, or
// schema-declared expression field, and a handful of semantic rewrites
// (expression-field inlining, CTE/view inlining, asterisk expansion,
// global-join/global-IN promotion, cohort-membership expansion) have
// been applied. It is the direct implementation of spec components
// C2-C7 (pkg/qltype.ClassifyConstant already covers C3, the constant
// classifier, since it lives closest to the types it produces).
package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// Dialect selects whether unresolved identifiers are fatal (Strict) or
// downgraded to an UnresolvedField placeholder plus a recorded
// diagnostic (Lenient).
type Dialect int

const (
	Strict Dialect = iota
	Lenient
)

func (d Dialect) String() string {
	if d == Lenient {
		return "lenient"
	}
	return "strict"
}

// CohortMode selects how `x IN COHORT k` is rewritten.
type CohortMode int

const (
	// CohortSubquery rewrites `x IN COHORT k` into `x IN (cohort-query k)`.
	CohortSubquery CohortMode = iota
	// CohortLeftJoin leaves the comparison untouched; a later join-based
	// rewrite (outside this package) handles cohort membership instead.
	CohortLeftJoin
)

// Modifiers carries the query-level behavior switches spec.md §6 lists
// on context.modifiers.
type Modifiers struct {
	InCohortVia CohortMode
}

// Diagnostic is one error or notice recorded against a source span.
type Diagnostic struct {
	Span    token.Span
	Message string
}

// CohortExpander turns a cohort id expression into the subquery that
// tests membership, per spec.md §6's "expansion macros are pure
// AST->AST transformers provided by the host". Implemented by
// pkg/macro.
type CohortExpander interface {
	ExpandCohort(teamID string, cohortID qlast.Expr) (*qlast.SelectQuery, error)
}

// TagExpander expands a HogQLX-style macro tag (cohort/action/sparkline
// literal calls, or the `<Tag attr={expr} />` XML sugar) into a plain
// AST node before resolution continues, per spec.md §4.3 case 1 and
// §4.7's call-resolution macro dispatch. Implemented by pkg/macro.
type TagExpander interface {
	ExpandTag(teamID string, tag *qlast.HogQLXTag) (qlast.Node, error)
	ExpandCall(teamID string, call *qlast.Call) (qlast.Expr, bool, error)
}

// FuncSignature is a function's declared parameter/return shape, as
// registered by the host's pluggable function-metadata registry
// (spec.md §1's "out of scope... a pluggable registry", implemented by
// pkg/funcreg).
type FuncSignature struct {
	ParamTypes []qltype.Type
	ReturnType qltype.Type
	// MinArgs/MaxArgs bound arity for validate_function_args (SPEC_FULL
	// §3); MaxArgs < 0 means unbounded.
	MinArgs int
	MaxArgs int
	// RequireConstArg lists argument indices that must be literal
	// constants (e.g. a format-string argument), also checked during
	// call resolution.
	RequireConstArg []int
}

// FuncRegistry is the narrow interface the resolver uses to look up a
// function's signature during Call resolution (spec.md §4.7, SPEC_FULL
// §3's "function-argument validation"). Implemented by pkg/funcreg.
type FuncRegistry interface {
	Lookup(name string) (FuncSignature, bool)
}

// ActionMatcher resolves the `matchesAction(event, action_id)` builtin
// (SPEC_FULL §3) against per-team action definitions.
type ActionMatcher interface {
	ExpandMatchesAction(teamID string, call *qlast.Call) (qlast.Expr, error)
}

// Context bundles everything the resolver needs from its host that
// isn't part of the AST being resolved: the schema catalog, diagnostic
// sinks, tenant scope, and configured limits (spec.md §6).
type Context struct {
	Database catalog.Database

	// StdCtx is threaded through to catalog calls that need a
	// standard-library context.Context (e.g. Database.GetTable, a Lazy
	// descriptor's deferred column resolution). Defaults to
	// context.Background() when left nil.
	StdCtx context.Context

	TeamID       string
	MaxViewDepth int
	Modifiers    Modifiers

	// RequestID correlates one resolve_types call's notices/errors in
	// logs; NewContext fills in a fresh one.
	RequestID string

	Logger *slog.Logger

	// Macros and Cohorts are optional. When Macros is nil, a HogQLX tag
	// in the query is a QueryError and calls resolve as ordinary calls.
	// When Cohorts is nil, COHORT membership tests are left unexpanded.
	Macros  TagExpander
	Cohorts CohortExpander

	// Funcs is optional; when nil, Call resolution skips signature
	// lookup and falls back to an untyped, unvalidated Call (spec.md
	// §1's "pluggable function registry" is out of scope for its own
	// implementation, but the resolver's integration point is not).
	Funcs FuncRegistry

	// Actions is optional; when nil, a matchesAction(...) call is left
	// as a plain Call rather than expanded.
	Actions ActionMatcher

	Errors  []Diagnostic
	Notices []Diagnostic
}

// NewContext returns a Context with sane defaults: a nil-safe logger
// (slog.Default()), MaxViewDepth of 3, and a fresh RequestID.
func NewContext(db catalog.Database) *Context {
	return &Context{
		Database:     db,
		StdCtx:       context.Background(),
		MaxViewDepth: 3,
		RequestID:    uuid.NewString(),
		Logger:       slog.Default(),
	}
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Context) stdCtx() context.Context {
	if c.StdCtx == nil {
		return context.Background()
	}
	return c.StdCtx
}

// AddError records a fatal-under-strict, diagnostic-under-lenient
// condition against span.
func (c *Context) AddError(span token.Span, format string, args ...any) {
	msg := qlerr.NewQueryError(span, format, args...).Error()
	c.Errors = append(c.Errors, Diagnostic{Span: span, Message: msg})
	c.logger().Warn("resolve: error recorded", "request_id", c.RequestID, "message", msg)
}

// AddNotice records an informational diagnostic against span.
func (c *Context) AddNotice(span token.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Notices = append(c.Notices, Diagnostic{Span: span, Message: msg})
	c.logger().Debug("resolve: notice recorded", "request_id", c.RequestID, "message", msg)
}
