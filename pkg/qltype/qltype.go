// Package qltype defines the closed set of type variants the resolver
// attaches to every expression node: scalar constants, relational
// sources, query shapes, and the bindings (aliases, field traversers,
// lambda arguments) that connect a name to one of them.
//
// Types are plain structs implementing the Type marker interface, not a
// class hierarchy - matching the tagged-sum data model of spec.md §3.
// Exhaustive handling is enforced by a type switch in the resolver, not
// by virtual dispatch.
package qltype

import "github.com/lakequery/hogql/pkg/catalog"

// Type is implemented by every type variant. The marker method keeps
// arbitrary structs from satisfying the interface by accident.
type Type interface {
	qlType()
}

// Unknown is the type of a value not yet inferred, e.g. a literal null
// or an array whose elements disagree on type.
type Unknown struct{}

func (*Unknown) qlType() {}

// Boolean, Integer, Float, String, Date, DateTime, UUID are the scalar
// constant types.
type (
	Boolean  struct{}
	Integer  struct{}
	Float    struct{}
	String   struct{}
	Date     struct{}
	DateTime struct{}
	UUID     struct{}
)

func (*Boolean) qlType()  {}
func (*Integer) qlType()  {}
func (*Float) qlType()    {}
func (*String) qlType()   {}
func (*Date) qlType()     {}
func (*DateTime) qlType() {}
func (*UUID) qlType()     {}

// JSON is a semi-structured column whose sub-keys are reachable by
// further dotted/property access (spec.md §3 "JSON-like path access").
// It is not a constant type the classifier ever produces; it is
// attached to a Field only by the catalog column it was resolved
// against (catalog.ColumnJSON).
type JSON struct{}

func (*JSON) qlType() {}

// Array is a homogeneous sequence; Item is Unknown when the classifier
// saw elements of disagreeing type.
type Array struct {
	Item Type
}

func (*Array) qlType() {}

// Tuple is a heterogeneous, positional sequence.
type Tuple struct {
	Items []Type
}

func (*Tuple) qlType() {}

// Table is a relational source taken directly from the catalog.
type Table struct {
	Descriptor *catalog.TableDescriptor
}

func (*Table) qlType() {}

// LazyTable is a table whose columns are only materialised when first
// referenced, via the descriptor's deferred resolution hook.
type LazyTable struct {
	Descriptor *catalog.TableDescriptor
}

func (*LazyTable) qlType() {}

// TableKind is implemented by every type a join source can resolve to:
// Table, LazyTable, or a TableAlias wrapping either.
type TableKind interface {
	Type
	tableKind()
}

func (*Table) tableKind()     {}
func (*LazyTable) tableKind() {}

// TableAlias renames a Table or LazyTable source.
type TableAlias struct {
	Alias string
	Inner TableKind
}

func (*TableAlias) qlType()    {}
func (*TableAlias) tableKind() {}

// CTEDef is a CTE's definition as registered on the SelectQuery that
// declares it: its name, defining expression type (not an AST, to keep
// qltype independent of qlast), and whether it is a column-level CTE
// (`WITH x AS (expr)`) versus a table-level one (`WITH x AS (SELECT …)`).
type CTEDef struct {
	Name      string
	IsColumn  bool
	Reference Type // not assigned by pkg/resolve, which re-resolves Body at each use

	// Body holds the CTE's unresolved AST body (a *qlast.SelectQuery,
	// *qlast.SelectUnionQuery, or qlast.Expr depending on IsColumn),
	// typed any to avoid qltype depending on qlast. pkg/resolve clones
	// and re-resolves it at each reference site (spec.md §3's "shared
	// sub-trees are deep-cloned at each expansion site").
	Body any
}

// SelectQuery is a query's environment and its externally visible
// column list: the binding environment (tables, aliases, CTEs) used
// while resolving its own sub-tree, and the ordered column type map
// other scopes see when this query is used as a source.
type SelectQuery struct {
	Columns         []NamedType // ordered, per invariant 4
	Aliases         map[string]*FieldAlias
	Tables          map[string]TableKind
	AnonymousTables []TableKind
	CTEs            map[string]*CTEDef
	Parent          *SelectQuery // lambda/enclosing-select chain, a borrow not an owner
	ViewName        string       // set when this query is the expansion of a saved view
	IsLambda        bool         // true for a scope pushed by resolveLambda, not a SELECT
}

func (*SelectQuery) qlType() {}

// NamedType pairs a column name with its resolved type, preserving
// SELECT-list order (a plain map cannot).
type NamedType struct {
	Name string
	Type Type
}

// Column looks up a column by name in declaration order.
func (s *SelectQuery) Column(name string) (Type, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return nil, false
}

// AddColumn appends a column, preserving SELECT-list order. Callers are
// responsible for not adding the same name twice; a re-added name is
// shadowed for lookup purposes by the earlier entry, since Column
// returns the first match, which is deliberate: HogQL keeps the
// first-declared column's type when a SELECT list repeats a name.
func (s *SelectQuery) AddColumn(name string, t Type) {
	s.Columns = append(s.Columns, NamedType{Name: name, Type: t})
}

// NewSelectQuery returns an empty SelectQuery environment with its maps
// initialised, ready to be filled in incrementally as the resolver
// walks a SELECT's sub-tree.
func NewSelectQuery(parent *SelectQuery) *SelectQuery {
	return &SelectQuery{
		Aliases: make(map[string]*FieldAlias),
		Tables:  make(map[string]TableKind),
		CTEs:    make(map[string]*CTEDef),
		Parent:  parent,
	}
}

// SelectUnion is the type of a UNION/UNION ALL/INTERSECT/EXCEPT chain;
// its externally visible column shape is taken from the first branch.
type SelectUnion struct {
	Branches []*SelectQuery
}

func (*SelectUnion) qlType() {}

// Columns returns the externally visible columns of a union: those of
// its first branch.
func (u *SelectUnion) Columns() []NamedType {
	if len(u.Branches) == 0 {
		return nil
	}
	return u.Branches[0].Columns
}

// SelectSource is implemented by every type a name can be bound to as a
// query-shaped source: SelectQuery, SelectUnion, SelectQueryAlias, or
// SelectView.
type SelectSource interface {
	Type
	selectSource()
}

func (*SelectQuery) selectSource() {}
func (*SelectUnion) selectSource() {}

// SelectQueryAlias is a named sub-query: `(SELECT …) AS alias`.
type SelectQueryAlias struct {
	Alias string
	Inner SelectSource // SelectQuery or SelectUnion
}

func (*SelectQueryAlias) qlType()       {}
func (*SelectQueryAlias) selectSource() {}

// SelectView is a named saved-view expansion: the inner query is the
// parsed and resolved body of a catalog SavedQuery descriptor.
type SelectView struct {
	Alias    string
	ViewName string
	Inner    SelectSource
}

func (*SelectView) qlType()       {}
func (*SelectView) selectSource() {}

// Field is a resolved reference to a column, owned either by a table
// source or by an enclosing SelectQuery. IsJSON records whether the
// underlying catalog column is JSON-typed, which is what lets the field
// resolver continue a dotted chain (or an Access fold) past this leaf
// into a Property.
type Field struct {
	Name   string
	Owner  Type // TableKind or *SelectQuery
	IsJSON bool
}

func (*Field) qlType() {}

// Property is a resolved path into a JSON-typed column, chained off a
// Field or another Property. Chain elements are either string keys or
// integer indices.
type Property struct {
	Chain []PropertyKey
	Base  Type // *Field or *Property
}

func (*Property) qlType() {}

// PropertyKey is one element of a Property chain.
type PropertyKey struct {
	Str   string
	Int   int
	IsInt bool
}

// ExpressionField is a schema-defined derived column, inlined as a
// hidden alias wrapping its expression's resolved type under the
// Strict resolver dialect.
type ExpressionField struct {
	Name  string
	Owner Type // the TableKind whose descriptor declared this field
	// ExprType is filled in once pkg/resolve has resolved the schema's
	// stored expression for this field.
	ExprType Type
}

func (*ExpressionField) qlType() {}

// FieldAlias is a binding introduced by AS. Hidden aliases (synthetic,
// generated by the resolver itself for a bare Field/Property leaf)
// never override a visible alias of the same name - invariant 2.
type FieldAlias struct {
	Alias  string
	Inner  Type
	Hidden bool
}

func (*FieldAlias) qlType() {}

// FieldTraverser is a schema-declared shortcut: resolving this name
// continues as if the chain had been typed directly on Owner.
type FieldTraverser struct {
	Chain []string
	Owner Type
}

func (*FieldTraverser) qlType() {}

// Asterisk is the intermediate type of a bare `*` before expansion.
type Asterisk struct {
	Owner Type // TableKind, *SelectQuery, *SelectUnion, *SelectQueryAlias, or *SelectView
}

func (*Asterisk) qlType() {}

// LambdaArgument is a lambda parameter's type before its call site
// binds a concrete argument type to it.
type LambdaArgument struct {
	Name string
}

func (*LambdaArgument) qlType() {}

// Call is a resolved function invocation.
type Call struct {
	Name       string
	ArgTypes   []Type
	ParamTypes []Type // nil when the function registry has no declared signature
	ReturnType Type
}

func (*Call) qlType() {}

// IsJSONPath reports whether t is a type that dotted/bracket access may
// continue past: a JSON-typed Field, a JSON column type itself, or any
// Property (a Property's children are always further JSON keys).
func IsJSONPath(t Type) bool {
	switch v := t.(type) {
	case *Field:
		return v.IsJSON
	case *Property:
		return true
	case *JSON:
		return true
	default:
		return false
	}
}

// UnresolvedField is the lenient-dialect placeholder produced instead
// of failing outright when an identifier cannot be bound.
type UnresolvedField struct {
	Name   string
	Reason string
}

func (*UnresolvedField) qlType() {}
