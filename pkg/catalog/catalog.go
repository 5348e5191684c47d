// Package catalog defines the schema catalog contract the resolver
// consults to turn a table name into a descriptor of its columns and
// materialisation kind.
//
// This package intentionally knows nothing about the resolver's
// structural type system (pkg/qltype depends on catalog, not the other
// way around): a TableDescriptor exposes columns as a simple scalar
// ColumnKind, not a resolved qltype.Type, so catalog backends can be
// implemented against plain database/sql introspection without
// importing the resolver's AST-facing packages.
package catalog

import "context"

// TableKind discriminates how a TableDescriptor's columns are obtained
// and how the resolver must wrap it as a join source.
type TableKind int

const (
	// Plain is an ordinary relational table with a fixed column list.
	Plain TableKind = iota
	// FunctionCall is a table materialised by invoking a function, e.g.
	// numbers(10). Always requires an alias in the rewritten AST.
	FunctionCall
	// Lazy is a table whose column types are resolved on first use via
	// ResolveColumns, rather than eagerly at catalog-lookup time.
	Lazy
	// SavedQuery is a named view whose defining query text is stored in
	// the catalog and parsed on demand when referenced as a table.
	SavedQuery
	// S3 is an external table backed by object storage (e.g. Parquet
	// files over S3), relevant to the resolver only in that joins and
	// membership tests against it are promoted to their GLOBAL variant.
	S3
	// Events is the catalog's primary event-log table; joins where this
	// is the outer source against an S3 table trigger global-join
	// promotion.
	Events
)

// String returns a human-readable name for the table kind.
func (k TableKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case FunctionCall:
		return "function-call"
	case Lazy:
		return "lazy"
	case SavedQuery:
		return "saved-query"
	case S3:
		return "s3"
	case Events:
		return "events"
	default:
		return "unknown"
	}
}

// ColumnKind is the catalog-level scalar classification of a column,
// independent of the resolver's richer structural Type system.
type ColumnKind int

const (
	ColumnUnknown ColumnKind = iota
	ColumnString
	ColumnInteger
	ColumnFloat
	ColumnBoolean
	ColumnDateTime
	ColumnDate
	ColumnJSON
	ColumnUUID
	ColumnArray
	ColumnTuple
)

// Column describes one column of a TableDescriptor. ElementKind is only
// meaningful when Kind is ColumnArray.
type Column struct {
	Name        string
	Kind        ColumnKind
	ElementKind ColumnKind
	Nullable    bool
}

// ExpressionField is a schema-declared derived column: its stored
// value is HogQL source text substituted at reference sites under the
// strict dialect, e.g. `duration` declared as `end - start`.
type ExpressionField struct {
	Name string
	Expr string // HogQL source, parsed on demand by pkg/resolve
}

// Traverser is a schema-declared shortcut: referencing Name resolves as
// if Chain had been typed directly against this table.
type Traverser struct {
	Name  string
	Chain []string
}

// TableDescriptor is what a Database resolves a table name to.
type TableDescriptor struct {
	Name    string
	Kind    TableKind
	Columns []Column

	// Query holds the stored SELECT text for a SavedQuery descriptor.
	// Empty for every other kind.
	Query string

	// ExpressionFields and Traversers are schema-declared indirections
	// consulted by the resolver's field walk (spec.md §4.6 step 3 and
	// the chain-traversal's FieldTraverser handling) after plain column
	// lookup fails.
	ExpressionFields map[string]ExpressionField
	Traversers       map[string]Traverser

	// resolveColumns, if set, lazily computes Columns for a Lazy
	// descriptor. ResolveColumns calls it on first use and caches the
	// result in Columns on the same descriptor.
	resolveColumns func(ctx context.Context) ([]Column, error)
}

// NewLazyDescriptor builds a Lazy TableDescriptor whose columns are
// computed on first use.
func NewLazyDescriptor(name string, resolveColumns func(ctx context.Context) ([]Column, error)) *TableDescriptor {
	return &TableDescriptor{Name: name, Kind: Lazy, resolveColumns: resolveColumns}
}

// ResolveColumns returns the descriptor's columns, computing them via
// the lazy hook on first call and caching the result for subsequent
// calls against the same descriptor value.
func (d *TableDescriptor) ResolveColumns(ctx context.Context) ([]Column, error) {
	if d.Kind != Lazy || d.resolveColumns == nil {
		return d.Columns, nil
	}
	if d.Columns == nil {
		cols, err := d.resolveColumns(ctx)
		if err != nil {
			return nil, err
		}
		d.Columns = cols
	}
	return d.Columns, nil
}

// Column looks up a column by name, returning ok=false if absent.
func (d *TableDescriptor) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ExpressionField looks up a schema-declared derived column by name.
func (d *TableDescriptor) ExpressionField(name string) (ExpressionField, bool) {
	f, ok := d.ExpressionFields[name]
	return f, ok
}

// Traverser looks up a schema-declared traverser by name.
func (d *TableDescriptor) Traverser(name string) (Traverser, bool) {
	t, ok := d.Traversers[name]
	return t, ok
}

// Asterisk returns the ordered column list `*` expands to. For every
// descriptor kind other than Lazy this is simply Columns; Lazy
// descriptors must have been resolved via ResolveColumns first.
func (d *TableDescriptor) Asterisk() []Column {
	return d.Columns
}

// Database is the schema catalog: it resolves a table name to a
// TableDescriptor and nothing else. Query execution, DDL, and
// connection lifecycle are out of scope for this interface - see
// pkg/catalog's backend implementations for those concerns.
type Database interface {
	// GetTable resolves name to a descriptor, or returns an error
	// wrapping ErrTableNotFound if no such table, view, or
	// function-call source exists.
	GetTable(ctx context.Context, name string) (*TableDescriptor, error)
}

// ErrTableNotFound is wrapped by backend-specific "not found" errors so
// callers can detect the condition with errors.Is.
var ErrTableNotFound = tableNotFoundError{}

type tableNotFoundError struct{}

func (tableNotFoundError) Error() string { return "table not found" }
