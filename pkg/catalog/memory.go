package catalog

import (
	"context"
	"fmt"
)

// MemoryDatabase is an in-memory Database backed by a fixed table map,
// used by tests and by the REPL's bundled sample schema.
type MemoryDatabase struct {
	tables map[string]*TableDescriptor
}

// NewMemoryDatabase builds an empty in-memory catalog.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{tables: make(map[string]*TableDescriptor)}
}

// Register adds or replaces a table descriptor under its own name.
func (m *MemoryDatabase) Register(desc *TableDescriptor) {
	m.tables[desc.Name] = desc
}

// GetTable implements Database.
func (m *MemoryDatabase) GetTable(_ context.Context, name string) (*TableDescriptor, error) {
	desc, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("catalog: %w: %s", ErrTableNotFound, name)
	}
	return desc, nil
}

// Tables returns every registered table's descriptor, for callers that
// need to enumerate the catalog (e.g. the CLI's `hogql catalog`
// command) rather than resolve one name at a time.
func (m *MemoryDatabase) Tables() []*TableDescriptor {
	out := make([]*TableDescriptor, 0, len(m.tables))
	for _, d := range m.tables {
		out = append(out, d)
	}
	return out
}

// SampleSchema returns the schema used by the resolver's worked
// examples: events(id String, event String, properties JSON, start
// DateTime, end DateTime, duration = end - start), s3_table(id String),
// and a saved view v = SELECT event FROM events.
func SampleSchema() *MemoryDatabase {
	db := NewMemoryDatabase()
	db.Register(&TableDescriptor{
		Name: "events",
		Kind: Events,
		Columns: []Column{
			{Name: "id", Kind: ColumnString},
			{Name: "event", Kind: ColumnString},
			{Name: "properties", Kind: ColumnJSON},
			{Name: "start", Kind: ColumnDateTime},
			{Name: "end", Kind: ColumnDateTime},
		},
		ExpressionFields: map[string]ExpressionField{
			"duration": {Name: "duration", Expr: "end - start"},
		},
	})
	db.Register(&TableDescriptor{
		Name: "s3_table",
		Kind: S3,
		Columns: []Column{
			{Name: "id", Kind: ColumnString},
		},
	})
	db.Register(&TableDescriptor{
		Name:  "v",
		Kind:  SavedQuery,
		Query: "SELECT event FROM events",
	})
	return db
}
