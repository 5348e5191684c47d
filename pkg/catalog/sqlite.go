package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/lakequery/hogql/pkg/catalog/migrations"
)

// SQLiteCache is a Database backed by a local sqlite file caching table
// metadata previously fetched from a slower backend (Postgres, DuckDB).
// The CLI commands, the REPL included, do not use it; they resolve
// against the in-memory SampleSchema.
type SQLiteCache struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLiteCache opens (migrating if needed) the catalog cache at path.
func OpenSQLiteCache(path string, log *slog.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite cache: %w", err)
	}
	if err := migrations.Apply(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &SQLiteCache{db: db, log: log}, nil
}

// Close closes the underlying sqlite connection.
func (c *SQLiteCache) Close() error { return c.db.Close() }

// Put stores or replaces desc in the cache.
func (c *SQLiteCache) Put(ctx context.Context, desc *TableDescriptor) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin cache put: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO catalog_tables (name, kind, query) VALUES (?, ?, ?)`,
		desc.Name, desc.Kind.String(), desc.Query,
	); err != nil {
		return fmt.Errorf("catalog: put table %s: %w", desc.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_columns WHERE table_name = ?`, desc.Name); err != nil {
		return fmt.Errorf("catalog: clear columns for %s: %w", desc.Name, err)
	}
	for i, col := range desc.Columns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO catalog_columns (table_name, ordinal, column_name, kind, element_kind, nullable) VALUES (?, ?, ?, ?, ?, ?)`,
			desc.Name, i, col.Name, col.Kind, col.ElementKind, boolToInt(col.Nullable),
		); err != nil {
			return fmt.Errorf("catalog: put column %s.%s: %w", desc.Name, col.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit cache put: %w", err)
	}
	c.log.Debug("cached table descriptor", "table", desc.Name, "columns", len(desc.Columns))
	return nil
}

// GetTable implements Database, reading from the local cache only.
func (c *SQLiteCache) GetTable(ctx context.Context, name string) (*TableDescriptor, error) {
	var kind string
	var query sql.NullString
	err := c.db.QueryRowContext(ctx, `SELECT kind, query FROM catalog_tables WHERE name = ?`, name).Scan(&kind, &query)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("catalog: %w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: lookup table %s: %w", name, err)
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT column_name, kind, element_kind, nullable FROM catalog_columns WHERE table_name = ? ORDER BY ordinal`, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: query cached columns for %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var colName string
		var colKind, elemKind int
		var nullable int
		if err := rows.Scan(&colName, &colKind, &elemKind, &nullable); err != nil {
			return nil, fmt.Errorf("catalog: scan cached column for %s: %w", name, err)
		}
		cols = append(cols, Column{
			Name:        colName,
			Kind:        ColumnKind(colKind),
			ElementKind: ColumnKind(elemKind),
			Nullable:    nullable != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate cached columns for %s: %w", name, err)
	}

	return &TableDescriptor{
		Name:    name,
		Kind:    parseTableKind(kind),
		Columns: cols,
		Query:   query.String,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTableKind(s string) TableKind {
	switch s {
	case "plain":
		return Plain
	case "function-call":
		return FunctionCall
	case "lazy":
		return Lazy
	case "saved-query":
		return SavedQuery
	case "s3":
		return S3
	case "events":
		return Events
	default:
		return Plain
	}
}
