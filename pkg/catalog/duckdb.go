package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // registers the "duckdb" database/sql driver
)

// DuckDBDatabase is a Database backed by an embedded DuckDB connection.
// It is the natural home for the dialect's S3-backed external tables:
// DuckDB's httpfs extension lets `s3_table`-style descriptors be
// queried directly against object storage via read_parquet/read_csv.
type DuckDBDatabase struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenDuckDBDatabase opens (or creates) a DuckDB database file at path.
// Pass ":memory:" for a transient in-process catalog.
func OpenDuckDBDatabase(path string, log *slog.Logger) (*DuckDBDatabase, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open duckdb: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &DuckDBDatabase{db: db, log: log}, nil
}

// Close closes the underlying DuckDB connection.
func (d *DuckDBDatabase) Close() error { return d.db.Close() }

// GetTable implements Database using DuckDB's information_schema, which
// tracks both native tables and views created over external sources
// (e.g. CREATE VIEW s3_table AS SELECT * FROM read_parquet('s3://...')).
func (d *DuckDBDatabase) GetTable(ctx context.Context, name string) (*TableDescriptor, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: query columns for %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var colName, dataType, nullable string
		if err := rows.Scan(&colName, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("catalog: scan column metadata for %s: %w", name, err)
		}
		cols = append(cols, Column{
			Name:     colName,
			Kind:     duckdbColumnKind(dataType),
			Nullable: nullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate columns for %s: %w", name, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("catalog: %w: %s", ErrTableNotFound, name)
	}

	d.log.Debug("introspected duckdb table", "table", name, "columns", len(cols))
	return &TableDescriptor{Name: name, Kind: Plain, Columns: cols}, nil
}

func duckdbColumnKind(dataType string) ColumnKind {
	switch dataType {
	case "VARCHAR", "TEXT":
		return ColumnString
	case "BIGINT", "INTEGER", "SMALLINT", "TINYINT", "HUGEINT":
		return ColumnInteger
	case "DOUBLE", "FLOAT", "DECIMAL":
		return ColumnFloat
	case "BOOLEAN":
		return ColumnBoolean
	case "TIMESTAMP", "TIMESTAMP WITH TIME ZONE":
		return ColumnDateTime
	case "DATE":
		return ColumnDate
	case "JSON":
		return ColumnJSON
	case "UUID":
		return ColumnUUID
	default:
		if len(dataType) > 2 && dataType[len(dataType)-2:] == "[]" {
			return ColumnArray
		}
		return ColumnUnknown
	}
}
