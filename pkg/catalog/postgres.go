package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// PostgresDatabase is a Database backed by a live Postgres connection,
// introspecting information_schema.columns the same way the teacher's
// BaseSQLAdapter.GetTableMetadataCommon does for its adapters.
type PostgresDatabase struct {
	db     *sql.DB
	schema string // default schema searched when a table name carries none
	log    *slog.Logger
}

// OpenPostgresDatabase opens a pgx/v5 connection pool against dsn and
// returns a catalog backed by it. defaultSchema is used for unqualified
// table names ("public" is the conventional choice).
func OpenPostgresDatabase(dsn, defaultSchema string, log *slog.Logger) (*PostgresDatabase, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open postgres: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresDatabase{db: db, schema: defaultSchema, log: log}, nil
}

// Close closes the underlying connection pool.
func (p *PostgresDatabase) Close() error { return p.db.Close() }

// GetTable implements Database by querying information_schema.columns
// for the named table, treating "schema.table" as qualified and falling
// back to p.schema otherwise.
func (p *PostgresDatabase) GetTable(ctx context.Context, name string) (*TableDescriptor, error) {
	schema, table := splitQualified(name, p.schema)

	rows, err := p.db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, schema, table)
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
			Kind:     postgresColumnKind(dataType),
			Nullable: nullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate columns for %s: %w", name, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("catalog: %w: %s", ErrTableNotFound, name)
	}

	p.log.Debug("introspected postgres table", "schema", schema, "table", table, "columns", len(cols))
	return &TableDescriptor{Name: name, Kind: Plain, Columns: cols}, nil
}

func splitQualified(name, defaultSchema string) (schema, table string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return defaultSchema, name
}

// postgresColumnKind maps a Postgres information_schema.columns
// data_type value onto the catalog's scalar ColumnKind.
func postgresColumnKind(dataType string) ColumnKind {
	switch dataType {
	case "text", "character varying", "character", "varchar", "char":
		return ColumnString
	case "integer", "bigint", "smallint":
		return ColumnInteger
	case "double precision", "real", "numeric", "decimal":
		return ColumnFloat
	case "boolean":
		return ColumnBoolean
	case "timestamp without time zone", "timestamp with time zone":
		return ColumnDateTime
	case "date":
		return ColumnDate
	case "jsonb", "json":
		return ColumnJSON
	case "uuid":
		return ColumnUUID
	case "ARRAY":
		return ColumnArray
	default:
		return ColumnUnknown
	}
}
