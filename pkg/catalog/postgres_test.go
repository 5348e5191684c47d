package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPostgresGetTableParsesColumns(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()

	rows := sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable"}).
		AddRow("id", "text", "NO").
		AddRow("properties", "jsonb", "YES")
	mock.ExpectQuery("information_schema.columns").
		WithArgs("public", "events").
		WillReturnRows(rows)

	p := &PostgresDatabase{db: mockDB, schema: "public"}
	desc, err := p.GetTable(context.Background(), "events")
	require.NoError(t, err)
	require.Equal(t, Plain, desc.Kind)
	require.Len(t, desc.Columns, 2)
	require.Equal(t, ColumnString, desc.Columns[0].Kind)
	require.False(t, desc.Columns[0].Nullable)
	require.Equal(t, ColumnJSON, desc.Columns[1].Kind)
	require.True(t, desc.Columns[1].Nullable)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetTableNotFound(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()

	mock.ExpectQuery("information_schema.columns").
		WithArgs("public", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable"}))

	p := &PostgresDatabase{db: mockDB, schema: "public"}
	_, err = p.GetTable(context.Background(), "missing")
	require.Error(t, err)
}

func TestSplitQualified(t *testing.T) {
	schema, table := splitQualified("analytics.events", "public")
	require.Equal(t, "analytics", schema)
	require.Equal(t, "events", table)

	schema, table = splitQualified("events", "public")
	require.Equal(t, "public", schema)
	require.Equal(t, "events", table)
}
