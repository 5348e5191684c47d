package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryDatabaseSampleSchema(t *testing.T) {
	db := SampleSchema()

	events, err := db.GetTable(context.Background(), "events")
	require.NoError(t, err)
	require.Equal(t, Events, events.Kind)
	col, ok := events.Column("properties")
	require.True(t, ok)
	require.Equal(t, ColumnJSON, col.Kind)

	view, err := db.GetTable(context.Background(), "v")
	require.NoError(t, err)
	require.Equal(t, SavedQuery, view.Kind)
	require.Equal(t, "SELECT event FROM events", view.Query)
}

func TestMemoryDatabaseNotFound(t *testing.T) {
	db := NewMemoryDatabase()
	_, err := db.GetTable(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrTableNotFound))
}

func TestLazyDescriptorResolvesOnce(t *testing.T) {
	calls := 0
	desc := NewLazyDescriptor("lazy_table", func(ctx context.Context) ([]Column, error) {
		calls++
		return []Column{{Name: "x", Kind: ColumnInteger}}, nil
	})

	cols, err := desc.ResolveColumns(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 1)

	_, err = desc.ResolveColumns(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, calls, "lazy resolution should be cached after first call")
}
