package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteCachePutAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := OpenSQLiteCache(path, nil)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	desc := &TableDescriptor{
		Name: "events",
		Kind: Events,
		Columns: []Column{
			{Name: "id", Kind: ColumnString},
			{Name: "properties", Kind: ColumnJSON, Nullable: true},
		},
	}
	require.NoError(t, cache.Put(context.Background(), desc))

	got, err := cache.GetTable(context.Background(), "events")
	require.NoError(t, err)
	require.Equal(t, Events, got.Kind)
	require.Len(t, got.Columns, 2)
	require.True(t, got.Columns[1].Nullable)
}

func TestWarmPopulatesCacheConcurrently(t *testing.T) {
	src := SampleSchema()
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := OpenSQLiteCache(path, nil)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	err = Warm(context.Background(), src, cache, []string{"events", "s3_table"})
	require.NoError(t, err)

	got, err := cache.GetTable(context.Background(), "s3_table")
	require.NoError(t, err)
	require.Equal(t, S3, got.Kind)
}
