package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Warm concurrently fetches each named table from src and stores it in
// cache, used to pre-populate a SQLiteCache from a slower backend
// (Postgres, DuckDB) before a resolution session begins.
func Warm(ctx context.Context, src Database, cache *SQLiteCache, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			desc, err := src.GetTable(ctx, name)
			if err != nil {
				return err
			}
			return cache.Put(ctx, desc)
		})
	}
	return g.Wait()
}
