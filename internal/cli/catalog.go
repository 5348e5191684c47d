package cli

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "inspect the schema catalog used to resolve table references",
	}
	cmd.AddCommand(newCatalogListCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list every table known to the bundled sample catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, ok := bundledCatalog().(*catalog.MemoryDatabase)
			if !ok {
				return fmt.Errorf("catalog: bundled catalog is not enumerable")
			}
			tables := db.Tables()
			sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"name", "kind", "columns"})
			for _, d := range tables {
				t.AppendRow(table.Row{d.Name, d.Kind.String(), len(d.Columns)})
			}
			t.Render()
			return nil
		},
	}
}
