package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/resolve"
)

// renderResolved prints the resolved query's column shape and any
// recorded diagnostics, following the teacher's renderResults dispatch
// on a format string (internal/cli/commands/query_render.go).
func renderResolved(w io.Writer, node qlast.Node, ctx *resolve.Context, format string) error {
	columns := columnsOf(node)

	switch format {
	case "json":
		return renderResolvedJSON(w, columns, ctx)
	default:
		return renderResolvedTable(w, columns, ctx)
	}
}

type namedColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func columnsOf(node qlast.Node) []namedColumn {
	sq, ok := node.(*qlast.SelectQuery)
	if !ok {
		return nil
	}
	typ, ok := sq.Type().(*qltype.SelectQuery)
	if !ok {
		return nil
	}
	out := make([]namedColumn, 0, len(typ.Columns))
	for _, c := range typ.Columns {
		out = append(out, namedColumn{Name: c.Name, Type: typeName(c.Type)})
	}
	return out
}

// typeName renders a qltype.Type as a short human-readable name for CLI
// output. The resolver's leaf-Field notices carry no type rendering;
// they read "field <name> resolved".
func typeName(t qltype.Type) string {
	switch v := t.(type) {
	case nil:
		return "unknown"
	case *qltype.Unknown:
		return "unknown"
	case *qltype.Boolean:
		return "boolean"
	case *qltype.Integer:
		return "integer"
	case *qltype.Float:
		return "float"
	case *qltype.String:
		return "string"
	case *qltype.Date:
		return "date"
	case *qltype.DateTime:
		return "datetime"
	case *qltype.UUID:
		return "uuid"
	case *qltype.JSON:
		return "json"
	case *qltype.Array:
		return "array(" + typeName(v.Item) + ")"
	case *qltype.Tuple:
		return "tuple"
	case *qltype.Field:
		return typeName(fieldColumnType(v))
	case *qltype.Property:
		return "json"
	case *qltype.UnresolvedField:
		return "unresolved(" + v.Name + ")"
	case *qltype.FieldAlias:
		return typeName(v.Inner)
	case *qltype.Call:
		return typeName(v.ReturnType)
	default:
		return fmt.Sprintf("%T", t)
	}
}

// fieldColumnType best-efforts a display type for a resolved Field:
// without a catalog handle at render time this falls back to unknown
// for every non-JSON column, and no other output names the column's
// catalog type either.
func fieldColumnType(f *qltype.Field) qltype.Type {
	if f.IsJSON {
		return &qltype.JSON{}
	}
	return &qltype.Unknown{}
}

func renderResolvedTable(w io.Writer, columns []namedColumn, ctx *resolve.Context) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"column", "type"})
	for _, c := range columns {
		t.AppendRow(table.Row{c.Name, c.Type})
	}
	t.Render()
	fmt.Fprintf(w, "(%d columns)\n", len(columns))

	if len(ctx.Errors) > 0 {
		fmt.Fprintln(w, "\nerrors:")
		for _, d := range ctx.Errors {
			fmt.Fprintf(w, "  %s\n", d.Message)
		}
	}
	if len(ctx.Notices) > 0 {
		fmt.Fprintln(w, "\nnotices:")
		for _, d := range ctx.Notices {
			fmt.Fprintf(w, "  %s\n", d.Message)
		}
	}
	return nil
}

func renderResolvedJSON(w io.Writer, columns []namedColumn, ctx *resolve.Context) error {
	out := struct {
		Columns []namedColumn        `json:"columns"`
		Errors  []resolve.Diagnostic `json:"errors"`
		Notices []resolve.Diagnostic `json:"notices"`
	}{Columns: columns, Errors: ctx.Errors, Notices: ctx.Notices}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
