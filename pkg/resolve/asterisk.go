package resolve

import (
	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

// expandAsterisk implements spec.md §4.5: given the resolved Asterisk's
// owner, produce one bare-identifier Field expression per exported
// column, qualified by the owner's alias when it has one (so a
// subsequent resolveFieldExpr on each finds exactly the right source
// and nothing else).
func (rv *Resolver) expandAsterisk(ast *qlast.Asterisk) ([]qlast.Expr, error) {
	span := spanOf(ast)
	owner := ast.Type().(*qltype.Asterisk).Owner

	names, qualifier, err := rv.asteriskColumns(owner, span)
	if err != nil {
		return nil, err
	}

	exprs := make([]qlast.Expr, 0, len(names))
	for _, name := range names {
		chain := []string{name}
		if qualifier != "" {
			chain = []string{qualifier, name}
		}
		exprs = append(exprs, qlast.NewField(span, chain))
	}
	return exprs, nil
}

func (rv *Resolver) asteriskColumns(owner qltype.Type, span token.Span) ([]string, string, error) {
	switch t := owner.(type) {
	case *qltype.Table:
		return columnNames(t.Descriptor.Asterisk()), "", nil
	case *qltype.LazyTable:
		cols, err := t.Descriptor.ResolveColumns(rv.ctx.stdCtx())
		if err != nil {
			return nil, "", qlerr.NewQueryError(span, "resolving lazy table %q: %v", t.Descriptor.Name, err)
		}
		t.Descriptor.Columns = cols
		return columnNames(cols), "", nil
	case *qltype.TableAlias:
		names, _, err := rv.asteriskColumns(t.Inner, span)
		return names, t.Alias, err
	case *qltype.SelectQuery:
		out := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			out[i] = c.Name
		}
		return out, "", nil
	case *qltype.SelectUnion:
		if len(t.Branches) == 0 {
			return nil, "", qlerr.NewQueryError(span, "can't expand asterisk: empty union")
		}
		return rv.asteriskColumns(t.Branches[0], span)
	case *qltype.SelectQueryAlias:
		names, _, err := rv.asteriskColumns(t.Inner, span)
		return names, t.Alias, err
	case *qltype.SelectView:
		names, _, err := rv.asteriskColumns(t.Inner, span)
		return names, t.Alias, err
	default:
		return nil, "", qlerr.NewQueryError(span, "can't expand asterisk")
	}
}

func columnNames(cols []catalog.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
