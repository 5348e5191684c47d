package qlast

// Clone returns a deep, unresolved structural copy of node: every
// nested Expr/Stmt is copied fresh with its type cleared, so the
// resolver's clone-and-annotate pass (spec.md §9) can attach types to
// the copy without disturbing the original - the mechanism CTE and
// saved-view expansion rely on to let one definition be referenced,
// and independently typed, at multiple call sites.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *Field:
		return &Field{exprBase: newExprBase(v.span), Chain: append([]string(nil), v.Chain...)}
	case *Constant:
		return &Constant{exprBase: newExprBase(v.span), Value: v.Value}
	case *Alias:
		return &Alias{exprBase: newExprBase(v.span), AliasName: v.AliasName, Expr: CloneExpr(v.Expr), Hidden: v.Hidden}
	case *Call:
		return &Call{
			exprBase: newExprBase(v.span),
			Name:     v.Name,
			Args:     CloneExprs(v.Args),
			Params:   CloneExprs(v.Params),
			Distinct: v.Distinct,
		}
	case *Lambda:
		return &Lambda{exprBase: newExprBase(v.span), Params: append([]string(nil), v.Params...), Body: CloneExpr(v.Body)}
	case *Logical:
		return &Logical{exprBase: newExprBase(v.span), Op: v.Op, Operands: CloneExprs(v.Operands)}
	case *CompareOperation:
		return &CompareOperation{exprBase: newExprBase(v.span), Op: v.Op, Left: CloneExpr(v.Left), Right: CloneExpr(v.Right)}
	case *Access:
		return &Access{exprBase: newExprBase(v.span), Kind: v.Kind, Base: CloneExpr(v.Base), Index: CloneExpr(v.Index)}
	case *Asterisk:
		return &Asterisk{exprBase: newExprBase(v.span), Qualifier: v.Qualifier}
	case *HogQLXTag:
		attrs := make(map[string]Expr, len(v.Attributes))
		for k, e := range v.Attributes {
			attrs[k] = CloneExpr(e)
		}
		return &HogQLXTag{exprBase: newExprBase(v.span), TagName: v.TagName, Attributes: attrs}
	case *SelectQuery:
		return cloneSelectQuery(v)
	case *SelectUnionQuery:
		branches := make([]*SelectQuery, len(v.Branches))
		for i, b := range v.Branches {
			branches[i] = cloneSelectQuery(b)
		}
		return &SelectUnionQuery{stmtBase: stmtBase{span: v.span}, Branches: branches, Combinator: v.Combinator}
	case *JoinExpr:
		return cloneJoinExpr(v)
	default:
		return n
	}
}

// CloneExpr is Clone narrowed to the Expr interface, for call sites that
// already know they hold an expression (nil-safe).
func CloneExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return Clone(e).(Expr)
}

// CloneExprs clones a slice of expressions element-wise, preserving nil.
func CloneExprs(es []Expr) []Expr {
	if es == nil {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = CloneExpr(e)
	}
	return out
}

func cloneOrderList(os []OrderExpr) []OrderExpr {
	if os == nil {
		return nil
	}
	out := make([]OrderExpr, len(os))
	for i, o := range os {
		out[i] = OrderExpr{Expr: CloneExpr(o.Expr), Desc: o.Desc}
	}
	return out
}

func cloneWithEntries(ws []WithEntry) []WithEntry {
	if ws == nil {
		return nil
	}
	out := make([]WithEntry, len(ws))
	for i, w := range ws {
		out[i] = WithEntry{Name: w.Name, Kind: w.Kind, Body: Clone(w.Body)}
	}
	return out
}

func cloneWindows(ws map[string]*Window) map[string]*Window {
	if ws == nil {
		return nil
	}
	out := make(map[string]*Window, len(ws))
	for k, w := range ws {
		out[k] = &Window{PartitionBy: CloneExprs(w.PartitionBy), OrderBy: cloneOrderList(w.OrderBy)}
	}
	return out
}

func cloneSelectQuery(v *SelectQuery) *SelectQuery {
	var arrayJoin *ArrayJoin
	if v.ArrayJoin != nil {
		arrayJoin = &ArrayJoin{Left: v.ArrayJoin.Left, Columns: CloneExprs(v.ArrayJoin.Columns)}
	}
	settings := v.Settings
	if settings != nil {
		cp := make(map[string]string, len(settings))
		for k, val := range settings {
			cp[k] = val
		}
		settings = cp
	}
	return &SelectQuery{
		stmtBase:      stmtBase{span: v.span},
		With:          cloneWithEntries(v.With),
		Distinct:      v.Distinct,
		Select:        CloneExprs(v.Select),
		From:          cloneJoinExpr(v.From),
		ArrayJoin:     arrayJoin,
		Where:         CloneExpr(v.Where),
		PreWhere:      CloneExpr(v.PreWhere),
		GroupBy:       CloneExprs(v.GroupBy),
		Having:        CloneExpr(v.Having),
		OrderBy:       cloneOrderList(v.OrderBy),
		LimitBy:       CloneExprs(v.LimitBy),
		Limit:         CloneExpr(v.Limit),
		Offset:        CloneExpr(v.Offset),
		LimitWithTies: v.LimitWithTies,
		Settings:      settings,
		ViewName:      v.ViewName,
		Windows:       cloneWindows(v.Windows),
	}
}

func cloneJoinExpr(v *JoinExpr) *JoinExpr {
	if v == nil {
		return nil
	}
	return &JoinExpr{
		span:      v.span,
		TableKind: v.TableKind,
		Table:     Clone(v.Table),
		TableArgs: CloneExprs(v.TableArgs),
		Alias:     v.Alias,
		JoinType:  v.JoinType,
		Using:     CloneExprs(v.Using),
		On:        CloneExpr(v.On),
		Sample:    CloneExpr(v.Sample),
		NextJoin:  cloneJoinExpr(v.NextJoin),
	}
}
