package qlast

import (
	"testing"

	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

func TestFieldStartsUnresolved(t *testing.T) {
	f := NewField(token.Span{}, []string{"events", "properties", "foo"})
	if f.Resolved() {
		t.Fatal("new Field should not be resolved")
	}
	f.SetType(&qltype.String{})
	if !f.Resolved() {
		t.Fatal("Field should be resolved after SetType")
	}
	if _, ok := f.Type().(*qltype.String); !ok {
		t.Fatalf("expected *qltype.String, got %T", f.Type())
	}
}

func TestSelectQueryIsBothStmtAndExpr(t *testing.T) {
	sq := NewSelectQuery(token.Span{})
	var _ Stmt = sq
	var _ Expr = sq
}

func TestJoinExprCloneIsIndependentStruct(t *testing.T) {
	j := NewJoinExpr(token.Span{}, TableIdentifier, NewField(token.Span{}, []string{"events"}))
	j.Alias = "e"
	clone := j.Clone()
	clone.Alias = "e2"
	if j.Alias != "e" {
		t.Fatalf("mutating the clone's Alias must not affect the original, got %q", j.Alias)
	}
}

func TestLogicalOperandsCarried(t *testing.T) {
	a := NewConstant(token.Span{}, true)
	b := NewConstant(token.Span{}, false)
	l := NewLogical(token.Span{}, LogicalAnd, []Expr{a, b})
	if len(l.Operands) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(l.Operands))
	}
}
