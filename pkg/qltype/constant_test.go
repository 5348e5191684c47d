package qltype

import (
	"testing"

	"github.com/lakequery/hogql/pkg/token"
)

func TestClassifyConstantScalars(t *testing.T) {
	cases := []struct {
		value any
		want  Type
	}{
		{nil, &Unknown{}},
		{true, &Boolean{}},
		{42, &Integer{}},
		{3.14, &Float{}},
		{"hi", &String{}},
	}
	for _, c := range cases {
		got, err := ClassifyConstant(c.value, token.Span{})
		if err != nil {
			t.Fatalf("ClassifyConstant(%v) error: %v", c.value, err)
		}
		if !sameConstantShape(got, c.want) {
			t.Fatalf("ClassifyConstant(%v) = %T, want %T", c.value, got, c.want)
		}
	}
}

func TestClassifyConstantBooleanBeforeInteger(t *testing.T) {
	got, err := ClassifyConstant(false, token.Span{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*Boolean); !ok {
		t.Fatalf("expected bool to classify as Boolean, got %T", got)
	}
}

func TestClassifyArrayHomogeneous(t *testing.T) {
	got, err := ClassifyConstant([]any{1, 2, 3}, token.Span{})
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := got.(*Array)
	if !ok {
		t.Fatalf("expected *Array, got %T", got)
	}
	if _, ok := arr.Item.(*Integer); !ok {
		t.Fatalf("expected item type *Integer, got %T", arr.Item)
	}
}

func TestClassifyArrayMixedIsUnknown(t *testing.T) {
	got, err := ClassifyConstant([]any{1, "two"}, token.Span{})
	if err != nil {
		t.Fatal(err)
	}
	arr := got.(*Array)
	if _, ok := arr.Item.(*Unknown); !ok {
		t.Fatalf("expected mixed array item type Unknown, got %T", arr.Item)
	}
}

func TestClassifyArrayEmptyIsUnknownItem(t *testing.T) {
	got, err := ClassifyConstant([]any{}, token.Span{})
	if err != nil {
		t.Fatal(err)
	}
	arr := got.(*Array)
	if _, ok := arr.Item.(*Unknown); !ok {
		t.Fatalf("expected empty array item type Unknown, got %T", arr.Item)
	}
}

func TestClassifyConstantTuple(t *testing.T) {
	got, err := ClassifyConstant(ConstantTuple{1, "a", true}, token.Span{})
	if err != nil {
		t.Fatal(err)
	}
	tup, ok := got.(*Tuple)
	if !ok {
		t.Fatalf("expected *Tuple, got %T", got)
	}
	if len(tup.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(tup.Items))
	}
}

func TestClassifyConstantUnclassifiable(t *testing.T) {
	_, err := ClassifyConstant(struct{}{}, token.Span{})
	if err == nil {
		t.Fatal("expected error for unclassifiable value")
	}
}
