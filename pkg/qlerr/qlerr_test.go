package qlerr

import (
	"errors"
	"testing"

	"github.com/lakequery/hogql/pkg/token"
)

func TestImpossibleASTIsError(t *testing.T) {
	var err error = NewImpossibleAST(token.Span{}, "field %q has no type", "x")
	var target *ImpossibleAST
	if !errors.As(err, &target) {
		t.Fatalf("expected errors.As to match *ImpossibleAST")
	}
	if target.Msg != `field "x" has no type` {
		t.Fatalf("unexpected message: %s", target.Msg)
	}
}

func TestQueryErrorRangeCarriesOffsets(t *testing.T) {
	err := NewQueryErrorRange(token.Span{}, 4, 9, "unknown table %q", "foo")
	if err.Start != 4 || err.End != 9 {
		t.Fatalf("expected offsets 4,9 got %d,%d", err.Start, err.End)
	}
}

func TestQueryErrorWithoutRangeIsUnset(t *testing.T) {
	err := NewQueryError(token.Span{}, "bad thing")
	if err.Start != -1 || err.End != -1 {
		t.Fatalf("expected unset offsets to be -1, got %d,%d", err.Start, err.End)
	}
}

func TestResolutionErrorMessage(t *testing.T) {
	err := NewResolutionError(token.Span{}, "chain walked past root for %s", "a.b.c")
	want := "resolution error: chain walked past root for a.b.c"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}
