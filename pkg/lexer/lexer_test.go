package lexer

import (
	"testing"

	"github.com/lakequery/hogql/pkg/token"
)

func tokenTypes(src string) []token.TokenType {
	l := New(src)
	var out []token.TokenType
	for {
		tok := l.Next()
		out = append(out, tok.Type)
		if tok.Type == token.EOF {
			return out
		}
	}
}

func TestLexesSimpleSelect(t *testing.T) {
	got := tokenTypes("SELECT event FROM events WHERE event = '$pageview'")
	want := []token.TokenType{
		token.SELECT, token.IDENT, token.FROM, token.IDENT,
		token.WHERE, token.IDENT, token.EQ, token.STRING, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexesDottedChain(t *testing.T) {
	got := tokenTypes("events.properties.foo")
	want := []token.TokenType{token.IDENT, token.DOT, token.IDENT, token.DOT, token.IDENT, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexesArrow(t *testing.T) {
	got := tokenTypes("x -> x + 1")
	if got[1] != token.ARROW {
		t.Fatalf("expected ARROW, got %v", got[1])
	}
}

func TestLexesEscapedQuoteString(t *testing.T) {
	l := New("'it''s'")
	tok := l.Next()
	if tok.Type != token.STRING || tok.Literal != "it's" {
		t.Fatalf("got %+v", tok)
	}
}

func TestLexesLineComment(t *testing.T) {
	l := New("-- hi\nSELECT")
	tok := l.Next()
	if tok.Type != token.SELECT {
		t.Fatalf("expected comment to be skipped, got %v", tok.Type)
	}
	if len(l.Comments()) != 1 {
		t.Fatalf("expected 1 comment recorded, got %d", len(l.Comments()))
	}
}

func TestLexesNumbers(t *testing.T) {
	l := New("1 2.5 1e10")
	for i := 0; i < 3; i++ {
		tok := l.Next()
		if tok.Type != token.NUMBER {
			t.Fatalf("token %d: expected NUMBER, got %v (%q)", i, tok.Type, tok.Literal)
		}
	}
}
