package rox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lexAll(input string) []Token {
	l := newLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens
		}
	}
}

func TestLexerTokenTypes(t *testing.T) {
	input := `class B < A {
  init(x) { this.x = x >= 1.5 and !nil; } // trailing comment
}
!= == <= "two
lines" 12 super`

	var got []TokenType
	for _, tok := range lexAll(input) {
		got = append(got, tok.Type)
	}
	want := []TokenType{
		tokenClass, tokenIdent, tokenLT, tokenIdent, tokenLBrace,
		tokenIdent, tokenLParen, tokenIdent, tokenRParen, tokenLBrace,
		tokenThis, tokenDot, tokenIdent, tokenAssign, tokenIdent, tokenGTE, tokenNumber,
		tokenAnd, tokenBang, tokenNil, tokenSemicolon, tokenRBrace,
		tokenRBrace,
		tokenNotEQ, tokenEQ, tokenLTE, tokenString, tokenNumber, tokenSuper,
		tokenEOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerLiteralsAndPositions(t *testing.T) {
	tokens := lexAll("var answer = 42.5;\nprint \"hi\";")
	type summary struct {
		Literal string
		Pos     Position
	}
	var got []summary
	for _, tok := range tokens {
		got = append(got, summary{tok.Literal, tok.Pos})
	}
	want := []summary{
		{"var", Position{1, 1}},
		{"answer", Position{1, 5}},
		{"=", Position{1, 12}},
		{"42.5", Position{1, 14}},
		{";", Position{1, 18}},
		{"print", Position{2, 1}},
		{"hi", Position{2, 7}},
		{";", Position{2, 11}},
		{"", Position{2, 12}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerNumberFollowedByDot(t *testing.T) {
	tokens := lexAll("12.foo")
	if tokens[0].Type != tokenNumber || tokens[0].Literal != "12" {
		t.Fatalf("expected number 12, got %s %q", tokens[0].Type, tokens[0].Literal)
	}
	if tokens[1].Type != tokenDot {
		t.Fatalf("expected dot, got %s", tokens[1].Type)
	}
}

func TestLexerIllegalTokens(t *testing.T) {
	cases := map[string]string{
		`"never closed`: "unterminated string",
		"@":             "unexpected character '@'",
	}
	for input, want := range cases {
		tok := newLexer(input).NextToken()
		if tok.Type != tokenIllegal {
			t.Fatalf("%q: expected illegal token, got %s", input, tok.Type)
		}
		if tok.Literal != want {
			t.Fatalf("%q: literal %q, want %q", input, tok.Literal, want)
		}
	}
}
