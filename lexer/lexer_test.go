package lexer

import (
	"testing"

	"github.com/marcgallego/spreadsheet/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func mustTokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return toks
}

func TestTokenizeSimpleExpression(t *testing.T) {
	toks := mustTokenize(t, "A1+5")
	want := []token.Kind{token.Ident, token.Plus, token.Number, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeFunctionCall(t *testing.T) {
	toks := mustTokenize(t, "suma(B1:B3;10)")
	if toks[0].Kind != token.Ident || toks[0].Literal != "SUMA" {
		t.Errorf("expected function name normalized to SUMA, got %+v", toks[0])
	}
	wantKinds := []token.Kind{token.Ident, token.LParen, token.Ident, token.Colon, token.Ident, token.Semicolon, token.Number, token.RParen, token.EOF}
	got := kinds(toks)
	if len(got) != len(wantKinds) {
		t.Fatalf("got %v, want %v", got, wantKinds)
	}
}

func TestTokenizeSkipsWhitespace(t *testing.T) {
	toks := mustTokenize(t, "  A1  +   5 ")
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens including EOF, got %d: %+v", len(toks), toks)
	}
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	if _, err := Tokenize("A1 & B2"); err == nil {
		t.Error("expected an error for '&'")
	}
}

func TestTokenizeMultipleDecimalPoints(t *testing.T) {
	if _, err := Tokenize("1.2.3"); err == nil {
		t.Error("expected an error for a number with two decimal points")
	}
}

func TestTokenizeUnknownFunctionName(t *testing.T) {
	if _, err := Tokenize("NOPE(A1)"); err == nil {
		t.Error("expected an error for an unrecognized function name")
	}
}

func TestTokenizePlainIdentifierNotForcedUppercase(t *testing.T) {
	toks := mustTokenize(t, "a1")
	if toks[0].Literal != "a1" {
		t.Errorf("expected cell reference literal preserved as %q, got %q", "a1", toks[0].Literal)
	}
}
