package validator

import (
	"testing"

	"github.com/marcgallego/spreadsheet/lexer"
)

func validate(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return Validate(toks)
}

func TestValidateAccepts(t *testing.T) {
	ok := []string{
		"5",
		"A1+B2",
		"A1+B2*C3",
		"(A1+B2)*C3",
		"-5",
		"-(A1+B2)",
		"SUMA(A1:A10)",
		"SUMA(A1:A10;5;B2)",
		"MAX(SUMA(A1:A2);MIN(B1:B2))",
		"PROMEDIO(A1;B1;-3)",
	}
	for _, src := range ok {
		if err := validate(t, src); err != nil {
			t.Errorf("Validate(%q): unexpected error: %v", src, err)
		}
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	if err := validate(t, ""); err == nil {
		t.Error("expected an empty formula to be rejected")
	}
}

func TestValidateRejectsUnmatchedParens(t *testing.T) {
	bad := []string{"(A1+B2", "A1+B2)", "SUMA(A1:A10", "SUMA(A1:A10))"}
	for _, src := range bad {
		if err := validate(t, src); err == nil {
			t.Errorf("Validate(%q): expected a syntax error", src)
		}
	}
}

func TestValidateRejectsUnaryBeforeCellRef(t *testing.T) {
	if err := validate(t, "-A1"); err == nil {
		t.Error("expected a unary sign before a bare cell reference to be rejected")
	}
}

func TestValidateRejectsUnaryBeforeFunctionCall(t *testing.T) {
	if err := validate(t, "-SUMA(A1:A2)"); err == nil {
		t.Error("expected a unary sign before a function call to be rejected")
	}
}

func TestValidateRejectsInvalidCellID(t *testing.T) {
	if err := validate(t, "A1A"); err == nil {
		t.Error("expected an invalid cell id to be rejected")
	}
}

func TestValidateRejectsTrailingTokens(t *testing.T) {
	if err := validate(t, "A1 B2"); err == nil {
		t.Error("expected trailing tokens after a complete expression to be rejected")
	}
}

func TestValidateRejectsMalformedRange(t *testing.T) {
	if err := validate(t, "SUMA(A1:5)"); err == nil {
		t.Error("expected a range whose second endpoint isn't a cell reference to be rejected")
	}
}

func TestValidateAllowsSignedNumberArgument(t *testing.T) {
	if err := validate(t, "SUMA(A1;-5;+3)"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
