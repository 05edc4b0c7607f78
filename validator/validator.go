// Package validator is the recursive-descent syntax checker. It runs
// before the parser and guarantees the shape the parser relies on, so
// the parser itself never has to handle malformed input.
//
// Grammar:
//
//	expr   := unary (op unary)*
//	unary  := ('+'|'-')* primary
//	primary:= number | cellref | function | '(' expr ')'
//	function := NAME '(' arg (';' arg)* ')'
//	arg    := number | cellref (':' cellref)? | function | ('+'|'-') number
package validator

import (
	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/token"
)

type cursor struct {
	toks []token.Token
	pos  int
}

func (c *cursor) peek() token.Token { return c.toks[c.pos] }
func (c *cursor) advance() token.Token {
	t := c.toks[c.pos]
	if t.Kind != token.EOF {
		c.pos++
	}
	return t
}

// Validate checks a full token stream (as produced by lexer.Tokenize,
// trailing EOF included) against the grammar above.
func Validate(toks []token.Token) error {
	if len(toks) == 0 || (len(toks) == 1 && toks[0].Kind == token.EOF) {
		return cellerr.New(cellerr.Syntax, "empty formula")
	}
	c := &cursor{toks: toks}
	if err := validateExpr(c); err != nil {
		return err
	}
	if c.peek().Kind != token.EOF {
		t := c.peek()
		return cellerr.At(cellerr.Syntax, t.Pos, "unexpected token %q", t.Literal)
	}
	return nil
}

func validateExpr(c *cursor) error {
	if err := validateUnary(c); err != nil {
		return err
	}
	for isOperator(c.peek().Kind) {
		c.advance()
		if err := validateUnary(c); err != nil {
			return err
		}
	}
	return nil
}

func isOperator(k token.Kind) bool {
	return k == token.Plus || k == token.Minus || k == token.Star || k == token.Slash
}

// kindPrimary tags what validatePrimary matched, so validateUnary can
// enforce where a leading sign is legal.
type kindPrimary int

const (
	primNumber kindPrimary = iota
	primParen
	primCellRef
	primFunction
)

func validateUnary(c *cursor) error {
	signs := 0
	for c.peek().Kind == token.Plus || c.peek().Kind == token.Minus {
		c.advance()
		signs++
	}
	kind, err := validatePrimary(c)
	if err != nil {
		return err
	}
	if signs > 0 && kind != primNumber && kind != primParen {
		return cellerr.At(cellerr.Syntax, c.peek().Pos,
			"unary sign is only allowed before a number or parenthesized expression")
	}
	return nil
}

func validatePrimary(c *cursor) (kindPrimary, error) {
	t := c.peek()
	switch t.Kind {
	case token.Number:
		c.advance()
		return primNumber, nil
	case token.LParen:
		openPos := t.Pos
		c.advance()
		if err := validateExpr(c); err != nil {
			return 0, err
		}
		if c.peek().Kind != token.RParen {
			return 0, cellerr.At(cellerr.Syntax, openPos, "unmatched opening parenthesis")
		}
		c.advance()
		return primParen, nil
	case token.RParen:
		return 0, cellerr.At(cellerr.Syntax, t.Pos, "unmatched closing parenthesis")
	case token.Ident:
		if token.FunctionNames[t.Literal] && c.peekNextIsLParen() {
			c.advance()
			if err := validateFunctionCall(c); err != nil {
				return 0, err
			}
			return primFunction, nil
		}
		if !isCellRefLiteral(t.Literal) {
			return 0, cellerr.At(cellerr.Reference, t.Pos, "invalid cell id %q", t.Literal)
		}
		c.advance()
		return primCellRef, nil
	default:
		return 0, cellerr.At(cellerr.Syntax, t.Pos, "unexpected token")
	}
}

func (c *cursor) peekNextIsLParen() bool {
	if c.pos+1 >= len(c.toks) {
		return false
	}
	return c.toks[c.pos+1].Kind == token.LParen
}

func validateFunctionCall(c *cursor) error {
	// current token is '(' (c.peekNextIsLParen guaranteed it before the
	// name was consumed by the caller)
	openPos := c.peek().Pos
	c.advance() // consume '('
	if err := validateArg(c); err != nil {
		return err
	}
	for c.peek().Kind == token.Semicolon {
		c.advance()
		if err := validateArg(c); err != nil {
			return err
		}
	}
	if c.peek().Kind != token.RParen {
		return cellerr.At(cellerr.Syntax, openPos, "unmatched opening parenthesis in function call")
	}
	c.advance()
	return nil
}

func validateArg(c *cursor) error {
	t := c.peek()
	switch {
	case t.Kind == token.Plus || t.Kind == token.Minus:
		c.advance()
		if c.peek().Kind != token.Number {
			return cellerr.At(cellerr.Syntax, c.peek().Pos, "expected a number after unary sign in argument")
		}
		c.advance()
		return nil
	case t.Kind == token.Number:
		c.advance()
		return nil
	case t.Kind == token.Ident && token.FunctionNames[t.Literal] && c.peekNextIsLParen():
		c.advance()
		return validateFunctionCall(c)
	case t.Kind == token.Ident:
		if !isCellRefLiteral(t.Literal) {
			return cellerr.At(cellerr.Reference, t.Pos, "invalid cell id %q", t.Literal)
		}
		c.advance()
		if c.peek().Kind == token.Colon {
			c.advance()
			second := c.peek()
			if second.Kind != token.Ident || !isCellRefLiteral(second.Literal) {
				return cellerr.At(cellerr.Syntax, second.Pos, "malformed range: expected a cell reference after ':'")
			}
			c.advance()
		}
		return nil
	default:
		return cellerr.At(cellerr.Syntax, t.Pos, "expected an argument")
	}
}

// isCellRefLiteral reports whether s matches [A-Za-z]+[0-9]+: a run of
// letters followed by a run of digits, both non-empty.
func isCellRefLiteral(s string) bool {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return false
	}
	for j := i; j < len(s); j++ {
		if !isDigit(s[j]) {
			return false
		}
	}
	return true
}

func isLetter(ch byte) bool { return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') }
func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
