// Package fparser transforms a validated token stream into an infix
// fnode.Component sequence. It assumes validator.Validate has already
// accepted the stream, so it does not re-check grammar shape; the only
// errors it can still raise are out-of-range cell references (the
// validator only checks id syntax, not sheet bounds).
package fparser

import (
	"strconv"

	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/coordinates"
	"github.com/marcgallego/spreadsheet/fnode"
	"github.com/marcgallego/spreadsheet/token"
)

// Dims bounds cell references parsed from a formula against sheet size.
type Dims struct {
	NumRows int
	NumCols int
}

type parser struct {
	toks []token.Token
	pos  int
	dims Dims
}

func (p *parser) peek() token.Token { return p.toks[p.pos] }
func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

// Parse produces the infix component sequence: operands and operators in
// source order, with explicit fnode.Paren markers for grouping, ready for
// converter.ToPostfix.
func Parse(toks []token.Token, dims Dims) ([]fnode.Component, error) {
	p := &parser{toks: toks, dims: dims}
	var out []fnode.Component
	if err := p.parseExpr(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) parseExpr(out *[]fnode.Component) error {
	if err := p.parseUnary(out); err != nil {
		return err
	}
	for isOperator(p.peek().Kind) {
		op := p.advance()
		*out = append(*out, operatorFor(op.Kind))
		if err := p.parseUnary(out); err != nil {
			return err
		}
	}
	return nil
}

func isOperator(k token.Kind) bool {
	return k == token.Plus || k == token.Minus || k == token.Star || k == token.Slash
}

func operatorFor(k token.Kind) fnode.Operator {
	switch k {
	case token.Plus:
		return fnode.Add
	case token.Minus:
		return fnode.Sub
	case token.Star:
		return fnode.Mul
	default:
		return fnode.Div
	}
}

func (p *parser) parseUnary(out *[]fnode.Component) error {
	negate := false
	for p.peek().Kind == token.Plus || p.peek().Kind == token.Minus {
		t := p.advance()
		if t.Kind == token.Minus {
			negate = !negate
		}
	}
	return p.parsePrimary(out, negate)
}

func (p *parser) parsePrimary(out *[]fnode.Component, negate bool) error {
	t := p.peek()
	switch t.Kind {
	case token.Number:
		p.advance()
		n := parseFloat(t.Literal)
		if negate {
			n = -n
		}
		*out = append(*out, fnode.Number(n))
		return nil
	case token.LParen:
		p.advance()
		*out = append(*out, fnode.Paren{Open: true})
		if negate {
			// unary minus over a parenthesized expression: emit as 0 - (...)
			*out = append(*out, fnode.Number(0), fnode.Sub, fnode.Paren{Open: true})
		}
		if err := p.parseExpr(out); err != nil {
			return err
		}
		p.advance() // ')'
		*out = append(*out, fnode.Paren{Open: false})
		if negate {
			*out = append(*out, fnode.Paren{Open: false})
		}
		return nil
	case token.Ident:
		if token.FunctionNames[t.Literal] && p.peekNextIsLParen() {
			p.advance()
			fn, err := p.parseFunctionCall()
			if err != nil {
				return err
			}
			*out = append(*out, fn)
			return nil
		}
		coord, err := coordinates.FromID(t.Literal, p.dims.NumRows, p.dims.NumCols)
		if err != nil {
			return err
		}
		p.advance()
		*out = append(*out, fnode.CellRef{Coord: coord})
		return nil
	default:
		return cellerr.At(cellerr.Syntax, t.Pos, "unexpected token")
	}
}

func (p *parser) peekNextIsLParen() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Kind == token.LParen
}

func (p *parser) parseFunctionCall() (fnode.Function, error) {
	name := p.toks[p.pos-1].Literal
	p.advance() // '('
	var args []fnode.Component
	arg, err := p.parseArg()
	if err != nil {
		return fnode.Function{}, err
	}
	args = append(args, arg)
	for p.peek().Kind == token.Semicolon {
		p.advance()
		arg, err := p.parseArg()
		if err != nil {
			return fnode.Function{}, err
		}
		args = append(args, arg)
	}
	p.advance() // ')'
	return fnode.Function{Name: name, Args: args}, nil
}

func (p *parser) parseArg() (fnode.Component, error) {
	t := p.peek()
	switch {
	case t.Kind == token.Plus || t.Kind == token.Minus:
		p.advance()
		num := p.advance()
		n := parseFloat(num.Literal)
		if t.Kind == token.Minus {
			n = -n
		}
		return fnode.Number(n), nil
	case t.Kind == token.Number:
		p.advance()
		return fnode.Number(parseFloat(t.Literal)), nil
	case t.Kind == token.Ident && token.FunctionNames[t.Literal] && p.peekNextIsLParen():
		p.advance()
		return p.parseFunctionCall()
	case t.Kind == token.Ident:
		start, err := coordinates.FromID(t.Literal, p.dims.NumRows, p.dims.NumCols)
		if err != nil {
			return nil, err
		}
		p.advance()
		if p.peek().Kind == token.Colon {
			p.advance()
			endTok := p.advance()
			end, err := coordinates.FromID(endTok.Literal, p.dims.NumRows, p.dims.NumCols)
			if err != nil {
				return nil, err
			}
			return fnode.Range{R: coordinates.NewRange(start, end)}, nil
		}
		return fnode.CellRef{Coord: start}, nil
	default:
		return nil, cellerr.At(cellerr.Syntax, t.Pos, "expected an argument")
	}
}

// parseFloat trusts the lexer's numeric literal shape (digits with at
// most one '.'); strconv.ParseFloat cannot fail on input the lexer
// already accepted.
func parseFloat(s string) float64 {
	n, _ := strconv.ParseFloat(s, 64)
	return n
}
