// Package content implements the tagged Content variant of a cell: Text,
// Number, or Formula, as one sum type with an exhaustive switch per
// operation rather than a Content/Number/Text/Formula class hierarchy.
package content

import (
	"strconv"
	"strings"

	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/converter"
	"github.com/marcgallego/spreadsheet/coordinates"
	"github.com/marcgallego/spreadsheet/fnode"
	"github.com/marcgallego/spreadsheet/fparser"
	"github.com/marcgallego/spreadsheet/lexer"
	"github.com/marcgallego/spreadsheet/validator"
)

// Kind tags which variant a Content holds.
type Kind int

const (
	TextKind Kind = iota
	NumberKind
	FormulaKind
)

// Content is an immutable classification of one cell edit. A fresh
// Content is produced on every edit.
type Content struct {
	Kind    Kind
	Text    string   // valid when Kind == TextKind
	Number  float64  // valid when Kind == NumberKind
	Formula *Formula // valid when Kind == FormulaKind
}

// ValueState is the state of a Formula's cached evaluation.
type ValueState int

const (
	Undefined ValueState = iota
	Ok
	Errored
)

// CachedValue is a Formula's cached numeric value: undefined, a float, or
// a captured evaluation error.
type CachedValue struct {
	State ValueState
	Value float64
	Err   error
}

// Formula holds the source expression (without the leading '='), its
// lazily compiled postfix, and its cached value.
type Formula struct {
	Source  string
	Postfix []fnode.Component // nil until Compile succeeds
	Cached  CachedValue
}

// Classify is the factory for a cell edit: a leading '=' makes a
// Formula, a parseable decimal makes a Number, anything else is Text.
func Classify(raw string) Content {
	if strings.HasPrefix(raw, "=") {
		return Content{Kind: FormulaKind, Formula: &Formula{Source: raw[1:]}}
	}
	if n, ok := parseNumber(raw); ok {
		return Content{Kind: NumberKind, Number: n}
	}
	return Content{Kind: TextKind, Text: raw}
}

// parseNumber accepts an optional sign, digits, and at most one decimal
// point -- the same shape the formula lexer accepts for a Number token,
// kept independent of it since a bare cell value has no leading '='.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.':
			dots++
		case (ch == '+' || ch == '-') && i == 0:
		default:
			return 0, false
		}
	}
	if digits == 0 || dots > 1 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Dims bounds cell references a formula may contain.
type Dims = fparser.Dims

// Compile tokenizes, validates, parses, and converts f.Source to postfix,
// caching the result on f. The sheet must never store a Formula whose
// postfix failed to compile; callers check the
// returned error and reject the edit before any mutation.
func (f *Formula) Compile(dims Dims) error {
	toks, err := lexer.Tokenize(f.Source)
	if err != nil {
		return err
	}
	if err := validator.Validate(toks); err != nil {
		return err
	}
	infix, err := fparser.Parse(toks, dims)
	if err != nil {
		return err
	}
	f.Postfix = converter.ToPostfix(infix)
	return nil
}

// Dependencies returns the set of coordinates f's postfix reads: the
// union of every cell reference, range, and nested function argument.
// Well-defined only once f.Postfix is non-nil.
func (f *Formula) Dependencies() []coordinates.Coordinates {
	seen := make(map[coordinates.Coordinates]bool)
	var out []coordinates.Coordinates
	add := func(c coordinates.Coordinates) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	var walk func([]fnode.Component)
	walk = func(components []fnode.Component) {
		for _, c := range components {
			switch v := c.(type) {
			case fnode.CellRef:
				add(v.Coord)
			case fnode.Range:
				for _, coord := range v.R.Cells() {
					add(coord)
				}
			case fnode.Function:
				walk(v.Args)
			}
		}
	}
	walk(f.Postfix)
	return out
}

// ErrNotAFormula reports that a Content is not a Formula. No function in
// this module returns it: engine.GetFormulaExpression answers a
// non-formula cell with an empty string and a nil error.
var ErrNotAFormula = cellerr.New(cellerr.Reference, "cell is not a formula")
