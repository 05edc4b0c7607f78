// Package postfixeval is the postfix evaluator: compiled postfix plus a
// sheet snapshot in, a float64 or an evaluation error out.
package postfixeval

import (
	"fmt"

	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/coordinates"
	"github.com/marcgallego/spreadsheet/fnode"
	"github.com/marcgallego/spreadsheet/funcs"
)

// CellReader is the read-only view of the sheet the evaluator needs. It
// is implemented by *sheet.Sheet; postfixeval never imports sheet, so
// there is no back-reference from an operand to its owning sheet -- the
// sheet is passed in as a parameter, never embedded.
type CellReader interface {
	// Lookup returns the numeric coercion of the cell at c: empty is true
	// only when the cell holds no content at all. err is a *cellerr.Error
	// of kind Evaluation for an unparseable Text cell, a formula cell with
	// a cached evaluation error, or a formula cell never evaluated.
	Lookup(c coordinates.Coordinates) (value float64, empty bool, err error)
}

// Evaluate runs postfix against reader and returns its single scalar
// result.
func Evaluate(postfix []fnode.Component, reader CellReader) (float64, error) {
	var stack []float64

	pop2 := func() (float64, float64) {
		if len(stack) < 2 {
			panic(fmt.Sprintf("malformed postfix: operator needs 2 operands, stack has %d", len(stack)))
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		return a, b
	}

	for _, c := range postfix {
		switch v := c.(type) {
		case fnode.Number:
			stack = append(stack, float64(v))
		case fnode.CellRef:
			val, empty, err := reader.Lookup(v.Coord)
			if err != nil {
				return 0, err
			}
			if empty {
				val = 0 // a bare operand reference coerces an empty cell to 0
			}
			stack = append(stack, val)
		case fnode.Function:
			val, err := evalFunction(v, reader)
			if err != nil {
				return 0, err
			}
			stack = append(stack, val)
		case fnode.Operator:
			a, b := pop2()
			val, err := funcs.BinaryOp(byte(v), a, b)
			if err != nil {
				return 0, err
			}
			stack = append(stack, val)
		default:
			panic(fmt.Sprintf("malformed postfix: unexpected component %T", c))
		}
	}

	if len(stack) != 1 {
		panic(fmt.Sprintf("malformed postfix: expected 1 result, stack has %d", len(stack)))
	}
	return stack[0], nil
}

// evalFunction expands a function's arguments and applies the
// aggregation. Unlike a bare operand reference, empty cells inside
// ranges and cell-reference arguments are skipped rather than coerced
// to 0.
func evalFunction(fn fnode.Function, reader CellReader) (float64, error) {
	var vals []float64
	for _, arg := range fn.Args {
		switch a := arg.(type) {
		case fnode.Number:
			vals = append(vals, float64(a))
		case fnode.CellRef:
			val, empty, err := reader.Lookup(a.Coord)
			if err != nil {
				return 0, err
			}
			if !empty {
				vals = append(vals, val)
			}
		case fnode.Range:
			for _, coord := range a.R.Cells() {
				val, empty, err := reader.Lookup(coord)
				if err != nil {
					return 0, err
				}
				if !empty {
					vals = append(vals, val)
				}
			}
		case fnode.Function:
			val, err := evalFunction(a, reader)
			if err != nil {
				return 0, err
			}
			vals = append(vals, val)
		default:
			panic(fmt.Sprintf("malformed postfix: unexpected function argument %T", arg))
		}
	}

	result, ok := funcs.Apply(fn.Name, vals)
	if !ok {
		return 0, cellerr.New(cellerr.Reference, "unknown function %q", fn.Name)
	}
	return result, nil
}
