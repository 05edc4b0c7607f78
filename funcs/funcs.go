// Package funcs implements the four aggregation functions and the four
// binary arithmetic operators, operating on plain float64 values.
// Argument expansion (resolving cell references and ranges to floats) is
// a postfixeval concern, since it needs sheet access; this package only
// ever sees the flattened list.
package funcs

import "github.com/marcgallego/spreadsheet/cellerr"

// Sum returns the sum of vals; an empty input sums to 0.
func Sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

// Average returns the arithmetic mean of vals; an empty input averages
// to 0, not NaN.
func Average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return Sum(vals) / float64(len(vals))
}

// Max returns the maximum of vals; an empty input is 0.
func Max(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the minimum of vals; an empty input is 0.
func Min(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Apply applies the aggregation function called name to vals and
// returns its result; ok is false for an unrecognized name (caught
// earlier by the lexer/validator, but checked defensively here too since
// this is the single choke point every formula result flows through).
func Apply(name string, vals []float64) (float64, bool) {
	switch name {
	case "SUMA":
		return Sum(vals), true
	case "PROMEDIO":
		return Average(vals), true
	case "MAX":
		return Max(vals), true
	case "MIN":
		return Min(vals), true
	default:
		return 0, false
	}
}

// BinaryOp applies one of + - * / to a and b. Division by zero is an
// Evaluation error, not a panic or an Inf/NaN result.
func BinaryOp(op byte, a, b float64) (float64, error) {
	switch op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	case '/':
		if b == 0 {
			return 0, cellerr.New(cellerr.Evaluation, "division by zero")
		}
		return a / b, nil
	default:
		return 0, cellerr.New(cellerr.Evaluation, "unknown operator %q", string(op))
	}
}
