package postfixeval

import (
	"testing"

	"github.com/marcgallego/spreadsheet/coordinates"
	"github.com/marcgallego/spreadsheet/fnode"
)

// fakeSheet is a minimal CellReader for testing, independent of the real
// sheet package.
type fakeSheet map[coordinates.Coordinates]float64

func (f fakeSheet) Lookup(c coordinates.Coordinates) (float64, bool, error) {
	v, ok := f[c]
	if !ok {
		return 0, true, nil
	}
	return v, false, nil
}

func cell(row, col int) coordinates.Coordinates {
	return coordinates.Coordinates{Row: row, Col: col}
}

func TestEvaluateArithmetic(t *testing.T) {
	// 3 4 + -> 7
	postfix := []fnode.Component{fnode.Number(3), fnode.Number(4), fnode.Add}
	got, err := Evaluate(postfix, fakeSheet{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 7 {
		t.Errorf("got %v, want 7", got)
	}
}

func TestEvaluateCellRefCoercesEmptyToZero(t *testing.T) {
	// A1 5 + where A1 is empty -> 5
	postfix := []fnode.Component{fnode.CellRef{Coord: cell(0, 0)}, fnode.Number(5), fnode.Add}
	got, err := Evaluate(postfix, fakeSheet{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 5 {
		t.Errorf("got %v, want 5 (empty cell should coerce to 0)", got)
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	postfix := []fnode.Component{fnode.Number(1), fnode.Number(0), fnode.Div}
	if _, err := Evaluate(postfix, fakeSheet{}); err == nil {
		t.Error("expected a division-by-zero error")
	}
}

func TestEvaluateFunctionSkipsEmptyRangeCells(t *testing.T) {
	sheet := fakeSheet{cell(0, 0): 10, cell(2, 0): 20} // row 1 (A2) empty
	rng := fnode.Range{R: coordinates.NewRange(cell(0, 0), cell(2, 0))}
	fn := fnode.Function{Name: "SUMA", Args: []fnode.Component{rng}}
	got, err := Evaluate([]fnode.Component{fn}, sheet)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 30 {
		t.Errorf("got %v, want 30 (empty cell skipped, not coerced to 0)", got)
	}
}

func TestEvaluateFunctionSkipsEmptyCellRefArgument(t *testing.T) {
	sheet := fakeSheet{cell(0, 0): 10}
	fn := fnode.Function{Name: "PROMEDIO", Args: []fnode.Component{
		fnode.CellRef{Coord: cell(0, 0)},
		fnode.CellRef{Coord: cell(5, 5)}, // empty
	}}
	got, err := Evaluate([]fnode.Component{fn}, sheet)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 10 {
		t.Errorf("got %v, want 10 (average of just the one non-empty arg)", got)
	}
}

func TestEvaluateNestedFunction(t *testing.T) {
	sheet := fakeSheet{cell(0, 0): 1, cell(1, 0): 2, cell(2, 0): 100}
	inner := fnode.Function{Name: "SUMA", Args: []fnode.Component{
		fnode.Range{R: coordinates.NewRange(cell(0, 0), cell(1, 0))},
	}}
	outer := fnode.Function{Name: "MAX", Args: []fnode.Component{inner, fnode.CellRef{Coord: cell(2, 0)}}}
	got, err := Evaluate([]fnode.Component{outer}, sheet)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 100 {
		t.Errorf("got %v, want 100", got)
	}
}

func TestEvaluatePanicsOnMalformedPostfix(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic on an operator with too few operands")
		}
	}()
	postfix := []fnode.Component{fnode.Number(1), fnode.Add}
	_, _ = Evaluate(postfix, fakeSheet{})
}
