// Package engine implements the edit orchestrator and exposes the
// read/write API the UI/controller collaborators use. It is the one
// place that touches content, sheet, depgraph, and postfixeval together;
// every other package below it takes the sheet (or nothing at all) as a
// parameter and never reaches back up.
package engine

import (
	"strconv"

	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/content"
	"github.com/marcgallego/spreadsheet/coordinates"
	"github.com/marcgallego/spreadsheet/depgraph"
	"github.com/marcgallego/spreadsheet/postfixeval"
	"github.com/marcgallego/spreadsheet/sheet"
)

// Engine owns one sheet and its dependency graph, and mediates every
// edit through a single edit protocol.
type Engine struct {
	Sheet *sheet.Sheet
	deps  *depgraph.Graph
}

// New returns an engine over a fresh sheet of the given dimensions.
func New(numRows, numCols int) *Engine {
	return &Engine{Sheet: sheet.New(numRows, numCols), deps: depgraph.New()}
}

// NewDefault returns an engine over a fresh 1000x1000 sheet.
func NewDefault() *Engine {
	return New(coordinates.DefaultNumRows, coordinates.DefaultNumCols)
}

// SetCell runs the full edit protocol for the cell named by id. A
// Lex/Syntax/Reference/Dependency error aborts the edit before any sheet
// mutation: the sheet and dependency index are left bit-identical to
// their pre-call state.
func (e *Engine) SetCell(id string, rawValue string) error {
	target, err := e.Sheet.ByID(id)
	if err != nil {
		return err
	}
	return e.setCellAt(target, rawValue)
}

func (e *Engine) setCellAt(target coordinates.Coordinates, rawValue string) error {
	newContent := content.Classify(rawValue)

	var deps []coordinates.Coordinates
	if newContent.Kind == content.FormulaKind {
		dims := content.Dims{NumRows: e.Sheet.NumRows, NumCols: e.Sheet.NumCols}
		if err := newContent.Formula.Compile(dims); err != nil {
			return err
		}
		deps = newContent.Formula.Dependencies()

		if err := e.deps.HasCycle(target, deps); err != nil {
			return err
		}

		e.evaluateFormula(newContent.Formula)
	}

	e.Sheet.Put(target, &newContent)
	e.deps.SetDependencies(target, deps)
	e.cascade(target)
	return nil
}

// evaluateFormula runs the postfix evaluator against the current sheet
// and caches the outcome on f: a failed evaluation leaves an *error*
// cached value rather than aborting the edit (sheet mutation already
// happened, or is about to).
func (e *Engine) evaluateFormula(f *content.Formula) {
	val, err := postfixeval.Evaluate(f.Postfix, e.Sheet)
	if err != nil {
		f.Cached = content.CachedValue{State: content.Errored, Err: err}
		return
	}
	f.Cached = content.CachedValue{State: content.Ok, Value: val}
}

// cascade re-evaluates every transitive dependent of changed exactly
// once. A depth-first pass guarded by a visited set collects them, and
// they are evaluated in reverse post-order, so a cell reached through
// more than one path (a diamond in the dependency DAG) is recomputed
// only after every affected cell it reads. Termination is guaranteed
// because SetCell never installs an edit that would create a cycle. The
// order among independent siblings is implementation-defined.
func (e *Engine) cascade(changed coordinates.Coordinates) {
	visited := make(map[coordinates.Coordinates]bool)
	var postOrder []coordinates.Coordinates
	var visit func(coordinates.Coordinates)
	visit = func(c coordinates.Coordinates) {
		for _, dep := range e.deps.DependentsOf(c) {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			visit(dep)
			postOrder = append(postOrder, dep)
		}
	}
	visit(changed)
	for i := len(postOrder) - 1; i >= 0; i-- {
		cell := e.Sheet.Cell(postOrder[i])
		if cell.Content != nil && cell.Content.Kind == content.FormulaKind {
			e.evaluateFormula(cell.Content.Formula)
		}
	}
}

// AffectedBy returns id and every cell transitively reachable from it
// through the dependency graph, in depth-first discovery order with id
// first -- UI collaborators use this after a SetCell to know
// which cells to redraw without re-deriving the cascade themselves.
func (e *Engine) AffectedBy(id string) ([]string, error) {
	start, err := e.Sheet.ByID(id)
	if err != nil {
		return nil, err
	}
	visited := map[coordinates.Coordinates]bool{start: true}
	order := []coordinates.Coordinates{start}
	var visit func(coordinates.Coordinates)
	visit = func(c coordinates.Coordinates) {
		for _, dep := range e.deps.DependentsOf(c) {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			order = append(order, dep)
			visit(dep)
		}
	}
	visit(start)
	ids := make([]string, len(order))
	for i, c := range order {
		ids[i] = c.ToID()
	}
	return ids, nil
}

// GetCellNumber is the numeric view of a cell: it fails when the cell
// is non-numeric and non-empty (an empty cell reads back as 0).
func (e *Engine) GetCellNumber(id string) (float64, error) {
	c, err := e.Sheet.ByID(id)
	if err != nil {
		return 0, err
	}
	val, empty, err := e.Sheet.Lookup(c)
	if err != nil {
		return 0, err
	}
	if empty {
		return 0, nil
	}
	return val, nil
}

// GetCellString is the textual view of a cell. Numbers render in the
// shortest faithful decimal form (integer-valued floats without a
// decimal point); a Formula with a cached error returns its error rather
// than a display string.
func (e *Engine) GetCellString(id string) (string, error) {
	c, err := e.Sheet.ByID(id)
	if err != nil {
		return "", err
	}
	cell := e.Sheet.Cell(c)
	if cell.Content == nil {
		return "", nil
	}
	switch cell.Content.Kind {
	case content.TextKind:
		return cell.Content.Text, nil
	case content.NumberKind:
		return FormatNumber(cell.Content.Number), nil
	case content.FormulaKind:
		f := cell.Content.Formula
		switch f.Cached.State {
		case content.Ok:
			return FormatNumber(f.Cached.Value), nil
		case content.Errored:
			return "", f.Cached.Err
		default:
			return "", cellerr.New(cellerr.Evaluation, "cell %s has not been evaluated yet", id)
		}
	default:
		return "", nil
	}
}

// GetFormulaExpression returns the stored "=..." source, or "" if the
// cell is not a formula.
func (e *Engine) GetFormulaExpression(id string) (string, error) {
	c, err := e.Sheet.ByID(id)
	if err != nil {
		return "", err
	}
	cell := e.Sheet.Cell(c)
	if cell.Content == nil || cell.Content.Kind != content.FormulaKind {
		return "", nil
	}
	return "=" + cell.Content.Formula.Source, nil
}

// FormatNumber renders f in the shortest faithful decimal form:
// integer-valued floats dump without a decimal point.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
