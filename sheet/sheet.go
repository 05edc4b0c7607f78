// Package sheet implements the grid of cells: addressable by Coordinates,
// textual id, or (row, col), with the sheet the sole mutator of its
// cells. Cells are conceptually a dense NumRows x NumCols array of fixed
// slots; this stores only the slots that have ever held content, in a
// map keyed by Coordinates -- a 1000x1000 default grid is overwhelmingly
// empty in practice, and a slot that was never written behaves
// identically to an eagerly-allocated empty one.
package sheet

import (
	"sort"
	"strconv"
	"sync"

	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/content"
	"github.com/marcgallego/spreadsheet/coordinates"
)

// Cell owns at most one Content. A Cell with a nil Content is empty.
type Cell struct {
	Coord   coordinates.Coordinates
	Content *content.Content
}

// Sheet is a grid of cells plus its configured dimensions.
type Sheet struct {
	mu      sync.RWMutex
	cells   map[coordinates.Coordinates]*Cell
	NumRows int
	NumCols int
}

// New returns an empty sheet with the given dimensions.
func New(numRows, numCols int) *Sheet {
	return &Sheet{
		cells:   make(map[coordinates.Coordinates]*Cell),
		NumRows: numRows,
		NumCols: numCols,
	}
}

// NewDefault returns an empty sheet at the default 1000x1000 grid size.
func NewDefault() *Sheet {
	return New(coordinates.DefaultNumRows, coordinates.DefaultNumCols)
}

// ColLabels returns the bijective base-26 column header for every column
// in the sheet ("A", "B", ..., "Z", "AA", ...), for UI collaborators that
// render a header row without recomputing it per cell.
func (s *Sheet) ColLabels() []string {
	out := make([]string, s.NumCols)
	for i := range out {
		out[i] = coordinates.ColumnLabel(i)
	}
	return out
}

// RowLabels returns the 1-based row header for every row in the sheet.
func (s *Sheet) RowLabels() []string {
	out := make([]string, s.NumRows)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

// ByID resolves a textual cell id to Coordinates, bound-checked.
func (s *Sheet) ByID(id string) (coordinates.Coordinates, error) {
	return coordinates.FromID(id, s.NumRows, s.NumCols)
}

// ByRowCol resolves a (row, col) pair to Coordinates, bound-checked.
func (s *Sheet) ByRowCol(row, col int) (coordinates.Coordinates, error) {
	return coordinates.New(row, col, s.NumRows, s.NumCols)
}

// Cell returns the cell at c, creating (and retaining) an empty slot if
// none exists yet. Callers must hold no lock; Cell takes its own.
func (s *Sheet) Cell(c coordinates.Coordinates) *Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cellLocked(c)
}

func (s *Sheet) cellLocked(c coordinates.Coordinates) *Cell {
	cell, ok := s.cells[c]
	if !ok {
		cell = &Cell{Coord: c}
		s.cells[c] = cell
	}
	return cell
}

// Put installs newContent at c, replacing whatever was there.
func (s *Sheet) Put(c coordinates.Coordinates, newContent *content.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellLocked(c).Content = newContent
}

// Clear empties every cell.
func (s *Sheet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = make(map[coordinates.Coordinates]*Cell)
}

// Occupied returns every coordinate with non-nil content, sorted
// row-major -- used by persistence to dump a sheet and by the UI
// collaborators to enumerate what to render.
func (s *Sheet) Occupied() []coordinates.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]coordinates.Coordinates, 0, len(s.cells))
	for c, cell := range s.cells {
		if cell.Content != nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Lookup implements postfixeval.CellReader: the numeric coercion of the
// cell at c. empty is true only when the cell holds no content at all;
// a Text cell that happens to hold the empty string is not "empty" in
// this sense and coerces like any other unparseable text.
func (s *Sheet) Lookup(c coordinates.Coordinates) (value float64, empty bool, err error) {
	s.mu.RLock()
	cell, ok := s.cells[c]
	s.mu.RUnlock()
	if !ok || cell.Content == nil {
		return 0, true, nil
	}

	switch cell.Content.Kind {
	case content.NumberKind:
		return cell.Content.Number, false, nil
	case content.TextKind:
		n, ok := parseNumber(cell.Content.Text)
		if !ok {
			return 0, false, cellerr.New(cellerr.Evaluation,
				"cell %s is not a number", c.ToID())
		}
		return n, false, nil
	case content.FormulaKind:
		f := cell.Content.Formula
		switch f.Cached.State {
		case content.Ok:
			return f.Cached.Value, false, nil
		case content.Errored:
			return 0, false, cellerr.New(cellerr.Evaluation,
				"cell %s has an upstream error: %v", c.ToID(), f.Cached.Err)
		default:
			return 0, false, cellerr.New(cellerr.Evaluation,
				"cell %s has not been evaluated yet", c.ToID())
		}
	default:
		return 0, true, nil
	}
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	return n, err == nil
}
