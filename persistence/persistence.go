// Package persistence implements the on-disk ".s2v" format: a flat,
// line-oriented serialization of a sheet. It operates only through
// engine.Engine's public SetCell/sheet reads, never reaching into
// sheet/content internals directly.
package persistence

import (
	"os"
	"strings"

	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/coordinates"
	"github.com/marcgallego/spreadsheet/engine"
)

// Extension is the file extension the UI collaborators enforce; the
// persistence and engine layers themselves accept any path.
const Extension = ".s2v"

// Dump renders eng's sheet to the on-disk format: one line per row,
// cells separated by ';', trailing empty cells and trailing empty rows
// trimmed, leading emptiness preserved as blank fields/lines.
func Dump(eng *engine.Engine) (string, error) {
	occupied := eng.Sheet.Occupied()
	if len(occupied) == 0 {
		return "", nil
	}

	maxRow := 0
	lastColOfRow := make(map[int]int)
	for _, c := range occupied {
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if cur, ok := lastColOfRow[c.Row]; !ok || c.Col > cur {
			lastColOfRow[c.Row] = c.Col
		}
	}

	lines := make([]string, maxRow+1)
	for row := 0; row <= maxRow; row++ {
		lastCol, ok := lastColOfRow[row]
		if !ok {
			lines[row] = ""
			continue
		}
		fields := make([]string, lastCol+1)
		for col := 0; col <= lastCol; col++ {
			c, err := eng.Sheet.ByRowCol(row, col)
			if err != nil {
				return "", err
			}
			field, err := dumpCell(eng, c)
			if err != nil {
				return "", err
			}
			fields[col] = field
		}
		lines[row] = strings.Join(fields, ";")
	}
	return strings.Join(lines, "\n"), nil
}

func dumpCell(eng *engine.Engine, c coordinates.Coordinates) (string, error) {
	expr, err := eng.GetFormulaExpression(c.ToID())
	if err != nil {
		return "", err
	}
	if expr != "" {
		// escape the in-expression ';' argument separators to ',' so
		// they don't collide with the row's cell delimiter
		return strings.ReplaceAll(expr, ";", ","), nil
	}
	s, err := eng.GetCellString(c.ToID())
	if err != nil {
		// no formula cell reaches here, errored or unevaluated
		// (GetFormulaExpression above returned its source); reading a
		// Text or Number cell does not fail, so this only passes an
		// id error through.
		return "", err
	}
	return s, nil
}

// Save writes eng's sheet to path in the .s2v format.
func Save(eng *engine.Engine, path string) error {
	data, err := Dump(eng)
	if err != nil {
		return cellerr.New(cellerr.IO, "save failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return cellerr.New(cellerr.IO, "save failed: %v", err)
	}
	return nil
}

// Load reads path and replays its cells into eng in on-disk order, the
// same SetCell protocol as an interactive edit: formula cells are
// evaluated in file order, relying on cascading recomputation to repair
// any out-of-order dependency.
func Load(eng *engine.Engine, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cellerr.New(cellerr.IO, "load failed: %v", err)
	}
	return LoadString(eng, string(raw))
}

// LoadString is Load without the filesystem round trip, split out for
// tests and for callers that already have the document in memory.
func LoadString(eng *engine.Engine, data string) error {
	if data == "" {
		return nil
	}
	lines := strings.Split(data, "\n")
	for row, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ";")
		for col, field := range fields {
			if field == "" {
				continue
			}
			if strings.HasPrefix(field, "=") {
				field = "=" + strings.ReplaceAll(field[1:], ",", ";")
			}
			c, err := eng.Sheet.ByRowCol(row, col)
			if err != nil {
				return cellerr.New(cellerr.IO, "load failed: %v", err)
			}
			if err := eng.SetCell(c.ToID(), field); err != nil {
				return cellerr.New(cellerr.IO, "load failed: cell %s: %v", c.ToID(), err)
			}
		}
	}
	return nil
}
