// Package tui is the terminal UI: a keyboard-navigable grid view driven
// directly against an engine.Engine, for users who don't want the
// browser-based server. Raw-mode handling uses golang.org/x/term
// (MakeRaw/Restore/IsTerminal); column layout uses golang.org/x/text/width
// so full-width (CJK) cell content still lines up in a monospace grid.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/text/width"

	"github.com/marcgallego/spreadsheet/coordinates"
	"github.com/marcgallego/spreadsheet/engine"
)

const (
	colWidth    = 10
	visibleRows = 20
	visibleCols = 8
)

// View is a raw-mode terminal session over an engine.
type View struct {
	Eng *engine.Engine
	in  *os.File
	out io.Writer

	cursorRow, cursorCol int
	topRow, leftCol      int
	editing              bool
	editBuf              []byte
}

// New returns a View over eng reading/writing the process's controlling
// terminal. ok is false when stdin/stdout are not a terminal (e.g. piped
// input in a test or CI run), in which case the caller should fall back
// to another collaborator.
func New(eng *engine.Engine) (*View, bool) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, false
	}
	return &View{Eng: eng, in: os.Stdin, out: os.Stdout}, true
}

// Run puts the terminal in raw mode, renders the grid, and processes
// keystrokes until the user quits with Ctrl-C or input ends. Esc outside
// an edit is read as the start of an arrow-key sequence and does not
// quit.
func (v *View) Run() error {
	state, err := term.MakeRaw(int(v.in.Fd()))
	if err != nil {
		return fmt.Errorf("tui: enter raw mode: %w", err)
	}
	defer term.Restore(int(v.in.Fd()), state)

	v.render()
	buf := make([]byte, 1)
	for {
		n, err := v.in.Read(buf)
		if n == 0 || err != nil {
			return nil
		}
		if v.handleKey(buf[0]) {
			return nil
		}
		v.render()
	}
}

// handleKey processes one input byte, returning true when the session
// should end.
func (v *View) handleKey(b byte) bool {
	switch {
	case v.editing:
		return v.handleEditKey(b)
	case b == 3: // Ctrl-C
		return true
	case b == 0x1b: // Esc, possibly the start of an arrow-key sequence
		v.handleArrowMaybe()
		return false
	case b == '\r' || b == '\n':
		v.beginEdit()
		return false
	}
	return false
}

func (v *View) handleArrowMaybe() {
	seq := make([]byte, 2)
	if n, _ := v.in.Read(seq); n < 2 || seq[0] != '[' {
		return
	}
	switch seq[1] {
	case 'A':
		v.moveCursor(-1, 0)
	case 'B':
		v.moveCursor(1, 0)
	case 'C':
		v.moveCursor(0, 1)
	case 'D':
		v.moveCursor(0, -1)
	}
}

func (v *View) moveCursor(dRow, dCol int) {
	row := clamp(v.cursorRow+dRow, 0, v.Eng.Sheet.NumRows-1)
	col := clamp(v.cursorCol+dCol, 0, v.Eng.Sheet.NumCols-1)
	v.cursorRow, v.cursorCol = row, col
	if row < v.topRow {
		v.topRow = row
	} else if row >= v.topRow+visibleRows {
		v.topRow = row - visibleRows + 1
	}
	if col < v.leftCol {
		v.leftCol = col
	} else if col >= v.leftCol+visibleCols {
		v.leftCol = col - visibleCols + 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (v *View) beginEdit() {
	c := coordinates.Coordinates{Row: v.cursorRow, Col: v.cursorCol}
	existing, _ := v.Eng.GetFormulaExpression(c.ToID())
	if existing == "" {
		existing, _ = v.Eng.GetCellString(c.ToID())
	}
	v.editing = true
	v.editBuf = []byte(existing)
}

func (v *View) handleEditKey(b byte) bool {
	switch b {
	case '\r', '\n':
		c := coordinates.Coordinates{Row: v.cursorRow, Col: v.cursorCol}
		_ = v.Eng.SetCell(c.ToID(), string(v.editBuf)) // a rejected edit is dropped: the cell keeps its previous content and no error is shown
		v.editing = false
		v.editBuf = nil
	case 0x1b: // cancel edit
		v.editing = false
		v.editBuf = nil
	case 127, 8: // backspace
		if len(v.editBuf) > 0 {
			v.editBuf = v.editBuf[:len(v.editBuf)-1]
		}
	default:
		v.editBuf = append(v.editBuf, b)
	}
	return false
}

// render redraws the visible window of the grid, a colLabels header row
// followed by rowLabel-prefixed data rows, each cell padded to colWidth
// by its display-string width rather than its byte length.
func (v *View) render() {
	fmt.Fprint(v.out, "\x1b[2J\x1b[H") // clear screen, home cursor

	cols := v.Eng.Sheet.ColLabels()
	rows := v.Eng.Sheet.RowLabels()

	fmt.Fprint(v.out, "     ")
	for col := v.leftCol; col < v.leftCol+visibleCols && col < len(cols); col++ {
		fmt.Fprint(v.out, pad(cols[col], colWidth))
	}
	fmt.Fprint(v.out, "\r\n")

	for row := v.topRow; row < v.topRow+visibleRows && row < len(rows); row++ {
		fmt.Fprint(v.out, pad(rows[row], 5))
		for col := v.leftCol; col < v.leftCol+visibleCols && col < len(cols); col++ {
			c := coordinates.Coordinates{Row: row, Col: col}
			text, err := v.Eng.GetCellString(c.ToID())
			if err != nil {
				text = "#ERR"
			}
			if row == v.cursorRow && col == v.cursorCol && v.editing {
				text = string(v.editBuf)
			}
			fmt.Fprint(v.out, pad(text, colWidth))
		}
		fmt.Fprint(v.out, "\r\n")
	}

	sel := coordinates.Coordinates{Row: v.cursorRow, Col: v.cursorCol}.ToID()
	formula, _ := v.Eng.GetFormulaExpression(sel)
	fmt.Fprintf(v.out, "\r\n%s: %s\r\n", sel, formula)
}

// pad right-pads s to width display columns, measuring each rune's
// display width (1 for ASCII, 2 for CJK full-width forms) rather than
// assuming one column per rune.
func pad(s string, col int) string {
	w := displayWidth(s)
	if w >= col {
		// keep whole runes up to col-1 columns, one column for a separator
		var b strings.Builder
		n := 0
		for _, r := range s {
			rw := displayWidth(string(r))
			if n+rw > col-1 {
				break
			}
			b.WriteRune(r)
			n += rw
		}
		return b.String() + strings.Repeat(" ", col-n)
	}
	return s + strings.Repeat(" ", col-w)
}

func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
