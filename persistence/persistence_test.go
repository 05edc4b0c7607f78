package persistence

import (
	"strings"
	"testing"

	"github.com/marcgallego/spreadsheet/engine"
)

func TestDumpAndLoadRoundTrip(t *testing.T) {
	e := engine.NewDefault()
	if err := e.SetCell("A1", "10"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if err := e.SetCell("B1", "=A1+5"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if err := e.SetCell("A2", "hello"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}

	data, err := Dump(e)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	loaded := engine.NewDefault()
	if err := LoadString(loaded, data); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	got, err := loaded.GetCellNumber("B1")
	if err != nil {
		t.Fatalf("GetCellNumber(B1) after reload: %v", err)
	}
	if got != 15 {
		t.Errorf("got %v, want 15", got)
	}
	s, err := loaded.GetCellString("A2")
	if err != nil || s != "hello" {
		t.Errorf("got (%q, %v), want (%q, nil)", s, err, "hello")
	}
}

func TestDumpEscapesSemicolonsInFormulas(t *testing.T) {
	e := engine.NewDefault()
	if err := e.SetCell("A1", "1"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if err := e.SetCell("A2", "2"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if err := e.SetCell("B1", "=SUMA(A1:A2;10)"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}

	data, err := Dump(e)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Contains(data, "SUMA(A1:A2;10)") {
		t.Errorf("expected the formula's ';' to be escaped to ',' in the dump, got %q", data)
	}
	if !strings.Contains(data, "SUMA(A1:A2,10)") {
		t.Errorf("expected an escaped formula in the dump, got %q", data)
	}

	loaded := engine.NewDefault()
	if err := LoadString(loaded, data); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	got, err := loaded.GetCellNumber("B1")
	if err != nil || got != 13 {
		t.Errorf("got (%v, %v), want (13, nil)", got, err)
	}
}

func TestDumpTrimsTrailingEmptyCellsAndRows(t *testing.T) {
	e := engine.NewDefault()
	if err := e.SetCell("A1", "1"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	// leave B1 onward and every row after row 0 empty

	data, err := Dump(e)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if data != "1" {
		t.Errorf("expected trailing emptiness trimmed to just %q, got %q", "1", data)
	}
}

func TestDumpPreservesLeadingEmptyFields(t *testing.T) {
	e := engine.NewDefault()
	if err := e.SetCell("B1", "1"); err != nil { // A1 left empty, B1 occupied
		t.Fatalf("SetCell: %v", err)
	}

	data, err := Dump(e)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if data != ";1" {
		t.Errorf("expected a leading empty field preserved, got %q", data)
	}
}

func TestLoadOutOfOrderDependencyRepairsViaCascade(t *testing.T) {
	// A1 = B1+0 appears in the file before B1 is set; the cascade from
	// setting B1 afterward must repair A1's cached value.
	data := "=B1+0;10"
	e := engine.NewDefault()
	if err := LoadString(e, data); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	got, err := e.GetCellNumber("A1")
	if err != nil {
		t.Fatalf("GetCellNumber(A1): %v", err)
	}
	if got != 10 {
		t.Errorf("got %v, want 10", got)
	}
}

func TestDumpEmptySheet(t *testing.T) {
	e := engine.NewDefault()
	data, err := Dump(e)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if data != "" {
		t.Errorf("expected an empty dump for an empty sheet, got %q", data)
	}
}
