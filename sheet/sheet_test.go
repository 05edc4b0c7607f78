package sheet

import (
	"testing"

	"github.com/marcgallego/spreadsheet/content"
	"github.com/marcgallego/spreadsheet/coordinates"
)

func TestEmptyCellLookupIsEmpty(t *testing.T) {
	s := New(10, 10)
	val, empty, err := s.Lookup(coordinates.Coordinates{Row: 0, Col: 0})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !empty || val != 0 {
		t.Errorf("got (%v, %v), want (0, true)", val, empty)
	}
}

func TestPutAndLookupNumber(t *testing.T) {
	s := New(10, 10)
	c := coordinates.Coordinates{Row: 0, Col: 0}
	n := content.Classify("42")
	s.Put(c, &n)

	val, empty, err := s.Lookup(c)
	if err != nil || empty || val != 42 {
		t.Errorf("got (%v, %v, %v), want (42, false, nil)", val, empty, err)
	}
}

func TestLookupTextThatIsNotANumberFails(t *testing.T) {
	s := New(10, 10)
	c := coordinates.Coordinates{Row: 0, Col: 0}
	txt := content.Classify("hello")
	s.Put(c, &txt)

	if _, _, err := s.Lookup(c); err == nil {
		t.Error("expected Lookup on non-numeric text to fail")
	}
}

func TestOccupiedSortedRowMajorAndSkipsNilContent(t *testing.T) {
	s := New(10, 10)
	n1 := content.Classify("1")
	n2 := content.Classify("2")
	s.Put(coordinates.Coordinates{Row: 1, Col: 0}, &n1)
	s.Put(coordinates.Coordinates{Row: 0, Col: 5}, &n2)
	s.Cell(coordinates.Coordinates{Row: 5, Col: 5}) // touched but never given content

	occ := s.Occupied()
	if len(occ) != 2 {
		t.Fatalf("expected 2 occupied cells, got %d: %+v", len(occ), occ)
	}
	if occ[0] != (coordinates.Coordinates{Row: 0, Col: 5}) || occ[1] != (coordinates.Coordinates{Row: 1, Col: 0}) {
		t.Errorf("expected row-major order, got %+v", occ)
	}
}

func TestClearEmptiesSheet(t *testing.T) {
	s := New(10, 10)
	n := content.Classify("1")
	s.Put(coordinates.Coordinates{Row: 0, Col: 0}, &n)
	s.Clear()
	if occ := s.Occupied(); len(occ) != 0 {
		t.Errorf("expected no occupied cells after Clear, got %+v", occ)
	}
}

func TestColLabelsAndRowLabels(t *testing.T) {
	s := New(3, 3)
	if cols := s.ColLabels(); len(cols) != 3 || cols[0] != "A" || cols[2] != "C" {
		t.Errorf("unexpected ColLabels: %+v", cols)
	}
	if rows := s.RowLabels(); len(rows) != 3 || rows[0] != "1" || rows[2] != "3" {
		t.Errorf("unexpected RowLabels: %+v", rows)
	}
}

func TestByIDRejectsOutOfBounds(t *testing.T) {
	s := New(5, 5)
	if _, err := s.ByID("Z9"); err == nil {
		t.Error("expected an out-of-bounds id to be rejected")
	}
}

func TestFormulaCellUndefinedLookupFails(t *testing.T) {
	s := New(10, 10)
	c := coordinates.Coordinates{Row: 0, Col: 0}
	f := content.Classify("=A2")
	s.Put(c, &f)

	if _, _, err := s.Lookup(c); err == nil {
		t.Error("expected Lookup on an unevaluated formula cell to fail")
	}
}
