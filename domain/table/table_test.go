package table

import (
	"math"
	"testing"
)

func TestCoerce(t *testing.T) {
	t.Run("numeric wins over string", func(t *testing.T) {
		v := Coerce("0.25")
		n, ok := v.AsNumber()
		if !ok || n != 0.25 {
			t.Fatalf("expected numeric 0.25, got %v", v)
		}
	})

	t.Run("decimal comma parses", func(t *testing.T) {
		v := Coerce("0,25")
		n, ok := v.AsNumber()
		if !ok || n != 0.25 {
			t.Fatalf("expected numeric 0.25 from comma form, got %v", v)
		}
	})

	t.Run("empty and whitespace are missing", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "\t"} {
			if !Coerce(raw).IsMissing {
				t.Errorf("Coerce(%q) should be missing", raw)
			}
		}
	})

	t.Run("text stays text", func(t *testing.T) {
		v := Coerce("Control")
		s, ok := v.AsString()
		if !ok || s != "Control" {
			t.Fatalf("expected string Control, got %v", v)
		}
		if _, ok := v.AsNumber(); ok {
			t.Error("Control should not be numeric")
		}
	})
}

func TestValueFloat(t *testing.T) {
	if !math.IsNaN(Missing().Float()) {
		t.Error("missing value must float to NaN")
	}
	if Number(1.5).Float() != 1.5 {
		t.Error("numeric value must round-trip")
	}
	// Strings that parse as numbers qualify (allstring import mode)
	if String("2.5").Float() != 2.5 {
		t.Error("numeric text must float")
	}
}

func buildTable() *Table {
	tbl := New("id", "score", "label")
	tbl.AppendRow(Row{"id": Number(1), "score": Number(0.2), "label": String("Control")})
	tbl.AppendRow(Row{"id": Number(2), "score": Missing(), "label": Missing()})
	tbl.AppendRow(Row{"id": Number(3), "score": Number(0.6), "label": String("Tratamiento")})
	return tbl
}

func TestTableColumns(t *testing.T) {
	tbl := buildTable()

	t.Run("numeric columns exclude text", func(t *testing.T) {
		cols := tbl.NumericColumns()
		want := map[string]bool{"id": true, "score": true}
		if len(cols) != 2 {
			t.Fatalf("expected 2 numeric columns, got %v", cols)
		}
		for _, c := range cols {
			if !want[c] {
				t.Errorf("unexpected numeric column %s", c)
			}
		}
	})

	t.Run("string columns include sparse text", func(t *testing.T) {
		cols := tbl.StringColumns()
		if len(cols) != 1 || cols[0] != "label" {
			t.Fatalf("expected [label], got %v", cols)
		}
	})

	t.Run("numeric present skips missing", func(t *testing.T) {
		vals := tbl.NumericPresent("score")
		if len(vals) != 2 || vals[0] != 0.2 || vals[1] != 0.6 {
			t.Fatalf("unexpected values %v", vals)
		}
	})
}

func TestTableMutation(t *testing.T) {
	tbl := buildTable()

	t.Run("add column pads short values with missing", func(t *testing.T) {
		tbl.AddColumn("derived", []Value{Number(1)})
		if tbl.Cell(0, "derived").Float() != 1 {
			t.Error("first row should carry the value")
		}
		if !tbl.Cell(2, "derived").IsMissing {
			t.Error("unpadded rows must be missing")
		}
	})

	t.Run("filter keeps row order and shares columns", func(t *testing.T) {
		kept := tbl.Filter(func(i int, _ Row) bool {
			return !tbl.Cell(i, "score").IsMissing
		})
		if kept.Len() != 2 {
			t.Fatalf("expected 2 rows, got %d", kept.Len())
		}
		if kept.Cell(0, "id").Float() != 1 || kept.Cell(1, "id").Float() != 3 {
			t.Error("filter must preserve original row order")
		}
	})

	t.Run("cell out of range is missing", func(t *testing.T) {
		if !tbl.Cell(99, "id").IsMissing {
			t.Error("out-of-range cell must be missing")
		}
		if !tbl.Cell(0, "nope").IsMissing {
			t.Error("unknown column must be missing")
		}
	})
}
