package table

import "fmt"

// Row maps column name to cell value
type Row map[string]Value

// Table is the single mutable dataset snapshot the pipeline threads through
// its stages. Headers keep source column order; derived columns append at the
// end and are never removed.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// New creates an empty table with the given column order
func New(headers ...string) *Table {
	h := make([]string, len(headers))
	copy(h, headers)
	return &Table{Headers: h}
}

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// AddColumn appends a derived column. Values shorter than the row count are
// padded with missing; an existing column of the same name is overwritten in
// place without changing header order.
func (t *Table) AddColumn(name string, values []Value) {
	if !t.HasColumn(name) {
		t.Headers = append(t.Headers, name)
	}
	for i := range t.Rows {
		if i < len(values) {
			t.Rows[i][name] = values[i]
		} else {
			t.Rows[i][name] = Missing()
		}
	}
}

// AppendRow adds a data row; cells for unknown columns are dropped
func (t *Table) AppendRow(row Row) {
	clean := make(Row, len(row))
	for _, h := range t.Headers {
		if v, ok := row[h]; ok {
			clean[h] = v
		} else {
			clean[h] = Missing()
		}
	}
	t.Rows = append(t.Rows, clean)
}

// Cell returns the value at (rowIdx, column); missing when absent
func (t *Table) Cell(rowIdx int, column string) Value {
	if rowIdx < 0 || rowIdx >= len(t.Rows) {
		return Missing()
	}
	if v, ok := t.Rows[rowIdx][column]; ok {
		return v
	}
	return Missing()
}

// Column returns all values of one column in row order
func (t *Table) Column(name string) []Value {
	out := make([]Value, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, name)
	}
	return out
}

// Numeric returns the column as float64s, NaN for missing/non-numeric cells
func (t *Table) Numeric(name string) []float64 {
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, name).Float()
	}
	return out
}

// NumericPresent returns only the non-missing numeric values of a column
func (t *Table) NumericPresent(name string) []float64 {
	out := make([]float64, 0, len(t.Rows))
	for i := range t.Rows {
		if n, ok := t.Cell(i, name).AsNumber(); ok {
			out = append(out, n)
		}
	}
	return out
}

// StringColumns returns the columns that carry text in at least one row.
// Purely-numeric columns never qualify.
func (t *Table) StringColumns() []string {
	var cols []string
	for _, h := range t.Headers {
		for i := range t.Rows {
			if t.Cell(i, h).IsString() {
				cols = append(cols, h)
				break
			}
		}
	}
	return cols
}

// NumericColumns returns the columns where every non-missing cell is numeric
// and at least one numeric cell exists.
func (t *Table) NumericColumns() []string {
	var cols []string
	for _, h := range t.Headers {
		hasNumeric := false
		allNumeric := true
		for i := range t.Rows {
			v := t.Cell(i, h)
			if v.IsMissing {
				continue
			}
			if _, ok := v.AsNumber(); ok {
				hasNumeric = true
			} else {
				allNumeric = false
				break
			}
		}
		if hasNumeric && allNumeric {
			cols = append(cols, h)
		}
	}
	return cols
}

// Filter returns a new table containing only the rows where keep is true.
// Headers are shared structure; rows are the same maps (column additions stay
// monotonic so aliasing is safe by contract).
func (t *Table) Filter(keep func(rowIdx int, row Row) bool) *Table {
	out := &Table{Headers: t.Headers}
	for i, row := range t.Rows {
		if keep(i, row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Len returns the row count
func (t *Table) Len() int {
	return len(t.Rows)
}

// Shape describes the table for diagnostics
func (t *Table) Shape() string {
	return fmt.Sprintf("%d rows x %d columns", len(t.Rows), len(t.Headers))
}
