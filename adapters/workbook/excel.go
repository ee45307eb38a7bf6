package workbook

import (
	"fmt"
	"strings"

	"shiftlab/domain/table"

	"github.com/xuri/excelize/v2"
)

// sheetRows reads one sheet's cell grid. With raw set, every cell comes back
// as its stored text, which protects mixed-type columns from typed parsing
// failures (the allstring variants).
func sheetRows(f *excelize.File, sheet string, raw bool) ([][]string, error) {
	if raw {
		return f.GetRows(sheet, excelize.Options{RawCellValue: true})
	}
	return f.GetRows(sheet)
}

// tableFromRows converts a cell grid into a raw table. The header row is the
// first row; blank header cells get pandas-style positional names so merged
// label columns stay addressable. With allText set, cells keep their text
// verbatim instead of numeric coercion.
func tableFromRows(rows [][]string, allText bool) (*table.Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet must have a header row and at least one data row, got %d rows", len(rows))
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		name := strings.TrimSpace(header)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		headers[i] = name
	}

	t := table.New(headers...)
	for i := 1; i < len(rows); i++ {
		row := make(table.Row, len(headers))
		for j, header := range headers {
			var cell string
			if j < len(rows[i]) {
				cell = rows[i][j]
			}
			if allText {
				row[header] = table.String(strings.TrimSpace(cell))
			} else {
				row[header] = table.Coerce(cell)
			}
		}
		t.AppendRow(row)
	}
	return t, nil
}

// hasSheet reports whether the workbook contains the named sheet
func hasSheet(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}
