package sqldrv

import (
	"context"
	"fmt"

	"shiftlab/domain/table"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Loader queries sheet-named tables through a database/sql driver. It backs
// the resolver's external-driver strategy for environments where native
// workbook parsing is unavailable (the export staged into a database, or the
// workbook locked for exclusive access by another process).
type Loader struct {
	driverName string
	dsn        string
}

// NewLoader creates a loader for the configured driver and DSN
func NewLoader(driverName, dsn string) *Loader {
	return &Loader{driverName: driverName, dsn: dsn}
}

// LoadSheet selects the full contents of one sheet-named table. The caller's
// context bounds both the connection and the query; the connection is closed
// on every exit path.
func (l *Loader) LoadSheet(ctx context.Context, sheet string) (*table.Table, error) {
	db, err := sqlx.ConnectContext(ctx, l.driverName, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("driver connect failed: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(sheet)))
	if err != nil {
		return nil, fmt.Errorf("sheet query failed for %q: %w", sheet, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("cannot describe sheet %q: %w", sheet, err)
	}

	t := table.New(headers...)
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("row scan failed for %q: %w", sheet, err)
		}
		row := make(table.Row, len(headers))
		for i, header := range headers {
			row[header] = coerceDriverValue(cells[i])
		}
		t.AppendRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sheet read failed for %q: %w", sheet, err)
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return t, nil
}

// coerceDriverValue maps database scan values onto table values
func coerceDriverValue(v interface{}) table.Value {
	switch val := v.(type) {
	case nil:
		return table.Missing()
	case float64:
		return table.Number(val)
	case float32:
		return table.Number(float64(val))
	case int64:
		return table.Number(float64(val))
	case int:
		return table.Number(float64(val))
	case bool:
		return table.Bool(val)
	case []byte:
		return table.Coerce(string(val))
	case string:
		return table.Coerce(val)
	default:
		return table.Coerce(fmt.Sprint(val))
	}
}
