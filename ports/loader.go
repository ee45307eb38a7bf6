package ports

import (
	"context"

	"shiftlab/domain/table"
)

// DriverLoader is the external-driver query strategy of the import resolver:
// a database-style connector that can select a sheet's contents when native
// workbook parsing is unavailable or the file is locked.
type DriverLoader interface {
	// LoadSheet queries one sheet-named table. The context carries the
	// caller-supplied timeout; expiry is fatal for the strategy.
	LoadSheet(ctx context.Context, sheet string) (*table.Table, error)
}
