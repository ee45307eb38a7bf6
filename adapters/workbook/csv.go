package workbook

import (
	"encoding/csv"
	"fmt"
	"os"

	"shiftlab/domain/table"
)

// readCSV loads the manual CSV fallback. The file is a human re-export, so it
// only exists when an operator created it; the resolver never reaches here
// without explicit opt-in.
func readCSV(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV fallback: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV fallback: %w", err)
	}

	return tableFromRows(rows, false)
}
