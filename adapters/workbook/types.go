package workbook

import "shiftlab/domain/table"

// Strategy names the fixed import strategies, in resolution order. The
// resolver never invents a strategy outside this list.
type Strategy string

const (
	StrategyNamedSheet  Strategy = "sheet:named"
	StrategyFirstSheet  Strategy = "sheet:first"
	StrategyRawNamed    Strategy = "allstring:named"
	StrategyRawFirst    Strategy = "allstring:first"
	StrategyDriver      Strategy = "driver:query"
	StrategyManualCSV   Strategy = "csv:manual"
)

// Attempt records one strategy try for diagnostics
type Attempt struct {
	Strategy Strategy `json:"strategy"`
	Sheet    string   `json:"sheet,omitempty"`
	Err      string   `json:"error,omitempty"`
}

// Resolution is a successful import: the raw table plus which strategy and
// sheet identifier produced it.
type Resolution struct {
	Table    *table.Table `json:"-"`
	Strategy Strategy     `json:"strategy"`
	Sheet    string       `json:"sheet"`
	Attempts []Attempt    `json:"attempts"`
}
