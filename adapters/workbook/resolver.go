package workbook

import (
	"context"
	"fmt"
	"os"
	"time"

	"shiftlab/domain/table"
	"shiftlab/internal"
	"shiftlab/internal/errors"
	"shiftlab/ports"

	"github.com/xuri/excelize/v2"
)

// Resolver tries the fixed, ordered sequence of import strategies against one
// workbook and stops at the first success. Every attempt is side-effect-free
// on failure, and re-resolving an unchanged file yields the same result.
type Resolver struct {
	path       string
	candidates []string
	csvPath    string
	driver     ports.DriverLoader
	timeout    time.Duration
	log        *internal.Logger
}

// NewResolver creates a resolver for one workbook. driver may be nil when no
// external connector is configured; csvPath empty disables the manual CSV
// strategy (it is never auto-triggered).
func NewResolver(path string, candidates []string, opts ...Option) *Resolver {
	r := &Resolver{
		path:       path,
		candidates: candidates,
		timeout:    30 * time.Second,
		log:        internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures optional resolver collaborators
type Option func(*Resolver)

// WithDriver enables the external-driver query strategy
func WithDriver(loader ports.DriverLoader, timeout time.Duration) Option {
	return func(r *Resolver) {
		r.driver = loader
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithCSVFallback enables the manual CSV strategy (explicit operator opt-in)
func WithCSVFallback(path string) Option {
	return func(r *Resolver) { r.csvPath = path }
}

// WithLogger overrides the diagnostics logger
func WithLogger(log *internal.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// Resolve runs the strategy sequence. A missing path is fatal immediately;
// any other failure falls through to the next strategy, and only exhaustion
// of the whole sequence is promoted to a terminal error.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, errors.FileNotFound(r.path)
	}

	res := &Resolution{}

	f, openErr := excelize.OpenFile(r.path)
	if openErr != nil {
		// Locked or corrupt workbooks still get the driver and CSV
		// strategies; the taxonomy only becomes terminal after them.
		r.log.Warn("workbook unreadable natively, native strategies skipped: %v", openErr)
	} else {
		defer f.Close()

		for _, raw := range []bool{false, true} {
			if ok := r.tryNative(f, raw, res); ok {
				return res, nil
			}
		}
	}

	if ok := r.tryDriver(ctx, res); ok {
		return res, nil
	}

	if ok := r.tryCSV(res); ok {
		return res, nil
	}

	cause := error(errors.SheetExhausted(r.path, r.candidates))
	if openErr != nil {
		cause = errors.WorkbookUnreadable(r.path, openErr)
	}
	terminal := errors.AllStrategiesFailed(r.path)
	terminal.Cause = cause
	return nil, terminal
}

// tryNative runs the named-candidate pass then the positional first-sheet
// fallback, typed or allstring depending on raw.
func (r *Resolver) tryNative(f *excelize.File, raw bool, res *Resolution) bool {
	named, first := StrategyNamedSheet, StrategyFirstSheet
	if raw {
		named, first = StrategyRawNamed, StrategyRawFirst
	}

	for _, candidate := range r.candidates {
		if !hasSheet(f, candidate) {
			res.Attempts = append(res.Attempts, Attempt{Strategy: named, Sheet: candidate, Err: "sheet not present"})
			continue
		}
		if r.readInto(f, candidate, raw, named, res) {
			return true
		}
	}

	firstSheet := f.GetSheetName(0)
	if firstSheet == "" {
		res.Attempts = append(res.Attempts, Attempt{Strategy: first, Err: "workbook has no sheets"})
		return false
	}
	return r.readInto(f, firstSheet, raw, first, res)
}

func (r *Resolver) readInto(f *excelize.File, sheet string, raw bool, strategy Strategy, res *Resolution) bool {
	rows, err := sheetRows(f, sheet, raw)
	if err == nil {
		var t *table.Table
		t, err = tableFromRows(rows, raw)
		if err == nil {
			r.succeed(res, t, strategy, sheet)
			return true
		}
	}
	res.Attempts = append(res.Attempts, Attempt{Strategy: strategy, Sheet: sheet, Err: err.Error()})
	return false
}

// tryDriver runs the external-driver query strategy, bounded by the
// caller-supplied timeout. Timeout is fatal for the strategy; a locked file
// rarely unlocks within the same run, so there is no retry.
func (r *Resolver) tryDriver(ctx context.Context, res *Resolution) bool {
	if r.driver == nil {
		r.log.Debug("external-driver strategy skipped: no connector configured")
		return false
	}

	for _, candidate := range r.candidates {
		queryCtx, cancel := context.WithTimeout(ctx, r.timeout)
		t, err := r.driver.LoadSheet(queryCtx, candidate)
		timedOut := queryCtx.Err() != nil
		cancel()
		if err != nil {
			res.Attempts = append(res.Attempts, Attempt{Strategy: StrategyDriver, Sheet: candidate, Err: err.Error()})
			if timedOut {
				// Timed out; further candidates would hit the same lock
				return false
			}
			continue
		}
		r.succeed(res, t, StrategyDriver, candidate)
		return true
	}
	return false
}

func (r *Resolver) tryCSV(res *Resolution) bool {
	if r.csvPath == "" {
		return false
	}
	t, err := readCSV(r.csvPath)
	if err != nil {
		res.Attempts = append(res.Attempts, Attempt{Strategy: StrategyManualCSV, Sheet: r.csvPath, Err: err.Error()})
		return false
	}
	r.succeed(res, t, StrategyManualCSV, r.csvPath)
	return true
}

func (r *Resolver) succeed(res *Resolution, t *table.Table, strategy Strategy, sheet string) {
	res.Table = t
	res.Strategy = strategy
	res.Sheet = sheet
	r.log.Info("import resolved via %s (target=%s, %s)", strategy, sheet, t.Shape())
}

// Describe renders the attempt history for diagnostics
func (res *Resolution) Describe() string {
	return fmt.Sprintf("strategy=%s sheet=%s after %d failed attempts", res.Strategy, res.Sheet, len(res.Attempts))
}
