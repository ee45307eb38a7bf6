package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shiftlab/domain/table"
	"shiftlab/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	csvName       = "analytic_shifts.csv"
	dbName        = "analytic_shifts.db"
	snapshotTable = "analytic_sample"
)

// Store persists the single derived dataset snapshot of a run: a CSV file
// for downstream statistical tools and a SQLite table for ad-hoc queries.
// It implements ports.SnapshotStore.
type Store struct {
	dir string
}

// NewStore creates a snapshot store writing into dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Persist writes both snapshot forms. Handles are released on every exit
// path; a partial run never leaves the database file locked.
func (s *Store) Persist(ctx context.Context, sample *table.Table) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "cannot create output directory"), err.Error())
	}
	if err := s.writeCSV(sample); err != nil {
		return err
	}
	return s.writeSQLite(ctx, sample)
}

func (s *Store) writeCSV(sample *table.Table) error {
	path := filepath.Join(s.dir, csvName)
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.New(errors.CodeSnapshotFailed, "cannot create CSV snapshot"), "%s", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sample.Headers); err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "CSV header write failed"), err.Error())
	}
	for i := 0; i < sample.Len(); i++ {
		record := make([]string, len(sample.Headers))
		for j, header := range sample.Headers {
			record[j] = renderCell(sample.Cell(i, header))
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "CSV row write failed"), err.Error())
		}
	}
	w.Flush()
	return w.Error()
}

// renderCell formats one cell for the CSV snapshot; numeric cells keep six
// decimals so re-runs produce byte-identical files, missing renders empty.
func renderCell(v table.Value) string {
	if v.IsMissing {
		return ""
	}
	if n, ok := v.AsNumber(); ok && v.NumericVal != nil {
		return strconv.FormatFloat(n, 'f', 6, 64)
	}
	return v.Render()
}

func (s *Store) writeSQLite(ctx context.Context, sample *table.Table) error {
	path := filepath.Join(s.dir, dbName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "cannot replace previous snapshot database"), err.Error())
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "cannot open snapshot database"), err.Error())
	}
	defer db.Close()

	cols := make([]string, len(sample.Headers))
	placeholders := make([]string, len(sample.Headers))
	for i, header := range sample.Headers {
		cols[i] = quoteIdent(header)
		placeholders[i] = "?"
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", snapshotTable, strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "snapshot table creation failed"), err.Error())
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "snapshot transaction failed"), err.Error())
	}
	defer tx.Rollback()

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		snapshotTable, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	for i := 0; i < sample.Len(); i++ {
		args := make([]interface{}, len(sample.Headers))
		for j, header := range sample.Headers {
			args[j] = bindCell(sample.Cell(i, header))
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "snapshot row insert failed"), err.Error())
		}
	}
	return tx.Commit()
}

// bindCell maps a cell onto a driver value; missing binds NULL
func bindCell(v table.Value) interface{} {
	switch {
	case v.IsMissing:
		return nil
	case v.NumericVal != nil:
		return *v.NumericVal
	case v.BooleanVal != nil:
		return *v.BooleanVal
	default:
		return v.Render()
	}
}

// quoteIdent wraps a column name for SQLite DDL
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
