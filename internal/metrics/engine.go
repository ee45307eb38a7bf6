package metrics

import (
	"sort"

	"shiftlab/domain/study"
	"shiftlab/domain/table"
	"shiftlab/internal"
	"shiftlab/internal/errors"
)

// Result carries the analyzable sample plus the discovery diagnostics
type Result struct {
	// Sample is the analyzable table (pA, pD and a classified treat present)
	Sample *table.Table
	// Full is the widened participant table before the sample gate
	Full *table.Table
	// Groups maps section letter to its discovered column group
	Groups map[string][]string
	RowsIn int
}

// Engine computes the per-row section aggregates, the pairwise shifts and the
// pre/post aliases, then applies the single gate controlling which records
// reach modeling.
type Engine struct {
	schema study.Schema
	log    *internal.Logger
}

// New creates a metric engine for the declared schema
func New(schema study.Schema, log *internal.Logger) *Engine {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Engine{schema: schema, log: log}
}

// Derive widens the normalized table with pA..pD, shift_B..shift_D and the
// optim aliases, then filters to the analyzable sample. Sections A and D must
// discover non-empty groups; B and C emptiness is a supported degraded mode.
func (e *Engine) Derive(t *table.Table) (*Result, error) {
	groups, err := e.discoverGroups(t)
	if err != nil {
		return nil, err
	}

	for _, section := range study.Sections {
		e.addAggregate(t, section, groups[string(section)])
	}
	for _, section := range study.Sections[1:] {
		e.addShift(t, section)
	}
	e.addAliases(t)

	sample := t.Filter(func(i int, row table.Row) bool {
		if t.Cell(i, "pA").IsMissing || t.Cell(i, "pD").IsMissing {
			return false
		}
		treat, ok := t.Cell(i, study.ColTreat).AsNumber()
		return ok && (treat == 0 || treat == 1)
	})
	e.log.Info("analyzable sample: %d of %d records", sample.Len(), t.Len())

	if sample.Len() == 0 {
		return nil, errors.EmptySample()
	}
	return &Result{Sample: sample, Full: t, Groups: groups, RowsIn: t.Len()}, nil
}

// discoverGroups selects, per section, the numeric columns matching the
// schema's marker-plus-suffix pattern. Discovery sorts the matches so column
// order in the source never affects the result.
func (e *Engine) discoverGroups(t *table.Table) (map[string][]string, error) {
	numeric := make(map[string]bool)
	for _, col := range t.NumericColumns() {
		numeric[col] = true
	}

	groups := make(map[string][]string, len(study.Sections))
	for _, section := range study.Sections {
		var cols []string
		for _, col := range t.Headers {
			if numeric[col] && e.schema.MatchesSection(col, section) {
				cols = append(cols, col)
			}
		}
		sort.Strings(cols)
		groups[string(section)] = cols
		e.log.Info("section %s column group: %d columns %v", section, len(cols), cols)

		if len(cols) == 0 {
			if section.Mandatory() {
				return nil, errors.ColumnGroupMissing(string(section))
			}
			e.log.Warn("optional section %s has no columns; its statistics are omitted", section)
		}
	}
	return groups, nil
}

// addAggregate computes pX as the row mean of the group's columns, ignoring
// missing entries. An empty group, or a row with no usable entry, yields a
// missing aggregate rather than a zero.
func (e *Engine) addAggregate(t *table.Table, section study.Section, group []string) {
	name := section.AggregateColumn()
	if len(group) == 0 {
		t.AddColumn(name, nil)
		return
	}

	values := make([]table.Value, t.Len())
	for i := 0; i < t.Len(); i++ {
		sum, count := 0.0, 0
		for _, col := range group {
			if num, ok := t.Cell(i, col).AsNumber(); ok {
				sum += num
				count++
			}
		}
		if count == 0 {
			values[i] = table.Missing()
		} else {
			values[i] = table.Number(sum / float64(count))
		}
	}
	t.AddColumn(name, values)
}

// addShift computes shift_X = pX - pA under the strict two-operand rule:
// missing whenever either operand is missing, never zero-filled.
func (e *Engine) addShift(t *table.Table, section study.Section) {
	values := make([]table.Value, t.Len())
	for i := 0; i < t.Len(); i++ {
		pX, okX := t.Cell(i, section.AggregateColumn()).AsNumber()
		pA, okA := t.Cell(i, "pA").AsNumber()
		if okX && okA {
			values[i] = table.Number(pX - pA)
		} else {
			values[i] = table.Missing()
		}
	}
	t.AddColumn(section.ShiftColumn(), values)
}

// addAliases derives the pre/post convenience set for the level-style models
func (e *Engine) addAliases(t *table.Table) {
	t.AddColumn(study.ColOptimPre, t.Column("pA"))
	t.AddColumn(study.ColOptimPost, t.Column("pD"))

	values := make([]table.Value, t.Len())
	for i := 0; i < t.Len(); i++ {
		post, okPost := t.Cell(i, study.ColOptimPost).AsNumber()
		pre, okPre := t.Cell(i, study.ColOptimPre).AsNumber()
		if okPost && okPre {
			values[i] = table.Number(post - pre)
		} else {
			values[i] = table.Missing()
		}
	}
	t.AddColumn(study.ColDOptim, values)
}
