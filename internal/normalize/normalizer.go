package normalize

import (
	"shiftlab/domain/study"
	"shiftlab/domain/table"
	"shiftlab/internal"
	"shiftlab/internal/errors"
)

// Result is the normalized participant table plus the stage diagnostics
type Result struct {
	Table    *table.Table
	RowsIn   int
	RowsKept int
	NControl int
	NTreat   int
	NUnknown int
	// LabelSource is the column the group label was reconstructed from
	LabelSource string
}

// Normalizer turns a raw imported table into a participant-record table:
// identifier row filter, group-label reconstruction with forward fill,
// treatment classification, and soft-dependency control-variable derivation.
type Normalizer struct {
	schema study.Schema
	log    *internal.Logger
}

// New creates a normalizer for the declared schema
func New(schema study.Schema, log *internal.Logger) *Normalizer {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Normalizer{schema: schema, log: log}
}

// Normalize runs the full normalization pass. The identifier filter is the
// authoritative data-row test; a workbook without the identifier column at
// all is a configuration error.
func (n *Normalizer) Normalize(raw *table.Table) (*Result, error) {
	if !raw.HasColumn(n.schema.IdentifierColumn) {
		return nil, errors.MissingIdentifier(n.schema.IdentifierColumn)
	}

	rowsIn := raw.Len()
	t := raw.Filter(func(i int, row table.Row) bool {
		return !raw.Cell(i, n.schema.IdentifierColumn).IsMissing
	})
	n.log.Info("identifier filter: %d of %d rows kept", t.Len(), rowsIn)

	labels, source := n.reconstructLabels(t)
	t.AddColumn(study.ColGroupLabel, labels)

	res := &Result{
		Table:       t,
		RowsIn:      rowsIn,
		RowsKept:    t.Len(),
		LabelSource: source,
	}
	if err := n.classify(t, res); err != nil {
		return nil, err
	}

	n.deriveControls(t)
	n.deriveMujer(t)
	n.derivePerformanceProxy(t)

	return res, nil
}

// reconstructLabels rebuilds the group label that merged spreadsheet cells
// left sparse. An unnamed positional first column is taken verbatim;
// otherwise the first string column with at least one token-bearing value is
// the label source. A single left-to-right scan then forward-fills gaps from
// the immediately preceding row.
func (n *Normalizer) reconstructLabels(t *table.Table) ([]table.Value, string) {
	source := ""
	if n.schema.PositionalLabelColumn != "" && t.HasColumn(n.schema.PositionalLabelColumn) {
		source = n.schema.PositionalLabelColumn
	} else {
		for _, col := range t.StringColumns() {
			for i := 0; i < t.Len(); i++ {
				if s, ok := t.Cell(i, col).AsString(); ok && n.schema.IsLabelToken(s) {
					source = col
					break
				}
			}
			if source != "" {
				break
			}
		}
	}

	labels := make([]table.Value, t.Len())
	if source == "" {
		n.log.Warn("no group-label source column found; labels stay missing")
		for i := range labels {
			labels[i] = table.Missing()
		}
		return labels, source
	}
	n.log.Info("group label reconstructed from column %q", source)

	last := table.Missing()
	for i := 0; i < t.Len(); i++ {
		v := t.Cell(i, source)
		if s, ok := v.AsString(); ok && s != "" {
			last = table.String(s)
		} else if rendered := v.Render(); rendered != "" {
			// Positional columns may carry non-string cells; keep them verbatim
			last = table.String(rendered)
		}
		labels[i] = last
	}
	return labels, source
}

// classify derives the tri-state treat indicator. Zero classified rows means
// the label heuristic found nothing usable and the run must abort.
func (n *Normalizer) classify(t *table.Table, res *Result) error {
	treat := make([]table.Value, t.Len())
	for i := 0; i < t.Len(); i++ {
		label, ok := t.Cell(i, study.ColGroupLabel).AsString()
		if !ok {
			treat[i] = table.Missing()
			res.NUnknown++
			continue
		}
		if study.Ambiguous(label) {
			n.log.Warn("ambiguous group label %q matches both tokens; classified unknown", label)
		}
		switch study.ClassifyLabel(label) {
		case study.AssignmentTreatment:
			treat[i] = table.Number(1)
			res.NTreat++
		case study.AssignmentControl:
			treat[i] = table.Number(0)
			res.NControl++
		default:
			treat[i] = table.Missing()
			res.NUnknown++
		}
	}
	t.AddColumn(study.ColTreat, treat)
	n.log.Info("treatment classification: control=%d treatment=%d unknown=%d", res.NControl, res.NTreat, res.NUnknown)

	if res.NControl == 0 && res.NTreat == 0 {
		return errors.NoClassifiedRows()
	}
	return nil
}

// deriveControls renames the known demographic and survey columns. An absent
// source synthesizes an all-missing target so the remaining pipeline is
// never blocked (soft-dependency policy).
func (n *Normalizer) deriveControls(t *table.Table) {
	numericTargets := map[string]bool{
		study.ColEdad:      true,
		study.ColOptimismo: true,
		study.ColConfianza: true,
	}
	for _, logical := range []string{study.ColEdad, study.ColSexo, study.ColOptimismo, study.ColConfianza} {
		source, declared := n.schema.Renames[logical]
		if !declared || !t.HasColumn(source) {
			n.log.Warn("source column for %s absent; field synthesized as missing", logical)
			t.AddColumn(logical, nil)
			continue
		}
		values := make([]table.Value, t.Len())
		for i := 0; i < t.Len(); i++ {
			v := t.Cell(i, source)
			if numericTargets[logical] {
				if num, ok := v.AsNumber(); ok {
					values[i] = table.Number(num)
				} else {
					values[i] = table.Missing()
				}
			} else {
				if s := v.Render(); s != "" {
					values[i] = table.String(s)
				} else {
					values[i] = table.Missing()
				}
			}
		}
		t.AddColumn(logical, values)
	}
}

// deriveMujer maps the sex string onto a 0/1 indicator, missing when the
// source is missing.
func (n *Normalizer) deriveMujer(t *table.Table) {
	values := make([]table.Value, t.Len())
	for i := 0; i < t.Len(); i++ {
		s, ok := t.Cell(i, study.ColSexo).AsString()
		if !ok {
			values[i] = table.Missing()
			continue
		}
		if n.schema.IsFemale(s) {
			values[i] = table.Number(1)
		} else {
			values[i] = table.Number(0)
		}
	}
	t.AddColumn(study.ColMujer, values)
}

// derivePerformanceProxy sums the four accuracy indicators into gk_ok_total.
// All four must resolve; a partial sum would silently change the metric's
// meaning, so any absence omits it entirely (all-missing column).
func (n *Normalizer) derivePerformanceProxy(t *table.Table) {
	for _, indicator := range n.schema.GKIndicators {
		if !t.HasColumn(indicator) {
			n.log.Warn("performance indicator %q absent; %s omitted", indicator, study.ColGKTotal)
			t.AddColumn(study.ColGKTotal, nil)
			return
		}
	}

	values := make([]table.Value, t.Len())
	for i := 0; i < t.Len(); i++ {
		sum := 0.0
		for _, indicator := range n.schema.GKIndicators {
			if num, ok := t.Cell(i, indicator).AsNumber(); ok {
				sum += num
			}
		}
		values[i] = table.Number(sum)
	}
	t.AddColumn(study.ColGKTotal, values)
}
