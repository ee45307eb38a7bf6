package regress

import (
	"fmt"

	"shiftlab/domain/study"
	"shiftlab/domain/table"

	"gonum.org/v1/gonum/mat"
)

// design materializes a specification's matrix and outcome vector from the
// sample. Rows with any missing term or outcome are dropped (listwise
// deletion); the intercept is the leading column.
func design(sample *table.Table, spec study.ModelSpec) (x *mat.Dense, y *mat.VecDense, names []string, err error) {
	names = make([]string, 0, len(spec.Terms)+1)
	names = append(names, "const")
	for _, term := range spec.Terms {
		names = append(names, term.Name())
	}

	var rows [][]float64
	var outcomes []float64
	for i := 0; i < sample.Len(); i++ {
		outcome, ok := sample.Cell(i, spec.Dependent).AsNumber()
		if !ok {
			continue
		}
		row := make([]float64, 0, len(names))
		row = append(row, 1)
		complete := true
		for _, term := range spec.Terms {
			v, ok := termValue(sample, i, term)
			if !ok {
				complete = false
				break
			}
			row = append(row, v)
		}
		if !complete {
			continue
		}
		rows = append(rows, row)
		outcomes = append(outcomes, outcome)
	}

	if len(rows) <= len(names) {
		return nil, nil, nil, fmt.Errorf("%d complete observations for %d parameters", len(rows), len(names))
	}

	x = mat.NewDense(len(rows), len(names), nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}
	y = mat.NewVecDense(len(outcomes), outcomes)
	return x, y, names, nil
}

// termValue evaluates one term for one row; interactions multiply and are
// missing when either factor is missing.
func termValue(sample *table.Table, rowIdx int, term study.Term) (float64, bool) {
	v, ok := sample.Cell(rowIdx, term.Variable).AsNumber()
	if !ok {
		return 0, false
	}
	if term.InteractWith == "" {
		return v, true
	}
	w, ok := sample.Cell(rowIdx, term.InteractWith).AsNumber()
	if !ok {
		return 0, false
	}
	return v * w, true
}
