package ports

import (
	"shiftlab/domain/study"
	"shiftlab/domain/table"
)

// Estimator is the external regression provider. The pipeline owns the model
// specifications; the estimator owns the numerics (OLS with HC1 robust errors
// and the joint linear hypothesis test).
type Estimator interface {
	// Fit estimates one specification against the analyzable sample.
	// Rows with a missing value in any term are dropped by the estimator's
	// own convention (listwise deletion); the pipeline never pre-imputes.
	Fit(sample *table.Table, spec study.ModelSpec) (*study.FittedModel, error)

	// WaldEqual tests equality of two coefficients of a fitted model
	// against the same sample (two-sided).
	WaldEqual(sample *table.Table, model *study.FittedModel, termA, termB string) (*study.WaldResult, error)
}
