package ports

import (
	"context"

	"shiftlab/domain/study"
	"shiftlab/domain/table"
)

// SnapshotStore persists the single derived dataset snapshot of a run
type SnapshotStore interface {
	// Persist writes the analyzable sample with all derived fields.
	// Implementations release every handle on all exit paths.
	Persist(ctx context.Context, sample *table.Table) error
}

// RunSummary is everything the report sink renders for one run
type RunSummary struct {
	RunID        string
	WorkbookPath string
	Strategy     string
	Sheet        string
	// StageCounts are the row counts after each filtering stage, in order
	StageCounts []StageCount
	// Groups maps section letter to the discovered column group
	Groups map[string][]string
	// Descriptives are the per-variable summary statistics
	Descriptives []VariableSummary
	// BalanceTests are the pre-treatment mean-difference checks
	BalanceTests []BalanceTest
	// Models are the fitted specifications in program order
	Models []*study.FittedModel
	// SkippedModels names the guarded specifications that were not built
	SkippedModels []string
	// Wald is the joint equal-impact test, when the differential model fit
	Wald *study.WaldResult
}

// StageCount records the sample size after one pipeline stage
type StageCount struct {
	Stage string
	Rows  int
}

// VariableSummary holds summary statistics over non-missing values
type VariableSummary struct {
	Variable string
	N        int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// BalanceTest is a two-sample mean-difference significance test by treatment
type BalanceTest struct {
	Variable string
	TStat    float64
	DF       float64
	PValue   float64
	NTreat   int
	NControl int
}

// ReportSink renders the run diagnostics and model tables
type ReportSink interface {
	Write(ctx context.Context, summary *RunSummary) error
}
