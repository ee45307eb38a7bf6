package app

import (
	"context"

	"shiftlab/adapters/sqldrv"
	"shiftlab/adapters/workbook"
	"shiftlab/internal"
	"shiftlab/internal/config"
	"shiftlab/internal/describe"
	"shiftlab/internal/errors"
	"shiftlab/internal/metrics"
	"shiftlab/internal/modelspec"
	"shiftlab/internal/normalize"
	"shiftlab/ports"

	"github.com/google/uuid"
)

// Pipeline runs the full sequential batch: import resolution, schema
// normalization, metric and shift derivation, diagnostics, the model
// program, and the snapshot/report sinks. Each stage runs to completion
// before the next begins; there is no shared state across runs.
type Pipeline struct {
	cfg       *config.Config
	log       *internal.Logger
	estimator ports.Estimator
	store     ports.SnapshotStore
	report    ports.ReportSink
}

// NewPipeline wires the pipeline's collaborators
func NewPipeline(cfg *config.Config, log *internal.Logger, estimator ports.Estimator, store ports.SnapshotStore, report ports.ReportSink) *Pipeline {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Pipeline{cfg: cfg, log: log, estimator: estimator, store: store, report: report}
}

// Run executes one invocation against a fresh in-memory table and returns
// the run summary handed to the report sink.
func (p *Pipeline) Run(ctx context.Context) (*ports.RunSummary, error) {
	runID := uuid.NewString()
	p.log.Info("run %s: workbook=%s", runID, p.cfg.Workbook.Path)

	opts := []workbook.Option{workbook.WithLogger(p.log)}
	if p.cfg.Driver.DSN != "" {
		loader := sqldrv.NewLoader(p.cfg.Driver.Name, p.cfg.Driver.DSN)
		opts = append(opts, workbook.WithDriver(loader, p.cfg.Driver.Timeout()))
	} else {
		p.log.Warn("no driver DSN configured; external-driver strategy disabled")
	}
	if p.cfg.Workbook.CSVFallbackPath != "" {
		opts = append(opts, workbook.WithCSVFallback(p.cfg.Workbook.CSVFallbackPath))
	}

	resolver := workbook.NewResolver(p.cfg.Workbook.Path, p.cfg.Workbook.SheetCandidates, opts...)
	resolution, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "import resolution failed")
	}

	schema := p.cfg.StudySchema()
	normalized, err := normalize.New(schema, p.log).Normalize(resolution.Table)
	if err != nil {
		return nil, errors.Wrap(err, "schema normalization failed")
	}

	derived, err := metrics.New(schema, p.log).Derive(normalized.Table)
	if err != nil {
		return nil, errors.Wrap(err, "metric derivation failed")
	}

	checker := describe.New(p.log)
	descriptives := checker.Summarize(derived.Sample)
	balance := checker.BalanceTests(derived.Sample)

	builder := modelspec.New(p.log)
	program := builder.Build(derived.Sample)
	models, wald := builder.Run(derived.Sample, p.estimator, program)

	summary := &ports.RunSummary{
		RunID:        runID,
		WorkbookPath: p.cfg.Workbook.Path,
		Strategy:     string(resolution.Strategy),
		Sheet:        resolution.Sheet,
		StageCounts: []ports.StageCount{
			{Stage: "imported", Rows: normalized.RowsIn},
			{Stage: "identifier_filter", Rows: normalized.RowsKept},
			{Stage: "analyzable_sample", Rows: derived.Sample.Len()},
		},
		Groups:        derived.Groups,
		Descriptives:  descriptives,
		BalanceTests:  balance,
		Models:        models,
		SkippedModels: program.Skipped,
		Wald:          wald,
	}

	if p.store != nil {
		if err := p.store.Persist(ctx, derived.Sample); err != nil {
			return nil, errors.Wrap(err, "snapshot persistence failed")
		}
		p.log.Info("snapshot persisted to %s", p.cfg.Output.Dir)
	}
	if p.report != nil {
		if err := p.report.Write(ctx, summary); err != nil {
			return nil, errors.Wrap(err, "report write failed")
		}
	}

	return summary, nil
}
