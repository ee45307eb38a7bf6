package modelspec

import (
	"shiftlab/domain/study"
	"shiftlab/domain/table"
	"shiftlab/internal"
	"shiftlab/ports"
)

// Model names, fixed program order
const (
	NameANCOVAShift  = "ancova_shift"
	NameDifferential = "differential_impact"
	NameANCOVALevels = "ancova_levels"
	NameDiDLevels    = "did_levels"
	NamePerformance  = "differential_plus_performance"
	NameSurvey       = "differential_plus_survey"
)

// baseControls are the demographic covariates every specification carries
func baseControls() []study.Term {
	return []study.Term{
		{Variable: study.ColEdad},
		{Variable: study.ColMujer},
	}
}

// differentialTerms are the shared core of the interaction models: main
// effects plus the two treatment interactions whose coefficients are the
// object of interest.
func differentialTerms() []study.Term {
	return []study.Term{
		{Variable: study.ColTreat},
		{Variable: "shift_B"},
		{Variable: "shift_C"},
		{Variable: "shift_B", InteractWith: study.ColTreat},
		{Variable: "shift_C", InteractWith: study.ColTreat},
	}
}

// Builder assembles the regression program once the analyzable sample
// exists. Specifications are immutable after construction; guarded ones are
// silently skipped when their guard variable carries no value.
type Builder struct {
	log *internal.Logger
}

// New creates a specification builder
func New(log *internal.Logger) *Builder {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Builder{log: log}
}

// Program is the built specification list plus the skipped guard names
type Program struct {
	Specs   []study.ModelSpec
	Skipped []string
	// WaldOn names the spec whose interaction coefficients the joint
	// equal-impact test compares
	WaldOn string
	// WaldTerms are the two interaction coefficient names under test
	WaldTerms [2]string
}

// Build constructs the six candidate specifications in their fixed order
func (b *Builder) Build(sample *table.Table) Program {
	program := Program{
		WaldOn: NameDifferential,
		WaldTerms: [2]string{
			study.ColTreat + ":shift_B",
			study.ColTreat + ":shift_C",
		},
	}

	program.Specs = append(program.Specs, study.ModelSpec{
		Name:      NameANCOVAShift,
		Dependent: "shift_D",
		Terms: append([]study.Term{
			{Variable: study.ColTreat},
			{Variable: "shift_B"},
			{Variable: "shift_C"},
		}, baseControls()...),
	})

	program.Specs = append(program.Specs, study.ModelSpec{
		Name:      NameDifferential,
		Dependent: "shift_D",
		Terms:     append(differentialTerms(), baseControls()...),
	})

	program.Specs = append(program.Specs, study.ModelSpec{
		Name:      NameANCOVALevels,
		Dependent: study.ColOptimPost,
		Terms: append([]study.Term{
			{Variable: study.ColTreat},
			{Variable: study.ColOptimPre},
		}, baseControls()...),
	})

	program.Specs = append(program.Specs, study.ModelSpec{
		Name:      NameDiDLevels,
		Dependent: study.ColDOptim,
		Terms: append([]study.Term{
			{Variable: study.ColTreat},
		}, baseControls()...),
	})

	// Robustness variants, soft-guarded on their extra covariates
	performance := study.ModelSpec{
		Name:      NamePerformance,
		Dependent: "shift_D",
		Terms: append(append(differentialTerms(),
			study.Term{Variable: study.ColGKTotal}), baseControls()...),
		Guards: []string{study.ColGKTotal},
	}
	survey := study.ModelSpec{
		Name:      NameSurvey,
		Dependent: "shift_D",
		Terms: append(append(differentialTerms(),
			study.Term{Variable: study.ColOptimismo},
			study.Term{Variable: study.ColConfianza}), baseControls()...),
		Guards: []string{study.ColOptimismo, study.ColConfianza},
	}

	for _, spec := range []study.ModelSpec{performance, survey} {
		if guardsSatisfied(sample, spec.Guards) {
			program.Specs = append(program.Specs, spec)
		} else {
			b.log.Warn("specification %s skipped: guard variable absent", spec.Name)
			program.Skipped = append(program.Skipped, spec.Name)
		}
	}

	return program
}

// guardsSatisfied requires every guard column to carry at least one value
func guardsSatisfied(sample *table.Table, guards []string) bool {
	for _, guard := range guards {
		if len(sample.NumericPresent(guard)) == 0 {
			return false
		}
	}
	return true
}

// Run estimates the program in order. A failure in one specification is
// isolated: siblings are still attempted, and the joint test only runs when
// the differential model fit.
func (b *Builder) Run(sample *table.Table, estimator ports.Estimator, program Program) ([]*study.FittedModel, *study.WaldResult) {
	var fitted []*study.FittedModel
	var differential *study.FittedModel

	for _, spec := range program.Specs {
		model, err := estimator.Fit(sample, spec)
		if err != nil {
			b.log.Error("model %s failed: %v", spec.Name, err)
			continue
		}
		b.log.Info("model %s estimated with %d observations (R2=%.3f)", spec.Name, model.NObs, model.RSquared)
		fitted = append(fitted, model)
		if spec.Name == program.WaldOn {
			differential = model
		}
	}

	if differential == nil {
		return fitted, nil
	}
	wald, err := estimator.WaldEqual(sample, differential, program.WaldTerms[0], program.WaldTerms[1])
	if err != nil {
		b.log.Error("joint equal-impact test failed: %v", err)
		return fitted, nil
	}
	b.log.Info("joint test %s: chi2=%.3f p=%.4f", wald.Hypothesis, wald.Chi2, wald.PValue)
	return fitted, wald
}
