package describe

import (
	"math"

	"shiftlab/domain/study"
	"shiftlab/domain/table"
	"shiftlab/internal"
	"shiftlab/ports"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Variables summarized for diagnostics, in report order
var summaryVariables = []string{
	"pA", "pB", "pC", "pD",
	"shift_B", "shift_C", "shift_D",
	study.ColOptimismo, study.ColConfianza,
	study.ColEdad, study.ColMujer, study.ColGKTotal,
}

// Checker computes summary statistics and the pre-treatment balance tests.
// Purely diagnostic: it never mutates the analyzable sample.
type Checker struct {
	log *internal.Logger
}

// New creates a descriptive checker
func New(log *internal.Logger) *Checker {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Checker{log: log}
}

// Summarize computes count, mean, sd, min and max per variable over its
// non-missing values. Entirely-missing variables are skipped.
func (c *Checker) Summarize(sample *table.Table) []ports.VariableSummary {
	var out []ports.VariableSummary
	for _, variable := range summaryVariables {
		values := sample.NumericPresent(variable)
		if len(values) == 0 {
			continue
		}
		mean, _ := stats.Mean(values)
		sd, _ := stats.StandardDeviationSample(values)
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		if len(values) < 2 {
			sd = math.NaN()
		}
		out = append(out, ports.VariableSummary{
			Variable: variable,
			N:        len(values),
			Mean:     mean,
			StdDev:   sd,
			Min:      min,
			Max:      max,
		})
	}
	return out
}

// BalanceTests runs the two-sample mean-difference test of shift_B and
// shift_C grouped by treat. A shift that is entirely absent (undiscovered
// section) or has an empty group skips the test rather than failing.
func (c *Checker) BalanceTests(sample *table.Table) []ports.BalanceTest {
	var out []ports.BalanceTest
	for _, variable := range []string{"shift_B", "shift_C"} {
		treatVals, controlVals := splitByTreat(sample, variable)
		if len(treatVals) == 0 || len(controlVals) == 0 {
			c.log.Warn("balance test for %s skipped (empty group)", variable)
			continue
		}
		tStat, df, p := welch(treatVals, controlVals)
		c.log.Info("balance %s: t=%.3f df=%.1f p=%.4f (n_treat=%d n_control=%d)",
			variable, tStat, df, p, len(treatVals), len(controlVals))
		out = append(out, ports.BalanceTest{
			Variable: variable,
			TStat:    tStat,
			DF:       df,
			PValue:   p,
			NTreat:   len(treatVals),
			NControl: len(controlVals),
		})
	}
	return out
}

// splitByTreat collects a variable's non-missing values per treatment arm
func splitByTreat(sample *table.Table, variable string) (treat, control []float64) {
	for i := 0; i < sample.Len(); i++ {
		v, ok := sample.Cell(i, variable).AsNumber()
		if !ok {
			continue
		}
		arm, ok := sample.Cell(i, study.ColTreat).AsNumber()
		if !ok {
			continue
		}
		if arm == 1 {
			treat = append(treat, v)
		} else if arm == 0 {
			control = append(control, v)
		}
	}
	return treat, control
}

// welch computes the unequal-variance t statistic, Welch-Satterthwaite
// degrees of freedom, and the two-sided p-value.
func welch(a, b []float64) (tStat, df, p float64) {
	n1, n2 := float64(len(a)), float64(len(b))
	mean1, _ := stats.Mean(a)
	mean2, _ := stats.Mean(b)
	var1, _ := stats.SampleVariance(a)
	var2, _ := stats.SampleVariance(b)

	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 || n1 < 2 || n2 < 2 {
		return 0, 0, 1
	}
	tStat = (mean1 - mean2) / se
	df = math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(tStat))
	return tStat, df, p
}
