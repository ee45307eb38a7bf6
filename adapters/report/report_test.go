package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"shiftlab/domain/study"
	"shiftlab/ports"
)

func summaryFixture() *ports.RunSummary {
	return &ports.RunSummary{
		RunID:        "run-1",
		WorkbookPath: "/data/export.xlsx",
		Strategy:     "sheet:named",
		Sheet:        "Hoja1",
		StageCounts: []ports.StageCount{
			{Stage: "imported", Rows: 40},
			{Stage: "identifier_filter", Rows: 36},
			{Stage: "analyzable_sample", Rows: 30},
		},
		Groups: map[string][]string{
			"A": {"p_blue_q1_A"}, "B": nil, "C": nil, "D": {"p_blue_q1_D"},
		},
		Descriptives: []ports.VariableSummary{
			{Variable: "pA", N: 30, Mean: 0.4, StdDev: 0.1, Min: 0.2, Max: 0.6},
		},
		BalanceTests: []ports.BalanceTest{
			{Variable: "shift_B", TStat: 0.5, DF: 20.3, PValue: 0.62, NTreat: 15, NControl: 15},
		},
		Models: []*study.FittedModel{
			{
				Spec: study.ModelSpec{Name: "ancova_shift", Dependent: "shift_D"},
				Coefficients: []study.Coefficient{
					{Term: "const", Estimate: 0.1, StdErr: 0.02, TValue: 5, PValue: 0.0001},
					{Term: "treat", Estimate: 0.2, StdErr: 0.05, TValue: 4, PValue: 0.001},
				},
				NObs:     30,
				RSquared: 0.42,
			},
		},
		SkippedModels: []string{"differential_plus_survey"},
		Wald:          &study.WaldResult{Hypothesis: "treat:shift_B = treat:shift_C", Chi2: 1.2, DF: 1, PValue: 0.27},
	}
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(dir).Write(context.Background(), summaryFixture()))

	md, err := os.ReadFile(filepath.Join(dir, "results.md"))
	require.NoError(t, err)
	text := string(md)
	require.Contains(t, text, "## Stage counts")
	require.Contains(t, text, "| analyzable_sample | 30 |")
	require.Contains(t, text, "| B | (none) |")
	require.Contains(t, text, "## Model: ancova_shift")
	require.Contains(t, text, "***", "significant coefficients carry stars")
	require.Contains(t, text, "Skipped specifications: differential_plus_survey")
	require.Contains(t, text, "treat:shift_B = treat:shift_C")

	html, err := os.ReadFile(filepath.Join(dir, "results.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "<table>", "markdown tables render as HTML tables")
	require.Contains(t, string(html), "</html>")
}

func TestWriteWithoutOptionalSections(t *testing.T) {
	dir := t.TempDir()
	s := &ports.RunSummary{
		RunID:        "run-2",
		WorkbookPath: "/data/export.xlsx",
		Strategy:     "csv:manual",
		Sheet:        "/data/manual.csv",
		Groups:       map[string][]string{},
	}
	require.NoError(t, NewWriter(dir).Write(context.Background(), s))

	md, err := os.ReadFile(filepath.Join(dir, "results.md"))
	require.NoError(t, err)
	text := string(md)
	require.NotContains(t, text, "## Descriptive statistics")
	require.NotContains(t, text, "## Joint equal-impact test")
}
