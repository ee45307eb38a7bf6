package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shiftlab/internal/errors"
	"shiftlab/ports"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Writer renders the run summary as a markdown document plus an HTML
// rendering of the same content. It implements ports.ReportSink.
type Writer struct {
	dir string
}

// NewWriter creates a report writer targeting dir
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write produces results.md and results.html
func (w *Writer) Write(ctx context.Context, summary *ports.RunSummary) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "cannot create report directory"), err.Error())
	}

	md := render(summary)
	mdPath := filepath.Join(w.dir, "results.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "cannot write markdown report"), err.Error())
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.CompletePage})
	html := markdown.ToHTML([]byte(md), p, renderer)

	htmlPath := filepath.Join(w.dir, "results.html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return errors.Wrap(errors.New(errors.CodeSnapshotFailed, "cannot write HTML report"), err.Error())
	}
	return nil
}

func render(s *ports.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Shift analysis results\n\n")
	fmt.Fprintf(&b, "Run `%s` on `%s`\n\n", s.RunID, s.WorkbookPath)
	fmt.Fprintf(&b, "Import strategy: **%s** (target `%s`)\n\n", s.Strategy, s.Sheet)

	b.WriteString("## Stage counts\n\n| Stage | Rows |\n|---|---|\n")
	for _, sc := range s.StageCounts {
		fmt.Fprintf(&b, "| %s | %d |\n", sc.Stage, sc.Rows)
	}
	b.WriteString("\n")

	b.WriteString("## Discovered column groups\n\n| Section | Columns |\n|---|---|\n")
	for _, section := range []string{"A", "B", "C", "D"} {
		cols := s.Groups[section]
		rendered := "(none)"
		if len(cols) > 0 {
			rendered = strings.Join(cols, ", ")
		}
		fmt.Fprintf(&b, "| %s | %s |\n", section, rendered)
	}
	b.WriteString("\n")

	if len(s.Descriptives) > 0 {
		b.WriteString("## Descriptive statistics\n\n| Variable | N | Mean | SD | Min | Max |\n|---|---|---|---|---|---|\n")
		for _, d := range s.Descriptives {
			fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f | %.4f |\n",
				d.Variable, d.N, d.Mean, d.StdDev, d.Min, d.Max)
		}
		b.WriteString("\n")
	}

	if len(s.BalanceTests) > 0 {
		b.WriteString("## Pre-treatment balance\n\n| Variable | t | df | p | N treat | N control |\n|---|---|---|---|---|---|\n")
		for _, bt := range s.BalanceTests {
			fmt.Fprintf(&b, "| %s | %.3f | %.1f | %.4f | %d | %d |\n",
				bt.Variable, bt.TStat, bt.DF, bt.PValue, bt.NTreat, bt.NControl)
		}
		b.WriteString("\n")
	}

	for _, m := range s.Models {
		fmt.Fprintf(&b, "## Model: %s\n\n", m.Spec.Name)
		fmt.Fprintf(&b, "Dependent: `%s`, N = %d, R² = %.3f\n\n", m.Spec.Dependent, m.NObs, m.RSquared)
		b.WriteString("| Term | Coef | Robust SE | t | p | |\n|---|---|---|---|---|---|\n")
		for _, c := range m.Coefficients {
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.3f | %.4f | %s |\n",
				c.Term, c.Estimate, c.StdErr, c.TValue, c.PValue, c.Stars())
		}
		b.WriteString("\n")
	}

	if len(s.SkippedModels) > 0 {
		fmt.Fprintf(&b, "Skipped specifications: %s\n\n", strings.Join(s.SkippedModels, ", "))
	}

	if s.Wald != nil {
		b.WriteString("## Joint equal-impact test\n\n")
		fmt.Fprintf(&b, "H0: %s, chi2(%d) = %.3f, p = %.4f\n",
			s.Wald.Hypothesis, s.Wald.DF, s.Wald.Chi2, s.Wald.PValue)
	}

	return b.String()
}
