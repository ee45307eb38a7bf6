package main

import (
	"fmt"
	"os"

	"shiftlab/adapters/regress"
	"shiftlab/adapters/report"
	"shiftlab/adapters/snapshot"
	"shiftlab/app"
	"shiftlab/internal"
	"shiftlab/internal/config"
	apperrors "shiftlab/internal/errors"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for local runs; absence is not an error
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "shiftlab",
		Short: "Ingest an experiment export, derive shift metrics, and fit the model program",
	}
	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("fatal [%s]: %v", apperrors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var configPath string
	var workbookPath string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full ingestion-and-analysis pipeline once",
		Long: `Run the sequential batch pipeline: resolve the workbook import,
normalize the schema, derive section aggregates and shifts, check balance,
and estimate the regression program.

Example: shiftlab run --config shiftlab.yaml --workbook RESULTADOS.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, workbookPath, outputDir)
			if err != nil {
				return err
			}

			log := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
			pipeline := app.NewPipeline(
				cfg,
				log,
				regress.NewOLS(),
				snapshot.NewStore(cfg.Output.Dir),
				report.NewWriter(cfg.Output.Dir),
			)

			summary, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			printSummary(summary.RunID, summary.Strategy, summary.Sheet, len(summary.Models), cfg.Output.Dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&workbookPath, "workbook", "", "workbook path (overrides config)")
	cmd.Flags().StringVar(&outputDir, "out", "", "output directory (overrides config)")

	return cmd
}

func loadConfig(configPath, workbookPath, outputDir string) (*config.Config, error) {
	// Flag overrides apply after the file and env are merged, so validation
	// has to wait until all three sources are in.
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if workbookPath != "" {
		cfg.Workbook.Path = workbookPath
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printSummary(runID, strategy, sheet string, models int, outDir string) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s run %s\n", green("done"), runID)
	fmt.Printf("  import: %s (target %s)\n", strategy, sheet)
	fmt.Printf("  models fitted: %d\n", models)
	fmt.Printf("  outputs: %s\n", outDir)
}
