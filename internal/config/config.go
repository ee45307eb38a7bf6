package config

import (
	"os"
	"strconv"
	"time"

	"shiftlab/domain/study"
	"shiftlab/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete run configuration. It is an explicit value
// threaded into the resolver and the pipeline; nothing reads ambient process
// state after Load returns.
type Config struct {
	Workbook WorkbookConfig `yaml:"workbook"`
	Driver   DriverConfig   `yaml:"driver"`
	Output   OutputConfig   `yaml:"output"`
	Schema   SchemaConfig   `yaml:"schema"`
	LogLevel string         `yaml:"log_level"`
}

// WorkbookConfig holds the import-resolver inputs
type WorkbookConfig struct {
	Path string `yaml:"path"`
	// SheetCandidates are tried in priority order before the positional
	// first-sheet fallback.
	SheetCandidates []string `yaml:"sheet_candidates"`
	// CSVFallbackPath enables the manual CSV strategy. It is never
	// auto-triggered: leaving it empty disables the strategy entirely.
	CSVFallbackPath string `yaml:"csv_fallback_path"`
}

// DriverConfig holds the external-driver import strategy settings. The
// strategy is skipped with an advisory when DSN is empty.
type DriverConfig struct {
	Name string `yaml:"name"`
	DSN  string `yaml:"dsn"`
	// TimeoutSeconds bounds the driver query; expiry is fatal for the
	// strategy, never retried.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the driver timeout as a duration
func (d DriverConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// OutputConfig holds the snapshot and report destinations
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// SchemaConfig overrides individual roles of the default study schema
type SchemaConfig struct {
	IdentifierColumn string            `yaml:"identifier_column"`
	LabelTokens      []string          `yaml:"label_tokens"`
	Renames          map[string]string `yaml:"renames"`
	FemaleTokens     []string          `yaml:"female_tokens"`
	SectionMarker    string            `yaml:"section_marker"`
	GKIndicators     []string          `yaml:"gk_indicators"`
}

// Default returns the configuration used when no file is supplied
func Default() *Config {
	return &Config{
		Workbook: WorkbookConfig{
			SheetCandidates: []string{"Hoja1", "Hoja 1", "Sheet1", "Sheet 1"},
		},
		Driver: DriverConfig{
			Name:           "postgres",
			TimeoutSeconds: 30,
		},
		Output:   OutputConfig{Dir: "./out"},
		LogLevel: "INFO",
	}
}

// Load reads the YAML config file (optional) and applies environment
// overrides. Callers validate after merging any further overrides of their
// own (CLI flags), so a file may legitimately omit settings a flag supplies.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "cannot read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "cannot parse config file %s", path)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override file settings
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WORKBOOK_PATH"); v != "" {
		cfg.Workbook.Path = v
	}
	if v := os.Getenv("CSV_FALLBACK_PATH"); v != "" {
		cfg.Workbook.CSVFallbackPath = v
	}
	if v := os.Getenv("DRIVER_DSN"); v != "" {
		cfg.Driver.DSN = v
	}
	if v := os.Getenv("DRIVER_NAME"); v != "" {
		cfg.Driver.Name = v
	}
	if v := os.Getenv("DRIVER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Driver.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate enforces the required settings
func (c *Config) Validate() error {
	if c.Workbook.Path == "" {
		return errors.ConfigInvalid("workbook path is required")
	}
	if len(c.Workbook.SheetCandidates) == 0 {
		return errors.ConfigInvalid("at least one sheet candidate is required")
	}
	if c.Driver.TimeoutSeconds <= 0 {
		return errors.ConfigInvalid("driver timeout must be positive")
	}
	if c.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	return nil
}

// StudySchema materializes the schema with any configured overrides applied
func (c *Config) StudySchema() study.Schema {
	schema := study.DefaultSchema()
	if c.Schema.IdentifierColumn != "" {
		schema.IdentifierColumn = c.Schema.IdentifierColumn
	}
	if len(c.Schema.LabelTokens) > 0 {
		schema.LabelTokens = c.Schema.LabelTokens
	}
	if len(c.Schema.Renames) > 0 {
		for logical, source := range c.Schema.Renames {
			schema.Renames[logical] = source
		}
	}
	if len(c.Schema.FemaleTokens) > 0 {
		schema.FemaleTokens = c.Schema.FemaleTokens
	}
	if c.Schema.SectionMarker != "" {
		schema.SectionMarker = c.Schema.SectionMarker
	}
	if len(c.Schema.GKIndicators) > 0 {
		schema.GKIndicators = c.Schema.GKIndicators
	}
	return schema
}
