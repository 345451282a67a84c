package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "conflictpanel/internal/errors"
)

// Paths contains every resolved file location of a run.
// This is the single source of truth for file paths in the application.
type Paths struct {
	BaseDir   string
	InputDir  string
	OutputDir string
	LogsDir   string

	// Inputs
	ConflictWorkbook string
	RevenueWorkbook  string
	PricesUSCSV      string
	PricesOtherCSV   string
	IndicesCSV       string
	ContentWorkbook  string

	// Output table names, relative to OutputDir
	ConflictPanelCSV string
	NewsPanelCSV     string
	EpisodesCSV      string
	PricesCSV        string
	ManifestJSON     string

	// Run artifacts; empty when not configured
	LogFile    string
	TraceFile  string
	MetricFile string
}

// GetPaths resolves the configured names against the base directory.
// Relative base directories are taken from the current working directory.
func GetPaths(cfg *Config) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	inputDir := resolve(base, cfg.Inputs.Dir)
	outputDir := resolve(base, cfg.Outputs.Dir)

	return &Paths{
		BaseDir:   base,
		InputDir:  inputDir,
		OutputDir: outputDir,
		LogsDir:   resolve(base, DefaultLogsDir),

		ConflictWorkbook: resolve(inputDir, cfg.Inputs.ConflictFile),
		RevenueWorkbook:  resolve(inputDir, cfg.Inputs.RevenueFile),
		PricesUSCSV:      resolve(inputDir, cfg.Inputs.PricesUSFile),
		PricesOtherCSV:   resolve(inputDir, cfg.Inputs.PricesOther),
		IndicesCSV:       resolve(inputDir, cfg.Inputs.IndicesFile),
		ContentWorkbook:  resolve(inputDir, cfg.Inputs.ContentFile),

		ConflictPanelCSV: cfg.Outputs.ConflictPanelFile,
		NewsPanelCSV:     cfg.Outputs.NewsPanelFile,
		EpisodesCSV:      cfg.Outputs.EpisodesFile,
		PricesCSV:        cfg.Outputs.PricesFile,
		ManifestJSON:     cfg.Outputs.ManifestFile,

		LogFile:    resolveOptional(base, cfg.Logging.FilePath),
		TraceFile:  resolveOptional(base, cfg.Telemetry.TraceFile),
		MetricFile: resolveOptional(base, cfg.Telemetry.MetricFile),
	}, nil
}

// resolve joins name onto dir unless name is already absolute
func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func resolveOptional(dir, name string) string {
	if name == "" {
		return ""
	}
	return resolve(dir, name)
}

// Logging returns cfg with its log file moved under the base directory
func (p *Paths) Logging(cfg LoggingConfig) LoggingConfig {
	cfg.FilePath = p.LogFile
	return cfg
}

// Telemetry returns cfg with its trace and metric files moved under the base
// directory
func (p *Paths) Telemetry(cfg TelemetryConfig) TelemetryConfig {
	cfg.TraceFile = p.TraceFile
	cfg.MetricFile = p.MetricFile
	return cfg
}

// InputFiles lists every input in the order the pipeline reads them
func (p *Paths) InputFiles() []string {
	return []string{
		p.ConflictWorkbook,
		p.RevenueWorkbook,
		p.PricesUSCSV,
		p.PricesOtherCSV,
		p.IndicesCSV,
		p.ContentWorkbook,
	}
}

// GetOutputPath returns the location of a table inside the output directory
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the location of a file in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ValidateRequiredFiles checks that every input file is present
func (p *Paths) ValidateRequiredFiles() error {
	for _, file := range p.InputFiles() {
		info, err := os.Stat(file)
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError(fmt.Sprintf("input file %s", file))
		}
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", file), err)
		}
		if info.IsDir() {
			return apperrors.NewAppValidationError(fmt.Sprintf("input %s is a directory", file))
		}
	}
	return nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("conflict_workbook", p.ConflictWorkbook),
		slog.String("revenue_workbook", p.RevenueWorkbook),
		slog.String("prices_us", p.PricesUSCSV),
		slog.String("prices_other", p.PricesOtherCSV),
		slog.String("indices", p.IndicesCSV),
		slog.String("content_workbook", p.ContentWorkbook),
		slog.String("log_file", p.LogFile),
		slog.String("trace_file", p.TraceFile),
		slog.String("metric_file", p.MetricFile))
}
