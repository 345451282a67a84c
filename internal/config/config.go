package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "conflictpanel/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	BaseDir   string          `yaml:"base_dir" envconfig:"BASE_DIR"`
	Inputs    InputsConfig    `yaml:"inputs" envconfig:"INPUTS"`
	Outputs   OutputsConfig   `yaml:"outputs" envconfig:"OUTPUTS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputsConfig names the source spreadsheets and feeds
type InputsConfig struct {
	Dir            string `yaml:"dir" envconfig:"DIR" validate:"required"`
	ConflictFile   string `yaml:"conflict_file" envconfig:"CONFLICT_FILE" validate:"required"`
	ConflictSheet  string `yaml:"conflict_sheet" envconfig:"CONFLICT_SHEET"`
	RevenueFile    string `yaml:"revenue_file" envconfig:"REVENUE_FILE" validate:"required"`
	RevenueSheet   string `yaml:"revenue_sheet" envconfig:"REVENUE_SHEET" validate:"required"`
	RevenueSkip    int    `yaml:"revenue_skip_rows" envconfig:"REVENUE_SKIP_ROWS" validate:"gte=0"`
	RevenueMissing string `yaml:"revenue_missing" envconfig:"REVENUE_MISSING"`
	RevenueCompany string `yaml:"revenue_company_column" envconfig:"REVENUE_COMPANY_COLUMN" validate:"required"`
	RevenueShare   string `yaml:"revenue_share_column" envconfig:"REVENUE_SHARE_COLUMN" validate:"required"`
	PricesUSFile   string `yaml:"prices_us_file" envconfig:"PRICES_US_FILE" validate:"required"`
	PricesOther    string `yaml:"prices_other_file" envconfig:"PRICES_OTHER_FILE" validate:"required"`
	IndicesFile    string `yaml:"indices_file" envconfig:"INDICES_FILE" validate:"required"`
	ContentFile    string `yaml:"content_file" envconfig:"CONTENT_FILE" validate:"required"`
	ContentSheet   string `yaml:"content_sheet" envconfig:"CONTENT_SHEET" validate:"required"`
}

// OutputsConfig names the output directory and tables
type OutputsConfig struct {
	Dir               string `yaml:"dir" envconfig:"DIR" validate:"required"`
	ConflictPanelFile string `yaml:"conflict_panel_file" envconfig:"CONFLICT_PANEL_FILE" validate:"required"`
	NewsPanelFile     string `yaml:"news_panel_file" envconfig:"NEWS_PANEL_FILE" validate:"required"`
	EpisodesFile      string `yaml:"episodes_file" envconfig:"EPISODES_FILE" validate:"required"`
	PricesFile        string `yaml:"prices_file" envconfig:"PRICES_FILE" validate:"required"`
	ManifestFile      string `yaml:"manifest_file" envconfig:"MANIFEST_FILE"`
}

// PipelineConfig holds the thresholds of the transformation steps
type PipelineConfig struct {
	ArmsShareThreshold float64 `yaml:"arms_share_threshold" envconfig:"ARMS_SHARE_THRESHOLD" validate:"gte=0,lte=100"`
	SplitGapDays       int     `yaml:"split_gap_days" envconfig:"SPLIT_GAP_DAYS" validate:"gte=0"`
	MaxMatchGapDays    int     `yaml:"max_match_gap_days" envconfig:"MAX_MATCH_GAP_DAYS" validate:"gte=0"`
	PriceDateLayout    string  `yaml:"price_date_layout" envconfig:"PRICE_DATE_LAYOUT" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig selects the trace and metric sinks of a run
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout file"`
	TraceFile      string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=none prometheus"`
	MetricFile     string `yaml:"metric_file" envconfig:"METRIC_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// PANEL_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file.
// A .env file in the working directory supplies variables that are not
// already set.
func LoadFile(configFile string) (*Config, error) {
	_ = godotenv.Load()
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// Fields without a matching variable are left untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks field constraints and normalizes logging settings
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// Always JSON
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if c.Telemetry.TraceExporter == "file" && c.Telemetry.TraceFile == "" {
		return fmt.Errorf("telemetry trace_file is required for the file exporter")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"panel.yaml",
		"configs/panel.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration; it reproduces the fixed file layout
// of the published datasets
func Default() *Config {
	return &Config{
		BaseDir: ".",
		Inputs: InputsConfig{
			Dir:            DefaultInputDir,
			ConflictFile:   DefaultConflictFile,
			RevenueFile:    DefaultRevenueFile,
			RevenueSheet:   DefaultRevenueSheet,
			RevenueSkip:    DefaultRevenueSkipRows,
			RevenueMissing: DefaultRevenueMissing,
			RevenueCompany: DefaultRevenueCompany,
			RevenueShare:   DefaultRevenueShare,
			PricesUSFile:   DefaultPricesUSFile,
			PricesOther:    DefaultPricesOtherFile,
			IndicesFile:    DefaultIndicesFile,
			ContentFile:    DefaultContentFile,
			ContentSheet:   DefaultContentSheet,
		},
		Outputs: OutputsConfig{
			Dir:               DefaultOutputDir,
			ConflictPanelFile: DefaultConflictPanelFile,
			NewsPanelFile:     DefaultNewsPanelFile,
			EpisodesFile:      DefaultEpisodesFile,
			PricesFile:        DefaultPricesFile,
			ManifestFile:      DefaultManifestFile,
		},
		Pipeline: PipelineConfig{
			ArmsShareThreshold: DefaultArmsShareThreshold,
			SplitGapDays:       DefaultSplitGapDays,
			MaxMatchGapDays:    DefaultMaxMatchGapDays,
			PriceDateLayout:    PriceDateLayout,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			TraceFile:      DefaultTraceFile,
			MetricExporter: "prometheus",
			MetricFile:     DefaultMetricFile,
		},
	}
}
