package config

// Application constants
const (
	AppName    = "conflictpanel"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every override variable, e.g. PANEL_OUTPUTS_DIR
	EnvPrefix = "PANEL"

	// Input files of the published datasets
	DefaultInputDir        = "inputs"
	DefaultConflictFile    = "ucdp-prio-acd-201.xlsx"
	DefaultRevenueFile     = "SIPRI-Top-100-2002-2018_0.xlsx"
	DefaultRevenueSheet    = "2018"
	DefaultRevenueSkipRows = 3
	DefaultRevenueMissing  = ". ."
	DefaultRevenueCompany  = "Company (c)"
	DefaultRevenueShare    = "Arms sales as a % of total sales (2018)"
	DefaultPricesUSFile    = "Data_Bloomberg_US.csv"
	DefaultPricesOtherFile = "Data_Bloomberg_Other.csv"
	DefaultIndicesFile     = "Data_Bloomberg_Indices.csv"
	DefaultContentFile     = "Content Analysis Final.xlsx"
	DefaultContentSheet    = "CONTENT ANALYSIS"

	// Output tables
	DefaultOutputDir         = "outputs"
	DefaultConflictPanelFile = "Bloomberg vs ACD.csv"
	DefaultNewsPanelFile     = "Bloomberg vs LexisNexis.csv"
	DefaultEpisodesFile      = "Armed Conflict Dataset.csv"
	DefaultPricesFile        = "Bloomberg.csv"
	DefaultManifestFile      = "manifest.json"

	// Pipeline thresholds
	DefaultArmsShareThreshold = 50.0
	DefaultSplitGapDays       = 10
	DefaultMaxMatchGapDays    = 3

	// Bloomberg export conventions
	PriceDateLayout     = "02.01.2006"
	PriceInvalidDate    = "#NAME?"
	OutputDateLayout    = "2006-01-02"
	EpisodeIDDateLayout = "20060102"

	// Log Settings
	DefaultLogsDir    = "logs"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogOutput  = "console"
	DefaultLogFile    = "logs/panelbuilder.log"
	DefaultTraceFile  = "logs/panelbuilder-trace.json"
	DefaultMetricFile = "logs/panelbuilder.prom"
)
