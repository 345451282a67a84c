// Package config provides centralized configuration management for the panel
// builder. It loads configuration from defaults, an optional YAML file and
// environment variables, validates it, and resolves every file location.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML file (panel.yaml or configs/panel.yaml)
//  3. Default values (lowest priority)
//
// The defaults reproduce the fixed layout of the published datasets, so a run
// with no file and no environment reads inputs/ and writes outputs/.
//
// # Environment Variables
//
// All environment variables follow the pattern PANEL_<SECTION>_<FIELD>:
//
//	PANEL_BASE_DIR=/data/study
//	PANEL_OUTPUTS_DIR=outputs-2021
//	PANEL_PIPELINE_MAX_MATCH_GAP_DAYS=3
//	PANEL_LOGGING_LEVEL=debug
//	PANEL_TELEMETRY_TRACE_EXPORTER=file
//
// # Path Management
//
// GetPaths resolves inputs against the input directory and the output tables
// against the output directory:
//
//	paths, err := config.GetPaths(cfg)
//	if err := paths.ValidateRequiredFiles(); err != nil {
//	    ...
//	}
package config
