package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "conflictpanel/internal/errors"
)

func TestGetPaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.BaseDir = base

	paths, err := GetPaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "inputs"), paths.InputDir)
	assert.Equal(t, filepath.Join(base, "outputs"), paths.OutputDir)
	assert.Equal(t, filepath.Join(base, "inputs", "ucdp-prio-acd-201.xlsx"), paths.ConflictWorkbook)
	assert.Equal(t, filepath.Join(base, "inputs", "Content Analysis Final.xlsx"), paths.ContentWorkbook)
	assert.Equal(t, "Bloomberg vs ACD.csv", paths.ConflictPanelCSV)
	assert.Equal(t, filepath.Join(base, "outputs", "Bloomberg.csv"), paths.GetOutputPath(paths.PricesCSV))
	assert.Equal(t, filepath.Join(base, "logs", "run.log"), paths.GetLogPath("run.log"))
	assert.Len(t, paths.InputFiles(), 6)
}

func TestGetPaths_AbsoluteNamesKept(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere", "acd.xlsx")
	cfg := Default()
	cfg.Inputs.ConflictFile = abs

	paths, err := GetPaths(cfg)
	require.NoError(t, err)
	assert.Equal(t, abs, paths.ConflictWorkbook)
	assert.True(t, filepath.IsAbs(paths.BaseDir))
}

func TestValidateRequiredFiles(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.BaseDir = base
	paths, err := GetPaths(cfg)
	require.NoError(t, err)

	err = paths.ValidateRequiredFiles()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	require.NoError(t, os.MkdirAll(paths.InputDir, 0755))
	for _, f := range paths.InputFiles() {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	}
	assert.NoError(t, paths.ValidateRequiredFiles())
	assert.True(t, FileExists(paths.IndicesCSV))
	assert.False(t, FileExists(filepath.Join(base, "missing.csv")))
}

func TestValidateRequiredFiles_Directory(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.BaseDir = base
	paths, err := GetPaths(cfg)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(paths.InputDir, 0755))
	for _, f := range paths.InputFiles() {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	}
	require.NoError(t, os.Remove(paths.IndicesCSV))
	require.NoError(t, os.Mkdir(paths.IndicesCSV, 0755))

	err = paths.ValidateRequiredFiles()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestGetPaths_RunArtifacts(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.BaseDir = base
	cfg.Telemetry.TraceFile = ""

	paths, err := GetPaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, DefaultLogFile), paths.LogFile)
	assert.Equal(t, filepath.Join(base, DefaultMetricFile), paths.MetricFile)
	assert.Empty(t, paths.TraceFile)

	logging := paths.Logging(cfg.Logging)
	assert.Equal(t, paths.LogFile, logging.FilePath)
	assert.Equal(t, cfg.Logging.Level, logging.Level)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)

	telemetry := paths.Telemetry(cfg.Telemetry)
	assert.Equal(t, paths.MetricFile, telemetry.MetricFile)
	assert.Equal(t, cfg.Telemetry.MetricExporter, telemetry.MetricExporter)
}
