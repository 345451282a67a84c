package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	apperrors "conflictpanel/internal/errors"
)

// OutputWriter persists the tables of a run into a directory that must not
// exist beforehand. Either every table lands in the directory or none does.
type OutputWriter struct {
	dir    string
	logger *slog.Logger
}

// NewOutputWriter creates a writer for the output directory dir
func NewOutputWriter(dir string, logger *slog.Logger) *OutputWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputWriter{dir: dir, logger: logger}
}

// Dir returns the output directory
func (w *OutputWriter) Dir() string {
	return w.dir
}

// CheckTarget fails with an OUTPUT_EXISTS error when the directory is present
func (w *OutputWriter) CheckTarget() error {
	_, err := os.Lstat(w.dir)
	if err == nil {
		return apperrors.NewOutputExistsError(w.dir)
	}
	if !os.IsNotExist(err) {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", w.dir), err)
	}
	return nil
}

// WriteAll stages every table in a sibling directory and renames it into
// place once all tables are complete. It returns the row count per table.
func (w *OutputWriter) WriteAll(ctx context.Context, tables ...Table) (map[string]int, error) {
	if err := w.CheckTarget(); err != nil {
		return nil, err
	}

	parent := filepath.Dir(w.dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create output parent directory", err)
	}

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(w.dir)+"-staging-")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create staging directory", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := os.RemoveAll(staging); err != nil {
				w.logger.WarnContext(ctx, "Failed to remove staging directory",
					slog.String("staging_dir", staging),
					slog.String("error", err.Error()))
			}
		}
	}()

	counts := make(map[string]int, len(tables))
	csvWriter := NewCSVWriter(staging)
	for _, table := range tables {
		n, err := writeTable(csvWriter, table)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to write %s", table.Name()), err)
		}
		counts[table.Name()] = n
		w.logger.DebugContext(ctx, "Staged output table",
			slog.String("table", table.Name()),
			slog.Int("rows", n))
	}

	if err := os.Chmod(staging, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to set output directory permissions", err)
	}

	// the target may have appeared while the run was in progress
	if err := w.CheckTarget(); err != nil {
		return nil, err
	}
	if err := os.Rename(staging, w.dir); err != nil {
		return nil, apperrors.NewStorageError("failed to move staged outputs into place", err)
	}
	committed = true

	w.logger.InfoContext(ctx, "Output tables written",
		slog.String("output_dir", w.dir),
		slog.Int("tables", len(tables)))

	return counts, nil
}

// writeTable streams a table with its leading row-index column
func writeTable(csvWriter *CSVWriter, table Table) (int, error) {
	header := append([]string{""}, table.Header()...)
	stream, err := csvWriter.CreateStreamWriter(table.Name(), header)
	if err != nil {
		return 0, err
	}

	for i := 0; i < table.Len(); i++ {
		record := append([]string{strconv.Itoa(i)}, table.Row(i)...)
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
	}

	n := stream.Rows()
	return n, stream.Close()
}

// WriteJSON writes v as indented JSON to path
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
