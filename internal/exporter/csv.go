package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CSVWriter creates CSV tables inside one directory
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer whose relative names resolve against dir
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// StreamWriter writes one table row by row. Lines end in LF and fields are
// quoted only when they contain a separator, quote or line break.
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

// CreateStreamWriter creates name, truncating any existing file, and writes
// the header row
func (w *CSVWriter) CreateStreamWriter(name string, header []string) (*StreamWriter, error) {
	path := w.resolvePath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}

	s := &StreamWriter{path: path, file: file, writer: csv.NewWriter(file)}
	if len(header) > 0 {
		if err := s.writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header of %s: %w", name, err)
		}
	}
	return s, nil
}

// WriteRecord appends one data row
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.rows++
	return nil
}

// Rows returns the number of data rows written, header excluded
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Close flushes buffered rows to disk and closes the file. The file is
// closed even when flushing fails.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	flushErr := s.writer.Error()
	var syncErr error
	if flushErr == nil {
		syncErr = s.file.Sync()
	}
	if err := errors.Join(flushErr, syncErr, s.file.Close()); err != nil {
		return fmt.Errorf("failed to finish %s: %w", filepath.Base(s.path), err)
	}
	return nil
}

func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}
