package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"conflictpanel/internal/config"
)

// process-wide logger, set up once by InitializeLogger
var (
	loggerOnce sync.Once
	procLogger *slog.Logger

	logFileMu sync.Mutex
	logFile   *os.File
)

type contextKey string

// RunIDContextKey carries the pipeline run ID through a context
const RunIDContextKey contextKey = "run_id"

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Only the first call has any effect.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	loggerOnce.Do(func() {
		var w io.Writer
		if w, err = logOutput(cfg); err != nil {
			return
		}
		procLogger = NewLogger(w, &slog.HandlerOptions{AddSource: true, Level: parseLogLevel(cfg.Level)})
		slog.SetDefault(procLogger)
	})
	return procLogger, err
}

// GetLogger falls back to slog.Default before InitializeLogger has run
func GetLogger() *slog.Logger {
	if procLogger != nil {
		return procLogger
	}
	return slog.Default()
}

// logOutput resolves the configured sink; "console" and anything unknown
// write to stdout
func logOutput(cfg config.LoggingConfig) (io.Writer, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return os.Stdout, nil
	}
	f, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("log output %s: %w", mode, err)
	}
	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()
	if mode == "both" {
		return io.MultiWriter(os.Stdout, f), nil
	}
	return f, nil
}

// NewLogger builds a JSON logger on w that stamps records with the run ID
// found in their context
func NewLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(&runHandler{Handler: slog.NewJSONHandler(w, opts)})
}

// runHandler stamps every record with the run ID and, inside a span, the
// trace ID found in the record's context
type runHandler struct {
	slog.Handler
}

func (h *runHandler) Handle(ctx context.Context, r slog.Record) error {
	if runID := GetRunID(ctx); runID != "" {
		r.AddAttrs(slog.String("run_id", runID))
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel accepts the slog level names in any case plus "warning";
// anything else falls back to info
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithRunID returns a copy of ctx carrying runID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// GetRunID returns the run ID stored by WithRunID, or ""
func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if runID, ok := ctx.Value(RunIDContextKey).(string); ok {
		return runID
	}
	return ""
}

// CloseLogFile releases the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting lets a test call InitializeLogger again
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	procLogger = nil
	loggerOnce = sync.Once{}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
