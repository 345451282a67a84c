package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"conflictpanel/internal/config"
)

const (
	ServiceName = config.AppName
	MeterName   = "conflictpanel"
)

// OTelProviders holds the OpenTelemetry providers of one run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Logger         *slog.Logger

	metricFile string
	traceOut   io.Closer
}

// InitializeOTel sets up tracing and metrics for a batch run. Providers are
// not installed globally; callers pass Tracer and Meter down explicitly.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("OpenTelemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	return providers, nil
}

// initializeTracing sets up span export to stdout or a trace file
func initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var out io.Writer
	switch cfg.TraceExporter {
	case "", "none":
		return nil
	case "stdout":
		out = os.Stdout
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		providers.traceOut = f
		out = f
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Synchronous export: the process exits right after the last step
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	return nil
}

// initializeMetrics backs the meter with a private Prometheus registry that is
// written out as a textfile when the run ends
func initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "", "none":
		return nil
	case "prometheus":
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithoutScopeInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	providers.Registry = registry
	providers.metricFile = cfg.MetricFile
	return nil
}

// PipelineMetrics are the counters a run reports
type PipelineMetrics struct {
	RowsRead     metric.Int64Counter
	RowsDropped  metric.Int64Counter
	Episodes     metric.Int64Counter
	Matches      metric.Int64Counter
	StepDuration metric.Float64Histogram
}

// CreatePipelineMetrics registers the run's instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var errs []error
	counter := func(name, description string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description))
		errs = append(errs, err)
		return c
	}

	m := &PipelineMetrics{
		RowsRead:    counter("panel_rows_read", "Rows read from each input table"),
		RowsDropped: counter("panel_rows_dropped", "Rows removed by a pipeline step, by reason"),
		Episodes:    counter("panel_episodes", "Conflict episodes produced, by kind"),
		Matches:     counter("panel_matches", "Episode/country pairs by trading-date match result"),
	}

	var err error
	m.StepDuration, err = meter.Float64Histogram("panel_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordDropped adds n dropped rows for step and reason; zero counts are skipped
func (m *PipelineMetrics) RecordDropped(ctx context.Context, step, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("reason", reason),
	))
}

// RecordRead adds n rows read from table
func (m *PipelineMetrics) RecordRead(ctx context.Context, table string, n int) {
	if m == nil {
		return
	}
	m.RowsRead.Add(ctx, int64(n), metric.WithAttributes(attribute.String("table", table)))
}

// Shutdown writes the metrics textfile, then flushes and closes everything
// that was opened. All failures are reported together.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	collect := func(step string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step, err))
		}
	}

	if p.Registry != nil && p.metricFile != "" {
		err := os.MkdirAll(filepath.Dir(p.metricFile), 0755)
		if err == nil {
			err = promclient.WriteToTextfile(p.metricFile, p.Registry)
		}
		collect("metric textfile", err)
	}
	if p.MeterProvider != nil {
		collect("meter provider", p.MeterProvider.Shutdown(ctx))
	}
	if p.TracerProvider != nil {
		collect("tracer provider", p.TracerProvider.Shutdown(ctx))
	}
	if p.traceOut != nil {
		collect("trace file", p.traceOut.Close())
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete", slog.String("metric_file", p.metricFile))
	return nil
}

// TraceIDFromContext returns the active trace ID, or "" outside a span
func TraceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
