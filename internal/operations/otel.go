package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"conflictpanel/internal/infrastructure"
)

// PipelineTracer provides OpenTelemetry instrumentation for pipeline runs
type PipelineTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewPipelineTracer creates a tracer and registers the run's instruments
func NewPipelineTracer(providers *infrastructure.OTelProviders) (*PipelineTracer, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &PipelineTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// Metrics returns the run's counters
func (pt *PipelineTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceRun creates a span for the entire run
func (pt *PipelineTracer) TraceRun(ctx context.Context, runID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
		),
	)
}

// TraceStep creates a span for individual Step execution
func (pt *PipelineTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion records Step completion with metrics and span status
func (pt *PipelineTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)

	pt.metrics.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("step", stepID),
			attribute.String("status", status),
		),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step execution failed")
		return
	}
	span.SetStatus(codes.Ok, "step completed")
}

// RecordRunCompletion sets the run span's final status
func (pt *PipelineTracer) RecordRunCompletion(span trace.Span, state *RunState) {
	span.SetAttributes(
		attribute.String("run.status", string(state.Status)),
		attribute.Float64("run.duration_seconds", state.Duration().Seconds()),
	)
	if state.Error != nil {
		span.RecordError(state.Error)
		span.SetStatus(codes.Error, "run failed")
		return
	}
	span.SetStatus(codes.Ok, "run completed")
}
