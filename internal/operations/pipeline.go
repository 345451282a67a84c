package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"conflictpanel/internal/config"
	"conflictpanel/internal/exporter"
	"conflictpanel/internal/infrastructure"
	"conflictpanel/internal/validation"
)

// Pipeline runs the registered steps once, in registration order
type Pipeline struct {
	registry  *Registry
	deps      *Dependencies
	tracer    *PipelineTracer
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewPipeline wires the default steps. When deps.Output is nil a writer for
// the configured output directory is created.
func NewPipeline(deps *Dependencies, providers *infrastructure.OTelProviders) (*Pipeline, error) {
	if deps == nil || deps.Config == nil || deps.Paths == nil {
		return nil, fmt.Errorf("pipeline requires config and paths")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Output == nil {
		deps.Output = exporter.NewOutputWriter(deps.Paths.OutputDir, deps.Logger)
	}

	var tracer *PipelineTracer
	if providers != nil {
		var err error
		tracer, err = NewPipelineTracer(providers)
		if err != nil {
			return nil, err
		}
		if deps.Metrics == nil {
			deps.Metrics = tracer.Metrics()
		}
	}

	registry := NewRegistry()
	for _, step := range DefaultSteps(deps) {
		if err := registry.Register(step); err != nil {
			return nil, fmt.Errorf("failed to register step: %w", err)
		}
	}

	return &Pipeline{
		registry:  registry,
		deps:      deps,
		tracer:    tracer,
		validator: validation.NewFileValidator(deps.Logger),
		logger:    infrastructure.WithComponent(deps.Logger, "pipeline"),
	}, nil
}

// Registry exposes the registered steps
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Run executes one full pass. Outputs are only published when every step
// succeeds; the manifest is written next to them afterwards. A run ID already
// present in ctx is reused.
func (p *Pipeline) Run(ctx context.Context) (*RunManifest, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	state := NewRunState(runID)
	manifest := NewRunManifest(runID, p.deps.Paths.InputFiles())

	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.TraceRun(ctx, runID)
		defer func() {
			p.tracer.RecordRunCompletion(span, state)
			span.End()
		}()
	}

	state.Start()
	p.logger.InfoContext(ctx, "Pipeline run started",
		slog.String("input_dir", p.deps.Paths.InputDir),
		slog.String("output_dir", p.deps.Paths.OutputDir),
		slog.Int("steps", p.registry.Count()))

	if err := p.preflight(); err != nil {
		err = NewPreflightError("run cannot start", err)
		state.Fail(err)
		manifest.Fail(err)
		infrastructure.WithError(p.logger, err).ErrorContext(ctx, "Pipeline preflight failed")
		return manifest, err
	}

	for _, step := range p.registry.List() {
		if err := p.runStep(ctx, step, state, manifest); err != nil {
			state.Fail(err)
			infrastructure.WithError(p.logger, err).ErrorContext(ctx, "Pipeline run failed",
				slog.String("step", step.ID()),
				slog.Duration("duration", state.Duration()))
			return manifest, err
		}
	}

	state.Complete()
	manifest.Complete(state)

	if name := p.deps.Paths.ManifestJSON; name != "" {
		if err := manifest.SaveToFile(p.deps.Paths.GetOutputPath(name)); err != nil {
			infrastructure.WithError(p.logger, err).WarnContext(ctx, "Failed to save run manifest")
		}
	}

	p.logger.InfoContext(ctx, "Pipeline run completed",
		slog.Duration("duration", state.Duration()),
		slog.Any("outputs", state.Outputs))
	return manifest, nil
}

// preflight refuses to start when the output directory exists or an input
// is missing
func (p *Pipeline) preflight() error {
	if err := p.deps.Output.CheckTarget(); err != nil {
		return err
	}
	if err := p.validator.ValidateInputDirectory(p.deps.Paths.InputDir); err != nil {
		return err
	}
	return p.validator.ValidateInputs(p.deps.Paths.InputFiles()...)
}

func (p *Pipeline) runStep(ctx context.Context, step Step, state *RunState, manifest *RunManifest) error {
	stepState := state.Step(step.ID(), step.Name())

	if err := ctx.Err(); err != nil {
		stepState.Skip("run cancelled")
		manifest.Fail(err)
		return NewExecutionError(step.ID(), err)
	}

	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		manifest.Fail(err)
		return err
	}

	stepCtx := ctx
	var span trace.Span
	if p.tracer != nil {
		stepCtx, span = p.tracer.TraceStep(ctx, state.RunID, step.ID())
		defer span.End()
	}

	stepState.Start()
	manifest.RecordStageStart(step.ID(), step.Name())
	p.logger.InfoContext(stepCtx, "Step started",
		slog.String("step", step.ID()),
		slog.String("name", step.Name()))

	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	if p.tracer != nil {
		p.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)
	}

	if err != nil {
		stepState.Fail(err)
		manifest.RecordStageFailure(step.ID(), err)
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete()
	manifest.RecordStageCompletion(step.ID(), stepState.Metadata)
	p.logger.InfoContext(stepCtx, "Step completed",
		slog.String("step", step.ID()),
		slog.String("message", stepState.Message),
		slog.Duration("duration", duration))
	return nil
}

// RunOnce builds a pipeline from a loaded configuration and runs it
func RunOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*RunManifest, error) {
	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(&Dependencies{Config: cfg, Paths: paths, Logger: logger}, providers)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx)
}
