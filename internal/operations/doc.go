// Package operations runs the panel build as an ordered sequence of steps.
//
// Core Components:
//
// Pipeline: The orchestrator. It checks that the output directory is free and
// the inputs are present, then executes every registered step in order on a
// single goroutine. The first failing step aborts the run.
//
// Step: A single unit of work. Each step reads what earlier steps left in the
// RunState and adds its own tables. Dependencies name the steps that must have
// completed before a step may run.
//
// Registry: Keeps steps in registration order.
//
// RunManifest: The JSON record of a run (run id, inputs, per-step timings,
// row counts and drop counts) written next to the output tables.
//
// PipelineTracer: Wraps each step in an OpenTelemetry span and records the
// step duration histogram.
//
// Example usage:
//
//	pipeline, err := operations.NewPipeline(&operations.Dependencies{
//		Config: cfg,
//		Paths:  paths,
//		Logger: logger,
//	}, providers)
//	if err != nil {
//		return err
//	}
//	manifest, err := pipeline.Run(ctx)
package operations
