package operations

import (
	"context"
	"fmt"
	"time"
)

// Step is one transformation of the panel pipeline. Steps read their inputs
// from the RunState and store their result tables back into it.
type Step interface {
	ID() string
	Name() string

	// Execute runs the step; a returned error aborts the run
	Execute(ctx context.Context, state *RunState) error

	// Validate reports whether the step's prerequisites are in place
	Validate(state *RunState) error

	// GetDependencies lists the step IDs whose tables this step consumes
	GetDependencies() []string
}

// StepStatus is the lifecycle position of a step within one run
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState records how a step went. Metadata carries the step's row counts
// and ends up in the run manifest.
type StepState struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Status    StepStatus             `json:"status"`
	StartTime *time.Time             `json:"start_time,omitempty"`
	EndTime   *time.Time             `json:"end_time,omitempty"`
	Message   string                 `json:"message"`
	Error     error                  `json:"-"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewStepState returns a pending state for step id
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start moves the step to active
func (s *StepState) Start() {
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks a successful finish
func (s *StepState) Complete() {
	s.finish(StepStatusCompleted)
}

// Fail marks the step failed and keeps err as its message
func (s *StepState) Fail(err error) {
	s.finish(StepStatusFailed)
	s.Error = err
	if err != nil {
		s.Message = err.Error()
	}
}

// Skip marks a step that never ran
func (s *StepState) Skip(reason string) {
	s.finish(StepStatusSkipped)
	s.Message = reason
}

func (s *StepState) finish(status StepStatus) {
	now := time.Now()
	s.EndTime = &now
	s.Status = status
}

// Duration is the time between Start and the finish, or until now while the
// step is active. A step that never started reports zero.
func (s *StepState) Duration() time.Duration {
	switch {
	case s.StartTime == nil:
		return 0
	case s.EndTime == nil:
		return time.Since(*s.StartTime)
	default:
		return s.EndTime.Sub(*s.StartTime)
	}
}

// BaseStage carries a step's identity and dependencies. Concrete steps embed
// it and add Execute.
type BaseStage struct {
	id           string
	name         string
	dependencies []string
}

// NewBaseStage creates the embedded part of a step
func NewBaseStage(id, name string, dependencies []string) BaseStage {
	if dependencies == nil {
		dependencies = []string{}
	}
	return BaseStage{id: id, name: name, dependencies: dependencies}
}

func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

func (b *BaseStage) GetDependencies() []string {
	if b == nil {
		return nil
	}
	return b.dependencies
}

// Validate fails with a dependency error naming the first prerequisite step
// that has not completed in this run
func (b *BaseStage) Validate(state *RunState) error {
	if b == nil {
		return fmt.Errorf("step is not initialized")
	}
	for _, dep := range b.dependencies {
		if !state.IsStepCompleted(dep) {
			return NewDependencyError(b.id, dep, fmt.Sprintf("step %s has not completed", dep))
		}
	}
	return nil
}
