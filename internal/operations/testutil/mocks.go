package testutil

import (
	"context"
	"sync/atomic"

	"conflictpanel/internal/operations"
)

// MockStage is a configurable step for registry and runner tests
type MockStage struct {
	operations.BaseStage
	ExecuteFunc func(ctx context.Context, state *operations.RunState) error
	calls       atomic.Int32
}

// NewMockStage creates a mock step that succeeds unless ExecuteFunc says otherwise
func NewMockStage(id string, deps ...string) *MockStage {
	return &MockStage{BaseStage: operations.NewBaseStage(id, "Mock "+id, deps)}
}

// Execute records the call and delegates to ExecuteFunc
func (m *MockStage) Execute(ctx context.Context, state *operations.RunState) error {
	m.calls.Add(1)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Calls returns how often Execute ran
func (m *MockStage) Calls() int {
	return int(m.calls.Load())
}
