package operations

import (
	"fmt"
)

// Registry holds the steps of a pipeline in execution order. A step may only
// depend on steps registered before it, so registration order is always a
// valid execution order.
type Registry struct {
	steps map[string]Step
	order []string
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]Step)}
}

// Register appends step to the execution order
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	switch {
	case id == "":
		return fmt.Errorf("step ID cannot be empty")
	case r.Has(id):
		return fmt.Errorf("step %s already registered", id)
	}

	for _, dep := range step.GetDependencies() {
		if !r.Has(dep) {
			return fmt.Errorf("step %s depends on %s which is not registered before it", id, dep)
		}
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get returns the step registered under id
func (r *Registry) Get(id string) (Step, error) {
	if step, ok := r.steps[id]; ok {
		return step, nil
	}
	return nil, fmt.Errorf("step %s not found", id)
}

// Has reports whether id is registered
func (r *Registry) Has(id string) bool {
	_, ok := r.steps[id]
	return ok
}

// List returns the steps in execution order
func (r *Registry) List() []Step {
	steps := make([]Step, len(r.order))
	for i, id := range r.order {
		steps[i] = r.steps[id]
	}
	return steps
}

// ListIDs returns the step IDs in execution order
func (r *Registry) ListIDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Count() int {
	return len(r.order)
}
