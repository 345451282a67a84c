package operations

import (
	"errors"
	"fmt"
)

// ErrorType says which phase of a run produced an OperationError
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDependency ErrorType = "dependency"
	ErrorTypeExecution  ErrorType = "execution"
	ErrorTypePreflight  ErrorType = "preflight"
)

// OperationError ties a failure to the step it happened in. Step is empty
// for failures detected before the first step.
type OperationError struct {
	Type    ErrorType              `json:"type"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := "[" + string(e.Type) + "] "
	if e.Step != "" {
		msg += e.Step + ": "
	}
	msg += e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newOperationError(kind ErrorType, step, message string, cause error) *OperationError {
	return &OperationError{Type: kind, Step: step, Message: message, Cause: cause}
}

func NewValidationError(step, message string) *OperationError {
	return newOperationError(ErrorTypeValidation, step, message, nil)
}

// NewDependencyError records which prerequisite step was missing
func NewDependencyError(step, dependsOn, message string) *OperationError {
	err := newOperationError(ErrorTypeDependency, step, message, nil)
	err.Context = map[string]interface{}{"depends_on": dependsOn}
	return err
}

func NewExecutionError(step string, cause error) *OperationError {
	return newOperationError(ErrorTypeExecution, step, "step execution failed", cause)
}

// NewPreflightError wraps a failure detected before the first step ran
func NewPreflightError(message string, cause error) *OperationError {
	return newOperationError(ErrorTypePreflight, "", message, cause)
}

// GetErrorType returns the type of the outermost OperationError in err's chain
func GetErrorType(err error) (ErrorType, bool) {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		return "", false
	}
	return opErr.Type, true
}
