package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrorType classifies a failure so callers can branch without matching on text
type ErrorType string

const (
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeConfig       ErrorType = "CONFIG"
	ErrTypeOutputExists ErrorType = "OUTPUT_EXISTS"
)

// AppError is a classified failure with optional location details such as
// the file, sheet or line that caused it.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	msg := "[" + string(e.Type) + "] " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext records a detail and returns e for chaining
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// LogValue renders the error as a group so slog output keeps the details
// as separate keys.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return slog.GroupValue(attrs...)
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause, Context: map[string]interface{}{}}
}

// IsType walks the whole chain, so an OUTPUT_EXISTS wrapped inside a
// STORAGE error still matches both.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewSchemaError names a column the input was expected to carry
func NewSchemaError(file, column string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("%s: missing expected column %q", file, column), nil).
		WithContext("file", file).
		WithContext("column", column)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, resource+" not found", nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewOutputExistsError refuses to overwrite a previous run's output directory
func NewOutputExistsError(dir string) *AppError {
	return NewAppError(ErrTypeOutputExists, fmt.Sprintf("output directory %s already exists", dir), nil).
		WithContext("directory", dir)
}
