package infrastructure

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	apperrors "conflictpanel/internal/errors"
)

// GenerateRunID returns a fresh UUIDv4 run identifier
func GenerateRunID() string {
	return uuid.New().String()
}

// EnsureRunID keeps a caller-supplied run ID and only mints one when ctx has none
func EnsureRunID(ctx context.Context) context.Context {
	if GetRunID(ctx) != "" {
		return ctx
	}
	return WithRunID(ctx, GenerateRunID())
}

func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithError attaches err as the "error" field. Classified errors also get a
// "failure" group carrying their type and location details.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	logger = logger.With("error", err.Error())
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		logger = logger.With(slog.Any("failure", appErr))
	}
	return logger
}
