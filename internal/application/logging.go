package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEmptySelection):
		return "empty_selection"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	var illegal *lifecycle.IllegalTransitionError
	if errors.As(err, &illegal) {
		return "illegal_transition"
	}
	var forbidden *lifecycle.ForbiddenActorError
	if errors.As(err, &forbidden) {
		return "forbidden_actor"
	}
	var missing *lifecycle.MissingPayloadError
	if errors.As(err, &missing) {
		return "missing_payload"
	}

	return "unexpected"
}
