package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/mentorhub/internal/application"
	"github.com/example/mentorhub/internal/lifecycle"
)

var (
	errBadRequestBody   = errors.New("request body could not be parsed")
	errInvalidSessionID = errors.New("invalid session id")
	errMissingActor     = errors.New("actor identity headers are required")
)

type errorResponse struct {
	ErrorCode string            `json:"errorCode,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Missing   []string          `json:"missing,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps the application and lifecycle error taxonomy onto
// HTTP statuses: validation and incomplete payloads are unprocessable,
// illegal transitions and empty selections conflict with current state,
// forbidden actors are forbidden.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "you are not allowed to perform this operation",
		})
		return
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "resource not found"})
		return
	case errors.Is(err, application.ErrEmptySelection):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "EMPTY_SELECTION",
			Message:   "select at least one session",
		})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "validation failed",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	var illegal *lifecycle.IllegalTransitionError
	if errors.As(err, &illegal) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ILLEGAL_TRANSITION",
			Message:   illegal.Error(),
		})
		return
	}

	var forbidden *lifecycle.ForbiddenActorError
	if errors.As(err, &forbidden) {
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN_ACTOR",
			Message:   forbidden.Error(),
		})
		return
	}

	var missing *lifecycle.MissingPayloadError
	if errors.As(err, &missing) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "MISSING_COMPLETION_FIELDS",
			Message:   missing.Error(),
			Missing:   missing.Missing,
		})
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}
