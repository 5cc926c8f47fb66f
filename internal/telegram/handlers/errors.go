package handlers

import (
	"context"
	"errors"
	"net"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError maps an error to a user message and severity
func classifyHandlerError(err error) *HandlerError {
	if err == nil {
		return &HandlerError{
			UserMessage: render.ErrGeneric,
			LogMessage:  "unknown error",
			Severity:    SeverityWarning,
		}
	}

	warn := func(userMsg, logMsg string) *HandlerError {
		return &HandlerError{Err: err, UserMessage: userMsg, LogMessage: logMsg, Severity: SeverityWarning}
	}
	fail := func(userMsg, logMsg string) *HandlerError {
		return &HandlerError{Err: err, UserMessage: userMsg, LogMessage: logMsg, Severity: SeverityError}
	}

	// Check for domain errors (non-critical)
	switch {
	case errors.Is(err, entity.ErrInvalidCategory):
		return warn(render.ErrInvalidCategory, "invalid category")
	case errors.Is(err, entity.ErrInvalidLanguage):
		return warn(render.ErrInvalidLanguage, "invalid language")
	case errors.Is(err, entity.ErrMissingField):
		return warn(render.ErrEmptyQuestion, "missing field")
	case errors.Is(err, entity.ErrEmptyResponse):
		return fail(render.ErrEmptyAnswer, "empty model response")
	case errors.Is(err, entity.ErrUpstreamTimeout):
		return fail(render.ErrTimeout, "upstream timeout")
	case errors.Is(err, entity.ErrUpstreamFailure):
		return fail(render.ErrServiceUnavailable, "upstream failure")
	case errors.Is(err, context.DeadlineExceeded):
		return fail(render.ErrTimeout, "operation timed out")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fail(render.ErrTimeout, "network timeout")
		}
		return fail(render.ErrServiceUnavailable, "network error")
	}

	return fail(render.ErrGeneric, "handler error")
}

// HandleError logs the error with its severity and sends a user-friendly message
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	fields := []zap.Field{
		zap.Error(handlerErr.Err),
		zap.Int64("chat_id", chatID),
	}
	if handlerErr.Severity == SeverityWarning {
		ctxzap.Warn(ctx, handlerErr.LogMessage, fields...)
	} else {
		ctxzap.Error(ctx, handlerErr.LogMessage, fields...)
	}

	h.sendMessage(chatID, handlerErr.UserMessage, nil)
}
