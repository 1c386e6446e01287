package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldError carries the underlying error value.
	FieldError = "error"
	// FieldGroup is the command group of the current invocation.
	FieldGroup = "group"
	// FieldAction is the action within the command group.
	FieldAction = "action"
	// FieldInvocationID correlates every log line emitted by one command run.
	FieldInvocationID = "invocation_id"
	// FieldLocator names the plugin file a discovery message refers to.
	FieldLocator = "locator"
	// FieldStatus is the HTTP status returned by the tracker.
	FieldStatus = "status"
	// FieldIssue and FieldProject carry tracker keys.
	FieldIssue   = "issue"
	FieldProject = "project"
)

type invocationKey struct{}

// WithInvocationID stores the invocation identifier on ctx.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationIDFromContext returns the identifier stored by WithInvocationID.
func InvocationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(invocationKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := InvocationIDFromContext(ctx); ok {
		return logger.With(String(FieldInvocationID, id))
	}
	return logger
}
