package logging

import (
	"context"
	"log/slog"

	"mpegsort/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for sort run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldFile is the file a log line refers to.
	FieldFile = "file"
	// FieldKind is the detected media kind.
	FieldKind = "kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
