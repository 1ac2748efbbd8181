package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
)

// WithRunID annotates context with the sort run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sort run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
