package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	shotIDKey contextKey = "shot_id"
)

// WithRunID annotates context with the ingest run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithShotID annotates context with the canonical shot identifier.
func WithShotID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, shotIDKey, id)
}

// ShotIDFromContext returns the shot identifier if present.
func ShotIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(shotIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
