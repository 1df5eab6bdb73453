package services

import "context"

type contextKey int

const (
	jobIDKey contextKey = iota
	runIDKey
	stageKey
	strategyKey
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithJobID annotates context with the job store identifier.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the job identifier if present.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(jobIDKey).(int64)
	return id, ok
}

// WithRunID annotates context with the run identifier that names work
// directories, report files and run logs.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, runIDKey)
}

// WithStage annotates context with the job stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// WithStrategy annotates context with the planning strategy name.
func WithStrategy(ctx context.Context, strategy string) context.Context {
	return withString(ctx, strategyKey, strategy)
}

// StrategyFromContext returns the planning strategy if present.
func StrategyFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, strategyKey)
}
