// Package logging assembles structured slog loggers and formatting helpers used
// across subsplice.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so planner and assembly code can tag log
// lines with job IDs, run IDs, and stages. Runs mirror their lines into a
// per-run JSON file through TeeLogger. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
