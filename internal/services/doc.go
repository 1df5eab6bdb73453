// Package services defines shared utilities consumed by the planner,
// assembly, and workflow packages.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, run IDs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can separate
//     recoverable per-cue/per-segment failures from run-fatal ones.
//
// Use these helpers when wiring new run logic so failure classification and
// log correlation stay uniform across the pipeline.
package services
