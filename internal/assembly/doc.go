// Package assembly executes a segment plan against a media tool.
//
// The Orchestrator cuts every planned segment into its own file inside a
// run-scoped work directory, drops segments that fail or come out too small,
// concatenates the survivors in plan order and moves the result to the
// requested output path. Per-segment failures are recorded in the Outcome;
// only an empty survivor set or a failed concatenation aborts the run. The
// work directory is removed on every exit path, including cancellation.
package assembly
