// Package workflow drives one subsplice run end to end.
//
// The Runner loads both subtitle tracks, probes the source duration, records
// a job in the queue store and advances it through planning, extracting and
// assembling. The plan report is written next to the output before any media
// work starts and rewritten with the assembly outcome at the end, so a failed
// run still leaves its diagnostics behind.
//
// Each run also gets its own JSON log under log_dir/runs, tee'd alongside the
// process logger.
package workflow
