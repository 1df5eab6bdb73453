// Package ffprobe reads source media durations through ffprobe.
//
// Run executes ffprobe with a narrow -show_entries selection and decodes the
// JSON into a Probe. The command runner is injectable so tests never spawn a
// process.
package ffprobe
