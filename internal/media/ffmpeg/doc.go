// Package ffmpeg defines the media tool contract the assembly orchestrator
// depends on and an implementation that shells out to ffmpeg and ffprobe.
//
// Tool covers exactly three capabilities: cut one interval into its own
// file, concatenate files in a given order, and probe a duration. Tests
// substitute an in-memory Tool; the FFmpeg type is wired in at the CLI.
package ffmpeg
