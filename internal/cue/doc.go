// Package cue holds the subtitle cue model shared by matching, planning and
// reporting, plus an SRT loader that turns subtitle files into tracks.
//
// Cues and tracks are created once at load time and treated as immutable
// afterwards; planners only ever read them.
package cue
