// Package preflight provides readiness checks for the filesystem paths and
// external binaries subsplice depends on.
//
// The run command calls RunAll before creating a job so a missing ffmpeg or an
// unwritable work directory fails fast instead of after planning. The doctor
// command renders the same results as a table.
package preflight
