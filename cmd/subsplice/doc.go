// Package main hosts the subsplice CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, builds the logger
// and job store on demand, and hands the real work to internal/workflow.
// plan and analyze are read-only; run is the only command that touches media.
//
// Keep this package lean: add behavior in the internal packages first, then
// surface it through flags here.
package main
