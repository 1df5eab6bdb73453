// Package config loads, normalizes, and validates subsplice configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SUBSPLICE_FFMPEG. The Config type centralizes every knob the planner,
// assembly orchestrator, and CLI need, including per-strategy match
// thresholds and window radii so they never live as constants in planner code.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and validation errors that name the
// offending TOML key.
package config
