// Package deps reports on the external binaries subsplice shells out to.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"subsplice/internal/config"
)

// Requirement defines an external dependency subsplice relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArgs are passed to Command to read its version banner.
	VersionArgs []string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Version     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// MediaRequirements returns the ffmpeg and ffprobe requirements for cfg.
func MediaRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Cuts segments and concatenates the output",
			VersionArgs: []string{"-hide_banner", "-version"},
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Reads source duration before planning",
			VersionArgs: []string{"-hide_banner", "-version"},
		},
	}
}

// Check resolves each requirement on PATH and, for those found, reads the
// first line of their version banner. ctx bounds the version probes.
func Check(ctx context.Context, requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = check(ctx, req)
	}
	return statuses
}

func check(ctx context.Context, req Requirement) Status {
	st := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if st.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(st.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", st.Command)
		return st
	}
	st.Path, st.Available = path, true
	if len(req.VersionArgs) > 0 {
		st.Version = probeVersion(ctx, path, req.VersionArgs)
	}
	return st
}

// probeVersion returns the first line of the command's version output, or
// "" when the command fails.
func probeVersion(ctx context.Context, path string, args []string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, args...).Output() //nolint:gosec
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}

// MissingRequired returns the names of unavailable non-optional requirements.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
