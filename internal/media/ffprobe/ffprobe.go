package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Probe is the subset of ffprobe output needed to plan against a source.
type Probe struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// Args returns the ffprobe arguments that print only durations and stream
// types for path as JSON.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration,format_name:stream=codec_type,duration",
		"-of", "json",
		"--", path,
	}
}

// Run executes ffprobe against path and decodes the JSON response. An empty
// binary means "ffprobe" on PATH; a nil runner means DefaultRunner.
func Run(ctx context.Context, run Runner, binary, path string) (Probe, error) {
	var probe Probe
	if strings.TrimSpace(path) == "" {
		return probe, errors.New("ffprobe: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if run == nil {
		run = DefaultRunner
	}
	output, err := run(ctx, binary, Args(path)...)
	if err != nil {
		return probe, fmt.Errorf("ffprobe: %w", err)
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return probe, fmt.Errorf("ffprobe parse: %w", err)
	}
	return probe, nil
}

// Seconds returns the container duration. When the container value is
// missing, "N/A", non-positive or garbage, the longest stream duration is
// used instead. 0 means unavailable and NaN unparseable.
func (p Probe) Seconds() float64 {
	format := seconds(p.Format.Duration)
	if format > 0 {
		return format
	}
	var longest float64
	for _, s := range p.Streams {
		if d := seconds(s.Duration); d > longest {
			longest = d
		}
	}
	if longest > 0 || !math.IsNaN(format) {
		return longest
	}
	return format
}

// HasVideo reports whether any stream is a video stream.
func (p Probe) HasVideo() bool {
	for _, s := range p.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return true
		}
	}
	return false
}

func seconds(value string) float64 {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "N/A") {
		return 0
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}

// DefaultRunner executes the command and returns stdout, folding stderr into
// the error on failure.
func DefaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
