package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"subsplice/internal/logging"
	"subsplice/internal/media/ffprobe"
	"subsplice/internal/services"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFmpeg implements Tool with the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	run     CommandRunner
	logger  *slog.Logger
}

var _ Tool = (*FFmpeg)(nil)

// New constructs an FFmpeg tool. Empty binary names fall back to PATH lookups
// of "ffmpeg" and "ffprobe".
func New(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *FFmpeg {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &FFmpeg{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		run:     defaultCommandRunner,
		logger:  logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (f *FFmpeg) WithCommandRunner(r CommandRunner) {
	if f != nil && r != nil {
		f.run = r
	}
}

// Extract cuts one interval. Seeking happens before -i so copy mode starts
// on the nearest preceding keyframe.
func (f *FFmpeg) Extract(ctx context.Context, req ExtractRequest) error {
	args, err := ExtractArgs(req)
	if err != nil {
		return services.Wrap(services.ErrInvalidInput, "extracting", "build ffmpeg args", err.Error(), nil)
	}
	f.logger.Debug("ffmpeg extract",
		logging.String("output", req.Output),
		logging.Float64("start", req.Start),
		logging.Float64("duration", req.Duration),
		logging.String("mode", req.Mode),
	)
	if _, err := f.run(ctx, f.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "ffmpeg extract", filepath.Base(req.Output), err)
	}
	return nil
}

// Concat joins inputs in order with the concat demuxer and stream copy. The
// list file is written next to the output and removed afterwards.
func (f *FFmpeg) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return services.Wrap(services.ErrInvalidInput, "assembling", "ffmpeg concat", "no inputs", nil)
	}
	listPath := output + ".concat.txt"
	if err := WriteConcatList(listPath, inputs); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembling", "write concat list", "", err)
	}
	defer func() {
		if err := os.Remove(listPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Debug("concat list cleanup failed", logging.Error(err))
		}
	}()
	f.logger.Debug("ffmpeg concat", logging.Int("inputs", len(inputs)), logging.String("output", output))
	if _, err := f.run(ctx, f.ffmpeg, ConcatArgs(listPath, output)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembling", "ffmpeg concat", filepath.Base(output), err)
	}
	return nil
}

// ProbeDuration returns the media duration in seconds via ffprobe. Sources
// without a video stream are accepted but logged, since the output will be
// audio only.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	probe, err := ffprobe.Run(ctx, ffprobe.Runner(f.run), f.ffprobe, path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "probing", "ffprobe duration", path, err)
	}
	seconds := probe.Seconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0, services.Wrap(services.ErrExternalTool, "probing", "ffprobe duration", path,
			fmt.Errorf("no usable duration (format %q)", probe.Format.FormatName))
	}
	if len(probe.Streams) > 0 && !probe.HasVideo() {
		logging.WarnWithContext(f.logger, "source has no video stream", "source_without_video",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "assembled output will be audio only"),
		)
	}
	return seconds, nil
}

// ExtractArgs builds the ffmpeg argument list for one segment.
func ExtractArgs(req ExtractRequest) ([]string, error) {
	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Output) == "" {
		return nil, errors.New("source and output are required")
	}
	if req.Start < 0 || req.Duration <= 0 {
		return nil, fmt.Errorf("invalid interval start=%.3f duration=%.3f", req.Start, req.Duration)
	}
	args := []string{
		"-y",
		"-ss", formatSeconds(req.Start),
		"-i", req.Source,
		"-t", formatSeconds(req.Duration),
	}
	switch req.Mode {
	case ModeCopy, "":
		args = append(args, "-c", "copy", "-avoid_negative_ts", "1")
	case ModeReencode:
		args = append(args, "-c:v", "libx264", "-c:a", "aac", "-preset", "fast", "-crf", "23")
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", req.Mode)
	}
	return append(args, "-loglevel", "error", req.Output), nil
}

// ConcatArgs builds the ffmpeg argument list for concatenating a list file.
func ConcatArgs(listPath, output string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-loglevel", "error",
		output,
	}
}

// WriteConcatList writes an ffconcat input list. Paths are made absolute
// and single quotes escaped.
func WriteConcatList(path string, inputs []string) error {
	var sb strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", in, err)
		}
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", name, ctxErr)
		}
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
