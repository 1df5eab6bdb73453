package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"subsplice/internal/config"
)

// Options describes logger construction parameters. OutputPaths accepts
// "stdout", "stderr" or file paths; an empty list means stderr.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
}

// New constructs a slog logger. Caller locations are attached at debug level.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))

	w, err := openWriters(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	withSource := level.Level() <= slog.LevelDebug
	if format == "json" {
		return slog.New(newJSONHandler(w, level, withSource)), nil
	}
	return slog.New(newConsoleHandler(w, level, withSource)), nil
}

// NewFromConfig creates a logger writing to stderr and log_dir/subsplice.log.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	outputs := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		outputs = append(outputs, filepath.Join(dir, "subsplice.log"))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// NewFileHandler opens path for appending and returns a JSON handler writing
// to it. The caller closes the returned file when the run ends.
func NewFileHandler(path, level string) (slog.Handler, io.Closer, error) {
	file, err := openAppend(path)
	if err != nil {
		return nil, nil, err
	}
	lvl := new(slog.LevelVar)
	lvl.Set(parseLevel(level))
	return newJSONHandler(file, lvl, false), file, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openWriters(paths []string) (io.Writer, error) {
	var writers []io.Writer
	seen := make(map[string]bool, len(paths))
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := openAppend(path)
			if err != nil {
				return nil, err
			}
			writers = append(writers, file)
		}
	}
	if len(writers) == 0 {
		return os.Stderr, nil
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

// openAppend opens path for appending, creating parent directories.
func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
